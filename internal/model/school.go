package model

// School школа (преподаватель), публикующая занятия
type School struct {
	ID         string `json:"-"`
	Name       string `json:"name" validate:"required,max=100"`
	LessonName string `json:"lessonName" validate:"required,max=100"`
	ClassType  string `json:"ClassType" validate:"max=50"`
}

// DisplayName название для уведомлений и списков
func (s *School) DisplayName() string {
	if s.LessonName != "" {
		return s.LessonName
	}
	return s.Name
}
