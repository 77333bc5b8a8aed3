package model

import "time"

type LessonType string

const (
	LessonTypeBoulder LessonType = "boulder"
	LessonTypeLead    LessonType = "lead"
	LessonTypeBoth    LessonType = "both"
)

type ClassType string

const (
	ClassTypeTrial  ClassType = "trial"  // Пробное занятие
	ClassTypeMaster ClassType = "master" // Мастер-класс
	ClassTypeOpen   ClassType = "open"   // Обычная открытая группа
)

// Форматы даты и времени слота
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// LessonSlot одно занятие школы с ограниченной вместимостью
type LessonSlot struct {
	ID         string     `json:"-"`
	TeacherID  string     `json:"teacherId" validate:"required"`
	Date       string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string     `json:"time" validate:"required,datetime=15:04"`
	LessonType LessonType `json:"lessonType" validate:"required,oneof=boulder lead both"`
	Capacity   int        `json:"capacity" validate:"gte=0"`
	Memo       string     `json:"memo,omitempty" validate:"max=500"`
	ClassType  ClassType  `json:"classType" validate:"required,oneof=trial master open"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// StartsAt возвращает момент начала занятия в указанной зоне
func (s *LessonSlot) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, s.Date+" "+s.Time, loc)
}
