package model

import "time"

type UpdateStatus string

const (
	UpdateStatusPending          UpdateStatus = "pending"
	UpdateStatusSent             UpdateStatus = "sent"
	UpdateStatusSkippedCooldown  UpdateStatus = "skipped_cooldown"
	UpdateStatusSkippedNoTeacher UpdateStatus = "skipped_no_teacher"
	UpdateStatusSkippedNoTokens  UpdateStatus = "skipped_no_tokens"
)

// ScheduleUpdate событие "расписание школы изменилось"
type ScheduleUpdate struct {
	ID          string       `json:"-"`
	TeacherID   string       `json:"teacherId"`
	Processed   bool         `json:"processed"`
	Status      UpdateStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ProcessedAt *time.Time   `json:"processedAt,omitempty"`
}
