package model

import "time"

// Participation запись пользователя на слот (присутствие или отсутствие)
type Participation struct {
	ID        string    `json:"-"`
	UserID    string    `json:"userId"`
	SlotID    string    `json:"scheduleId"`
	IsAbsent  bool      `json:"isAbsent"`
	CreatedAt time.Time `json:"createdAt"`

	// Дополнительные поля для удобства (не из БД)
	Slot *LessonSlot `json:"-"`
}
