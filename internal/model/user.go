package model

import "time"

type User struct {
	ID                 string    `json:"-"`
	TelegramID         int64     `json:"telegramId"`
	Username           string    `json:"username"`
	Name               string    `json:"name"`
	IsAdmin            bool      `json:"isAdmin"`
	MySchools          []string  `json:"myTeachers"`
	NotificationTokens []string  `json:"notificationTokens"`
	CreatedAt          time.Time `json:"createdAt"`
}
