package common

import (
	"errors"

	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNotAdmin      = errors.New("user is not an admin")
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNotAdmin):
		return "❌ Эта функция доступна только администраторам"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат данных"
	case errors.Is(err, service.ErrSlotNotFound):
		return "❌ Занятие не найдено"
	case errors.Is(err, service.ErrSchoolNotFound):
		return "❌ Школа не найдена"
	case errors.Is(err, service.ErrInvalidInput):
		return "❌ Неверные данные: " + err.Error()
	default:
		return "❌ Произошла ошибка"
	}
}
