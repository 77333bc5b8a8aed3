package formatting

import (
	"fmt"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
)

// LessonTypeName название типа занятия
func LessonTypeName(t model.LessonType) string {
	switch t {
	case model.LessonTypeBoulder:
		return "Боулдеринг"
	case model.LessonTypeLead:
		return "Трудность"
	case model.LessonTypeBoth:
		return "Боулдеринг + трудность"
	default:
		return string(t)
	}
}

// ClassTypeName название формата занятия
func ClassTypeName(t model.ClassType) string {
	switch t {
	case model.ClassTypeTrial:
		return "Пробное"
	case model.ClassTypeMaster:
		return "Мастер-класс"
	case model.ClassTypeOpen:
		return "Группа"
	default:
		return string(t)
	}
}

// FormatSeats свободные места: "🟢 3 из 6", "🔴 мест нет"
func FormatSeats(capacity, attending int) string {
	remaining := capacity - attending
	switch {
	case remaining <= 0:
		return fmt.Sprintf("🔴 мест нет (%d/%d)", attending, capacity)
	case remaining == 1:
		return fmt.Sprintf("🟡 1 место из %d", capacity)
	default:
		return fmt.Sprintf("🟢 %d из %d", remaining, capacity)
	}
}
