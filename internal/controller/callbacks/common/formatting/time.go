package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
)

var weekdayShort = []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// FormatSlotDate "2026-10-20" -> "Вт 20.10"; нераспознанная дата возвращается как есть
func FormatSlotDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s %s", weekdayShort[t.Weekday()], t.Format("02.01"))
}

// FormatSlotWhen дата и время занятия
func FormatSlotWhen(slot *model.LessonSlot) string {
	return FormatSlotDate(slot.Date) + " " + slot.Time
}
