package common

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// SlotRow слот с числом участников и состоянием текущего пользователя
type SlotRow struct {
	Slot      *model.LessonSlot
	Attending int
	State     reservation.State
	// School заполняется на экранах, где собраны слоты разных школ
	School *model.School
}

// bookingPrefixes префиксы кнопок записи для конкретного экрана
type bookingPrefixes struct {
	participate, absent, rejoin, cancel string
}

var (
	schoolPrefixes = bookingPrefixes{Participate, Absent, Rejoin, Cancel}
	trialPrefixes  = bookingPrefixes{TrialParticipate, TrialAbsent, TrialRejoin, TrialCancel}
)

func bookingRow(kb *keyboard.Builder, r SlotRow, p bookingPrefixes) {
	when := formatting.FormatSlotWhen(r.Slot)
	switch r.State {
	case reservation.StateAttending:
		kb.Row(keyboard.Button(when+" ↩️ Отменить", Data(p.cancel, r.Slot.ID)))
	case reservation.StateAbsent:
		kb.Row(keyboard.Button(when+" 🔄 Всё-таки приду", Data(p.rejoin, r.Slot.ID)))
	default:
		kb.Row(
			keyboard.Button(when+" ✅ Записаться", Data(p.participate, r.Slot.ID)),
			keyboard.Button("🙅 Не приду", Data(p.absent, r.Slot.ID)),
		)
	}
}

// BuildSchoolsScreen формирует список школ; отмеченные пользователем помечены звездой
func BuildSchoolsScreen(schools []*model.School, mine []string) (string, *models.InlineKeyboardMarkup) {
	if len(schools) == 0 {
		return "🧗 Пока нет ни одной школы.", nil
	}

	kb := keyboard.NewBuilder()
	for _, s := range schools {
		star := "☆"
		if slices.Contains(mine, s.ID) {
			star = "⭐"
		}
		kb.Row(
			keyboard.Button("🧗 "+s.DisplayName(), Data(SchoolSlots, s.ID)),
			keyboard.Button(star, Data(ToggleMine, s.ID)),
		)
	}
	kb.Row(keyboard.Button("🆕 Пробные занятия", TrialSlots))

	return "🏫 <b>Школы</b>\n\nВыберите школу, чтобы посмотреть занятия.\n⭐ отмечает ваши школы.", kb.Build()
}

// BuildSlotsScreen формирует расписание школы с кнопками по состоянию пользователя
func BuildSlotsScreen(school *model.School, rows []SlotRow) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>%s</b>\n\n", html.EscapeString(school.DisplayName()))

	kb := keyboard.NewBuilder()
	if len(rows) == 0 {
		sb.WriteString("Ближайших занятий нет.")
	}

	for _, r := range rows {
		writeSlotLine(&sb, r)
		bookingRow(kb, r, schoolPrefixes)
	}

	kb.Row(keyboard.Button("⬅️ К школам", BackToSchools))
	return sb.String(), kb.Build()
}

// BuildTrialScreen формирует пробные занятия всех школ; школа указана у каждого слота
func BuildTrialScreen(rows []SlotRow) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("🆕 <b>Пробные занятия</b>\n\n")

	kb := keyboard.NewBuilder()
	if len(rows) == 0 {
		sb.WriteString("Ближайших пробных занятий нет.")
	}

	for _, r := range rows {
		writeSlotLine(&sb, r)
		bookingRow(kb, r, trialPrefixes)
	}

	kb.Row(keyboard.Button("🏫 К школам", BackToSchools))
	return sb.String(), kb.Build()
}

// BuildMyScreen формирует список записей пользователя
func BuildMyScreen(items []*model.Participation, attending map[string]int) (string, *models.InlineKeyboardMarkup) {
	if len(items) == 0 {
		return "📭 У вас нет записей на ближайшие занятия.\n\nВыберите школу: /schools", nil
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Мои записи</b>\n\n")

	kb := keyboard.NewBuilder()
	for _, p := range items {
		state := reservation.StateAttending
		if p.IsAbsent {
			state = reservation.StateAbsent
		}
		writeSlotLine(&sb, SlotRow{Slot: p.Slot, Attending: attending[p.SlotID], State: state})

		when := formatting.FormatSlotWhen(p.Slot)
		if p.IsAbsent {
			kb.Row(keyboard.Button(when+" 🔄 Всё-таки приду", Data(MyRejoin, p.SlotID)))
		} else {
			kb.Row(keyboard.Button(when+" ↩️ Отменить", Data(MyCancel, p.SlotID)))
		}
	}
	kb.Row(keyboard.Button("🏫 К школам", BackToSchools))
	return sb.String(), kb.Build()
}

// BuildAdminSlotsScreen формирует расписание школы для администратора
func BuildAdminSlotsScreen(school *model.School, rows []SlotRow) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛠 <b>%s</b>: управление занятиями\n\n", html.EscapeString(school.DisplayName()))
	if len(rows) == 0 {
		sb.WriteString("Занятий нет. Добавить: /addslot")
	}

	kb := keyboard.NewBuilder()
	for _, r := range rows {
		writeSlotLine(&sb, r)
		fmt.Fprintf(&sb, "   <code>%s</code>\n", r.Slot.ID)

		kb.Row(
			keyboard.Button("➖", Data(AdminCapacityDown, r.Slot.ID)),
			keyboard.Button(fmt.Sprintf("%s · %d мест", formatting.FormatSlotWhen(r.Slot), r.Slot.Capacity), Noop),
			keyboard.Button("➕", Data(AdminCapacityUp, r.Slot.ID)),
			keyboard.Button("🗑", Data(AdminDelete, r.Slot.ID)),
		)
	}
	return sb.String(), kb.Build()
}

// BuildAdminSchoolsScreen список школ для перехода к управлению занятиями
func BuildAdminSchoolsScreen(schools []*model.School) (string, *models.InlineKeyboardMarkup) {
	if len(schools) == 0 {
		return "🏫 Школ пока нет. Добавить: /addschool", nil
	}

	var sb strings.Builder
	sb.WriteString("🛠 <b>Управление занятиями</b>\n\n")
	kb := keyboard.NewBuilder()
	for _, s := range schools {
		fmt.Fprintf(&sb, "• %s <code>%s</code>\n", html.EscapeString(s.DisplayName()), s.ID)
		kb.Row(keyboard.Button("🛠 "+s.DisplayName(), Data(AdminSlots, s.ID)))
	}
	return sb.String(), kb.Build()
}

// BuildConfirmDeleteScreen запрашивает подтверждение удаления слота
func BuildConfirmDeleteScreen(slot *model.LessonSlot, attending int) (string, *models.InlineKeyboardMarkup) {
	text := fmt.Sprintf(
		"🗑 <b>Удалить занятие?</b>\n\n%s · %s\nЗаписано: %d\n\nВсе записи на это занятие будут удалены.",
		formatting.FormatSlotWhen(slot),
		formatting.LessonTypeName(slot.LessonType),
		attending,
	)

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("✅ Да, удалить", Data(AdminConfirmDelete, slot.ID)),
			keyboard.Button("❌ Отмена", Data(AdminSlots, slot.TeacherID)),
		)
	return text, kb.Build()
}

// FormatCascadeReport итог удаления слота для администратора
func FormatCascadeReport(report service.CascadeReport) string {
	if report.Err != nil {
		return fmt.Sprintf("⚠️ Занятие удалено. Записей удалено: %d из %d, не удалось: %d",
			report.Deleted, report.Participations, report.Failed())
	}
	return fmt.Sprintf("✅ Занятие удалено вместе с записями (%d)", report.Deleted)
}

func writeSlotLine(sb *strings.Builder, r SlotRow) {
	mark := ""
	switch r.State {
	case reservation.StateAttending:
		mark = " ✅"
	case reservation.StateAbsent:
		mark = " 🙅"
	}

	fmt.Fprintf(sb, "• <b>%s</b> %s · %s%s\n   %s\n",
		formatting.FormatSlotWhen(r.Slot),
		formatting.LessonTypeName(r.Slot.LessonType),
		formatting.ClassTypeName(r.Slot.ClassType),
		mark,
		formatting.FormatSeats(r.Slot.Capacity, r.Attending),
	)
	if r.School != nil {
		fmt.Fprintf(sb, "   🏫 %s\n", html.EscapeString(r.School.DisplayName()))
	}
	if r.Slot.Memo != "" {
		fmt.Fprintf(sb, "   📝 %s\n", html.EscapeString(r.Slot.Memo))
	}
}
