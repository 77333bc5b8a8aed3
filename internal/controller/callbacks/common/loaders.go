package common

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
)

// LoadSlotRows собирает ближайшие слоты школы с числом участников и состоянием пользователя.
// Для admin=true возвращаются все слоты начиная с сегодняшнего дня, включая пробные.
func LoadSlotRows(ctx context.Context, h *callbacktypes.Handler, schoolID, userID string, admin bool) (*model.School, []SlotRow, error) {
	school, err := h.SchoolService.Get(ctx, schoolID)
	if err != nil {
		return nil, nil, err
	}

	now := h.Now()
	var slots []*model.LessonSlot
	if admin {
		slots, err = h.ScheduleService.ListSlots(ctx, schoolID, now.Format(model.DateLayout), "")
	} else {
		slots, err = h.ScheduleService.ListUpcoming(ctx, schoolID, now)
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := slotRows(ctx, h, slots, userID)
	if err != nil {
		return nil, nil, err
	}
	return school, rows, nil
}

// LoadTrialRows собирает предстоящие пробные занятия всех школ со школой каждого слота
func LoadTrialRows(ctx context.Context, h *callbacktypes.Handler, userID string) ([]SlotRow, error) {
	slots, err := h.ScheduleService.ListTrial(ctx, h.Now())
	if err != nil {
		return nil, err
	}

	schools, err := h.SchoolService.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.School, len(schools))
	for _, s := range schools {
		byID[s.ID] = s
	}

	rows, err := slotRows(ctx, h, slots, userID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].School = byID[rows[i].Slot.TeacherID]
	}
	return rows, nil
}

func slotRows(ctx context.Context, h *callbacktypes.Handler, slots []*model.LessonSlot, userID string) ([]SlotRow, error) {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	counts, err := h.Coordinator.Ledger().AttendanceBySlot(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]SlotRow, 0, len(slots))
	for _, s := range slots {
		row := SlotRow{Slot: s, Attending: counts[s.ID], State: reservation.StateNone}
		if userID != "" {
			st, err := h.Coordinator.State(ctx, s.ID, userID)
			if err != nil {
				return nil, fmt.Errorf("load participation state: %w", err)
			}
			row.State = st
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadMyParticipations собирает записи пользователя и число участников по их слотам
func LoadMyParticipations(ctx context.Context, h *callbacktypes.Handler, userID string) ([]*model.Participation, map[string]int, error) {
	items, err := h.ScheduleService.ListParticipations(ctx, userID, h.Now())
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.SlotID)
	}
	counts, err := h.Coordinator.Ledger().AttendanceBySlot(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return items, counts, nil
}
