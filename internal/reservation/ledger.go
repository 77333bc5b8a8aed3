package reservation

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
)

// Ledger считает занятые места слота по записям участия.
// Количество не хранится, а пересчитывается при каждом вызове.
type Ledger struct {
	participations *repository.ParticipationRepository
}

// NewLedger создаёт ledger поверх шлюза хранилища
func NewLedger(db store.Gateway) *Ledger {
	return &Ledger{participations: repository.NewParticipationRepository(db)}
}

// CountAttending возвращает число различных пользователей, записанных на слот и не отметивших отсутствие.
// Для несуществующего слота возвращает 0.
func (l *Ledger) CountAttending(ctx context.Context, slotID string) (int, error) {
	items, err := l.participations.GetBySlotID(ctx, slotID)
	if err != nil {
		return 0, fmt.Errorf("count attending: %w", err)
	}
	return len(attendingUsers(items)[slotID]), nil
}

// HasParticipation проверяет наличие записи пользователя на слот прямым чтением по ID
func (l *Ledger) HasParticipation(ctx context.Context, slotID, userID string) (bool, error) {
	id, err := ParticipationID(slotID, userID)
	if err != nil {
		return false, err
	}
	return l.participations.Exists(ctx, id)
}

// AttendanceBySlot считает присутствующих для нескольких слотов разом
func (l *Ledger) AttendanceBySlot(ctx context.Context, slotIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(slotIDs))
	if len(slotIDs) == 0 {
		return counts, nil
	}

	items, err := l.participations.GetBySlotIDs(ctx, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("attendance by slot: %w", err)
	}

	for sid, users := range attendingUsers(items) {
		counts[sid] = len(users)
	}
	return counts, nil
}

// attendingUsers группирует не отсутствующих пользователей по слотам, удаляя дубликаты.
// Дубликаты возможны в старых записях со случайными ID.
func attendingUsers(items []*model.Participation) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, p := range items {
		if p.IsAbsent {
			continue
		}
		users, ok := out[p.SlotID]
		if !ok {
			users = make(map[string]struct{})
			out[p.SlotID] = users
		}
		users[p.UserID] = struct{}{}
	}
	return out
}
