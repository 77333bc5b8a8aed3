package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
)

// NotificationStateRepository хранит время последнего уведомления по школе
type NotificationStateRepository struct {
	db store.Gateway
}

func NewNotificationStateRepository(db store.Gateway) *NotificationStateRepository {
	return &NotificationStateRepository{db: db}
}

// WithGateway возвращает репозиторий поверх другого шлюза (например, транзакции)
func (r *NotificationStateRepository) WithGateway(db store.Gateway) *NotificationStateRepository {
	return &NotificationStateRepository{db: db}
}

type notificationState struct {
	LastNotifiedAt time.Time `json:"lastNotifiedAt"`
}

// GetLastNotified возвращает время последнего уведомления; ok=false если уведомлений не было
func (r *NotificationStateRepository) GetLastNotified(ctx context.Context, teacherID string) (time.Time, bool, error) {
	doc, err := r.db.Get(ctx, store.CollectionNotifyState, teacherID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("get notification state: %w", err)
	}

	var state notificationState
	if err := fromDoc(doc, &state); err != nil {
		return time.Time{}, false, fmt.Errorf("scan notification state: %w", err)
	}
	return state.LastNotifiedAt, true, nil
}

// SetLastNotified сохраняет время последнего уведомления
func (r *NotificationStateRepository) SetLastNotified(ctx context.Context, teacherID string, at time.Time) error {
	fields, err := toFields(notificationState{LastNotifiedAt: at.UTC()})
	if err != nil {
		return fmt.Errorf("set notification state: %w", err)
	}
	if err := r.db.Set(ctx, store.CollectionNotifyState, teacherID, fields); err != nil {
		return fmt.Errorf("set notification state: %w", err)
	}
	return nil
}
