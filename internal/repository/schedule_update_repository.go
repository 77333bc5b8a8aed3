package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/google/uuid"
)

// ScheduleUpdateRepository очередь событий об изменении расписания
type ScheduleUpdateRepository struct {
	db store.Gateway
}

func NewScheduleUpdateRepository(db store.Gateway) *ScheduleUpdateRepository {
	return &ScheduleUpdateRepository{db: db}
}

// Enqueue добавляет событие для школы
func (r *ScheduleUpdateRepository) Enqueue(ctx context.Context, teacherID string) (*model.ScheduleUpdate, error) {
	update := &model.ScheduleUpdate{
		ID:        uuid.NewString(),
		TeacherID: teacherID,
		Status:    model.UpdateStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	fields, err := toFields(update)
	if err != nil {
		return nil, fmt.Errorf("enqueue schedule update: %w", err)
	}
	if err := r.db.Create(ctx, store.CollectionUpdates, update.ID, fields); err != nil {
		return nil, fmt.Errorf("enqueue schedule update: %w", err)
	}
	return update, nil
}

// GetPending получает необработанные события, старые первыми
func (r *ScheduleUpdateRepository) GetPending(ctx context.Context) ([]*model.ScheduleUpdate, error) {
	return r.getByProcessed(ctx, false)
}

// GetProcessed получает обработанные события
func (r *ScheduleUpdateRepository) GetProcessed(ctx context.Context) ([]*model.ScheduleUpdate, error) {
	return r.getByProcessed(ctx, true)
}

// MarkProcessed помечает событие обработанным с итоговым статусом
func (r *ScheduleUpdateRepository) MarkProcessed(ctx context.Context, id string, status model.UpdateStatus, at time.Time) error {
	err := r.db.Update(ctx, store.CollectionUpdates, id, map[string]any{
		"processed":   true,
		"status":      status,
		"processedAt": at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("mark schedule update processed: %w", err)
	}
	return nil
}

// Delete удаляет событие
func (r *ScheduleUpdateRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, store.CollectionUpdates, id); err != nil {
		return fmt.Errorf("delete schedule update: %w", err)
	}
	return nil
}

func (r *ScheduleUpdateRepository) getByProcessed(ctx context.Context, processed bool) ([]*model.ScheduleUpdate, error) {
	docs, err := r.db.Query(ctx, store.CollectionUpdates, store.Eq("processed", processed))
	if err != nil {
		return nil, fmt.Errorf("get schedule updates: %w", err)
	}

	updates := make([]*model.ScheduleUpdate, 0, len(docs))
	for _, doc := range docs {
		var u model.ScheduleUpdate
		if err := fromDoc(doc, &u); err != nil {
			return nil, fmt.Errorf("scan schedule update: %w", err)
		}
		u.ID = doc.ID
		updates = append(updates, &u)
	}

	sort.SliceStable(updates, func(i, j int) bool {
		if !updates[i].CreatedAt.Equal(updates[j].CreatedAt) {
			return updates[i].CreatedAt.Before(updates[j].CreatedAt)
		}
		return updates[i].ID < updates[j].ID
	})
	return updates, nil
}
