package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/google/uuid"
)

type SlotRepository struct {
	db store.Gateway
}

func NewSlotRepository(db store.Gateway) *SlotRepository {
	return &SlotRepository{db: db}
}

// WithGateway возвращает репозиторий поверх другого шлюза (например, транзакции)
func (r *SlotRepository) WithGateway(db store.Gateway) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.LessonSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	fields, err := toFields(slot)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	if err := r.db.Create(ctx, store.CollectionSlots, slot.ID, fields); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*model.LessonSlot, error) {
	doc, err := r.db.Get(ctx, store.CollectionSlots, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return decodeSlot(doc)
}

// GetByTeacherID получает все слоты школы, отсортированные по дате и времени
func (r *SlotRepository) GetByTeacherID(ctx context.Context, teacherID string) ([]*model.LessonSlot, error) {
	docs, err := r.db.Query(ctx, store.CollectionSlots, store.Eq("teacherId", teacherID))
	if err != nil {
		return nil, fmt.Errorf("get slots by teacher: %w", err)
	}

	slots := make([]*model.LessonSlot, 0, len(docs))
	for _, doc := range docs {
		slot, err := decodeSlot(doc)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	SortSlots(slots)
	return slots, nil
}

// GetByClassType получает слоты всех школ заданного вида, отсортированные по дате и времени
func (r *SlotRepository) GetByClassType(ctx context.Context, classType model.ClassType) ([]*model.LessonSlot, error) {
	docs, err := r.db.Query(ctx, store.CollectionSlots, store.Eq("classType", string(classType)))
	if err != nil {
		return nil, fmt.Errorf("get slots by class type: %w", err)
	}

	slots := make([]*model.LessonSlot, 0, len(docs))
	for _, doc := range docs {
		slot, err := decodeSlot(doc)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	SortSlots(slots)
	return slots, nil
}

// Update обновляет поля слота
func (r *SlotRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.db.Update(ctx, store.CollectionSlots, id, fields); err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

// Delete удаляет слот
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, store.CollectionSlots, id); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// SortSlots сортирует слоты по дате, затем по времени
func SortSlots(slots []*model.LessonSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		if slots[i].Time != slots[j].Time {
			return slots[i].Time < slots[j].Time
		}
		return slots[i].ID < slots[j].ID
	})
}

func decodeSlot(doc store.Document) (*model.LessonSlot, error) {
	var slot model.LessonSlot
	if err := fromDoc(doc, &slot); err != nil {
		return nil, fmt.Errorf("scan slot: %w", err)
	}
	slot.ID = doc.ID
	return &slot, nil
}
