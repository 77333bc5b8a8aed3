package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
)

type ParticipationRepository struct {
	db store.Gateway
}

func NewParticipationRepository(db store.Gateway) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// WithGateway возвращает репозиторий поверх другого шлюза (например, транзакции)
func (r *ParticipationRepository) WithGateway(db store.Gateway) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create создаёт запись; store.ErrAlreadyExists если запись с таким ID уже есть
func (r *ParticipationRepository) Create(ctx context.Context, p *model.Participation) error {
	fields, err := toFields(p)
	if err != nil {
		return fmt.Errorf("create participation: %w", err)
	}

	if err := r.db.Create(ctx, store.CollectionParticipations, p.ID, fields); err != nil {
		return fmt.Errorf("create participation: %w", err)
	}
	return nil
}

// GetByID получает запись по детерминированному ID
func (r *ParticipationRepository) GetByID(ctx context.Context, id string) (*model.Participation, error) {
	doc, err := r.db.Get(ctx, store.CollectionParticipations, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get participation by id: %w", err)
	}

	return decodeParticipation(doc)
}

// Exists проверяет наличие записи прямым чтением по ID
func (r *ParticipationRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.db.Get(ctx, store.CollectionParticipations, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check participation exists: %w", err)
	}
	return true, nil
}

// SetAbsent меняет флаг отсутствия на месте; store.ErrNotFound если записи нет
func (r *ParticipationRepository) SetAbsent(ctx context.Context, id string, absent bool) error {
	err := r.db.Update(ctx, store.CollectionParticipations, id, map[string]any{"isAbsent": absent})
	if err != nil {
		return fmt.Errorf("update participation: %w", err)
	}
	return nil
}

// GetBySlotID получает все записи слота
func (r *ParticipationRepository) GetBySlotID(ctx context.Context, slotID string) ([]*model.Participation, error) {
	docs, err := r.db.Query(ctx, store.CollectionParticipations, store.Eq("scheduleId", slotID))
	if err != nil {
		return nil, fmt.Errorf("get participations by slot: %w", err)
	}
	return decodeParticipations(docs)
}

// GetBySlotIDs получает записи нескольких слотов, запросами по 10 ID
func (r *ParticipationRepository) GetBySlotIDs(ctx context.Context, slotIDs []string) ([]*model.Participation, error) {
	var all []*model.Participation
	for _, ids := range chunk(slotIDs, membershipChunk) {
		docs, err := r.db.Query(ctx, store.CollectionParticipations, store.In("scheduleId", ids))
		if err != nil {
			return nil, fmt.Errorf("get participations by slots: %w", err)
		}
		items, err := decodeParticipations(docs)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

// GetByUserID получает все записи пользователя, новые первыми
func (r *ParticipationRepository) GetByUserID(ctx context.Context, userID string) ([]*model.Participation, error) {
	docs, err := r.db.Query(ctx, store.CollectionParticipations, store.Eq("userId", userID))
	if err != nil {
		return nil, fmt.Errorf("get participations by user: %w", err)
	}

	items, err := decodeParticipations(docs)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// Delete удаляет запись
func (r *ParticipationRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.Delete(ctx, store.CollectionParticipations, id); err != nil {
		return fmt.Errorf("delete participation: %w", err)
	}
	return nil
}

func decodeParticipations(docs []store.Document) ([]*model.Participation, error) {
	items := make([]*model.Participation, 0, len(docs))
	for _, doc := range sortedByID(docs) {
		p, err := decodeParticipation(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func decodeParticipation(doc store.Document) (*model.Participation, error) {
	var p model.Participation
	if err := fromDoc(doc, &p); err != nil {
		return nil, fmt.Errorf("scan participation: %w", err)
	}
	p.ID = doc.ID
	return &p, nil
}
