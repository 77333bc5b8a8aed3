package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/google/uuid"
)

type UserRepository struct {
	db store.Gateway
}

func NewUserRepository(db store.Gateway) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	fields, err := toFields(user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err := r.db.Create(ctx, store.CollectionUsers, user.ID, fields); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := r.db.Get(ctx, store.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return decodeUser(doc)
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	docs, err := r.db.Query(ctx, store.CollectionUsers, store.Eq("telegramId", telegramID))
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(sortedByID(docs)[0])
}

// GetAll получает всех пользователей
func (r *UserRepository) GetAll(ctx context.Context) ([]*model.User, error) {
	docs, err := r.db.Query(ctx, store.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	users := make([]*model.User, 0, len(docs))
	for _, doc := range sortedByID(docs) {
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Update обновляет поля пользователя
func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := r.db.Update(ctx, store.CollectionUsers, id, fields); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func decodeUser(doc store.Document) (*model.User, error) {
	var u model.User
	if err := fromDoc(doc, &u); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = doc.ID
	return &u, nil
}
