package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/redis/go-redis/v9"
)

// Cooldown ограничивает частоту уведомлений по одной школе
type Cooldown interface {
	// Acquire возвращает true, если уведомление можно отправить, и открывает новое окно
	Acquire(ctx context.Context, teacherID string, window time.Duration) (bool, error)
}

// RedisCooldown хранит окно как ключ с TTL (SET NX PX)
type RedisCooldown struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCooldown(client redis.Cmdable) *RedisCooldown {
	return &RedisCooldown{client: client, prefix: "notify:cooldown:"}
}

func (c *RedisCooldown) Acquire(ctx context.Context, teacherID string, window time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+teacherID, time.Now().UTC().Format(time.RFC3339), window).Result()
	if err != nil {
		return false, fmt.Errorf("acquire redis cooldown: %w", err)
	}
	return ok, nil
}

// StoreCooldown хранит время последнего уведомления в коллекции notificationState
type StoreCooldown struct {
	db  store.Gateway
	now func() time.Time
}

func NewStoreCooldown(db store.Gateway) *StoreCooldown {
	return &StoreCooldown{db: db, now: time.Now}
}

func (c *StoreCooldown) Acquire(ctx context.Context, teacherID string, window time.Duration) (bool, error) {
	tx, ok := c.db.(store.Transactor)
	if !ok {
		return c.acquire(ctx, repository.NewNotificationStateRepository(c.db), teacherID, window)
	}

	var acquired bool
	err := tx.WithinLock(ctx, "notify:"+teacherID, func(ctx context.Context, g store.Gateway) error {
		var err error
		acquired, err = c.acquire(ctx, repository.NewNotificationStateRepository(g), teacherID, window)
		return err
	})
	return acquired, err
}

func (c *StoreCooldown) acquire(ctx context.Context, repo *repository.NotificationStateRepository, teacherID string, window time.Duration) (bool, error) {
	now := c.now()

	last, ok, err := repo.GetLastNotified(ctx, teacherID)
	if err != nil {
		return false, fmt.Errorf("acquire store cooldown: %w", err)
	}
	if ok && now.Sub(last) < window {
		return false, nil
	}

	if err := repo.SetLastNotified(ctx, teacherID, now); err != nil {
		return false, fmt.Errorf("acquire store cooldown: %w", err)
	}
	return true, nil
}
