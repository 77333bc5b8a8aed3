package reservation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
)

// Общие помощники для тестов пакета

func seedSlot(ctx context.Context, db store.Gateway, id string, capacity int) *model.LessonSlot {
	slot := &model.LessonSlot{
		ID:         id,
		TeacherID:  "school-1",
		Date:       "2026-10-20",
		Time:       "18:00",
		LessonType: model.LessonTypeBoulder,
		Capacity:   capacity,
		ClassType:  model.ClassTypeOpen,
		CreatedAt:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repository.NewSlotRepository(db).Create(ctx, slot); err != nil {
		panic(err)
	}
	return slot
}

func seedParticipation(ctx context.Context, db store.Gateway, id, slotID, userID string, absent bool) {
	fields := map[string]any{
		"userId":     userID,
		"scheduleId": slotID,
		"isAbsent":   absent,
		"createdAt":  time.Now().UTC(),
	}
	if err := db.Set(ctx, store.CollectionParticipations, id, fields); err != nil {
		panic(err)
	}
}

// barrier отпускает всех ожидающих, когда их набирается n
type barrier struct {
	n       int
	mu      sync.Mutex
	arrived int
	ch      chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, ch: make(chan struct{})}
}

func (b *barrier) wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.ch)
	}
	b.mu.Unlock()

	select {
	case <-b.ch:
	case <-time.After(2 * time.Second):
	}
}

// raceGateway forces concurrent claimants through the same protocol phase:
// all pass the pre-check before anyone writes, all write before anyone
// re-verifies, and all re-verify before anyone compensates.
type raceGateway struct {
	store.Gateway
	beforeCreate *barrier
	afterCreate  *barrier
	beforeUpdate *barrier

	mu      sync.Mutex
	updated []string
}

func newRaceGateway(inner store.Gateway, n int) *raceGateway {
	return &raceGateway{
		Gateway:      inner,
		beforeCreate: newBarrier(n),
		afterCreate:  newBarrier(n),
		beforeUpdate: newBarrier(n),
	}
}

func (g *raceGateway) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	if collection != store.CollectionParticipations {
		return g.Gateway.Create(ctx, collection, id, fields)
	}
	g.beforeCreate.wait()
	err := g.Gateway.Create(ctx, collection, id, fields)
	g.afterCreate.wait()
	return err
}

func (g *raceGateway) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if collection == store.CollectionParticipations {
		g.beforeUpdate.wait()
		g.mu.Lock()
		g.updated = append(g.updated, id)
		g.mu.Unlock()
	}
	return g.Gateway.Update(ctx, collection, id, fields)
}

func (g *raceGateway) updatedIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.updated...)
}

// failingGateway возвращает ошибку для выбранных операций
type failingGateway struct {
	store.Gateway
	failQuery  bool
	failGet    bool
	failCreate bool
	failUpdate bool
}

var errStoreDown = errors.New("store is down")

func (g *failingGateway) Get(ctx context.Context, collection, id string) (store.Document, error) {
	if g.failGet {
		return store.Document{}, errStoreDown
	}
	return g.Gateway.Get(ctx, collection, id)
}

func (g *failingGateway) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	if g.failQuery {
		return nil, errStoreDown
	}
	return g.Gateway.Query(ctx, collection, filters...)
}

func (g *failingGateway) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	if g.failCreate {
		return errStoreDown
	}
	return g.Gateway.Create(ctx, collection, id, fields)
}

func (g *failingGateway) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if g.failUpdate {
		return errStoreDown
	}
	return g.Gateway.Update(ctx, collection, id, fields)
}
