package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGateway struct {
	*store.MemoryStore
	queries atomic.Int32
}

func (g *countingGateway) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Document, error) {
	g.queries.Add(1)
	return g.MemoryStore.Query(ctx, collection, filters...)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, chunk([]int{}, 10))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Len(t, chunk(make([]string, 20), 10), 2)
}

func TestGetBySlotIDsChunks(t *testing.T) {
	ctx := context.Background()
	db := &countingGateway{MemoryStore: store.NewMemoryStore()}
	repo := NewParticipationRepository(db)

	var slotIDs []string
	for i := 0; i < 23; i++ {
		slotID := fmt.Sprintf("slot%02d", i)
		slotIDs = append(slotIDs, slotID)
		require.NoError(t, repo.Create(ctx, &model.Participation{
			ID:     slotID + "_u1",
			UserID: "u1",
			SlotID: slotID,
		}))
	}

	items, err := repo.GetBySlotIDs(ctx, slotIDs)
	require.NoError(t, err)
	assert.Len(t, items, 23)
	assert.Equal(t, int32(3), db.queries.Load())

	items, err = repo.GetBySlotIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(3), db.queries.Load(), "no ids means no queries")
}

func TestParticipationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewParticipationRepository(store.NewMemoryStore())

	p := &model.Participation{ID: "s1_u1", UserID: "u1", SlotID: "s1", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, p), store.ErrAlreadyExists)

	got, err := repo.GetByID(ctx, "s1_u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.SlotID)
	assert.False(t, got.IsAbsent)

	require.NoError(t, repo.SetAbsent(ctx, "s1_u1", true))
	got, err = repo.GetByID(ctx, "s1_u1")
	require.NoError(t, err)
	assert.True(t, got.IsAbsent)

	missing, err := repo.GetByID(ctx, "s2_u1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := repo.Exists(ctx, "s1_u1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, "s1_u1"))
	require.NoError(t, repo.Delete(ctx, "s1_u1"))
	ok, err = repo.Exists(ctx, "s1_u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepositoryTelegramLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore())

	user := &model.User{TelegramID: 987654321, Name: "Аня"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByTelegramID(ctx, 987654321)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, int64(987654321), got.TelegramID)

	none, err := repo.GetByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, repo.Update(ctx, user.ID, map[string]any{"myTeachers": []string{"leo"}}))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"leo"}, got.MySchools)
}

func TestSlotRepositoryOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSlotRepository(store.NewMemoryStore())

	for _, s := range []*model.LessonSlot{
		{TeacherID: "leo", Date: "2026-10-21", Time: "18:00"},
		{TeacherID: "leo", Date: "2026-10-20", Time: "20:00"},
		{TeacherID: "leo", Date: "2026-10-20", Time: "09:00"},
		{TeacherID: "other", Date: "2026-10-19", Time: "09:00"},
	} {
		require.NoError(t, repo.Create(ctx, s))
	}

	slots, err := repo.GetByTeacherID(ctx, "leo")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	var order []string
	for _, s := range slots {
		order = append(order, s.Date+" "+s.Time)
	}
	assert.Equal(t, []string{"2026-10-20 09:00", "2026-10-20 20:00", "2026-10-21 18:00"}, order)
}

func TestNotificationState(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationStateRepository(store.NewMemoryStore())

	_, ok, err := repo.GetLastNotified(ctx, "leo")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastNotified(ctx, "leo", at))

	got, ok, err := repo.GetLastNotified(ctx, "leo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
}
