package reservation

import (
	"context"
	"fmt"
	"testing"

	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCountAttending(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown slot counts zero", func(t *testing.T) {
		l := NewLedger(store.NewMemoryStore())

		n, err := l.CountAttending(ctx, "ghost")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("absent records are excluded", func(t *testing.T) {
		db := store.NewMemoryStore()
		seedParticipation(ctx, db, "s1_a", "s1", "a", false)
		seedParticipation(ctx, db, "s1_b", "s1", "b", true)
		seedParticipation(ctx, db, "s1_c", "s1", "c", false)
		seedParticipation(ctx, db, "s2_a", "s2", "a", false)

		n, err := NewLedger(db).CountAttending(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("legacy duplicates are counted once", func(t *testing.T) {
		db := store.NewMemoryStore()
		seedParticipation(ctx, db, "s1_a", "s1", "a", false)
		seedParticipation(ctx, db, "legacy-1", "s1", "a", false)
		seedParticipation(ctx, db, "legacy-2", "s1", "a", false)
		seedParticipation(ctx, db, "legacy-3", "s1", "b", true)

		n, err := NewLedger(db).CountAttending(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		l := NewLedger(&failingGateway{Gateway: store.NewMemoryStore(), failQuery: true})

		_, err := l.CountAttending(ctx, "s1")
		assert.ErrorIs(t, err, errStoreDown)
	})
}

func TestLedgerHasParticipation(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	seedParticipation(ctx, db, "s1_a", "s1", "a", true)
	// Запись со случайным ID не находится прямым чтением
	seedParticipation(ctx, db, "legacy", "s1", "b", false)

	l := NewLedger(db)

	ok, err := l.HasParticipation(ctx, "s1", "a")
	require.NoError(t, err)
	assert.True(t, ok, "absent record still counts as a participation")

	ok, err = l.HasParticipation(ctx, "s1", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.HasParticipation(ctx, "s_1", "a")
	assert.ErrorIs(t, err, ErrInvalidKeyComponent)
}

func TestLedgerAttendanceBySlot(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()

	// 25 слотов, чтобы запрос разбился на несколько частей
	var ids []string
	for i := 0; i < 25; i++ {
		sid := fmt.Sprintf("slot%02d", i)
		ids = append(ids, sid)
		for u := 0; u < i%4; u++ {
			uid := fmt.Sprintf("u%d", u)
			seedParticipation(ctx, db, sid+"_"+uid, sid, uid, false)
		}
	}
	seedParticipation(ctx, db, "slot03_x", "slot03", "x", true)

	counts, err := NewLedger(db).AttendanceBySlot(ctx, ids)
	require.NoError(t, err)

	for i, sid := range ids {
		assert.Equal(t, i%4, counts[sid], sid)
	}

	empty, err := NewLedger(db).AttendanceBySlot(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
