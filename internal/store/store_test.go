package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("get missing document", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Get(ctx, "c", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set normalizes value types", func(t *testing.T) {
		s := NewMemoryStore()

		require.NoError(t, s.Set(ctx, "c", "1", map[string]any{"n": 3, "ok": true, "tags": []string{"a"}}))

		doc, err := s.Get(ctx, "c", "1")
		require.NoError(t, err)
		assert.Equal(t, float64(3), doc.Fields["n"])
		assert.Equal(t, true, doc.Fields["ok"])
		assert.Equal(t, []any{"a"}, doc.Fields["tags"])
	})

	t.Run("create is conditional", func(t *testing.T) {
		s := NewMemoryStore()

		require.NoError(t, s.Create(ctx, "c", "1", map[string]any{"v": "first"}))
		err := s.Create(ctx, "c", "1", map[string]any{"v": "second"})
		assert.ErrorIs(t, err, ErrAlreadyExists)

		doc, err := s.Get(ctx, "c", "1")
		require.NoError(t, err)
		assert.Equal(t, "first", doc.Fields["v"])
	})

	t.Run("update merges and requires existing", func(t *testing.T) {
		s := NewMemoryStore()

		assert.ErrorIs(t, s.Update(ctx, "c", "1", map[string]any{"v": 1}), ErrNotFound)

		require.NoError(t, s.Set(ctx, "c", "1", map[string]any{"a": "x", "b": "y"}))
		require.NoError(t, s.Update(ctx, "c", "1", map[string]any{"b": "z"}))

		doc, err := s.Get(ctx, "c", "1")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": "x", "b": "z"}, doc.Fields)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := NewMemoryStore()

		require.NoError(t, s.Set(ctx, "c", "1", map[string]any{}))
		require.NoError(t, s.Delete(ctx, "c", "1"))
		require.NoError(t, s.Delete(ctx, "c", "1"))
		assert.Equal(t, 0, s.Len("c"))
	})

	t.Run("returned documents are copies", func(t *testing.T) {
		s := NewMemoryStore()

		require.NoError(t, s.Set(ctx, "c", "1", map[string]any{"v": "orig"}))
		doc, err := s.Get(ctx, "c", "1")
		require.NoError(t, err)
		doc.Fields["v"] = "changed"

		again, err := s.Get(ctx, "c", "1")
		require.NoError(t, err)
		assert.Equal(t, "orig", again.Fields["v"])
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := NewMemoryStore()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, s.Set(cctx, "c", "1", map[string]any{}), context.Canceled)
	})
}

func TestMemoryStoreQuery(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "p", "a", map[string]any{"slot": "s1", "absent": false, "n": 1}))
	require.NoError(t, s.Set(ctx, "p", "b", map[string]any{"slot": "s1", "absent": true, "n": 2}))
	require.NoError(t, s.Set(ctx, "p", "c", map[string]any{"slot": "s2", "absent": false, "n": 3}))
	require.NoError(t, s.Set(ctx, "other", "d", map[string]any{"slot": "s1"}))

	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{"no filters", nil, []string{"a", "b", "c"}},
		{"equality", []Filter{Eq("slot", "s1")}, []string{"a", "b"}},
		{"conjunction", []Filter{Eq("slot", "s1"), Eq("absent", false)}, []string{"a"}},
		{"numeric equality", []Filter{Eq("n", 3)}, []string{"c"}},
		{"membership", []Filter{In("slot", []string{"s2", "s9"})}, []string{"c"}},
		{"empty membership", []Filter{In("slot", []string{})}, nil},
		{"missing field", []Filter{Eq("nope", "x")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, "p", tt.filters...)
			require.NoError(t, err)

			var ids []string
			for _, d := range docs {
				ids = append(ids, d.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}

	t.Run("unsupported operator", func(t *testing.T) {
		_, err := s.Query(ctx, "p", Filter{Field: "n", Op: ">", Value: 1})
		assert.ErrorIs(t, err, ErrUnsupportedOp)
	})

	t.Run("membership needs a list", func(t *testing.T) {
		_, err := s.Query(ctx, "p", Filter{Field: "slot", Op: OpIn, Value: "s1"})
		assert.Error(t, err)
	})
}

func TestMemoryStoreWithinLock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "counter", "x", map[string]any{"n": 0}))

	// Чтение-изменение-запись под одним ключом не должна терять обновления
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithinLock(ctx, "counter:x", func(ctx context.Context, g Gateway) error {
				doc, err := g.Get(ctx, "counter", "x")
				if err != nil {
					return err
				}
				n := doc.Fields["n"].(float64)
				return g.Update(ctx, "counter", "x", map[string]any{"n": n + 1})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	doc, err := s.Get(ctx, "counter", "x")
	require.NoError(t, err)
	assert.Equal(t, float64(50), doc.Fields["n"])

	t.Run("propagates fn error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithinLock(ctx, "k", func(context.Context, Gateway) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestBuildWhere(t *testing.T) {
	where, args, err := buildWhere("participations", []Filter{
		Eq("scheduleId", "s1"),
		In("userId", []string{"u1", "u2"}),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"collection = $1 AND fields -> $2::text = $3::jsonb AND fields -> $4::text IN (SELECT jsonb_array_elements($5::jsonb))",
		where)
	assert.Equal(t, []any{"participations", "scheduleId", `"s1"`, "userId", `["u1","u2"]`}, args)

	_, _, err = buildWhere("c", []Filter{{Field: "f", Op: "<", Value: 1}})
	assert.ErrorIs(t, err, ErrUnsupportedOp)
}

func ExampleIn() {
	f := In("scheduleId", []string{"a", "b"})
	fmt.Println(f.Op, len(f.Value.([]any)))
	// Output: in 2
}
