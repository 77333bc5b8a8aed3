package reservation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipationID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		slot, user := uuid.NewString(), uuid.NewString()

		first, err := ParticipationID(slot, user)
		require.NoError(t, err)
		second, err := ParticipationID(slot, user)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, slot+"_"+user, first)
	})

	t.Run("distinct pairs never collide", func(t *testing.T) {
		seen := make(map[string][2]string)
		parts := []string{"a", "b", "ab", "a-b", "ba"}
		for _, s := range parts {
			for _, u := range parts {
				id, err := ParticipationID(s, u)
				require.NoError(t, err)
				if prev, ok := seen[id]; ok {
					t.Fatalf("collision %v and %v -> %s", prev, [2]string{s, u}, id)
				}
				seen[id] = [2]string{s, u}
			}
		}
	})

	t.Run("round trip", func(t *testing.T) {
		id, err := ParticipationID("slot-1", "user-9")
		require.NoError(t, err)

		slot, user, err := SplitParticipationID(id)
		require.NoError(t, err)
		assert.Equal(t, "slot-1", slot)
		assert.Equal(t, "user-9", user)
	})

	t.Run("invalid components", func(t *testing.T) {
		tests := []struct {
			name       string
			slot, user string
		}{
			{"empty slot", "", "u"},
			{"empty user", "s", ""},
			{"separator in slot", "s_1", "u"},
			{"separator in user", "s", "u_1"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ParticipationID(tt.slot, tt.user)
				assert.ErrorIs(t, err, ErrInvalidKeyComponent)
			})
		}
	})

	t.Run("malformed split", func(t *testing.T) {
		for _, id := range []string{"", "noseparator", "_u", "s_", "a_b_c"} {
			_, _, err := SplitParticipationID(id)
			assert.ErrorIs(t, err, ErrInvalidKeyComponent, id)
		}
	})
}
