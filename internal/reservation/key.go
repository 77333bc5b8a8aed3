package reservation

import (
	"errors"
	"fmt"
	"strings"
)

// KeySeparator разделитель компонентов ID записи; не может встречаться в самих компонентах
const KeySeparator = "_"

// ErrInvalidKeyComponent is returned for empty components or ones containing KeySeparator
var ErrInvalidKeyComponent = errors.New("invalid participation key component")

// ParticipationID derives the participation id for a (slot, user) pair.
// The same pair always yields the same id and distinct pairs never collide,
// so a retried claim lands on the existing record instead of a new one.
func ParticipationID(slotID, userID string) (string, error) {
	if err := checkComponent("slot", slotID); err != nil {
		return "", err
	}
	if err := checkComponent("user", userID); err != nil {
		return "", err
	}
	return slotID + KeySeparator + userID, nil
}

// SplitParticipationID разбирает ID записи обратно на слот и пользователя
func SplitParticipationID(id string) (slotID, userID string, err error) {
	parts := strings.Split(id, KeySeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: malformed id %q", ErrInvalidKeyComponent, id)
	}
	return parts[0], parts[1], nil
}

func checkComponent(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty %s id", ErrInvalidKeyComponent, name)
	}
	if strings.Contains(value, KeySeparator) {
		return fmt.Errorf("%w: %s id %q contains %q", ErrInvalidKeyComponent, name, value, KeySeparator)
	}
	return nil
}
