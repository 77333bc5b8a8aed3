package reservation

import "fmt"

// Outcome итог операции над записью участия
type Outcome string

const (
	OutcomeConfirmed         Outcome = "confirmed"           // Место занято
	OutcomeDeclined          Outcome = "declined"            // Отмечено отсутствие без предварительной записи
	OutcomeCancelled         Outcome = "cancelled"           // Запись переведена в отсутствие
	OutcomeAlreadyRegistered Outcome = "already_registered"  // Запись уже есть, состояние не изменено
	OutcomeSlotFull          Outcome = "slot_full"           // Мест нет на момент проверки
	OutcomeRolledBack        Outcome = "rolled_back_by_race" // Место отдано и отозвано из-за одновременной записи
	OutcomeStoreUnavailable  Outcome = "store_unavailable"   // Сбой хранилища, состояние неизвестно
	OutcomeNotFound          Outcome = "not_found"           // Слот или запись исчезли
)

// State состояние пары (слот, пользователь)
type State string

const (
	StateNone      State = "none"
	StateAbsent    State = "absent"
	StateAttending State = "attending"
)

// Result is the discriminated result of a coordinator operation.
// Attending and Capacity are filled when the slot was read; Err carries the
// underlying cause for StoreUnavailable and NotFound.
type Result struct {
	Outcome   Outcome
	Attending int
	Capacity  int
	Err       error
}

// OK сообщает, изменилось ли состояние так, как просил пользователь
func (r Result) OK() bool {
	switch r.Outcome {
	case OutcomeConfirmed, OutcomeDeclined, OutcomeCancelled:
		return true
	}
	return false
}

// Remaining количество свободных мест по данным результата
func (r Result) Remaining() int {
	if left := r.Capacity - r.Attending; left > 0 {
		return left
	}
	return 0
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s (%d/%d): %v", r.Outcome, r.Attending, r.Capacity, r.Err)
	}
	return fmt.Sprintf("%s (%d/%d)", r.Outcome, r.Attending, r.Capacity)
}

func unavailable(err error) Result {
	return Result{Outcome: OutcomeStoreUnavailable, Err: err}
}

func notFound(err error) Result {
	return Result{Outcome: OutcomeNotFound, Err: err}
}
