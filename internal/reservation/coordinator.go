package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"go.uber.org/zap"
)

// Strategy способ защиты от превышения вместимости
type Strategy string

const (
	// StrategyAtomic проверяет и записывает под блокировкой слота, если хранилище это умеет
	StrategyAtomic Strategy = "atomic"
	// StrategyVerify записывает, перепроверяет и при превышении снимает собственную запись
	StrategyVerify Strategy = "verify"
)

// ParseStrategy разбирает стратегию из конфигурации
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAtomic, StrategyVerify:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown claim strategy %q", s)
}

var (
	errSlotNotFound          = errors.New("slot not found")
	errParticipationNotFound = errors.New("participation not found")
)

// unit репозитории, привязанные к одному шлюзу
type unit struct {
	slots          *repository.SlotRepository
	participations *repository.ParticipationRepository
	ledger         *Ledger
}

// Coordinator проводит переходы NONE/ABSENT/ATTENDING для пары (слот, пользователь).
// Identity is always passed by the caller; a user only ever changes their own record.
type Coordinator struct {
	db       store.Gateway
	base     unit
	strategy Strategy
	now      func() time.Time
	logger   *zap.Logger
}

// NewCoordinator создаёт координатор записи
func NewCoordinator(db store.Gateway, strategy Strategy, logger *zap.Logger) *Coordinator {
	c := &Coordinator{
		db:       db,
		strategy: strategy,
		now:      time.Now,
		logger:   logger,
	}
	c.base = unit{
		slots:          repository.NewSlotRepository(db),
		participations: repository.NewParticipationRepository(db),
		ledger:         NewLedger(db),
	}
	return c
}

// Ledger возвращает ledger координатора
func (c *Coordinator) Ledger() *Ledger {
	return c.base.ledger
}

// Atomic сообщает, выполняются ли записи под блокировкой слота
func (c *Coordinator) Atomic() bool {
	_, ok := c.db.(store.Transactor)
	return ok && c.strategy == StrategyAtomic
}

// State возвращает текущее состояние пары (слот, пользователь)
func (c *Coordinator) State(ctx context.Context, slotID, userID string) (State, error) {
	id, err := ParticipationID(slotID, userID)
	if err != nil {
		return StateNone, err
	}

	p, err := c.base.participations.GetByID(ctx, id)
	if err != nil {
		return StateNone, err
	}

	switch {
	case p == nil:
		return StateNone, nil
	case p.IsAbsent:
		return StateAbsent, nil
	default:
		return StateAttending, nil
	}
}

// Participate переводит NONE -> ATTENDING
func (c *Coordinator) Participate(ctx context.Context, slotID, userID string) Result {
	id, err := ParticipationID(slotID, userID)
	if err != nil {
		return c.report("participate", slotID, userID, notFound(err))
	}

	res := c.claimUnit(ctx, slotID, func(ctx context.Context, u unit, atomic bool) Result {
		exists, err := u.participations.Exists(ctx, id)
		if err != nil {
			return unavailable(err)
		}
		if exists {
			return Result{Outcome: OutcomeAlreadyRegistered}
		}

		slot, count, res, ok := c.checkCapacity(ctx, u, slotID)
		if !ok {
			return res
		}

		err = u.participations.Create(ctx, &model.Participation{
			ID:        id,
			UserID:    userID,
			SlotID:    slotID,
			IsAbsent:  false,
			CreatedAt: c.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return Result{Outcome: OutcomeAlreadyRegistered, Attending: count, Capacity: slot.Capacity}
			}
			return unavailable(err)
		}

		if atomic {
			return Result{Outcome: OutcomeConfirmed, Attending: count + 1, Capacity: slot.Capacity}
		}
		return c.verify(ctx, u, id, slotID)
	})

	return c.report("participate", slotID, userID, res)
}

// Decline переводит NONE -> ABSENT; вместимость не проверяется
func (c *Coordinator) Decline(ctx context.Context, slotID, userID string) Result {
	id, err := ParticipationID(slotID, userID)
	if err != nil {
		return c.report("decline", slotID, userID, notFound(err))
	}

	res := c.claimUnit(ctx, slotID, func(ctx context.Context, u unit, atomic bool) Result {
		exists, err := u.participations.Exists(ctx, id)
		if err != nil {
			return unavailable(err)
		}
		if exists {
			return Result{Outcome: OutcomeAlreadyRegistered}
		}

		slot, err := u.slots.GetByID(ctx, slotID)
		if err != nil {
			return unavailable(err)
		}
		if slot == nil {
			return notFound(errSlotNotFound)
		}

		err = u.participations.Create(ctx, &model.Participation{
			ID:        id,
			UserID:    userID,
			SlotID:    slotID,
			IsAbsent:  true,
			CreatedAt: c.now().UTC(),
		})
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return Result{Outcome: OutcomeAlreadyRegistered, Capacity: slot.Capacity}
			}
			return unavailable(err)
		}

		if !atomic {
			if res, gone := c.dropIfSlotGone(ctx, u, id, slotID); gone {
				return res
			}
		}
		return Result{Outcome: OutcomeDeclined, Capacity: slot.Capacity}
	})

	return c.report("decline", slotID, userID, res)
}

// Rejoin переводит ABSENT -> ATTENDING с той же проверкой вместимости, что и Participate
func (c *Coordinator) Rejoin(ctx context.Context, slotID, userID string) Result {
	id, err := ParticipationID(slotID, userID)
	if err != nil {
		return c.report("rejoin", slotID, userID, notFound(err))
	}

	res := c.claimUnit(ctx, slotID, func(ctx context.Context, u unit, atomic bool) Result {
		p, err := u.participations.GetByID(ctx, id)
		if err != nil {
			return unavailable(err)
		}
		if p == nil {
			return notFound(errParticipationNotFound)
		}
		if !p.IsAbsent {
			return Result{Outcome: OutcomeAlreadyRegistered}
		}

		slot, count, res, ok := c.checkCapacity(ctx, u, slotID)
		if !ok {
			return res
		}

		if err := u.participations.SetAbsent(ctx, id, false); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFound(errParticipationNotFound)
			}
			return unavailable(err)
		}

		if atomic {
			return Result{Outcome: OutcomeConfirmed, Attending: count + 1, Capacity: slot.Capacity}
		}
		return c.verify(ctx, u, id, slotID)
	})

	return c.report("rejoin", slotID, userID, res)
}

// CancelAttendance переводит ATTENDING -> ABSENT безусловно
func (c *Coordinator) CancelAttendance(ctx context.Context, slotID, userID string) Result {
	id, err := ParticipationID(slotID, userID)
	if err != nil {
		return c.report("cancel", slotID, userID, notFound(err))
	}

	if err := c.base.participations.SetAbsent(ctx, id, true); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.report("cancel", slotID, userID, notFound(errParticipationNotFound))
		}
		return c.report("cancel", slotID, userID, unavailable(err))
	}

	return c.report("cancel", slotID, userID, Result{Outcome: OutcomeCancelled})
}

// SlotLockKey ключ блокировки слота; под ним же удаляется слот
func SlotLockKey(slotID string) string {
	return "slot:" + slotID
}

// claimUnit runs fn under the slot lock when the atomic strategy is available,
// otherwise directly against the base gateway.
func (c *Coordinator) claimUnit(ctx context.Context, slotID string, fn func(ctx context.Context, u unit, atomic bool) Result) Result {
	tx, ok := c.db.(store.Transactor)
	if !ok || c.strategy != StrategyAtomic {
		return fn(ctx, c.base, false)
	}

	var res Result
	err := tx.WithinLock(ctx, SlotLockKey(slotID), func(ctx context.Context, g store.Gateway) error {
		res = fn(ctx, c.unitFor(g), true)
		if res.Outcome == OutcomeStoreUnavailable {
			return res.Err
		}
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	return res
}

// checkCapacity читает вместимость и текущее число присутствующих; ok=false если места нет
func (c *Coordinator) checkCapacity(ctx context.Context, u unit, slotID string) (*model.LessonSlot, int, Result, bool) {
	slot, err := u.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, 0, unavailable(err), false
	}
	if slot == nil {
		return nil, 0, notFound(errSlotNotFound), false
	}

	count, err := u.ledger.CountAttending(ctx, slotID)
	if err != nil {
		return nil, 0, unavailable(err), false
	}

	if count >= slot.Capacity {
		return nil, 0, Result{Outcome: OutcomeSlotFull, Attending: count, Capacity: slot.Capacity}, false
	}
	return slot, count, Result{}, true
}

// verify is the second pass after an unguarded write: if the slot is now
// oversold, the caller's own record is flipped back to absent.
func (c *Coordinator) verify(ctx context.Context, u unit, id, slotID string) Result {
	after, err := u.ledger.CountAttending(ctx, slotID)
	if err != nil {
		return unavailable(fmt.Errorf("verify claim: %w", err))
	}

	slot, err := u.slots.GetByID(ctx, slotID)
	if err != nil {
		return unavailable(fmt.Errorf("verify claim: %w", err))
	}
	if slot == nil {
		return c.dropOwn(ctx, u, id)
	}

	if after <= slot.Capacity {
		return Result{Outcome: OutcomeConfirmed, Attending: after, Capacity: slot.Capacity}
	}

	if err := u.participations.SetAbsent(ctx, id, true); err != nil {
		return unavailable(fmt.Errorf("roll back claim: %w", err))
	}
	return Result{Outcome: OutcomeRolledBack, Attending: after - 1, Capacity: slot.Capacity}
}

// dropIfSlotGone снимает собственную запись, если слот удалили между проверкой и записью
func (c *Coordinator) dropIfSlotGone(ctx context.Context, u unit, id, slotID string) (Result, bool) {
	slot, err := u.slots.GetByID(ctx, slotID)
	if err != nil {
		return unavailable(fmt.Errorf("verify claim: %w", err)), true
	}
	if slot != nil {
		return Result{}, false
	}
	return c.dropOwn(ctx, u, id), true
}

// dropOwn удаляет запись вызывающего на исчезнувший слот, чтобы не оставлять сирот
func (c *Coordinator) dropOwn(ctx context.Context, u unit, id string) Result {
	if err := u.participations.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return unavailable(fmt.Errorf("drop orphan claim: %w", err))
	}
	return notFound(errSlotNotFound)
}

func (c *Coordinator) unitFor(g store.Gateway) unit {
	return unit{
		slots:          c.base.slots.WithGateway(g),
		participations: c.base.participations.WithGateway(g),
		ledger:         NewLedger(g),
	}
}

func (c *Coordinator) report(op, slotID, userID string, res Result) Result {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("slot_id", slotID),
		zap.String("user_id", userID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("attending", res.Attending),
		zap.Int("capacity", res.Capacity),
	}

	switch res.Outcome {
	case OutcomeStoreUnavailable:
		c.logger.Error("Participation transition failed", append(fields, zap.Error(res.Err))...)
	case OutcomeRolledBack:
		c.logger.Warn("Claim rolled back after concurrent overbooking", fields...)
	case OutcomeNotFound:
		c.logger.Info("Participation transition rejected", append(fields, zap.Error(res.Err))...)
	default:
		c.logger.Info("Participation transition", fields...)
	}
	return res
}
