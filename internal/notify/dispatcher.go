// Package notify рассылает уведомления "расписание школы обновлено"
// по событиям из очереди lessonScheduleUpdates.
package notify

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSchoolName = "Школа"
	defaultFanOut     = 8
)

// Summary итог одного прохода по очереди
type Summary struct {
	Processed int
	Sent      int
	Skipped   int
	Delivered int
	Failed    int
}

type Dispatcher struct {
	updates  *repository.ScheduleUpdateRepository
	schools  *repository.SchoolRepository
	users    *repository.UserRepository
	cooldown Cooldown
	pusher   Pusher
	window   time.Duration
	fanOut   int
	now      func() time.Time
	logger   *zap.Logger
}

func NewDispatcher(
	updates *repository.ScheduleUpdateRepository,
	schools *repository.SchoolRepository,
	users *repository.UserRepository,
	cooldown Cooldown,
	pusher Pusher,
	window time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		updates:  updates,
		schools:  schools,
		users:    users,
		cooldown: cooldown,
		pusher:   pusher,
		window:   window,
		fanOut:   defaultFanOut,
		now:      time.Now,
		logger:   logger,
	}
}

// ProcessPending обрабатывает все необработанные события, старые первыми.
// Ошибка одного события не останавливает остальные.
func (d *Dispatcher) ProcessPending(ctx context.Context) (Summary, error) {
	var summary Summary

	pending, err := d.updates.GetPending(ctx)
	if err != nil {
		return summary, fmt.Errorf("get pending updates: %w", err)
	}

	var errs error
	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			return summary, multierr.Append(errs, err)
		}

		status, delivered, failed, err := d.process(ctx, u)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("update %s: %w", u.ID, err))
			continue
		}

		if err := d.updates.MarkProcessed(ctx, u.ID, status, d.now()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("update %s: %w", u.ID, err))
			continue
		}

		summary.Processed++
		summary.Delivered += delivered
		summary.Failed += failed
		if status == model.UpdateStatusSent {
			summary.Sent++
		} else {
			summary.Skipped++
		}
	}

	if summary.Processed > 0 {
		d.logger.Info("Schedule updates processed",
			zap.Int("processed", summary.Processed),
			zap.Int("sent", summary.Sent),
			zap.Int("skipped", summary.Skipped),
			zap.Int("delivered", summary.Delivered),
			zap.Int("failed", summary.Failed),
		)
	}
	return summary, errs
}

func (d *Dispatcher) process(ctx context.Context, u *model.ScheduleUpdate) (model.UpdateStatus, int, int, error) {
	if u.TeacherID == "" {
		d.logger.Warn("Schedule update without teacher id", zap.String("update_id", u.ID))
		return model.UpdateStatusSkippedNoTeacher, 0, 0, nil
	}

	ok, err := d.cooldown.Acquire(ctx, u.TeacherID, d.window)
	if err != nil {
		return "", 0, 0, err
	}
	if !ok {
		d.logger.Debug("Notification skipped by cooldown",
			zap.String("update_id", u.ID),
			zap.String("teacher_id", u.TeacherID),
		)
		return model.UpdateStatusSkippedCooldown, 0, 0, nil
	}

	name, err := d.schoolName(ctx, u.TeacherID)
	if err != nil {
		return "", 0, 0, err
	}

	tokens, err := d.tokens(ctx)
	if err != nil {
		return "", 0, 0, err
	}
	if len(tokens) == 0 {
		d.logger.Info("No notification recipients", zap.String("teacher_id", u.TeacherID))
		return model.UpdateStatusSkippedNoTokens, 0, 0, nil
	}

	msg := Message{
		Title:     fmt.Sprintf("%s: расписание обновлено!", name),
		Body:      "Посмотрите новое расписание.",
		TeacherID: u.TeacherID,
	}
	delivered, failed := d.fan(ctx, tokens, msg)

	d.logger.Info("Notification sent",
		zap.String("update_id", u.ID),
		zap.String("teacher_id", u.TeacherID),
		zap.Int("success", delivered),
		zap.Int("failure", failed),
	)
	return model.UpdateStatusSent, delivered, failed, nil
}

// fan рассылает сообщение параллельно, не более fanOut отправок одновременно
func (d *Dispatcher) fan(ctx context.Context, tokens []string, msg Message) (int, int) {
	var delivered, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(d.fanOut)
	for i, token := range tokens {
		g.Go(func() error {
			if err := d.pusher.Push(ctx, token, msg); err != nil {
				failed.Add(1)
				d.logger.Warn("Notification delivery failed",
					zap.Int("token_index", i),
					zap.Error(err),
				)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	// ошибки доставки учтены в failed
	g.Wait()

	return int(delivered.Load()), int(failed.Load())
}

func (d *Dispatcher) schoolName(ctx context.Context, teacherID string) (string, error) {
	school, err := d.schools.GetByID(ctx, teacherID)
	if err != nil {
		return "", fmt.Errorf("get school: %w", err)
	}
	if school == nil || school.LessonName == "" {
		return defaultSchoolName, nil
	}
	return school.LessonName, nil
}

// tokens собирает токены всех пользователей без повторов
func (d *Dispatcher) tokens(ctx context.Context) ([]string, error) {
	users, err := d.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	seen := make(map[string]struct{})
	var tokens []string
	for _, u := range users {
		for _, t := range u.NotificationTokens {
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

// PurgeProcessed удаляет обработанные события старше olderThan
func (d *Dispatcher) PurgeProcessed(ctx context.Context, olderThan time.Duration) (int, error) {
	processed, err := d.updates.GetProcessed(ctx)
	if err != nil {
		return 0, fmt.Errorf("get processed updates: %w", err)
	}

	cutoff := d.now().Add(-olderThan)
	var errs error
	removed := 0
	for _, u := range processed {
		at := u.CreatedAt
		if u.ProcessedAt != nil {
			at = *u.ProcessedAt
		}
		if at.After(cutoff) {
			continue
		}
		if err := d.updates.Delete(ctx, u.ID); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}

	d.logger.Info("Processed schedule updates purged",
		zap.Int("removed", removed),
		zap.Duration("older_than", olderThan),
	)
	return removed, errs
}
