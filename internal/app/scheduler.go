package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/notify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// purgeRetention сколько хранятся обработанные события
const purgeRetention = 7 * 24 * time.Hour

// UpdateProcessor обрабатывает очередь событий расписания
type UpdateProcessor interface {
	ProcessPending(ctx context.Context) (notify.Summary, error)
	PurgeProcessed(ctx context.Context, olderThan time.Duration) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	processor    UpdateProcessor
	pollInterval time.Duration
	cron         *cron.Cron
	logger       *zap.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

func NewScheduler(processor UpdateProcessor, pollInterval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		processor:    processor,
		pollInterval: pollInterval,
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start запускает опрос очереди уведомлений и ежедневную очистку
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.Duration("poll_interval", s.pollInterval))

	if _, err := s.cron.AddFunc("@daily", func() { s.purge(ctx) }); err != nil {
		return fmt.Errorf("add purge job: %w", err)
	}
	s.cron.Start()

	s.wg.Add(1)
	go s.runNotificationTask(ctx)
	return nil
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

func (s *Scheduler) runNotificationTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.processUpdates(ctx)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processUpdates(ctx)
		case <-s.stopChan:
			s.logger.Info("Notification task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Notification task cancelled")
			return
		}
	}
}

func (s *Scheduler) processUpdates(ctx context.Context) {
	if _, err := s.processor.ProcessPending(ctx); err != nil {
		s.logger.Error("Failed to process schedule updates", zap.Error(err))
	}
}

func (s *Scheduler) purge(ctx context.Context) {
	removed, err := s.processor.PurgeProcessed(ctx, purgeRetention)
	if err != nil {
		s.logger.Error("Failed to purge schedule updates", zap.Int("removed", removed), zap.Error(err))
	}
}
