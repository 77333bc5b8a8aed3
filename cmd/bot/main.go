package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/api"
	"github.com/Freeeeeet/climbing_booking_bot/internal/app"
	"github.com/Freeeeeet/climbing_booking_bot/internal/config"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/climbing_booking_bot/internal/notify"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting climbing booking bot",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.Store),
		zap.String("claim_strategy", cfg.ClaimStrategy))

	// Хранилище
	var db interface {
		store.Gateway
		store.Pinger
	}
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return err
		}

		migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
		if err != nil {
			return err
		}
		if err := migrator.Run(ctx); err != nil {
			migrator.Close()
			return err
		}
		migrator.Close()

		db = store.NewPostgresStore(pool)
	default:
		logger.Warn("Using in-memory store, data is lost on restart")
		db = store.NewMemoryStore()
	}

	// Репозитории
	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	updateRepo := repository.NewScheduleUpdateRepository(db)

	// Сервисы
	userService := service.NewUserService(userRepo, schoolRepo, cfg, logger)
	schoolService := service.NewSchoolService(schoolRepo, logger)
	scheduleService := service.NewScheduleService(db, logger)

	strategy, err := reservation.ParseStrategy(cfg.ClaimStrategy)
	if err != nil {
		return err
	}
	coordinator := reservation.NewCoordinator(db, strategy, logger)

	// Антидребезг уведомлений
	var cooldown notify.Cooldown = notify.NewStoreCooldown(db)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		cooldown = notify.NewRedisCooldown(rdb)
		logger.Info("Using redis notification cooldown", zap.String("addr", cfg.RedisAddr))
	}

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return err
	}

	// Уведомления об изменении расписания
	dispatcher := notify.NewDispatcher(updateRepo, schoolRepo, userRepo, cooldown,
		notify.NewTelegramPusher(b), cfg.NotifyCooldown, logger)
	scheduler := app.NewScheduler(dispatcher, cfg.NotifyPollInterval, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	// HTTP API
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(scheduleService, schoolService, coordinator.Ledger(), db, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown", zap.Error(err))
		}
	}()

	// Telegram
	botController := controller.NewBotController(b, &callbacktypes.Handler{
		UserService:     userService,
		SchoolService:   schoolService,
		ScheduleService: scheduleService,
		Coordinator:     coordinator,
		Guard:           state.NewGuard(),
		Logger:          logger,
		Now:             time.Now,
	})
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Bot commands menu not set", zap.Error(err))
	}

	logger.Info("Bot started")
	botController.Start(ctx)
	return nil
}
