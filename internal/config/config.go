package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Режимы хранилища
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Стратегии записи на занятие
const (
	ClaimAtomic = "atomic"
	ClaimVerify = "verify"
)

type Config struct {
	TelegramToken      string
	DBDSN              string
	Environment        string
	Store              string
	RedisAddr          string
	AdminTelegramIDs   []int64
	ClaimStrategy      string
	NotifyCooldown     time.Duration
	NotifyPollInterval time.Duration
	HTTPAddr           string
	MigrationsPath     string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из функции чтения переменных окружения
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		TelegramToken:  getenv("TELEGRAM_TOKEN"),
		DBDSN:          getenv("DB_DSN"),
		Environment:    getenv("ENV"),
		Store:          strings.ToLower(getenv("STORE")),
		RedisAddr:      getenv("REDIS_ADDR"),
		ClaimStrategy:  strings.ToLower(getenv("CLAIM_STRATEGY")),
		HTTPAddr:       getenv("HTTP_ADDR"),
		MigrationsPath: getenv("MIGRATIONS_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Store == "" {
		cfg.Store = StorePostgres
	}
	if cfg.ClaimStrategy == "" {
		cfg.ClaimStrategy = ClaimAtomic
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	var err error
	if cfg.NotifyCooldown, err = durationOr(getenv("NOTIFY_COOLDOWN"), 10*time.Minute); err != nil {
		return nil, fmt.Errorf("NOTIFY_COOLDOWN: %w", err)
	}
	if cfg.NotifyPollInterval, err = durationOr(getenv("NOTIFY_POLL_INTERVAL"), 30*time.Second); err != nil {
		return nil, fmt.Errorf("NOTIFY_POLL_INTERVAL: %w", err)
	}
	if cfg.AdminTelegramIDs, err = parseIDs(getenv("ADMIN_TELEGRAM_IDS")); err != nil {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_IDS: %w", err)
	}

	// Проверяем обязательные поля
	switch cfg.Store {
	case StorePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	switch cfg.ClaimStrategy {
	case ClaimAtomic, ClaimVerify:
	default:
		return nil, fmt.Errorf("unknown CLAIM_STRATEGY %q", cfg.ClaimStrategy)
	}

	return cfg, nil
}

// IsAdmin проверяет, входит ли Telegram ID в список администраторов
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func durationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
