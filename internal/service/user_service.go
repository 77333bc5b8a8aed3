package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"go.uber.org/zap"
)

// AdminChecker решает, является ли Telegram-пользователь администратором
type AdminChecker interface {
	IsAdmin(telegramID int64) bool
}

type UserService struct {
	userRepo   *repository.UserRepository
	schoolRepo *repository.SchoolRepository
	admins     AdminChecker
	logger     *zap.Logger
}

func NewUserService(userRepo *repository.UserRepository, schoolRepo *repository.SchoolRepository, admins AdminChecker, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:   userRepo,
		schoolRepo: schoolRepo,
		admins:     admins,
		logger:     logger,
	}
}

// Register регистрирует или обновляет пользователя по Telegram ID
func (s *UserService) Register(ctx context.Context, telegramID int64, username, name string) (*model.User, error) {
	existing, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	isAdmin := s.admins.IsAdmin(telegramID)

	// Пользователь уже есть, обновляем данные
	if existing != nil {
		fields := map[string]any{
			"username": username,
			"name":     name,
			"isAdmin":  isAdmin,
		}
		if err := s.userRepo.Update(ctx, existing.ID, fields); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		existing.Username = username
		existing.Name = name
		existing.IsAdmin = isAdmin

		s.logger.Debug("User updated",
			zap.String("user_id", existing.ID),
			zap.Int64("telegram_id", telegramID),
		)
		return existing, nil
	}

	user := &model.User{
		TelegramID:         telegramID,
		Username:           username,
		Name:               name,
		IsAdmin:            isAdmin,
		MySchools:          []string{},
		NotificationTokens: []string{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.String("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
		zap.Bool("is_admin", isAdmin),
	)
	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.userRepo.GetByTelegramID(ctx, telegramID)
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SetMySchools сохраняет список выбранных школ пользователя
func (s *UserService) SetMySchools(ctx context.Context, userID string, schoolIDs []string) error {
	for _, id := range schoolIDs {
		school, err := s.schoolRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get school: %w", err)
		}
		if school == nil {
			return fmt.Errorf("%w: %s", ErrSchoolNotFound, id)
		}
	}

	if err := s.userRepo.Update(ctx, userID, map[string]any{"myTeachers": schoolIDs}); err != nil {
		return fmt.Errorf("set my schools: %w", err)
	}

	s.logger.Info("User schools updated",
		zap.String("user_id", userID),
		zap.Strings("school_ids", schoolIDs),
	)
	return nil
}

// ToggleMySchool добавляет школу в список пользователя или убирает её оттуда
func (s *UserService) ToggleMySchool(ctx context.Context, user *model.User, schoolID string) ([]string, error) {
	schools := slices.Clone(user.MySchools)
	if i := slices.Index(schools, schoolID); i >= 0 {
		schools = slices.Delete(schools, i, i+1)
	} else {
		schools = append(schools, schoolID)
	}

	if err := s.SetMySchools(ctx, user.ID, schools); err != nil {
		return nil, err
	}
	user.MySchools = schools
	return schools, nil
}

// EnableNotifications сохраняет chat ID как токен доставки уведомлений
func (s *UserService) EnableNotifications(ctx context.Context, user *model.User, chatID int64) error {
	token := strconv.FormatInt(chatID, 10)
	if slices.Contains(user.NotificationTokens, token) {
		return nil
	}

	tokens := append(slices.Clone(user.NotificationTokens), token)
	if err := s.userRepo.Update(ctx, user.ID, map[string]any{"notificationTokens": tokens}); err != nil {
		return fmt.Errorf("enable notifications: %w", err)
	}
	user.NotificationTokens = tokens

	s.logger.Info("Notifications enabled",
		zap.String("user_id", user.ID),
		zap.Int64("chat_id", chatID),
	)
	return nil
}

// DisableNotifications удаляет chat ID из токенов доставки
func (s *UserService) DisableNotifications(ctx context.Context, user *model.User, chatID int64) error {
	token := strconv.FormatInt(chatID, 10)
	tokens := slices.DeleteFunc(slices.Clone(user.NotificationTokens), func(t string) bool {
		return t == token
	})
	if len(tokens) == len(user.NotificationTokens) {
		return nil
	}

	if err := s.userRepo.Update(ctx, user.ID, map[string]any{"notificationTokens": tokens}); err != nil {
		return fmt.Errorf("disable notifications: %w", err)
	}
	user.NotificationTokens = tokens

	s.logger.Info("Notifications disabled",
		zap.String("user_id", user.ID),
		zap.Int64("chat_id", chatID),
	)
	return nil
}
