package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type SchoolService struct {
	schoolRepo *repository.SchoolRepository
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewSchoolService(schoolRepo *repository.SchoolRepository, logger *zap.Logger) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Create создаёт школу
func (s *SchoolService) Create(ctx context.Context, name, lessonName, classType string) (*model.School, error) {
	school := &model.School{
		Name:       strings.TrimSpace(name),
		LessonName: strings.TrimSpace(lessonName),
		ClassType:  strings.TrimSpace(classType),
	}
	if err := s.validate.Struct(school); err != nil {
		return nil, validationError(err)
	}

	if err := s.schoolRepo.Create(ctx, school); err != nil {
		return nil, fmt.Errorf("create school: %w", err)
	}

	s.logger.Info("School created",
		zap.String("school_id", school.ID),
		zap.String("name", school.Name),
	)
	return school, nil
}

// Get получает школу; ErrSchoolNotFound если её нет
func (s *SchoolService) Get(ctx context.Context, id string) (*model.School, error) {
	school, err := s.schoolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if school == nil {
		return nil, ErrSchoolNotFound
	}
	return school, nil
}

// List получает все школы
func (s *SchoolService) List(ctx context.Context) ([]*model.School, error) {
	return s.schoolRepo.GetAll(ctx)
}
