package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SlotInput данные нового слота от администратора
type SlotInput struct {
	TeacherID  string
	Date       string
	Time       string
	LessonType model.LessonType
	Capacity   int
	Memo       string
	ClassType  model.ClassType
}

// SlotPatch изменяемые поля слота; nil означает "не менять"
type SlotPatch struct {
	Time       *string
	Capacity   *int
	LessonType *model.LessonType
	Memo       *string
	ClassType  *model.ClassType
}

// Empty сообщает, что изменений нет
func (p SlotPatch) Empty() bool {
	return p.Time == nil && p.Capacity == nil && p.LessonType == nil && p.Memo == nil && p.ClassType == nil
}

// CascadeReport итог удаления слота вместе с записями участия
type CascadeReport struct {
	SlotID         string
	Participations int
	Deleted        int
	// Err объединяет ошибки удаления отдельных записей
	Err error
}

// Failed количество записей, которые не удалось удалить
func (r CascadeReport) Failed() int {
	return len(multierr.Errors(r.Err))
}

type ScheduleService struct {
	db                store.Gateway
	slotRepo          *repository.SlotRepository
	participationRepo *repository.ParticipationRepository
	schoolRepo        *repository.SchoolRepository
	updateRepo        *repository.ScheduleUpdateRepository
	validate          *validator.Validate
	logger            *zap.Logger
}

// NewScheduleService создаёт сервис расписания поверх шлюза хранилища.
// Удаление слота идёт под той же блокировкой, что и запись на него, если шлюз её поддерживает.
func NewScheduleService(db store.Gateway, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		db:                db,
		slotRepo:          repository.NewSlotRepository(db),
		participationRepo: repository.NewParticipationRepository(db),
		schoolRepo:        repository.NewSchoolRepository(db),
		updateRepo:        repository.NewScheduleUpdateRepository(db),
		validate:          validator.New(),
		logger:            logger,
	}
}

// CreateSlot создаёт слот школы и ставит событие об изменении расписания
func (s *ScheduleService) CreateSlot(ctx context.Context, in SlotInput) (*model.LessonSlot, error) {
	slot := &model.LessonSlot{
		TeacherID:  in.TeacherID,
		Date:       in.Date,
		Time:       in.Time,
		LessonType: in.LessonType,
		Capacity:   in.Capacity,
		Memo:       strings.TrimSpace(in.Memo),
		ClassType:  in.ClassType,
	}
	if err := s.validate.Struct(slot); err != nil {
		return nil, validationError(err)
	}

	school, err := s.schoolRepo.GetByID(ctx, in.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("get school: %w", err)
	}
	if school == nil {
		return nil, ErrSchoolNotFound
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.String("slot_id", slot.ID),
		zap.String("teacher_id", slot.TeacherID),
		zap.String("date", slot.Date),
		zap.String("time", slot.Time),
		zap.Int("capacity", slot.Capacity),
	)

	s.notifyChanged(ctx, slot.TeacherID)
	return slot, nil
}

// UpdateSlot применяет изменения администратора к слоту.
// Уменьшение вместимости ниже текущего числа участников не снимает уже записанных.
func (s *ScheduleService) UpdateSlot(ctx context.Context, slotID string, patch SlotPatch) (*model.LessonSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	if patch.Empty() {
		return slot, nil
	}

	fields := make(map[string]any)
	if patch.Time != nil {
		slot.Time = *patch.Time
		fields["time"] = slot.Time
	}
	if patch.Capacity != nil {
		slot.Capacity = *patch.Capacity
		fields["capacity"] = slot.Capacity
	}
	if patch.LessonType != nil {
		slot.LessonType = *patch.LessonType
		fields["lessonType"] = slot.LessonType
	}
	if patch.Memo != nil {
		slot.Memo = strings.TrimSpace(*patch.Memo)
		fields["memo"] = slot.Memo
	}
	if patch.ClassType != nil {
		slot.ClassType = *patch.ClassType
		fields["classType"] = slot.ClassType
	}

	if err := s.validate.Struct(slot); err != nil {
		return nil, validationError(err)
	}

	if err := s.slotRepo.Update(ctx, slotID, fields); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}

	s.logger.Info("Slot updated",
		zap.String("slot_id", slotID),
		zap.Any("fields", fields),
	)

	s.notifyChanged(ctx, slot.TeacherID)
	return slot, nil
}

// DeleteSlot удаляет слот и все записи участия на него.
// Ошибки удаления отдельных записей собираются в отчёт и не останавливают остальные.
func (s *ScheduleService) DeleteSlot(ctx context.Context, slotID string) (CascadeReport, error) {
	tx, ok := s.db.(store.Transactor)
	if !ok {
		report, slot, err := s.deleteSlot(ctx, s.slotRepo, s.participationRepo, slotID)
		if err != nil {
			return report, err
		}
		s.notifyChanged(ctx, slot.TeacherID)
		return report, nil
	}

	var (
		report CascadeReport
		slot   *model.LessonSlot
		opErr  error
	)
	err := tx.WithinLock(ctx, reservation.SlotLockKey(slotID), func(ctx context.Context, g store.Gateway) error {
		report, slot, opErr = s.deleteSlot(ctx, s.slotRepo.WithGateway(g), s.participationRepo.WithGateway(g), slotID)
		return opErr
	})
	if opErr != nil {
		return report, opErr
	}
	if err != nil {
		return report, fmt.Errorf("delete slot: %w", err)
	}

	s.notifyChanged(ctx, slot.TeacherID)
	return report, nil
}

func (s *ScheduleService) deleteSlot(
	ctx context.Context,
	slots *repository.SlotRepository,
	participations *repository.ParticipationRepository,
	slotID string,
) (CascadeReport, *model.LessonSlot, error) {
	report := CascadeReport{SlotID: slotID}

	slot, err := slots.GetByID(ctx, slotID)
	if err != nil {
		return report, nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return report, nil, ErrSlotNotFound
	}

	if err := slots.Delete(ctx, slotID); err != nil {
		return report, nil, fmt.Errorf("delete slot: %w", err)
	}

	items, err := participations.GetBySlotID(ctx, slotID)
	if err != nil {
		report.Err = err
		s.logger.Error("Failed to list participations of deleted slot",
			zap.String("slot_id", slotID),
			zap.Error(err),
		)
		return report, slot, nil
	}

	report.Participations = len(items)
	for _, p := range items {
		if err := participations.Delete(ctx, p.ID); err != nil {
			report.Err = multierr.Append(report.Err, fmt.Errorf("participation %s: %w", p.ID, err))
			continue
		}
		report.Deleted++
	}

	if report.Err != nil {
		s.logger.Warn("Slot deleted with leftover participations",
			zap.String("slot_id", slotID),
			zap.Int("deleted", report.Deleted),
			zap.Int("failed", report.Failed()),
			zap.Error(report.Err),
		)
	} else {
		s.logger.Info("Slot deleted",
			zap.String("slot_id", slotID),
			zap.Int("participations_deleted", report.Deleted),
		)
	}
	return report, slot, nil
}

// GetSlot получает слот; ErrSlotNotFound если его нет
func (s *ScheduleService) GetSlot(ctx context.Context, slotID string) (*model.LessonSlot, error) {
	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

// ListSlots получает все слоты школы за период [from, to]; пустая граница не ограничивает
func (s *ScheduleService) ListSlots(ctx context.Context, teacherID, from, to string) ([]*model.LessonSlot, error) {
	slots, err := s.slotRepo.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	out := make([]*model.LessonSlot, 0, len(slots))
	for _, slot := range slots {
		if from != "" && slot.Date < from {
			continue
		}
		if to != "" && slot.Date > to {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// ListUpcoming получает ближайшие слоты школы начиная с сегодняшней даты, без пробных занятий
func (s *ScheduleService) ListUpcoming(ctx context.Context, teacherID string, now time.Time) ([]*model.LessonSlot, error) {
	slots, err := s.ListSlots(ctx, teacherID, now.Format(model.DateLayout), "")
	if err != nil {
		return nil, err
	}

	out := slots[:0]
	for _, slot := range slots {
		if slot.ClassType == model.ClassTypeTrial {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// ListTrial получает предстоящие пробные занятия всех школ
func (s *ScheduleService) ListTrial(ctx context.Context, now time.Time) ([]*model.LessonSlot, error) {
	slots, err := s.slotRepo.GetByClassType(ctx, model.ClassTypeTrial)
	if err != nil {
		return nil, fmt.Errorf("list trial slots: %w", err)
	}

	today := now.Format(model.DateLayout)
	out := slots[:0]
	for _, slot := range slots {
		if slot.Date < today {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// ListParticipations получает записи пользователя на предстоящие занятия вместе со слотами.
// Записи на удалённые слоты пропускаются.
func (s *ScheduleService) ListParticipations(ctx context.Context, userID string, now time.Time) ([]*model.Participation, error) {
	items, err := s.participationRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}

	today := now.Format(model.DateLayout)
	out := make([]*model.Participation, 0, len(items))
	for _, p := range items {
		slot, err := s.slotRepo.GetByID(ctx, p.SlotID)
		if err != nil {
			return nil, fmt.Errorf("list participations: %w", err)
		}
		if slot == nil || slot.Date < today {
			continue
		}
		p.Slot = slot
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Slot, out[j].Slot
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Time < b.Time
	})
	return out, nil
}

// notifyChanged ставит событие в очередь уведомлений; ошибка не отменяет изменение расписания
func (s *ScheduleService) notifyChanged(ctx context.Context, teacherID string) {
	update, err := s.updateRepo.Enqueue(ctx, teacherID)
	if err != nil {
		s.logger.Error("Failed to enqueue schedule update",
			zap.String("teacher_id", teacherID),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Schedule update enqueued",
		zap.String("update_id", update.ID),
		zap.String("teacher_id", teacherID),
	)
}
