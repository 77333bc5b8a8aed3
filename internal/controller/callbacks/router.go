package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/admin"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/student"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handler обрабатывает нажатия на inline кнопки
type Handler struct {
	deps *callbacktypes.Handler
}

func NewHandler(deps *callbacktypes.Handler) *Handler {
	return &Handler{deps: deps}
}

// HandleCallbackQuery точка входа для всех callback query
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	Route(ctx, b, update.CallbackQuery, h.deps)
}

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	// ===== Навигация =====
	case data == common.Noop:
		common.AnswerCallback(ctx, b, callback.ID, "")
	case data == common.BackToSchools:
		student.HandleBackToSchools(ctx, b, callback, h)
	case data == common.MySlots:
		student.HandleMySlots(ctx, b, callback, h)
	case data == common.TrialSlots:
		student.HandleTrialSlots(ctx, b, callback, h)
	case strings.HasPrefix(data, common.SchoolSlots):
		student.HandleSchoolSlots(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ToggleMine):
		student.HandleToggleMine(ctx, b, callback, h)

	// ===== Запись на занятия =====
	case strings.HasPrefix(data, common.Participate):
		student.HandleBooking(ctx, b, callback, h, common.Participate, h.Coordinator.Participate, student.ScreenSchool)
	case strings.HasPrefix(data, common.Absent):
		student.HandleBooking(ctx, b, callback, h, common.Absent, h.Coordinator.Decline, student.ScreenSchool)
	case strings.HasPrefix(data, common.Rejoin):
		student.HandleBooking(ctx, b, callback, h, common.Rejoin, h.Coordinator.Rejoin, student.ScreenSchool)
	case strings.HasPrefix(data, common.Cancel):
		student.HandleBooking(ctx, b, callback, h, common.Cancel, h.Coordinator.CancelAttendance, student.ScreenSchool)
	case strings.HasPrefix(data, common.MyRejoin):
		student.HandleBooking(ctx, b, callback, h, common.MyRejoin, h.Coordinator.Rejoin, student.ScreenMy)
	case strings.HasPrefix(data, common.MyCancel):
		student.HandleBooking(ctx, b, callback, h, common.MyCancel, h.Coordinator.CancelAttendance, student.ScreenMy)
	case strings.HasPrefix(data, common.TrialParticipate):
		student.HandleBooking(ctx, b, callback, h, common.TrialParticipate, h.Coordinator.Participate, student.ScreenTrial)
	case strings.HasPrefix(data, common.TrialAbsent):
		student.HandleBooking(ctx, b, callback, h, common.TrialAbsent, h.Coordinator.Decline, student.ScreenTrial)
	case strings.HasPrefix(data, common.TrialRejoin):
		student.HandleBooking(ctx, b, callback, h, common.TrialRejoin, h.Coordinator.Rejoin, student.ScreenTrial)
	case strings.HasPrefix(data, common.TrialCancel):
		student.HandleBooking(ctx, b, callback, h, common.TrialCancel, h.Coordinator.CancelAttendance, student.ScreenTrial)

	// ===== Администратор =====
	case strings.HasPrefix(data, common.AdminSlots):
		admin.HandleSlots(ctx, b, callback, h)
	case strings.HasPrefix(data, common.AdminConfirmDelete):
		admin.HandleConfirmDelete(ctx, b, callback, h)
	case strings.HasPrefix(data, common.AdminDelete):
		admin.HandleDelete(ctx, b, callback, h)
	case strings.HasPrefix(data, common.AdminCapacityUp):
		admin.HandleCapacity(ctx, b, callback, h, common.AdminCapacityUp, 1)
	case strings.HasPrefix(data, common.AdminCapacityDown):
		admin.HandleCapacity(ctx, b, callback, h, common.AdminCapacityDown, -1)

	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		common.AnswerCallback(ctx, b, callback.ID, "❌ Неизвестная команда")
	}
}
