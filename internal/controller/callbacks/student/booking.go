package student

import (
	"context"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Op операция координатора над записью пользователя на слот
type Op func(ctx context.Context, slotID, userID string) reservation.Result

// Screen экран, который перерисовывается после операции
type Screen int

const (
	ScreenSchool Screen = iota
	ScreenMy
	ScreenTrial
)

// HandleBooking выполняет операцию записи и перерисовывает экран.
// Пока операция для пары (пользователь, слот) не завершилась, повторные нажатия отклоняются.
func HandleBooking(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	prefix string,
	op Op,
	screen Screen,
) {
	slotID, err := common.ParseID(callback.Data, prefix)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	release, ok := h.Guard.TryAcquire(state.Key{TelegramID: callback.From.ID, SlotID: slotID})
	if !ok {
		common.AnswerCallback(ctx, b, callback.ID, common.BusyMessage)
		return
	}
	defer release()

	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		res := op(ctx, slotID, hc.User.ID)

		h.Logger.Info("Booking action handled",
			zap.String("action", prefix),
			zap.String("slot_id", slotID),
			zap.String("user_id", hc.User.ID),
			zap.String("outcome", string(res.Outcome)))

		text, alert := common.OutcomeMessage(res)
		if alert {
			hc.AnswerAlert(text)
		} else {
			hc.Answer(text)
		}

		if err := rerender(hc, slotID, screen); err != nil {
			h.Logger.Warn("Failed to rerender after booking action",
				zap.String("slot_id", slotID),
				zap.Error(err))
		}
	})
}

func rerender(hc *common.HandlerContext, slotID string, screen Screen) error {
	switch screen {
	case ScreenMy:
		return renderMy(hc)
	case ScreenTrial:
		return renderTrial(hc)
	}

	slot, err := hc.Handler.ScheduleService.GetSlot(hc.Ctx, slotID)
	if err != nil {
		return err
	}
	return renderSchoolSlots(hc, slot.TeacherID)
}
