package admin

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleSlots показывает администратору занятия школы
func HandleSlots(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	schoolID, err := common.ParseID(callback.Data, common.AdminSlots)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := renderSlots(hc, schoolID); err != nil {
			common.HandleError(hc, err, "render_admin_slots")
			return
		}
		hc.Answer("")
	})
}

// HandleDelete запрашивает подтверждение удаления слота
func HandleDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	slotID, err := common.ParseID(callback.Data, common.AdminDelete)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slot, err := h.ScheduleService.GetSlot(ctx, slotID)
		if err != nil {
			common.HandleError(hc, err, "get_slot")
			return
		}

		attending, err := h.Coordinator.Ledger().CountAttending(ctx, slotID)
		if err != nil {
			common.HandleError(hc, err, "count_attending")
			return
		}

		text, kb := common.BuildConfirmDeleteScreen(slot, attending)
		if err := hc.EditMessage(text, kb); err != nil {
			common.HandleError(hc, err, "edit_message")
			return
		}
		hc.Answer("")
	})
}

// HandleConfirmDelete удаляет слот вместе с записями участия
func HandleConfirmDelete(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	slotID, err := common.ParseID(callback.Data, common.AdminConfirmDelete)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slot, err := h.ScheduleService.GetSlot(ctx, slotID)
		if err != nil {
			common.HandleError(hc, err, "get_slot")
			return
		}

		report, err := h.ScheduleService.DeleteSlot(ctx, slotID)
		if err != nil {
			common.HandleError(hc, err, "delete_slot")
			return
		}

		h.Logger.Info("Admin deleted slot",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("slot_id", slotID),
			zap.Int("participations_deleted", report.Deleted),
			zap.Int("participations_failed", report.Failed()))

		hc.AnswerAlert(common.FormatCascadeReport(report))

		if err := renderSlots(hc, slot.TeacherID); err != nil {
			h.Logger.Warn("Failed to rerender admin slots", zap.Error(err))
		}
	})
}

// HandleCapacity меняет вместимость слота на delta
func HandleCapacity(
	ctx context.Context,
	b *bot.Bot,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	prefix string,
	delta int,
) {
	slotID, err := common.ParseID(callback.Data, prefix)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithAdmin(ctx, b, callback, h, func(hc *common.HandlerContext) {
		slot, err := h.ScheduleService.GetSlot(ctx, slotID)
		if err != nil {
			common.HandleError(hc, err, "get_slot")
			return
		}

		capacity := slot.Capacity + delta
		if capacity < 0 {
			hc.Answer("Вместимость уже 0")
			return
		}

		slot, err = h.ScheduleService.UpdateSlot(ctx, slotID, service.SlotPatch{Capacity: &capacity})
		if err != nil {
			common.HandleError(hc, err, "update_slot")
			return
		}

		if err := renderSlots(hc, slot.TeacherID); err != nil {
			h.Logger.Warn("Failed to rerender admin slots", zap.Error(err))
		}
		hc.Answer(fmt.Sprintf("Мест: %d", slot.Capacity))
	})
}

func renderSlots(hc *common.HandlerContext, schoolID string) error {
	school, rows, err := common.LoadSlotRows(hc.Ctx, hc.Handler, schoolID, "", true)
	if err != nil {
		return err
	}
	text, kb := common.BuildAdminSlotsScreen(school, rows)
	return hc.EditMessage(text, kb)
}
