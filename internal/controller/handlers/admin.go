package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common/formatting"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// usageMessage текст ошибки разбора аргументов
func usageMessage(err error, usage string) string {
	return fmt.Sprintf("❌ %s\n\nФормат: <code>%s</code>", html.EscapeString(err.Error()), html.EscapeString(usage))
}

// HandleAddSchool обрабатывает /addschool название; название занятий[; формат]
func (h *Handlers) HandleAddSchool(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, msg); !ok {
		return
	}

	args, err := ParseAddSchool(commandArgs(msg.Text))
	if err != nil {
		h.sendMessage(ctx, b, msg.Chat.ID, usageMessage(err, "/addschool название; название занятий[; формат]"), nil)
		return
	}

	school, err := h.deps.SchoolService.Create(ctx, args.Name, args.LessonName, args.ClassType)
	if err != nil {
		h.logger.Warn("Failed to create school", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, html.EscapeString(common.ErrorMessage(err)), nil)
		return
	}

	h.sendMessage(ctx, b, msg.Chat.ID, fmt.Sprintf(
		"✅ Школа <b>%s</b> создана\nID: <code>%s</code>",
		html.EscapeString(school.DisplayName()), school.ID,
	), nil)
}

// HandleAddSlot обрабатывает /addslot schoolID дата время мест тип формат [заметка]
func (h *Handlers) HandleAddSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, msg); !ok {
		return
	}

	in, err := ParseAddSlot(commandArgs(msg.Text))
	if err != nil {
		h.sendMessage(ctx, b, msg.Chat.ID, usageMessage(err,
			"/addslot schoolID 2026-10-20 19:00 8 boulder open [заметка]"), nil)
		return
	}

	slot, err := h.deps.ScheduleService.CreateSlot(ctx, in)
	if err != nil {
		h.logger.Warn("Failed to create slot", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, html.EscapeString(common.ErrorMessage(err)), nil)
		return
	}

	h.sendMessage(ctx, b, msg.Chat.ID, fmt.Sprintf(
		"✅ Занятие создано: %s · %s\nМест: %d\nID: <code>%s</code>",
		formatting.FormatSlotWhen(slot),
		formatting.LessonTypeName(slot.LessonType),
		slot.Capacity,
		slot.ID,
	), nil)
}

// HandleEditSlot обрабатывает /editslot slotID ключ=значение ...
func (h *Handlers) HandleEditSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, msg); !ok {
		return
	}

	slotID, patch, err := ParseEditSlot(commandArgs(msg.Text))
	if err != nil {
		h.sendMessage(ctx, b, msg.Chat.ID, usageMessage(err,
			"/editslot slotID time=19:30 capacity=10 lesson=lead class=open memo=текст"), nil)
		return
	}

	slot, err := h.deps.ScheduleService.UpdateSlot(ctx, slotID, patch)
	if err != nil {
		h.logger.Warn("Failed to update slot", zap.String("slot_id", slotID), zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, html.EscapeString(common.ErrorMessage(err)), nil)
		return
	}

	h.sendMessage(ctx, b, msg.Chat.ID, fmt.Sprintf(
		"✅ Занятие обновлено: %s · %s\nМест: %d",
		formatting.FormatSlotWhen(slot),
		formatting.LessonTypeName(slot.LessonType),
		slot.Capacity,
	), nil)
}

// HandleSlots обрабатывает /slots [schoolID]
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, msg); !ok {
		return
	}

	schoolID := commandArgs(msg.Text)
	if schoolID == "" {
		schools, err := h.deps.SchoolService.List(ctx)
		if err != nil {
			h.logger.Error("Failed to list schools", zap.Error(err))
			h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
			return
		}
		text, kb := common.BuildAdminSchoolsScreen(schools)
		h.sendMessage(ctx, b, msg.Chat.ID, text, kb)
		return
	}

	school, rows, err := common.LoadSlotRows(ctx, h.deps, schoolID, "", true)
	if err != nil {
		h.logger.Warn("Failed to load slots", zap.String("school_id", schoolID), zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return
	}

	text, kb := common.BuildAdminSlotsScreen(school, rows)
	h.sendMessage(ctx, b, msg.Chat.ID, text, kb)
}
