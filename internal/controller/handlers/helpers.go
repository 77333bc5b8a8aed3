package handlers

import (
	"context"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sendMessage отправляет HTML сообщение, клавиатура необязательна
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// requireUser загружает пользователя; если его нет, просит выполнить /start
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, msg *models.Message) (*model.User, bool) {
	user, err := h.deps.UserService.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		h.logger.Error("Failed to get user",
			zap.Int64("telegram_id", msg.From.ID),
			zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return nil, false
	}
	if user == nil {
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(common.ErrUserNotFound), nil)
		return nil, false
	}
	return user, true
}

// requireAdmin как requireUser, но только для администраторов
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, msg *models.Message) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return nil, false
	}
	if !user.IsAdmin {
		h.logger.Warn("Admin command rejected", zap.Int64("telegram_id", msg.From.ID))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(common.ErrNotAdmin), nil)
		return nil, false
	}
	return user, true
}

// message возвращает сообщение с командой или nil
func message(update *models.Update) *models.Message {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	return update.Message
}
