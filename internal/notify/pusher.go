package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Message уведомление об изменении расписания школы
type Message struct {
	Title     string
	Body      string
	TeacherID string
}

// Pusher доставляет уведомление на один токен
type Pusher interface {
	Push(ctx context.Context, token string, msg Message) error
}

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramPusher отправляет уведомление в чат; токен это chat ID
type TelegramPusher struct {
	sender messageSender
}

func NewTelegramPusher(sender messageSender) *TelegramPusher {
	return &TelegramPusher{sender: sender}
}

func (p *TelegramPusher) Push(ctx context.Context, token string, msg Message) error {
	chatID, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", token, err)
	}

	_, err = p.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("🔔 *%s*\n\n%s", bot.EscapeMarkdown(msg.Title), bot.EscapeMarkdown(msg.Body)),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// LogPusher только пишет уведомление в лог
type LogPusher struct {
	logger *zap.Logger
}

func NewLogPusher(logger *zap.Logger) *LogPusher {
	return &LogPusher{logger: logger}
}

func (p *LogPusher) Push(_ context.Context, token string, msg Message) error {
	p.logger.Info("Notification (dry run)",
		zap.String("token", token),
		zap.String("teacher_id", msg.TeacherID),
		zap.String("title", msg.Title),
	)
	return nil
}
