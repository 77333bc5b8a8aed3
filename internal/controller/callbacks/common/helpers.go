package common

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Префиксы callback data. Аргументы отделяются двоеточием: part:<slotID>
const (
	Noop          = "noop"
	BackToSchools = "back_schools"

	SchoolSlots = "school:" // school:<schoolID>
	ToggleMine  = "fav:"    // fav:<schoolID>

	Participate = "part:" // part:<slotID>
	Absent      = "abs:"  // abs:<slotID>
	Rejoin      = "rej:"  // rej:<slotID>
	Cancel      = "cnl:"  // cnl:<slotID>
	MySlots     = "my"
	MyRejoin    = "myrej:" // myrej:<slotID>, с экрана "Мои записи"
	MyCancel    = "mycnl:" // mycnl:<slotID>, с экрана "Мои записи"

	TrialSlots       = "trial"
	TrialParticipate = "trpart:" // trpart:<slotID>, с экрана пробных занятий
	TrialAbsent      = "trabs:"  // trabs:<slotID>
	TrialRejoin      = "trrej:"  // trrej:<slotID>
	TrialCancel      = "trcnl:"  // trcnl:<slotID>

	AdminSlots         = "aslots:" // aslots:<schoolID>
	AdminDelete        = "adel:"   // adel:<slotID>
	AdminConfirmDelete = "adelok:" // adelok:<slotID>
	AdminCapacityUp    = "acapu:"  // acapu:<slotID>
	AdminCapacityDown  = "acapd:"  // acapd:<slotID>
)

// Data собирает callback data из префикса и ID
func Data(prefix, id string) string {
	return prefix + id
}

// ParseID извлекает ID из callback data по префиксу.
// Например: ("part:abc", "part:") -> "abc"
func ParseID(data, prefix string) (string, error) {
	id, ok := strings.CutPrefix(data, prefix)
	if !ok || id == "" || strings.Contains(id, ":") {
		return "", ErrInvalidFormat
	}
	return id, nil
}

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// IsMessageNotModifiedError ошибка Telegram при редактировании без изменений
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
