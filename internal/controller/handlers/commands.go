package handlers

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 <b>Справка по командам</b>\n\n" +
	"/schools - Школы и расписание занятий\n" +
	"/trial - Пробные занятия всех школ\n" +
	"/my - Мои записи\n" +
	"/notify_on - Получать уведомления об изменении расписания\n" +
	"/notify_off - Отключить уведомления\n" +
	"/help - Показать эту справку\n\n" +
	"Чтобы записаться, выберите школу и нажмите ✅ рядом с занятием."

const adminHelpText = "\n\n🛠 <b>Администратору</b>\n\n" +
	"/addschool название; название занятий[; формат]\n" +
	"/addslot schoolID ГГГГ-ММ-ДД ЧЧ:ММ мест boulder|lead|both trial|master|open [заметка]\n" +
	"/editslot slotID time=ЧЧ:ММ capacity=N lesson=... class=... memo=текст\n" +
	"/slots [schoolID] - Управление занятиями"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}

	from := msg.From
	user, err := h.deps.UserService.Register(ctx, from.ID, from.Username, from.FirstName)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.", nil)
		return
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот записи на занятия по скалолазанию.\n\n%s",
		html.EscapeString(user.Name),
		helpText,
	)
	if user.IsAdmin {
		text += adminHelpText
	}
	h.sendMessage(ctx, b, msg.Chat.ID, text, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}

	text := helpText
	if user, err := h.deps.UserService.GetByTelegramID(ctx, msg.From.ID); err == nil && user != nil && user.IsAdmin {
		text += adminHelpText
	}
	h.sendMessage(ctx, b, msg.Chat.ID, text, nil)
}

// HandleSchools обрабатывает команду /schools
func (h *Handlers) HandleSchools(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	user, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	schools, err := h.deps.SchoolService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list schools", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return
	}

	text, kb := common.BuildSchoolsScreen(schools, user.MySchools)
	h.sendMessage(ctx, b, msg.Chat.ID, text, kb)
}

// HandleTrial обрабатывает команду /trial
func (h *Handlers) HandleTrial(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	user, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	rows, err := common.LoadTrialRows(ctx, h.deps, user.ID)
	if err != nil {
		h.logger.Error("Failed to load trial slots",
			zap.String("user_id", user.ID),
			zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return
	}

	text, kb := common.BuildTrialScreen(rows)
	h.sendMessage(ctx, b, msg.Chat.ID, text, kb)
}

// HandleMy обрабатывает команду /my
func (h *Handlers) HandleMy(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	user, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	items, counts, err := common.LoadMyParticipations(ctx, h.deps, user.ID)
	if err != nil {
		h.logger.Error("Failed to load participations",
			zap.String("user_id", user.ID),
			zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return
	}

	text, kb := common.BuildMyScreen(items, counts)
	h.sendMessage(ctx, b, msg.Chat.ID, text, kb)
}

// HandleNotifyOn подписывает чат на уведомления об изменении расписания
func (h *Handlers) HandleNotifyOn(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	user, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	if err := h.deps.UserService.EnableNotifications(ctx, user, msg.Chat.ID); err != nil {
		h.logger.Error("Failed to enable notifications", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return
	}
	h.sendMessage(ctx, b, msg.Chat.ID, "🔔 Уведомления включены", nil)
}

// HandleNotifyOff отписывает чат от уведомлений
func (h *Handlers) HandleNotifyOff(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := message(update)
	if msg == nil {
		return
	}
	user, ok := h.requireUser(ctx, b, msg)
	if !ok {
		return
	}

	if err := h.deps.UserService.DisableNotifications(ctx, user, msg.Chat.ID); err != nil {
		h.logger.Error("Failed to disable notifications", zap.Error(err))
		h.sendMessage(ctx, b, msg.Chat.ID, common.ErrorMessage(err), nil)
		return
	}
	h.sendMessage(ctx, b, msg.Chat.ID, "🔕 Уведомления отключены", nil)
}
