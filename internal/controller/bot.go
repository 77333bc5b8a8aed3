package controller

import (
	"context"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(botInstance *bot.Bot, deps *callbacktypes.Handler) *BotController {
	return &BotController{
		bot:             botInstance,
		handlers:        handlers.NewHandlers(deps),
		callbackHandler: callbacks.NewHandler(deps),
		logger:          deps.Logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Команды участников
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/schools", bot.MatchTypeExact, c.handlers.HandleSchools)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/my", bot.MatchTypeExact, c.handlers.HandleMy)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/trial", bot.MatchTypeExact, c.handlers.HandleTrial)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/notify_on", bot.MatchTypeExact, c.handlers.HandleNotifyOn)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/notify_off", bot.MatchTypeExact, c.handlers.HandleNotifyOff)

	// Команды администратора с аргументами; префиксы не пересекаются
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addschool", bot.MatchTypePrefix, c.handlers.HandleAddSchool)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addslot", bot.MatchTypePrefix, c.handlers.HandleAddSlot)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/editslot", bot.MatchTypePrefix, c.handlers.HandleEditSlot)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypePrefix, c.handlers.HandleSlots)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "schools", Description: "🧗 Школы и расписание"},
		{Command: "trial", Description: "🆕 Пробные занятия"},
		{Command: "my", Description: "📋 Мои записи"},
		{Command: "notify_on", Description: "🔔 Включить уведомления"},
		{Command: "notify_off", Description: "🔕 Отключить уведомления"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
