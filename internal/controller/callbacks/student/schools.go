package student

import (
	"context"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleBackToSchools возвращает к списку школ
func HandleBackToSchools(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := renderSchools(hc); err != nil {
			common.HandleError(hc, err, "render_schools")
			return
		}
		hc.Answer("")
	})
}

// HandleSchoolSlots показывает расписание выбранной школы
func HandleSchoolSlots(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	schoolID, err := common.ParseID(callback.Data, common.SchoolSlots)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := renderSchoolSlots(hc, schoolID); err != nil {
			common.HandleError(hc, err, "render_school_slots")
			return
		}
		hc.Answer("")
	})
}

// HandleToggleMine добавляет школу в "мои" или убирает её оттуда
func HandleToggleMine(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	schoolID, err := common.ParseID(callback.Data, common.ToggleMine)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		mine, err := h.UserService.ToggleMySchool(ctx, hc.User, schoolID)
		if err != nil {
			common.HandleError(hc, err, "toggle_my_school")
			return
		}
		hc.User.MySchools = mine

		if err := renderSchools(hc); err != nil {
			h.Logger.Error("Failed to render schools", zap.Error(err))
		}
		hc.Answer("⭐ Список ваших школ обновлён")
	})
}

// HandleMySlots показывает записи пользователя
func HandleMySlots(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := renderMy(hc); err != nil {
			common.HandleError(hc, err, "render_my_slots")
			return
		}
		hc.Answer("")
	})
}

// HandleTrialSlots показывает пробные занятия всех школ
func HandleTrialSlots(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithUser(ctx, b, callback, h, func(hc *common.HandlerContext) {
		if err := renderTrial(hc); err != nil {
			common.HandleError(hc, err, "render_trial_slots")
			return
		}
		hc.Answer("")
	})
}

func renderSchools(hc *common.HandlerContext) error {
	schools, err := hc.Handler.SchoolService.List(hc.Ctx)
	if err != nil {
		return err
	}
	text, kb := common.BuildSchoolsScreen(schools, hc.User.MySchools)
	return hc.EditMessage(text, kb)
}

func renderSchoolSlots(hc *common.HandlerContext, schoolID string) error {
	school, rows, err := common.LoadSlotRows(hc.Ctx, hc.Handler, schoolID, hc.User.ID, false)
	if err != nil {
		return err
	}
	text, kb := common.BuildSlotsScreen(school, rows)
	return hc.EditMessage(text, kb)
}

func renderMy(hc *common.HandlerContext) error {
	items, counts, err := common.LoadMyParticipations(hc.Ctx, hc.Handler, hc.User.ID)
	if err != nil {
		return err
	}
	text, kb := common.BuildMyScreen(items, counts)
	return hc.EditMessage(text, kb)
}

func renderTrial(hc *common.HandlerContext) error {
	rows, err := common.LoadTrialRows(hc.Ctx, hc.Handler, hc.User.ID)
	if err != nil {
		return err
	}
	text, kb := common.BuildTrialScreen(rows)
	return hc.EditMessage(text, kb)
}
