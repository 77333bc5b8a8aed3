package common

import (
	"fmt"

	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
)

// BusyMessage ответ на повторное нажатие, пока первое действие не завершилось
const BusyMessage = "⏳ Уже обрабатываем ваше прошлое нажатие..."

// OutcomeMessage текст для пользователя по итогу операции; alert=true для неуспешных итогов
func OutcomeMessage(res reservation.Result) (text string, alert bool) {
	switch res.Outcome {
	case reservation.OutcomeConfirmed:
		return fmt.Sprintf("✅ Вы записаны! Осталось мест: %d", res.Remaining()), false
	case reservation.OutcomeDeclined:
		return "🙅 Отмечено, что вы не придёте", false
	case reservation.OutcomeCancelled:
		return "↩️ Запись отменена", false
	case reservation.OutcomeAlreadyRegistered:
		return "ℹ️ Вы уже отметились на это занятие", true
	case reservation.OutcomeSlotFull:
		return "😔 Мест больше нет", true
	case reservation.OutcomeRolledBack:
		return "⚠️ Кто-то записался одновременно с вами, и места не хватило. Запись снята, выберите другое занятие", true
	case reservation.OutcomeStoreUnavailable:
		return "❌ Сервис временно недоступен. Обновите список, чтобы проверить свою запись", true
	case reservation.OutcomeNotFound:
		return "❌ Занятие не найдено. Возможно, его удалили", true
	default:
		return "❌ Произошла ошибка", true
	}
}
