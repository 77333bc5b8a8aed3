package callbacktypes

import (
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех обработчиков бота
type Handler struct {
	UserService     *service.UserService
	SchoolService   *service.SchoolService
	ScheduleService *service.ScheduleService
	Coordinator     *reservation.Coordinator
	Guard           *state.Guard
	Logger          *zap.Logger

	// Now текущее время; подменяется в тестах
	Now func() time.Time
}
