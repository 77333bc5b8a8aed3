// Package api отдаёт read-only HTTP API: здоровье сервиса и свободные места.
package api

import (
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	schedule *service.ScheduleService
	schools  *service.SchoolService
	ledger   *reservation.Ledger
	pinger   store.Pinger
	logger   *zap.Logger
}

// NewServer создаёт обработчики API; pinger может быть nil
func NewServer(schedule *service.ScheduleService, schools *service.SchoolService, ledger *reservation.Ledger, pinger store.Pinger, logger *zap.Logger) *Server {
	return &Server{
		schedule: schedule,
		schools:  schools,
		ledger:   ledger,
		pinger:   pinger,
		logger:   logger,
	}
}

// Router собирает gin-роутер
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/slots/:id/availability", s.slotAvailability)
		v1.GET("/schools/:id/slots", s.schoolSlots)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
