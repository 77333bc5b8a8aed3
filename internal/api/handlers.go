package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Availability свободные места слота
type Availability struct {
	SlotID    string `json:"slot_id"`
	Capacity  int    `json:"capacity"`
	Attending int    `json:"attending"`
	Remaining int    `json:"remaining"`
}

// SlotView слот в списке школы
type SlotView struct {
	ID         string           `json:"id"`
	Date       string           `json:"date"`
	Time       string           `json:"time"`
	LessonType model.LessonType `json:"lesson_type"`
	ClassType  model.ClassType  `json:"class_type"`
	Memo       string           `json:"memo,omitempty"`
	Availability
}

func (s *Server) health(c *gin.Context) {
	if s.pinger != nil {
		if err := s.pinger.Ping(c.Request.Context()); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) slotAvailability(c *gin.Context) {
	ctx := c.Request.Context()
	slotID := c.Param("id")

	slot, err := s.schedule.GetSlot(ctx, slotID)
	if err != nil {
		s.fail(c, err)
		return
	}

	attending, err := s.ledger.CountAttending(ctx, slotID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, availability(slot, attending))
}

func (s *Server) schoolSlots(c *gin.Context) {
	ctx := c.Request.Context()
	schoolID := c.Param("id")
	from, to := c.Query("from"), c.Query("to")

	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must be YYYY-MM-DD"})
			return
		}
	}

	if _, err := s.schools.Get(ctx, schoolID); err != nil {
		s.fail(c, err)
		return
	}

	slots, err := s.schedule.ListSlots(ctx, schoolID, from, to)
	if err != nil {
		s.fail(c, err)
		return
	}

	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		ids = append(ids, slot.ID)
	}
	counts, err := s.ledger.AttendanceBySlot(ctx, ids)
	if err != nil {
		s.fail(c, err)
		return
	}

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, SlotView{
			ID:           slot.ID,
			Date:         slot.Date,
			Time:         slot.Time,
			LessonType:   slot.LessonType,
			ClassType:    slot.ClassType,
			Memo:         slot.Memo,
			Availability: availability(slot, counts[slot.ID]),
		})
	}
	c.JSON(http.StatusOK, gin.H{"slots": views})
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "slot not found"})
	case errors.Is(err, service.ErrSchoolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "school not found"})
	default:
		s.logger.Error("API request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	}
}

func availability(slot *model.LessonSlot, attending int) Availability {
	remaining := slot.Capacity - attending
	if remaining < 0 {
		remaining = 0
	}
	return Availability{
		SlotID:    slot.ID,
		Capacity:  slot.Capacity,
		Attending: attending,
		Remaining: remaining,
	}
}
