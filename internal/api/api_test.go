package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testAPI struct {
	router http.Handler
	coord  *reservation.Coordinator
	slot   *model.LessonSlot
	school *model.School
}

func newTestAPI(t *testing.T, pinger store.Pinger) *testAPI {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	db := store.NewMemoryStore()

	schoolRepo := repository.NewSchoolRepository(db)
	schedule := service.NewScheduleService(db, logger)
	schools := service.NewSchoolService(schoolRepo, logger)

	school, err := schools.Create(ctx, "Leo", "Лео", "")
	require.NoError(t, err)
	slot, err := schedule.CreateSlot(ctx, service.SlotInput{
		TeacherID:  school.ID,
		Date:       "2026-10-20",
		Time:       "18:00",
		LessonType: model.LessonTypeLead,
		Capacity:   3,
		ClassType:  model.ClassTypeOpen,
	})
	require.NoError(t, err)

	coord := reservation.NewCoordinator(db, reservation.StrategyAtomic, logger)
	srv := NewServer(schedule, schools, coord.Ledger(), pinger, logger)

	return &testAPI{router: srv.Router(), coord: coord, slot: slot, school: school}
}

func (a *testAPI) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := newTestAPI(t, store.NewMemoryStore()).get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = newTestAPI(t, downPinger{}).get(t, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSlotAvailability(t *testing.T) {
	ctx := context.Background()
	a := newTestAPI(t, nil)

	require.True(t, a.coord.Participate(ctx, a.slot.ID, "u1").OK())
	require.True(t, a.coord.Decline(ctx, a.slot.ID, "u2").OK())

	rec := a.get(t, "/api/v1/slots/"+a.slot.ID+"/availability")
	require.Equal(t, http.StatusOK, rec.Code)

	var got Availability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Availability{SlotID: a.slot.ID, Capacity: 3, Attending: 1, Remaining: 2}, got)

	rec = a.get(t, "/api/v1/slots/ghost/availability")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchoolSlots(t *testing.T) {
	ctx := context.Background()
	a := newTestAPI(t, nil)
	require.True(t, a.coord.Participate(ctx, a.slot.ID, "u1").OK())

	tests := []struct {
		name  string
		query string
		code  int
		count int
	}{
		{"all", "", http.StatusOK, 1},
		{"in range", "?from=2026-10-01&to=2026-10-31", http.StatusOK, 1},
		{"out of range", "?from=2026-11-01", http.StatusOK, 0},
		{"bad date", "?from=01.10.2026", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.get(t, "/api/v1/schools/"+a.school.ID+"/slots"+tt.query)
			require.Equal(t, tt.code, rec.Code)
			if tt.code != http.StatusOK {
				return
			}

			var body struct {
				Slots []SlotView `json:"slots"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Slots, tt.count)
			if tt.count > 0 {
				assert.Equal(t, 1, body.Slots[0].Attending)
				assert.Equal(t, 2, body.Slots[0].Remaining)
				assert.Equal(t, model.LessonTypeLead, body.Slots[0].LessonType)
			}
		})
	}

	rec := a.get(t, "/api/v1/schools/ghost/slots")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAvailabilityNeverNegative(t *testing.T) {
	slot := &model.LessonSlot{ID: "s", Capacity: 1, CreatedAt: time.Now()}
	assert.Equal(t, 0, availability(slot, 3).Remaining)
}
