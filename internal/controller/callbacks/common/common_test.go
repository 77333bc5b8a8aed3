package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/climbing_booking_bot/internal/controller/state"
	"github.com/Freeeeeet/climbing_booking_bot/internal/model"
	"github.com/Freeeeeet/climbing_booking_bot/internal/repository"
	"github.com/Freeeeeet/climbing_booking_bot/internal/reservation"
	"github.com/Freeeeeet/climbing_booking_bot/internal/service"
	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		prefix  string
		want    string
		wantErr bool
	}{
		{name: "ok", data: "part:abc", prefix: Participate, want: "abc"},
		{name: "other prefix", data: "abs:abc", prefix: Participate, wantErr: true},
		{name: "empty id", data: "part:", prefix: Participate, wantErr: true},
		{name: "nested separator", data: "part:a:b", prefix: Participate, wantErr: true},
		{name: "my screen", data: "mycnl:s1", prefix: MyCancel, want: "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.data, tt.prefix)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcomeMessageDistinct(t *testing.T) {
	outcomes := []reservation.Outcome{
		reservation.OutcomeConfirmed,
		reservation.OutcomeDeclined,
		reservation.OutcomeCancelled,
		reservation.OutcomeAlreadyRegistered,
		reservation.OutcomeSlotFull,
		reservation.OutcomeRolledBack,
		reservation.OutcomeStoreUnavailable,
		reservation.OutcomeNotFound,
	}

	seen := make(map[string]reservation.Outcome)
	for _, o := range outcomes {
		res := reservation.Result{Outcome: o, Attending: 2, Capacity: 5}
		text, alert := OutcomeMessage(res)
		require.NotEmpty(t, text)

		prev, dup := seen[text]
		assert.False(t, dup, "%s and %s share a message", o, prev)
		seen[text] = o

		assert.Equal(t, !res.OK(), alert, "outcome %s", o)
	}

	text, _ := OutcomeMessage(reservation.Result{Outcome: reservation.OutcomeConfirmed, Attending: 4, Capacity: 6})
	assert.Contains(t, text, "2")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "❌ Занятие не найдено", ErrorMessage(service.ErrSlotNotFound))
	assert.Contains(t, ErrorMessage(ErrNotAdmin), "администратор")
	assert.Equal(t, "❌ Произошла ошибка", ErrorMessage(errors.New("boom")))
}

func callbackData(kb *models.InlineKeyboardMarkup) []string {
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

func TestBuildSlotsScreen(t *testing.T) {
	school := &model.School{ID: "sch", Name: "Leo", LessonName: "Лео <Боулдер>"}
	rows := []SlotRow{
		{Slot: &model.LessonSlot{ID: "s1", Date: "2026-10-20", Time: "18:00", Capacity: 6, LessonType: model.LessonTypeBoulder}, Attending: 3, State: reservation.StateNone},
		{Slot: &model.LessonSlot{ID: "s2", Date: "2026-10-21", Time: "19:00", Capacity: 2, Memo: "взять <обувь>"}, Attending: 2, State: reservation.StateAttending},
		{Slot: &model.LessonSlot{ID: "s3", Date: "2026-10-22", Time: "20:00", Capacity: 4}, Attending: 1, State: reservation.StateAbsent},
	}

	text, kb := BuildSlotsScreen(school, rows)

	assert.Contains(t, text, "Лео &lt;Боулдер&gt;")
	assert.Contains(t, text, "взять &lt;обувь&gt;")
	assert.Contains(t, text, "🟢 3 из 6")
	assert.Contains(t, text, "🔴 мест нет (2/2)")
	assert.Equal(t, []string{"part:s1", "abs:s1", "cnl:s2", "rej:s3", BackToSchools}, callbackData(kb))
}

func TestBuildSlotsScreenEmpty(t *testing.T) {
	text, kb := BuildSlotsScreen(&model.School{Name: "Leo"}, nil)
	assert.Contains(t, text, "Ближайших занятий нет")
	assert.Equal(t, []string{BackToSchools}, callbackData(kb))
}

func TestBuildTrialScreen(t *testing.T) {
	text, kb := BuildTrialScreen(nil)
	assert.Contains(t, text, "пробных занятий нет")
	assert.Equal(t, []string{BackToSchools}, callbackData(kb))

	leo := &model.School{ID: "leo", Name: "Leo", LessonName: "Лео"}
	rows := []SlotRow{
		{Slot: &model.LessonSlot{ID: "s1", TeacherID: "leo", Date: "2026-10-20", Time: "18:00", Capacity: 4, ClassType: model.ClassTypeTrial}, State: reservation.StateNone, School: leo},
		{Slot: &model.LessonSlot{ID: "s2", Date: "2026-10-21", Time: "12:00", Capacity: 4, ClassType: model.ClassTypeTrial}, Attending: 1, State: reservation.StateAttending},
		{Slot: &model.LessonSlot{ID: "s3", Date: "2026-10-22", Time: "12:00", Capacity: 4, ClassType: model.ClassTypeTrial}, State: reservation.StateAbsent},
	}
	text, kb = BuildTrialScreen(rows)
	assert.Contains(t, text, "🏫 Лео")
	assert.Equal(t, []string{"trpart:s1", "trabs:s1", "trcnl:s2", "trrej:s3", BackToSchools}, callbackData(kb))
}

func TestBuildSchoolsScreen(t *testing.T) {
	text, kb := BuildSchoolsScreen(nil, nil)
	assert.Contains(t, text, "нет ни одной школы")
	assert.Nil(t, kb)

	schools := []*model.School{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	_, kb = BuildSchoolsScreen(schools, []string{"b"})
	require.Len(t, kb.InlineKeyboard, 3)
	assert.Equal(t, "☆", kb.InlineKeyboard[0][1].Text)
	assert.Equal(t, "⭐", kb.InlineKeyboard[1][1].Text)
	assert.Equal(t, []string{"school:a", "fav:a", "school:b", "fav:b", TrialSlots}, callbackData(kb))
}

func TestBuildMyScreen(t *testing.T) {
	text, kb := BuildMyScreen(nil, nil)
	assert.Contains(t, text, "нет записей")
	assert.Nil(t, kb)

	items := []*model.Participation{
		{SlotID: "s1", Slot: &model.LessonSlot{ID: "s1", Date: "2026-10-20", Time: "18:00", Capacity: 4}},
		{SlotID: "s2", IsAbsent: true, Slot: &model.LessonSlot{ID: "s2", Date: "2026-10-21", Time: "18:00", Capacity: 4}},
	}
	text, kb = BuildMyScreen(items, map[string]int{"s1": 1})
	assert.Contains(t, text, "🟢 3 из 4")
	assert.Equal(t, []string{"mycnl:s1", "myrej:s2", BackToSchools}, callbackData(kb))
}

func TestBuildAdminSlotsScreen(t *testing.T) {
	school := &model.School{ID: "sch", Name: "Leo"}
	rows := []SlotRow{{Slot: &model.LessonSlot{ID: "s1", TeacherID: "sch", Date: "2026-10-20", Time: "18:00", Capacity: 6}, Attending: 1}}

	text, kb := BuildAdminSlotsScreen(school, rows)
	assert.Contains(t, text, "<code>s1</code>")
	assert.Equal(t, []string{"acapd:s1", Noop, "acapu:s1", "adel:s1"}, callbackData(kb))

	_, kb = BuildConfirmDeleteScreen(rows[0].Slot, 1)
	assert.Equal(t, []string{"adelok:s1", "aslots:sch"}, callbackData(kb))
}

func TestFormatCascadeReport(t *testing.T) {
	assert.Equal(t, "✅ Занятие удалено вместе с записями (3)",
		FormatCascadeReport(service.CascadeReport{Participations: 3, Deleted: 3}))

	report := service.CascadeReport{
		Participations: 3,
		Deleted:        1,
		Err:            multierr.Combine(errors.New("a"), errors.New("b")),
	}
	assert.Equal(t, "⚠️ Занятие удалено. Записей удалено: 1 из 3, не удалось: 2", FormatCascadeReport(report))
}

func TestLoadSlotRows(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	logger := zaptest.NewLogger(t)

	schoolRepo := repository.NewSchoolRepository(db)

	schedule := service.NewScheduleService(db, logger)
	schools := service.NewSchoolService(schoolRepo, logger)
	coordinator := reservation.NewCoordinator(db, reservation.StrategyAtomic, logger)

	h := &callbacktypes.Handler{
		SchoolService:   schools,
		ScheduleService: schedule,
		Coordinator:     coordinator,
		Guard:           state.NewGuard(),
		Logger:          logger,
		Now:             func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) },
	}

	school, err := schools.Create(ctx, "Leo", "Лео", "")
	require.NoError(t, err)

	mk := func(date string, class model.ClassType) *model.LessonSlot {
		slot, err := schedule.CreateSlot(ctx, service.SlotInput{
			TeacherID: school.ID, Date: date, Time: "18:00", Capacity: 2,
			LessonType: model.LessonTypeBoulder, ClassType: class,
		})
		require.NoError(t, err)
		return slot
	}
	mk("2026-10-01", model.ClassTypeOpen)
	open := mk("2026-10-20", model.ClassTypeOpen)
	trial := mk("2026-10-21", model.ClassTypeTrial)

	require.True(t, coordinator.Participate(ctx, open.ID, "u1").OK())
	require.True(t, coordinator.Participate(ctx, open.ID, "u2").OK())

	got, rows, err := LoadSlotRows(ctx, h, school.ID, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, school.ID, got.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, open.ID, rows[0].Slot.ID)
	assert.Equal(t, 2, rows[0].Attending)
	assert.Equal(t, reservation.StateAttending, rows[0].State)

	_, rows, err = LoadSlotRows(ctx, h, school.ID, "", true)
	require.NoError(t, err)
	require.Len(t, rows, 2, "admin listing keeps trial slots and drops past ones")
	assert.Equal(t, trial.ID, rows[1].Slot.ID)
	assert.Equal(t, reservation.StateNone, rows[1].State)

	_, _, err = LoadSlotRows(ctx, h, "missing", "u1", false)
	assert.ErrorIs(t, err, service.ErrSchoolNotFound)
}

func TestLoadTrialRows(t *testing.T) {
	ctx := context.Background()
	db := store.NewMemoryStore()
	logger := zaptest.NewLogger(t)

	schedule := service.NewScheduleService(db, logger)
	schools := service.NewSchoolService(repository.NewSchoolRepository(db), logger)
	coordinator := reservation.NewCoordinator(db, reservation.StrategyAtomic, logger)

	h := &callbacktypes.Handler{
		SchoolService:   schools,
		ScheduleService: schedule,
		Coordinator:     coordinator,
		Guard:           state.NewGuard(),
		Logger:          logger,
		Now:             func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) },
	}

	leo, err := schools.Create(ctx, "Leo", "Лео", "")
	require.NoError(t, err)
	wall, err := schools.Create(ctx, "Wall", "Стена", "")
	require.NoError(t, err)

	mk := func(teacherID string, class model.ClassType) *model.LessonSlot {
		slot, err := schedule.CreateSlot(ctx, service.SlotInput{
			TeacherID: teacherID, Date: "2026-10-20", Time: "18:00", Capacity: 1,
			LessonType: model.LessonTypeBoulder, ClassType: class,
		})
		require.NoError(t, err)
		return slot
	}
	trial := mk(wall.ID, model.ClassTypeTrial)
	mk(leo.ID, model.ClassTypeOpen)

	require.True(t, coordinator.Participate(ctx, trial.ID, "u1").OK())
	assert.Equal(t, reservation.OutcomeSlotFull, coordinator.Participate(ctx, trial.ID, "u2").Outcome,
		"trial slots keep the capacity bound")

	rows, err := LoadTrialRows(ctx, h, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, trial.ID, rows[0].Slot.ID)
	assert.Equal(t, wall.ID, rows[0].School.ID)
	assert.Equal(t, 1, rows[0].Attending)
	assert.Equal(t, reservation.StateAttending, rows[0].State)
}
