package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

func generatorStore(days, periods int, sessions []models.Session) *timetableStore {
	var slots []models.TimeSlot
	for d := 1; d <= days; d++ {
		for p := 1; p <= periods; p++ {
			slots = append(slots, models.TimeSlot{ID: fmt.Sprintf("d%dp%d", d, p), DayOfWeek: d, Period: p})
		}
	}
	return newTimetableStore(
		[]models.Class{{ID: "c1", Name: "9A"}},
		[]models.Subject{{ID: "math", Name: "Mathematics"}, {ID: "science", Name: "Science"}},
		slots, nil, sessions,
	)
}

func TestRegenerateClassSpreadsAcrossDays(t *testing.T) {
	store := generatorStore(5, 7, nil)

	result := regenerateClass(store, "c1", []dto.RegenerateSubjectLoad{
		{SubjectID: "math", TeacherID: "t1", WeeklyCount: 5},
	}, 5, 7, 12)

	require.Len(t, result.sessions, 5)
	assert.Empty(t, result.unfulfilled)

	daysUsed := map[string]bool{}
	for _, s := range result.sessions {
		daysUsed[s.TimeSlotID[:2]] = true
	}
	assert.Len(t, daysUsed, 5, "least-loaded-day seeding should spread one session per day")
}

func TestRegenerateClassReportsUnplacedDemand(t *testing.T) {
	// Two days of three periods each: six cells. Eight requested hours
	// leave two unplaced.
	store := generatorStore(2, 3, nil)

	result := regenerateClass(store, "c1", []dto.RegenerateSubjectLoad{
		{SubjectID: "math", TeacherID: "t1", WeeklyCount: 8},
	}, 2, 3, 12)

	assert.Len(t, result.sessions, 6)
	require.Len(t, result.unfulfilled, 1)
	assert.Equal(t, "math", result.unfulfilled[0].SubjectID)
	assert.Equal(t, 2, result.unfulfilled[0].Missing)
}

func TestRegenerateClassAvoidsBusyTeachers(t *testing.T) {
	// t1 already teaches another class on day 1 period 1; the rebuilt week
	// must not double-book them.
	store := generatorStore(2, 2, []models.Session{
		{ID: "other", TeacherID: "t1", ClassID: "c2", SubjectID: "science", TimeSlotID: "d1p1"},
	})

	result := regenerateClass(store, "c1", []dto.RegenerateSubjectLoad{
		{SubjectID: "math", TeacherID: "t1", WeeklyCount: 2},
	}, 2, 2, 12)

	require.Len(t, result.sessions, 2)
	for _, s := range result.sessions {
		assert.NotEqual(t, "d1p1", s.TimeSlotID)
	}
}

func TestRegenerateClassKeepsLockedSessionsInPlace(t *testing.T) {
	store := generatorStore(2, 3, []models.Session{
		{ID: "pinned", TeacherID: "t2", ClassID: "c1", SubjectID: "science", TimeSlotID: "d1p2", Locked: true},
	})

	result := regenerateClass(store, "c1", []dto.RegenerateSubjectLoad{
		{SubjectID: "math", TeacherID: "t1", WeeklyCount: 2},
	}, 2, 3, 12)

	_, preserved := result.preserved["pinned"]
	assert.True(t, preserved)
	for _, s := range result.sessions {
		assert.NotEqual(t, "pinned", s.ID, "generated set excludes preserved sessions")
		assert.NotEqual(t, "d1p2", s.TimeSlotID, "locked cell stays occupied")
	}
}

func TestRepairGapsCompactsDay(t *testing.T) {
	store := generatorStore(1, 5, nil)
	state, _ := newRegenState(store, "c1", 1, 5)

	slotIDs := map[slotKey]string{}
	for key, id := range store.slotByKey {
		slotIDs[key] = id
	}

	// Place sessions at periods 1 and 4, leaving a hole at 2 and 3.
	state.place(models.Session{ID: "a", TeacherID: "t1", ClassID: "c1", TimeSlotID: "d1p1"}, slotKey{Day: 1, Period: 1})
	state.place(models.Session{ID: "b", TeacherID: "t2", ClassID: "c1", TimeSlotID: "d1p4"}, slotKey{Day: 1, Period: 4})

	iterations := state.repairGaps(12, slotIDs)
	assert.Equal(t, 1, iterations)

	_, atTwo := state.cells[slotKey{Day: 1, Period: 2}]
	assert.True(t, atTwo, "the trailing session moves up to close the gap")
	_, atFour := state.cells[slotKey{Day: 1, Period: 4}]
	assert.False(t, atFour)
}
