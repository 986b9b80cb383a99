package service

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// regenState carries the working grid for one class-week regeneration pass.
// Locked sessions occupy their cells and are never moved; teacher busy marks
// include every other class's sessions so regeneration cannot introduce
// teacher double-booking.
type regenState struct {
	days    []int
	periods int
	cells   map[slotKey]models.Session
	movable map[slotKey]bool
	dayLoad map[int]int
	busy    map[string]map[slotKey]bool
}

type regenResult struct {
	sessions    []models.Session
	preserved   map[string]struct{}
	unfulfilled []dto.UnplacedLoad
	iterations  int
}

func newRegenState(store *timetableStore, classID string, days, periodsPerDay int) (*regenState, map[string]struct{}) {
	state := &regenState{
		periods: periodsPerDay,
		cells:   make(map[slotKey]models.Session),
		movable: make(map[slotKey]bool),
		dayLoad: make(map[int]int),
		busy:    make(map[string]map[slotKey]bool),
	}
	for d := 1; d <= days; d++ {
		state.days = append(state.days, d)
	}

	preserved := make(map[string]struct{})
	for _, s := range store.list() {
		slot, ok := store.slots[s.TimeSlotID]
		if !ok {
			continue
		}
		key := slotKey{Day: slot.DayOfWeek, Period: slot.Period}
		if s.ClassID == classID {
			if !s.Locked {
				continue // replaced by this pass
			}
			preserved[s.ID] = struct{}{}
			state.cells[key] = s
			state.dayLoad[key.Day]++
		}
		state.markBusy(s.TeacherID, key)
	}
	return state, preserved
}

func (s *regenState) markBusy(teacherID string, key slotKey) {
	if s.busy[teacherID] == nil {
		s.busy[teacherID] = make(map[slotKey]bool)
	}
	s.busy[teacherID][key] = true
}

func (s *regenState) releaseBusy(teacherID string, key slotKey) {
	if s.busy[teacherID] != nil {
		delete(s.busy[teacherID], key)
	}
}

func (s *regenState) canPlace(teacherID string, key slotKey) bool {
	if key.Day < 1 || key.Period < 1 || key.Period > s.periods {
		return false
	}
	if _, occupied := s.cells[key]; occupied {
		return false
	}
	return !s.busy[teacherID][key]
}

func (s *regenState) place(session models.Session, key slotKey) {
	s.cells[key] = session
	s.movable[key] = true
	s.dayLoad[key.Day]++
	s.markBusy(session.TeacherID, key)
}

// assign finds the first free cell on the least-loaded day for the load's
// teacher. Returns false when no cell fits.
func (s *regenState) assign(load dto.RegenerateSubjectLoad, classID string, slotIDs map[slotKey]string) bool {
	dayOrder := make([]int, len(s.days))
	copy(dayOrder, s.days)
	sort.SliceStable(dayOrder, func(i, j int) bool {
		return s.dayLoad[dayOrder[i]] < s.dayLoad[dayOrder[j]]
	})

	for _, day := range dayOrder {
		for period := 1; period <= s.periods; period++ {
			key := slotKey{Day: day, Period: period}
			slotID, known := slotIDs[key]
			if !known || !s.canPlace(load.TeacherID, key) {
				continue
			}
			now := time.Now().UTC()
			s.place(models.Session{
				ID:         uuid.NewString(),
				TeacherID:  load.TeacherID,
				ClassID:    classID,
				SubjectID:  load.SubjectID,
				TimeSlotID: slotID,
				Kind:       models.SessionKindBasic,
				CreatedAt:  now,
				UpdatedAt:  now,
			}, key)
			return true
		}
	}
	return false
}

// repairGaps compacts each day by pulling movable sessions into holes, the
// same bounded local-search the proposal generator uses.
func (s *regenState) repairGaps(maxIterations int, slotIDs map[slotKey]string) int {
	iterations := 0
	for iterations < maxIterations {
		moved := false
		for _, day := range s.days {
			times := s.timesForDay(day)
			if len(times) < 2 {
				continue
			}
			for i := 0; i < len(times)-1; i++ {
				current, next := times[i], times[i+1]
				if next-current <= 1 {
					continue
				}
				fromKey := slotKey{Day: day, Period: next}
				toKey := slotKey{Day: day, Period: current + 1}
				if !s.movable[fromKey] {
					continue
				}
				session := s.cells[fromKey]
				if _, known := slotIDs[toKey]; !known {
					continue
				}
				if !s.canPlace(session.TeacherID, toKey) {
					continue
				}
				s.moveCell(session, fromKey, toKey, slotIDs[toKey])
				moved = true
				break
			}
			if moved {
				break
			}
		}
		if !moved {
			break
		}
		iterations++
	}
	return iterations
}

func (s *regenState) moveCell(session models.Session, from, to slotKey, toSlotID string) {
	delete(s.cells, from)
	delete(s.movable, from)
	s.releaseBusy(session.TeacherID, from)

	session.TimeSlotID = toSlotID
	session.UpdatedAt = time.Now().UTC()
	s.cells[to] = session
	s.movable[to] = true
	s.markBusy(session.TeacherID, to)
}

func (s *regenState) timesForDay(day int) []int {
	var times []int
	for key := range s.cells {
		if key.Day == day {
			times = append(times, key.Period)
		}
	}
	sort.Ints(times)
	return times
}

func (s *regenState) exportSessions() []models.Session {
	out := make([]models.Session, 0, len(s.cells))
	for key, session := range s.cells {
		if !s.movable[key] {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// regenerateClass rebuilds a class week from subject loads. Heaviest demand
// is seeded first so scarce subjects get first choice of cells.
func regenerateClass(store *timetableStore, classID string, loads []dto.RegenerateSubjectLoad, days, periodsPerDay, repairIterations int) regenResult {
	state, preserved := newRegenState(store, classID, days, periodsPerDay)

	slotIDs := make(map[slotKey]string, len(store.slots))
	for key, id := range store.slotByKey {
		slotIDs[key] = id
	}

	sorted := make([]dto.RegenerateSubjectLoad, len(loads))
	copy(sorted, loads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WeeklyCount > sorted[j].WeeklyCount
	})

	var unfulfilled []dto.UnplacedLoad
	for _, load := range sorted {
		missing := 0
		for i := 0; i < load.WeeklyCount; i++ {
			if !state.assign(load, classID, slotIDs) {
				missing++
			}
		}
		if missing > 0 {
			unfulfilled = append(unfulfilled, dto.UnplacedLoad{
				SubjectID: load.SubjectID,
				TeacherID: load.TeacherID,
				Missing:   missing,
			})
		}
	}

	iterations := state.repairGaps(repairIterations, slotIDs)

	return regenResult{
		sessions:    state.exportSessions(),
		preserved:   preserved,
		unfulfilled: unfulfilled,
		iterations:  iterations,
	}
}
