package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

type slotKey struct {
	Day    int
	Period int
}

// timetableStore is the authoritative in-memory session set for one school
// week, plus the catalogs it references by identifier. All mutation goes
// through the owning TimetableService, which serializes access.
type timetableStore struct {
	sessions  map[string]*models.Session
	classes   map[string]models.Class
	subjects  map[string]models.Subject
	slots     map[string]models.TimeSlot
	slotByKey map[slotKey]string
	teachers  map[string]string
}

func newTimetableStore(
	classes []models.Class,
	subjects []models.Subject,
	slots []models.TimeSlot,
	teacherNames map[string]string,
	sessions []models.Session,
) *timetableStore {
	store := &timetableStore{
		sessions:  make(map[string]*models.Session, len(sessions)),
		classes:   make(map[string]models.Class, len(classes)),
		subjects:  make(map[string]models.Subject, len(subjects)),
		slots:     make(map[string]models.TimeSlot, len(slots)),
		slotByKey: make(map[slotKey]string, len(slots)),
		teachers:  make(map[string]string, len(teacherNames)),
	}
	for _, c := range classes {
		store.classes[c.ID] = c
	}
	for _, s := range subjects {
		store.subjects[s.ID] = s
	}
	for _, slot := range slots {
		store.slots[slot.ID] = slot
		store.slotByKey[slotKey{Day: slot.DayOfWeek, Period: slot.Period}] = slot.ID
	}
	for id, name := range teacherNames {
		store.teachers[id] = name
	}
	for i := range sessions {
		s := sessions[i]
		store.sessions[s.ID] = &s
	}
	return store
}

func (t *timetableStore) find(id string) (*models.Session, bool) {
	s, ok := t.sessions[id]
	return s, ok
}

func (t *timetableStore) slotID(day, period int) (string, bool) {
	id, ok := t.slotByKey[slotKey{Day: day, Period: period}]
	return id, ok
}

// apply rewrites the session's teacher and time slot in a single update.
func (t *timetableStore) apply(sessionID, teacherID, timeSlotID string) {
	if s, ok := t.sessions[sessionID]; ok {
		s.TeacherID = teacherID
		s.TimeSlotID = timeSlotID
		s.UpdatedAt = time.Now().UTC()
	}
}

// snapshot returns a deep copy of the session set, ordered by id so two
// snapshots of identical state compare equal.
func (t *timetableStore) snapshot() []models.Session {
	out := make([]models.Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// restore replaces the session set with the given snapshot.
func (t *timetableStore) restore(sessions []models.Session) {
	t.sessions = make(map[string]*models.Session, len(sessions))
	for i := range sessions {
		s := sessions[i]
		t.sessions[s.ID] = &s
	}
}

// list returns the sessions ordered by grid position for display.
func (t *timetableStore) list() []models.Session {
	out := make([]models.Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := t.slots[out[i].TimeSlotID], t.slots[out[j].TimeSlotID]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *timetableStore) sessionsForClass(classID string) []models.Session {
	var out []models.Session
	for _, s := range t.sessions {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// replaceClass swaps the class's sessions for the regenerated set, keeping
// the sessions the caller marked preserved (locked ones).
func (t *timetableStore) replaceClass(classID string, preserved map[string]struct{}, generated []models.Session) {
	for id, s := range t.sessions {
		if s.ClassID != classID {
			continue
		}
		if _, keep := preserved[id]; keep {
			continue
		}
		delete(t.sessions, id)
	}
	for i := range generated {
		s := generated[i]
		t.sessions[s.ID] = &s
	}
}

func (t *timetableStore) teacherName(id string) string {
	if name, ok := t.teachers[id]; ok {
		return name
	}
	return id
}

func (t *timetableStore) className(id string) string {
	if c, ok := t.classes[id]; ok {
		return c.Name
	}
	return id
}

func (t *timetableStore) subjectName(id string) string {
	if s, ok := t.subjects[id]; ok {
		return s.Name
	}
	return id
}

// detectConflicts scans the full session set for competitors at the
// destination slot. Teacher and class checks are independent; both may fire
// for the same destination. The moving session keeps its class, so the class
// check uses the moving session's own class id.
func (t *timetableStore) detectConflicts(sessionID, teacherID string, day, period int) []models.Conflict {
	moving, ok := t.sessions[sessionID]
	if !ok {
		return nil
	}
	destSlot, ok := t.slotID(day, period)
	if !ok {
		return nil
	}

	var conflicts []models.Conflict
	for _, other := range t.list() {
		if other.ID == sessionID || other.TimeSlotID != destSlot {
			continue
		}
		if other.TeacherID == teacherID {
			conflicts = append(conflicts, models.Conflict{
				Kind:     models.ConflictKindTeacher,
				Severity: models.ConflictSeverityWarning,
				Message: fmt.Sprintf("%s already teaches %s for %s on day %d period %d",
					t.teacherName(other.TeacherID), t.subjectName(other.SubjectID), t.className(other.ClassID), day, period),
				SessionID: other.ID,
				TeacherID: other.TeacherID,
				ClassID:   other.ClassID,
				SubjectID: other.SubjectID,
				DayOfWeek: day,
				Period:    period,
			})
		}
		if other.ClassID == moving.ClassID {
			conflicts = append(conflicts, models.Conflict{
				Kind:     models.ConflictKindClass,
				Severity: models.ConflictSeverityWarning,
				Message: fmt.Sprintf("class %s already has %s with %s on day %d period %d",
					t.className(other.ClassID), t.subjectName(other.SubjectID), t.teacherName(other.TeacherID), day, period),
				SessionID: other.ID,
				TeacherID: other.TeacherID,
				ClassID:   other.ClassID,
				SubjectID: other.SubjectID,
				DayOfWeek: day,
				Period:    period,
			})
		}
	}
	return conflicts
}
