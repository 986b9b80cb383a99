package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
	appErrors "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/errors"
)

type stubCatalogs struct {
	classes  []models.Class
	subjects []models.Subject
	slots    []models.TimeSlot
}

func (s *stubCatalogs) ListClasses(ctx context.Context) ([]models.Class, error) {
	return s.classes, nil
}

func (s *stubCatalogs) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.subjects, nil
}

func (s *stubCatalogs) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	return s.slots, nil
}

type stubSessionRepo struct {
	sessions     []models.Session
	placements   int
	replaceAlls  int
	replaceClass int
	failUpdate   error
}

func (s *stubSessionRepo) List(ctx context.Context) ([]models.Session, error) {
	return s.sessions, nil
}

func (s *stubSessionRepo) UpdatePlacement(ctx context.Context, exec sqlx.ExtContext, id, teacherID, timeSlotID string) error {
	if s.failUpdate != nil {
		return s.failUpdate
	}
	s.placements++
	return nil
}

func (s *stubSessionRepo) ReplaceAll(ctx context.Context, tx *sqlx.Tx, sessions []models.Session) error {
	s.replaceAlls++
	return nil
}

func (s *stubSessionRepo) ReplaceClass(ctx context.Context, tx *sqlx.Tx, classID string, preserved []string, sessions []models.Session) error {
	s.replaceClass++
	return nil
}

type stubOperationRepo struct {
	inserted []models.OperationRecord
	cleared  int
}

func (s *stubOperationRepo) Insert(ctx context.Context, exec sqlx.ExtContext, record *models.OperationRecord) error {
	s.inserted = append(s.inserted, *record)
	return nil
}

func (s *stubOperationRepo) List(ctx context.Context, limit int) ([]models.OperationRecord, error) {
	out := make([]models.OperationRecord, len(s.inserted))
	copy(out, s.inserted)
	return out, nil
}

func (s *stubOperationRepo) Clear(ctx context.Context) error {
	s.cleared++
	s.inserted = nil
	return nil
}

type stubNameReader struct {
	names map[string]string
}

func (s *stubNameReader) ListNames(ctx context.Context) (map[string]string, error) {
	return s.names, nil
}

func weekSlots(days, periods int) []models.TimeSlot {
	var slots []models.TimeSlot
	for d := 1; d <= days; d++ {
		for p := 1; p <= periods; p++ {
			slots = append(slots, models.TimeSlot{ID: fmt.Sprintf("d%dp%d", d, p), DayOfWeek: d, Period: p})
		}
	}
	return slots
}

type timetableFixture struct {
	service    *TimetableService
	sessions   *stubSessionRepo
	operations *stubOperationRepo
	mock       sqlmock.Sqlmock
	expectTx   func()
}

func newTimetableFixture(t *testing.T) *timetableFixture {
	t.Helper()

	sessions := &stubSessionRepo{sessions: []models.Session{
		{ID: "s1", TeacherID: "t1", ClassID: "c1", SubjectID: "math", TimeSlotID: "d1p1", Kind: models.SessionKindBasic},
		{ID: "s2", TeacherID: "t2", ClassID: "c1", SubjectID: "science", TimeSlotID: "d1p2", Kind: models.SessionKindBasic},
		{ID: "s3", TeacherID: "t1", ClassID: "c2", SubjectID: "math", TimeSlotID: "d2p1", Kind: models.SessionKindBasic},
		{ID: "s4", TeacherID: "t3", ClassID: "c2", SubjectID: "art", TimeSlotID: "d3p1", Kind: models.SessionKindBasic, Locked: true},
	}}
	operations := &stubOperationRepo{}
	catalogs := &stubCatalogs{
		classes: []models.Class{
			{ID: "c1", Name: "9A", Grade: 9},
			{ID: "c2", Name: "9B", Grade: 9},
		},
		subjects: []models.Subject{
			{ID: "math", Name: "Mathematics", WeeklyHours: 4},
			{ID: "science", Name: "Science", WeeklyHours: 3},
			{ID: "art", Name: "Art", WeeklyHours: 1},
		},
		slots: weekSlots(5, 7),
	}
	names := &stubNameReader{names: map[string]string{
		"t1": "Teacher One",
		"t2": "Teacher Two",
		"t3": "Teacher Three",
	}}

	db, mock := newTxProviderMock(t)
	svc := NewTimetableService(catalogs, sessions, operations, names, nil, db, nil, nil, nil, TimetableServiceConfig{
		Days:          5,
		PeriodsPerDay: 7,
	})

	return &timetableFixture{
		service:    svc,
		sessions:   sessions,
		operations: operations,
		mock:       mock,
		expectTx: func() {
			mock.ExpectBegin()
			mock.ExpectCommit()
		},
	}
}

func TestTransferWithoutConflictsApplies(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.expectTx()

	resp, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1",
		TeacherID: "t1",
		DayOfWeek: 4,
		Period:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, dto.TransferStatusApplied, resp.Status)
	require.NotNil(t, resp.Record)
	assert.Zero(t, resp.Record.OverriddenConflicts)
	assert.Equal(t, 1, fx.sessions.placements)
	require.Len(t, fx.operations.inserted, 1)

	board, err := fx.service.Board(context.Background())
	require.NoError(t, err)
	for _, cell := range board.Cells {
		if cell.SessionID == "s1" {
			assert.Equal(t, 4, cell.DayOfWeek)
			assert.Equal(t, 1, cell.Period)
		}
	}
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTransferDetectsSingleTeacherConflict(t *testing.T) {
	fx := newTimetableFixture(t)

	// s2's teacher already occupies day 1 period 2; the moving session's
	// class (c2) is free there, so exactly one conflict fires.
	resp, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s3",
		TeacherID: "t2",
		DayOfWeek: 1,
		Period:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, dto.TransferStatusAwaitingConfirmation, resp.Status)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictKindTeacher, resp.Conflicts[0].Kind)
	assert.Equal(t, "s2", resp.Conflicts[0].SessionID)
	assert.Zero(t, fx.sessions.placements, "conflicting transfer must not mutate until confirmed")
}

func TestTransferDetectsClassConflict(t *testing.T) {
	fx := newTimetableFixture(t)

	// Destination slot holds s2, which shares the moving session's class.
	resp, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1",
		TeacherID: "t3",
		DayOfWeek: 1,
		Period:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, dto.TransferStatusAwaitingConfirmation, resp.Status)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, models.ConflictKindClass, resp.Conflicts[0].Kind)
}

func TestTransferDetectsTeacherAndClassConflictsTogether(t *testing.T) {
	fx := newTimetableFixture(t)

	// s2 at day 1 period 2 is both the destination teacher's session and a
	// session of the moving session's class, so the teacher and class checks
	// each report their own conflict.
	resp, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1",
		TeacherID: "t2",
		DayOfWeek: 1,
		Period:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, dto.TransferStatusAwaitingConfirmation, resp.Status)
	require.Len(t, resp.Conflicts, 2)

	kinds := map[models.ConflictKind]int{}
	for _, c := range resp.Conflicts {
		kinds[c.Kind]++
		assert.Equal(t, "s2", c.SessionID)
	}
	assert.Equal(t, 1, kinds[models.ConflictKindTeacher])
	assert.Equal(t, 1, kinds[models.ConflictKindClass])
	assert.Zero(t, fx.sessions.placements, "conflicting transfer must not mutate until confirmed")
}

func TestSecondTransferWhilePendingRejected(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s3", TeacherID: "t2", DayOfWeek: 1, Period: 2,
	})
	require.NoError(t, err)

	_, err = fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1", TeacherID: "t1", DayOfWeek: 4, Period: 1,
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflictPending.Code, appErr.Code)
}

func TestDeclineLeavesTimetableUntouched(t *testing.T) {
	fx := newTimetableFixture(t)

	before, err := fx.service.Board(context.Background())
	require.NoError(t, err)

	_, err = fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s3", TeacherID: "t2", DayOfWeek: 1, Period: 2,
	})
	require.NoError(t, err)

	resp, err := fx.service.DeclineTransfer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.TransferStatusDeclined, resp.Status)

	after, err := fx.service.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Cells, after.Cells)
	assert.Zero(t, fx.sessions.placements)

	// Nothing pending anymore.
	_, err = fx.service.ConfirmTransfer(context.Background())
	require.Error(t, err)
}

func TestConfirmOverridesConflicts(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s3", TeacherID: "t2", DayOfWeek: 1, Period: 2,
	})
	require.NoError(t, err)

	fx.expectTx()
	resp, err := fx.service.ConfirmTransfer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dto.TransferStatusApplied, resp.Status)
	require.NotNil(t, resp.Record)
	assert.Equal(t, 1, resp.Record.OverriddenConflicts)
	assert.Equal(t, 1, fx.sessions.placements)

	// The slot is released; a second confirm has nothing to apply.
	_, err = fx.service.ConfirmTransfer(context.Background())
	require.Error(t, err)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestTransferUnknownSession(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "ghost", TeacherID: "t1", DayOfWeek: 1, Period: 1,
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSessionNotFound.Code, appErr.Code)
}

func TestTransferLockedSessionRejected(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s4", TeacherID: "t3", DayOfWeek: 4, Period: 4,
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSessionLocked.Code, appErr.Code)
}

func TestRegenerateArmsUndo(t *testing.T) {
	fx := newTimetableFixture(t)

	before, err := fx.service.Board(context.Background())
	require.NoError(t, err)

	fx.expectTx()
	resp, err := fx.service.Regenerate(context.Background(), dto.RegenerateRequest{
		ClassID: "c1",
		Loads: []dto.RegenerateSubjectLoad{
			{SubjectID: "math", TeacherID: "t9", WeeklyCount: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Placed)
	assert.Empty(t, resp.Unfulfilled)
	assert.Equal(t, 1, fx.sessions.replaceClass)

	fx.expectTx()
	undo, err := fx.service.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, undo.Restored)
	assert.Equal(t, 1, fx.sessions.replaceAlls)

	after, err := fx.service.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Cells, after.Cells)

	// The buffer holds one snapshot; a second undo has nothing left.
	_, err = fx.service.Undo(context.Background())
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNothingToUndo.Code, appErr.Code)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestRegeneratePreservesLockedSessions(t *testing.T) {
	fx := newTimetableFixture(t)

	fx.expectTx()
	resp, err := fx.service.Regenerate(context.Background(), dto.RegenerateRequest{
		ClassID: "c2",
		Loads: []dto.RegenerateSubjectLoad{
			{SubjectID: "math", TeacherID: "t1", WeeklyCount: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Preserved)

	board, err := fx.service.Board(context.Background())
	require.NoError(t, err)
	var lockedSeen bool
	for _, cell := range board.Cells {
		if cell.SessionID == "s4" {
			lockedSeen = true
			assert.Equal(t, 3, cell.DayOfWeek)
			assert.Equal(t, 1, cell.Period)
		}
	}
	assert.True(t, lockedSeen, "locked session must survive regeneration")
}

func TestRegenerateUnknownClass(t *testing.T) {
	fx := newTimetableFixture(t)

	_, err := fx.service.Regenerate(context.Background(), dto.RegenerateRequest{
		ClassID: "ghost",
		Loads:   []dto.RegenerateSubjectLoad{{SubjectID: "math", TeacherID: "t1", WeeklyCount: 1}},
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTransfersDoNotArmUndo(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.expectTx()

	_, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1", TeacherID: "t1", DayOfWeek: 4, Period: 1,
	})
	require.NoError(t, err)

	_, err = fx.service.Undo(context.Background())
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNothingToUndo.Code, appErr.Code)
}

func TestTransferRollsBackOnPersistenceFailure(t *testing.T) {
	fx := newTimetableFixture(t)
	fx.sessions.failUpdate = errors.New("db down")

	before, err := fx.service.Board(context.Background())
	require.NoError(t, err)

	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err = fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1", TeacherID: "t1", DayOfWeek: 4, Period: 1,
	})
	require.Error(t, err)

	after, err := fx.service.Board(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.Cells, after.Cells)
	assert.Empty(t, fx.operations.inserted)
}

func TestHistoryRecordsAccumulate(t *testing.T) {
	fx := newTimetableFixture(t)

	fx.expectTx()
	_, err := fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1", TeacherID: "t1", DayOfWeek: 4, Period: 1,
	})
	require.NoError(t, err)

	fx.expectTx()
	_, err = fx.service.RequestTransfer(context.Background(), dto.TransferRequest{
		SessionID: "s1", TeacherID: "t1", DayOfWeek: 5, Period: 1,
	})
	require.NoError(t, err)

	records, err := fx.service.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Seq)
	assert.Equal(t, 2, records[1].Seq)

	last, ok := fx.service.LastRecord()
	require.True(t, ok)
	assert.Equal(t, 2, last.Seq)

	require.NoError(t, fx.service.ClearHistory(context.Background()))
	assert.Equal(t, 1, fx.operations.cleared)
}

func TestBoardDerivesSlotTimes(t *testing.T) {
	fx := newTimetableFixture(t)

	board, err := fx.service.Board(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, board.Cells)

	for _, cell := range board.Cells {
		if cell.SessionID == "s1" {
			assert.Equal(t, "07:30", cell.StartTime)
			assert.Equal(t, "08:15", cell.EndTime)
		}
		if cell.SessionID == "s2" {
			assert.Equal(t, "08:15", cell.StartTime)
			assert.Equal(t, "09:00", cell.EndTime)
		}
	}
	assert.WithinDuration(t, time.Now(), board.GeneratedAt, time.Minute)
}
