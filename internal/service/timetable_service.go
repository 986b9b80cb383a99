package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
	appErrors "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/errors"
)

const boardCacheKey = "timetable:board"

type timetableCatalogReader interface {
	ListClasses(ctx context.Context) ([]models.Class, error)
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
}

type timetableSessionRepository interface {
	List(ctx context.Context) ([]models.Session, error)
	UpdatePlacement(ctx context.Context, exec sqlx.ExtContext, id, teacherID, timeSlotID string) error
	ReplaceAll(ctx context.Context, tx *sqlx.Tx, sessions []models.Session) error
	ReplaceClass(ctx context.Context, tx *sqlx.Tx, classID string, preserved []string, sessions []models.Session) error
}

type operationRecorder interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, record *models.OperationRecord) error
	List(ctx context.Context, limit int) ([]models.OperationRecord, error)
	Clear(ctx context.Context) error
}

type teacherNamesReader interface {
	ListNames(ctx context.Context) (map[string]string, error)
}

type boardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// TimetableServiceConfig describes the weekly grid and cache tuning.
type TimetableServiceConfig struct {
	Days             int
	PeriodsPerDay    int
	FirstPeriodStart string
	PeriodMinutes    int
	BreakMinutes     int
	CacheTTL         time.Duration
	RepairIterations int
}

type pendingTransfer struct {
	req       dto.TransferRequest
	slotID    string
	conflicts []models.Conflict
}

// operationHistory is the append-only transfer log plus the single-slot undo
// buffer. The buffer is armed only by bulk regeneration, never by individual
// transfers.
type operationHistory struct {
	seq     int
	records []models.OperationRecord
	undo    []models.Session
}

func (h *operationHistory) nextSeq() int {
	h.seq++
	return h.seq
}

func (h *operationHistory) record(rec models.OperationRecord) {
	h.records = append(h.records, rec)
}

func (h *operationHistory) last() (models.OperationRecord, bool) {
	if len(h.records) == 0 {
		return models.OperationRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

func (h *operationHistory) clearRecords() {
	h.records = nil
}

func (h *operationHistory) armUndo(snapshot []models.Session) {
	h.undo = snapshot
}

func (h *operationHistory) takeUndo() ([]models.Session, bool) {
	if h.undo == nil {
		return nil, false
	}
	snapshot := h.undo
	h.undo = nil
	return snapshot, true
}

// TimetableService owns the in-memory session set and serializes every
// mutation behind one mutex: transfers, regeneration and undo are atomic
// with respect to each other and to board reads.
type TimetableService struct {
	mu sync.Mutex

	catalogs   timetableCatalogReader
	sessions   timetableSessionRepository
	operations operationRecorder
	roster     teacherNamesReader
	cache      boardCache
	tx         txProvider
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cfg        TimetableServiceConfig

	store   *timetableStore
	pending *pendingTransfer
	history operationHistory
}

// NewTimetableService wires timetable dependencies. cache may be nil when
// Redis is not configured.
func NewTimetableService(
	catalogs timetableCatalogReader,
	sessions timetableSessionRepository,
	operations operationRecorder,
	roster teacherNamesReader,
	cache boardCache,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Days <= 0 {
		cfg.Days = 5
	}
	if cfg.PeriodsPerDay <= 0 {
		cfg.PeriodsPerDay = 7
	}
	if cfg.FirstPeriodStart == "" {
		cfg.FirstPeriodStart = "07:30"
	}
	if cfg.PeriodMinutes <= 0 {
		cfg.PeriodMinutes = 45
	}
	if cfg.BreakMinutes < 0 {
		cfg.BreakMinutes = 0
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.RepairIterations <= 0 {
		cfg.RepairIterations = 12
	}
	return &TimetableService{
		catalogs:   catalogs,
		sessions:   sessions,
		operations: operations,
		roster:     roster,
		cache:      cache,
		tx:         tx,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// ensureLoaded hydrates the store from the repositories on first use.
// Callers must hold the mutex.
func (s *TimetableService) ensureLoaded(ctx context.Context) error {
	if s.store != nil {
		return nil
	}
	classes, err := s.catalogs.ListClasses(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	subjects, err := s.catalogs.ListSubjects(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	slots, err := s.catalogs.ListTimeSlots(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	for i := range slots {
		slots[i].StartTime, slots[i].EndTime = s.slotTimes(slots[i].Period)
	}
	var names map[string]string
	if s.roster != nil {
		names, err = s.roster.ListNames(ctx)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher names")
		}
	}
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	s.store = newTimetableStore(classes, subjects, slots, names, sessions)
	return nil
}

// slotTimes derives the start/end wall-clock labels for a period from the
// grid configuration.
func (s *TimetableService) slotTimes(period int) (string, string) {
	base, err := time.Parse("15:04", s.cfg.FirstPeriodStart)
	if err != nil {
		base, _ = time.Parse("15:04", "07:30")
	}
	offset := time.Duration(period-1) * time.Duration(s.cfg.PeriodMinutes+s.cfg.BreakMinutes) * time.Minute
	start := base.Add(offset)
	end := start.Add(time.Duration(s.cfg.PeriodMinutes) * time.Minute)
	return start.Format("15:04"), end.Format("15:04")
}

// RequestTransfer starts a relocation. With no conflicts at the destination
// the transfer applies immediately; otherwise it is held for an explicit
// confirm or decline and nothing is mutated.
func (s *TimetableService) RequestTransfer(ctx context.Context, req dto.TransferRequest) (*dto.TransferResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.pending != nil {
		return nil, appErrors.ErrConflictPending
	}

	session, ok := s.store.find(req.SessionID)
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	if session.Locked {
		return nil, appErrors.ErrSessionLocked
	}
	slotID, ok := s.store.slotID(req.DayOfWeek, req.Period)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("no time slot for day %d period %d", req.DayOfWeek, req.Period))
	}

	conflicts := s.store.detectConflicts(req.SessionID, req.TeacherID, req.DayOfWeek, req.Period)
	s.metrics.ObserveConflictsDetected(len(conflicts))

	if len(conflicts) == 0 {
		record, err := s.apply(ctx, req, slotID, 0)
		if err != nil {
			return nil, err
		}
		return &dto.TransferResponse{
			Status:    dto.TransferStatusApplied,
			SessionID: req.SessionID,
			Record:    record,
		}, nil
	}

	s.pending = &pendingTransfer{req: req, slotID: slotID, conflicts: conflicts}
	s.logger.Info("transfer awaiting confirmation",
		zap.String("session_id", req.SessionID),
		zap.Int("conflicts", len(conflicts)),
	)
	return &dto.TransferResponse{
		Status:    dto.TransferStatusAwaitingConfirmation,
		SessionID: req.SessionID,
		Conflicts: conflicts,
	}, nil
}

// ConfirmTransfer applies the held transfer, overriding its conflicts. The
// pending slot is released only once the apply succeeds, so a failed apply
// can be retried or declined.
func (s *TimetableService) ConfirmTransfer(ctx context.Context) (*dto.TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no transfer awaiting confirmation")
	}
	pending := s.pending
	record, err := s.apply(ctx, pending.req, pending.slotID, len(pending.conflicts))
	if err != nil {
		return nil, err
	}
	s.pending = nil
	return &dto.TransferResponse{
		Status:    dto.TransferStatusApplied,
		SessionID: pending.req.SessionID,
		Record:    record,
	}, nil
}

// DeclineTransfer drops the held transfer without touching the session set.
func (s *TimetableService) DeclineTransfer(ctx context.Context) (*dto.TransferResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no transfer awaiting confirmation")
	}
	sessionID := s.pending.req.SessionID
	s.pending = nil
	s.metrics.ObserveTransferDeclined()
	s.logger.Info("transfer declined", zap.String("session_id", sessionID))
	return &dto.TransferResponse{
		Status:    dto.TransferStatusDeclined,
		SessionID: sessionID,
	}, nil
}

// apply rewrites the session placement, persists it together with the audit
// record, and rolls the in-memory change back if persistence fails. Callers
// must hold the mutex.
func (s *TimetableService) apply(ctx context.Context, req dto.TransferRequest, slotID string, overridden int) (*models.OperationRecord, error) {
	session, ok := s.store.find(req.SessionID)
	if !ok {
		return nil, appErrors.ErrSessionNotFound
	}
	prevTeacher, prevSlot := session.TeacherID, session.TimeSlotID

	record := models.OperationRecord{
		ID:                  uuid.NewString(),
		Seq:                 s.history.nextSeq(),
		SessionID:           session.ID,
		ClassID:             session.ClassID,
		SubjectID:           session.SubjectID,
		FromDescription:     s.describePlacement(prevTeacher, prevSlot),
		ToDescription:       s.describePlacement(req.TeacherID, slotID),
		OverriddenConflicts: overridden,
		CreatedAt:           time.Now().UTC(),
	}

	s.store.apply(session.ID, req.TeacherID, slotID)

	if err := s.persistTransfer(ctx, session.ID, req.TeacherID, slotID, &record); err != nil {
		s.store.apply(session.ID, prevTeacher, prevSlot)
		s.history.seq--
		return nil, err
	}

	s.history.record(record)
	s.invalidateBoard(ctx)
	s.metrics.ObserveTransferApplied(overridden)
	s.logger.Info("transfer applied",
		zap.String("session_id", session.ID),
		zap.String("from", record.FromDescription),
		zap.String("to", record.ToDescription),
		zap.Int("overridden_conflicts", overridden),
	)
	return &record, nil
}

func (s *TimetableService) persistTransfer(ctx context.Context, sessionID, teacherID, slotID string, record *models.OperationRecord) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.sessions.UpdatePlacement(ctx, tx, sessionID, teacherID, slotID); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session placement")
	}
	if err := s.operations.Insert(ctx, tx, record); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist operation record")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit transfer")
	}
	return nil
}

func (s *TimetableService) describePlacement(teacherID, slotID string) string {
	slot, ok := s.store.slots[slotID]
	if !ok {
		return s.store.teacherName(teacherID)
	}
	return fmt.Sprintf("%s / day %d period %d (%s-%s)",
		s.store.teacherName(teacherID), slot.DayOfWeek, slot.Period, slot.StartTime, slot.EndTime)
}

// Regenerate rebuilds a class week from subject loads. It is the only
// operation that arms the undo buffer; the snapshot is taken before any
// mutation.
func (s *TimetableService) Regenerate(ctx context.Context, req dto.RegenerateRequest) (*dto.RegenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid regeneration payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if _, ok := s.store.classes[req.ClassID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	snapshot := s.store.snapshot()
	result := regenerateClass(s.store, req.ClassID, req.Loads, s.cfg.Days, s.cfg.PeriodsPerDay, s.cfg.RepairIterations)

	preservedIDs := make([]string, 0, len(result.preserved))
	for id := range result.preserved {
		preservedIDs = append(preservedIDs, id)
	}

	s.store.replaceClass(req.ClassID, result.preserved, result.sessions)

	if err := s.persistClassReplace(ctx, req.ClassID, preservedIDs, result.sessions); err != nil {
		s.store.restore(snapshot)
		return nil, err
	}

	s.history.armUndo(snapshot)
	s.invalidateBoard(ctx)
	s.metrics.ObserveRegeneration(len(result.sessions))
	s.logger.Info("class week regenerated",
		zap.String("class_id", req.ClassID),
		zap.Int("placed", len(result.sessions)),
		zap.Int("preserved", len(preservedIDs)),
		zap.Int("unfulfilled", len(result.unfulfilled)),
	)

	return &dto.RegenerateResponse{
		ClassID:          req.ClassID,
		Placed:           len(result.sessions),
		Preserved:        len(preservedIDs),
		Unfulfilled:      result.unfulfilled,
		RepairIterations: result.iterations,
	}, nil
}

func (s *TimetableService) persistClassReplace(ctx context.Context, classID string, preserved []string, sessions []models.Session) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.sessions.ReplaceClass(ctx, tx, classID, preserved, sessions); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist regenerated sessions")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit regeneration")
	}
	return nil
}

// Undo restores the session set captured before the last regeneration and
// invalidates the buffer; a second call without a new regeneration fails.
func (s *TimetableService) Undo(ctx context.Context) (*dto.UndoResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	snapshot, ok := s.history.takeUndo()
	if !ok {
		return nil, appErrors.ErrNothingToUndo
	}

	current := s.store.snapshot()
	s.store.restore(snapshot)

	if err := s.persistReplaceAll(ctx, snapshot); err != nil {
		s.store.restore(current)
		s.history.armUndo(snapshot)
		return nil, err
	}

	s.invalidateBoard(ctx)
	s.metrics.ObserveUndo()
	s.logger.Info("timetable restored from undo buffer", zap.Int("sessions", len(snapshot)))
	return &dto.UndoResponse{Restored: len(snapshot)}, nil
}

func (s *TimetableService) persistReplaceAll(ctx context.Context, sessions []models.Session) error {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	if err := s.sessions.ReplaceAll(ctx, tx, sessions); err != nil {
		_ = tx.Rollback()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist restored sessions")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit undo")
	}
	return nil
}

// Board renders the weekly grid, serving from cache when possible.
func (s *TimetableService) Board(ctx context.Context) (*dto.TimetableBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		var cached dto.TimetableBoard
		if err := s.cache.Get(ctx, boardCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	board := &dto.TimetableBoard{
		Days:          s.cfg.Days,
		PeriodsPerDay: s.cfg.PeriodsPerDay,
		GeneratedAt:   time.Now().UTC(),
	}
	for _, session := range s.store.list() {
		slot, ok := s.store.slots[session.TimeSlotID]
		if !ok {
			continue
		}
		board.Cells = append(board.Cells, dto.BoardCell{
			SessionID:   session.ID,
			TeacherID:   session.TeacherID,
			TeacherName: s.store.teacherName(session.TeacherID),
			ClassID:     session.ClassID,
			ClassName:   s.store.className(session.ClassID),
			SubjectID:   session.SubjectID,
			SubjectName: s.store.subjectName(session.SubjectID),
			Kind:        session.Kind,
			Locked:      session.Locked,
			DayOfWeek:   slot.DayOfWeek,
			Period:      slot.Period,
			StartTime:   slot.StartTime,
			EndTime:     slot.EndTime,
		})
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, boardCacheKey, board, s.cfg.CacheTTL)
	}
	return board, nil
}

// History lists persisted operation records, newest first.
func (s *TimetableService) History(ctx context.Context, limit int) ([]models.OperationRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	records, err := s.operations.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list operation history")
	}
	return records, nil
}

// LastRecord returns the most recent transfer applied by this process.
func (s *TimetableService) LastRecord() (models.OperationRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.last()
}

// ClearHistory empties the durable log and the in-process record list. The
// undo buffer is unaffected.
func (s *TimetableService) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.operations.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear operation history")
	}
	s.history.clearRecords()
	return nil
}

func (s *TimetableService) invalidateBoard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, boardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate board cache", zap.Error(err))
	}
}
