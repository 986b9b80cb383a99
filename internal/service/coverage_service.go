package service

import (
	"context"
	"database/sql"
	"strings"
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

type coverageRosterReader interface {
	ListAvailable(ctx context.Context) ([]models.Assignee, error)
}

type coverageAssignmentWriter interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, batchID string, assignments []models.Assignment) error
	ListByBatch(ctx context.Context, batchID string) ([]models.Assignment, error)
}

type assigneeLoadWriter interface {
	UpdateLoads(ctx context.Context, exec sqlx.ExtContext, assignees []models.Assignee) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CoverageServiceConfig governs allocator behaviour.
type CoverageServiceConfig struct {
	DefaultAuxCapacity int
	Strategy           AllocationStrategy
	BatchTTL           time.Duration
}

// CoverageService runs substitute allocation passes and holds them for
// operator review until an explicit confirmation persists the batch.
// Batch mutation is read-modify-write over the store, so mu serializes
// every path that edits a held batch.
type CoverageService struct {
	roster    coverageRosterReader
	writer    coverageAssignmentWriter
	loads     assigneeLoadWriter
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       CoverageServiceConfig

	mu    sync.Mutex
	store *batchStore
}

// NewCoverageService wires allocator dependencies.
func NewCoverageService(
	roster coverageRosterReader,
	writer coverageAssignmentWriter,
	loads assigneeLoadWriter,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg CoverageServiceConfig,
) *CoverageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultAuxCapacity <= 0 {
		cfg.DefaultAuxCapacity = 10
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyRoundRobin
	}
	if cfg.BatchTTL <= 0 {
		cfg.BatchTTL = time.Hour
	}
	return &CoverageService{
		roster:    roster,
		writer:    writer,
		loads:     loads,
		tx:        tx,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
		store:     newBatchStore(cfg.BatchTTL),
	}
}

// Allocate runs one allocation pass over the current roster and keeps the
// result as a reviewable batch. Periods that could not be assigned come back
// with status PENDING; that is a partial result, not a failure.
func (s *CoverageService) Allocate(ctx context.Context, req dto.AllocateCoverageRequest) (*dto.AllocateCoverageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coverage allocation payload")
	}

	strategy := s.cfg.Strategy
	if req.Strategy != "" {
		strategy = AllocationStrategy(req.Strategy)
	}

	roster, err := s.roster.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee roster")
	}

	pool := NewResourcePool(roster, s.cfg.DefaultAuxCapacity)
	requests := make([]models.CoverageRequest, 0, len(req.Requests))
	for _, item := range req.Requests {
		requests = append(requests, models.CoverageRequest{
			Period:     item.Period,
			ClassLabel: item.ClassLabel,
			Subject:    item.Subject,
		})
	}

	assignments := allocateCoverage(requests, pool, strategy)

	pending := 0
	for _, a := range assignments {
		if a.Status == models.AssignmentStatusPending {
			pending++
		}
	}

	batch := models.CoverageBatch{
		ID:          uuid.NewString(),
		Strategy:    string(strategy),
		Assignments: assignments,
		Roster:      pool.Snapshot(),
		CreatedAt:   time.Now().UTC(),
	}
	s.store.Save(batch)

	s.metrics.ObserveCoveragePass(len(assignments)-pending, pending)
	s.logger.Info("coverage pass completed",
		zap.String("batch_id", batch.ID),
		zap.String("strategy", string(strategy)),
		zap.Int("assigned", len(assignments)-pending),
		zap.Int("pending", pending),
	)

	return &dto.AllocateCoverageResponse{
		BatchID:      batch.ID,
		Strategy:     string(strategy),
		Assignments:  assignments,
		PendingCount: pending,
		Loads:        loadSummaries(pool),
	}, nil
}

// AssignManual pairs a period with an operator-chosen assignee or free-text
// name.
func (s *CoverageService) AssignManual(ctx context.Context, req dto.ManualAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual assignment payload")
	}
	if req.AssigneeID == "" && strings.TrimSpace(req.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "either assigneeId or name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.store.Get(req.BatchID)
	if !ok {
		return nil, appErrors.ErrBatchNotFound
	}

	idx := batch.FindPeriod(req.Period)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "period not part of this batch")
	}

	assignment := &batch.Assignments[idx]
	if req.AssigneeID != "" {
		name, found := rosterName(batch.Roster, req.AssigneeID)
		if !found {
			return nil, appErrors.ErrAssigneeNotFound
		}
		assignment.AssigneeID = req.AssigneeID
		assignment.AssigneeName = name
	} else {
		assignment.AssigneeID = ""
		assignment.AssigneeName = strings.TrimSpace(req.Name)
	}
	assignment.Source = models.AssignmentSourceManual
	assignment.Status = models.AssignmentStatusAssigned

	s.store.Save(batch)
	result := *assignment
	return &result, nil
}

// SetHidden toggles a period's exclusion from the confirmed set.
func (s *CoverageService) SetHidden(ctx context.Context, req dto.HideAssignmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hide payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.store.Get(req.BatchID)
	if !ok {
		return appErrors.ErrBatchNotFound
	}
	idx := batch.FindPeriod(req.Period)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "period not part of this batch")
	}
	batch.Assignments[idx].Hidden = req.Hidden
	s.store.Save(batch)
	return nil
}

// Confirm persists the batch's visible assigned periods and the updated
// assignee loads in one transaction, then drops the batch.
func (s *CoverageService) Confirm(ctx context.Context, req dto.ConfirmCoverageRequest) (*dto.ConfirmCoverageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirm payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.store.Get(req.BatchID)
	if !ok {
		return nil, appErrors.ErrBatchNotFound
	}

	final := make([]models.Assignment, 0, len(batch.Assignments))
	for _, a := range batch.Assignments {
		if a.Hidden || a.Status != models.AssignmentStatusAssigned {
			continue
		}
		final = append(final, a)
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.writer.InsertBatch(ctx, tx, batch.ID, final); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist coverage assignments")
		return nil, err
	}
	if err = s.loads.UpdateLoads(ctx, tx, batch.Roster); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignee loads")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit coverage batch")
		return nil, err
	}

	s.store.Delete(batch.ID)
	s.metrics.ObserveCoverageConfirm(len(final))
	s.logger.Info("coverage batch confirmed",
		zap.String("batch_id", batch.ID),
		zap.Int("persisted", len(final)),
		zap.Int("skipped", len(batch.Assignments)-len(final)),
	)

	return &dto.ConfirmCoverageResponse{
		BatchID:   batch.ID,
		Persisted: len(final),
		Skipped:   len(batch.Assignments) - len(final),
	}, nil
}

// Batch returns the current state of a held batch for re-display. Once a
// batch is confirmed it leaves the store; the persisted rows are read back
// instead so the confirmed roster remains retrievable.
func (s *CoverageService) Batch(ctx context.Context, batchID string) (*models.CoverageBatch, error) {
	if batchID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch id is required")
	}
	batch, ok := s.store.Get(batchID)
	if ok {
		return &batch, nil
	}

	persisted, err := s.writer.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load persisted coverage batch")
	}
	if len(persisted) == 0 {
		return nil, appErrors.ErrBatchNotFound
	}
	return &models.CoverageBatch{
		ID:          batchID,
		Assignments: persisted,
		Confirmed:   true,
	}, nil
}

func loadSummaries(pool *ResourcePool) []dto.AssigneeLoadSummary {
	snapshot := pool.Snapshot()
	summaries := make([]dto.AssigneeLoadSummary, 0, len(snapshot))
	for _, a := range snapshot {
		summaries = append(summaries, dto.AssigneeLoadSummary{
			AssigneeID:   a.ID,
			FullName:     a.FullName,
			CurrentLoad:  a.CurrentLoad,
			Remaining:    pool.Remaining(a.ID),
			OverCapacity: pool.IsOverCapacity(a.ID),
		})
	}
	return summaries
}

func rosterName(roster []models.Assignee, id string) (string, bool) {
	for _, a := range roster {
		if a.ID == id {
			return a.FullName, true
		}
	}
	return "", false
}

// --- Batch store ---

type batchStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]models.CoverageBatch
}

func newBatchStore(ttl time.Duration) *batchStore {
	return &batchStore{
		ttl:   ttl,
		items: make(map[string]models.CoverageBatch),
	}
}

func (s *batchStore) Save(batch models.CoverageBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[batch.ID] = batch
}

// Get returns a detached copy. Assignments and Roster are cloned so callers
// never write through the stored batch's backing arrays; edits only become
// visible after Save.
func (s *batchStore) Get(id string) (models.CoverageBatch, bool) {
	s.mu.RLock()
	batch, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return models.CoverageBatch{}, false
	}
	if time.Since(batch.CreatedAt) > s.ttl {
		s.Delete(id)
		return models.CoverageBatch{}, false
	}
	batch.Assignments = append([]models.Assignment(nil), batch.Assignments...)
	batch.Roster = append([]models.Assignee(nil), batch.Roster...)
	return batch, true
}

func (s *batchStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
