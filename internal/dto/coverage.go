package dto

import "github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"

// CoveragePeriodRequest is one uncovered period submitted for allocation.
type CoveragePeriodRequest struct {
	Period     int    `json:"period" validate:"required,min=1"`
	ClassLabel string `json:"classLabel" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
}

// AllocateCoverageRequest runs one allocation pass over the current roster.
// The request order is the period order; it is preserved by the allocator.
type AllocateCoverageRequest struct {
	Requests []CoveragePeriodRequest `json:"requests" validate:"required,min=1,dive"`
	Strategy string                  `json:"strategy" validate:"omitempty,oneof=ROUND_ROBIN GREEDY_MIN_LOAD"`
}

// AssigneeLoadSummary reports per-assignee counters after a pass.
type AssigneeLoadSummary struct {
	AssigneeID   string `json:"assigneeId"`
	FullName     string `json:"fullName"`
	CurrentLoad  int    `json:"currentLoad"`
	Remaining    int    `json:"remaining"`
	OverCapacity bool   `json:"overCapacity"`
}

// AllocateCoverageResponse returns the reviewed-before-confirm batch.
type AllocateCoverageResponse struct {
	BatchID      string                `json:"batchId"`
	Strategy     string                `json:"strategy"`
	Assignments  []models.Assignment   `json:"assignments"`
	PendingCount int                   `json:"pendingCount"`
	Loads        []AssigneeLoadSummary `json:"loads"`
}

// ManualAssignmentRequest assigns a period by hand, either to a known
// assignee or to a free-text name.
type ManualAssignmentRequest struct {
	BatchID    string `json:"batchId" validate:"required"`
	Period     int    `json:"period" validate:"required,min=1"`
	AssigneeID string `json:"assigneeId"`
	Name       string `json:"name"`
}

// HideAssignmentRequest toggles a period's exclusion from confirmation.
type HideAssignmentRequest struct {
	BatchID string `json:"batchId" validate:"required"`
	Period  int    `json:"period" validate:"required,min=1"`
	Hidden  bool   `json:"hidden"`
}

// ConfirmCoverageRequest finalizes a batch.
type ConfirmCoverageRequest struct {
	BatchID string `json:"batchId" validate:"required"`
}

// ConfirmCoverageResponse summarises what was persisted.
type ConfirmCoverageResponse struct {
	BatchID   string `json:"batchId"`
	Persisted int    `json:"persisted"`
	Skipped   int    `json:"skipped"`
}
