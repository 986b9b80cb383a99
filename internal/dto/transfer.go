package dto

import "github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"

// TransferRequest relocates a session to a destination teacher and slot.
// The moving session keeps its class; only teacher and time slot change.
type TransferRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required"`
	DayOfWeek int    `json:"dayOfWeek" validate:"required,min=1,max=7"`
	Period    int    `json:"period" validate:"required,min=1"`
}

// TransferStatus reports the outcome of a transfer request.
type TransferStatus string

const (
	TransferStatusApplied              TransferStatus = "APPLIED"
	TransferStatusAwaitingConfirmation TransferStatus = "AWAITING_CONFIRMATION"
	TransferStatusDeclined             TransferStatus = "DECLINED"
)

// TransferResponse is returned by request/confirm/decline calls. Conflicts
// are populated while a transfer awaits confirmation; Record is populated
// once a transfer has been applied.
type TransferResponse struct {
	Status    TransferStatus          `json:"status"`
	SessionID string                  `json:"sessionId"`
	Conflicts []models.Conflict       `json:"conflicts,omitempty"`
	Record    *models.OperationRecord `json:"record,omitempty"`
}

// RegenerateSubjectLoad is the weekly demand for one subject-teacher pair.
type RegenerateSubjectLoad struct {
	SubjectID   string `json:"subjectId" validate:"required"`
	TeacherID   string `json:"teacherId" validate:"required"`
	WeeklyCount int    `json:"weeklyCount" validate:"required,min=1"`
}

// RegenerateRequest rebuilds a class week from subject loads. This is the
// only operation that arms the undo buffer.
type RegenerateRequest struct {
	ClassID string                  `json:"classId" validate:"required"`
	Loads   []RegenerateSubjectLoad `json:"loads" validate:"required,min=1,dive"`
}

// UnplacedLoad reports demand the regeneration pass could not place.
type UnplacedLoad struct {
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"teacherId"`
	Missing   int    `json:"missing"`
}

// RegenerateResponse summarises a regeneration pass.
type RegenerateResponse struct {
	ClassID          string         `json:"classId"`
	Placed           int            `json:"placed"`
	Preserved        int            `json:"preserved"`
	Unfulfilled      []UnplacedLoad `json:"unfulfilled,omitempty"`
	RepairIterations int            `json:"repairIterations"`
}

// UndoResponse reports the size of the restored session set.
type UndoResponse struct {
	Restored int `json:"restored"`
}
