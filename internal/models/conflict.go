package models

// ConflictKind names the dimension on which a double-booking was detected.
type ConflictKind string

const (
	ConflictKindTeacher ConflictKind = "TEACHER"
	ConflictKindClass   ConflictKind = "CLASS"
)

// ConflictSeverity grades a conflict. Every conflict this core detects can
// be overridden by explicit operator confirmation.
type ConflictSeverity string

const (
	ConflictSeverityWarning ConflictSeverity = "WARNING"
)

// Conflict describes a detected double-booking at a destination slot.
// Computed on demand, never persisted.
type Conflict struct {
	Kind      ConflictKind     `json:"kind"`
	Severity  ConflictSeverity `json:"severity"`
	Message   string           `json:"message"`
	SessionID string           `json:"session_id"`
	TeacherID string           `json:"teacher_id"`
	ClassID   string           `json:"class_id"`
	SubjectID string           `json:"subject_id"`
	DayOfWeek int              `json:"day_of_week"`
	Period    int              `json:"period"`
}

// TransferConflictError carries the conflict list when a transfer needs
// operator confirmation.
type TransferConflictError struct {
	Message   string     `json:"message"`
	Conflicts []Conflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *TransferConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
