package models

import "time"

// CoverageRequest is one uncovered period awaiting a substitute. Immutable
// once created.
type CoverageRequest struct {
	Period     int    `json:"period"`
	ClassLabel string `json:"class_label"`
	Subject    string `json:"subject"`
}

// AssignmentSource records how an assignment came to be.
type AssignmentSource string

const (
	AssignmentSourceAuto   AssignmentSource = "AUTO"
	AssignmentSourceManual AssignmentSource = "MANUAL"
)

// AssignmentStatus marks whether a period found an assignee.
type AssignmentStatus string

const (
	AssignmentStatusAssigned AssignmentStatus = "ASSIGNED"
	// AssignmentStatusPending marks periods left over after the eligible
	// pool was exhausted; they await manual assignment.
	AssignmentStatusPending AssignmentStatus = "PENDING"
)

// Assignment pairs a coverage request with an assignee, or with a free-text
// manual name. Hidden assignments are excluded from the confirmed batch but
// stay visible to the operator until confirmation.
type Assignment struct {
	Period       int              `db:"period" json:"period"`
	ClassLabel   string           `db:"class_label" json:"class_label"`
	Subject      string           `db:"subject" json:"subject"`
	AssigneeID   string           `db:"assignee_id" json:"assignee_id,omitempty"`
	AssigneeName string           `db:"assignee_name" json:"assignee_name,omitempty"`
	Source       AssignmentSource `db:"source" json:"source"`
	Status       AssignmentStatus `db:"status" json:"status"`
	Hidden       bool             `db:"-" json:"hidden"`
}

// CoverageBatch is one allocation pass held for operator review. It is
// transient until confirmed; confirmation persists the non-hidden assigned
// rows and the updated assignee loads.
type CoverageBatch struct {
	ID          string       `json:"id"`
	Strategy    string       `json:"strategy"`
	Assignments []Assignment `json:"assignments"`
	Roster      []Assignee   `json:"roster"`
	Confirmed   bool         `json:"confirmed"`
	CreatedAt   time.Time    `json:"created_at"`
}

// FindPeriod returns the index of the assignment for the given period, or -1.
func (b *CoverageBatch) FindPeriod(period int) int {
	for i := range b.Assignments {
		if b.Assignments[i].Period == period {
			return i
		}
	}
	return -1
}
