package models

import "time"

// OperationRecord is an immutable audit entry for one applied transfer.
type OperationRecord struct {
	ID                  string    `db:"id" json:"id"`
	Seq                 int       `db:"seq" json:"seq"`
	SessionID           string    `db:"session_id" json:"session_id"`
	ClassID             string    `db:"class_id" json:"class_id"`
	SubjectID           string    `db:"subject_id" json:"subject_id"`
	FromDescription     string    `db:"from_description" json:"from_description"`
	ToDescription       string    `db:"to_description" json:"to_description"`
	OverriddenConflicts int       `db:"overridden_conflicts" json:"overridden_conflicts"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
