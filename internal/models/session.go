package models

import "time"

// SessionKind separates regular teaching sessions from standby duty.
type SessionKind string

const (
	SessionKindBasic   SessionKind = "BASIC"
	SessionKindStandby SessionKind = "STANDBY"
)

// Session is one scheduled occurrence of a class meeting a subject with a
// teacher at a time slot. Relocation rewrites TeacherID and TimeSlotID in
// place; a session is never partially updated. Basic sessions may be locked
// to pin them against relocation.
type Session struct {
	ID         string      `db:"id" json:"id"`
	TeacherID  string      `db:"teacher_id" json:"teacher_id"`
	ClassID    string      `db:"class_id" json:"class_id"`
	SubjectID  string      `db:"subject_id" json:"subject_id"`
	TimeSlotID string      `db:"time_slot_id" json:"time_slot_id"`
	Kind       SessionKind `db:"kind" json:"kind"`
	Locked     bool        `db:"locked" json:"locked"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}
