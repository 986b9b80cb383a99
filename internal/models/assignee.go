package models

import "time"

// AssigneeRole distinguishes plain teachers from auxiliary staff.
type AssigneeRole string

const (
	AssigneeRoleTeacher   AssigneeRole = "TEACHER"
	AssigneeRoleAuxiliary AssigneeRole = "AUXILIARY"
)

// Assignee is a person eligible to cover uncovered periods. WaitingQuota is
// the weekly number of standby periods a teacher offers for ad-hoc coverage;
// auxiliary staff carry no quota of their own and fall back to a configured
// default capacity.
type Assignee struct {
	ID           string       `db:"id" json:"id"`
	FullName     string       `db:"full_name" json:"full_name"`
	Expertise    *string      `db:"expertise" json:"expertise,omitempty"`
	Role         AssigneeRole `db:"role" json:"role"`
	BasicQuota   int          `db:"basic_quota" json:"basic_quota"`
	WaitingQuota int          `db:"waiting_quota" json:"waiting_quota"`
	CurrentLoad  int          `db:"current_load" json:"current_load"`
	Available    bool         `db:"available" json:"available"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
