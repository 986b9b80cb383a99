package models

// Class is static reference data for a class group.
type Class struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Grade int    `db:"grade" json:"grade"`
}

// Subject is static reference data for a taught subject.
type Subject struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	WeeklyHours int    `db:"weekly_hours" json:"weekly_hours"`
}

// TimeSlot identifies one cell of the weekly grid. Start and end times are
// derived from the grid configuration when the catalog is hydrated, never
// stored.
type TimeSlot struct {
	ID        string `db:"id" json:"id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	Period    int    `db:"period" json:"period"`
	StartTime string `db:"-" json:"start_time"`
	EndTime   string `db:"-" json:"end_time"`
}
