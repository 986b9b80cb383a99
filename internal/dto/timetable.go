package dto

import (
	"time"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// BoardCell is one rendered cell of the weekly grid.
type BoardCell struct {
	SessionID   string             `json:"sessionId"`
	TeacherID   string             `json:"teacherId"`
	TeacherName string             `json:"teacherName"`
	ClassID     string             `json:"classId"`
	ClassName   string             `json:"className"`
	SubjectID   string             `json:"subjectId"`
	SubjectName string             `json:"subjectName"`
	Kind        models.SessionKind `json:"kind"`
	Locked      bool               `json:"locked"`
	DayOfWeek   int                `json:"dayOfWeek"`
	Period      int                `json:"period"`
	StartTime   string             `json:"startTime"`
	EndTime     string             `json:"endTime"`
}

// TimetableBoard is the full weekly grid for display.
type TimetableBoard struct {
	Days          int         `json:"days"`
	PeriodsPerDay int         `json:"periodsPerDay"`
	Cells         []BoardCell `json:"cells"`
	GeneratedAt   time.Time   `json:"generatedAt"`
}
