package service

import (
	"fmt"
	"time"

	appErrors "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/errors"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/export"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, opts export.PDFOptions) ([]byte, error)
}

// ExportService renders the timetable board and coverage duty rosters as
// downloadable CSV and PDF documents.
type ExportService struct {
	csv csvRenderer
	pdf pdfRenderer
}

// NewExportService wires the renderers; nil arguments fall back to defaults.
func NewExportService(csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf}
}

var boardHeaders = []string{"Day", "Period", "Time", "Class", "Subject", "Teacher", "Kind"}

func boardDataset(board *dto.TimetableBoard) export.Dataset {
	dataset := export.Dataset{Headers: boardHeaders}
	for _, cell := range board.Cells {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":     fmt.Sprintf("%d", cell.DayOfWeek),
			"Period":  fmt.Sprintf("%d", cell.Period),
			"Time":    fmt.Sprintf("%s-%s", cell.StartTime, cell.EndTime),
			"Class":   cell.ClassName,
			"Subject": cell.SubjectName,
			"Teacher": cell.TeacherName,
			"Kind":    string(cell.Kind),
		})
	}
	return dataset
}

var rosterHeaders = []string{"Period", "Class", "Subject", "Assignee", "Source", "Status"}

func rosterDataset(batch *models.CoverageBatch) export.Dataset {
	dataset := export.Dataset{Headers: rosterHeaders}
	for _, a := range batch.Assignments {
		if a.Hidden {
			continue
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Period":   fmt.Sprintf("%d", a.Period),
			"Class":    a.ClassLabel,
			"Subject":  a.Subject,
			"Assignee": a.AssigneeName,
			"Source":   string(a.Source),
			"Status":   string(a.Status),
		})
	}
	return dataset
}

// TimetableCSV renders the board as CSV, returning payload and filename.
func (s *ExportService) TimetableCSV(board *dto.TimetableBoard) ([]byte, string, error) {
	payload, err := s.csv.Render(boardDataset(board))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable CSV")
	}
	return payload, exportFilename("timetable", "csv"), nil
}

// TimetablePDF renders the board as a landscape PDF.
func (s *ExportService) TimetablePDF(board *dto.TimetableBoard) ([]byte, string, error) {
	payload, err := s.pdf.Render(boardDataset(board), export.PDFOptions{
		Title:     "Weekly Timetable",
		Subtitle:  fmt.Sprintf("Generated %s", board.GeneratedAt.Format("2006-01-02 15:04")),
		Landscape: true,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable PDF")
	}
	return payload, exportFilename("timetable", "pdf"), nil
}

// DutyRosterCSV renders a coverage batch as CSV.
func (s *ExportService) DutyRosterCSV(batch *models.CoverageBatch) ([]byte, string, error) {
	payload, err := s.csv.Render(rosterDataset(batch))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render duty roster CSV")
	}
	return payload, exportFilename("duty-roster", "csv"), nil
}

// DutyRosterPDF renders a coverage batch as a portrait PDF.
func (s *ExportService) DutyRosterPDF(batch *models.CoverageBatch) ([]byte, string, error) {
	payload, err := s.pdf.Render(rosterDataset(batch), export.PDFOptions{
		Title:    "Substitute Duty Roster",
		Subtitle: fmt.Sprintf("Batch %s, strategy %s", batch.ID, batch.Strategy),
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render duty roster PDF")
	}
	return payload, exportFilename("duty-roster", "pdf"), nil
}

func exportFilename(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("20060102-150405"), ext)
}
