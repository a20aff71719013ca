package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/comsoc/events-api/internal/dto"
	appErrors "github.com/comsoc/events-api/pkg/errors"
	"github.com/comsoc/events-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportService renders printable timetables for a span of weeks.
type ExportService struct {
	events *EventService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
}

// NewExportService constructs an export service.
func NewExportService(events *EventService) *ExportService {
	return &ExportService{
		events: events,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
	}
}

// ExportResult carries the rendered document.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

var exportHeaders = []string{"Week", "Day", "Date", "Start", "End", "Name", "Location", "Tags"}

// WeekRange renders the published events of one term's week span.
func (s *ExportService) WeekRange(ctx context.Context, academicYear, term, fromWeek, toWeek int, format string) (*ExportResult, error) {
	events, err := s.events.ListWeekRange(ctx, academicYear, term, fromWeek, toWeek)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(events))}
	for i := range events {
		event := &events[i]
		row := map[string]string{
			"Day":      event.StartTime.Format("Monday"),
			"Date":     event.StartTime.Format(dto.DateLayout),
			"Start":    event.StartTime.Format("15:04"),
			"Name":     event.Name,
			"Location": event.Location,
			"Tags":     strings.Join(event.Tags, ", "),
		}
		if event.EndTime != nil {
			row["End"] = event.EndTime.Format("15:04")
		}
		if event.Week != nil {
			row["Week"] = fmt.Sprintf("%d", event.Week.Week)
		}
		data.Rows = append(data.Rows, row)
	}

	base := fmt.Sprintf("events-%d-t%d-w%d-%d", academicYear, term, fromWeek, toWeek)
	switch strings.ToLower(format) {
	case FormatCSV, "":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case FormatPDF:
		title := fmt.Sprintf("Term %d, Weeks %d-%d (%d/%d)", term, fromWeek, toWeek, academicYear, academicYear+1)
		content, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
