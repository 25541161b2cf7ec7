package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/schedule"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/export"
)

type timetableRenderer interface {
	Render(data export.Timetable) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	Title string
	Term  export.Term
}

// ExportService renders schedules into downloadable files.
type ExportService struct {
	renderers map[models.ExportFormat]timetableRenderer
	title     string
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the csv, xlsx, pdf and ics renderers.
func NewExportService(cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Title == "" {
		cfg.Title = "Weekly schedule"
	}
	return &ExportService{
		renderers: map[models.ExportFormat]timetableRenderer{
			models.ExportFormatCSV:  export.NewCSVExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter(),
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatICS:  export.NewICSExporter(cfg.Term),
		},
		title:  cfg.Title,
		logger: logger,
		now:    time.Now,
	}
}

// ParseExportFormat validates a requested format, defaulting to csv.
func ParseExportFormat(raw string) (models.ExportFormat, error) {
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	switch format {
	case "":
		return models.ExportFormatCSV, nil
	case models.ExportFormatCSV, models.ExportFormatXLSX, models.ExportFormatPDF, models.ExportFormatICS:
		return format, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

// Render builds the timetable of the schedule and renders it in the format.
func (s *ExportService) Render(sched *schedule.Schedule, format models.ExportFormat) (*models.ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	body, err := renderer.Render(BuildTimetable(sched, s.title))
	if err != nil {
		s.logger.Error("failed to render schedule export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.ErrInternal.With(err, "failed to render export")
	}
	return &models.ExportFile{
		Filename:    fmt.Sprintf("schedule_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// BuildTimetable flattens a schedule into export rows, one per weekly meeting.
func BuildTimetable(sched *schedule.Schedule, title string) export.Timetable {
	data := export.Timetable{
		Title:        title,
		TotalCredits: sched.TotalCredits(),
		AverageGPA:   sched.AverageGPA(),
	}
	for idx, day := range models.Weekdays {
		for _, meeting := range sched.Day(day) {
			entry := export.TimetableEntry{
				Day:         string(day),
				DayIndex:    idx,
				Start:       meeting.FormattedStart,
				End:         meeting.FormattedEnd,
				StartMinute: int(meeting.Start),
				EndMinute:   int(meeting.End),
				SectionID:   meeting.SectionID,
				Room:        meeting.Room,
				Building:    meeting.Building,
				ClassType:   meeting.ClassType,
			}
			if section := sched.FindSection(meeting.SectionID); section != nil {
				entry.CourseCode = section.CourseCode
				entry.Instructors = strings.Join(section.Instructors, ", ")
				if course := section.Course(); course != nil {
					entry.CourseName = course.Name
				}
			}
			data.Entries = append(data.Entries, entry)
		}
	}
	for _, warning := range sched.Warnings() {
		data.Warnings = append(data.Warnings, models.WarningMessage(warning))
	}
	return data
}
