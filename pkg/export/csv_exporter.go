package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

type csvRow struct {
	Day         string `csv:"day"`
	Start       string `csv:"start"`
	End         string `csv:"end"`
	SectionID   string `csv:"section_id"`
	CourseCode  string `csv:"course_code"`
	CourseName  string `csv:"course_name"`
	Location    string `csv:"location"`
	ClassType   string `csv:"class_type"`
	Instructors string `csv:"instructors"`
}

// CSVExporter renders a timetable as one CSV row per meeting.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the timetable.
func (e *CSVExporter) Render(data Timetable) ([]byte, error) {
	rows := make([]*csvRow, 0, len(data.Entries))
	for _, entry := range data.Entries {
		rows = append(rows, &csvRow{
			Day:         DayName(entry.DayIndex),
			Start:       entry.Start,
			End:         entry.End,
			SectionID:   entry.SectionID,
			CourseCode:  entry.CourseCode,
			CourseName:  entry.CourseName,
			Location:    entry.Location(),
			ClassType:   entry.ClassType,
			Instructors: entry.Instructors,
		})
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return out, nil
}
