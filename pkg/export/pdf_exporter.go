package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var pdfColumns = []struct {
	header string
	width  float64
	value  func(TimetableEntry) string
}{
	{"Day", 24, func(e TimetableEntry) string { return DayName(e.DayIndex) }},
	{"Time", 36, func(e TimetableEntry) string { return e.Start + "-" + e.End }},
	{"Section", 32, func(e TimetableEntry) string { return e.SectionID }},
	{"Course", 58, func(e TimetableEntry) string { return e.CourseName }},
	{"Location", 40, func(e TimetableEntry) string { return e.Location() }},
}

// PDFExporter renders a timetable into a single-page PDF table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with a title, a credits line, the meeting
// table and any schedule warnings.
func (e *PDFExporter) Render(data Timetable) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(data.Title), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("Total credits: %d    Average GPA: %.2f", data.TotalCredits, data.AverageGPA), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, entry := range data.Entries {
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.value(entry), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(data.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, "Warnings", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, w := range data.Warnings {
			pdf.MultiCell(0, 5, "- "+w, "", "", false)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
