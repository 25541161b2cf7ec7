package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Schedule"

// XLSXExporter renders a timetable into a workbook with one column per weekday.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render builds a weekly grid: one row per distinct time span, one column per
// weekday. Cells list the sections meeting in that span.
func (e *XLSXExporter) Render(data Timetable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("cell style: %w", err)
	}

	w := &sheetWriter{f: f, sheet: xlsxSheet}
	w.width("A", "A", 18)
	w.width("B", "F", 28)

	title := data.Title
	if title == "" {
		title = "Weekly schedule"
	}
	w.value("A1", fmt.Sprintf("%s (%d credits, GPA %.2f)", title, data.TotalCredits, data.AverageGPA))
	w.merge("A1", "F1")
	w.style("A1", "A1", headerStyle)

	w.value("A2", "Time")
	for i, name := range dayNames {
		w.value(w.cell(i+2, 2), name)
	}
	w.style("A2", "F2", headerStyle)

	var spans []string
	rowOf := map[[2]int]int{}
	cells := map[[2]int]string{}
	for _, entry := range sortedEntries(data.Entries) {
		key := [2]int{entry.StartMinute, entry.EndMinute}
		if _, ok := rowOf[key]; !ok {
			rowOf[key] = len(spans)
			spans = append(spans, entry.Start+"-"+entry.End)
		}
		cellKey := [2]int{rowOf[key], entry.DayIndex}
		text := entry.SectionID
		if loc := entry.Location(); loc != "" {
			text += " (" + loc + ")"
		}
		if prev := cells[cellKey]; prev != "" {
			text = prev + "\n" + text
		}
		cells[cellKey] = text
	}

	for i, label := range spans {
		row := i + 3
		w.value(w.cell(1, row), label)
		for day := range dayNames {
			if text, ok := cells[[2]int{i, day}]; ok {
				cell := w.cell(day+2, row)
				w.value(cell, text)
				w.style(cell, cell, wrapStyle)
			}
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("fill sheet: %w", w.err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter skips further calls after the first excelize failure and keeps it.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) keep(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	w.keep(err)
	return name
}

func (w *sheetWriter) value(cell string, v interface{}) {
	if w.err == nil {
		w.keep(w.f.SetCellValue(w.sheet, cell, v))
	}
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err == nil {
		w.keep(w.f.SetCellStyle(w.sheet, from, to, id))
	}
}

func (w *sheetWriter) width(from, to string, width float64) {
	if w.err == nil {
		w.keep(w.f.SetColWidth(w.sheet, from, to, width))
	}
}

func (w *sheetWriter) merge(from, to string) {
	if w.err == nil {
		w.keep(w.f.MergeCell(w.sheet, from, to))
	}
}
