package models

import "time"

// ExportFormat enumerates the supported schedule export formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatICS  ExportFormat = "ics"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatCSV:
		return "text/csv"
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		return "application/pdf"
	case ExportFormatICS:
		return "text/calendar"
	}
	return "application/octet-stream"
}

// ExportFile is a rendered schedule export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportLink is a signed, session-independent download URL for a stored export.
type ExportLink struct {
	URL       string       `json:"url"`
	Format    ExportFormat `json:"format"`
	Filename  string       `json:"filename"`
	ExpiresAt time.Time    `json:"expires_at"`
}
