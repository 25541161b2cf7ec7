package models

// WarningKind tags the variant of a ScheduleWarning.
type WarningKind string

const (
	WarningSectionFull     WarningKind = "section-full"
	WarningCourseNotFound  WarningKind = "course-not-found"
	WarningSectionNotFound WarningKind = "section-not-found"
	WarningMalformedEntry  WarningKind = "malformed-serialized-entry"
)

// ScheduleWarning is a non-fatal schedule issue. The set of implementations is
// closed: SectionFullWarning, CourseNotFoundWarning, SectionNotFoundWarning and
// MalformedEntryWarning.
type ScheduleWarning interface {
	Kind() WarningKind
	scheduleWarning()
}

// SectionFullWarning flags an added section without open seats.
type SectionFullWarning struct {
	Section *Section
}

// CourseNotFoundWarning flags a serialized entry whose course could not be resolved.
type CourseNotFoundWarning struct {
	CourseCode string
}

// SectionNotFoundWarning flags a serialized entry naming an unknown section number.
type SectionNotFoundWarning struct {
	CourseCode    string
	SectionNumber string
}

// MalformedEntryWarning flags a serialized token lacking the <course>-<section> shape.
type MalformedEntryWarning struct {
	Token string
}

func (SectionFullWarning) Kind() WarningKind     { return WarningSectionFull }
func (CourseNotFoundWarning) Kind() WarningKind  { return WarningCourseNotFound }
func (SectionNotFoundWarning) Kind() WarningKind { return WarningSectionNotFound }
func (MalformedEntryWarning) Kind() WarningKind  { return WarningMalformedEntry }

func (SectionFullWarning) scheduleWarning()     {}
func (CourseNotFoundWarning) scheduleWarning()  {}
func (SectionNotFoundWarning) scheduleWarning() {}
func (MalformedEntryWarning) scheduleWarning()  {}

// WarningMessage renders the human readable text for a warning.
func WarningMessage(w ScheduleWarning) string {
	switch v := w.(type) {
	case SectionFullWarning:
		return sectionID(v.Section) + " has no open seats and must be waitlisted."
	case CourseNotFoundWarning:
		return v.CourseCode + " is not a valid course code"
	case SectionNotFoundWarning:
		return v.SectionNumber + " is not a valid section number for " + v.CourseCode
	case MalformedEntryWarning:
		return v.Token + " is not a valid format of <course>-<section>"
	default:
		return ""
	}
}

// WarningInvolvesSection reports whether the warning is tied to the section id.
func WarningInvolvesSection(w ScheduleWarning, id string) bool {
	v, ok := w.(SectionFullWarning)
	return ok && v.Section != nil && v.Section.ID == id
}

func sectionID(s *Section) string {
	if s == nil {
		return ""
	}
	return s.ID
}

// WarningView is the presentation form of a ScheduleWarning.
type WarningView struct {
	Kind       WarningKind `json:"kind"`
	Message    string      `json:"message"`
	SectionIDs []string    `json:"section_ids,omitempty"`
	Tokens     []string    `json:"tokens,omitempty"`
}

// NewWarningView converts a warning into its presentation form.
func NewWarningView(w ScheduleWarning) WarningView {
	view := WarningView{Kind: w.Kind(), Message: WarningMessage(w)}
	switch v := w.(type) {
	case SectionFullWarning:
		view.SectionIDs = []string{sectionID(v.Section)}
	case CourseNotFoundWarning:
		view.Tokens = []string{v.CourseCode}
	case SectionNotFoundWarning:
		view.Tokens = []string{v.CourseCode, v.SectionNumber}
	case MalformedEntryWarning:
		view.Tokens = []string{v.Token}
	}
	return view
}
