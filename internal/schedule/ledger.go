package schedule

import "github.com/noah-isme/course-planner-api/internal/models"

// Ledger tracks the active warnings of a schedule in the order they were raised.
type Ledger struct {
	items []models.ScheduleWarning
}

// Add records a warning.
func (l *Ledger) Add(w models.ScheduleWarning) {
	l.items = append(l.items, w)
}

// RetractSection removes every warning tied to the section id and returns how
// many were dropped.
func (l *Ledger) RetractSection(sectionID string) int {
	kept := l.items[:0]
	removed := 0
	for _, w := range l.items {
		if models.WarningInvolvesSection(w, sectionID) {
			removed++
			continue
		}
		kept = append(kept, w)
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = nil
	}
	l.items = kept
	return removed
}

// Clear drops all warnings.
func (l *Ledger) Clear() {
	l.items = nil
}

// Len returns the number of active warnings.
func (l *Ledger) Len() int {
	return len(l.items)
}

// List returns a copy of the active warnings.
func (l *Ledger) List() []models.ScheduleWarning {
	out := make([]models.ScheduleWarning, len(l.items))
	copy(out, l.items)
	return out
}

// Views renders the active warnings for presentation.
func (l *Ledger) Views() []models.WarningView {
	out := make([]models.WarningView, 0, len(l.items))
	for _, w := range l.items {
		out = append(out, models.NewWarningView(w))
	}
	return out
}
