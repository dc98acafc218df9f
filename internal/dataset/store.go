// Package dataset owns the authoritative row sequence for the open file
// and every mutation against it.
package dataset

import (
	"github.com/google/uuid"

	"github.com/abbrevlab/annotab/internal/domain"
)

// Store holds the ordered row sequence of the currently open dataset.
//
// Tab views are never cached: every read re-filters the authoritative
// sequence, so a toggle is reflected on the very next view without any
// partition bookkeeping. Views return the same *Row values the store owns,
// and mutations resolve a (tab, view index) pair back to the owning row by
// its ID, never by structural comparison — field-wise duplicate rows are
// common in scraped annotation data and must stay independently editable.
type Store struct {
	rows []*domain.Row
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load replaces the dataset wholesale. Rows without an ID are assigned one;
// rows restored from a draft keep theirs.
func (s *Store) Load(rows []*domain.Row) {
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
	}
	s.rows = rows
}

// Reset discards the dataset.
func (s *Store) Reset() {
	s.rows = nil
}

// Rows returns the authoritative sequence, in source order. Callers must
// not reorder it; export depends on the order surviving a full edit cycle.
func (s *Store) Rows() []*domain.Row {
	return s.rows
}

// Len returns the total row count.
func (s *Store) Len() int {
	return len(s.rows)
}

// ViewForTab returns the ordered sub-sequence of rows whose completion flag
// matches the tab. The result shares row identities with the authoritative
// sequence.
func (s *Store) ViewForTab(tab domain.Tab) []*domain.Row {
	want := tab.Completed()
	view := make([]*domain.Row, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Completed == want {
			view = append(view, row)
		}
	}
	return view
}

// UpdateField replaces a single editable field of the row at viewIndex under
// tab, leaving every other field and the completion flag untouched. A stale
// index (the view can shrink between render and action) is a silent no-op.
func (s *Store) UpdateField(viewIndex int, tab domain.Tab, field domain.Field, value string) {
	row := s.resolve(viewIndex, tab)
	if row == nil {
		return
	}
	switch field {
	case domain.FieldLongForm:
		row.LongForm = value
	case domain.FieldDomain:
		if domain.IsDomainLabel(value) {
			row.Domain = value
		}
	}
}

// ToggleCompletion flips the completion flag of the row at viewIndex under
// tab. The row leaves this tab's view and joins the other on the next read.
func (s *Store) ToggleCompletion(viewIndex int, tab domain.Tab) {
	if row := s.resolve(viewIndex, tab); row != nil {
		row.Completed = !row.Completed
	}
}

// RemoveRow hard-deletes the row at viewIndex under tab from the
// authoritative sequence. Confirmation is the caller's concern.
func (s *Store) RemoveRow(viewIndex int, tab domain.Tab) {
	row := s.resolve(viewIndex, tab)
	if row == nil {
		return
	}
	for i, candidate := range s.rows {
		if candidate.ID == row.ID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return
		}
	}
}

// Progress returns the completion summary for the whole dataset.
func (s *Store) Progress() domain.Progress {
	completed := 0
	for _, row := range s.rows {
		if row.Completed {
			completed++
		}
	}
	return domain.NewProgress(completed, len(s.rows))
}

// resolve maps a (tab, view index) pair to the owning row. Returns nil when
// the index is out of range for the current view.
func (s *Store) resolve(viewIndex int, tab domain.Tab) *domain.Row {
	if viewIndex < 0 {
		return nil
	}
	view := s.ViewForTab(tab)
	if viewIndex >= len(view) {
		return nil
	}
	return view[viewIndex]
}
