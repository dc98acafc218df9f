package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abbrevlab/annotab/internal/domain"
	"github.com/abbrevlab/annotab/internal/tui/styles"
)

// Column widths for the row table. Sentence takes the remainder.
const (
	statusColWidth   = 3
	abbrevColWidth   = 14
	longFormColWidth = 26
	domainColWidth   = 12
)

// FilterFunc ranks view rows against a query and returns matching view
// indexes, best first.
type FilterFunc func(query string, view []*domain.Row) []int

// RowTable renders the active tab's view of the dataset and tracks the
// selection. It never owns rows: the view is re-derived by the caller after
// every mutation and handed back via SetRows.
type RowTable struct {
	view []*domain.Row

	// Selection (index into visible order, not the view)
	cursor int
	offset int

	// Dimensions
	width  int
	height int

	sentenceLen int

	// Filter state
	filterFn     FilterFunc
	filterActive bool
	filterInput  textinput.Model
	filteredIdx  []int // view indexes in rank order
}

// NewRowTable creates an empty table. filterFn may be nil to disable
// filtering.
func NewRowTable(filterFn FilterFunc, sentenceLen int) *RowTable {
	ti := textinput.New()
	ti.Placeholder = "filter rows..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	if sentenceLen <= 0 {
		sentenceLen = 60
	}

	return &RowTable{
		filterFn:    filterFn,
		filterInput: ti,
		sentenceLen: sentenceLen,
	}
}

// SetRows replaces the rendered view, preserving the cursor position where
// possible. Called after every mutation and tab switch.
func (t *RowTable) SetRows(view []*domain.Row) {
	t.view = view
	t.applyFilter()
	if t.cursor >= len(t.visible()) {
		t.cursor = max(0, len(t.visible())-1)
	}
	t.clampOffset()
}

// SetSize sets the rendered dimensions.
func (t *RowTable) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// SelectedViewIndex returns the view index of the row under the cursor,
// or -1 when the table is empty. This is the index mutations are keyed by.
func (t *RowTable) SelectedViewIndex() int {
	visible := t.visible()
	if t.cursor < 0 || t.cursor >= len(visible) {
		return -1
	}
	return visible[t.cursor]
}

// Selected returns the row under the cursor, or nil.
func (t *RowTable) Selected() *domain.Row {
	idx := t.SelectedViewIndex()
	if idx < 0 || idx >= len(t.view) {
		return nil
	}
	return t.view[idx]
}

// IsFilterTyping reports whether the filter input owns the keyboard.
func (t *RowTable) IsFilterTyping() bool {
	return t.filterActive && t.filterInput.Focused()
}

// IsFiltering reports whether a filter is active.
func (t *RowTable) IsFiltering() bool {
	return t.filterActive
}

// ToggleFilter activates the filter input.
func (t *RowTable) ToggleFilter() {
	if t.filterFn == nil {
		return
	}
	t.filterActive = true
	t.filterInput.Focus()
}

// ClearFilter drops the active filter.
func (t *RowTable) ClearFilter() {
	t.filterActive = false
	t.filterInput.Blur()
	t.filterInput.SetValue("")
	t.filteredIdx = nil
	t.cursor = 0
	t.offset = 0
}

// Update handles navigation and filter typing.
func (t *RowTable) Update(msg tea.Msg) tea.Cmd {
	if t.IsFilterTyping() {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				t.ClearFilter()
				return nil
			case "enter":
				t.filterInput.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		t.filterInput, cmd = t.filterInput.Update(msg)
		t.applyFilter()
		t.cursor = 0
		t.offset = 0
		return cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "j", "down":
			t.moveCursor(1)
		case "k", "up":
			t.moveCursor(-1)
		case "ctrl+d", "pgdown":
			t.moveCursor(t.maxVisible() / 2)
		case "ctrl+u", "pgup":
			t.moveCursor(-t.maxVisible() / 2)
		case "g", "home":
			t.cursor = 0
			t.offset = 0
		case "G", "end":
			t.cursor = max(0, len(t.visible())-1)
			t.clampOffset()
		}
	}
	return nil
}

func (t *RowTable) moveCursor(delta int) {
	t.cursor += delta
	if t.cursor < 0 {
		t.cursor = 0
	}
	if t.cursor >= len(t.visible()) {
		t.cursor = max(0, len(t.visible())-1)
	}
	t.clampOffset()
}

func (t *RowTable) clampOffset() {
	maxVisible := t.maxVisible()
	if maxVisible <= 0 {
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+maxVisible {
		t.offset = t.cursor - maxVisible + 1
	}
}

func (t *RowTable) maxVisible() int {
	h := t.height - BorderHeight - ScrollIndicatorLines - 1 // header row
	if t.filterActive {
		h--
	}
	return max(1, h)
}

// visible returns view indexes in display order, honoring the filter.
func (t *RowTable) visible() []int {
	if t.filteredIdx != nil {
		return t.filteredIdx
	}
	idx := make([]int, len(t.view))
	for i := range t.view {
		idx[i] = i
	}
	return idx
}

func (t *RowTable) applyFilter() {
	query := strings.TrimSpace(t.filterInput.Value())
	if !t.filterActive || query == "" || t.filterFn == nil {
		t.filteredIdx = nil
		return
	}
	t.filteredIdx = t.filterFn(query, t.view)
}

// View renders the table.
func (t *RowTable) View() string {
	innerWidth := max(1, t.width-BorderWidth)
	sentenceWidth := max(8, innerWidth-statusColWidth-abbrevColWidth-longFormColWidth-domainColWidth-8)

	var b strings.Builder

	if t.filterActive {
		b.WriteString(t.filterInput.View())
		b.WriteString("\n")
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %s",
		statusColWidth, "",
		abbrevColWidth, "ABBREV",
		longFormColWidth, "LONG FORM",
		domainColWidth, "DOMAIN",
		"SENTENCE")
	b.WriteString(styles.TableHeaderStyle.Render(truncate(header, innerWidth)))
	b.WriteString("\n")

	visible := t.visible()
	if len(visible) == 0 {
		b.WriteString(styles.DimStyle.Render("  no rows in this tab"))
		return styles.ActiveBorder.Width(innerWidth).Height(max(1, t.height-BorderHeight)).Render(b.String())
	}

	if t.offset > 0 {
		b.WriteString(styles.DimStyle.Render("↑ more"))
		b.WriteString("\n")
	}

	end := min(t.offset+t.maxVisible(), len(visible))
	for i := t.offset; i < end; i++ {
		row := t.view[visible[i]]

		status := styles.PendingDot
		if row.Completed {
			status = styles.DoneCheck
		}

		line := fmt.Sprintf("%s  %-*s %-*s %-*s %s",
			status,
			abbrevColWidth, clip(row.Abbreviation, abbrevColWidth),
			longFormColWidth, clip(row.LongForm, longFormColWidth),
			domainColWidth, clip(row.Domain, domainColWidth),
			row.ShortSentence(min(t.sentenceLen, sentenceWidth)))

		if i == t.cursor {
			b.WriteString(styles.SelectedItemStyle.Width(innerWidth).Render(truncate(line, innerWidth-2)))
		} else {
			b.WriteString(styles.NormalItemStyle.Width(innerWidth).Render(truncate(line, innerWidth-2)))
		}
		b.WriteString("\n")
	}

	if end < len(visible) {
		b.WriteString(styles.DimStyle.Render("↓ more"))
	}

	return styles.ActiveBorder.Width(innerWidth).Height(max(1, t.height-BorderHeight)).Render(b.String())
}

// clip truncates to width without padding.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
