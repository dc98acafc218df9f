package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/abbrevlab/annotab/internal/domain"
	"github.com/abbrevlab/annotab/internal/tui/styles"
)

// Layout constants shared by the column components
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// FileColumn is a scrollable, fuzzy-filterable list of bucket files.
type FileColumn struct {
	files []domain.ObjectInfo

	// Selection
	cursor int
	offset int

	// Dimensions
	width  int
	height int

	// Loading state
	loading      bool
	spinnerFrame int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filteredIdx  []int // indices into files
}

// NewFileColumn creates an empty file column.
func NewFileColumn() *FileColumn {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &FileColumn{filterInput: ti}
}

// SetFiles replaces the listed files and clamps the cursor.
func (c *FileColumn) SetFiles(files []domain.ObjectInfo) {
	c.files = files
	c.loading = false
	c.applyFilter()
	if c.cursor >= len(c.visible()) {
		c.cursor = max(0, len(c.visible())-1)
	}
}

// SetLoading toggles the loading spinner.
func (c *FileColumn) SetLoading(loading bool) {
	c.loading = loading
}

// SetSpinnerFrame advances the loading animation.
func (c *FileColumn) SetSpinnerFrame(frame int) {
	c.spinnerFrame = frame
}

// SetSize sets the rendered dimensions.
func (c *FileColumn) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Selected returns the file under the cursor, or nil.
func (c *FileColumn) Selected() *domain.ObjectInfo {
	visible := c.visible()
	if c.cursor < 0 || c.cursor >= len(visible) {
		return nil
	}
	info := c.files[visible[c.cursor]]
	return &info
}

// IsFilterTyping reports whether the filter input currently owns the
// keyboard.
func (c *FileColumn) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// ToggleFilter activates the filter input.
func (c *FileColumn) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
}

// ClearFilter drops the active filter.
func (c *FileColumn) ClearFilter() {
	c.filterActive = false
	c.filterInput.Blur()
	c.filterInput.SetValue("")
	c.applyFilter()
	c.cursor = 0
	c.offset = 0
}

// Update handles keyboard input for navigation and filtering.
func (c *FileColumn) Update(msg tea.Msg) tea.Cmd {
	if c.IsFilterTyping() {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				c.ClearFilter()
				return nil
			case "enter":
				// Accept filter, blur input to allow navigation
				c.filterInput.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		c.cursor = 0
		c.offset = 0
		return cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "j", "down":
			c.moveCursor(1)
		case "k", "up":
			c.moveCursor(-1)
		case "g", "home":
			c.cursor = 0
			c.offset = 0
		case "G", "end":
			c.cursor = max(0, len(c.visible())-1)
			c.clampOffset()
		}
	}
	return nil
}

func (c *FileColumn) moveCursor(delta int) {
	visible := c.visible()
	c.cursor += delta
	if c.cursor < 0 {
		c.cursor = 0
	}
	if c.cursor >= len(visible) {
		c.cursor = max(0, len(visible)-1)
	}
	c.clampOffset()
}

func (c *FileColumn) clampOffset() {
	maxVisible := c.maxVisible()
	if maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+maxVisible {
		c.offset = c.cursor - maxVisible + 1
	}
}

func (c *FileColumn) maxVisible() int {
	h := c.height - BorderHeight - ScrollIndicatorLines - 1 // header line
	if c.filterActive {
		h--
	}
	return max(1, h)
}

// visible returns indices into files honoring the active filter.
func (c *FileColumn) visible() []int {
	if c.filteredIdx != nil {
		return c.filteredIdx
	}
	idx := make([]int, len(c.files))
	for i := range c.files {
		idx[i] = i
	}
	return idx
}

func (c *FileColumn) applyFilter() {
	query := strings.TrimSpace(c.filterInput.Value())
	if !c.filterActive || query == "" {
		c.filteredIdx = nil
		return
	}
	names := make([]string, len(c.files))
	for i, f := range c.files {
		names[i] = f.Name
	}
	matches := fuzzy.Find(query, names)
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	c.filteredIdx = idx
}

// View renders the column.
func (c *FileColumn) View() string {
	innerWidth := max(1, c.width-BorderWidth)

	var b strings.Builder
	title := "Datasets"
	if c.loading {
		title = styles.SpinnerFrames[c.spinnerFrame%len(styles.SpinnerFrames)] + " " + title
	}
	b.WriteString(styles.TitleStyle.Render(truncate(title, innerWidth)))
	b.WriteString("\n")

	if c.filterActive {
		b.WriteString(c.filterInput.View())
		b.WriteString("\n")
	}

	visible := c.visible()
	maxVisible := c.maxVisible()

	if len(visible) == 0 {
		if c.loading {
			b.WriteString(styles.DimStyle.Render("loading..."))
		} else {
			b.WriteString(styles.DimStyle.Render("no csv files in bucket"))
		}
	}

	if c.offset > 0 {
		b.WriteString(styles.DimStyle.Render("↑ more"))
		b.WriteString("\n")
	}

	end := min(c.offset+maxVisible, len(visible))
	for i := c.offset; i < end; i++ {
		info := c.files[visible[i]]
		line := info.Name
		if size := info.FormattedSize(); size != "" {
			line = fmt.Sprintf("%s  %s", info.Name, styles.DimStyle.Render(size))
		}
		line = truncate(line, innerWidth-2)
		if i == c.cursor {
			b.WriteString(styles.SelectedItemStyle.Width(innerWidth).Render(line))
		} else {
			b.WriteString(styles.NormalItemStyle.Width(innerWidth).Render(line))
		}
		b.WriteString("\n")
	}

	if end < len(visible) {
		b.WriteString(styles.DimStyle.Render("↓ more"))
	}

	return styles.ActiveBorder.Width(innerWidth).Height(max(1, c.height-BorderHeight)).Render(b.String())
}

// truncate cuts s to at most width display cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
