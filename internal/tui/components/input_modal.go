package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abbrevlab/annotab/internal/tui/styles"
)

// InputModal is a single-line text input modal, used for editing a row's
// long form and for entering local file paths.
type InputModal struct {
	visible bool
	title   string
	context string // dimmed line under the title (e.g. the sentence being annotated)
	input   textinput.Model
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 56
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return InputModal{
		input: ti,
	}
}

// Show displays the modal pre-filled with an initial value. context is an
// optional dimmed line rendered under the title.
func (m *InputModal) Show(title, context, initial string) {
	m.visible = true
	m.title = title
	m.context = context
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Value returns the current input value
func (m InputModal) Value() string {
	return m.input.Value()
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 60

	lines := []string{
		styles.ModalTitleStyle.Width(modalWidth).Render(m.title),
	}
	if m.context != "" {
		lines = append(lines, styles.DimStyle.Width(modalWidth).Render(m.context))
	}
	lines = append(lines,
		lipgloss.NewStyle().Width(modalWidth).Render(""),
		lipgloss.NewStyle().Width(modalWidth).Render(m.input.View()),
		styles.DimStyle.Width(modalWidth).Render("enter: save · esc: cancel"),
	)

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
