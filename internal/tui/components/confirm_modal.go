package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abbrevlab/annotab/internal/tui/styles"
)

// ConfirmModal asks a yes/no question before a destructive action.
type ConfirmModal struct {
	visible bool
	title   string
	detail  string
}

// NewConfirmModal creates a hidden confirm modal.
func NewConfirmModal() ConfirmModal {
	return ConfirmModal{}
}

// Show displays the modal with a question and optional detail line.
func (m *ConfirmModal) Show(title, detail string) {
	m.visible = true
	m.title = title
	m.detail = detail
}

// Hide dismisses the modal.
func (m *ConfirmModal) Hide() {
	m.visible = false
}

// IsVisible returns whether the modal is shown.
func (m ConfirmModal) IsVisible() bool {
	return m.visible
}

// Update handles keys, returning (modal, answered, confirmed).
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, bool, bool) {
	if !m.visible {
		return m, false, false
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "y", "Y", "enter":
			m.Hide()
			return m, true, true
		case "n", "N", "esc":
			m.Hide()
			return m, true, false
		}
	}
	return m, false, false
}

// View renders the confirm modal.
func (m ConfirmModal) View() string {
	if !m.visible {
		return ""
	}

	const modalWidth = 44

	lines := []string{
		styles.ModalTitleStyle.Width(modalWidth).Render(m.title),
	}
	if m.detail != "" {
		lines = append(lines, styles.DimStyle.Width(modalWidth).Render(m.detail))
	}
	lines = append(lines,
		lipgloss.NewStyle().Width(modalWidth).Render(""),
		styles.WarnStyle.Width(modalWidth).Render("y: confirm · n: cancel"),
	)

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
