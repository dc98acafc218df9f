package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abbrevlab/annotab/internal/domain"
	"github.com/abbrevlab/annotab/internal/service"
	"github.com/abbrevlab/annotab/internal/tui/components"
	"github.com/abbrevlab/annotab/internal/tui/styles"
)

// ApplicationState represents the current screen
type ApplicationState int

const (
	StatePicking ApplicationState = iota // bucket file list
	StateEditing                        // row table for the open dataset
	StateHelp
)

// modalAction identifies what an open modal will do on submit
type modalAction int

const (
	actionNone modalAction = iota
	actionEditLongForm
	actionUploadPath
	actionDeleteRow
	actionDeleteFile
)

// Footer takes a single line
const ChromeHeight = 1

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Svc *service.DatasetService

	// UI components
	FileColumn   *components.FileColumn
	Table        *components.RowTable
	InputModal   components.InputModal
	ConfirmModal components.ConfirmModal

	// The completion-status tab currently shown. Views are re-derived from
	// the authoritative store on every change, never cached here.
	ActiveTab domain.Tab

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Busy         bool // a storage operation is in flight
	SpinnerFrame int
	ExportDir    string

	// Pending modal context
	modalAction  modalAction
	pendingIndex int    // view index the modal acts on
	pendingFile  string // file name the modal acts on
}

// NewModel creates a new application model
func NewModel(svc *service.DatasetService, exportDir string, sentenceLen int) Model {
	return Model{
		State:        StatePicking,
		Svc:          svc,
		FileColumn:   components.NewFileColumn(),
		Table:        components.NewRowTable(service.FilterRowIndexes, sentenceLen),
		InputModal:   components.NewInputModal(),
		ConfirmModal: components.NewConfirmModal(),
		ActiveTab:    domain.TabNotCompleted,
		ExportDir:    exportDir,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	m.FileColumn.SetLoading(true)
	return tea.Batch(
		LoadFilesCmd(m.Svc),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		if m.Busy {
			m.FileColumn.SetSpinnerFrame(m.SpinnerFrame)
		}
		return m, TickCmd(100 * time.Millisecond)

	case FilesLoadedMsg:
		m.Busy = false
		m.FileColumn.SetFiles(msg.Files)
		return m, nil

	case DatasetOpenedMsg:
		m.Busy = false
		m.State = StateEditing
		m.ActiveTab = domain.TabNotCompleted
		m.Table.ClearFilter()
		m.refreshTable()
		m.updateLayout()
		if msg.FromDraft {
			m.StatusMsg = fmt.Sprintf("Restored unsaved draft of %s (%d rows)", msg.File, msg.Rows)
		} else {
			m.StatusMsg = fmt.Sprintf("Opened %s (%d rows)", msg.File, msg.Rows)
		}
		return m, ClearStatusCmd(3 * time.Second)

	case DatasetSavedMsg:
		m.Busy = false
		m.StatusMsg = "Saved as " + msg.Name
		return m, tea.Batch(LoadFilesCmd(m.Svc), ClearStatusCmd(3*time.Second))

	case DatasetExportedMsg:
		m.Busy = false
		m.StatusMsg = "Exported to " + msg.Path
		return m, ClearStatusCmd(3 * time.Second)

	case FileDeletedMsg:
		m.Busy = false
		if msg.WasActive {
			// The open dataset was reset by the service
			m.State = StatePicking
			m.Table.SetRows(nil)
		}
		m.StatusMsg = "Deleted " + msg.Name
		return m, tea.Batch(LoadFilesCmd(m.Svc), ClearStatusCmd(3*time.Second))

	case FileUploadedMsg:
		m.Busy = false
		m.StatusMsg = "Uploaded " + msg.Name
		return m, tea.Batch(LoadFilesCmd(m.Svc), ClearStatusCmd(3*time.Second))

	case ErrMsg:
		// A failed storage call aborts the operation; in-memory state is
		// left exactly as it was.
		m.Busy = false
		m.FileColumn.SetLoading(false)
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.State = m.helpReturnState()
		}
		return m, nil
	}

	// Modals own the keyboard while visible
	if m.ConfirmModal.IsVisible() {
		var answered, confirmed bool
		m.ConfirmModal, answered, confirmed = m.ConfirmModal.Update(msg)
		if answered && confirmed {
			return m.runConfirmedAction()
		}
		if answered {
			m.modalAction = actionNone
		}
		return m, nil
	}

	if m.InputModal.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			return m.runSubmittedInput()
		}
		return m, cmd
	}

	// Filter typing swallows everything except its own esc/enter
	if m.State == StatePicking && m.FileColumn.IsFilterTyping() {
		return m, m.FileColumn.Update(msg)
	}
	if m.State == StateEditing && m.Table.IsFilterTyping() {
		return m, m.Table.Update(msg)
	}

	switch m.State {
	case StatePicking:
		return m.handlePickingKeys(msg)
	case StateEditing:
		return m.handleEditingKeys(msg)
	}
	return m, nil
}

func (m Model) handlePickingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.State = StateHelp
		return m, nil

	case "/":
		m.FileColumn.ToggleFilter()
		return m, nil

	case "esc":
		m.FileColumn.ClearFilter()
		return m, nil

	case "r":
		if m.Busy {
			return m, nil
		}
		m.Busy = true
		m.FileColumn.SetLoading(true)
		return m, LoadFilesCmd(m.Svc)

	case "u":
		if m.Busy {
			return m, nil
		}
		m.modalAction = actionUploadPath
		m.InputModal.Show("Upload local CSV", "path to a .csv file", "")
		return m, nil

	case "x", "D":
		if m.Busy {
			return m, nil
		}
		if file := m.FileColumn.Selected(); file != nil {
			m.modalAction = actionDeleteFile
			m.pendingFile = file.Name
			m.ConfirmModal.Show("Delete "+file.Name+"?", "the blob is removed from the bucket")
		}
		return m, nil

	case "enter", "l", "right":
		if m.Busy {
			return m, nil
		}
		if file := m.FileColumn.Selected(); file != nil {
			m.Busy = true
			m.FileColumn.SetLoading(true)
			return m, OpenDatasetCmd(m.Svc, file.Name)
		}
		return m, nil
	}

	return m, m.FileColumn.Update(msg)
}

func (m Model) handleEditingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "?":
		m.State = StateHelp
		return m, nil

	case "q", "h", "left":
		// Back to the picker; the dataset stays open in memory
		m.State = StatePicking
		return m, nil

	case "esc":
		if m.Table.IsFiltering() {
			m.Table.ClearFilter()
			return m, nil
		}
		m.State = StatePicking
		return m, nil

	case "/":
		m.Table.ToggleFilter()
		return m, nil

	case "tab":
		m.ActiveTab = m.ActiveTab.Other()
		m.Table.ClearFilter()
		m.refreshTable()
		return m, nil

	case "1":
		m.ActiveTab = domain.TabNotCompleted
		m.refreshTable()
		return m, nil

	case "2":
		m.ActiveTab = domain.TabCompleted
		m.refreshTable()
		return m, nil

	case "e", "enter":
		if row := m.Table.Selected(); row != nil {
			m.modalAction = actionEditLongForm
			m.pendingIndex = m.Table.SelectedViewIndex()
			m.InputModal.Show("Long form for "+row.Abbreviation, row.ShortSentence(56), row.LongForm)
		}
		return m, nil

	case "d":
		// Cycle the domain label in place
		if row := m.Table.Selected(); row != nil {
			idx := m.Table.SelectedViewIndex()
			m.Svc.UpdateField(idx, m.ActiveTab, domain.FieldDomain, domain.NextDomainLabel(row.Domain))
			m.refreshTable()
		}
		return m, nil

	case " ", "c":
		// Toggle completion; the row moves to the other tab on refresh
		if idx := m.Table.SelectedViewIndex(); idx >= 0 {
			m.Svc.ToggleCompletion(idx, m.ActiveTab)
			m.refreshTable()
		}
		return m, nil

	case "x":
		if row := m.Table.Selected(); row != nil {
			m.modalAction = actionDeleteRow
			m.pendingIndex = m.Table.SelectedViewIndex()
			m.ConfirmModal.Show("Delete this row?", row.ShortSentence(40))
		}
		return m, nil

	case "s":
		if m.Busy {
			return m, nil
		}
		m.Busy = true
		return m, SaveDatasetCmd(m.Svc)

	case "o":
		if m.Busy {
			return m, nil
		}
		m.Busy = true
		return m, ExportDatasetCmd(m.Svc, m.ExportDir)
	}

	return m, m.Table.Update(msg)
}

// runConfirmedAction executes the action behind a confirmed modal
func (m Model) runConfirmedAction() (tea.Model, tea.Cmd) {
	action := m.modalAction
	m.modalAction = actionNone

	switch action {
	case actionDeleteRow:
		m.Svc.RemoveRow(m.pendingIndex, m.ActiveTab)
		m.refreshTable()
		return m, nil

	case actionDeleteFile:
		m.Busy = true
		return m, DeleteFileCmd(m.Svc, m.pendingFile)
	}
	return m, nil
}

// runSubmittedInput executes the action behind a submitted input modal
func (m Model) runSubmittedInput() (tea.Model, tea.Cmd) {
	action := m.modalAction
	value := strings.TrimSpace(m.InputModal.Value())
	m.InputModal.Hide()
	m.modalAction = actionNone

	switch action {
	case actionEditLongForm:
		m.Svc.UpdateField(m.pendingIndex, m.ActiveTab, domain.FieldLongForm, value)
		m.refreshTable()
		return m, nil

	case actionUploadPath:
		if value == "" {
			return m, nil
		}
		m.Busy = true
		return m, UploadLocalCmd(m.Svc, value)
	}
	return m, nil
}

// refreshTable re-derives the active tab's view from the authoritative
// store and hands it to the table.
func (m *Model) refreshTable() {
	m.Table.SetRows(m.Svc.Store().ViewForTab(m.ActiveTab))
}

func (m Model) helpReturnState() ApplicationState {
	if m.Svc.ActiveFile() != "" {
		return StateEditing
	}
	return StatePicking
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	contentHeight := m.Height - ChromeHeight
	m.FileColumn.SetSize(m.Width, contentHeight)
	m.Table.SetSize(m.Width, contentHeight-1) // tab bar line
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	var content string
	switch m.State {
	case StatePicking:
		content = m.FileColumn.View()
	case StateEditing:
		content = lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderTabBar(),
			m.Table.View(),
		)
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.renderFooter(),
	)

	if m.InputModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}
	if m.ConfirmModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.ConfirmModal.View())
	}

	return view
}

// renderTabBar renders the two completion tabs with live counts
func (m Model) renderTabBar() string {
	store := m.Svc.Store()
	notDone := len(store.ViewForTab(domain.TabNotCompleted))
	done := len(store.ViewForTab(domain.TabCompleted))

	labels := [2]string{
		fmt.Sprintf("%s (%d)", domain.TabNotCompleted, notDone),
		fmt.Sprintf("%s (%d)", domain.TabCompleted, done),
	}

	var parts []string
	for i, label := range labels {
		if domain.Tab(i) == m.ActiveTab {
			parts = append(parts, styles.ActiveTabStyle.Render(label))
		} else {
			parts = append(parts, styles.InactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderFooter renders a single-line footer with progress and status
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Busy:
		left = styles.AccentStyle.Render(
			styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)] + " working...")
	case m.StatusMsg != "" && m.StatusIsErr:
		left = styles.ErrorStyle.Render(m.StatusMsg)
	case m.StatusMsg != "":
		left = styles.SuccessStyle.Render(m.StatusMsg)
	default:
		left = styles.DimStyle.Render(m.keyHints())
	}

	var right string
	if file := m.Svc.ActiveFile(); file != "" {
		progress := m.Svc.Progress()
		right = styles.SubtitleStyle.Render(fmt.Sprintf("%s · %s", file, progress))
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) keyHints() string {
	switch m.State {
	case StatePicking:
		return "enter: open · u: upload · x: delete · r: refresh · /: filter · ?: help"
	case StateEditing:
		return "e: edit · d: domain · space: done · x: delete · tab: switch · s: save · o: export · ?: help"
	}
	return ""
}

// renderHelp renders the full-screen key reference
func (m Model) renderHelp() string {
	rows := [][2]string{
		{"Dataset list", ""},
		{"enter/l", "open the selected file"},
		{"u", "upload a local csv into the bucket"},
		{"x", "delete the selected file"},
		{"r", "refresh the listing"},
		{"", ""},
		{"Editor", ""},
		{"tab / 1 / 2", "switch completion tab"},
		{"e / enter", "edit long form"},
		{"d", "cycle domain label"},
		{"space / c", "toggle completed"},
		{"x", "delete row"},
		{"s", "save to bucket (name reflects progress)"},
		{"o", "export to local file"},
		{"/", "fuzzy filter"},
		{"q / esc", "back / quit"},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("annotab keys"))
	b.WriteString("\n\n")
	for _, row := range rows {
		if row[1] == "" {
			b.WriteString(styles.AccentStyle.Render(row[0]))
		} else {
			b.WriteString(fmt.Sprintf("  %s  %s",
				styles.SubtitleStyle.Width(14).Render(row[0]),
				styles.DimStyle.Render(row[1])))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("esc to close"))

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		b.String())
}
