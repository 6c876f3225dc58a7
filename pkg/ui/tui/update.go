package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"igdm/pkg/table"
)

// RowMsg is sent when the batch finishes one row
type RowMsg struct {
	Index int
	Total int
	Row   table.Row
}

// DoneMsg is sent when the batch run returns
type DoneMsg struct {
	Table *table.Table
	Err   error
}

// savedMsg carries the result of a save command
type savedMsg struct {
	path string
	err  error
}

// Init starts the spinner while generating
func (m Model) Init() tea.Cmd {
	if m.phase == PhaseGenerating {
		return m.spinner.Tick
	}
	return nil
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.phase != PhaseGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RowMsg:
		m.done = msg.Index + 1
		m.total = msg.Total
		m.current = msg.Row.Username
		if msg.Row.Failed {
			m.failed++
		}
		m.rows.Append(msg.Row)
		return m, nil

	case DoneMsg:
		m.adopt(msg.Table, msg.Err)
		if msg.Err != nil {
			m.setStatus(msg.Err.Error(), true)
		} else {
			failed := m.rows.Failed()
			m.setStatus(fmt.Sprintf("Generated %d rows, %d failed", m.rows.Len(), failed), failed > 0)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus("Save failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.savedPath = msg.path
		m.dirty = false
		m.setStatus("Saved to "+msg.path, false)
		return m, nil
	}

	if m.phase == PhaseEditing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress routes keyboard input by phase
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case PhaseGenerating:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	case PhaseEditing:
		return m.handleEditKey(msg)
	}
	return m.handleReviewKey(msg)
}

func (m *Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.dirty && !m.confirmQuit {
			m.confirmQuit = true
			m.setStatus("Unsaved changes, press q again to quit", true)
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.EditDM):
		return m, m.startEdit(table.ColumnGeneratedDM)

	case key.Matches(msg, m.keys.EditUser):
		return m, m.startEdit(table.ColumnUsername)

	case key.Matches(msg, m.keys.EditBio):
		return m, m.startEdit(table.ColumnBio)

	case key.Matches(msg, m.keys.EditPost):
		return m, m.startEdit(table.ColumnLastPost)

	case key.Matches(msg, m.keys.Add):
		m.rows.Append(table.Row{Username: "@"})
		m.dirty = true
		m.refreshGrid()
		m.grid.SetCursor(m.rows.Len() - 1)
		return m, m.startEdit(table.ColumnUsername)

	case key.Matches(msg, m.keys.Delete):
		idx := m.grid.Cursor()
		row, err := m.rows.Row(idx)
		if err != nil {
			m.setStatus("No row selected", true)
			return m, nil
		}
		_ = m.rows.Delete(idx)
		m.dirty = true
		m.refreshGrid()
		m.setStatus("Deleted "+row.Username, false)
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if m.save == nil {
			m.setStatus("Saving is not configured", true)
			return m, nil
		}
		m.setStatus("Saving...", false)
		return m, m.saveCmd()
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEdit()
		m.setStatus("Edit cancelled", false)
		return m, nil

	case key.Matches(msg, m.keys.Commit):
		if err := m.rows.Set(m.editRow, m.editColumn, m.editor.Value()); err != nil {
			m.stopEdit()
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.dirty = true
		m.stopEdit()
		m.refreshGrid()
		m.setStatus("Updated "+m.editColumn, false)
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// startEdit opens the editor on the selected row
func (m *Model) startEdit(column string) tea.Cmd {
	idx := m.grid.Cursor()
	row, err := m.rows.Row(idx)
	if err != nil {
		m.setStatus("No row selected", true)
		return nil
	}

	m.editRow = idx
	m.editColumn = column
	m.editor.SetValue(row.Value(column))
	m.phase = PhaseEditing
	m.grid.Blur()
	return m.editor.Focus()
}

func (m *Model) stopEdit() {
	m.editor.Blur()
	m.phase = PhaseReview
	m.grid.Focus()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
}

// saveCmd exports the current table off the update loop
func (m *Model) saveCmd() tea.Cmd {
	save := m.save
	rows := m.rows
	return func() tea.Msg {
		path, err := save(rows)
		return savedMsg{path: path, err: err}
	}
}
