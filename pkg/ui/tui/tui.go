package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"igdm/pkg/table"
)

// TUI runs the review screen as a bubbletea program
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI that shows progress for total rows, then the review
func NewTUI(total int, save SaveFunc, opts ...tea.ProgramOption) *TUI {
	model := NewModel(total, save)
	return newTUI(&model, opts)
}

// NewReviewTUI opens an existing table for review
func NewReviewTUI(t *table.Table, save SaveFunc, opts ...tea.ProgramOption) *TUI {
	model := NewReviewModel(t, save)
	return newTUI(&model, opts)
}

func newTUI(model *Model, opts []tea.ProgramOption) *TUI {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Run blocks until the user quits and returns the final model
func (t *TUI) Run() (Model, error) {
	final, err := t.program.Run()
	if m, ok := final.(*Model); ok && m != nil {
		return *m, err
	}
	return *t.model, err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Observe forwards a finished row. Its signature matches batch.Observer.
func (t *TUI) Observe(index, total int, row table.Row) {
	t.Send(RowMsg{Index: index, Total: total, Row: row})
}

// Finish hands the batch result to the review screen
func (t *TUI) Finish(tbl *table.Table, err error) {
	t.Send(DoneMsg{Table: tbl, Err: err})
}
