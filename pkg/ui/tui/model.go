// Package tui is the interactive review screen for generated messages.
//
// The model starts in the generating phase and shows live progress while a
// batch runs. When the batch finishes it switches to a table of results that
// can be edited cell by cell, extended with new rows, trimmed, and exported.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/lipgloss"

	"igdm/pkg/table"
)

// Phase is the screen the model is showing
type Phase int

const (
	PhaseGenerating Phase = iota
	PhaseReview
	PhaseEditing
)

// SaveFunc exports the table and returns where it went
type SaveFunc func(*table.Table) (string, error)

// keyMap holds the review and editing bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	EditDM   key.Binding
	EditUser key.Binding
	EditBio  key.Binding
	EditPost key.Binding
	Add      key.Binding
	Delete   key.Binding
	Save     key.Binding
	Help     key.Binding
	Quit     key.Binding
	Commit   key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		EditDM:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter/e", "edit DM")),
		EditUser: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "edit username")),
		EditBio:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "edit bio")),
		EditPost: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "edit last post")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete row")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save CSV")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Commit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "apply")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.EditDM, k.Delete, k.Save, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.EditDM, k.EditUser, k.EditBio, k.EditPost},
		{k.Add, k.Delete},
		{k.Save, k.Help, k.Quit},
	}
}

// editKeys is the help shown while editing a cell
type editKeys struct{ keyMap }

func (k editKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Cancel}
}

func (k editKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Model is the review screen state
type Model struct {
	phase Phase

	// Generation progress
	spinner  spinner.Model
	progress progress.Model
	done     int
	total    int
	failed   int
	current  string

	// Review state
	rows       *table.Table
	grid       btable.Model
	editor     textarea.Model
	editColumn string
	editRow    int
	keys       keyMap
	help       help.Model
	save       SaveFunc

	savedPath   string
	dirty       bool
	confirmQuit bool
	status      string
	statusIsErr bool
	err         error
	width       int
	height      int
}

// NewModel creates a model waiting for total rows to be generated
func NewModel(total int, save SaveFunc) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	ed := textarea.New()
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetHeight(8)

	return Model{
		phase:    PhaseGenerating,
		spinner:  s,
		progress: p,
		total:    total,
		rows:     table.New(total),
		grid: btable.New(
			btable.WithColumns(columns(80)),
			btable.WithFocused(true),
			btable.WithHeight(10),
			btable.WithStyles(gridStyles()),
		),
		editor: ed,
		keys:   defaultKeyMap(),
		help:   help.New(),
		save:   save,
	}
}

// NewReviewModel opens an existing table directly in review
func NewReviewModel(t *table.Table, save SaveFunc) Model {
	m := NewModel(t.Len(), save)
	m.adopt(t, nil)
	return m
}

// Phase returns the screen being shown
func (m Model) Phase() Phase {
	return m.phase
}

// Table returns the current, possibly edited, results
func (m Model) Table() *table.Table {
	return m.rows
}

// SavedPath returns the path of the last successful export
func (m Model) SavedPath() string {
	return m.savedPath
}

// Err returns the batch error, if the run failed
func (m Model) Err() error {
	return m.err
}

// adopt switches to review with the finished table
func (m *Model) adopt(t *table.Table, err error) {
	if t != nil {
		m.rows = t
	}
	m.err = err
	m.phase = PhaseReview
	m.refreshGrid()
}

// refreshGrid rebuilds the grid rows from the table
func (m *Model) refreshGrid() {
	cols := m.grid.Columns()
	rows := make([]btable.Row, 0, m.rows.Len())
	for _, r := range m.rows.Rows() {
		cells := r.Values()
		for i := range cells {
			cells[i] = cellText(cells[i], cols[i].Width)
		}
		rows = append(rows, btable.Row(cells))
	}
	m.grid.SetRows(rows)

	if c := m.grid.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.grid.SetCursor(len(rows) - 1)
	}
}

// resize fits the grid and editor to the terminal
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.grid.SetColumns(columns(width - 4))
	if h := height - 12; h > 3 {
		m.grid.SetHeight(h)
	}
	m.editor.SetWidth(max(width-6, 20))
	m.progress.Width = max(min(width-10, 60), 10)
	m.help.Width = width
	m.refreshGrid()
}

// columns splits width across the four result columns
func columns(width int) []btable.Column {
	if width < 40 {
		width = 40
	}
	user := width / 8
	bio := width / 4
	post := width / 4
	dm := width - user - bio - post - 8
	return []btable.Column{
		{Title: table.ColumnUsername, Width: user},
		{Title: table.ColumnBio, Width: bio},
		{Title: table.ColumnLastPost, Width: post},
		{Title: table.ColumnGeneratedDM, Width: dm},
	}
}

// cellText flattens a value onto one line that fits width
func cellText(s string, width int) string {
	runes := []rune(flatten(s))
	if width <= 1 || len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width-1]) + "…"
}

func flatten(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
