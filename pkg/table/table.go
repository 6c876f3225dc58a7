// Package table holds the rows produced by a batch run and converts them to
// and from the exported CSV layout.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names in export order
const (
	ColumnUsername    = "Username"
	ColumnBio         = "Bio"
	ColumnLastPost    = "Last Post"
	ColumnGeneratedDM = "Generated DM"
)

// Columns is the fixed export header
var Columns = []string{ColumnUsername, ColumnBio, ColumnLastPost, ColumnGeneratedDM}

var (
	ErrRowOutOfRange = errors.New("row index out of range")
	ErrUnknownColumn = errors.New("unknown column")
	ErrBadHeader     = errors.New("unexpected CSV header")
)

// Row is one generated result. Failed marks rows whose message could not be
// generated; it is not exported.
type Row struct {
	Username    string
	Bio         string
	LastPost    string
	GeneratedDM string
	Failed      bool
}

// Values returns the row cells in column order
func (r Row) Values() []string {
	return []string{r.Username, r.Bio, r.LastPost, r.GeneratedDM}
}

// Value returns the cell for column, or "" for an unknown column
func (r Row) Value(column string) string {
	switch column {
	case ColumnUsername:
		return r.Username
	case ColumnBio:
		return r.Bio
	case ColumnLastPost:
		return r.LastPost
	case ColumnGeneratedDM:
		return r.GeneratedDM
	}
	return ""
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines rewrites CR and CRLF line endings as LF, the form a
// CSV reader hands back for a quoted cell
func NormalizeNewlines(s string) string {
	return lineEndings.Replace(s)
}

func (r Row) normalized() Row {
	r.Username = NormalizeNewlines(r.Username)
	r.Bio = NormalizeNewlines(r.Bio)
	r.LastPost = NormalizeNewlines(r.LastPost)
	r.GeneratedDM = NormalizeNewlines(r.GeneratedDM)
	return r
}

// Handle formats a username the way the Username column shows it
func Handle(username string) string {
	return "@" + username
}

// Table is the ordered result of one run
type Table struct {
	rows []Row
}

// New creates an empty table with room for n rows
func New(n int) *Table {
	return &Table{rows: make([]Row, 0, n)}
}

// Append adds a row at the end
func (t *Table) Append(r Row) {
	t.rows = append(t.rows, r.normalized())
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Row returns the row at index i
func (t *Table) Row(i int) (Row, error) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	return t.rows[i], nil
}

// Set edits one cell. Editing the generated message clears the failed mark.
func (t *Table) Set(i int, column, value string) error {
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}

	row := &t.rows[i]
	value = NormalizeNewlines(value)
	switch column {
	case ColumnUsername:
		row.Username = value
	case ColumnBio:
		row.Bio = value
	case ColumnLastPost:
		row.LastPost = value
	case ColumnGeneratedDM:
		row.GeneratedDM = value
		row.Failed = false
	default:
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return nil
}

// Delete removes the row at index i
func (t *Table) Delete(i int) error {
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

// Failed counts rows whose message could not be generated
func (t *Table) Failed() int {
	n := 0
	for _, r := range t.rows {
		if r.Failed {
			n++
		}
	}
	return n
}

// WriteCSV writes the header and every row as UTF-8 CSV
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range t.rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// String renders the table as CSV text
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.WriteCSV(&sb)
	return sb.String()
}

// ReadCSV parses a document written by WriteCSV
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range Columns {
		if header[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i+1, header[i], name)
		}
	}

	t := New(0)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		t.Append(Row{
			Username:    record[0],
			Bio:         record[1],
			LastPost:    record[2],
			GeneratedDM: record[3],
		})
	}
	return t, nil
}
