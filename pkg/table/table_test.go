package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := New(3)
	t.Append(Row{Username: "@alice", Bio: "Sample bio from alice", LastPost: "Latest post caption by alice", GeneratedDM: "Hey Alice,\nloved the post!"})
	t.Append(Row{Username: "@bob", Bio: "Bio with, comma", LastPost: `Quote "this"`, GeneratedDM: "[Error generating message: quota]", Failed: true})
	t.Append(Row{Username: "@carol", Bio: "Émojis 🌱 ok", LastPost: "", GeneratedDM: "Hi Carol"})
	return t
}

func TestWriteCSVHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(0).WriteCSV(&buf))
	assert.Equal(t, "Username,Bio,Last Post,Generated DM\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	original := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, original.WriteCSV(&buf))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, original.Len(), parsed.Len())

	for i, row := range original.Rows() {
		got, err := parsed.Row(i)
		require.NoError(t, err)
		assert.Equal(t, row.Values(), got.Values())
	}
}

func TestRoundTripCarriageReturns(t *testing.T) {
	original := New(2)
	original.Append(Row{Username: "@alice", Bio: "line one\r\nline two", GeneratedDM: "Hi Alice!\r\n\r\nLove your work."})
	original.Append(Row{Username: "@bob", LastPost: "old\rmac", GeneratedDM: "Hey\r\r\nBob"})
	require.NoError(t, original.Set(1, ColumnGeneratedDM, "Hey Bob,\r\nnice shot"))

	first, err := original.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Hi Alice!\n\nLove your work.", first.GeneratedDM)

	var buf bytes.Buffer
	require.NoError(t, original.WriteCSV(&buf))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, original.Len(), parsed.Len())
	for i, row := range original.Rows() {
		got, err := parsed.Row(i)
		require.NoError(t, err)
		assert.Equal(t, row.Values(), got.Values())
	}
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n\nd", NormalizeNewlines("a\r\nb\rc\r\r\nd"))
	assert.Equal(t, "plain", NormalizeNewlines("plain"))
}

func TestReadCSVRejectsForeignHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("User,Bio,Last Post,Generated DM\n"))
	assert.ErrorIs(t, err, ErrBadHeader)

	_, err = ReadCSV(strings.NewReader("Username,Bio\n"))
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	tbl := sampleTable()

	require.NoError(t, tbl.Set(1, ColumnGeneratedDM, "Hand-written DM"))
	row, _ := tbl.Row(1)
	assert.Equal(t, "Hand-written DM", row.GeneratedDM)
	assert.False(t, row.Failed)
	assert.Equal(t, 0, tbl.Failed())

	require.NoError(t, tbl.Set(0, ColumnBio, "new bio"))
	row, _ = tbl.Row(0)
	assert.Equal(t, "new bio", row.Bio)

	assert.ErrorIs(t, tbl.Set(5, ColumnBio, "x"), ErrRowOutOfRange)
	assert.ErrorIs(t, tbl.Set(0, "Followers", "x"), ErrUnknownColumn)
}

func TestDelete(t *testing.T) {
	tbl := sampleTable()

	require.NoError(t, tbl.Delete(1))
	assert.Equal(t, 2, tbl.Len())
	row, _ := tbl.Row(1)
	assert.Equal(t, "@carol", row.Username)

	assert.ErrorIs(t, tbl.Delete(-1), ErrRowOutOfRange)
}

func TestRowsReturnsCopy(t *testing.T) {
	tbl := sampleTable()
	rows := tbl.Rows()
	rows[0].Username = "@mallory"

	row, _ := tbl.Row(0)
	assert.Equal(t, "@alice", row.Username)
}

func TestHandle(t *testing.T) {
	assert.Equal(t, "@alice", Handle("alice"))
}

func TestRowValue(t *testing.T) {
	row := Row{Username: "@alice", Bio: "b", LastPost: "p", GeneratedDM: "dm"}
	for i, column := range Columns {
		assert.Equal(t, row.Values()[i], row.Value(column))
	}
	assert.Empty(t, row.Value("Followers"))
}
