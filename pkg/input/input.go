// Package input turns user supplied username lists into ordered identifiers.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrMalformedCSV is wrapped by every CSV parse failure
var ErrMalformedCSV = errors.New("malformed CSV upload")

var separators = regexp.MustCompile(`[\n,]`)

// Source selects one of the two input channels. CSVPath wins when set.
type Source struct {
	Text    string
	CSVPath string
}

// Normalize trims whitespace and strips at most one leading "@"
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSpace(s)
}

// FromText splits pasted text on commas and line breaks
func FromText(text string) []string {
	var usernames []string
	for _, part := range separators.Split(text, -1) {
		if u := Normalize(part); u != "" {
			usernames = append(usernames, u)
		}
	}
	return usernames
}

// FromCSV reads identifiers from the first column of a CSV document whose
// first row is a header. Rows may have any number of columns.
func FromCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: empty header row", ErrMalformedCSV)
	}

	var usernames []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		if len(record) == 0 {
			continue
		}
		if u := Normalize(record[0]); u != "" {
			usernames = append(usernames, u)
		}
	}

	return usernames, nil
}

// FromFile opens path and parses it with FromCSV
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	return FromCSV(f)
}

// Collect reads identifiers from whichever channel the source selects
func Collect(src Source) ([]string, error) {
	if src.CSVPath != "" {
		return FromFile(src.CSVPath)
	}
	return FromText(src.Text), nil
}
