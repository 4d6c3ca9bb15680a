package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Frame is a table of raw CSV cells addressed by header name.
type Frame struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewFrame builds a frame over header and rows. Short rows are padded with
// empty (missing) cells.
func NewFrame(header []string, rows [][]string) (*Frame, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+1, len(header), len(row))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return &Frame{Header: header, Rows: rows, index: index}, nil
}

// ReadCSV loads a comma-separated file with a header row.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	frame, err := ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return frame, nil
}

// ParseCSV reads a header row followed by data rows. A leading UTF-8 or
// UTF-16 byte order mark is consumed.
func ParseCSV(r io.Reader) (*Frame, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv: no header row")
	}
	if err != nil {
		return nil, err
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return NewFrame(header, records)
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Has reports whether the frame carries the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Select returns a new frame holding only names, in that order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	positions := make([]int, len(names))
	for i, name := range names {
		idx, ok := f.index[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		positions[i] = idx
	}

	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		selected := make([]string, len(positions))
		for j, idx := range positions {
			selected[j] = row[idx]
		}
		rows[i] = selected
	}
	return NewFrame(append([]string(nil), names...), rows)
}
