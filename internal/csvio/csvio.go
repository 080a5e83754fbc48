package csvio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// File wraps one tabular input. Column names are canonical but column order
// is not, so cells are addressed by header name; every parse error names the
// file, column and row it came from.
type File struct {
	path   string
	header map[string]int
	rows   [][]string
}

// Open reads and indexes a CSV file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	return &File{path: path, header: header, rows: records[1:]}, nil
}

// Path returns the file the table was read from.
func (f *File) Path() string { return f.path }

// Len returns the number of data rows.
func (f *File) Len() int { return len(f.rows) }

// Columns returns the header names in file order.
func (f *File) Columns() []string {
	out := make([]string, len(f.header))
	for name, i := range f.header {
		out[i] = name
	}
	return out
}

// HasColumn reports whether the table carries the named column.
func (f *File) HasColumn(name string) bool {
	_, ok := f.header[name]
	return ok
}

// Cell returns the raw cell at the named column and row.
func (f *File) Cell(column string, row int) (string, error) {
	idx, ok := f.header[column]
	if !ok {
		return "", fmt.Errorf("%s: no column labelled %q", f.path, column)
	}
	if row < 0 || row >= len(f.rows) {
		return "", fmt.Errorf("%s: row %d out of range", f.path, row+1)
	}
	if idx >= len(f.rows[row]) {
		return "", nil
	}
	return strings.TrimSpace(f.rows[row][idx]), nil
}

// Float parses the cell as a number; "inf" parses to +Inf.
func (f *File) Float(column string, row int) (float64, error) {
	cell, err := f.Cell(column, row)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q on row %d of %q is not a number", f.path, cell, row+1, column)
	}
	return v, nil
}

// Bool parses the cell with the boolean lexicon: 1, 1.0, t, true, yes and y
// are true; 0, 0.0, f, false, no, n and the empty cell are false, all
// case-insensitively.
func (f *File) Bool(column string, row int) (bool, error) {
	cell, err := f.Cell(column, row)
	if err != nil {
		return false, err
	}
	v, err := ParseBool(cell)
	if err != nil {
		return false, fmt.Errorf("%s: %q on row %d of %q is not a boolean", f.path, cell, row+1, column)
	}
	return v, nil
}

// Time parses the cell as a timestamp in minutes: either a plain number of
// minutes from zero, or the pattern YYYY?MM?DD?HH?MM?SS with any single-char
// separators.
func (f *File) Time(column string, row int) (float64, error) {
	cell, err := f.Cell(column, row)
	if err != nil {
		return 0, err
	}
	v, err := ParseTime(cell)
	if err != nil {
		return 0, fmt.Errorf("%s: %q on row %d of %q is not a timestamp", f.path, cell, row+1, column)
	}
	return v, nil
}

var truthy = map[string]bool{"1": true, "1.0": true, "t": true, "true": true, "yes": true, "y": true}
var falsy = map[string]bool{"0": true, "0.0": true, "f": true, "false": true, "no": true, "n": true, "": true}

// ParseBool applies the input boolean lexicon.
func ParseBool(s string) (bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if truthy[s] {
		return true, nil
	}
	if falsy[s] {
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// timeEpoch anchors pattern timestamps; minute zero is midnight on the first
// day of year zero.
var timeEpoch = time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC)

// ParseTime converts a timestamp to minutes. Plain numbers are minutes from
// zero already; the 19-character pattern YYYY?MM?DD?HH?MM?SS (any single-char
// separators) converts through the calendar.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) {
		return v, nil
	}
	if len(s) != 19 {
		return 0, fmt.Errorf("not a timestamp: %q", s)
	}
	var parts [6]int
	offsets := [6]int{0, 5, 8, 11, 14, 17}
	widths := [6]int{4, 2, 2, 2, 2, 2}
	for i := range parts {
		v, err := strconv.Atoi(s[offsets[i] : offsets[i]+widths[i]])
		if err != nil {
			return 0, fmt.Errorf("not a timestamp: %q", s)
		}
		parts[i] = v
	}
	t := time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC)
	return float64(t.Unix()-timeEpoch.Unix()) / 60, nil
}
