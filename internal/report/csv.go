package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/macrolens/liquiditylens/internal/liquidity"
)

// WriteError wraps a failure to write an output artifact. Unlike a
// fetch gap, a write failure aborts the run.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }

// WriteCSV writes the frame to path, one row per date ascending, with
// a leading date column followed by the frame's columns in order.
// Missing values become empty cells. An existing file is overwritten.
func WriteCSV(f *liquidity.Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	defer file.Close()

	w := csv.NewWriter(file)

	cols := f.Columns()
	header := append([]string{"date"}, cols...)
	if err := w.Write(header); err != nil {
		return &WriteError{Path: path, Cause: err}
	}

	for _, date := range f.Dates() {
		row := make([]string, 0, len(header))
		row = append(row, formatDate(date))
		for _, col := range cols {
			if v, ok := f.Value(col, date); ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return &WriteError{Path: path, Cause: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return &WriteError{Path: path, Cause: err}
	}
	return nil
}

// ReadCSV loads a frame previously written by WriteCSV. Empty cells
// stay missing, so a write/read cycle reproduces the same date to
// value mapping.
func ReadCSV(path string) (*liquidity.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse %s: empty file", path)
	}

	header := records[0]
	if len(header) < 1 || header[0] != "date" {
		return nil, fmt.Errorf("parse %s: first column must be date, got %q", path, header)
	}

	f := liquidity.NewFrame()
	// Register columns up front to preserve order even if some are
	// entirely empty.
	for _, col := range header[1:] {
		f.AddSeries(col, nil)
	}

	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("parse %s: row %d has %d fields, want %d", path, i+2, len(rec), len(header))
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("parse %s: row %d: %w", path, i+2, err)
		}
		for j, cell := range rec[1:] {
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s: row %d column %s: %w", path, i+2, header[j+1], err)
			}
			f.Set(header[j+1], date, v)
		}
	}
	return f, nil
}
