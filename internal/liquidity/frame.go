// Package liquidity merges indicator time series into a dated frame
// and computes derived liquidity metrics from it.
package liquidity

import (
	"sort"
	"time"

	"github.com/macrolens/liquiditylens/pkg/models"
)

// Frame is a date-indexed join of indicator columns. Dates are the
// union of all added series; a column simply has no value on dates the
// underlying series does not cover. Missing values stay missing, they
// are never zero-filled or interpolated.
type Frame struct {
	columns []string
	values  map[string]map[int64]float64 // column -> unix day -> value
	days    map[int64]time.Time
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{
		values: make(map[string]map[int64]float64),
		days:   make(map[int64]time.Time),
	}
}

func dayKey(t time.Time) int64 {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func (f *Frame) column(name string) map[int64]float64 {
	col, ok := f.values[name]
	if !ok {
		col = make(map[int64]float64)
		f.values[name] = col
		f.columns = append(f.columns, name)
	}
	return col
}

func (f *Frame) set(name string, date time.Time, v float64) {
	key := dayKey(date)
	f.column(name)[key] = v
	if _, ok := f.days[key]; !ok {
		y, m, d := date.UTC().Date()
		f.days[key] = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

// Set stores a single value, creating the column if needed.
func (f *Frame) Set(name string, date time.Time, v float64) {
	f.set(name, date, v)
}

// AddSeries joins a time series into the frame as one column. An empty
// or nil series adds the column with no values so downstream output
// still shows it.
func (f *Frame) AddSeries(name string, ts *models.TimeSeries) {
	f.column(name)
	if ts == nil {
		return
	}
	for _, o := range ts.Observations {
		f.set(name, o.Date, o.Value)
	}
}

// AddCurve joins yield curve points as one column per maturity label.
func (f *Frame) AddCurve(points []models.YieldCurvePoint, labels []string) {
	for _, l := range labels {
		f.column(l)
	}
	for _, p := range points {
		f.set(p.Maturity, p.Date, p.Rate)
	}
}

// Columns returns column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Dates returns the union of all observation dates, ascending.
func (f *Frame) Dates() []time.Time {
	out := make([]time.Time, 0, len(f.days))
	for _, d := range f.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Value returns the column value on the given date if one exists.
func (f *Frame) Value(name string, date time.Time) (float64, bool) {
	col, ok := f.values[name]
	if !ok {
		return 0, false
	}
	v, ok := col[dayKey(date)]
	return v, ok
}

// Latest returns the most recent value in a column.
func (f *Frame) Latest(name string) (time.Time, float64, bool) {
	col, ok := f.values[name]
	if !ok || len(col) == 0 {
		return time.Time{}, 0, false
	}
	var bestKey int64
	first := true
	for k := range col {
		if first || k > bestKey {
			bestKey = k
			first = false
		}
	}
	return f.days[bestKey], col[bestKey], true
}

// Len returns the number of dates in the frame.
func (f *Frame) Len() int { return len(f.days) }

// IsEmpty reports whether the frame has no dates at all.
func (f *Frame) IsEmpty() bool { return len(f.days) == 0 }
