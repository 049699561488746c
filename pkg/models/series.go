package models

import (
	"sort"
	"time"
)

// Indicator names a macroeconomic or market time series tracked by the tool.
type Indicator string

const (
	IndicatorFedFundsRate    Indicator = "Fed_Funds_Rate"
	IndicatorTreasuryBill3M  Indicator = "TBill_3M"
	IndicatorFundingSpread   Indicator = "Funding_Spread"
	IndicatorReserveBalances Indicator = "Reserve_Balances"
	IndicatorYieldCurve      Indicator = "Yield_Curve"
)

// Observation is a single dated value of an indicator.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// TimeSeries is an ordered sequence of observations for one indicator,
// ascending by date with no duplicate dates. It is immutable once
// returned by a fetcher.
type TimeSeries struct {
	Indicator    Indicator     `json:"indicator"`
	Unit         string        `json:"unit,omitempty"` // e.g., "%", "$B", "bps"
	Observations []Observation `json:"observations"`
}

// NewTimeSeries builds a TimeSeries from observations, sorting by date
// and dropping duplicate dates (last one wins, matching source order).
func NewTimeSeries(ind Indicator, unit string, obs []Observation) TimeSeries {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	deduped := sorted[:0]
	for _, o := range sorted {
		if n := len(deduped); n > 0 && sameDay(deduped[n-1].Date, o.Date) {
			deduped[n-1] = o
			continue
		}
		deduped = append(deduped, o)
	}

	return TimeSeries{Indicator: ind, Unit: unit, Observations: deduped}
}

// Len returns the number of observations.
func (ts TimeSeries) Len() int { return len(ts.Observations) }

// IsEmpty reports whether the series has no observations.
func (ts TimeSeries) IsEmpty() bool { return len(ts.Observations) == 0 }

// Latest returns the most recent observation, or false when empty.
func (ts TimeSeries) Latest() (Observation, bool) {
	if len(ts.Observations) == 0 {
		return Observation{}, false
	}
	return ts.Observations[len(ts.Observations)-1], true
}

// At returns the value observed on the given date, or false when the
// series has no observation for that day.
func (ts TimeSeries) At(date time.Time) (float64, bool) {
	// Observations are sorted; binary search by day.
	i := sort.Search(len(ts.Observations), func(i int) bool {
		o := ts.Observations[i]
		return !o.Date.Before(dayStart(date)) || sameDay(o.Date, date)
	})
	if i < len(ts.Observations) && sameDay(ts.Observations[i].Date, date) {
		return ts.Observations[i].Value, true
	}
	return 0, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
