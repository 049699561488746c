package models

import (
	"sort"
	"time"
)

// YieldCurvePoint is one maturity's observed yield on a given date.
type YieldCurvePoint struct {
	Date     time.Time `json:"date"`
	Maturity string    `json:"maturity"` // e.g., "3M", "10Y"
	Years    float64   `json:"years"`    // maturity in years, e.g., 0.25, 10
	Rate     float64   `json:"rate"`     // yield in %
}

// Maturity pairs a curve maturity label with its length in years.
type Maturity struct {
	Label string  `json:"label"`
	Years float64 `json:"years"`
}

// StandardMaturities lists the Treasury constant-maturity points that
// make up the yield curve, shortest first.
var StandardMaturities = []Maturity{
	{"1M", 1.0 / 12},
	{"3M", 0.25},
	{"6M", 0.5},
	{"1Y", 1},
	{"2Y", 2},
	{"5Y", 5},
	{"10Y", 10},
	{"30Y", 30},
}

// MaturityLabels returns the standard maturity labels shortest first.
// The CSV column order and curve completeness checks rely on this
// ordering.
func MaturityLabels() []string {
	labels := make([]string, len(StandardMaturities))
	for i, m := range StandardMaturities {
		labels[i] = m.Label
	}
	return labels
}

// YearsFor returns the length in years of a standard maturity label.
func YearsFor(label string) (float64, bool) {
	for _, m := range StandardMaturities {
		if m.Label == label {
			return m.Years, true
		}
	}
	return 0, false
}

// CurveSnapshot is the set of maturities observed on a single date,
// sorted short to long.
type CurveSnapshot struct {
	Date   time.Time         `json:"date"`
	Points []YieldCurvePoint `json:"points"`
}

// IsComplete reports whether the snapshot covers every maturity in want.
func (cs CurveSnapshot) IsComplete(want []string) bool {
	have := make(map[string]bool, len(cs.Points))
	for _, p := range cs.Points {
		have[p.Maturity] = true
	}
	for _, m := range want {
		if !have[m] {
			return false
		}
	}
	return true
}

// Rate returns the yield for a maturity label, or false if absent.
func (cs CurveSnapshot) Rate(maturity string) (float64, bool) {
	for _, p := range cs.Points {
		if p.Maturity == maturity {
			return p.Rate, true
		}
	}
	return 0, false
}

// SnapshotsByDate groups curve points into per-date snapshots, sorted
// ascending by date, each snapshot's points sorted short to long.
func SnapshotsByDate(points []YieldCurvePoint) []CurveSnapshot {
	byDay := make(map[time.Time][]YieldCurvePoint)
	for _, p := range points {
		d := dayStart(p.Date)
		byDay[d] = append(byDay[d], p)
	}

	snaps := make([]CurveSnapshot, 0, len(byDay))
	for d, pts := range byDay {
		sort.Slice(pts, func(i, j int) bool { return pts[i].Years < pts[j].Years })
		snaps = append(snaps, CurveSnapshot{Date: d, Points: pts})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date.Before(snaps[j].Date) })
	return snaps
}

// ReleaseEvent is an upcoming or recent data release announcement.
type ReleaseEvent struct {
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Published time.Time `json:"published"`
	Source    string    `json:"source,omitempty"`
}
