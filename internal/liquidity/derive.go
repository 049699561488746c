package liquidity

import (
	"sort"
	"time"

	"github.com/macrolens/liquiditylens/pkg/models"
)

// AddSpread derives name = minuend - subtrahend for every frame date
// where both operands have a value. Dates covered by only one operand
// get no spread value; there is no interpolation, so two series with
// disjoint dates produce an entirely empty spread column. Every
// derived date already exists in the frame since it comes from the
// operand columns.
func (f *Frame) AddSpread(name, minuend, subtrahend string) {
	f.column(name)
	for key := range f.days {
		a, okA := f.values[minuend][key]
		b, okB := f.values[subtrahend][key]
		if okA && okB {
			f.values[name][key] = a - b
		}
	}
}

// CurveStats summarizes one yield curve snapshot. Slope is the
// longest-maturity yield minus the shortest; negative means inverted.
type CurveStats struct {
	Date  time.Time `json:"date"`
	Min   float64   `json:"min"`
	Max   float64   `json:"max"`
	Slope float64   `json:"slope"`
}

// LatestCurveStats computes curve statistics over the most recent
// snapshot that has every wanted maturity. Partial snapshots are
// skipped rather than summarized. Returns false when no complete
// snapshot exists.
func LatestCurveStats(points []models.YieldCurvePoint, want []string) (CurveStats, *models.CurveSnapshot, bool) {
	snaps := models.SnapshotsByDate(points)
	for i := len(snaps) - 1; i >= 0; i-- {
		snap := snaps[i]
		if !snap.IsComplete(want) {
			continue
		}
		stats := statsFor(snap)
		return stats, &snap, true
	}
	return CurveStats{}, nil, false
}

func statsFor(snap models.CurveSnapshot) CurveStats {
	pts := make([]models.YieldCurvePoint, len(snap.Points))
	copy(pts, snap.Points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Years < pts[j].Years })

	stats := CurveStats{
		Date: snap.Date,
		Min:  pts[0].Rate,
		Max:  pts[0].Rate,
	}
	for _, p := range pts {
		if p.Rate < stats.Min {
			stats.Min = p.Rate
		}
		if p.Rate > stats.Max {
			stats.Max = p.Rate
		}
	}
	stats.Slope = pts[len(pts)-1].Rate - pts[0].Rate
	return stats
}

// Inverted reports whether the curve slopes downward end to end.
func (s CurveStats) Inverted() bool { return s.Slope < 0 }
