package liquidity

import (
	"math"
	"testing"

	"github.com/macrolens/liquiditylens/pkg/models"
)

func TestSpreadDefinedOnlyWhereBothOperandsExist(t *testing.T) {
	f := NewFrame()
	f.AddSeries("policy", series("policy",
		models.Observation{Date: day(2024, 1, 2), Value: 5.33},
		models.Observation{Date: day(2024, 1, 3), Value: 5.33},
	))
	f.AddSeries("bill", series("bill",
		models.Observation{Date: day(2024, 1, 3), Value: 5.40},
		models.Observation{Date: day(2024, 1, 4), Value: 5.38},
	))

	f.AddSpread("spread", "policy", "bill")

	// Only Jan 3 has both operands.
	if _, ok := f.Value("spread", day(2024, 1, 2)); ok {
		t.Error("spread should be undefined on Jan 2")
	}
	if _, ok := f.Value("spread", day(2024, 1, 4)); ok {
		t.Error("spread should be undefined on Jan 4")
	}
	v, ok := f.Value("spread", day(2024, 1, 3))
	if !ok || math.Abs(v-(-0.07)) > 1e-9 {
		t.Errorf("spread on Jan 3 = %v,%v, want -0.07", v, ok)
	}
}

func TestSpreadDisjointDatesIsEmpty(t *testing.T) {
	f := NewFrame()
	f.AddSeries("policy", series("policy", models.Observation{Date: day(2024, 1, 2), Value: 5.33}))
	f.AddSeries("bill", series("bill", models.Observation{Date: day(2024, 1, 3), Value: 5.40}))

	f.AddSpread("spread", "policy", "bill")

	for _, d := range f.Dates() {
		if _, ok := f.Value("spread", d); ok {
			t.Errorf("spread should be empty, has value on %v", d)
		}
	}
	// The column itself still exists for output.
	found := false
	for _, c := range f.Columns() {
		if c == "spread" {
			found = true
		}
	}
	if !found {
		t.Error("spread column missing from frame")
	}
}

func TestLatestCurveStats(t *testing.T) {
	points := []models.YieldCurvePoint{
		{Date: day(2024, 1, 2), Maturity: "3M", Years: 0.25, Rate: 5.40},
		{Date: day(2024, 1, 2), Maturity: "10Y", Years: 10, Rate: 4.10},
	}

	stats, snap, ok := LatestCurveStats(points, []string{"3M", "10Y"})
	if !ok {
		t.Fatal("expected a complete snapshot")
	}
	if stats.Min != 4.10 || stats.Max != 5.40 {
		t.Errorf("min/max = %v/%v, want 4.10/5.40", stats.Min, stats.Max)
	}
	// Slope is longest minus shortest maturity yield.
	if math.Abs(stats.Slope-(-1.30)) > 1e-9 {
		t.Errorf("slope = %v, want -1.30", stats.Slope)
	}
	if !stats.Inverted() {
		t.Error("curve should be inverted")
	}
	if snap == nil || !snap.Date.Equal(day(2024, 1, 2)) {
		t.Errorf("snapshot date = %v, want Jan 2", snap)
	}
}

func TestLatestCurveStatsSkipsPartialSnapshots(t *testing.T) {
	points := []models.YieldCurvePoint{
		// Jan 2: complete.
		{Date: day(2024, 1, 2), Maturity: "3M", Years: 0.25, Rate: 5.00},
		{Date: day(2024, 1, 2), Maturity: "10Y", Years: 10, Rate: 4.50},
		// Jan 3: missing 10Y, must not be summarized.
		{Date: day(2024, 1, 3), Maturity: "3M", Years: 0.25, Rate: 5.10},
	}

	stats, _, ok := LatestCurveStats(points, []string{"3M", "10Y"})
	if !ok {
		t.Fatal("expected a complete snapshot")
	}
	if !stats.Date.Equal(day(2024, 1, 2)) {
		t.Errorf("stats date = %v, want Jan 2 (latest complete)", stats.Date)
	}
	if math.Abs(stats.Slope-(-0.50)) > 1e-9 {
		t.Errorf("slope = %v, want -0.50", stats.Slope)
	}
}

func TestLatestCurveStatsNoCompleteSnapshot(t *testing.T) {
	points := []models.YieldCurvePoint{
		{Date: day(2024, 1, 2), Maturity: "3M", Years: 0.25, Rate: 5.00},
	}
	if _, _, ok := LatestCurveStats(points, []string{"3M", "10Y"}); ok {
		t.Error("no snapshot is complete, ok should be false")
	}
}
