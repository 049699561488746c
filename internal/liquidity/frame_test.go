package liquidity

import (
	"testing"
	"time"

	"github.com/macrolens/liquiditylens/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func series(ind models.Indicator, obs ...models.Observation) *models.TimeSeries {
	ts := models.NewTimeSeries(ind, "%", obs)
	return &ts
}

func TestFrameDatesAreUnionOfSeries(t *testing.T) {
	f := NewFrame()
	f.AddSeries("a", series("a",
		models.Observation{Date: day(2024, 1, 2), Value: 1},
		models.Observation{Date: day(2024, 1, 3), Value: 2},
	))
	f.AddSeries("b", series("b",
		models.Observation{Date: day(2024, 1, 3), Value: 3},
		models.Observation{Date: day(2024, 1, 4), Value: 4},
	))

	dates := f.Dates()
	want := []time.Time{day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("dates[%d] = %v, want %v", i, dates[i], want[i])
		}
	}
}

func TestFrameMissingValuesStayMissing(t *testing.T) {
	f := NewFrame()
	f.AddSeries("a", series("a", models.Observation{Date: day(2024, 1, 2), Value: 1}))
	f.AddSeries("b", series("b", models.Observation{Date: day(2024, 1, 3), Value: 3}))

	if _, ok := f.Value("a", day(2024, 1, 3)); ok {
		t.Error("a should have no value on Jan 3")
	}
	if v, ok := f.Value("b", day(2024, 1, 3)); !ok || v != 3 {
		t.Errorf("b on Jan 3 = %v,%v, want 3,true", v, ok)
	}
}

func TestFrameEmptySeriesStillAddsColumn(t *testing.T) {
	f := NewFrame()
	f.AddSeries("empty", nil)

	cols := f.Columns()
	if len(cols) != 1 || cols[0] != "empty" {
		t.Fatalf("columns = %v, want [empty]", cols)
	}
	if !f.IsEmpty() {
		t.Error("frame with only an empty column should have no dates")
	}
}

func TestFrameAddCurve(t *testing.T) {
	f := NewFrame()
	f.AddCurve([]models.YieldCurvePoint{
		{Date: day(2024, 1, 2), Maturity: "3M", Years: 0.25, Rate: 5.40},
		{Date: day(2024, 1, 2), Maturity: "10Y", Years: 10, Rate: 4.10},
	}, []string{"3M", "10Y"})

	if v, ok := f.Value("3M", day(2024, 1, 2)); !ok || v != 5.40 {
		t.Errorf("3M = %v,%v, want 5.40,true", v, ok)
	}
	if v, ok := f.Value("10Y", day(2024, 1, 2)); !ok || v != 4.10 {
		t.Errorf("10Y = %v,%v, want 4.10,true", v, ok)
	}
}

func TestFrameLatest(t *testing.T) {
	f := NewFrame()
	f.AddSeries("a", series("a",
		models.Observation{Date: day(2024, 1, 2), Value: 1},
		models.Observation{Date: day(2024, 1, 5), Value: 9},
	))

	date, v, ok := f.Latest("a")
	if !ok || v != 9 || !date.Equal(day(2024, 1, 5)) {
		t.Errorf("Latest = %v,%v,%v, want Jan 5, 9, true", date, v, ok)
	}

	if _, _, ok := f.Latest("missing"); ok {
		t.Error("Latest on unknown column should report false")
	}
}

func TestFrameDuplicateDateLastWins(t *testing.T) {
	f := NewFrame()
	f.AddSeries("a", series("a", models.Observation{Date: day(2024, 1, 2), Value: 1}))
	f.AddSeries("a", series("a", models.Observation{Date: day(2024, 1, 2), Value: 2}))

	if v, _ := f.Value("a", day(2024, 1, 2)); v != 2 {
		t.Errorf("value = %v, want 2", v)
	}
	if len(f.Columns()) != 1 {
		t.Errorf("columns = %v, want single column", f.Columns())
	}
}
