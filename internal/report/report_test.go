package report

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/macrolens/liquiditylens/internal/liquidity"
	"github.com/macrolens/liquiditylens/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testResult() *liquidity.Result {
	f := liquidity.NewFrame()
	policy := models.NewTimeSeries(models.IndicatorFedFundsRate, "%", []models.Observation{
		{Date: day(2024, 1, 2), Value: 5.33},
		{Date: day(2024, 1, 3), Value: 5.33},
	})
	bill := models.NewTimeSeries(models.IndicatorTreasuryBill3M, "%", []models.Observation{
		{Date: day(2024, 1, 2), Value: 5.40},
	})
	reserves := models.NewTimeSeries(models.IndicatorReserveBalances, "$B", []models.Observation{
		{Date: day(2024, 1, 3), Value: 3421.5},
	})

	f.AddSeries(string(models.IndicatorFedFundsRate), &policy)
	curve := []models.YieldCurvePoint{
		{Date: day(2024, 1, 2), Maturity: "3M", Years: 0.25, Rate: 5.40},
		{Date: day(2024, 1, 2), Maturity: "10Y", Years: 10, Rate: 4.10},
	}
	f.AddCurve(curve, []string{"3M", "10Y"})
	f.AddSeries(string(models.IndicatorTreasuryBill3M), &bill)
	f.AddSpread(string(models.IndicatorFundingSpread),
		string(models.IndicatorFedFundsRate), string(models.IndicatorTreasuryBill3M))
	f.AddSeries(string(models.IndicatorReserveBalances), &reserves)

	stats, snap, _ := liquidity.LatestCurveStats(curve, []string{"3M", "10Y"})

	return &liquidity.Result{
		Frame: f,
		Series: map[models.Indicator]*models.TimeSeries{
			models.IndicatorFedFundsRate:    &policy,
			models.IndicatorTreasuryBill3M:  &bill,
			models.IndicatorReserveBalances: &reserves,
		},
		CurvePoints: curve,
		CurveStats:  &stats,
		Snapshot:    snap,
		Start:       "2024-01-01",
		End:         "2024-01-31",
		FetchedAt:   day(2024, 1, 5),
	}
}

func TestRenderReport(t *testing.T) {
	res := testResult()
	text := Render(res, Outputs{CSVPath: "out/liquidity.csv", ChartPath: "out/curve.svg"}, nil)

	for _, want := range []string{
		"US LIQUIDITY CONDITIONS",
		"Fed_Funds_Rate",
		"TBill_3M",
		"Funding_Spread",
		"Reserve_Balances",
		"INVERTED",
		"out/liquidity.csv",
		"out/curve.svg",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "Gaps") {
		t.Error("report should have no gaps section")
	}
}

func TestRenderReportWithGaps(t *testing.T) {
	res := testResult()
	res.Gaps = []liquidity.Gap{
		{Indicator: models.IndicatorYieldCurve, Err: errFake("curve unavailable")},
	}

	text := Render(res, Outputs{}, nil)
	if !strings.Contains(text, "Gaps") || !strings.Contains(text, "curve unavailable") {
		t.Errorf("report should name the gap\n%s", text)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }

func TestRenderReportNoData(t *testing.T) {
	res := &liquidity.Result{
		Frame:     liquidity.NewFrame(),
		Series:    map[models.Indicator]*models.TimeSeries{},
		Start:     "2024-01-01",
		End:       "2024-01-31",
		FetchedAt: day(2024, 1, 5),
	}
	text := Render(res, Outputs{}, nil)
	if !strings.Contains(text, "No indicator data") {
		t.Errorf("report should state no data\n%s", text)
	}
}

func TestWriteAndReadCSVRoundTrip(t *testing.T) {
	res := testResult()
	path := filepath.Join(t.TempDir(), "liquidity.csv")

	if err := WriteCSV(res.Frame, path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	wantCols := res.Frame.Columns()
	gotCols := got.Columns()
	if len(gotCols) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", gotCols, wantCols)
	}
	for i := range wantCols {
		if gotCols[i] != wantCols[i] {
			t.Errorf("columns[%d] = %s, want %s", i, gotCols[i], wantCols[i])
		}
	}

	// Every value and every absence must survive the round trip.
	for _, date := range res.Frame.Dates() {
		for _, col := range wantCols {
			wantV, wantOK := res.Frame.Value(col, date)
			gotV, gotOK := got.Value(col, date)
			if wantOK != gotOK || (wantOK && wantV != gotV) {
				t.Errorf("%s on %s: got %v,%v want %v,%v",
					col, date.Format("2006-01-02"), gotV, gotOK, wantV, wantOK)
			}
		}
	}
}

func TestWriteCSVOverwrites(t *testing.T) {
	res := testResult()
	path := filepath.Join(t.TempDir(), "liquidity.csv")

	if err := WriteCSV(res.Frame, path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteCSV(res.Frame, path); err != nil {
		t.Fatalf("second write should overwrite: %v", err)
	}
}

func TestWriteCSVBadPath(t *testing.T) {
	res := testResult()
	err := WriteCSV(res.Frame, filepath.Join(t.TempDir(), "missing", "liquidity.csv"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
	var wErr *WriteError
	if !errors.As(err, &wErr) {
		t.Fatalf("expected WriteError, got %T", err)
	}
}

func TestYieldCurveChart(t *testing.T) {
	res := testResult()
	svg := YieldCurveChart(res.Snapshot, res.CurveStats, ChartConfig{})

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete SVG document")
	}
	for _, want := range []string{"3M", "10Y", "path"} {
		if !strings.Contains(svg, want) {
			t.Errorf("chart missing %q", want)
		}
	}
	// Inverted curve renders in the warning color.
	if !strings.Contains(svg, "#ef5350") {
		t.Error("inverted curve should use the red stroke")
	}
}

func TestYieldCurveChartEmpty(t *testing.T) {
	svg := YieldCurveChart(nil, nil, ChartConfig{})
	if !strings.Contains(svg, "No complete yield curve snapshot") {
		t.Errorf("empty chart should say so: %s", svg)
	}
}

func TestIndicatorChart(t *testing.T) {
	res := testResult()
	svg := IndicatorChart(res.Frame, string(models.IndicatorFedFundsRate), ChartConfig{})

	if !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, "Fed Funds Rate") {
		t.Errorf("unexpected chart output: %.120s", svg)
	}
}

func TestIndicatorChartMissingColumn(t *testing.T) {
	res := testResult()
	svg := IndicatorChart(res.Frame, "Nope", ChartConfig{})
	if !strings.Contains(svg, "No data for Nope") {
		t.Errorf("expected empty-state SVG: %s", svg)
	}
}
