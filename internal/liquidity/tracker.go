package liquidity

import (
	"context"
	"time"

	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// Gap records an indicator that could not be fetched. The run carries
// on without it and the report names it.
type Gap struct {
	Indicator models.Indicator
	Err       error
}

// Result is one complete collection run: the merged frame, the raw
// series and curve points behind it, derived metrics, and any gaps.
type Result struct {
	Frame       *Frame
	Series      map[models.Indicator]*models.TimeSeries
	CurvePoints []models.YieldCurvePoint
	CurveStats  *CurveStats
	Snapshot    *models.CurveSnapshot
	Gaps        []Gap
	Start, End  string
	FetchedAt   time.Time
}

// HasData reports whether at least one indicator came back.
func (r *Result) HasData() bool {
	return len(r.Series) > 0 || len(r.CurvePoints) > 0
}

// Tracker orchestrates a collection run through the provider registry.
type Tracker struct {
	registry    *provider.Registry
	curveLabels []string
}

// NewTracker creates a tracker. curveLabels lists the curve maturity
// column names shortest first; they drive both the frame's curve
// columns and the completeness check for curve statistics.
func NewTracker(registry *provider.Registry, curveLabels []string) *Tracker {
	return &Tracker{registry: registry, curveLabels: curveLabels}
}

// Collect fetches every indicator over [start, end], merges the
// results into a frame, and computes derived metrics. Indicators are
// fetched one at a time; a failing indicator becomes a Gap instead of
// failing the run. Collect itself only errors on context cancellation.
func (t *Tracker) Collect(ctx context.Context, start, end string) (*Result, error) {
	res := &Result{
		Frame:     NewFrame(),
		Series:    make(map[models.Indicator]*models.TimeSeries),
		Start:     start,
		End:       end,
		FetchedAt: time.Now(),
	}

	params := provider.QueryParams{
		provider.ParamStartDate: start,
		provider.ParamEndDate:   end,
	}

	// Fixed column order: policy rate, curve maturities, T-bill,
	// spread, reserves. The CSV writer depends on this ordering.
	t.fetchSeries(ctx, res, provider.SeriesFederalFundsRate, models.IndicatorFedFundsRate, params)
	t.fetchCurve(ctx, res, params)
	t.fetchSeries(ctx, res, provider.SeriesTreasuryBill3M, models.IndicatorTreasuryBill3M, params)

	res.Frame.AddSpread(
		string(models.IndicatorFundingSpread),
		string(models.IndicatorFedFundsRate),
		string(models.IndicatorTreasuryBill3M),
	)

	t.fetchSeries(ctx, res, provider.SeriesReserveBalances, models.IndicatorReserveBalances, params)

	if len(res.CurvePoints) > 0 {
		if stats, snap, ok := LatestCurveStats(res.CurvePoints, t.curveLabels); ok {
			res.CurveStats = &stats
			res.Snapshot = snap
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (t *Tracker) fetchSeries(ctx context.Context, res *Result, series provider.SeriesType, ind models.Indicator, params provider.QueryParams) {
	if ctx.Err() != nil {
		return
	}

	fr, err := t.registry.FetchWithFallback(ctx, series, params)
	if err != nil {
		res.Gaps = append(res.Gaps, Gap{Indicator: ind, Err: err})
		res.Frame.AddSeries(string(ind), nil)
		return
	}

	ts, ok := fr.Data.(*models.TimeSeries)
	if !ok || ts.IsEmpty() {
		res.Gaps = append(res.Gaps, Gap{Indicator: ind, Err: &provider.ErrEmptyResult{
			Series: provider.SeriesType(ind),
			Start:  res.Start,
			End:    res.End,
		}})
		res.Frame.AddSeries(string(ind), nil)
		return
	}

	res.Series[ind] = ts
	res.Frame.AddSeries(string(ind), ts)
}

func (t *Tracker) fetchCurve(ctx context.Context, res *Result, params provider.QueryParams) {
	if ctx.Err() != nil {
		return
	}

	fr, err := t.registry.FetchWithFallback(ctx, provider.SeriesYieldCurve, params)
	if err != nil {
		res.Gaps = append(res.Gaps, Gap{Indicator: models.IndicatorYieldCurve, Err: err})
		res.Frame.AddCurve(nil, t.curveLabels)
		return
	}

	points, ok := fr.Data.([]models.YieldCurvePoint)
	if !ok || len(points) == 0 {
		res.Gaps = append(res.Gaps, Gap{Indicator: models.IndicatorYieldCurve, Err: &provider.ErrEmptyResult{
			Series: provider.SeriesType(models.IndicatorYieldCurve),
			Start:  res.Start,
			End:    res.End,
		}})
		res.Frame.AddCurve(nil, t.curveLabels)
		return
	}

	res.CurvePoints = points
	res.Frame.AddCurve(points, t.curveLabels)
}
