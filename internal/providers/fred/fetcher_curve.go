package fred

import (
	"context"
	"time"

	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// yieldCurveFetcher fetches every constant-maturity Treasury series and
// returns the merged []models.YieldCurvePoint.
type yieldCurveFetcher struct {
	provider.BaseFetcher
}

func newYieldCurveFetcher() *yieldCurveFetcher {
	return &yieldCurveFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.SeriesYieldCurve,
			"US Treasury yield curve, 1M through 30Y constant maturity",
			nil,
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			15*time.Minute,
			120, time.Minute,
		),
	}
}

func (f *yieldCurveFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := f.CacheKey(params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}

	var points []models.YieldCurvePoint
	var lastErr error
	fetched := 0

	// One request per maturity. A single failing maturity does not
	// sink the whole curve; the snapshot completeness check downstream
	// decides what is usable.
	for _, m := range models.StandardMaturities {
		if err := f.RateLimit(ctx); err != nil {
			return nil, err
		}

		raw, err := fetchObservations(ctx, curveSeriesIDs[m.Label], params)
		if err != nil {
			lastErr = err
			continue
		}
		fetched++

		for _, o := range raw {
			if o.Missing() {
				continue
			}
			date, err := parseFredDate(o.Date)
			if err != nil {
				continue
			}
			v, err := o.Float()
			if err != nil {
				continue
			}
			points = append(points, models.YieldCurvePoint{
				Date:     date,
				Maturity: m.Label,
				Years:    m.Years,
				Rate:     v,
			})
		}
	}

	if fetched == 0 {
		return nil, &provider.ErrDataUnavailable{Series: "yield curve", Cause: lastErr}
	}
	if len(points) == 0 {
		return nil, &provider.ErrEmptyResult{
			Series: "yield curve",
			Start:  params[provider.ParamStartDate],
			End:    params[provider.ParamEndDate],
		}
	}

	f.CacheSet(cacheKey, points)
	return newResult(points), nil
}
