package fred

import (
	"context"
	"time"

	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// seriesSpec describes a fixed FRED series exposed as a typed fetcher.
type seriesSpec struct {
	seriesType provider.SeriesType
	seriesID   string
	indicator  models.Indicator
	unit       string
	desc       string
}

// seriesFetcher fetches one fixed FRED series as a models.TimeSeries.
type seriesFetcher struct {
	provider.BaseFetcher
	spec seriesSpec
}

func newSeriesFetcher(spec seriesSpec) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			spec.seriesType,
			spec.desc,
			nil,
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			15*time.Minute,
			120, time.Minute,
		),
		spec: spec,
	}
}

func newFederalFundsRateFetcher() *seriesFetcher {
	return newSeriesFetcher(seriesSpec{
		seriesType: provider.SeriesFederalFundsRate,
		seriesID:   "DFF",
		indicator:  models.IndicatorFedFundsRate,
		unit:       "%",
		desc:       "Effective Federal Funds Rate, daily (DFF)",
	})
}

func newTreasuryBill3MFetcher() *seriesFetcher {
	return newSeriesFetcher(seriesSpec{
		seriesType: provider.SeriesTreasuryBill3M,
		seriesID:   "DTB3",
		indicator:  models.IndicatorTreasuryBill3M,
		unit:       "%",
		desc:       "3-Month Treasury Bill secondary market rate (DTB3)",
	})
}

func newReserveBalancesFetcher() *seriesFetcher {
	return newSeriesFetcher(seriesSpec{
		seriesType: provider.SeriesReserveBalances,
		seriesID:   "WRESBAL",
		indicator:  models.IndicatorReserveBalances,
		unit:       "$B",
		desc:       "Reserve Balances with Federal Reserve Banks, weekly (WRESBAL)",
	})
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := f.CacheKey(params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	series, err := fetchSeries(ctx, f.spec.seriesID, f.spec.indicator, f.spec.unit, params)
	if err != nil {
		return nil, err
	}

	f.CacheSet(cacheKey, series)
	return newResult(series), nil
}

// fetchSeries retrieves one FRED series and converts it to a
// models.TimeSeries. Observations FRED marks missing (".") are
// skipped, never zero-filled.
func fetchSeries(ctx context.Context, seriesID string, indicator models.Indicator, unit string, params provider.QueryParams) (*models.TimeSeries, error) {
	raw, err := fetchObservations(ctx, seriesID, params)
	if err != nil {
		return nil, &provider.ErrDataUnavailable{Series: provider.SeriesType(seriesID), Cause: err}
	}

	obs := make([]models.Observation, 0, len(raw))
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
		obs = append(obs, models.Observation{Date: date, Value: v})
	}

	if len(obs) == 0 {
		return nil, &provider.ErrEmptyResult{
			Series: provider.SeriesType(seriesID),
			Start:  params[provider.ParamStartDate],
			End:    params[provider.ParamEndDate],
		}
	}

	ts := models.NewTimeSeries(indicator, unit, obs)
	return &ts, nil
}

// genericSeriesFetcher fetches any FRED series by id.
type genericSeriesFetcher struct {
	provider.BaseFetcher
}

func newGenericSeriesFetcher() *genericSeriesFetcher {
	return &genericSeriesFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.SeriesGeneric,
			"Any FRED series by series_id",
			[]string{provider.ParamSeriesID},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamLimit},
			15*time.Minute,
			120, time.Minute,
		),
	}
}

func (f *genericSeriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	seriesID := params[provider.ParamSeriesID]

	cacheKey := f.CacheKey(params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	series, err := fetchSeries(ctx, seriesID, models.Indicator(seriesID), "", params)
	if err != nil {
		return nil, err
	}

	f.CacheSet(cacheKey, series)
	return newResult(series), nil
}
