// Package nyfed implements a NY Fed Markets API provider. It serves as
// the fallback source for the effective federal funds rate when FRED is
// unreachable or unconfigured. No API key required.
package nyfed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/macrolens/liquiditylens/internal/infra"
	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/pkg/models"
)

const (
	providerName   = "nyfed"
	defaultBaseURL = "https://markets.newyorkfed.org/api"
)

var nyfedHeaders = map[string]string{
	"Accept":          "application/json, */*",
	"Accept-Language": "en-US,en;q=0.9",
}

// Provider is the NY Fed Markets API provider.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a NY Fed provider.
func New() *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"NY Fed Markets API reference rates (free, no API key)",
			"https://markets.newyorkfed.org",
			nil,
		),
	}
	p.RegisterFetcher(newEFFRFetcher(p))
	return p
}

// SetBaseURL overrides the API base URL. Used in tests.
func (p *Provider) SetBaseURL(u string) { p.baseURL = u }

// Ping verifies connectivity to the NY Fed Markets API.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.baseURL+"/rates/unsecured/effr/last/1.json", nyfedHeaders)
	if err != nil {
		return err
	}
	body.Close()
	return nil
}

// nyfedRatesResponse wraps the ref rate entries.
type nyfedRatesResponse struct {
	RefRates []nyfedRefRate `json:"refRates"`
}

type nyfedRefRate struct {
	EffectiveDate string  `json:"effectiveDate"`
	Type          string  `json:"type,omitempty"`
	PercentRate   float64 `json:"percentRate"`
}

// effrFetcher fetches the effective federal funds rate history.
type effrFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newEFFRFetcher(p *Provider) *effrFetcher {
	return &effrFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.SeriesFederalFundsRate,
			"Effective federal funds rate (EFFR) from the NY Fed",
			nil,
			[]string{provider.ParamStartDate, provider.ParamEndDate},
			15*time.Minute,
			60, time.Minute,
		),
		p: p,
	}
}

// nyfedDateParam converts an ISO date to the MM/DD/YYYY form the NY
// Fed search endpoint expects.
func nyfedDateParam(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("01/02/2006")
}

func (f *effrFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := f.CacheKey(params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return &provider.FetchResult{Data: cached, FetchedAt: time.Now(), Cached: true}, nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	start := params[provider.ParamStartDate]
	if start == "" {
		start = time.Now().AddDate(0, -3, 0).Format("2006-01-02")
	}
	end := params[provider.ParamEndDate]
	if end == "" {
		end = time.Now().Format("2006-01-02")
	}

	url := fmt.Sprintf("%s/rates/unsecured/effr/search.json?startDate=%s&endDate=%s",
		f.p.baseURL, nyfedDateParam(start), nyfedDateParam(end))

	body, _, err := infra.DoGet(ctx, url, nyfedHeaders)
	if err != nil {
		return nil, &provider.ErrDataUnavailable{Series: "EFFR", Cause: err}
	}
	defer body.Close()

	var resp nyfedRatesResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, &provider.ErrDataUnavailable{Series: "EFFR", Cause: err}
	}

	obs := make([]models.Observation, 0, len(resp.RefRates))
	for _, r := range resp.RefRates {
		date, err := time.Parse("2006-01-02", r.EffectiveDate)
		if err != nil {
			continue
		}
		obs = append(obs, models.Observation{Date: date, Value: r.PercentRate})
	}

	if len(obs) == 0 {
		return nil, &provider.ErrEmptyResult{Series: "EFFR", Start: start, End: end}
	}

	series := models.NewTimeSeries(models.IndicatorFedFundsRate, "%", obs)
	f.CacheSet(cacheKey, &series)
	return &provider.FetchResult{Data: &series, FetchedAt: time.Now()}, nil
}
