// Package fred implements the FRED (Federal Reserve Economic Data)
// provider. FRED serves over 800,000 economic time series.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/macrolens/liquiditylens/internal/infra"
	"github.com/macrolens/liquiditylens/internal/provider"
)

const (
	providerName   = "fred"
	defaultBaseURL = "https://api.stlouisfed.org/fred"
	credAPIKey     = "api_key"

	// Internal params injected by the provider wrapper so individual
	// fetchers stay stateless and testable.
	paramAPIKey  = "_fred_api_key"
	paramBaseURL = "_fred_base_url"
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	apiKey  string
	baseURL string
}

// New creates a FRED provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - 800K+ economic time series",
			"https://fred.stlouisfed.org",
			[]provider.Credential{
				{
					Name:        credAPIKey,
					Description: "FRED API key from fred.stlouisfed.org",
					Required:    true,
					EnvVar:      "FRED_API_KEY",
				},
			},
		),
	}

	p.RegisterFetcher(newFederalFundsRateFetcher())
	p.RegisterFetcher(newTreasuryBill3MFetcher())
	p.RegisterFetcher(newReserveBalancesFetcher())
	p.RegisterFetcher(newYieldCurveFetcher())
	p.RegisterFetcher(newGenericSeriesFetcher())

	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// SetBaseURL overrides the FRED API base URL. Used in tests to point
// at an httptest server.
func (p *Provider) SetBaseURL(u string) { p.baseURL = u }

// Ping checks connectivity to the FRED API.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/series?series_id=DFF&api_key=%s&file_type=json", p.baseURL, p.apiKey)
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	body.Close()
	return nil
}

// Fetcher overrides BaseProvider.Fetcher with a wrapper that injects
// the API key and base URL into the query params before delegating.
func (p *Provider) Fetcher(series provider.SeriesType) provider.Fetcher {
	inner := p.BaseProvider.Fetcher(series)
	if inner == nil {
		return nil
	}
	return &paramInjector{inner: inner, p: p}
}

type paramInjector struct {
	inner provider.Fetcher
	p     *Provider
}

func (w *paramInjector) SeriesType() provider.SeriesType { return w.inner.SeriesType() }
func (w *paramInjector) Description() string             { return w.inner.Description() }
func (w *paramInjector) RequiredParams() []string        { return w.inner.RequiredParams() }
func (w *paramInjector) OptionalParams() []string        { return w.inner.OptionalParams() }

func (w *paramInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	enriched := make(provider.QueryParams, len(params)+2)
	for k, v := range params {
		enriched[k] = v
	}
	enriched[paramAPIKey] = w.p.apiKey
	enriched[paramBaseURL] = w.p.baseURL
	return w.inner.Fetch(ctx, enriched)
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

func baseURLFrom(params provider.QueryParams) string {
	if u := params[paramBaseURL]; u != "" {
		return u
	}
	return defaultBaseURL
}

// fetchJSON performs a GET against a FRED endpoint and decodes the
// JSON response into dest.
func fetchJSON(ctx context.Context, baseURL, endpoint, apiKey string, dest any) error {
	sep := "?"
	for _, c := range endpoint {
		if c == '?' {
			sep = "&"
			break
		}
	}
	url := baseURL + "/" + endpoint + sep + "api_key=" + apiKey + "&file_type=json"

	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read FRED response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FRED JSON: %w", err)
	}
	return nil
}

// fetchObservations fetches a FRED series' observations over the
// requested range.
func fetchObservations(ctx context.Context, seriesID string, params provider.QueryParams) ([]fredObservation, error) {
	endpoint := fmt.Sprintf("series/observations?series_id=%s", seriesID)
	if sd := params[provider.ParamStartDate]; sd != "" {
		endpoint += "&observation_start=" + sd
	}
	if ed := params[provider.ParamEndDate]; ed != "" {
		endpoint += "&observation_end=" + ed
	}
	if lim := params[provider.ParamLimit]; lim != "" {
		endpoint += "&limit=" + lim + "&sort_order=desc"
	}

	var resp fredObservationsResponse
	if err := fetchJSON(ctx, baseURLFrom(params), endpoint, params[paramAPIKey], &resp); err != nil {
		return nil, err
	}
	return resp.Observations, nil
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now()}
}

func newCachedResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now(), Cached: true}
}
