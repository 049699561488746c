package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/macrolens/liquiditylens/pkg/models"
)

// --- Test doubles ---

type stubFetcher struct {
	BaseFetcher
	result *FetchResult
	err    error
	calls  int
}

func newStubFetcher(series SeriesType, result *FetchResult, err error) *stubFetcher {
	return &stubFetcher{
		BaseFetcher: NewBaseFetcher(series, "stub", nil, nil, time.Minute, 100, time.Second),
		result:      result,
		err:         err,
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type stubProvider struct {
	BaseProvider
}

func newStubProvider(name string, fetchers ...Fetcher) *stubProvider {
	p := &stubProvider{
		BaseProvider: NewBaseProvider(name, "stub provider", "https://example.com", nil),
	}
	for _, f := range fetchers {
		p.RegisterFetcher(f)
	}
	return p
}

// --- BaseProvider ---

func TestBaseProviderInitRequiresCredentials(t *testing.T) {
	p := &stubProvider{
		BaseProvider: NewBaseProvider("creds", "", "", []Credential{
			{Name: "api_key", Required: true, EnvVar: "TEST_API_KEY"},
		}),
	}

	if err := p.Init(map[string]string{}); err == nil {
		t.Error("Init without required credential should fail")
	}
	var credErr *ErrInvalidCredentials
	if err := p.Init(map[string]string{"other": "x"}); !errors.As(err, &credErr) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := p.Init(map[string]string{"api_key": "k"}); err != nil {
		t.Fatalf("Init with credential: %v", err)
	}
	if p.Credential("api_key") != "k" {
		t.Errorf("Credential(api_key) = %q", p.Credential("api_key"))
	}
}

func TestBaseProviderRegisterFetcher(t *testing.T) {
	f := newStubFetcher(SeriesFederalFundsRate, nil, nil)
	p := newStubProvider("p", f)

	if p.Fetcher(SeriesFederalFundsRate) == nil {
		t.Error("expected fetcher for registered series")
	}
	if p.Fetcher(SeriesYieldCurve) != nil {
		t.Error("expected nil fetcher for unregistered series")
	}
	if len(p.SupportedSeries()) != 1 {
		t.Errorf("SupportedSeries = %v", p.SupportedSeries())
	}
}

// --- CacheKey ---

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey(SeriesYieldCurve, QueryParams{
		ParamStartDate: "2024-01-01",
		ParamEndDate:   "2024-02-01",
	})
	b := CacheKey(SeriesYieldCurve, QueryParams{
		ParamEndDate:   "2024-02-01",
		ParamStartDate: "2024-01-01",
	})
	if a != b {
		t.Errorf("cache keys differ for same params: %q vs %q", a, b)
	}

	withProvider := CacheKey(SeriesYieldCurve, QueryParams{
		ParamStartDate: "2024-01-01",
		ParamEndDate:   "2024-02-01",
		ParamProvider:  "fred",
	})
	if withProvider != a {
		t.Error("provider param must not change the cache key")
	}
}

// --- ValidateParams ---

func TestValidateParams(t *testing.T) {
	params := QueryParams{ParamSeriesID: "DFF"}

	if err := ValidateParams(params, []string{ParamSeriesID}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ValidateParams(params, []string{ParamStartDate})
	var missing *ErrMissingParam
	if !errors.As(err, &missing) || missing.Param != ParamStartDate {
		t.Errorf("expected ErrMissingParam(start_date), got %v", err)
	}
}

// --- Registry ---

func TestRegistryFetchRoutesToDefault(t *testing.T) {
	ts := models.NewTimeSeries(models.IndicatorFedFundsRate, "%", []models.Observation{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: 5.33},
	})
	f := newStubFetcher(SeriesFederalFundsRate, &FetchResult{Data: ts}, nil)

	r := NewRegistry()
	if err := r.Register(newStubProvider("primary", f)); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := r.Fetch(context.Background(), SeriesFederalFundsRate, QueryParams{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Provider != "primary" {
		t.Errorf("Provider = %q, want primary", result.Provider)
	}
	if result.Series != SeriesFederalFundsRate {
		t.Errorf("Series = %q", result.Series)
	}
	if result.FetchedAt.IsZero() {
		t.Error("FetchedAt should be stamped")
	}
	got, ok := result.Data.(models.TimeSeries)
	if !ok || got.Len() != 1 {
		t.Errorf("Data = %#v", result.Data)
	}
}

func TestRegistryFetchUnknownSeries(t *testing.T) {
	r := NewRegistry()
	_, err := r.Fetch(context.Background(), SeriesYieldCurve, QueryParams{})
	var notFound *ErrProviderNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}
}

func TestRegistryFetchWithFallback(t *testing.T) {
	failing := newStubFetcher(SeriesFederalFundsRate, nil,
		&ErrDataUnavailable{Series: SeriesFederalFundsRate, Cause: errors.New("boom")})
	working := newStubFetcher(SeriesFederalFundsRate, &FetchResult{Data: models.TimeSeries{}}, nil)

	r := NewRegistry()
	_ = r.Register(newStubProvider("broken", failing))
	_ = r.Register(newStubProvider("backup", working))

	result, err := r.FetchWithFallback(context.Background(), SeriesFederalFundsRate, QueryParams{})
	if err != nil {
		t.Fatalf("FetchWithFallback: %v", err)
	}
	if result.Provider != "backup" {
		t.Errorf("Provider = %q, want backup", result.Provider)
	}
	if failing.calls == 0 {
		t.Error("default provider should have been tried first")
	}
}

func TestRegistrySetDefault(t *testing.T) {
	f1 := newStubFetcher(SeriesFederalFundsRate, &FetchResult{}, nil)
	f2 := newStubFetcher(SeriesFederalFundsRate, &FetchResult{}, nil)

	r := NewRegistry()
	_ = r.Register(newStubProvider("a", f1))
	_ = r.Register(newStubProvider("b", f2))

	if err := r.SetDefault(SeriesFederalFundsRate, "b"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	result, err := r.Fetch(context.Background(), SeriesFederalFundsRate, QueryParams{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.Provider != "b" {
		t.Errorf("Provider = %q, want b", result.Provider)
	}

	if err := r.SetDefault(SeriesYieldCurve, "a"); err == nil {
		t.Error("SetDefault for unsupported series should fail")
	}
}

func TestRegistryValidatesRequiredParams(t *testing.T) {
	f := &stubFetcher{
		BaseFetcher: NewBaseFetcher(SeriesGeneric, "needs id",
			[]string{ParamSeriesID}, nil, time.Minute, 100, time.Second),
		result: &FetchResult{},
	}
	r := NewRegistry()
	_ = r.Register(newStubProvider("p", f))

	_, err := r.Fetch(context.Background(), SeriesGeneric, QueryParams{})
	var missing *ErrMissingParam
	if !errors.As(err, &missing) {
		t.Errorf("expected ErrMissingParam, got %v", err)
	}
	if f.calls != 0 {
		t.Error("fetcher must not be called when params are invalid")
	}
}

// --- Error strings ---

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrProviderNotFound{Name: "x"}, `provider "x" not found`},
		{&ErrSeriesNotSupported{Provider: "p", Series: SeriesYieldCurve}, `provider "p" does not support series "YieldCurve"`},
		{&ErrMissingParam{Param: "series_id"}, `missing required parameter "series_id"`},
		{&ErrEmptyResult{Series: SeriesGeneric, Start: "2024-01-01", End: "2024-02-01"}, "no observations for Generic in range 2024-01-01..2024-02-01"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrDataUnavailableUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &ErrDataUnavailable{Series: SeriesReserveBalances, Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("ErrDataUnavailable should unwrap to its cause")
	}
}
