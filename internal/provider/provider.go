// Package provider defines the data-provider abstraction: a Provider
// interface, a Fetcher interface per series type, and a registry that
// routes fetch requests to the right provider with fallback.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Credential describes a credential a provider needs.
type Credential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FRED API key from fred.stlouisfed.org"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // e.g., "FRED_API_KEY"
}

// Info holds metadata about a registered provider.
type Info struct {
	Name        string       `json:"name"` // e.g., "fred", "nyfed"
	Description string       `json:"description"`
	Website     string       `json:"website"`
	Credentials []Credential `json:"credentials"`
	Series      []SeriesType `json:"series"` // supported series types
}

// Provider is implemented by each upstream data source.
type Provider interface {
	// Info returns metadata about this provider.
	Info() Info

	// Init stores credentials. Returns an error if a required
	// credential is missing.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the series type, or nil.
	Fetcher(series SeriesType) Fetcher

	// SupportedSeries returns all series types this provider can fetch.
	SupportedSeries() []SeriesType

	// Ping verifies connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic parameter map passed to fetchers.
// Common keys: "series_id", "start_date", "end_date" (YYYY-MM-DD),
// "limit", "provider".
type QueryParams map[string]string

const (
	ParamSeriesID  = "series_id"
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamLimit     = "limit"
	ParamProvider  = "provider"
)

// FetchResult wraps fetched data with metadata.
type FetchResult struct {
	Provider  string     `json:"provider"`
	Series    SeriesType `json:"series"`
	Data      any        `json:"data"`
	FetchedAt time.Time  `json:"fetched_at"`
	Cached    bool       `json:"cached"`
}

// Fetcher retrieves one series type from one provider.
type Fetcher interface {
	SeriesType() SeriesType
	Description() string
	RequiredParams() []string
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters. The data
	// type depends on the series:
	//   SeriesFederalFundsRate → *models.TimeSeries
	//   SeriesYieldCurve       → []models.YieldCurvePoint
	//   etc.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// --- Error kinds ---

// ErrProviderNotFound is returned when a provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrSeriesNotSupported is returned when a provider doesn't serve a
// series type.
type ErrSeriesNotSupported struct {
	Provider string
	Series   SeriesType
}

func (e *ErrSeriesNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support series %q", e.Provider, e.Series)
}

// ErrMissingParam is returned when a required query parameter is absent.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are
// missing or rejected.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ErrDataUnavailable wraps a network or API failure for one indicator.
// Failures are isolated per indicator: the caller skips the series and
// continues with the rest.
type ErrDataUnavailable struct {
	Series SeriesType
	Cause  error
}

func (e *ErrDataUnavailable) Error() string {
	return fmt.Sprintf("data unavailable for %s: %v", e.Series, e.Cause)
}

func (e *ErrDataUnavailable) Unwrap() error { return e.Cause }

// ErrEmptyResult is returned when the upstream answered but had no
// rows for the requested range.
type ErrEmptyResult struct {
	Series SeriesType
	Start  string
	End    string
}

func (e *ErrEmptyResult) Error() string {
	return fmt.Sprintf("no observations for %s in range %s..%s", e.Series, e.Start, e.End)
}

// ValidateParams checks that all required parameters are present.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
