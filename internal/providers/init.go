// Package providers initializes and registers the concrete data
// providers with a provider registry.
package providers

import (
	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/internal/providers/fred"
	"github.com/macrolens/liquiditylens/internal/providers/nyfed"
)

// Options configures provider registration.
type Options struct {
	FREDAPIKey  string
	FREDBaseURL string // override for tests; empty uses the production URL
}

// RegisterAll registers every available provider with reg and makes
// FRED the default source for the federal funds rate, with the NY Fed
// as keyless fallback.
func RegisterAll(reg *provider.Registry, opts Options) error {
	fredProv := fred.New()
	if opts.FREDBaseURL != "" {
		fredProv.SetBaseURL(opts.FREDBaseURL)
	}
	if err := fredProv.Init(map[string]string{"api_key": opts.FREDAPIKey}); err != nil {
		return err
	}
	if err := reg.Register(fredProv); err != nil {
		return err
	}

	if err := reg.Register(nyfed.New()); err != nil {
		return err
	}

	return reg.SetDefault(provider.SeriesFederalFundsRate, "fred")
}
