package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe registry of data providers. It maps
// provider names to Provider instances and indexes which providers
// serve which series types.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	seriesIdx map[SeriesType][]string // series → provider names, priority order
	defaults  map[SeriesType]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		seriesIdx: make(map[SeriesType][]string),
		defaults:  make(map[SeriesType]string),
	}
}

// Register adds a provider. Call Init on the provider first.
// Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p

	for _, series := range p.SupportedSeries() {
		existing := r.seriesIdx[series]
		found := false
		for _, name := range existing {
			if name == info.Name {
				found = true
				break
			}
		}
		if !found {
			r.seriesIdx[series] = append(existing, info.Name)
		}
		if _, ok := r.defaults[series]; !ok {
			r.defaults[series] = info.Name
		}
	}

	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ProvidersFor returns the providers serving a series type, in
// priority order (first = default).
func (r *Registry) ProvidersFor(series SeriesType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.seriesIdx[series]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// SetDefault sets the default provider for a series type.
func (r *Registry) SetDefault(series SeriesType, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}
	if p.Fetcher(series) == nil {
		return &ErrSeriesNotSupported{Provider: providerName, Series: series}
	}

	r.defaults[series] = providerName
	return nil
}

// Fetch retrieves a series using the provider named in params, or the
// default for that series type.
func (r *Registry) Fetch(ctx context.Context, series SeriesType, params QueryParams) (*FetchResult, error) {
	providerName := params[ParamProvider]

	r.mu.RLock()
	if providerName == "" {
		providerName = r.defaults[series]
	}
	p, ok := r.providers[providerName]
	r.mu.RUnlock()

	if !ok || providerName == "" {
		return nil, &ErrProviderNotFound{Name: providerName}
	}

	fetcher := p.Fetcher(series)
	if fetcher == nil {
		return nil, &ErrSeriesNotSupported{Provider: providerName, Series: series}
	}

	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", providerName, series, err)
	}

	result.Provider = providerName
	result.Series = series
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}
	return result, nil
}

// FetchWithFallback tries the preferred provider first, then the other
// providers serving the series, in priority order.
func (r *Registry) FetchWithFallback(ctx context.Context, series SeriesType, params QueryParams) (*FetchResult, error) {
	result, err := r.Fetch(ctx, series, params)
	if err == nil {
		return result, nil
	}

	preferred := params[ParamProvider]
	for _, name := range r.ProvidersFor(series) {
		if name == preferred {
			continue // already tried
		}
		fallbackParams := make(QueryParams, len(params))
		for k, v := range params {
			fallbackParams[k] = v
		}
		fallbackParams[ParamProvider] = name

		result, err = r.Fetch(ctx, series, fallbackParams)
		if err == nil {
			return result, nil
		}
	}

	return nil, fmt.Errorf("all providers failed for series %s: %w", series, err)
}
