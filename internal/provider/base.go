package provider

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/macrolens/liquiditylens/internal/infra"
)

// BaseFetcher provides caching and rate limiting for fetcher
// implementations. Embed it in concrete fetchers.
type BaseFetcher struct {
	series      SeriesType
	description string
	required    []string
	optional    []string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
}

// NewBaseFetcher creates a base fetcher with the given cache TTL and
// rate limit.
func NewBaseFetcher(series SeriesType, desc string, required, optional []string, cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) BaseFetcher {
	return BaseFetcher{
		series:      series,
		description: desc,
		required:    required,
		optional:    optional,
		cache:       infra.NewCache(cacheTTL),
		limiter:     infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

func (b *BaseFetcher) SeriesType() SeriesType    { return b.series }
func (b *BaseFetcher) Description() string       { return b.description }
func (b *BaseFetcher) RequiredParams() []string  { return b.required }
func (b *BaseFetcher) OptionalParams() []string  { return b.optional }

// CacheGet retrieves a value from the fetcher's cache.
func (b *BaseFetcher) CacheGet(key string) (any, bool) {
	return b.cache.Get(key)
}

// CacheSet stores a value in the fetcher's cache.
func (b *BaseFetcher) CacheSet(key string, value any) {
	b.cache.Set(key, value)
}

// RateLimit waits until a request slot is available.
func (b *BaseFetcher) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// CacheKey builds the cache key for this fetcher's series and the
// given params.
func (b *BaseFetcher) CacheKey(params QueryParams) string {
	return CacheKey(b.series, params)
}

// CacheKey builds a deterministic cache key from series type and params.
func CacheKey(series SeriesType, params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		// Routing params and provider-internal params (underscore
		// prefixed) don't change the data.
		if k == ParamProvider || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := string(series)
	for _, k := range keys {
		key += ":" + k + "=" + params[k]
	}
	return key
}

// BaseProvider provides credential handling and fetcher registration
// for provider implementations.
type BaseProvider struct {
	info        Info
	fetchers    map[SeriesType]Fetcher
	credentials map[string]string
}

// NewBaseProvider creates a base provider.
func NewBaseProvider(name, description, website string, creds []Credential) BaseProvider {
	return BaseProvider{
		info: Info{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[SeriesType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() Info { return bp.info }

func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if cred.Required {
			if v, ok := credentials[cred.Name]; !ok || v == "" {
				return &ErrInvalidCredentials{
					Provider: bp.info.Name,
					Detail:   "missing required credential: " + cred.Name,
				}
			}
		}
	}
	bp.credentials = credentials
	return nil
}

func (bp *BaseProvider) Fetcher(series SeriesType) Fetcher {
	return bp.fetchers[series]
}

func (bp *BaseProvider) SupportedSeries() []SeriesType {
	series := make([]SeriesType, 0, len(bp.fetchers))
	for s := range bp.fetchers {
		series = append(series, s)
	}
	return series
}

func (bp *BaseProvider) Ping(ctx context.Context) error {
	return nil // Override in concrete providers.
}

// RegisterFetcher adds a fetcher to this provider.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.SeriesType()] = f
	bp.info.Series = bp.SupportedSeries()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}
