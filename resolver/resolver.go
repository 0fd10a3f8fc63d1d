/*
Copyright 2025 The QueryComplete Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package resolver turns a classified context into the candidate sets
// the suggestion generator needs, fronting the catalog with a TTL cache,
// a fetch concurrency ceiling, per-fetch timeouts, and an auth breaker.
// Failures degrade per dataset: a resolve returns whatever subset it
// could get alongside the combined error.
package resolver

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/observeql/querycomplete/autocomplete"
	"github.com/observeql/querycomplete/autocomplete/suggest"
	"github.com/observeql/querycomplete/catalog"
)

const (
	// DefaultTTL is how long a fetched candidate set stays warm.
	DefaultTTL = 30 * time.Second
	// DefaultCeiling caps concurrent catalog fetches.
	DefaultCeiling = 5
	// DefaultFetchTimeout bounds a single catalog call.
	DefaultFetchTimeout = 2 * time.Second
)

// Config tunes a Resolver; zero fields fall back to the defaults above.
type Config struct {
	TTL          time.Duration
	Ceiling      int64
	FetchTimeout time.Duration
}

// Resolver is safe for concurrent use. Stop releases the cache's
// expiry goroutine.
type Resolver struct {
	catalog catalog.Catalog
	cache   *ttlcache.Cache[string, []string]
	sem     *semaphore.Weighted

	mu           sync.Mutex
	ttl          time.Duration
	fetchTimeout time.Duration

	authTripped atomic.Bool
}

func New(cat catalog.Catalog, cfg Config) *Resolver {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DefaultCeiling
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []string](cfg.TTL),
		ttlcache.WithDisableTouchOnHit[string, []string](),
	)
	go cache.Start()
	return &Resolver{
		catalog:      cat,
		cache:        cache,
		sem:          semaphore.NewWeighted(cfg.Ceiling),
		ttl:          cfg.TTL,
		fetchTimeout: cfg.FetchTimeout,
	}
}

// dataset is one cacheable fetch: a key, a catalog call, and where the
// result lands in the candidate struct.
type dataset struct {
	key    string
	fetch  func(ctx context.Context) ([]string, error)
	assign func(*suggest.Candidates, []string)
}

// datasetsFor maps a context type onto the fetches it needs. Unknown
// or static-only contexts need none.
func (r *Resolver) datasetsFor(qc autocomplete.QueryContext) []dataset {
	switch qc.Type {
	case autocomplete.MetricNameContext:
		return []dataset{{
			key:    "metrics",
			fetch:  r.catalog.MetricNames,
			assign: func(c *suggest.Candidates, v []string) { c.Metrics = v },
		}}
	case autocomplete.FilterTagKeyContext, autocomplete.GroupingTagContext:
		metric := qc.MetricName
		return []dataset{{
			key:    "tagpairs|" + metric,
			fetch:  func(ctx context.Context) ([]string, error) { return r.catalog.MetricTags(ctx, metric) },
			assign: func(c *suggest.Candidates, v []string) { c.TagPairs = v },
		}}
	case autocomplete.FilterTagValueContext:
		metric, key := qc.MetricName, qc.TagKey
		return []dataset{{
			key:    "tagvalues|" + metric + "|" + key,
			fetch:  func(ctx context.Context) ([]string, error) { return r.catalog.TagValues(ctx, metric, key) },
			assign: func(c *suggest.Candidates, v []string) { c.TagValues = v },
		}}
	case autocomplete.LogsServiceContext:
		return []dataset{{
			key:    "services",
			fetch:  r.catalog.LogsServices,
			assign: func(c *suggest.Candidates, v []string) { c.Services = v },
		}}
	case autocomplete.LogsSourceContext:
		return []dataset{{
			key:    "sources",
			fetch:  r.catalog.LogsSources,
			assign: func(c *suggest.Candidates, v []string) { c.Sources = v },
		}}
	case autocomplete.LogsLevelContext:
		return []dataset{{
			key:    "levels",
			fetch:  r.catalog.LogsLevels,
			assign: func(c *suggest.Candidates, v []string) { c.Levels = v },
		}}
	case autocomplete.LogsHostContext:
		return []dataset{{
			key:    "fieldvalues|host",
			fetch:  func(ctx context.Context) ([]string, error) { return r.catalog.FieldValues(ctx, "host") },
			assign: func(c *suggest.Candidates, v []string) { c.Hosts = v },
		}}
	case autocomplete.LogsEnvContext:
		return []dataset{{
			key:    "fieldvalues|env",
			fetch:  func(ctx context.Context) ([]string, error) { return r.catalog.FieldValues(ctx, "env") },
			assign: func(c *suggest.Candidates, v []string) { c.Envs = v },
		}}
	case autocomplete.LogsSearchContext, autocomplete.LogsFacetNameContext:
		return []dataset{{
			key:    "fields",
			fetch:  r.catalog.LogsFields,
			assign: func(c *suggest.Candidates, v []string) { c.Fields = v },
		}}
	}
	return nil
}

// Resolve fetches every dataset the context needs, concurrently but
// under the ceiling, serving warm datasets from cache. On partial
// failure it returns the candidates it did get together with the
// combined error; callers may still suggest from the partial set.
func (r *Resolver) Resolve(ctx context.Context, qc autocomplete.QueryContext) (suggest.Candidates, error) {
	if r.authTripped.Load() {
		return suggest.Candidates{}, errors.Wrap(catalog.ErrUnauthorized, "resolver: breaker open")
	}

	sets := r.datasetsFor(qc)
	var (
		mu         sync.Mutex
		candidates suggest.Candidates
		fetchErrs  []error
	)

	g := new(errgroup.Group)
	for _, ds := range sets {
		ds := ds
		g.Go(func() error {
			values, err := r.lookup(ctx, ds)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fetchErrs = append(fetchErrs, err)
				return nil
			}
			ds.assign(&candidates, values)
			return nil
		})
	}
	_ = g.Wait()

	if len(fetchErrs) == 0 {
		return candidates, nil
	}
	combined := fetchErrs[0]
	for _, err := range fetchErrs[1:] {
		combined = errors.CombineErrors(combined, err)
	}
	if errors.Is(combined, catalog.ErrUnauthorized) {
		r.authTripped.Store(true)
	}
	return candidates, combined
}

// lookup serves ds from cache or fetches it under the semaphore with
// the per-fetch timeout.
func (r *Resolver) lookup(ctx context.Context, ds dataset) ([]string, error) {
	name := datasetName(ds.key)
	if item := r.cache.Get(ds.key); item != nil {
		cacheHits.WithLabelValues(name).Inc()
		return item.Value(), nil
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		fetches.WithLabelValues(name, "canceled").Inc()
		return nil, errors.Wrapf(err, "resolver: %s", ds.key)
	}
	defer r.sem.Release(1)

	r.mu.Lock()
	timeout, ttl := r.fetchTimeout, r.ttl
	r.mu.Unlock()

	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	values, err := ds.fetch(fctx)
	if errors.Is(err, catalog.ErrNotFound) {
		// the backend does not index this dataset; an empty set is
		// the right answer, not an error banner
		fetches.WithLabelValues(name, "not_found").Inc()
		r.cache.Set(ds.key, nil, ttl)
		return nil, nil
	}
	if err != nil {
		fetches.WithLabelValues(name, "error").Inc()
		return nil, errors.Wrapf(err, "resolver: %s", ds.key)
	}
	fetches.WithLabelValues(name, "ok").Inc()
	r.cache.Set(ds.key, values, ttl)
	return values, nil
}

// Complete proxies a server-side completion under the fetch timeout and
// the same auth breaker.
func (r *Resolver) Complete(ctx context.Context, req catalog.CompleteRequest) (catalog.CompleteResponse, error) {
	if r.authTripped.Load() {
		return catalog.CompleteResponse{}, errors.Wrap(catalog.ErrUnauthorized, "resolver: breaker open")
	}
	r.mu.Lock()
	timeout := r.fetchTimeout
	r.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := r.catalog.Complete(cctx, req)
	if errors.Is(err, catalog.ErrUnauthorized) {
		r.authTripped.Store(true)
	}
	return resp, err
}

// Clear drops every cached dataset.
func (r *Resolver) Clear() {
	r.cache.DeleteAll()
}

// SetTTL changes the TTL applied to subsequent cache fills.
func (r *Resolver) SetTTL(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > 0 {
		r.ttl = d
	}
}

// TTL reports the TTL applied to cache fills.
func (r *Resolver) TTL() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl
}

// AuthTripped reports whether the breaker is open.
func (r *Resolver) AuthTripped() bool {
	return r.authTripped.Load()
}

// RetryAuth closes the breaker so the next resolve hits the backend
// again.
func (r *Resolver) RetryAuth() {
	r.authTripped.Store(false)
}

// Stop shuts down the cache's expiry loop.
func (r *Resolver) Stop() {
	r.cache.Stop()
}

// datasetName strips the scope off a cache key for metric labels.
func datasetName(key string) string {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[:i]
	}
	return key
}
