package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fenilmodi00/meabot-backend/models"
	"github.com/fenilmodi00/meabot-backend/shared"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownDataset is returned for a dataset with no registered source
var ErrUnknownDataset = errors.New("unknown dataset")

// Clock returns the current time; injected so expiry can be tested
type Clock func() time.Time

// FailurePolicy decides what a failed fetch does to the cache
type FailurePolicy int

const (
	// FailurePropagate returns the fetch error to the caller and caches nothing.
	FailurePropagate FailurePolicy = iota
	// FailureCacheEmpty logs the error and caches an empty payload for the
	// normal TTL, so callers see "no data" and the upstream is retried only
	// after expiry.
	FailureCacheEmpty
)

func (p FailurePolicy) String() string {
	switch p {
	case FailureCacheEmpty:
		return "cache_empty"
	default:
		return "propagate"
	}
}

// FetchFunc performs an authoritative read of one dataset
type FetchFunc func(ctx context.Context) ([]models.Record, error)

// DatasetSource registers how a dataset is fetched and cached
type DatasetSource struct {
	Dataset models.Dataset
	TTL     time.Duration
	Policy  FailurePolicy
	Fetch   FetchFunc
}

// CacheEntry represents a cached dataset payload with expiration
type CacheEntry struct {
	Data      []models.Record
	FetchedAt time.Time
	ExpiresAt time.Time
	Degraded  bool
}

// IsExpired checks if the cache entry has expired at now
func (ce *CacheEntry) IsExpired(now time.Time) bool {
	return now.After(ce.ExpiresAt)
}

// DatasetCache is the cache-aside store in front of the spreadsheet.
// An absent or expired entry means an authoritative fetch is required.
// Concurrent misses on one dataset share a single fetch, and entries are
// swapped whole under the lock so readers never see a partial payload.
// Returned slices are shared between callers and must not be modified.
type DatasetCache struct {
	sources map[models.Dataset]DatasetSource
	entries map[models.Dataset]*CacheEntry
	mutex   sync.RWMutex
	group   singleflight.Group
	clock   Clock
	metrics *shared.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
	logger  *logrus.Entry
}

// NewDatasetCache creates a cache over the given sources. A nil clock uses
// time.Now; metrics may be nil.
func NewDatasetCache(clock Clock, metrics *shared.Metrics, sources ...DatasetSource) *DatasetCache {
	if clock == nil {
		clock = time.Now
	}
	dc := &DatasetCache{
		sources: make(map[models.Dataset]DatasetSource, len(sources)),
		entries: make(map[models.Dataset]*CacheEntry, len(sources)),
		clock:   clock,
		metrics: metrics,
		logger:  logrus.WithField("component", "DatasetCache"),
	}
	for _, src := range sources {
		dc.sources[src.Dataset] = src
	}
	return dc
}

// GetOrFetch returns the cached records for dataset, fetching them when the
// entry is absent or expired.
func (dc *DatasetCache) GetOrFetch(ctx context.Context, dataset models.Dataset) ([]models.Record, error) {
	src, ok := dc.sources[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}

	if records, found := dc.lookup(dataset); found {
		dc.hits.Add(1)
		if dc.metrics != nil {
			dc.metrics.CacheHitsTotal.WithLabelValues(string(dataset)).Inc()
		}
		return records, nil
	}

	dc.misses.Add(1)
	if dc.metrics != nil {
		dc.metrics.CacheMissesTotal.WithLabelValues(string(dataset)).Inc()
	}
	return dc.fetchShared(ctx, src, false)
}

// Refresh force-fetches dataset without consulting the current entry. If a
// fetch for the dataset is already in flight, Refresh joins it and returns
// that fetch's result rather than starting a second external read.
func (dc *DatasetCache) Refresh(ctx context.Context, dataset models.Dataset) ([]models.Record, error) {
	src, ok := dc.sources[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}
	return dc.fetchShared(ctx, src, true)
}

// Warmup force-populates every registered dataset. All datasets are
// attempted; the returned error joins the individual failures.
func (dc *DatasetCache) Warmup(ctx context.Context) error {
	var errs []error
	for _, dataset := range models.AllDatasets {
		if _, ok := dc.sources[dataset]; !ok {
			continue
		}
		records, err := dc.Refresh(ctx, dataset)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to warmup %s cache: %w", dataset, err))
			continue
		}
		dc.logger.WithFields(logrus.Fields{
			"dataset": dataset,
			"records": len(records),
		}).Info("Dataset cache warmed")
	}
	return errors.Join(errs...)
}

func (dc *DatasetCache) lookup(dataset models.Dataset) ([]models.Record, bool) {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()

	entry, exists := dc.entries[dataset]
	if !exists || entry.IsExpired(dc.clock()) {
		return nil, false
	}
	return entry.Data, true
}

func (dc *DatasetCache) store(dataset models.Dataset, entry *CacheEntry) {
	dc.mutex.Lock()
	defer dc.mutex.Unlock()
	dc.entries[dataset] = entry
}

// fetchShared runs at most one fetch per dataset at a time. The shared fetch
// ignores cancellation of whichever caller started it but keeps that
// caller's deadline, so a timed-out fetch still ends; each waiter returns as
// soon as its own ctx is done.
func (dc *DatasetCache) fetchShared(ctx context.Context, src DatasetSource, force bool) ([]models.Record, error) {
	flightCtx := context.WithoutCancel(ctx)
	deadline, hasDeadline := ctx.Deadline()
	ch := dc.group.DoChan(string(src.Dataset), func() (interface{}, error) {
		fetchCtx := flightCtx
		if hasDeadline {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithDeadline(flightCtx, deadline)
			defer cancel()
		}
		return dc.fetch(fetchCtx, src, force)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Record), nil
	}
}

func (dc *DatasetCache) fetch(ctx context.Context, src DatasetSource, force bool) ([]models.Record, error) {
	if !force {
		if records, found := dc.lookup(src.Dataset); found {
			return records, nil
		}
	}

	logger := dc.logger.WithFields(logrus.Fields{
		"dataset": src.Dataset,
		"policy":  src.Policy,
		"forced":  force,
	})

	start := time.Now()
	records, err := src.Fetch(ctx)
	elapsed := time.Since(start)
	if dc.metrics != nil {
		dc.metrics.DatasetFetchLatency.WithLabelValues(string(src.Dataset)).Observe(elapsed.Seconds())
	}

	now := dc.clock()
	if err != nil {
		if src.Policy == FailureCacheEmpty {
			logger.WithError(err).Error("Dataset fetch failed, caching empty result")
			dc.store(src.Dataset, &CacheEntry{
				Data:      []models.Record{},
				FetchedAt: now,
				ExpiresAt: now.Add(src.TTL),
				Degraded:  true,
			})
			dc.recordFetch(src.Dataset, "cached_empty", 0)
			return []models.Record{}, nil
		}

		logger.WithError(err).Warn("Dataset fetch failed")
		dc.recordFetch(src.Dataset, "error", -1)
		return nil, shared.WrapError(err, shared.ErrorCategoryNetwork, "DATASET_FETCH_FAILED",
			"DatasetCache", "fetch:"+string(src.Dataset), shared.IsRetryableError(err))
	}

	if records == nil {
		records = []models.Record{}
	}
	dc.store(src.Dataset, &CacheEntry{
		Data:      records,
		FetchedAt: now,
		ExpiresAt: now.Add(src.TTL),
	})
	dc.recordFetch(src.Dataset, "ok", len(records))

	logger.WithFields(logrus.Fields{
		"records":  len(records),
		"duration": elapsed,
		"ttl":      src.TTL,
	}).Debug("Dataset fetched and cached")

	return records, nil
}

func (dc *DatasetCache) recordFetch(dataset models.Dataset, outcome string, records int) {
	if dc.metrics == nil {
		return
	}
	dc.metrics.DatasetFetchesTotal.WithLabelValues(string(dataset), outcome).Inc()
	if records >= 0 {
		dc.metrics.DatasetRecords.WithLabelValues(string(dataset)).Set(float64(records))
	}
}

// DatasetStats describes one cache entry
type DatasetStats struct {
	Dataset   models.Dataset `json:"dataset"`
	Policy    string         `json:"policy"`
	TTL       string         `json:"ttl"`
	Cached    bool           `json:"cached"`
	Expired   bool           `json:"expired"`
	Degraded  bool           `json:"degraded"`
	Records   int            `json:"records"`
	FetchedAt *time.Time     `json:"fetched_at,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

// CacheStats is a point-in-time snapshot of the cache
type CacheStats struct {
	Hits     int64          `json:"hits"`
	Misses   int64          `json:"misses"`
	Datasets []DatasetStats `json:"datasets"`
}

// Stats returns cache statistics
func (dc *DatasetCache) Stats() CacheStats {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()

	now := dc.clock()
	stats := CacheStats{Hits: dc.hits.Load(), Misses: dc.misses.Load()}
	for _, dataset := range models.AllDatasets {
		src, ok := dc.sources[dataset]
		if !ok {
			continue
		}
		ds := DatasetStats{Dataset: dataset, Policy: src.Policy.String(), TTL: src.TTL.String()}
		if entry, exists := dc.entries[dataset]; exists {
			fetchedAt, expiresAt := entry.FetchedAt, entry.ExpiresAt
			ds.Cached = true
			ds.Expired = entry.IsExpired(now)
			ds.Degraded = entry.Degraded
			ds.Records = len(entry.Data)
			ds.FetchedAt = &fetchedAt
			ds.ExpiresAt = &expiresAt
		}
		stats.Datasets = append(stats.Datasets, ds)
	}
	return stats
}

// Exchanges returns the exchange programs in stored order
func (dc *DatasetCache) Exchanges(ctx context.Context) ([]models.Exchange, error) {
	records, err := dc.GetOrFetch(ctx, models.DatasetExchanges)
	if err != nil {
		return nil, err
	}
	out := make([]models.Exchange, len(records))
	for i, r := range records {
		out[i] = models.ExchangeFromRecord(r)
	}
	return out, nil
}

// Internships returns the internships in stored order
func (dc *DatasetCache) Internships(ctx context.Context) ([]models.Internship, error) {
	records, err := dc.GetOrFetch(ctx, models.DatasetInternships)
	if err != nil {
		return nil, err
	}
	out := make([]models.Internship, len(records))
	for i, r := range records {
		out[i] = models.InternshipFromRecord(r)
	}
	return out, nil
}

// DiscountCatalog returns the discounts in stored order together with a
// category index derived from them on this read.
func (dc *DatasetCache) DiscountCatalog(ctx context.Context) ([]models.Discount, *CategoryIndex, error) {
	records, err := dc.GetOrFetch(ctx, models.DatasetDiscounts)
	if err != nil {
		return nil, nil, err
	}
	out := make([]models.Discount, len(records))
	for i, r := range records {
		out[i] = models.DiscountFromRecord(r)
	}
	return out, BuildCategoryIndex(records), nil
}

// SheetFetcher returns a FetchFunc that reads rangeName from store and maps
// the rows with schema
func SheetFetcher(store SheetStore, schema models.Schema, rangeName string) FetchFunc {
	return func(ctx context.Context) ([]models.Record, error) {
		rows, err := store.Get(ctx, rangeName)
		if err != nil {
			return nil, err
		}
		return MapRows(schema, rows), nil
	}
}
