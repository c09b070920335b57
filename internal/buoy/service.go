// Package buoy binds a station identifier to its metadata and datasets and
// orchestrates the fetch, parse, merge, persist flow for each measurement
// category. The service holds no mutable dataset state of its own; every
// operation produces new immutable values, so independent (station,
// category) requests run concurrently without coordination.
package buoy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/driftline/ndbc/internal/cache"
	"github.com/driftline/ndbc/internal/formats"
	"github.com/driftline/ndbc/internal/merge"
	"github.com/driftline/ndbc/internal/models"
	"github.com/driftline/ndbc/internal/observability"
	"github.com/driftline/ndbc/internal/parse"
	"github.com/driftline/ndbc/pkg/http/client"
)

const defaultWorkers = 4

var _ DataService = (*Service)(nil)

// Service implements DataService against the NDBC feeds.
type Service struct {
	httpClient client.Interface
	datasets   *cache.DatasetCache
	metadata   *cache.MetadataCache
	metrics    *observability.Metrics
	workers    int
}

func NewService(httpClient client.Interface, datasets *cache.DatasetCache,
	metadata *cache.MetadataCache, metrics *observability.Metrics, workers int) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Service{
		httpClient: httpClient,
		datasets:   datasets,
		metadata:   metadata,
		metrics:    metrics,
		workers:    workers,
	}
}

// GetMetadata fetches and parses a station's description block, cached with
// a TTL. A missing label yields the unknown marker; only malformed
// coordinate text is reported, and it never blocks the other fields.
func (s *Service) GetMetadata(ctx context.Context, stationID string) (*models.StationMetadata, error) {
	if cached := s.metadata.Get(stationID); cached != nil {
		log.Debug().Str("station_id", stationID).Msg("Cache HIT for station metadata")
		return cached, nil
	}

	resp, err := s.httpClient.Get(ctx, formats.MetadataLocator(stationID))
	if err != nil {
		return nil, fmt.Errorf("fetching station metadata: %w", err)
	}

	meta, err := parse.ParseMetadata(string(resp.Body))
	if err != nil {
		var mpe *parse.MetadataParseError
		if !errors.As(err, &mpe) {
			return nil, fmt.Errorf("parsing station metadata: %w", err)
		}
		log.Warn().Err(err).Str("station_id", stationID).Msg("Metadata field unparseable, kept unknown")
	}
	if meta.StationID == models.Unknown {
		meta.StationID = stationID
	}

	s.metadata.Set(stationID, meta)
	return &meta, nil
}

// GetRealtime re-fetches the rolling recent window for a category and merges
// it with the persisted copy, if any. The persisted dataset is never
// touched: the merged result is returned, not written (SaveRealtime writes).
func (s *Service) GetRealtime(ctx context.Context, stationID, category string) (*DatasetResult, error) {
	schema, err := formats.SchemaFor(category)
	if err != nil {
		return nil, err
	}
	locator, err := schema.ContinuousLocator(stationID)
	if err != nil {
		return nil, err
	}

	res, err := s.fetchFeed(ctx, schema, locator)
	if err != nil {
		return nil, err
	}
	incoming := s.newDataset(stationID, schema, res.Rows)

	existing, err := s.datasets.Get(ctx, stationID, category)
	if err != nil {
		return nil, err
	}

	merged := merge.Merge(existing, incoming)
	s.metrics.MergedRows.Observe(float64(merged.Len()))
	return &DatasetResult{Dataset: merged, Skipped: res.Skipped}, nil
}

// SaveRealtime runs the realtime flow for each category and persists the
// merged result. Nil or empty categories means every continuous category.
// Categories are fetched through the bounded worker pool; a failure in one
// category never corrupts another's persisted dataset.
func (s *Service) SaveRealtime(ctx context.Context, stationID string, categories []string) error {
	if len(categories) == 0 {
		categories = formats.ContinuousCategories()
	}

	errs := s.forEachCategory(ctx, categories, func(ctx context.Context, category string) error {
		result, err := s.GetRealtime(ctx, stationID, category)
		if err != nil {
			return fmt.Errorf("category %s: %w", category, err)
		}
		if err := s.datasets.Put(ctx, stationID, category, result.Dataset); err != nil {
			return fmt.Errorf("category %s: %w", category, err)
		}
		s.metrics.DatasetsSaved.Inc()
		log.Info().
			Str("station_id", stationID).
			Str("category", category).
			Int("rows", result.Dataset.Len()).
			Int("skipped", result.Skipped).
			Msg("Saved realtime dataset")
		return nil
	})
	return errors.Join(errs...)
}

// GetHistorical fetches the archival feeds for the given periods, parses
// each, and folds them through the merge engine in chronological order.
// Nil periods means every period since the first supported year. Periods
// the provider never published are skipped; any other fetch failure aborts.
func (s *Service) GetHistorical(ctx context.Context, stationID, category string, periods []Period) (*DatasetResult, error) {
	schema, err := formats.SchemaFor(category)
	if err != nil {
		return nil, err
	}
	if !schema.Archival() {
		return nil, fmt.Errorf("category %s has no archival feed", category)
	}
	if len(periods) == 0 {
		periods = PeriodsThrough(time.Now().UTC())
	}

	results, err := s.fetchPeriods(ctx, schema, stationID, periods)
	if err != nil {
		return nil, err
	}

	merged := &models.Dataset{StationID: stationID, Category: category, Columns: schema.ColumnNames()}
	skipped := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		merged = merge.Merge(merged, s.newDataset(stationID, schema, res.Rows))
		skipped += res.Skipped
	}
	s.metrics.MergedRows.Observe(float64(merged.Len()))
	return &DatasetResult{Dataset: merged, Skipped: skipped}, nil
}

// SaveHistorical runs the historical flow for each category and persists
// the merged results. Nil or empty categories means every archival category.
func (s *Service) SaveHistorical(ctx context.Context, stationID string, categories []string, periods []Period) error {
	if len(categories) == 0 {
		for _, category := range formats.Categories() {
			if schema, err := formats.SchemaFor(category); err == nil && schema.Archival() {
				categories = append(categories, category)
			}
		}
	}

	var errs []error
	for _, category := range categories {
		result, err := s.GetHistorical(ctx, stationID, category, periods)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", category, err))
			continue
		}
		if err := s.datasets.Put(ctx, stationID, category, result.Dataset); err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", category, err))
			continue
		}
		s.metrics.DatasetsSaved.Inc()
		log.Info().
			Str("station_id", stationID).
			Str("category", category).
			Int("rows", result.Dataset.Len()).
			Int("skipped", result.Skipped).
			Msg("Saved historical dataset")
	}
	return errors.Join(errs...)
}

// Load reads a previously persisted dataset without fetching. Returns
// (nil, nil) when nothing has been saved for the pair.
func (s *Service) Load(ctx context.Context, stationID, category string) (*models.Dataset, error) {
	if _, err := formats.SchemaFor(category); err != nil {
		return nil, err
	}
	return s.datasets.Get(ctx, stationID, category)
}

// fetchFeed fetches one locator and parses it against the schema. An empty
// response body is a fetch failure, not an empty dataset: the provider
// serves a populated file or nothing.
func (s *Service) fetchFeed(ctx context.Context, schema formats.Schema, locator string) (*parse.Result, error) {
	start := time.Now()
	resp, err := s.httpClient.Get(ctx, locator)
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if client.IsNotFound(err) {
			outcome = "not_found"
		}
		s.metrics.FetchRequests.WithLabelValues(schema.Category, outcome).Inc()
		return nil, err
	}
	if len(resp.Body) == 0 {
		s.metrics.FetchRequests.WithLabelValues(schema.Category, "not_found").Inc()
		return nil, &client.FetchError{Kind: client.FetchNotFound, URL: locator,
			Err: errors.New("empty response body")}
	}
	s.metrics.FetchRequests.WithLabelValues(schema.Category, "success").Inc()

	res, err := parse.ParseTable(resp.Body, schema)
	if err != nil {
		var sme *parse.SchemaMismatchError
		if errors.As(err, &sme) {
			log.Error().
				Str("category", schema.Category).
				Str("sample", sme.Sample).
				Msg("Feed layout drifted from registered schema")
		}
		return nil, err
	}

	s.metrics.RowsParsed.Add(float64(len(res.Rows)))
	s.metrics.RowsSkipped.Add(float64(res.Skipped))
	if res.Skipped > 0 {
		log.Warn().
			Str("category", schema.Category).
			Int("skipped", res.Skipped).
			Int("rows", len(res.Rows)).
			Msg("Feed contained malformed rows")
	}
	return &res, nil
}

// fetchPeriods fetches every period's feed through the bounded worker pool,
// preserving period order in the result slice. A NotFound period yields a
// nil slot; any other error cancels the remaining fetches.
func (s *Service) fetchPeriods(ctx context.Context, schema formats.Schema, stationID string, periods []Period) ([]*parse.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index  int
		period Period
	}
	work := make(chan job, len(periods))
	errs := make(chan error, len(periods))
	results := make([]*parse.Result, len(periods))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				if ctx.Err() != nil {
					return
				}
				locator, err := j.period.Locator(schema, stationID)
				if err != nil {
					errs <- err
					cancel()
					return
				}
				res, err := s.fetchFeed(ctx, schema, locator)
				if err != nil {
					if client.IsNotFound(err) {
						log.Debug().
							Str("station_id", stationID).
							Str("category", schema.Category).
							Stringer("period", j.period).
							Msg("No feed published for period")
						continue
					}
					errs <- fmt.Errorf("period %s: %w", j.period, err)
					cancel()
					return
				}
				results[j.index] = res
			}
		}()
	}

	for i, p := range periods {
		work <- job{index: i, period: p}
	}
	close(work)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	return results, nil
}

// forEachCategory runs fn for every category through the worker pool and
// collects the per-category errors.
func (s *Service) forEachCategory(ctx context.Context, categories []string, fn func(context.Context, string) error) []error {
	work := make(chan string, len(categories))
	errCh := make(chan error, len(categories))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for category := range work {
				if ctx.Err() != nil {
					errCh <- ctx.Err()
					return
				}
				if err := fn(ctx, category); err != nil {
					errCh <- err
				}
			}
		}()
	}

	for _, category := range categories {
		work <- category
	}
	close(work)
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errs
}

func (s *Service) newDataset(stationID string, schema formats.Schema, rows []models.Row) *models.Dataset {
	return &models.Dataset{
		StationID: stationID,
		Category:  schema.Category,
		Columns:   schema.ColumnNames(),
		Rows:      rows,
	}
}
