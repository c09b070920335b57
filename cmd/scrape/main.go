// Command scrape runs the ingestion flow from a shell: fetch the realtime
// and/or historical feeds for one or more stations, merge with whatever is
// already persisted, and save. Intended for backfills and cron-style runs
// outside the Lambda path.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/driftline/ndbc/internal/buoy"
	"github.com/driftline/ndbc/internal/cache"
	"github.com/driftline/ndbc/internal/config"
	"github.com/driftline/ndbc/internal/formats"
	"github.com/driftline/ndbc/internal/observability"
	"github.com/driftline/ndbc/internal/store"
	"github.com/driftline/ndbc/pkg/http/client"
)

func main() {
	stations := flag.String("stations", "", "comma-separated station identifiers (required)")
	categories := flag.String("categories", "", "comma-separated categories (default: all for the mode)")
	mode := flag.String("mode", "realtime", "realtime, historical, or both")
	startYear := flag.Int("start-year", 0, "first archival year (historical mode, default: all published)")
	endYear := flag.Int("end-year", 0, "last archival year (historical mode)")
	backend := flag.String("store", "", "dataset store: dynamo, s3, or memory (default: from env)")
	flag.Parse()

	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()
	if *backend != "" {
		cfg.StoreBackend = *backend
	}

	stationIDs := splitList(*stations)
	if len(stationIDs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := newService(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	periods := buoy.PeriodRange(*startYear, *endYear, time.Now().UTC())

	cats := splitList(*categories)
	for _, category := range cats {
		if _, err := formats.SchemaFor(category); err != nil {
			log.Fatal().Err(err).Msg("Unknown category")
		}
	}

	failed := false
	for _, stationID := range stationIDs {
		stationID = strings.ToLower(stationID)
		if *mode == "realtime" || *mode == "both" {
			if err := service.SaveRealtime(ctx, stationID, cats); err != nil {
				log.Error().Err(err).Str("station_id", stationID).Msg("Realtime scrape failed")
				failed = true
			}
		}
		if *mode == "historical" || *mode == "both" {
			if err := service.SaveHistorical(ctx, stationID, cats, periods); err != nil {
				log.Error().Err(err).Str("station_id", stationID).Msg("Historical scrape failed")
				failed = true
			}
		}
	}

	if failed {
		os.Exit(1)
	}
	log.Info().
		Int("stations", len(stationIDs)).
		Str("mode", *mode).
		Msg("Scrape complete")
}

func newService(ctx context.Context, cfg *config.Config) (buoy.DataService, error) {
	backing, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cacheCfg := config.GetCacheConfig()
	datasets, err := cache.NewDatasetCache(backing, cacheCfg.DatasetLRUSize, cacheCfg.GetDatasetLRUTTL())
	if err != nil {
		return nil, err
	}

	httpClient := client.New(client.Options{
		BaseURL:    cfg.NDBCBaseURL,
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.MaxRetries,
	})

	return buoy.NewService(
		httpClient,
		datasets,
		cache.NewMetadataCache(cacheCfg.GetMetadataTTL()),
		observability.NewMetrics(),
		cfg.FetchWorkers,
	), nil
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "s3":
		s3Client, err := store.NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return store.NewS3Store(s3Client, cfg.S3Bucket), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		dynamoClient, err := store.NewDynamoClient(ctx, cfg.DynamoEndpoint)
		if err != nil {
			return nil, err
		}
		return store.NewDynamoStore(dynamoClient, cfg.DatasetsTable), nil
	}
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
