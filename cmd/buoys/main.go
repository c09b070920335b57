package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/driftline/ndbc/internal/api"
	"github.com/driftline/ndbc/internal/buoy"
	"github.com/driftline/ndbc/internal/cache"
	"github.com/driftline/ndbc/internal/config"
	"github.com/driftline/ndbc/internal/formats"
	"github.com/driftline/ndbc/internal/observability"
	"github.com/driftline/ndbc/internal/store"
	"github.com/driftline/ndbc/pkg/http/client"
)

var (
	dataService buoy.DataService
	setupOnce   sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		if cfg.Environment != "local" && cfg.Environment != "development" {
			log.Logger = zerolog.New(os.Stdout).
				With().
				Timestamp().
				Logger()
		}

		log.Info().Str("env", cfg.Environment).Msg("Environment")

		ctx := context.Background()
		backing, err := newStore(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize dataset store")
		}

		cacheCfg := config.GetCacheConfig()
		datasets, err := cache.NewDatasetCache(backing, cacheCfg.DatasetLRUSize, cacheCfg.GetDatasetLRUTTL())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize dataset cache")
		}

		httpClient := client.New(client.Options{
			BaseURL:    cfg.NDBCBaseURL,
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: cfg.MaxRetries,
		})

		dataService = buoy.NewService(
			httpClient,
			datasets,
			cache.NewMetadataCache(cacheCfg.GetMetadataTTL()),
			observability.NewMetrics(),
			cfg.FetchWorkers,
		)
	})
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

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	stationID, err := api.ParseStationID(params)
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	if params["mode"] == "metadata" {
		meta, err := dataService.GetMetadata(ctx, stationID)
		if err != nil {
			log.Error().Err(err).Str("station_id", stationID).Msg("Metadata lookup failed")
			return api.Error("Station metadata unavailable", http.StatusNotFound)
		}
		return api.Success(api.NewMetadataResponse(*meta))
	}

	category, ok := params["category"]
	if !ok {
		return api.Error("missing required parameter: category", http.StatusBadRequest)
	}

	switch params["mode"] {
	case "historical":
		startYear, endYear, err := api.ParseYears(params)
		if err != nil {
			return api.Error(err.Error(), http.StatusBadRequest)
		}
		periods := buoy.PeriodRange(startYear, endYear, time.Now().UTC())
		result, err := dataService.GetHistorical(ctx, stationID, category, periods)
		if err != nil {
			return datasetError(err)
		}
		return api.Success(api.NewDatasetResponse(result.Dataset, result.Skipped))
	case "stored":
		ds, err := dataService.Load(ctx, stationID, category)
		if err != nil {
			return datasetError(err)
		}
		if ds == nil {
			return api.Error("No stored dataset for station and category", http.StatusNotFound)
		}
		return api.Success(api.NewDatasetResponse(ds, 0))
	default:
		result, err := dataService.GetRealtime(ctx, stationID, category)
		if err != nil {
			return datasetError(err)
		}
		return api.Success(api.NewDatasetResponse(result.Dataset, result.Skipped))
	}
}

func datasetError(err error) (events.APIGatewayProxyResponse, error) {
	var unknown *formats.UnknownCategoryError
	switch {
	case errors.As(err, &unknown):
		return api.Error(err.Error(), http.StatusBadRequest)
	case client.IsNotFound(err):
		return api.Error("Feed not published for station", http.StatusNotFound)
	default:
		log.Error().Err(err).Msg("Dataset request failed")
		return api.Error("Error fetching dataset", http.StatusInternalServerError)
	}
}

func main() {
	lambda.Start(handleRequest)
}
