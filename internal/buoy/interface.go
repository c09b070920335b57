package buoy

import (
	"context"

	"github.com/driftline/ndbc/internal/models"
)

// DataService is the produced surface of the engine: typed tabular datasets
// per station and measurement category, plus station metadata.
type DataService interface {
	GetMetadata(ctx context.Context, stationID string) (*models.StationMetadata, error)
	GetRealtime(ctx context.Context, stationID, category string) (*DatasetResult, error)
	GetHistorical(ctx context.Context, stationID, category string, periods []Period) (*DatasetResult, error)
	SaveRealtime(ctx context.Context, stationID string, categories []string) error
	SaveHistorical(ctx context.Context, stationID string, categories []string, periods []Period) error
	Load(ctx context.Context, stationID, category string) (*models.Dataset, error)
}

// DatasetResult is a dataset plus its parse diagnostics: the number of
// malformed feed lines skipped while producing it. A caller always gets a
// (possibly empty) table, never silently dropped data.
type DatasetResult struct {
	Dataset *models.Dataset
	Skipped int
}
