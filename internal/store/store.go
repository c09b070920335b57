// Package store persists datasets keyed by (station id, category). The
// stored artifact round-trips a Dataset exactly; its wire shape is private
// to this package. Backends: DynamoDB, S3, and an in-memory map.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/driftline/ndbc/internal/models"
)

// Store loads and saves one named dataset per (station, category) pair.
// Load returns (nil, nil) when no dataset has been saved. A save replaces
// the stored dataset whole; partial writes never happen.
type Store interface {
	Load(ctx context.Context, stationID, category string) (*models.Dataset, error)
	Save(ctx context.Context, stationID, category string, ds *models.Dataset) error
}

// StoreError is a fatal persistence failure, surfaced to the caller.
type StoreError struct {
	Op        string // "load" or "save"
	StationID string
	Category  string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s/%s: %v", e.Op, e.StationID, e.Category, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// datasetRecord is the backend-shared wire shape of a dataset.
type datasetRecord struct {
	StationID   string      `json:"stationId" dynamodbav:"stationId"`
	Category    string      `json:"category" dynamodbav:"category"`
	Columns     []string    `json:"columns" dynamodbav:"columns"`
	Rows        []rowRecord `json:"rows" dynamodbav:"rows"`
	LastUpdated int64       `json:"lastUpdated" dynamodbav:"lastUpdated"`
}

type rowRecord struct {
	Time  int64        `json:"t" dynamodbav:"t"` // unix seconds, UTC
	Cells []cellRecord `json:"c" dynamodbav:"c"`
}

type cellRecord struct {
	Kind    uint8   `json:"k" dynamodbav:"k"`
	Missing bool    `json:"m,omitempty" dynamodbav:"m"`
	F       float64 `json:"f,omitempty" dynamodbav:"f"`
	I       int64   `json:"i,omitempty" dynamodbav:"i"`
	S       string  `json:"s,omitempty" dynamodbav:"s"`
}

func encodeDataset(ds *models.Dataset, lastUpdated int64) datasetRecord {
	rec := datasetRecord{
		StationID:   ds.StationID,
		Category:    ds.Category,
		Columns:     ds.Columns,
		Rows:        make([]rowRecord, len(ds.Rows)),
		LastUpdated: lastUpdated,
	}
	for i, row := range ds.Rows {
		cells := make([]cellRecord, len(row.Values))
		for j, v := range row.Values {
			cells[j] = encodeValue(v)
		}
		rec.Rows[i] = rowRecord{Time: row.Time.Unix(), Cells: cells}
	}
	return rec
}

func encodeValue(v models.Value) cellRecord {
	cell := cellRecord{Kind: uint8(v.Kind()), Missing: v.IsMissing()}
	if f, ok := v.AsFloat(); ok {
		cell.F = f
	}
	if i, ok := v.AsInt(); ok {
		cell.I = i
	}
	if s, ok := v.AsText(); ok {
		cell.S = s
	}
	return cell
}

func (rec datasetRecord) decode() *models.Dataset {
	ds := &models.Dataset{
		StationID: rec.StationID,
		Category:  rec.Category,
		Columns:   rec.Columns,
		Rows:      make([]models.Row, len(rec.Rows)),
	}
	for i, row := range rec.Rows {
		values := make([]models.Value, len(row.Cells))
		for j, cell := range row.Cells {
			values[j] = cell.decode()
		}
		ds.Rows[i] = models.Row{
			Time:   time.Unix(row.Time, 0).UTC(),
			Values: values,
		}
	}
	return ds
}

func (cell cellRecord) decode() models.Value {
	kind := models.Kind(cell.Kind)
	if cell.Missing {
		return models.Missing(kind)
	}
	switch kind {
	case models.KindFloat:
		return models.Float(cell.F)
	case models.KindInt:
		return models.Int(cell.I)
	default:
		return models.Text(cell.S)
	}
}
