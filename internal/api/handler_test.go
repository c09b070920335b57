package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/ndbc/internal/models"
)

func TestSuccessDatasetResponse(t *testing.T) {
	ds := &models.Dataset{
		StationID: "41001",
		Category:  "cwind",
		Columns:   []string{"WDIR", "WSPD"},
		Rows: []models.Row{
			{
				Time:   time.Date(2024, 1, 15, 10, 40, 0, 0, time.UTC),
				Values: []models.Value{models.Missing(models.KindFloat), models.Float(9.3)},
			},
		},
	}

	resp, err := Success(NewDatasetResponse(ds, 2))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var decoded struct {
		ResponseType string   `json:"responseType"`
		StationID    string   `json:"stationId"`
		Category     string   `json:"category"`
		Columns      []string `json:"columns"`
		Rows         []struct {
			Time   time.Time         `json:"time"`
			Values []json.RawMessage `json:"values"`
		} `json:"rows"`
		Skipped int `json:"skippedRows"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))

	assert.Equal(t, "dataset", decoded.ResponseType)
	assert.Equal(t, "41001", decoded.StationID)
	assert.Equal(t, 2, decoded.Skipped)
	require.Len(t, decoded.Rows, 1)
	require.Len(t, decoded.Rows[0].Values, 2)
	assert.Equal(t, "null", string(decoded.Rows[0].Values[0]), "missing encodes as null")
	assert.Equal(t, "9.3", string(decoded.Rows[0].Values[1]))
}

func TestSuccessMetadataResponse(t *testing.T) {
	lat, lon := 34.714, -72.236
	meta := models.StationMetadata{
		StationID: "41001",
		Name:      "EAST HATTERAS",
		Latitude:  &lat,
		Longitude: &lon,
		TimeZone:  models.Unknown,
		Owner:     "NDBC",
	}

	resp, err := Success(NewMetadataResponse(meta))
	require.NoError(t, err)

	var decoded struct {
		ResponseType string                 `json:"responseType"`
		Metadata     models.StationMetadata `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	assert.Equal(t, "metadata", decoded.ResponseType)
	assert.Equal(t, "EAST HATTERAS", decoded.Metadata.Name)
	assert.Equal(t, models.Unknown, decoded.Metadata.TimeZone)
}

func TestErrorResponse(t *testing.T) {
	resp, err := Error("something broke", http.StatusBadRequest)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var decoded ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	assert.Equal(t, "error", decoded.ResponseType)
	assert.Equal(t, "something broke", decoded.Error)
}

func TestParseStationID(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]string
		want    string
		wantErr bool
	}{
		{name: "present", params: map[string]string{"stationId": "41001"}, want: "41001"},
		{name: "uppercase normalized", params: map[string]string{"stationId": "LKWF1"}, want: "lkwf1"},
		{name: "whitespace trimmed", params: map[string]string{"stationId": " 41001 "}, want: "41001"},
		{name: "missing", params: map[string]string{}, wantErr: true},
		{name: "blank", params: map[string]string{"stationId": "  "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStationID(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseYears(t *testing.T) {
	start, end, err := ParseYears(map[string]string{"startYear": "2019", "endYear": "2021"})
	require.NoError(t, err)
	assert.Equal(t, 2019, start)
	assert.Equal(t, 2021, end)

	start, end, err = ParseYears(map[string]string{})
	require.NoError(t, err)
	assert.Zero(t, start)
	assert.Zero(t, end)

	_, _, err = ParseYears(map[string]string{"startYear": "nineteen"})
	assert.Error(t, err)

	_, _, err = ParseYears(map[string]string{"startYear": "2021", "endYear": "2019"})
	assert.Error(t, err)
}
