// Package api shapes service results into API Gateway responses. Every
// response carries a responseType discriminator so clients can dispatch
// without inspecting the status code.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/driftline/ndbc/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type DatasetResponse struct {
	APIResponse
	StationID string       `json:"stationId"`
	Category  string       `json:"category"`
	Columns   []string     `json:"columns"`
	Rows      []DatasetRow `json:"rows"`
	Skipped   int          `json:"skippedRows"`
}

type DatasetRow struct {
	Time   time.Time      `json:"time"`
	Values []models.Value `json:"values"`
}

type MetadataResponse struct {
	APIResponse
	Metadata models.StationMetadata `json:"metadata"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewDatasetResponse(ds *models.Dataset, skipped int) *DatasetResponse {
	rows := make([]DatasetRow, ds.Len())
	for i, row := range ds.Rows {
		rows[i] = DatasetRow{Time: row.Time, Values: row.Values}
	}
	return &DatasetResponse{
		APIResponse: APIResponse{ResponseType: "dataset"},
		StationID:   ds.StationID,
		Category:    ds.Category,
		Columns:     ds.Columns,
		Rows:        rows,
		Skipped:     skipped,
	}
}

func NewMetadataResponse(meta models.StationMetadata) *MetadataResponse {
	return &MetadataResponse{
		APIResponse: APIResponse{ResponseType: "metadata"},
		Metadata:    meta,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}, nil
}

// Parameter parsing helpers

// ParseStationID extracts and normalizes the stationId query parameter.
// Station identifiers are case-insensitive on the provider side; lowercase
// is the canonical form in feed addresses.
func ParseStationID(params map[string]string) (string, error) {
	id, ok := params["stationId"]
	if !ok || strings.TrimSpace(id) == "" {
		return "", MissingParameterError{Name: "stationId"}
	}
	return strings.ToLower(strings.TrimSpace(id)), nil
}

// ParseYears extracts the optional startYear/endYear pair. Absent
// parameters return zero years; the service applies its own defaults.
func ParseYears(params map[string]string) (int, int, error) {
	start, err := parseOptionalInt(params, "startYear")
	if err != nil {
		return 0, 0, err
	}
	end, err := parseOptionalInt(params, "endYear")
	if err != nil {
		return 0, 0, err
	}
	if start != 0 && end != 0 && end < start {
		return 0, 0, InvalidParameterError{Name: "endYear", Value: params["endYear"]}
	}
	return start, end, nil
}

func parseOptionalInt(params map[string]string, name string) (int, error) {
	raw, ok := params[name]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, InvalidParameterError{Name: name, Value: raw}
	}
	return n, nil
}

type MissingParameterError struct {
	Name string
}

func (e MissingParameterError) Error() string {
	return "missing required parameter: " + e.Name
}

type InvalidParameterError struct {
	Name  string
	Value string
}

func (e InvalidParameterError) Error() string {
	return "invalid value for parameter " + e.Name + ": " + e.Value
}
