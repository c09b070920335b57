package models

// Unknown marks a descriptive attribute the station feed did not carry.
// Absent fields are never silently omitted; they hold this marker.
const Unknown = "unknown"

// StationMetadata describes one station. Built once at station construction
// and immutable afterward. Coordinates are signed decimal degrees (north and
// east positive); nil means the feed had no parseable location.
type StationMetadata struct {
	StationID   string   `json:"stationId"`
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	TimeZone    string   `json:"timeZone"`
	Owner       string   `json:"owner"`
	StationType string   `json:"stationType"`
	Notes       string   `json:"notes"`
}
