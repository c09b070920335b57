package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/driftline/ndbc/internal/models"
)

// coordsPattern matches the "D.DDD N/S, D.DDD E/W" textual form stations
// publish for their location.
var coordsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([NS])[,\s]+(\d+(?:\.\d+)?)\s*([EW])`)

// metadataLabels maps the fixed labels of a station description block to
// setters on the metadata being built. Longer labels come first so
// "Station Name:" never matches as "Name:".
var metadataLabels = []struct {
	label string
	set   func(*models.StationMetadata, string)
}{
	{"Station Name:", func(m *models.StationMetadata, v string) { m.Name = v }},
	{"Station Type:", func(m *models.StationMetadata, v string) { m.StationType = v }},
	{"Station ID:", func(m *models.StationMetadata, v string) { m.StationID = v }},
	{"Time Zone:", func(m *models.StationMetadata, v string) { m.TimeZone = v }},
	{"Location:", func(m *models.StationMetadata, v string) {}}, // handled separately
	{"Owner:", func(m *models.StationMetadata, v string) { m.Owner = v }},
	{"Name:", func(m *models.StationMetadata, v string) { m.Name = v }},
	{"Type:", func(m *models.StationMetadata, v string) { m.StationType = v }},
	{"Notes:", func(m *models.StationMetadata, v string) { m.Notes = v }},
}

// ParseMetadata extracts a station's descriptive attributes from its
// free-form description block. A label not found yields the Unknown marker,
// never an error. Malformed coordinate text returns the metadata with nil
// coordinates alongside a MetadataParseError for that field only; all other
// fields are extracted independently.
func ParseMetadata(raw string) (models.StationMetadata, error) {
	meta := models.StationMetadata{
		StationID:   models.Unknown,
		Name:        models.Unknown,
		TimeZone:    models.Unknown,
		Owner:       models.Unknown,
		StationType: models.Unknown,
		Notes:       models.Unknown,
	}

	var coordErr error
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		for _, entry := range metadataLabels {
			if !strings.HasPrefix(line, entry.label) {
				continue
			}
			value := strings.TrimSpace(line[len(entry.label):])
			if value == "" {
				break
			}
			if entry.label == "Location:" {
				lat, lon, err := parseCoordinates(value)
				if err != nil {
					coordErr = err
				} else {
					meta.Latitude, meta.Longitude = &lat, &lon
				}
				break
			}
			entry.set(&meta, value)
			break
		}
	}

	return meta, coordErr
}

// parseCoordinates converts "D.DDD N/S, D.DDD E/W" text to signed decimal
// degrees, latitude positive north and longitude positive east.
func parseCoordinates(text string) (float64, float64, error) {
	m := coordsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, &MetadataParseError{Field: "location", Text: text}
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, &MetadataParseError{Field: "location", Text: text}
	}
	lon, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, 0, &MetadataParseError{Field: "location", Text: text}
	}

	if m[2] == "S" {
		lat = -lat
	}
	if m[4] == "W" {
		lon = -lon
	}
	if lat > 90 || lon > 180 {
		return 0, 0, &MetadataParseError{Field: "location", Text: text}
	}
	return lat, lon, nil
}
