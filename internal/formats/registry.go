// Package formats is the static catalog of NDBC measurement categories:
// the column layout, missing-value sentinels, and source addressing rule
// for each feed the engine knows how to ingest. Only the post-2007 era is
// supported, so every category has exactly one layout; a feed whose column
// count disagrees with the registry is a parse error, never reinterpreted.
package formats

import (
	"fmt"
	"sort"
	"time"

	"github.com/driftline/ndbc/internal/models"
)

// MinYear is the first year with archival feeds in the supported layout.
// Earlier years used a different column arrangement.
const MinYear = 2007

// FeedKind distinguishes the rolling recent-window feed from fixed
// historical-period feeds.
type FeedKind string

const (
	FeedContinuous FeedKind = "CONTINUOUS"
	FeedArchival   FeedKind = "ARCHIVAL"
)

// Column describes one data column: its name, declared value kind, and the
// literal tokens that encode "no measurement" in the raw feed. Scale, when
// non-zero, is a factor applied to parsed numeric values; some feeds
// publish scaled units (directional-spread ratios arrive in hundredths).
type Column struct {
	Name      string
	Kind      models.Kind
	Sentinels []string
	Scale     float64
}

// Schema is the immutable layout contract for one measurement category.
type Schema struct {
	Category string
	Name     string

	// TimeColumns is how many leading columns form the timestamp:
	// 4 (no minute), 5 (minute), or 6 (minute and second).
	TimeColumns int
	Columns     []Column

	continuousCode string // realtime2 file extension, "" if not continuous
	archivalCode   string // historical filename letter, "" if not archival
}

// ColumnCount is the exact token count every line of the feed must carry.
func (s Schema) ColumnCount() int { return s.TimeColumns + len(s.Columns) }

// ColumnNames returns the data column names in layout order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Continuous reports whether the category publishes a rolling ~45-day window.
func (s Schema) Continuous() bool { return s.continuousCode != "" }

// Archival reports whether the category publishes per-period historical feeds.
func (s Schema) Archival() bool { return s.archivalCode != "" }

// ContinuousLocator resolves the single rolling-window locator.
func (s Schema) ContinuousLocator(stationID string) (string, error) {
	if !s.Continuous() {
		return "", fmt.Errorf("category %s has no continuous feed", s.Category)
	}
	return fmt.Sprintf("/data/realtime2/%s.%s", stationID, s.continuousCode), nil
}

// YearLocator resolves the locator for one fully-published historical year.
func (s Schema) YearLocator(stationID string, year int) (string, error) {
	if !s.Archival() {
		return "", fmt.Errorf("category %s has no archival feed", s.Category)
	}
	if year < MinYear {
		return "", fmt.Errorf("year %d predates supported era (%d)", year, MinYear)
	}
	return fmt.Sprintf("/view_text_file.php?filename=%s%s%d.txt.gz&dir=data/historical/%s/",
		stationID, s.archivalCode, year, s.Category), nil
}

// monthCodes are the filename letters for the months of the current,
// partially-published year: 1-9 then a, b, c.
var monthCodes = [12]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "a", "b", "c"}

// MonthLocator resolves the locator for one month of the current year.
func (s Schema) MonthLocator(stationID string, year int, month time.Month) (string, error) {
	if !s.Archival() {
		return "", fmt.Errorf("category %s has no archival feed", s.Category)
	}
	if month < time.January || month > time.December {
		return "", fmt.Errorf("invalid month %d", month)
	}
	return fmt.Sprintf("/view_text_file.php?filename=%s%s%d.txt.gz&dir=data/%s/%s/",
		stationID, monthCodes[month-1], year, s.Category, month.String()[:3]), nil
}

// MetadataLocator resolves the station description page.
func MetadataLocator(stationID string) string {
	return "/station_page.php?station=" + stationID
}

// UnknownCategoryError reports a category identifier with no registered schema.
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q", e.Category)
}

// SchemaFor returns the schema registered for a category.
func SchemaFor(category string) (Schema, error) {
	s, ok := registry[category]
	if !ok {
		return Schema{}, &UnknownCategoryError{Category: category}
	}
	return s, nil
}

// Categories returns all registered category identifiers, sorted.
func Categories() []string {
	out := make([]string, 0, len(registry))
	for cat := range registry {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// ContinuousCategories returns the categories with a rolling-window feed, sorted.
func ContinuousCategories() []string {
	var out []string
	for cat, s := range registry {
		if s.Continuous() {
			out = append(out, cat)
		}
	}
	sort.Strings(out)
	return out
}

func col(name string, kind models.Kind, sentinels ...string) Column {
	return Column{Name: name, Kind: kind, Sentinels: sentinels}
}

// spectralColumns is the fixed 47-bin frequency layout of archival spectral
// feeds, one column per frequency in Hz. A non-zero scale applies to every
// bin.
func spectralColumns(scale float64, sentinels ...string) []Column {
	freqs := []string{
		".0200", ".0325", ".0375", ".0425", ".0475", ".0525", ".0575", ".0625",
		".0675", ".0725", ".0775", ".0825", ".0875", ".0925", ".1000", ".1100",
		".1200", ".1300", ".1400", ".1500", ".1600", ".1700", ".1800", ".1900",
		".2000", ".2100", ".2200", ".2300", ".2400", ".2500", ".2600", ".2700",
		".2800", ".2900", ".3000", ".3100", ".3200", ".3300", ".3400", ".3500",
		".3650", ".3850", ".4050", ".4250", ".4450", ".4650", ".4850",
	}
	cols := make([]Column, len(freqs))
	for i, f := range freqs {
		c := col(f, models.KindFloat, sentinels...)
		c.Scale = scale
		cols[i] = c
	}
	return cols
}

var registry = map[string]Schema{
	"stdmet": {
		Category:       "stdmet",
		Name:           "Standard Meteorological Data",
		TimeColumns:    5,
		continuousCode: "txt",
		archivalCode:   "h",
		Columns: []Column{
			col("WDIR", models.KindFloat, "MM", "999"),
			col("WSPD", models.KindFloat, "MM", "99.0"),
			col("GST", models.KindFloat, "MM", "99.0"),
			col("WVHT", models.KindFloat, "MM", "99.0"),
			col("DPD", models.KindFloat, "MM", "99.0"),
			col("APD", models.KindFloat, "MM", "99.0"),
			col("MWD", models.KindFloat, "MM", "999"),
			col("PRES", models.KindFloat, "MM", "9999.0"),
			col("ATMP", models.KindFloat, "MM", "999.0"),
			col("WTMP", models.KindFloat, "MM", "999.0"),
			col("DEWP", models.KindFloat, "MM", "999.0"),
			col("VIS", models.KindFloat, "MM", "99.0"),
			col("PTDY", models.KindFloat, "MM", "99.0"),
			col("TIDE", models.KindFloat, "MM", "99.0"),
		},
	},
	"cwind": {
		Category:       "cwind",
		Name:           "Continuous Winds Data",
		TimeColumns:    5,
		continuousCode: "cwind",
		archivalCode:   "c",
		Columns: []Column{
			col("WDIR", models.KindFloat, "MM", "999"),
			col("WSPD", models.KindFloat, "MM", "99.0"),
			col("GDR", models.KindFloat, "MM", "999"),
			col("GST", models.KindFloat, "MM", "99.0"),
			col("GTIME", models.KindInt, "MM", "9999"),
		},
	},
	"spec": {
		Category:       "spec",
		Name:           "Spectral Wave Summary Data",
		TimeColumns:    5,
		continuousCode: "spec",
		Columns: []Column{
			col("WVHT", models.KindFloat, "MM", "-99"),
			col("SwH", models.KindFloat, "MM", "-99"),
			col("SwP", models.KindFloat, "MM", "-99"),
			col("WWH", models.KindFloat, "MM", "-99"),
			col("WWP", models.KindFloat, "MM", "-99"),
			col("SwD", models.KindString, "MM"),
			col("WWD", models.KindString, "MM"),
			col("STEEPNESS", models.KindString, "MM", "N/A"),
			col("APD", models.KindFloat, "MM", "-99"),
			col("MWD", models.KindFloat, "MM", "999"),
		},
	},
	"supl": {
		Category:       "supl",
		Name:           "Supplemental Measurements Data",
		TimeColumns:    5,
		continuousCode: "supl",
		Columns: []Column{
			col("PRES", models.KindFloat, "MM", "9999.0"),
			col("PTIME", models.KindInt, "MM", "9999"),
			col("WSPD", models.KindFloat, "MM", "99.0"),
			col("WDIR", models.KindFloat, "MM", "999"),
			col("WTIME", models.KindInt, "MM", "9999"),
		},
	},
	"adcp": {
		Category:       "adcp",
		Name:           "Acoustic Doppler Current Profiler Data",
		TimeColumns:    5,
		continuousCode: "adcp",
		archivalCode:   "a",
		Columns: []Column{
			col("DEP01", models.KindFloat, "MM"),
			col("DIR01", models.KindFloat, "MM", "999"),
			col("SPD01", models.KindFloat, "MM", "999"),
		},
	},
	"ocean": {
		Category:     "ocean",
		Name:         "Oceanographic Data",
		TimeColumns:  5,
		archivalCode: "o",
		Columns: []Column{
			col("DEPTH", models.KindFloat, "MM"),
			col("OTMP", models.KindFloat, "MM", "99.0"),
			col("COND", models.KindFloat, "MM", "999.0"),
			col("SAL", models.KindFloat, "MM", "99.0"),
			col("O2%", models.KindFloat, "MM", "999.0"),
			col("O2PPM", models.KindFloat, "MM", "99.0"),
			col("CLCON", models.KindFloat, "MM", "999.0"),
			col("TURB", models.KindFloat, "MM", "999.0"),
			col("PH", models.KindFloat, "MM", "99.0"),
			col("EH", models.KindFloat, "MM", "9999.0"),
		},
	},
	"dart": {
		Category:     "dart",
		Name:         "Water Column Height (DART)",
		TimeColumns:  6,
		archivalCode: "t",
		Columns: []Column{
			col("T", models.KindInt, "MM"),
			col("HEIGHT", models.KindFloat, "MM", "9999.0"),
		},
	},
	"swden": {
		Category:     "swden",
		Name:         "Spectral Wave Density",
		TimeColumns:  5,
		archivalCode: "w",
		Columns:      spectralColumns(0, "MM", "999.0"),
	},
	"swdir": {
		Category:     "swdir",
		Name:         "Spectral Wave (alpha1) Direction",
		TimeColumns:  5,
		archivalCode: "d",
		Columns:      spectralColumns(0, "MM", "999"),
	},
	"swdir2": {
		Category:     "swdir2",
		Name:         "Spectral Wave (alpha2) Direction",
		TimeColumns:  5,
		archivalCode: "i",
		Columns:      spectralColumns(0, "MM", "999"),
	},
	// r1/r2 directional-spread ratios are published in hundredths.
	"swr1": {
		Category:     "swr1",
		Name:         "Spectral Wave (r1) Directional Spread",
		TimeColumns:  5,
		archivalCode: "j",
		Columns:      spectralColumns(0.01, "MM", "999"),
	},
	"swr2": {
		Category:     "swr2",
		Name:         "Spectral Wave (r2) Directional Spread",
		TimeColumns:  5,
		archivalCode: "k",
		Columns:      spectralColumns(0.01, "MM", "999"),
	},
}
