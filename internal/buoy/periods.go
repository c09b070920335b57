package buoy

import (
	"fmt"
	"time"

	"github.com/driftline/ndbc/internal/formats"
)

// Period identifies one archival publication window: a full historical
// year, or one month of the current, partially-published year.
type Period struct {
	Year  int
	Month time.Month // zero for a full-year period
}

func (p Period) String() string {
	if p.Month == 0 {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// Locator resolves the period's feed address for a station and schema.
func (p Period) Locator(schema formats.Schema, stationID string) (string, error) {
	if p.Month == 0 {
		return schema.YearLocator(stationID, p.Year)
	}
	return schema.MonthLocator(stationID, p.Year, p.Month)
}

// PeriodRange enumerates the full-year periods startYear through endYear.
// A zero startYear means no range was requested and yields nil (callers
// fall back to every published period). A zero endYear defaults to the
// last fully-published year, so a lone start year is honored rather than
// silently widened.
func PeriodRange(startYear, endYear int, now time.Time) []Period {
	if startYear == 0 {
		return nil
	}
	if endYear == 0 {
		endYear = now.Year() - 1
	}
	var periods []Period
	for year := startYear; year <= endYear; year++ {
		periods = append(periods, Period{Year: year})
	}
	return periods
}

// PeriodsThrough enumerates every archival period published as of now, in
// chronological order: full years from the first supported year through
// last year, then the already-completed months of the current year.
func PeriodsThrough(now time.Time) []Period {
	var periods []Period
	for year := formats.MinYear; year < now.Year(); year++ {
		periods = append(periods, Period{Year: year})
	}
	for month := time.January; month < now.Month(); month++ {
		periods = append(periods, Period{Year: now.Year(), Month: month})
	}
	return periods
}
