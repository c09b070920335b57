// Package parse converts raw NDBC text feeds into typed rows and station
// metadata. Parsing prefers partial success with diagnostics over total
// failure: a malformed line is skipped and counted, never aborting the feed.
package parse

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/driftline/ndbc/internal/formats"
	"github.com/driftline/ndbc/internal/models"
)

// Result is a parsed feed: rows in encounter order plus the number of lines
// skipped as malformed. The parser does not sort; ordering is the merge
// engine's contract.
type Result struct {
	Rows    []models.Row
	Skipped int
}

// maxHeaderLines is how many leading header/unit lines a feed may carry.
const maxHeaderLines = 2

// ParseTable converts one raw text feed into typed rows using the schema's
// column layout. Header lines (first token non-numeric) are validated
// against the layout's column count and discarded. Data lines must carry
// exactly the layout's token count; a line that doesn't, or whose tokens
// fail their declared cast, is skipped and counted.
func ParseTable(raw []byte, schema formats.Schema) (Result, error) {
	var res Result
	want := schema.ColumnCount()

	headers := 0
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)

		if headers < maxHeaderLines && len(res.Rows) == 0 && res.Skipped == 0 && isHeaderLine(tokens[0]) {
			if len(tokens) != want {
				return Result{}, &SchemaMismatchError{
					Category: schema.Category,
					Want:     want,
					Got:      len(tokens),
					Sample:   line,
				}
			}
			headers++
			continue
		}

		if len(tokens) != want {
			log.Warn().
				Str("category", schema.Category).
				Int("want", want).
				Int("got", len(tokens)).
				Msg("Skipping malformed row")
			res.Skipped++
			continue
		}

		row, ok := parseRow(tokens, schema)
		if !ok {
			log.Warn().
				Str("category", schema.Category).
				Str("line", line).
				Msg("Skipping row with unparseable tokens")
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

// isHeaderLine reports whether a line's first token marks a header or unit
// line rather than data. Data lines always start with a numeric year.
func isHeaderLine(first string) bool {
	if strings.HasPrefix(first, "#") {
		return true
	}
	_, err := strconv.ParseFloat(first, 64)
	return err != nil
}

func parseRow(tokens []string, schema formats.Schema) (models.Row, bool) {
	ts, ok := parseTimestamp(tokens[:schema.TimeColumns])
	if !ok {
		return models.Row{}, false
	}

	values := make([]models.Value, len(schema.Columns))
	for i, column := range schema.Columns {
		v, ok := parseValue(tokens[schema.TimeColumns+i], column)
		if !ok {
			return models.Row{}, false
		}
		values[i] = v
	}

	return models.Row{Time: ts, Values: values}, true
}

// parseTimestamp combines the leading time columns (year month day hour,
// then minute and second where the layout has them) into a UTC timestamp.
// Minute defaults to 0 for 4-column layouts.
func parseTimestamp(tokens []string) (time.Time, bool) {
	parts := make([]int, len(tokens))
	for i, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = n
	}

	minute, second := 0, 0
	if len(parts) >= 5 {
		minute = parts[4]
	}
	if len(parts) >= 6 {
		second = parts[5]
	}
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], minute, second, 0, time.UTC), true
}

// parseValue casts one token to the column's declared kind, mapping any of
// the column's sentinels to the missing value. Sentinels match by literal
// token or numeric equality, so "99.00" hits a "99.0" sentinel but a column
// whose sentinel is "999" still parses a real 99.0. Sentinels are matched
// against the raw published value; the column's scale applies afterwards.
func parseValue(token string, column formats.Column) (models.Value, bool) {
	for _, sentinel := range column.Sentinels {
		if token == sentinel {
			return models.Missing(column.Kind), true
		}
	}

	switch column.Kind {
	case models.KindFloat:
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return models.Value{}, false
		}
		if matchesNumericSentinel(f, column.Sentinels) {
			return models.Missing(column.Kind), true
		}
		if column.Scale != 0 {
			f *= column.Scale
		}
		return models.Float(f), true
	case models.KindInt:
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return models.Value{}, false
		}
		if matchesNumericSentinel(float64(n), column.Sentinels) {
			return models.Missing(column.Kind), true
		}
		return models.Int(n), true
	default:
		return models.Text(token), true
	}
}

func matchesNumericSentinel(v float64, sentinels []string) bool {
	for _, sentinel := range sentinels {
		s, err := strconv.ParseFloat(sentinel, 64)
		if err != nil {
			continue
		}
		if v == s {
			return true
		}
	}
	return false
}
