package parse

import "fmt"

// SchemaMismatchError reports a feed whose header carries a different column
// count than the registered layout. The column contract is strict: a layout
// change upstream is a breaking error, not a best-effort reparse.
type SchemaMismatchError struct {
	Category string
	Want     int
	Got      int
	Sample   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch for %s: header has %d columns, layout has %d (sample: %q)",
		e.Category, e.Got, e.Want, e.Sample)
}

// MetadataParseError reports one metadata field that could not be parsed.
// Other fields of the same block are still extracted independently.
type MetadataParseError struct {
	Field string
	Text  string
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("parsing metadata field %s from %q", e.Field, e.Text)
}
