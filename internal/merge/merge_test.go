package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/ndbc/internal/models"
)

func row(t time.Time, wspd float64) models.Row {
	return models.Row{Time: t, Values: []models.Value{models.Float(wspd)}}
}

func dataset(rows ...models.Row) *models.Dataset {
	return &models.Dataset{
		StationID: "41001",
		Category:  "cwind",
		Columns:   []string{"WSPD"},
		Rows:      rows,
	}
}

var (
	t0 = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(10 * time.Minute)
	t2 = t0.Add(20 * time.Minute)
	t3 = t0.Add(30 * time.Minute)
)

func TestMergeUnion(t *testing.T) {
	existing := dataset(row(t0, 1.0), row(t1, 2.0))
	incoming := dataset(row(t2, 3.0), row(t3, 4.0))

	merged := Merge(existing, incoming)

	require.Equal(t, 4, merged.Len())
	for i, want := range []time.Time{t0, t1, t2, t3} {
		assert.Equal(t, want, merged.Rows[i].Time)
	}
}

func TestMergeIncomingWinsOverlap(t *testing.T) {
	existing := dataset(row(t0, 1.0), row(t1, 2.0))
	incoming := dataset(row(t1, 20.0), row(t2, 3.0))

	merged := Merge(existing, incoming)

	require.Equal(t, 3, merged.Len())
	got, ok := merged.At(t1)
	require.True(t, ok)
	wspd, ok := got.Values[0].AsFloat()
	require.True(t, ok)
	assert.Equal(t, 20.0, wspd, "incoming row replaces existing at the same timestamp")
}

func TestMergeIncomingWinsWholesale(t *testing.T) {
	// A re-fetched row replaces the stored one entirely, even when the new
	// row has a missing cell where the old one had a value.
	existing := dataset(models.Row{Time: t0, Values: []models.Value{models.Float(5.0)}})
	incoming := dataset(models.Row{Time: t0, Values: []models.Value{models.Missing(models.KindFloat)}})

	merged := Merge(existing, incoming)

	require.Equal(t, 1, merged.Len())
	assert.True(t, merged.Rows[0].Values[0].IsMissing())
}

func TestMergeSortsDescendingInput(t *testing.T) {
	// Realtime feeds arrive newest-first; the merged dataset is ascending.
	incoming := dataset(row(t2, 3.0), row(t1, 2.0), row(t0, 1.0))

	merged := Merge(nil, incoming)

	require.Equal(t, 3, merged.Len())
	assert.Equal(t, t0, merged.Rows[0].Time)
	assert.Equal(t, t2, merged.Rows[2].Time)
}

func TestMergeCollapsesDuplicates(t *testing.T) {
	incoming := dataset(row(t0, 1.0), row(t0, 9.0))

	merged := Merge(nil, incoming)

	require.Equal(t, 1, merged.Len())
	wspd, ok := merged.Rows[0].Values[0].AsFloat()
	require.True(t, ok)
	assert.Equal(t, 9.0, wspd, "last occurrence wins")
}

func TestMergeIdempotent(t *testing.T) {
	ds := dataset(row(t0, 1.0), row(t1, 2.0), row(t2, 3.0))

	// Merging a dataset with itself changes nothing, rows or order.
	assert.Equal(t, ds, Merge(ds, ds))

	// Re-applying the same incoming feed is also a no-op.
	existing := dataset(row(t0, 1.0), row(t1, 2.0))
	incoming := dataset(row(t1, 2.5), row(t2, 3.0))

	once := Merge(existing, incoming)
	twice := Merge(once, incoming)

	assert.Equal(t, once, twice)
}

func TestMergeNilAndEmpty(t *testing.T) {
	incoming := dataset(row(t0, 1.0))

	merged := Merge(nil, incoming)
	require.Equal(t, 1, merged.Len())

	merged = Merge(dataset(), incoming)
	require.Equal(t, 1, merged.Len())

	merged = Merge(incoming, dataset())
	require.Equal(t, 1, merged.Len())

	merged = Merge(nil, dataset())
	assert.True(t, merged.Empty())
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := dataset(row(t0, 1.0), row(t1, 2.0))
	incoming := dataset(row(t1, 20.0))

	_ = Merge(existing, incoming)

	wspd, ok := existing.Rows[1].Values[0].AsFloat()
	require.True(t, ok)
	assert.Equal(t, 2.0, wspd)
	assert.Equal(t, 2, existing.Len())
	assert.Equal(t, 1, incoming.Len())
}

func TestMergeColumnsFollowIncoming(t *testing.T) {
	existing := &models.Dataset{StationID: "41001", Category: "cwind",
		Columns: []string{"OLD"}, Rows: []models.Row{row(t0, 1.0)}}
	incoming := dataset(row(t1, 2.0))

	merged := Merge(existing, incoming)
	assert.Equal(t, []string{"WSPD"}, merged.Columns)
}

func TestSorted(t *testing.T) {
	ds := dataset(row(t1, 2.0), row(t0, 1.0))

	sorted := Sorted(ds)

	require.Equal(t, 2, sorted.Len())
	assert.Equal(t, t0, sorted.Rows[0].Time)
	assert.Equal(t, t1, sorted.Rows[1].Time)
}
