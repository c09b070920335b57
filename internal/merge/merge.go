// Package merge reconciles a freshly parsed dataset with a previously
// persisted one. This is the one place where rolling-window feeds could
// silently lose history, so its contract is strict: union by timestamp,
// ascending order, no duplicates, incoming wins ties wholesale.
package merge

import (
	"sort"

	"github.com/driftline/ndbc/internal/models"
)

// Merge combines an existing dataset (may be nil or empty) with an incoming
// one of the same schema into a new dataset. Neither input is mutated.
//
// Every timestamp present in either input appears exactly once in the
// result, sorted ascending. A timestamp present in both takes the incoming
// row in full: the freshest fetch is authoritative for the overlap window,
// even where it regressed a column to missing. Duplicate timestamps within
// one input collapse last-wins. Merging a dataset with itself returns it
// unchanged.
func Merge(existing, incoming *models.Dataset) *models.Dataset {
	out := &models.Dataset{}
	if incoming != nil {
		out.StationID = incoming.StationID
		out.Category = incoming.Category
		out.Columns = incoming.Columns
	} else if existing != nil {
		out.StationID = existing.StationID
		out.Category = existing.Category
		out.Columns = existing.Columns
	}

	byTime := make(map[int64]models.Row, existing.Len()+incoming.Len())
	if existing != nil {
		for _, row := range existing.Rows {
			byTime[row.Time.Unix()] = row
		}
	}
	if incoming != nil {
		for _, row := range incoming.Rows {
			byTime[row.Time.Unix()] = row
		}
	}

	keys := make([]int64, 0, len(byTime))
	for k := range byTime {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out.Rows = make([]models.Row, len(keys))
	for i, k := range keys {
		out.Rows[i] = byTime[k]
	}
	return out
}

// Sorted returns a copy of the dataset's rows restored to the merge
// invariant: strictly ascending by timestamp, duplicates collapsed
// last-wins. Used when a single parsed feed must stand alone as a dataset.
func Sorted(ds *models.Dataset) *models.Dataset {
	return Merge(nil, ds)
}
