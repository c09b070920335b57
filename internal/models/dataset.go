package models

import (
	"sort"
	"time"
)

// Row is one observation: a UTC minute-resolution timestamp plus one value
// per dataset column, in column order. Rows are immutable once parsed.
type Row struct {
	Time   time.Time `json:"time"`
	Values []Value   `json:"values"`
}

// Dataset is the ordered table of observations for one (station, category)
// pair: rows strictly ascending by timestamp, no duplicate timestamps.
type Dataset struct {
	StationID string   `json:"stationId"`
	Category  string   `json:"category"`
	Columns   []string `json:"columns"`
	Rows      []Row    `json:"rows"`
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

func (d *Dataset) Empty() bool { return d.Len() == 0 }

// Index returns the position of the row with the given timestamp, or -1.
// Rows are sorted ascending, so this is a binary search.
func (d *Dataset) Index(t time.Time) int {
	if d == nil {
		return -1
	}
	i := sort.Search(len(d.Rows), func(i int) bool {
		return !d.Rows[i].Time.Before(t)
	})
	if i < len(d.Rows) && d.Rows[i].Time.Equal(t) {
		return i
	}
	return -1
}

// At returns the row with the given timestamp, if present.
func (d *Dataset) At(t time.Time) (Row, bool) {
	i := d.Index(t)
	if i < 0 {
		return Row{}, false
	}
	return d.Rows[i], true
}
