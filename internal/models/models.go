package models

import (
	"database/sql"
	"sort"
	"time"
)

// KPHPerMPS converts km/h to m/s.
const KPHPerMPS = 3.6

type Reading struct {
	ID            int64
	Location      string
	Timestamp     time.Time
	TimestampText string // time_stamp as stored
	TempC         sql.NullFloat64
	Humidity      sql.NullInt64
	Condition     string
	WindKPH       sql.NullFloat64
	PressureMB    sql.NullFloat64
	WindMPS       sql.NullFloat64 // derived from WindKPH at fetch time
}

// WindSpeedMPS returns WindKPH converted to m/s, or invalid when WindKPH is NULL.
func WindSpeedMPS(kph sql.NullFloat64) sql.NullFloat64 {
	if !kph.Valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: kph.Float64 / KPHPerMPS, Valid: true}
}

// ReadingSet is the bounded window of readings fetched in one run,
// newest first by ID. It is never modified after fetch.
type ReadingSet []Reading

// Latest returns the most recent reading (the first element).
func (s ReadingSet) Latest() (Reading, bool) {
	if len(s) == 0 {
		return Reading{}, false
	}
	return s[0], true
}

// ByTimeAscending returns a copy ordered by timestamp, oldest first.
func (s ReadingSet) ByTimeAscending() ReadingSet {
	sorted := make(ReadingSet, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
