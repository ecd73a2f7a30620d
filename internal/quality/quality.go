package quality

import (
	"strings"
	"time"

	"github.com/lox/weathersnapshot/internal/models"
)

const (
	FlagTempOutOfRange     = "temp_out_of_range"
	FlagHumidityInvalid    = "humidity_invalid"
	FlagWindNegative       = "wind_negative"
	FlagPressureOutOfRange = "pressure_out_of_range"
	FlagConditionMissing   = "condition_missing"
)

// Validate returns the quality flags raised by r. NULL measurements are not flagged.
func Validate(r models.Reading) []string {
	var flags []string

	if r.TempC.Valid {
		if r.TempC.Float64 < -60 || r.TempC.Float64 > 60 {
			flags = append(flags, FlagTempOutOfRange)
		}
	}

	if r.Humidity.Valid {
		if r.Humidity.Int64 < 0 || r.Humidity.Int64 > 100 {
			flags = append(flags, FlagHumidityInvalid)
		}
	}

	if r.WindKPH.Valid && r.WindKPH.Float64 < 0 {
		flags = append(flags, FlagWindNegative)
	}

	if r.PressureMB.Valid {
		if r.PressureMB.Float64 < 850 || r.PressureMB.Float64 > 1100 {
			flags = append(flags, FlagPressureOutOfRange)
		}
	}

	if strings.TrimSpace(r.Condition) == "" {
		flags = append(flags, FlagConditionMissing)
	}

	return flags
}

// Summary counts flags across a set, keyed by flag name.
type Summary struct {
	Flagged int
	ByFlag  map[string]int
}

// Check validates every reading in set.
func Check(set models.ReadingSet) Summary {
	s := Summary{ByFlag: make(map[string]int)}
	for _, r := range set {
		flags := Validate(r)
		if len(flags) > 0 {
			s.Flagged++
		}
		for _, f := range flags {
			s.ByFlag[f]++
		}
	}
	return s
}

// FreshnessReport describes how old the newest reading is.
type FreshnessReport struct {
	Newest time.Time
	Age    time.Duration
	Stale  bool
	Empty  bool
}

// Freshness reports the age of the newest reading in set relative to now.
// A zero staleAfter disables the stale check.
func Freshness(set models.ReadingSet, now time.Time, staleAfter time.Duration) FreshnessReport {
	if len(set) == 0 {
		return FreshnessReport{Empty: true}
	}
	newest := set[0].Timestamp
	for _, r := range set[1:] {
		if r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	age := now.Sub(newest)
	if age < 0 {
		age = 0
	}
	return FreshnessReport{
		Newest: newest,
		Age:    age,
		Stale:  staleAfter > 0 && age > staleAfter,
	}
}
