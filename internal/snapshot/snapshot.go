package snapshot

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lox/weathersnapshot/internal/models"
)

// FileName is the snapshot's name inside the output directory.
const FileName = "last_100_weather_records.csv"

// TimestampLayout is used for time_stamp cells when the stored text is unknown.
const TimestampLayout = "2006-01-02 15:04:05"

// Header lists the snapshot columns in order.
var Header = []string{"id", "location", "time_stamp", "temp_c", "humidity", "cond", "wind_kph", "pressure_mb", "wind_mps"}

// Write encodes set as CSV with a header row, keeping the set's order.
// NULL measurements are written as empty cells.
func Write(w io.Writer, set models.ReadingSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range set {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.Location,
			timestampCell(r),
			formatFloat(r.TempC),
			formatInt(r.Humidity),
			r.Condition,
			formatFloat(r.WindKPH),
			formatFloat(r.PressureMB),
			formatFloat(r.WindMPS),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write reading %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode returns the CSV bytes for set.
func Encode(set models.ReadingSet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// timestampCell keeps time_stamp exactly as stored, so offsets and
// fractional seconds survive.
func timestampCell(r models.Reading) string {
	if r.TimestampText != "" {
		return r.TimestampText
	}
	return r.Timestamp.Format(TimestampLayout)
}

func formatFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func formatInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
