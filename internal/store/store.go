package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lox/weathersnapshot/internal/models"
)

// ReadingWindow is the number of most recent readings fetched per run.
const ReadingWindow = 100

type Store struct {
	db    *sql.DB
	table string
	loc   *time.Location
}

// New wraps an open handle. table must already be a validated identifier.
// Timestamps stored without an offset are read as wall time in loc.
func New(db *sql.DB, table string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{db: db, table: table, loc: loc}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LatestReadings returns up to ReadingWindow readings, newest first by id,
// with wind speed converted to m/s. The rows cursor is closed on every path.
func (s *Store) LatestReadings(ctx context.Context) (models.ReadingSet, error) {
	query := fmt.Sprintf(`
		SELECT id, location, time_stamp, temp_c, humidity, cond, wind_kph, pressure_mb
		FROM %s
		ORDER BY id DESC
		LIMIT %d
	`, s.table, ReadingWindow)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	set := make(models.ReadingSet, 0, ReadingWindow)
	for rows.Next() {
		var (
			r         models.Reading
			location  sql.NullString
			timestamp sql.NullString
			cond      sql.NullString
		)
		if err := rows.Scan(&r.ID, &location, &timestamp, &r.TempC, &r.Humidity, &cond, &r.WindKPH, &r.PressureMB); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if !timestamp.Valid {
			return nil, fmt.Errorf("reading %d: time_stamp is NULL", r.ID)
		}
		r.Timestamp, err = ParseTimestamp(timestamp.String, s.loc)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", r.ID, err)
		}
		r.TimestampText = strings.TrimSpace(timestamp.String)
		r.Location = location.String
		r.Condition = cond.String
		r.WindMPS = models.WindSpeedMPS(r.WindKPH)
		set = append(set, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return set, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04",
}

// ParseTimestamp parses the time_stamp column. Values without an offset
// are wall time in loc; values with one keep it.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time_stamp %q: unrecognised format", s)
}
