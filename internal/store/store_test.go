package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS krs_weather_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    location TEXT,
    time_stamp TEXT,
    temp_c REAL,
    humidity INTEGER,
    cond TEXT,
    wind_kph REAL,
    pressure_mb REAL
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	return db
}

func insertReading(t *testing.T, db *sql.DB, location, ts string, temp float64, humidity int, cond string, windKPH, pressure float64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO krs_weather_data (location, time_stamp, temp_c, humidity, cond, wind_kph, pressure_mb)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, location, ts, temp, humidity, cond, windKPH, pressure)
	if err != nil {
		t.Fatalf("insert reading: %v", err)
	}
}

func TestLatestReadings_WindowAndOrder(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		ts := base.Add(time.Duration(i) * 10 * time.Minute).Format("2006-01-02 15:04:05")
		insertReading(t, db, "Karachi", ts, 20+float64(i%10), 50, "Sunny", float64(i), 1010)
	}

	st := New(db, "krs_weather_data", time.UTC)
	set, err := st.LatestReadings(context.Background())
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if len(set) != ReadingWindow {
		t.Fatalf("len(set) = %d, want %d", len(set), ReadingWindow)
	}
	if set[0].ID != 150 {
		t.Errorf("set[0].ID = %d, want 150", set[0].ID)
	}
	for i := 1; i < len(set); i++ {
		if set[i-1].ID <= set[i].ID {
			t.Fatalf("set not descending by id at %d: %d then %d", i, set[i-1].ID, set[i].ID)
		}
	}
	for _, r := range set {
		if !r.WindMPS.Valid {
			t.Fatalf("reading %d: WindMPS invalid", r.ID)
		}
		if math.Abs(r.WindMPS.Float64-r.WindKPH.Float64/3.6) > 1e-9 {
			t.Errorf("reading %d: WindMPS = %v, want %v", r.ID, r.WindMPS.Float64, r.WindKPH.Float64/3.6)
		}
	}

	wantTS := base.Add(149 * 10 * time.Minute)
	if !set[0].Timestamp.Equal(wantTS) {
		t.Errorf("set[0].Timestamp = %v, want %v", set[0].Timestamp, wantTS)
	}
	if set[0].Location != "Karachi" || set[0].Condition != "Sunny" {
		t.Errorf("set[0] = %+v, want Karachi/Sunny", set[0])
	}
}

func TestLatestReadings_FewerThanWindow(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 3; i++ {
		insertReading(t, db, "Lahore", fmt.Sprintf("2025-06-01 0%d:00:00", i), 30, 40, "Clear", 10, 1005)
	}

	set, err := New(db, "krs_weather_data", time.UTC).LatestReadings(context.Background())
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}
}

func TestLatestReadings_NullMeasurements(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.Exec(`INSERT INTO krs_weather_data (location, time_stamp, cond) VALUES ('Quetta', '2025-06-01 10:00:00', 'Mist')`); err != nil {
		t.Fatal(err)
	}

	set, err := New(db, "krs_weather_data", time.UTC).LatestReadings(context.Background())
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("len(set) = %d, want 1", len(set))
	}
	r := set[0]
	if r.TempC.Valid || r.Humidity.Valid || r.WindKPH.Valid || r.PressureMB.Valid || r.WindMPS.Valid {
		t.Errorf("expected NULL measurements to be invalid, got %+v", r)
	}
}

func TestLatestReadings_BadTimestamp(t *testing.T) {
	db := setupTestDB(t)
	insertReading(t, db, "Karachi", "yesterday-ish", 25, 60, "Sunny", 5, 1000)

	if _, err := New(db, "krs_weather_data", time.UTC).LatestReadings(context.Background()); err == nil {
		t.Fatal("LatestReadings with bad timestamp = nil error, want error")
	}
}

func TestLatestReadings_MissingTable(t *testing.T) {
	db := setupTestDB(t)
	if _, err := New(db, "no_such_table", time.UTC).LatestReadings(context.Background()); err == nil {
		t.Fatal("LatestReadings on missing table = nil error, want error")
	}
}

func TestLatestReadings_ClosedConnection(t *testing.T) {
	db := setupTestDB(t)
	st := New(db, "krs_weather_data", time.UTC)
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := st.LatestReadings(context.Background()); err == nil {
		t.Fatal("LatestReadings after Close = nil error, want error")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	tests := []string{
		"2025-06-01 14:30:00",
		"2025-06-01T14:30:00",
		"2025-06-01T14:30:00Z",
		"2025-06-01 14:30:00.000000",
		"2025-06-01 14:30",
		" 2025-06-01 14:30:00 ",
	}
	for _, in := range tests {
		got, err := ParseTimestamp(in, time.UTC)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseTimestamp("01/06/2025", time.UTC); err == nil {
		t.Error("ParseTimestamp(01/06/2025) = nil error, want error")
	}
}

func TestParseTimestamp_Location(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*60*60)
	tests := []struct {
		in   string
		want time.Time
	}{
		// Wall time in the database zone.
		{"2025-06-01 14:30:00", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		// An explicit offset wins over the database zone.
		{"2025-06-01T14:30:00Z", time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)},
		{"2025-06-01T14:30:00-04:00", time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in, karachi)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got.UTC(), tt.want)
		}
	}
}

func TestLatestReadings_DatabaseZone(t *testing.T) {
	db := setupTestDB(t)
	insertReading(t, db, "Karachi", "2025-06-01 17:00:00", 31, 60, "Sunny", 18, 1008)
	insertReading(t, db, "Karachi", "2025-06-01T12:10:00.5Z", 31, 60, "Sunny", 18, 1008)

	set, err := New(db, "krs_weather_data", time.FixedZone("PKT", 5*60*60)).LatestReadings(context.Background())
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC); !set[1].Timestamp.Equal(want) {
		t.Errorf("zone-less reading = %v, want %v", set[1].Timestamp.UTC(), want)
	}
	if set[0].TimestampText != "2025-06-01T12:10:00.5Z" || set[1].TimestampText != "2025-06-01 17:00:00" {
		t.Errorf("TimestampText = %q, %q; want source text", set[0].TimestampText, set[1].TimestampText)
	}
}
