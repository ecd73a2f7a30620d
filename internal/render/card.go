package render

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/lox/weathersnapshot/internal/conditions"
	"github.com/lox/weathersnapshot/internal/models"
	"github.com/lox/weathersnapshot/internal/snapshot"
)

const (
	CardFileName = "current_weather.html"
	CardTitle    = "Current Weather Summary"
)

// CardData is the view model for the current-weather page.
type CardData struct {
	Title      string
	ReadingID  int64
	Icon       string
	Condition  string
	Location   string
	Timestamp  string
	TempC      sql.NullFloat64
	TempF      sql.NullFloat64
	Humidity   string
	PressureMB sql.NullFloat64
	WindMPS    sql.NullFloat64
	Palette    conditions.Palette
}

// NewCardData builds the card view model for r.
func NewCardData(r models.Reading) CardData {
	humidity := "n/a"
	if r.Humidity.Valid {
		humidity = strconv.FormatInt(r.Humidity.Int64, 10) + "%"
	}

	var tempF sql.NullFloat64
	if r.TempC.Valid {
		tempF = sql.NullFloat64{Float64: r.TempC.Float64*9/5 + 32, Valid: true}
	}

	palette := conditions.DefaultPalette
	if r.TempC.Valid {
		palette = conditions.PaletteFor(conditions.Categorize(r.Condition, r.TempC.Float64))
	}

	return CardData{
		Title:      CardTitle,
		ReadingID:  r.ID,
		Icon:       conditions.Icon(r.Condition),
		Condition:  r.Condition,
		Location:   r.Location,
		Timestamp:  r.Timestamp.Format(snapshot.TimestampLayout),
		TempC:      r.TempC,
		TempF:      tempF,
		Humidity:   humidity,
		PressureMB: r.PressureMB,
		WindMPS:    r.WindMPS,
		Palette:    palette,
	}
}

// CurrentCard writes the single-value current-weather page for r.
func CurrentCard(w io.Writer, r models.Reading) error {
	if err := tmpl.ExecuteTemplate(w, "current_weather.html", NewCardData(r)); err != nil {
		return fmt.Errorf("render current weather: %w", err)
	}
	return nil
}

// CurrentCardBytes renders the current-weather page into memory.
func CurrentCardBytes(r models.Reading) ([]byte, error) {
	var buf bytes.Buffer
	if err := CurrentCard(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
