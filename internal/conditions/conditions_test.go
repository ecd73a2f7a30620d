package conditions

import (
	"strings"
	"testing"
)

func TestIcon(t *testing.T) {
	tests := []struct {
		condition string
		want      string
	}{
		{"Clear", "☀️"},
		{"Heavy Rain", "🌧️💦"},
		{"unknown-condition", "❓"},
		{"Sunny", "☀️"},
		{"SUNNY", "☀️"},
		{"sunny", "☀️"},
		{"  Partly cloudy ", "⛅"},
		{"Moderate or heavy sleet", "🌨️🌧️💦"},
		{"", "❓"},
	}
	for _, tt := range tests {
		if got := Icon(tt.condition); got != tt.want {
			t.Errorf("Icon(%q) = %q, want %q", tt.condition, got, tt.want)
		}
	}
}

func TestIcon_CaseInsensitiveForWholeTable(t *testing.T) {
	for cond, want := range icons {
		for _, variant := range []string{cond, strings.ToUpper(cond), toTitle(cond)} {
			if got := Icon(variant); got != want {
				t.Errorf("Icon(%q) = %q, want %q", variant, got, want)
			}
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		tempC     float64
		want      Category
	}{
		{"hot overrides condition", "Partly cloudy", 38, CategoryHot},
		{"thunderstorm", "Thunderstorm", 25, CategoryStorm},
		{"heavy rain", "Heavy rain", 18, CategoryRain},
		{"patchy rain", "Patchy rain nearby", 22, CategoryRain},
		{"sleet is snow", "Light sleet", 1, CategorySnow},
		{"mist", "Mist", 12, CategoryFog},
		{"overcast", "Overcast", 15, CategoryCloudy},
		{"clear warm", "Sunny", 30, CategoryClearWarm},
		{"clear cool", "Clear", 10, CategoryClearCool},
		{"unknown falls back on temperature", "unknown-condition", 10, CategoryClearCool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.condition, tt.tempC); got != tt.want {
				t.Errorf("Categorize(%q, %v) = %q, want %q", tt.condition, tt.tempC, got, tt.want)
			}
		})
	}
}

func TestPaletteFor(t *testing.T) {
	if got := PaletteFor(Category("nope")); got != DefaultPalette {
		t.Errorf("PaletteFor(unknown) = %+v, want DefaultPalette", got)
	}
	if got := PaletteFor(CategoryRain); got.Background == "" || got.Text == "" {
		t.Errorf("PaletteFor(rain) has empty colours: %+v", got)
	}
}

func toTitle(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
