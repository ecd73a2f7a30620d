package conditions

import "strings"

// UnknownIcon is shown for conditions missing from the icon table.
const UnknownIcon = "❓"

// icons is keyed by lower-cased condition text. It is never modified.
var icons = map[string]string{
	"sunny":                   "☀️",
	"clear":                   "☀️",
	"patchy rain nearby":      "🌦️",
	"partly cloudy":           "⛅",
	"mist":                    "🌫️",
	"cloudy":                  "☁️",
	"overcast":                "🌥️",
	"light rain":              "🌦️",
	"moderate rain":           "🌧️",
	"heavy rain":              "🌧️💦",
	"rain":                    "🌧️",
	"light snow":              "🌨️",
	"snow":                    "❄️",
	"heavy snow":              "❄️❄️",
	"thunderstorm":            "⛈️",
	"fog":                     "🌫️",
	"windy":                   "🌬️",
	"sleet":                   "🌨️🌧️",
	"light sleet":             "🌨️🌦️",
	"moderate sleet":          "🌨️🌧️",
	"heavy sleet":             "🌨️🌧️💦",
	"moderate or heavy sleet": "🌨️🌧️💦",
}

// Icon returns the display glyph for a condition, matching case-insensitively.
func Icon(condition string) string {
	if icon, ok := icons[strings.ToLower(strings.TrimSpace(condition))]; ok {
		return icon
	}
	return UnknownIcon
}

// Category is a coarse weather state used to pick card colours.
type Category string

const (
	CategoryClearWarm Category = "clear_warm"
	CategoryClearCool Category = "clear_cool"
	CategoryCloudy    Category = "cloudy"
	CategoryRain      Category = "rain"
	CategoryStorm     Category = "storm"
	CategoryFog       Category = "fog"
	CategorySnow      Category = "snow"
	CategoryHot       Category = "hot"
)

// Categorize maps free-form condition text and the current temperature to a Category.
func Categorize(condition string, tempC float64) Category {
	lower := strings.ToLower(condition)

	// Temperature extremes take priority
	if tempC >= 35 {
		return CategoryHot
	}

	switch {
	case strings.Contains(lower, "thunder") || strings.Contains(lower, "storm"):
		return CategoryStorm
	case strings.Contains(lower, "snow") || strings.Contains(lower, "sleet"):
		return CategorySnow
	case strings.Contains(lower, "rain") || strings.Contains(lower, "shower") || strings.Contains(lower, "drizzle"):
		return CategoryRain
	case strings.Contains(lower, "fog") || strings.Contains(lower, "mist") || strings.Contains(lower, "haze"):
		return CategoryFog
	case strings.Contains(lower, "cloud") || strings.Contains(lower, "overcast"):
		return CategoryCloudy
	}

	if tempC >= 25 {
		return CategoryClearWarm
	}
	return CategoryClearCool
}

// Palette is the colour scheme for a category.
type Palette struct {
	Background string
	Card       string
	Text       string
	TextMuted  string
	Accent     string
}

// DefaultPalette is the fallback dark theme.
var DefaultPalette = Palette{
	Background: "#0f0f1a",
	Card:       "#1a1a2e",
	Text:       "#eeeeee",
	TextMuted:  "#8a8a9a",
	Accent:     "#4fc3f7",
}

var palettes = map[Category]Palette{
	CategoryClearWarm: {Background: "#f5f0e8", Card: "#ffffff", Text: "#2a2520", TextMuted: "#706050", Accent: "#d07020"},
	CategoryClearCool: {Background: "#e8f0f5", Card: "#ffffff", Text: "#1a2530", TextMuted: "#5a6a7a", Accent: "#2080c0"},
	CategoryCloudy:    {Background: "#d8dce0", Card: "#f0f2f4", Text: "#2a2e33", TextMuted: "#60666e", Accent: "#607d8b"},
	CategoryRain:      {Background: "#1e2a38", Card: "#2a3848", Text: "#e8eef5", TextMuted: "#90a0b0", Accent: "#4fc3f7"},
	CategoryStorm:     {Background: "#15151f", Card: "#24243a", Text: "#f0f0ff", TextMuted: "#8888aa", Accent: "#ffd54f"},
	CategoryFog:       {Background: "#c8ccd0", Card: "#e4e6e8", Text: "#33383d", TextMuted: "#6e757c", Accent: "#78909c"},
	CategorySnow:      {Background: "#eef4fa", Card: "#ffffff", Text: "#203040", TextMuted: "#607080", Accent: "#5c9ded"},
	CategoryHot:       {Background: "#3a1f10", Card: "#4a2a18", Text: "#fff0e0", TextMuted: "#c09070", Accent: "#ff7043"},
}

// PaletteFor returns the palette for c, or DefaultPalette.
func PaletteFor(c Category) Palette {
	if p, ok := palettes[c]; ok {
		return p
	}
	return DefaultPalette
}
