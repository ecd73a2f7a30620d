package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/weathersnapshot/internal/models"
	"github.com/lox/weathersnapshot/internal/snapshot"
)

// ShareCardFileName is written only when share cards are enabled.
const ShareCardFileName = "current_weather.png"

// ShareWidth and ShareHeight are the standard Open Graph image dimensions.
const (
	ShareWidth  = 1200
	ShareHeight = 630
)

var (
	faceLarge   font.Face
	faceRegular font.Face
	faceSmall   font.Face
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() {
	fontOnce.Do(func() {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse goregular: %w", err)
			return
		}
		for _, f := range []struct {
			face *font.Face
			size float64
		}{
			{&faceLarge, 140},
			{&faceRegular, 44},
			{&faceSmall, 28},
		} {
			*f.face, err = opentype.NewFace(parsed, &opentype.FaceOptions{
				Size:    f.size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				fontErr = fmt.Errorf("create %.0fpt face: %w", f.size, err)
				return
			}
		}
	})
}

// ShareCard renders a PNG summary of r, coloured by its weather category.
// Emoji glyphs are not in the bundled font, so the condition is drawn as text.
func ShareCard(r models.Reading) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	data := NewCardData(r)
	bg, err := parseHex(data.Palette.Background)
	if err != nil {
		return nil, err
	}
	text, err := parseHex(data.Palette.Text)
	if err != nil {
		return nil, err
	}
	muted, err := parseHex(data.Palette.TextMuted)
	if err != nil {
		return nil, err
	}
	accent, err := parseHex(data.Palette.Accent)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, ShareWidth, ShareHeight))
	drawGradient(img, bg)

	// Accent bar down the left edge
	for y := 0; y < ShareHeight; y++ {
		for x := 0; x < 12; x++ {
			img.SetRGBA(x, y, accent)
		}
	}

	drawText(img, CardTitle, 60, 90, muted, faceSmall)
	drawText(img, formatFloat(data.TempC, 1)+"°C", 60, 300, text, faceLarge)
	if data.Condition != "" {
		drawText(img, data.Condition, 60, 390, text, faceRegular)
	}

	details := []string{"Humidity " + data.Humidity}
	details = append(details, "Pressure "+formatFloat(data.PressureMB, -1)+" mb")
	details = append(details, "Wind "+formatFloat(data.WindMPS, 1)+" m/s")
	drawText(img, strings.Join(details, "   "), 60, 470, muted, faceSmall)

	footer := data.Location + " | " + r.Timestamp.Format(snapshot.TimestampLayout)
	drawText(img, footer, 60, ShareHeight-50, muted, faceSmall)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode share card: %w", err)
	}
	return buf.Bytes(), nil
}

// drawGradient fills img with base, darkening slightly towards the bottom.
func drawGradient(img *image.RGBA, base color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		progress := float64(y) / float64(bounds.Dy())
		shade := 1 - progress*0.15
		c := color.RGBA{
			R: uint8(float64(base.R) * shade),
			G: uint8(float64(base.G) * shade),
			B: uint8(float64(base.B) * shade),
			A: 255,
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// parseHex parses a #rrggbb colour.
func parseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
