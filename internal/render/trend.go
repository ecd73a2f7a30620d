package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lox/weathersnapshot/internal/models"
	"github.com/lox/weathersnapshot/internal/snapshot"
)

const (
	TrendFileName = "temperature_trend.html"
	TrendTitle    = "Temperature Trend"
	trendColor    = "orange"
)

// missingValue is how echarts marks a gap in a line series.
const missingValue = "-"

// Plot geometry for the inline SVG chart, in px.
const (
	trendWidth   = 1000
	trendHeight  = 500
	plotLeft     = 70
	plotRight    = trendWidth - 30
	plotTop      = 80
	plotBottom   = trendHeight - 60
	trendYTicks  = 5
	trendXTicks  = 6
	tickLabelFmt = "01-02 15:04"
)

// TemperatureTrend writes a line chart of temperature against time for set.
// Points are plotted in ascending timestamp order; set itself is not reordered.
//
// The page never loads remote scripts. When echartsJS is non-empty it is
// inlined and the chart is drawn by echarts; otherwise the chart is an
// inline SVG.
func TemperatureTrend(w io.Writer, set models.ReadingSet, echartsJS []byte) error {
	if len(echartsJS) == 0 {
		if err := tmpl.ExecuteTemplate(w, "temperature_trend.html", newTrendData(set)); err != nil {
			return fmt.Errorf("render temperature trend: %w", err)
		}
		return nil
	}

	line := newTrendChart(set)
	line.ClearPresetJSAssets()
	line.AddCustomizedHeaders(inlineScript(echartsJS))
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render temperature trend: %w", err)
	}
	return nil
}

// TemperatureTrendBytes renders the trend chart into memory.
func TemperatureTrendBytes(set models.ReadingSet, echartsJS []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := TemperatureTrend(&buf, set, echartsJS); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inlineScript wraps js in a script element. A literal "</script" inside js
// would end the element early, so it is escaped.
func inlineScript(js []byte) string {
	body := strings.ReplaceAll(string(js), "</script", `<\/script`)
	return "<script>" + body + "</script>"
}

func trendSubtitle(set models.ReadingSet) string {
	if latest, ok := set.Latest(); ok {
		return latest.Location
	}
	return ""
}

func newTrendChart(set models.ReadingSet) *charts.Line {
	ordered := set.ByTimeAscending()

	labels := make([]string, 0, len(ordered))
	points := make([]opts.LineData, 0, len(ordered))
	for _, r := range ordered {
		labels = append(labels, r.Timestamp.Format(snapshot.TimestampLayout))
		if r.TempC.Valid {
			points = append(points, opts.LineData{Value: r.TempC.Float64})
		} else {
			points = append(points, opts.LineData{Value: missingValue})
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: TrendTitle,
			Width:     strconv.Itoa(trendWidth) + "px",
			Height:    strconv.Itoa(trendHeight) + "px",
		}),
		charts.WithTitleOpts(opts.Title{Title: TrendTitle, Subtitle: trendSubtitle(set)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Timestamp", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Temperature (°C)", Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(labels).
		AddSeries("Temperature (°C)", points).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), Symbol: "circle"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: trendColor}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: trendColor}),
		)
	return line
}

// trendData is the view model for the inline SVG chart.
type trendData struct {
	Title    string
	Subtitle string
	Color    string
	Width    int
	Height   int
	Left     int
	Right    int
	Top      int
	Bottom   int
	Segments []string
	Points   []trendPoint
	YTicks   []trendTick
	XTicks   []trendTick
}

type trendPoint struct {
	X, Y  string
	Label string
	Value string
}

type trendTick struct {
	Pos  string
	Text string
}

func newTrendData(set models.ReadingSet) trendData {
	ordered := set.ByTimeAscending()
	data := trendData{
		Title:    TrendTitle,
		Subtitle: trendSubtitle(set),
		Color:    trendColor,
		Width:    trendWidth,
		Height:   trendHeight,
		Left:     plotLeft,
		Right:    plotRight,
		Top:      plotTop,
		Bottom:   plotBottom,
	}

	lo, hi, ok := tempRange(ordered)
	if !ok {
		lo, hi = 0, 1
	}
	if hi-lo < 1 {
		lo, hi = lo-0.5, hi+0.5
	}

	xAt := func(i int) float64 {
		if len(ordered) < 2 {
			return float64(plotLeft+plotRight) / 2
		}
		return plotLeft + float64(i)*float64(plotRight-plotLeft)/float64(len(ordered)-1)
	}
	yAt := func(v float64) float64 {
		return plotTop + (hi-v)/(hi-lo)*float64(plotBottom-plotTop)
	}

	// NULL temperatures break the line into separate segments.
	var segment []string
	flush := func() {
		if len(segment) > 0 {
			data.Segments = append(data.Segments, strings.Join(segment, " "))
			segment = nil
		}
	}
	for i, r := range ordered {
		if !r.TempC.Valid {
			flush()
			continue
		}
		x, y := coord(xAt(i)), coord(yAt(r.TempC.Float64))
		segment = append(segment, x+","+y)
		data.Points = append(data.Points, trendPoint{
			X:     x,
			Y:     y,
			Label: r.Timestamp.Format(snapshot.TimestampLayout),
			Value: strconv.FormatFloat(r.TempC.Float64, 'f', -1, 64),
		})
	}
	flush()

	for i := 0; i < trendYTicks; i++ {
		v := lo + float64(i)*(hi-lo)/float64(trendYTicks-1)
		data.YTicks = append(data.YTicks, trendTick{
			Pos:  coord(yAt(v)),
			Text: strconv.FormatFloat(v, 'f', 1, 64),
		})
	}

	if n := len(ordered); n > 0 {
		step := 1
		if n > trendXTicks {
			step = (n - 1) / (trendXTicks - 1)
		}
		for i := 0; i < n; i += step {
			data.XTicks = append(data.XTicks, trendTick{
				Pos:  coord(xAt(i)),
				Text: ordered[i].Timestamp.Format(tickLabelFmt),
			})
		}
	}
	return data
}

func tempRange(set models.ReadingSet) (lo, hi float64, ok bool) {
	for _, r := range set {
		if !r.TempC.Valid {
			continue
		}
		v := r.TempC.Float64
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi, ok
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
