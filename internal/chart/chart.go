// Package chart renders per-marker activity as bar charts, either as a
// static PNG through gonum/plot or as an interactive HTML page through
// go-echarts.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/gesture.report/internal/mocap"
)

// HighlightColor fills the bars of highlighted markers.
const HighlightColor = "#99CCFF"

// DefaultAssetsHost serves the echarts javascript for HTML output.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

var (
	highlightRGBA = color.RGBA{R: 0x99, G: 0xCC, B: 0xFF, A: 0xFF}
	baseRGBA      = color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xFF}
)

// ErrNoActiveMarkers is returned when there is nothing to draw.
var ErrNoActiveMarkers = errors.New("no active markers to chart")

// ErrUnknownHighlight is returned when a highlighted marker is not active.
var ErrUnknownHighlight = errors.New("highlighted marker is not active")

// Activity is the data behind one chart: active markers in marker order,
// their activity, and optionally their weights.
type Activity struct {
	Title     string
	Markers   []string
	Values    []float64
	Weights   []float64
	Highlight []string
}

// FromDisplacement collects the active markers of d. weights, when non-zero,
// must cover the same markers as d.
func FromDisplacement(title string, d *mocap.Displacement, weights mocap.Weights, highlight ...string) (Activity, error) {
	a := Activity{Title: title, Highlight: highlight}
	for i, m := range d.Markers {
		if !d.Active[i] {
			continue
		}
		a.Markers = append(a.Markers, m)
		a.Values = append(a.Values, d.Stats[i].Activity)
		if !weights.IsZero() {
			a.Weights = append(a.Weights, weights.Of(m))
		}
	}
	if err := a.validate(); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (a Activity) validate() error {
	if len(a.Markers) == 0 {
		return ErrNoActiveMarkers
	}
	if len(a.Values) != len(a.Markers) {
		return fmt.Errorf("%d values for %d markers", len(a.Values), len(a.Markers))
	}
	if a.Weights != nil && len(a.Weights) != len(a.Markers) {
		return fmt.Errorf("%d weights for %d markers", len(a.Weights), len(a.Markers))
	}
	for _, h := range a.Highlight {
		if !slices.Contains(a.Markers, h) {
			return fmt.Errorf("%w: %q", ErrUnknownHighlight, h)
		}
	}
	return nil
}

func (a Activity) highlighted(i int) bool {
	return slices.Contains(a.Highlight, a.Markers[i])
}

// WritePNG draws the activity bars and writes a PNG image to w.
func WritePNG(w io.Writer, a Activity) error {
	if err := a.validate(); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s joint displacements", a.Title)
	p.Y.Label.Text = "marker motion measure, norm units"
	p.Y.Min = 0

	// Highlighted bars are drawn as a second chart at the same offsets so
	// each marker keeps its slot on the nominal axis.
	base := make(plotter.Values, len(a.Values))
	lit := make(plotter.Values, len(a.Values))
	for i, v := range a.Values {
		if a.highlighted(i) {
			lit[i] = v
		} else {
			base[i] = v
		}
	}

	width := vg.Points(20)
	bars, err := plotter.NewBarChart(base, width)
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = baseRGBA
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	if len(a.Highlight) > 0 {
		litBars, err := plotter.NewBarChart(lit, width)
		if err != nil {
			return fmt.Errorf("highlight chart: %w", err)
		}
		litBars.Color = highlightRGBA
		litBars.LineStyle.Width = vg.Length(0)
		p.Add(litBars)
	}
	p.NominalX(a.Markers...)

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// HTMLOptions tunes HTML output.
type HTMLOptions struct {
	AssetsHost string
	Subtitle   string
}

// WriteHTML renders the activity, and the weights when present, as an
// interactive bar chart page.
func WriteHTML(w io.Writer, a Activity, o HTMLOptions) error {
	if err := a.validate(); err != nil {
		return err
	}
	host := o.AssetsHost
	if host == "" {
		host = DefaultAssetsHost
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: a.Title, Width: "100%", Height: "600px", AssetsHost: host}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s joint displacements", a.Title), Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "activity", Min: 0}),
	)

	activity := make([]opts.BarData, len(a.Values))
	for i, v := range a.Values {
		activity[i] = opts.BarData{Name: a.Markers[i], Value: v}
		if a.highlighted(i) {
			activity[i].ItemStyle = &opts.ItemStyle{Color: HighlightColor}
		}
	}
	bar.SetXAxis(a.Markers).
		AddSeries("activity", activity,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(host)
	page.AddCharts(bar)

	if a.Weights != nil {
		wbar := charts.NewBar()
		wbar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "400px", AssetsHost: host}),
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s marker weights", a.Title)}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithYAxisOpts(opts.YAxis{Name: "weight", Min: 0, Max: 1}),
		)
		weights := make([]opts.BarData, len(a.Weights))
		for i, v := range a.Weights {
			weights[i] = opts.BarData{Name: a.Markers[i], Value: v}
			if a.highlighted(i) {
				weights[i].ItemStyle = &opts.ItemStyle{Color: HighlightColor}
			}
		}
		wbar.SetXAxis(a.Markers).AddSeries("weight", weights)
		page.AddCharts(wbar)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
