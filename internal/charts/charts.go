// Package charts renders the illustrative dashboard charts. They are drawn from
// freshly generated random data on every call and carry no information about
// the uploaded file.
package charts

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart kinds.
const (
	KindHistogram = "histogram"
	KindLine      = "line"
	KindBar       = "bar"
	KindArea      = "area"
	KindScatter   = "scatter"
)

const (
	histogramSamples = 20
	histogramBins    = 15
	histogramMean    = 1.0
	histogramStdDev  = 2.0
	frameRows        = 10
	frameColumns     = 2
	scatterRows      = 500
	pixelWidth       = 640
	pixelHeight      = 360
	strokeWidth      = 2
	fillAlpha        = 96
	opaque           = 255
)

var (
	plotWidth  = 6 * vg.Inch
	plotHeight = 3.5 * vg.Inch

	colorX = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorY = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// Chart is a rendered PNG chart.
type Chart struct {
	Title string // Title shown above the image.
	Kind  string // Kind is one of the Kind constants.
	PNG   []byte // PNG holds the encoded image.
}

// DataURI returns the image as a base64 data URI.
func (c Chart) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)
}

// Generator draws random frames and renders them. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// NewGenerator creates a generator reading from src. A nil src uses a randomly seeded source.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Generator{rnd: rand.New(src)}
}

// All renders every chart of the dashboard in display order.
func (g *Generator) All() ([]Chart, error) {
	renderers := []func() (Chart, error){
		g.Histogram,
		g.Line,
		g.Bar,
		g.Area,
		g.Scatter,
	}

	out := make([]Chart, 0, len(renderers))
	for _, render := range renderers {
		c, err := render()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, nil
}

// normal returns n samples of N(mean, stdDev).
func (g *Generator) normal(n int, mean, stdDev float64) []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	samples := make([]float64, n)
	for idx := range samples {
		samples[idx] = mean + stdDev*g.rnd.NormFloat64()
	}

	return samples
}

// Histogram renders 20 samples of N(1, 2) in 15 bins.
func (g *Generator) Histogram() (Chart, error) {
	p := plot.New()
	p.Title.Text = "Histogram"

	hist, err := plotter.NewHist(plotter.Values(g.normal(histogramSamples, histogramMean, histogramStdDev)), histogramBins)
	if err != nil {
		return Chart{}, fmt.Errorf("failed to build histogram: %w", err)
	}
	hist.FillColor = colorX
	p.Add(hist)

	return savePlot(p, "Histogram", KindHistogram)
}

// Bar renders a 10x2 standard normal frame as grouped bars.
func (g *Generator) Bar() (Chart, error) {
	p := plot.New()
	p.Title.Text = "Bar chart"

	width := vg.Points(8)
	for idx, series := range []struct {
		name  string
		color color.Color
	}{
		{name: "x", color: colorX},
		{name: "y", color: colorY},
	} {
		bars, err := plotter.NewBarChart(plotter.Values(g.normal(frameRows, 0, 1)), width)
		if err != nil {
			return Chart{}, fmt.Errorf("failed to build bar series %s: %w", series.name, err)
		}
		bars.Color = series.color
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(idx) * width
		p.Add(bars)
		p.Legend.Add(series.name, bars)
	}
	p.Add(plotter.NewGrid())

	return savePlot(p, "Bar chart", KindBar)
}

// Scatter renders a 500x3 standard normal frame as x against y, with glyph
// size and colour both encoding z.
func (g *Generator) Scatter() (Chart, error) {
	xs := g.normal(scatterRows, 0, 1)
	ys := g.normal(scatterRows, 0, 1)
	zs := g.normal(scatterRows, 0, 1)

	points := make(plotter.XYs, scatterRows)
	for idx := range points {
		points[idx].X = xs[idx]
		points[idx].Y = ys[idx]
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return Chart{}, fmt.Errorf("failed to build scatter: %w", err)
	}

	lo, hi := bounds(zs)
	scatter.GlyphStyleFunc = func(idx int) draw.GlyphStyle {
		ratio := 0.5
		if hi > lo {
			ratio = (zs[idx] - lo) / (hi - lo)
		}
		return draw.GlyphStyle{
			Color:  blend(colorX, colorY, ratio),
			Radius: vg.Points(1 + 5*ratio),
			Shape:  draw.CircleGlyph{},
		}
	}

	p := plot.New()
	p.Title.Text = "Scatter (size and colour by z)"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(scatter, plotter.NewGrid())

	return savePlot(p, "Scatter chart", KindScatter)
}

// Line renders a 10x2 standard normal frame as two lines.
func (g *Generator) Line() (Chart, error) {
	return g.seriesChart("Line chart", KindLine, false)
}

// Area renders a 10x2 standard normal frame as two filled areas.
func (g *Generator) Area() (Chart, error) {
	return g.seriesChart("Area chart", KindArea, true)
}

func (g *Generator) seriesChart(title, kind string, filled bool) (Chart, error) {
	index := make([]float64, frameRows)
	for idx := range index {
		index[idx] = float64(idx)
	}

	series := make([]chart.Series, 0, frameColumns)
	for _, column := range []struct {
		name  string
		color color.RGBA
	}{
		{name: "x", color: colorX},
		{name: "y", color: colorY},
	} {
		style := chart.Style{
			StrokeColor: toDrawing(column.color, column.color.A),
			StrokeWidth: strokeWidth,
		}
		if filled {
			style.FillColor = toDrawing(column.color, fillAlpha)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    column.name,
			XValues: index,
			YValues: g.normal(frameRows, 0, 1),
			Style:   style,
		})
	}

	ch := chart.Chart{
		Title:  title,
		Width:  pixelWidth,
		Height: pixelHeight,
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return Chart{}, fmt.Errorf("failed to render %s: %w", kind, err)
	}

	return Chart{Title: title, Kind: kind, PNG: buf.Bytes()}, nil
}

func savePlot(p *plot.Plot, title, kind string) (Chart, error) {
	writer, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return Chart{}, fmt.Errorf("failed to create %s writer: %w", kind, err)
	}

	var buf bytes.Buffer
	if _, err = writer.WriteTo(&buf); err != nil {
		return Chart{}, fmt.Errorf("failed to render %s: %w", kind, err)
	}

	return Chart{Title: title, Kind: kind, PNG: buf.Bytes()}, nil
}

func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return lo, hi
}

func blend(from, to color.RGBA, ratio float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*ratio))
	}

	return color.RGBA{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: opaque}
}

func toDrawing(c color.RGBA, alpha uint8) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: alpha}
}
