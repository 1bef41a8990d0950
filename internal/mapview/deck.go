// Package mapview builds the deck.gl configuration for the posts map.
package mapview

import (
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"

	"github.com/UnknownOlympus/meridian/internal/geofilter"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Rendering constants of the posts layer.
const (
	LayerType     = "ScatterplotLayer"
	PointRadius   = 50000
	InitialZoom   = 1
	InitialPitch  = 0
	TooltipMarkup = "<b>City:</b> {Location (City)}<br/><b>Country:</b> {Country/Territory}"
)

// FillColor is the RGBA fill of every point.
var FillColor = [4]uint8{0, 0, 200, 160}

// Coordinate errors returned by Build.
var (
	ErrNonNumericCoordinates = errors.New("coordinate column is not numeric")
	ErrNonFiniteCoordinates  = errors.New("coordinate is not finite")
)

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Layer is a single deck.gl layer description.
type Layer struct {
	Type      string            `json:"type"`
	Data      []models.MapPoint `json:"data"`
	Radius    float64           `json:"radius"`
	FillColor [4]uint8          `json:"fillColor"`
	Pickable  bool              `json:"pickable"`
}

// ViewState is the initial camera of the map.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

// Tooltip describes the hover box.
type Tooltip struct {
	HTML  string            `json:"html"`
	Style map[string]string `json:"style"`
}

// Deck is the full map configuration handed to the browser.
type Deck struct {
	Layers           []Layer   `json:"layers"`
	InitialViewState ViewState `json:"initialViewState"`
	Tooltip          Tooltip   `json:"tooltip"`
}

// Points returns the number of points across all layers.
func (d *Deck) Points() int {
	total := 0
	for _, layer := range d.Layers {
		total += len(layer.Data)
	}

	return total
}

// Build turns a filtered map table into a deck configuration. The view is
// centred on the mean position of the points; an empty table is centred on 0,0.
func Build(geo *table.Table) (*Deck, error) {
	const stride = 2
	points := make([]models.MapPoint, 0, geo.Len())
	flat := make([]float64, 0, stride*geo.Len())

	for row := range geo.Len() {
		coords, err := coordinates(geo, row)
		if err != nil {
			return nil, err
		}

		record := geo.Record(row)
		points = append(points, models.MapPoint{
			Coordinates: coords,
			Properties:  record,
			Tooltip:     RenderTooltip(TooltipMarkup, record),
		})
		flat = append(flat, coords.Longitude, coords.Latitude)
	}

	view := ViewState{Zoom: InitialZoom, Pitch: InitialPitch}
	if len(points) > 0 {
		centroid, err := xy.Centroid(geom.NewMultiPointFlat(geom.XY, flat))
		if err != nil {
			return nil, fmt.Errorf("failed to compute map centre: %w", err)
		}
		view.Longitude = centroid.X()
		view.Latitude = centroid.Y()
	}

	return &Deck{
		Layers: []Layer{{
			Type:      LayerType,
			Data:      points,
			Radius:    PointRadius,
			FillColor: FillColor,
			Pickable:  true,
		}},
		InitialViewState: view,
		Tooltip: Tooltip{
			HTML:  TooltipMarkup,
			Style: map[string]string{"backgroundColor": "steelblue", "color": "white"},
		},
	}, nil
}

func coordinates(geo *table.Table, row int) (models.Coordinates, error) {
	lon, err := geo.Value(row, geofilter.Longitude)
	if err != nil {
		return models.Coordinates{}, err
	}
	lat, err := geo.Value(row, geofilter.Latitude)
	if err != nil {
		return models.Coordinates{}, err
	}
	if lon.Kind != table.KindNumber {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrNonNumericCoordinates, geofilter.Longitude)
	}
	if lat.Kind != table.KindNumber {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrNonNumericCoordinates, geofilter.Latitude)
	}

	if math.IsInf(lon.Num, 0) || math.IsInf(lat.Num, 0) {
		return models.Coordinates{}, fmt.Errorf("%w: row %d", ErrNonFiniteCoordinates, row)
	}

	return models.Coordinates{Longitude: lon.Num, Latitude: lat.Num}, nil
}

// RenderTooltip substitutes {Column} placeholders with the escaped values of record.
// Placeholders naming an absent column are left as they are.
func RenderTooltip(markup string, record map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(markup, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := record[name]
		if !ok {
			return match
		}
		return html.EscapeString(value)
	})
}
