package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/charts"
	"github.com/UnknownOlympus/meridian/internal/decoding"
	"github.com/UnknownOlympus/meridian/internal/geofilter"
	"github.com/UnknownOlympus/meridian/internal/mapview"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/table"
)

// ChartSource renders the illustrative charts shown above the map.
type ChartSource interface {
	All() ([]charts.Chart, error)
}

// Dashboard is everything the page shows for one upload and one filter selection.
type Dashboard struct {
	Filename        string              // Filename of the rendered upload.
	Table           *table.Table        // Table is the parsed upload.
	Charts          []charts.Chart      // Charts are the illustrative charts.
	RegionOptions   []string            // RegionOptions lists the Region drop-down entries.
	PostTypeOptions []string            // PostTypeOptions lists the Type of Post drop-down entries.
	Selection       geofilter.Selection // Selection is the effective filter selection.
	Map             *mapview.Deck       // Map is the deck.gl configuration of the filtered posts.
}

// DashboardService runs the upload pipeline: decode, parse, chart, filter and map.
type DashboardService struct {
	log     *slog.Logger     // Logger for pipeline activity
	charts  ChartSource      // Source of the illustrative charts
	metrics *metrics.Metrics // Metrics for tracking pipeline runs
}

// NewDashboardService creates a new instance of DashboardService.
func NewDashboardService(log *slog.Logger, charts ChartSource, metrics *metrics.Metrics) *DashboardService {
	return &DashboardService{log: log, charts: charts, metrics: metrics}
}

// Render runs the whole pipeline for one upload and selection. The result is a
// fresh value derived only from its arguments. Any failure, including a panic
// inside a stage, aborts the whole render and is returned as an error; no
// partial dashboard is ever returned.
func (ds *DashboardService) Render(
	ctx context.Context,
	upload models.Upload,
	sel geofilter.Selection,
) (dash *Dashboard, err error) {
	startTime := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			dash, err = nil, fmt.Errorf("unexpected failure while rendering: %v", rec)
		}
		ds.metrics.RenderSeconds.Observe(time.Since(startTime).Seconds())
		ds.metrics.PipelineRuns.WithLabelValues(Outcome(err)).Inc()
		if err != nil {
			ds.log.ErrorContext(ctx, "Failed to render dashboard", "file", upload.Filename, "error", err)
		}
	}()

	ds.log.DebugContext(ctx, "Reading CSV from uploaded and decoded content", "file", upload.Filename)

	text, err := decoding.Decode(upload.Data)
	if err != nil {
		return nil, err
	}

	tbl, err := table.Parse(text)
	if err != nil {
		return nil, err
	}
	ds.log.DebugContext(ctx, "CSV loaded", "columns", len(tbl.Columns()), "rows", tbl.Len())

	rendered, err := ds.charts.All()
	if err != nil {
		return nil, fmt.Errorf("failed to render charts: %w", err)
	}

	geo, err := geofilter.Prepare(tbl)
	if err != nil {
		return nil, err
	}

	regions, err := geofilter.Options(geo, geofilter.RegionColumn)
	if err != nil {
		return nil, err
	}
	postTypes, err := geofilter.Options(geo, geofilter.PostTypeColumn)
	if err != nil {
		return nil, err
	}

	effective := sel.Normalize(regions, postTypes)
	if effective != sel {
		ds.log.DebugContext(ctx, "Selection reset to available options",
			"requested_region", sel.Region, "requested_type", sel.PostType)
	}

	filtered, err := geofilter.Apply(geo, effective)
	if err != nil {
		return nil, err
	}

	deck, err := mapview.Build(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to build map: %w", err)
	}
	ds.metrics.MapPoints.Observe(float64(deck.Points()))
	ds.log.DebugContext(ctx, "Dashboard rendered",
		"rows", tbl.Len(), "map_rows", geo.Len(), "points", deck.Points(),
		"region", effective.Region, "type", effective.PostType)

	return &Dashboard{
		Filename:        upload.Filename,
		Table:           tbl,
		Charts:          rendered,
		RegionOptions:   regions,
		PostTypeOptions: postTypes,
		Selection:       effective,
		Map:             deck,
	}, nil
}

// Outcome classifies a pipeline error for metrics.
func Outcome(err error) string {
	var (
		decodeErr  *decoding.DecodeError
		parseErr   *table.ParseError
		missingErr *table.MissingColumnError
	)

	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &decodeErr):
		return metrics.OutcomeDecodeError
	case errors.As(err, &parseErr):
		return metrics.OutcomeParseError
	case errors.As(err, &missingErr):
		return metrics.OutcomeMissingColumn
	default:
		return metrics.OutcomeInternal
	}
}
