// Package geofilter derives the map table from an uploaded table and applies
// the Region and Type of Post drop-down filters to it.
package geofilter

import (
	"fmt"

	"github.com/UnknownOlympus/meridian/internal/table"
)

// Column names read and produced by the filter.
const (
	SourceLongitude = "x"
	SourceLatitude  = "y"
	Longitude       = "lon"
	Latitude        = "lat"
	RegionColumn    = "Region"
	PostTypeColumn  = "Type of Post"
)

// All is the drop-down sentinel that disables a filter.
const All = "All"

// MissingColumnError is returned when the table lacks a column the filter needs.
type MissingColumnError = table.MissingColumnError

// Selection is the pair of values chosen in the Region and Type of Post drop-downs.
type Selection struct {
	Region   string // Region is All or a value of the Region column.
	PostType string // PostType is All or a value of the Type of Post column.
}

// AllSelection returns the selection that keeps every row.
func AllSelection() Selection {
	return Selection{Region: All, PostType: All}
}

// Normalize resets a value that is empty or not offered by its drop-down to All.
func (s Selection) Normalize(regions, postTypes []string) Selection {
	return Selection{
		Region:   pick(s.Region, regions),
		PostType: pick(s.PostType, postTypes),
	}
}

func pick(value string, options []string) string {
	for _, option := range options {
		if option == value {
			return value
		}
	}

	return All
}

// Prepare renames the x/y columns to lon/lat and drops rows missing either coordinate.
// The source column names are taken literally, no other coordinate columns are looked for.
func Prepare(tbl *table.Table) (*table.Table, error) {
	for _, name := range []string{SourceLongitude, SourceLatitude} {
		if !tbl.HasColumn(name) {
			return nil, &MissingColumnError{Column: name}
		}
	}

	renamed := tbl.Rename(map[string]string{
		SourceLongitude: Longitude,
		SourceLatitude:  Latitude,
	})

	geo, err := renamed.DropMissing(Latitude, Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to drop rows without coordinates: %w", err)
	}

	return geo, nil
}

// Apply keeps the rows matching the selection. Each filter is an exact,
// case-sensitive match and is skipped when set to All. Row order is preserved.
func Apply(geo *table.Table, sel Selection) (*table.Table, error) {
	for _, name := range []string{RegionColumn, PostTypeColumn} {
		if !geo.HasColumn(name) {
			return nil, &MissingColumnError{Column: name}
		}
	}

	filtered := geo
	for _, filter := range []struct {
		column string
		value  string
	}{
		{column: RegionColumn, value: sel.Region},
		{column: PostTypeColumn, value: sel.PostType},
	} {
		if filter.value == All || filter.value == "" {
			continue
		}

		var err error
		filtered, err = filtered.Where(filter.column, filter.value)
		if err != nil {
			return nil, fmt.Errorf("failed to filter by %s: %w", filter.column, err)
		}
	}

	return filtered, nil
}

// Filter is Prepare followed by Apply.
func Filter(tbl *table.Table, sel Selection) (*table.Table, error) {
	geo, err := Prepare(tbl)
	if err != nil {
		return nil, err
	}

	return Apply(geo, sel)
}
