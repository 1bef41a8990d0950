package geofilter

import (
	"slices"
	"strings"

	"github.com/UnknownOlympus/meridian/internal/table"
)

// Options lists the drop-down entries for a column: All followed by the
// distinct non-missing values in ascending order. Numeric columns sort by
// value, text columns by code point.
func Options(geo *table.Table, column string) ([]string, error) {
	col, ok := geo.Column(column)
	if !ok {
		return nil, &MissingColumnError{Column: column}
	}

	values, err := geo.Values(column)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(values))
	distinct := make([]table.Value, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, v)
	}

	slices.SortFunc(distinct, func(a, b table.Value) int {
		if col.Kind == table.KindNumber {
			switch {
			case a.Num < b.Num:
				return -1
			case a.Num > b.Num:
				return 1
			default:
				return 0
			}
		}
		return strings.Compare(a.String(), b.String())
	})

	options := make([]string, 0, len(distinct)+1)
	options = append(options, All)
	for _, v := range distinct {
		options = append(options, v.String())
	}

	return options, nil
}
