package geofilter_test

import (
	"testing"

	"github.com/UnknownOlympus/meridian/internal/geofilter"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postsTable(t *testing.T, records [][]string) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords([]string{"x", "y", "Region", "Type of Post"}, records)
	require.NoError(t, err)

	return tbl
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	t.Run("drops row without longitude", func(t *testing.T) {
		t.Parallel()
		tbl := postsTable(t, [][]string{
			{"1", "2", "EU", "A"},
			{"", "3", "EU", "A"},
		})

		geo, err := geofilter.Filter(tbl, geofilter.AllSelection())

		require.NoError(t, err)
		require.Equal(t, 1, geo.Len())
		assert.Equal(t, []string{"lon", "lat", "Region", "Type of Post"}, geo.Columns())
		lon, err := geo.Value(0, geofilter.Longitude)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, lon.Num, 1e-9)
	})

	t.Run("drops row without latitude", func(t *testing.T) {
		t.Parallel()
		tbl := postsTable(t, [][]string{
			{"1", "", "EU", "A"},
			{"2", "3", "EU", "A"},
		})

		geo, err := geofilter.Prepare(tbl)

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"2", "3", "EU", "A"}}, geo.Strings())
	})

	t.Run("nan coordinate dropped", func(t *testing.T) {
		t.Parallel()
		tbl := postsTable(t, [][]string{
			{"NAN", "2", "EU", "A"},
			{"1", "Nan", "EU", "A"},
			{"3", "4", "EU", "A"},
		})

		geo, err := geofilter.Prepare(tbl)

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"3", "4", "EU", "A"}}, geo.Strings())
	})

	t.Run("infinite coordinate kept", func(t *testing.T) {
		t.Parallel()
		tbl := postsTable(t, [][]string{
			{"inf", "2", "EU", "A"},
			{"3", "4", "EU", "A"},
		})

		geo, err := geofilter.Prepare(tbl)

		require.NoError(t, err)
		assert.Equal(t, 2, geo.Len())
	})

	t.Run("source table untouched", func(t *testing.T) {
		t.Parallel()
		tbl := postsTable(t, [][]string{{"", "3", "EU", "A"}})

		_, err := geofilter.Prepare(tbl)

		require.NoError(t, err)
		assert.Equal(t, 1, tbl.Len())
		assert.True(t, tbl.HasColumn("x"))
	})

	t.Run("missing coordinate column", func(t *testing.T) {
		t.Parallel()
		tbl, err := table.FromRecords([]string{"lon", "lat", "Region", "Type of Post"}, nil)
		require.NoError(t, err)

		geo, err := geofilter.Prepare(tbl)

		require.Nil(t, geo)
		var missing *geofilter.MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "x", missing.Column)
	})
}

func TestApply(t *testing.T) {
	t.Parallel()

	tbl := postsTable(t, [][]string{
		{"1", "1", "EU", "A"},
		{"2", "2", "Asia", "A"},
		{"3", "3", "EU", "B"},
		{"4", "4", "EU", "A"},
		{"5", "5", "", "A"},
	})
	geo, err := geofilter.Prepare(tbl)
	require.NoError(t, err)

	t.Run("all keeps every row", func(t *testing.T) {
		t.Parallel()
		out, errApply := geofilter.Apply(geo, geofilter.AllSelection())

		require.NoError(t, errApply)
		assert.Equal(t, 5, out.Len())
	})

	t.Run("region only", func(t *testing.T) {
		t.Parallel()
		out, errApply := geofilter.Apply(geo, geofilter.Selection{Region: "EU", PostType: geofilter.All})

		require.NoError(t, errApply)
		assert.Equal(t, [][]string{
			{"1", "1", "EU", "A"},
			{"3", "3", "EU", "B"},
			{"4", "4", "EU", "A"},
		}, out.Strings())
	})

	t.Run("both filters keep order", func(t *testing.T) {
		t.Parallel()
		out, errApply := geofilter.Apply(geo, geofilter.Selection{Region: "EU", PostType: "A"})

		require.NoError(t, errApply)
		assert.Equal(t, [][]string{
			{"1", "1", "EU", "A"},
			{"4", "4", "EU", "A"},
		}, out.Strings())
	})

	t.Run("filters commute", func(t *testing.T) {
		t.Parallel()
		regionFirst, errApply := geofilter.Apply(geo, geofilter.Selection{Region: "EU", PostType: geofilter.All})
		require.NoError(t, errApply)
		regionFirst, errApply = geofilter.Apply(regionFirst, geofilter.Selection{Region: geofilter.All, PostType: "A"})
		require.NoError(t, errApply)

		typeFirst, errApply := geofilter.Apply(geo, geofilter.Selection{Region: geofilter.All, PostType: "A"})
		require.NoError(t, errApply)
		typeFirst, errApply = geofilter.Apply(typeFirst, geofilter.Selection{Region: "EU", PostType: geofilter.All})
		require.NoError(t, errApply)

		assert.Equal(t, regionFirst.Strings(), typeFirst.Strings())
	})

	t.Run("case sensitive", func(t *testing.T) {
		t.Parallel()
		out, errApply := geofilter.Apply(geo, geofilter.Selection{Region: "eu", PostType: geofilter.All})

		require.NoError(t, errApply)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("missing region column", func(t *testing.T) {
		t.Parallel()
		noRegion, errTable := table.FromRecords([]string{"x", "y", "Type of Post"}, [][]string{{"1", "2", "A"}})
		require.NoError(t, errTable)

		out, errFilter := geofilter.Filter(noRegion, geofilter.AllSelection())

		require.Nil(t, out)
		var missing *geofilter.MissingColumnError
		require.ErrorAs(t, errFilter, &missing)
		assert.Equal(t, geofilter.RegionColumn, missing.Column)
	})

	t.Run("missing type of post column", func(t *testing.T) {
		t.Parallel()
		noType, errTable := table.FromRecords([]string{"x", "y", "Region"}, [][]string{{"1", "2", "EU"}})
		require.NoError(t, errTable)

		_, errFilter := geofilter.Filter(noType, geofilter.AllSelection())

		var missing *geofilter.MissingColumnError
		require.ErrorAs(t, errFilter, &missing)
		assert.Equal(t, geofilter.PostTypeColumn, missing.Column)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("distinct sorted with sentinel", func(t *testing.T) {
		t.Parallel()
		tbl, err := table.FromRecords([]string{"Region"}, [][]string{{"B"}, {"A"}, {"A"}, {""}})
		require.NoError(t, err)

		options, err := geofilter.Options(tbl, "Region")

		require.NoError(t, err)
		assert.Equal(t, []string{"All", "A", "B"}, options)
	})

	t.Run("numeric column sorts by value", func(t *testing.T) {
		t.Parallel()
		tbl, err := table.FromRecords([]string{"Region"}, [][]string{{"10"}, {"9"}, {"1.5"}, {"9.0"}})
		require.NoError(t, err)

		options, err := geofilter.Options(tbl, "Region")

		require.NoError(t, err)
		assert.Equal(t, []string{"All", "1.5", "9", "10"}, options)
	})

	t.Run("empty column", func(t *testing.T) {
		t.Parallel()
		tbl, err := table.FromRecords([]string{"Region"}, nil)
		require.NoError(t, err)

		options, err := geofilter.Options(tbl, "Region")

		require.NoError(t, err)
		assert.Equal(t, []string{"All"}, options)
	})

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()
		tbl, err := table.FromRecords([]string{"Region"}, nil)
		require.NoError(t, err)

		_, err = geofilter.Options(tbl, "Type of Post")

		var missing *geofilter.MissingColumnError
		require.ErrorAs(t, err, &missing)
	})
}

func TestSelection_Normalize(t *testing.T) {
	t.Parallel()

	regions := []string{"All", "Asia", "EU"}
	types := []string{"All", "A"}

	assert.Equal(t,
		geofilter.Selection{Region: "EU", PostType: "A"},
		geofilter.Selection{Region: "EU", PostType: "A"}.Normalize(regions, types))
	assert.Equal(t,
		geofilter.Selection{Region: "All", PostType: "All"},
		geofilter.Selection{Region: "Africa", PostType: ""}.Normalize(regions, types))
}
