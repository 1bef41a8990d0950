package charts_test

import (
	"bytes"
	"image/png"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/UnknownOlympus/meridian/internal/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_All(t *testing.T) {
	t.Parallel()
	gen := charts.NewGenerator(rand.NewPCG(1, 2))

	rendered, err := gen.All()

	require.NoError(t, err)
	require.Len(t, rendered, 5)

	kinds := make([]string, 0, len(rendered))
	for _, c := range rendered {
		kinds = append(kinds, c.Kind)
		assert.NotEmpty(t, c.Title)

		img, errDecode := png.Decode(bytes.NewReader(c.PNG))
		require.NoError(t, errDecode, c.Kind)
		assert.Positive(t, img.Bounds().Dx())
		assert.True(t, strings.HasPrefix(c.DataURI(), "data:image/png;base64,"))
	}
	assert.Equal(t, []string{
		charts.KindHistogram, charts.KindLine, charts.KindBar, charts.KindArea, charts.KindScatter,
	}, kinds)
}

func TestNewGenerator_NilSource(t *testing.T) {
	t.Parallel()
	gen := charts.NewGenerator(nil)

	c, err := gen.Histogram()

	require.NoError(t, err)
	assert.Equal(t, charts.KindHistogram, c.Kind)
	assert.NotEmpty(t, c.PNG)
}

func TestGenerator_ConcurrentRenders(t *testing.T) {
	t.Parallel()
	gen := charts.NewGenerator(nil)

	const workers = 4
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rendered, err := gen.All()
			if err == nil && len(rendered) != 5 {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}
