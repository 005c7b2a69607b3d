package grd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfMeasureString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "feet", Feet.String())
	assert.Equal(t, "meters", Meters.String())
	assert.Equal(t, "UnitOfMeasure(9)", UnitOfMeasure(9).String())
}

func TestUnitFromCode(t *testing.T) {
	t.Parallel()

	u, ok := unitFromCode(unitCodeFeet)
	assert.True(t, ok)
	assert.Equal(t, Feet, u)

	u, ok = unitFromCode(unitCodeMeters)
	assert.True(t, ok)
	assert.Equal(t, Meters, u)

	_, ok = unitFromCode(0)
	assert.False(t, ok, "zero must never default to a unit")
}

func TestGridKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rectangular", Rectangular.String())
	assert.Equal(t, "triangulated", Triangulated.String())
}

func TestKindViewsAreExclusive(t *testing.T) {
	t.Parallel()

	for name, data := range map[string][]byte{
		"rectangular":  rectFile(),
		"triangulated": triFile(),
	} {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g, err := decodeBytes(data)
			require.NoError(t, err)
			assert.NotEqual(t, g.IsRectangular(), g.IsTriangular(),
				"exactly one kind view must hold")
		})
	}
}

func TestGridStringIsBounded(t *testing.T) {
	t.Parallel()

	// A payload value that would be easy to spot if String dumped data.
	marker := 987654.321
	vals := make([]float64, 50*40)
	for i := range vals {
		vals[i] = marker
	}
	data := grdFile(1, kindRectangular, "BIG",
		rectBody(metadataV1(), 50, 40, vals))

	g, err := decodeBytes(data)
	require.NoError(t, err)

	s := g.String()
	assert.Contains(t, s, `"BIG"`)
	assert.Contains(t, s, "rows: 50")
	assert.Contains(t, s, "columns: 40")
	assert.Contains(t, s, "50x40 float64")
	assert.Contains(t, s, "feet")
	assert.NotContains(t, s, "987654", "String must summarize the payload, not dump it")
	assert.Less(t, len(s), 1024)
}

func TestGridStringTriangulated(t *testing.T) {
	t.Parallel()

	g, err := decodeBytes(triFile())
	require.NoError(t, err)

	s := g.String()
	assert.Contains(t, s, "triangulated")
	assert.Contains(t, s, "triangles: 2")
	assert.Contains(t, s, "2x3x3 float64")
	assert.Contains(t, s, `"TX-27C"`)
	assert.Contains(t, s, `"NAD27"`)
	assert.Contains(t, s, "unknown metadata: 3 bytes")
}

func TestDiagnosticString(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Kind: ErrInconsistentBounds, Detail: "stored z differs"}
	s := d.String()
	assert.True(t, strings.HasPrefix(s, ErrInconsistentBounds.Error()))
	assert.Contains(t, s, "stored z differs")
}
