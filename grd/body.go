package grd

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	gbin "github.com/derrickturk/go-petra-grid/internal/binary"
)

// body is the decoded grid payload plus the spatial fields stored with it.
type body struct {
	rows, columns uint32
	nTriangles    uint32
	bounds        Bounds
	xstep, ystep  float64
	data          GridData
	diags         []Diagnostic
}

// Relative tolerance for comparing stored against computed bounds.
const boundsTolerance = 1e-6

// decodeBody dispatches on the header's grid-kind discriminant.
func decodeBody(cur *gbin.Cursor, h *header) (*body, error) {
	switch h.kind {
	case Rectangular:
		return decodeRectangularBody(cur)
	case Triangulated:
		return decodeTriangularBody(cur)
	}
	// The header parser already rejected unknown discriminants.
	panic(fmt.Sprintf("grd: impossible grid kind %d", h.kind))
}

// decodeRectangularBody reads counts, bounds, steps, and the row-major
// z-value matrix.
func decodeRectangularBody(cur *gbin.Cursor) (*body, error) {
	off := cur.Pos()
	rows, err := cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageBody, err)
	}
	columns, err := cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageBody, err)
	}
	if rows == 0 || columns == 0 {
		return nil, decodeErr(StageBody, off, ErrTruncatedGrid,
			"grid declares %dx%d nodes", rows, columns)
	}

	b := &body{rows: rows, columns: columns}
	fields := []*float64{
		&b.bounds.XMin, &b.bounds.XMax,
		&b.bounds.YMin, &b.bounds.YMax,
		&b.xstep, &b.ystep,
		&b.bounds.ZMin, &b.bounds.ZMax,
	}
	for _, f := range fields {
		if *f, err = cur.ReadFloat64(); err != nil {
			return nil, stageErr(StageBody, err)
		}
	}

	// Validate the payload length against the declared budget before
	// allocating or reading anything: a shortfall must never produce a
	// partially filled array. The byte count is checked for overflow
	// first so absurd counts cannot wrap past the budget compare.
	off = cur.Pos()
	cells := uint64(rows) * uint64(columns)
	if cells > math.MaxInt/8 {
		return nil, decodeErr(StageBody, off, ErrTruncatedGrid,
			"grid declares %dx%d nodes, beyond any valid payload", rows, columns)
	}
	need := cells * 8
	if rem := cur.Remaining(); rem >= 0 && need > uint64(rem) {
		return nil, decodeErr(StageBody, off, ErrTruncatedGrid,
			"need %d payload bytes, %d remain", need, rem)
	}
	vals, err := cur.ReadFloat64s(int(cells))
	if err != nil {
		return nil, payloadErr(err)
	}
	b.data = &RectangularData{Z: mat.NewDense(int(rows), int(columns), vals)}

	// Odd-looking bounds and steps are tolerated (the format is only
	// partially understood) but surfaced for diagnostic tooling.
	if b.bounds.XMin > b.bounds.XMax || b.bounds.YMin > b.bounds.YMax || b.bounds.ZMin > b.bounds.ZMax {
		b.diags = append(b.diags, Diagnostic{
			Kind: ErrInconsistentBounds,
			Detail: fmt.Sprintf("inverted bounds: x [%g, %g], y [%g, %g], z [%g, %g]",
				b.bounds.XMin, b.bounds.XMax, b.bounds.YMin, b.bounds.YMax,
				b.bounds.ZMin, b.bounds.ZMax),
		})
	}
	if b.xstep <= 0 || b.ystep <= 0 {
		b.diags = append(b.diags, Diagnostic{
			Kind:   ErrInconsistentBounds,
			Detail: fmt.Sprintf("non-positive step: xstep %g, ystep %g", b.xstep, b.ystep),
		})
	}

	return b, nil
}

// decodeTriangularBody reads the triangle count, the stored bounds (all
// zero when the writer omitted them), and the vertex triples.
func decodeTriangularBody(cur *gbin.Cursor) (*body, error) {
	off := cur.Pos()
	n, err := cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageBody, err)
	}
	if n == 0 {
		return nil, decodeErr(StageBody, off, ErrTruncatedGrid, "grid declares no triangles")
	}

	b := &body{nTriangles: n}
	var stored Bounds
	fields := []*float64{
		&stored.XMin, &stored.XMax,
		&stored.YMin, &stored.YMax,
		&stored.ZMin, &stored.ZMax,
	}
	for _, f := range fields {
		if *f, err = cur.ReadFloat64(); err != nil {
			return nil, stageErr(StageBody, err)
		}
	}

	off = cur.Pos()
	coords := uint64(n) * 9
	if coords > math.MaxInt/8 {
		return nil, decodeErr(StageBody, off, ErrTruncatedGrid,
			"grid declares %d triangles, beyond any valid payload", n)
	}
	need := coords * 8
	if rem := cur.Remaining(); rem >= 0 && need > uint64(rem) {
		return nil, decodeErr(StageBody, off, ErrTruncatedGrid,
			"need %d payload bytes, %d remain", need, rem)
	}
	vals, err := cur.ReadFloat64s(int(coords))
	if err != nil {
		return nil, payloadErr(err)
	}

	tris := make([]Triangle, n)
	for i := range tris {
		for v := 0; v < 3; v++ {
			base := (i*3 + v) * 3
			tris[i][v] = Vertex{X: vals[base], Y: vals[base+1], Z: vals[base+2]}
		}
	}
	b.data = &TriangularData{Triangles: tris}

	// The format does not reliably store bounds for triangulated grids,
	// so they are recomputed from the vertices. A mismatch with stored
	// bounds is genuine format ambiguity, not corruption: keep the
	// stored values and surface the difference.
	computed := vertexBounds(tris)
	if stored == (Bounds{}) {
		b.bounds = computed
	} else {
		b.bounds = stored
		if !boundsClose(stored, computed) {
			b.diags = append(b.diags, Diagnostic{
				Kind:   ErrInconsistentBounds,
				Detail: fmt.Sprintf("stored bounds %+v differ from vertex bounds %+v", stored, computed),
			})
		}
	}

	return b, nil
}

// payloadErr maps a cursor failure inside the value array onto the decode
// taxonomy: running out of bytes mid-payload is a truncated grid, not a
// generic EOF.
func payloadErr(err error) error {
	var ce *gbin.Error
	if errors.As(err, &ce) && ce.Kind == gbin.KindEOF {
		return &DecodeError{Stage: StageBody, Offset: ce.Offset, Kind: ErrTruncatedGrid, Detail: ce.Detail}
	}
	return stageErr(StageBody, err)
}

// vertexBounds scans every vertex coordinate. Callers guarantee at least
// one triangle.
func vertexBounds(tris []Triangle) Bounds {
	b := Bounds{
		XMin: math.Inf(1), XMax: math.Inf(-1),
		YMin: math.Inf(1), YMax: math.Inf(-1),
		ZMin: math.Inf(1), ZMax: math.Inf(-1),
	}
	for i := range tris {
		for _, v := range tris[i] {
			b.XMin = math.Min(b.XMin, v.X)
			b.XMax = math.Max(b.XMax, v.X)
			b.YMin = math.Min(b.YMin, v.Y)
			b.YMax = math.Max(b.YMax, v.Y)
			b.ZMin = math.Min(b.ZMin, v.Z)
			b.ZMax = math.Max(b.ZMax, v.Z)
		}
	}
	return b
}

func boundsClose(a, b Bounds) bool {
	return floatClose(a.XMin, b.XMin) && floatClose(a.XMax, b.XMax) &&
		floatClose(a.YMin, b.YMin) && floatClose(a.YMax, b.YMax) &&
		floatClose(a.ZMin, b.ZMin) && floatClose(a.ZMax, b.ZMax)
}

func floatClose(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= boundsTolerance*scale
}
