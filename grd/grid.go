package grd

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// UnitOfMeasure is the measurement unit for a grid dimension. Feet and
// meters are the only codes observed in real GRD files; anything else
// on disk is a decode error, never a silent default.
type UnitOfMeasure uint8

const (
	Feet UnitOfMeasure = iota + 1
	Meters
)

func (u UnitOfMeasure) String() string {
	switch u {
	case Feet:
		return "feet"
	case Meters:
		return "meters"
	default:
		return fmt.Sprintf("UnitOfMeasure(%d)", uint8(u))
	}
}

// On-disk unit codes.
const (
	unitCodeFeet   = 1
	unitCodeMeters = 2
)

func unitFromCode(code uint32) (UnitOfMeasure, bool) {
	switch code {
	case unitCodeFeet:
		return Feet, true
	case unitCodeMeters:
		return Meters, true
	default:
		return 0, false
	}
}

// GridKind is the payload shape discriminant, set once from the header
// and never changed.
type GridKind uint8

const (
	Rectangular GridKind = iota
	Triangulated
)

func (k GridKind) String() string {
	switch k {
	case Rectangular:
		return "rectangular"
	case Triangulated:
		return "triangulated"
	default:
		return fmt.Sprintf("GridKind(%d)", uint8(k))
	}
}

// Vertex is one 3-D point of a triangle.
type Vertex struct {
	X, Y, Z float64
}

// Triangle is three vertices, stored in the file's order (believed to
// be counterclockwise).
type Triangle [3]Vertex

// GridData is the tagged payload variant: exactly one of
// *RectangularData or *TriangularData.
type GridData interface {
	isGridData()
}

// RectangularData is the raster payload: one z value per lattice node,
// row-major, with rows running south to north (origin at the lower left).
type RectangularData struct {
	Z *mat.Dense // rows x columns
}

func (*RectangularData) isGridData() {}

// TriangularData is the mesh payload.
type TriangularData struct {
	Triangles []Triangle
}

func (*TriangularData) isGridData() {}

// Bounds are the spatial extents of a grid.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// Diagnostic is a non-fatal oddity noticed during a successful decode,
// reflecting format ambiguity rather than corruption.
type Diagnostic struct {
	Kind   error // ErrInconsistentBounds
	Detail string
}

func (d Diagnostic) String() string {
	return d.Kind.Error() + ": " + d.Detail
}

// Grid is a decoded Petra grid. It is constructed once per decode pass
// and read-only thereafter; a Grid is safe for concurrent readers.
type Grid struct {
	version      uint16
	name         string
	declaredSize uint32
	kind         GridKind

	rows, columns uint32
	nTriangles    uint32

	bounds       Bounds
	xstep, ystep float64

	xyUnits, zUnits UnitOfMeasure

	createdDate    time.Time
	sourceData     string
	projection     string
	datum          string
	gridMethod     uint32
	projectionCode uint32
	cm, rlat       float64

	unknownMetadata []byte

	data  GridData
	diags []Diagnostic
}

// Version is the format version from the header; always 2 in files
// observed so far, but 1 is accepted for older exports.
func (g *Grid) Version() int { return int(g.version) }

// Name is the grid name, trimmed of field padding.
func (g *Grid) Name() string { return g.name }

// DeclaredSize is the byte count the header claims for the metadata and
// body; it is used only for truncation validation.
func (g *Grid) DeclaredSize() uint32 { return g.declaredSize }

// Kind reports the payload shape. IsRectangular and IsTriangular are
// views over this single tag; they can never disagree.
func (g *Grid) Kind() GridKind { return g.kind }

func (g *Grid) IsRectangular() bool { return g.kind == Rectangular }

func (g *Grid) IsTriangular() bool { return g.kind == Triangulated }

// Rows is the row count along the y dimension (rectangular grids).
func (g *Grid) Rows() int { return int(g.rows) }

// Columns is the column count along the x dimension (rectangular grids).
func (g *Grid) Columns() int { return int(g.columns) }

// NTriangles is the triangle count (triangulated grids); zero for
// rectangular grids.
func (g *Grid) NTriangles() int { return int(g.nTriangles) }

func (g *Grid) Bounds() Bounds { return g.bounds }

func (g *Grid) XMin() float64 { return g.bounds.XMin }
func (g *Grid) XMax() float64 { return g.bounds.XMax }
func (g *Grid) YMin() float64 { return g.bounds.YMin }
func (g *Grid) YMax() float64 { return g.bounds.YMax }
func (g *Grid) ZMin() float64 { return g.bounds.ZMin }
func (g *Grid) ZMax() float64 { return g.bounds.ZMax }

// XStep is the lattice spacing in the x dimension (rectangular only).
func (g *Grid) XStep() float64 { return g.xstep }

// YStep is the lattice spacing in the y dimension (rectangular only).
func (g *Grid) YStep() float64 { return g.ystep }

func (g *Grid) XYUnits() UnitOfMeasure { return g.xyUnits }
func (g *Grid) ZUnits() UnitOfMeasure  { return g.zUnits }

// CreatedDate is the creation (possibly last-modification) timestamp
// recorded by Petra, in UTC.
func (g *Grid) CreatedDate() time.Time { return g.createdDate }

// SourceData describes the source of the data used in gridding.
func (g *Grid) SourceData() string { return g.sourceData }

// Projection is the map projection name (e.g. "TX-27C").
func (g *Grid) Projection() string { return g.projection }

// Datum is the map datum name (e.g. "NAD27").
func (g *Grid) Datum() string { return g.datum }

// GridMethod is the gridding-method code. Its enumeration is not
// established; it is retained as an opaque integer.
func (g *Grid) GridMethod() uint32 { return g.gridMethod }

// ProjectionCode is an enumerated projection code, retained opaque.
func (g *Grid) ProjectionCode() uint32 { return g.projectionCode }

// CM is the projection's central meridian.
func (g *Grid) CM() float64 { return g.cm }

// RLat is the projection's reference latitude.
func (g *Grid) RLat() float64 { return g.rlat }

// UnknownMetadata returns the raw bytes of the metadata regions whose
// layout is not yet understood, preserved verbatim. The returned slice
// is a copy; the Grid stays immutable.
func (g *Grid) UnknownMetadata() []byte {
	if len(g.unknownMetadata) == 0 {
		return nil
	}
	return append([]byte(nil), g.unknownMetadata...)
}

// Data returns the payload variant: *RectangularData of shape
// (rows, columns), or *TriangularData of shape (n_triangles, 3, 3).
func (g *Grid) Data() GridData { return g.data }

// Diagnostics returns the non-fatal findings recorded during decode.
func (g *Grid) Diagnostics() []Diagnostic {
	if len(g.diags) == 0 {
		return nil
	}
	return append([]Diagnostic(nil), g.diags...)
}

// String renders every populated scalar field and summarizes the payload
// by shape and units. It never dumps values, so it stays cheap even for
// grids with millions of nodes.
func (g *Grid) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grid{name: %q, version: %d, kind: %s", g.name, g.version, g.kind)
	switch g.kind {
	case Rectangular:
		fmt.Fprintf(&b, ", rows: %d, columns: %d, xstep: %g, ystep: %g",
			g.rows, g.columns, g.xstep, g.ystep)
	case Triangulated:
		fmt.Fprintf(&b, ", triangles: %d", g.nTriangles)
	}
	fmt.Fprintf(&b, ", x: [%g, %g], y: [%g, %g], z: [%g, %g]",
		g.bounds.XMin, g.bounds.XMax, g.bounds.YMin, g.bounds.YMax,
		g.bounds.ZMin, g.bounds.ZMax)
	fmt.Fprintf(&b, ", xy units: %s, z units: %s", g.xyUnits, g.zUnits)
	if !g.createdDate.IsZero() {
		fmt.Fprintf(&b, ", created: %s", g.createdDate.Format(time.RFC3339))
	}
	if g.sourceData != "" {
		fmt.Fprintf(&b, ", source: %q", g.sourceData)
	}
	if g.projection != "" || g.datum != "" {
		fmt.Fprintf(&b, ", projection: %q, datum: %q, projection code: %d, cm: %g, rlat: %g",
			g.projection, g.datum, g.projectionCode, g.cm, g.rlat)
	}
	fmt.Fprintf(&b, ", grid method: %d", g.gridMethod)
	if len(g.unknownMetadata) > 0 {
		fmt.Fprintf(&b, ", unknown metadata: %d bytes", len(g.unknownMetadata))
	}
	switch g.kind {
	case Rectangular:
		fmt.Fprintf(&b, ", data: %dx%d float64", g.rows, g.columns)
	case Triangulated:
		fmt.Fprintf(&b, ", data: %dx3x3 float64", g.nTriangles)
	}
	b.WriteString("}")
	return b.String()
}
