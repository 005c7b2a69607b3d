package grd

import (
	"fmt"
	"io"
	"os"

	gbin "github.com/derrickturk/go-petra-grid/internal/binary"
)

// ReadGrid opens and decodes the GRD file at path. The file is closed on
// every exit path, success or failure.
func ReadGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat grid file: %w", err)
	}
	return Decode(io.NewSectionReader(f, 0, st.Size()))
}

// Decode decodes a GRD stream from an already-open byte source. The
// source is never closed here; ownership remains with the caller. When
// the source reports its size (as bytes.Reader and io.SectionReader do),
// reads are additionally bounded by it so a truncated file is detected
// before the payload is allocated.
//
// Decode runs header, metadata, and body parsing in strict sequence over
// one cursor. The first failure aborts with a *DecodeError carrying the
// stage and byte offset; no partial Grid is ever returned.
func Decode(r io.ReaderAt) (*Grid, error) {
	cur := gbin.NewCursor(r)

	h, err := decodeHeader(cur)
	if err != nil {
		return nil, err
	}

	limit := h.end + int64(h.size)
	if s, ok := r.(interface{ Size() int64 }); ok && s.Size() < limit {
		limit = s.Size()
	}
	cur.LimitTo(limit)

	md, err := decodeMetadata(cur, h.version)
	if err != nil {
		return nil, err
	}

	b, err := decodeBody(cur, h)
	if err != nil {
		return nil, err
	}

	return newGrid(h, md, b), nil
}

// newGrid assembles the stage results into the immutable aggregate.
func newGrid(h *header, md *metadata, b *body) *Grid {
	return &Grid{
		version:      h.version,
		name:         h.name,
		declaredSize: h.size,
		kind:         h.kind,

		rows:       b.rows,
		columns:    b.columns,
		nTriangles: b.nTriangles,

		bounds: b.bounds,
		xstep:  b.xstep,
		ystep:  b.ystep,

		xyUnits: md.xyUnits,
		zUnits:  md.zUnits,

		createdDate:    md.createdDate,
		sourceData:     md.sourceData,
		projection:     md.projection,
		datum:          md.datum,
		gridMethod:     md.gridMethod,
		projectionCode: md.projectionCode,
		cm:             md.cm,
		rlat:           md.rlat,

		unknownMetadata: md.unknown,

		data:  b.data,
		diags: b.diags,
	}
}
