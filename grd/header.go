package grd

import (
	"bytes"

	gbin "github.com/derrickturk/go-petra-grid/internal/binary"
)

// GRD file signature.
var magic = []byte{'P', 'G', 'R', 'D'}

const (
	// The grid name occupies a fixed field, NUL/space padded.
	nameFieldLen = 80

	// On-disk grid-kind discriminants.
	kindRectangular  = 0
	kindTriangulated = 1
)

// header is the fixed-layout GRD prefix.
type header struct {
	version uint16
	kind    GridKind
	name    string
	size    uint32 // declared byte count of metadata + body
	end     int64  // offset of the first byte after the header
}

// decodeHeader reads magic, version, grid-kind discriminant, name, and
// declared size. Body layout is version- and kind-dependent, so an
// unknown version or kind is fatal here; guessing is never safe.
func decodeHeader(cur *gbin.Cursor) (*header, error) {
	off := cur.Pos()
	sig, err := cur.ReadBytes(len(magic))
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}
	if !bytes.Equal(sig, magic) {
		return nil, decodeErr(StageHeader, off, ErrBadMagic, "got % x, want %q", sig, magic)
	}

	off = cur.Pos()
	version, err := cur.ReadUint16()
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}
	if _, ok := metadataDecoders[version]; !ok {
		return nil, decodeErr(StageHeader, off, ErrUnsupportedVersion, "version %d", version)
	}

	off = cur.Pos()
	kindCode, err := cur.ReadUint8()
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}
	var kind GridKind
	switch kindCode {
	case kindRectangular:
		kind = Rectangular
	case kindTriangulated:
		kind = Triangulated
	default:
		return nil, decodeErr(StageHeader, off, ErrUnsupportedGridKind, "kind code %d", kindCode)
	}

	name, err := cur.ReadFixedText(nameFieldLen)
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}

	size, err := cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageHeader, err)
	}

	return &header{
		version: version,
		kind:    kind,
		name:    name,
		size:    size,
		end:     cur.Pos(),
	}, nil
}
