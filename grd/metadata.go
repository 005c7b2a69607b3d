package grd

import (
	"time"

	gbin "github.com/derrickturk/go-petra-grid/internal/binary"
)

// metadata is the variable, version-gated block between header and body.
// Fields absent from a version (or skipped via presence flags) keep their
// zero values: empty text, zero numbers.
type metadata struct {
	xyUnits, zUnits UnitOfMeasure
	createdDate     time.Time
	sourceData      string
	gridMethod      uint32

	projection     string
	datum          string
	projectionCode uint32
	cm, rlat       float64

	unknown []byte // raw bytes whose layout is not understood, verbatim
}

// Presence-flag bits for optional metadata sections (version 2).
const flagProjection = 0x01

// metadataDecoders is the closed per-version dispatch table. New format
// versions get an entry here as sample files establish their layout; the
// header parser rejects any version without an entry, so lookups in this
// table never miss.
var metadataDecoders = map[uint16]func(*gbin.Cursor) (*metadata, error){
	1: decodeMetadataV1,
	2: decodeMetadataV2,
}

func decodeMetadata(cur *gbin.Cursor, version uint16) (*metadata, error) {
	return metadataDecoders[version](cur)
}

// decodeMetadataCommon reads the entries shared by every known version:
// units, creation date, source data, gridding method.
func decodeMetadataCommon(cur *gbin.Cursor) (*metadata, error) {
	md := &metadata{}

	// Silently defaulting an unknown unit code would corrupt all
	// downstream geospatial math, so it aborts the decode.
	off := cur.Pos()
	code, err := cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}
	md.xyUnits, err = requireUnit(code, off, "xy")
	if err != nil {
		return nil, err
	}

	off = cur.Pos()
	code, err = cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}
	md.zUnits, err = requireUnit(code, off, "z")
	if err != nil {
		return nil, err
	}

	secs, err := cur.ReadInt64()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}
	md.createdDate = time.Unix(secs, 0).UTC()

	md.sourceData, err = cur.ReadPrefixedText()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}

	md.gridMethod, err = cur.ReadUint32()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}

	return md, nil
}

func requireUnit(code uint32, off int64, dim string) (UnitOfMeasure, error) {
	u, ok := unitFromCode(code)
	if !ok {
		return 0, decodeErr(StageMetadata, off, ErrUnsupportedUnit, "%s unit code %d", dim, code)
	}
	return u, nil
}

func decodeMetadataV1(cur *gbin.Cursor) (*metadata, error) {
	// Version 1 carries no projection section and no opaque trailer.
	return decodeMetadataCommon(cur)
}

func decodeMetadataV2(cur *gbin.Cursor) (*metadata, error) {
	md, err := decodeMetadataCommon(cur)
	if err != nil {
		return nil, err
	}

	flags, err := cur.ReadUint8()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}

	// An absent projection section is fine; a present-but-malformed
	// one is fatal.
	if flags&flagProjection != 0 {
		md.projection, err = cur.ReadPrefixedText()
		if err != nil {
			return nil, stageErr(StageMetadata, err)
		}
		md.datum, err = cur.ReadPrefixedText()
		if err != nil {
			return nil, stageErr(StageMetadata, err)
		}
		md.projectionCode, err = cur.ReadUint32()
		if err != nil {
			return nil, stageErr(StageMetadata, err)
		}
		md.cm, err = cur.ReadFloat64()
		if err != nil {
			return nil, stageErr(StageMetadata, err)
		}
		md.rlat, err = cur.ReadFloat64()
		if err != nil {
			return nil, stageErr(StageMetadata, err)
		}
	}

	// Trailing region with unestablished layout (always "C66" in files
	// seen so far). Preserved verbatim so later format knowledge can be
	// added without losing data already read.
	n, err := cur.ReadUint16()
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}
	md.unknown, err = cur.ReadRaw(int(n))
	if err != nil {
		return nil, stageErr(StageMetadata, err)
	}

	return md, nil
}
