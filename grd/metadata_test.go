package grd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gbin "github.com/derrickturk/go-petra-grid/internal/binary"
)

func TestMetadataDispatchTableIsClosed(t *testing.T) {
	t.Parallel()

	require.Contains(t, metadataDecoders, uint16(1))
	require.Contains(t, metadataDecoders, uint16(2))
	assert.Len(t, metadataDecoders, 2,
		"new versions need sample files before they get an entry")
}

func TestDecodeMetadataV1Defaults(t *testing.T) {
	t.Parallel()

	cur := gbin.NewCursor(bytes.NewReader(metadataV1().bytes()))
	md, err := decodeMetadata(cur, 1)
	require.NoError(t, err)

	assert.Equal(t, Feet, md.xyUnits)
	assert.Equal(t, Feet, md.zUnits)
	assert.Equal(t, "WELL TOPS", md.sourceData)
	assert.Equal(t, uint32(3), md.gridMethod)

	// Version 1 has no projection section or opaque trailer; the
	// documented defaults apply.
	assert.Empty(t, md.projection)
	assert.Empty(t, md.datum)
	assert.Zero(t, md.projectionCode)
	assert.Zero(t, md.cm)
	assert.Zero(t, md.rlat)
	assert.Nil(t, md.unknown)
}

func TestDecodeMetadataV2Full(t *testing.T) {
	t.Parallel()

	cur := gbin.NewCursor(bytes.NewReader(metadataV2(true, []byte("C66")).bytes()))
	md, err := decodeMetadata(cur, 2)
	require.NoError(t, err)

	assert.Equal(t, "TX-27C", md.projection)
	assert.Equal(t, "NAD27", md.datum)
	assert.Equal(t, uint32(14), md.projectionCode)
	assert.Equal(t, -98.5, md.cm)
	assert.Equal(t, 27.8333, md.rlat)
	assert.Equal(t, []byte("C66"), md.unknown)
}

func TestDecodeMetadataInvalidSourceEncoding(t *testing.T) {
	t.Parallel()

	var b grdBuilder
	b.u32(unitCodeMeters)
	b.u32(unitCodeMeters)
	b.i64(testCreated.Unix())
	b.u16(3)
	b.raw([]byte{'O', 0x01, 'K'}) // control byte inside source data
	b.u32(0)

	cur := gbin.NewCursor(bytes.NewReader(b.bytes()))
	_, err := decodeMetadata(cur, 1)
	requireDecodeError(t, err, ErrInvalidEncoding, StageMetadata)
}
