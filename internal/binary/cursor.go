// Package binary provides low-level binary read primitives for GRD file parsing.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
)

// GRD files are little-endian throughout.
var order = binary.LittleEndian

// ErrorKind classifies a cursor read failure.
type ErrorKind int

const (
	// KindEOF means fewer bytes remained than the read requested.
	KindEOF ErrorKind = iota
	// KindEncoding means a text field contained non-decodable bytes.
	KindEncoding
	// KindIO means the underlying byte source failed; the cause is
	// preserved in Err and propagates unchanged.
	KindIO
)

// Error is an offset-tagged failure from a cursor read.
type Error struct {
	Offset int64
	Kind   ErrorKind
	Detail string
	Err    error // underlying I/O cause, only for KindIO
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindEOF:
		msg = "unexpected end of input"
	case KindEncoding:
		msg = "invalid text encoding"
	default:
		msg = "read failed"
	}
	s := fmt.Sprintf("%s at offset %d", msg, e.Offset)
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Cursor reads typed values from a seekable byte source, tracking its
// position so every failure can be reported against an exact file offset.
// The position is private to one decode pass; a Cursor is not safe for
// concurrent use.
type Cursor struct {
	r     io.ReaderAt
	pos   int64
	limit int64 // absolute read boundary; -1 when unbounded
}

// NewCursor creates a cursor positioned at offset 0 with no read boundary.
func NewCursor(r io.ReaderAt) *Cursor {
	return &Cursor{r: r, limit: -1}
}

// LimitTo sets an absolute offset past which the cursor refuses to read.
// Bounding reads by the declared payload size stops a corrupt length
// field from triggering unbounded reads.
func (c *Cursor) LimitTo(off int64) { c.limit = off }

// Pos returns the current read position.
func (c *Cursor) Pos() int64 { return c.pos }

// Remaining reports the bytes left before the limit, or -1 when unbounded.
func (c *Cursor) Remaining() int64 {
	if c.limit < 0 {
		return -1
	}
	if c.limit < c.pos {
		return 0
	}
	return c.limit - c.pos
}

// ReadBytes reads exactly n bytes from the current position.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if c.limit >= 0 && c.pos+int64(n) > c.limit {
		return nil, &Error{
			Offset: c.pos,
			Kind:   KindEOF,
			Detail: fmt.Sprintf("%d bytes requested, %d before limit", n, c.Remaining()),
		}
	}
	buf := make([]byte, n)
	read, err := c.r.ReadAt(buf, c.pos)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &Error{
				Offset: c.pos,
				Kind:   KindEOF,
				Detail: fmt.Sprintf("%d bytes requested, %d available", n, read),
			}
		}
		return nil, &Error{Offset: c.pos, Kind: KindIO, Err: err}
	}
	c.pos += int64(n)
	return buf, nil
}

// ReadRaw reads n bytes verbatim for capturing opaque regions.
// No validation is applied.
func (c *Cursor) ReadRaw(n int) ([]byte, error) {
	return c.ReadBytes(n)
}

// ReadUint8 reads an unsigned 8-bit integer.
func (c *Cursor) ReadUint8() (uint8, error) {
	buf, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (c *Cursor) ReadUint16() (uint16, error) {
	buf, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (c *Cursor) ReadUint32() (uint32, error) {
	buf, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

// ReadInt64 reads a signed 64-bit integer.
func (c *Cursor) ReadInt64() (int64, error) {
	buf, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return int64(order.Uint64(buf)), nil
}

// ReadFloat64 reads an IEEE-754 64-bit float.
func (c *Cursor) ReadFloat64() (float64, error) {
	buf, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(order.Uint64(buf)), nil
}

// ReadFloat64s reads n consecutive IEEE-754 64-bit floats.
func (c *Cursor) ReadFloat64s(n int) ([]float64, error) {
	if n <= 0 {
		return nil, nil
	}
	// A count whose byte length cannot be represented exceeds any
	// possible source; report it as the cursor running out of bytes
	// rather than letting n*8 wrap.
	if n > math.MaxInt/8 {
		return nil, &Error{
			Offset: c.pos,
			Kind:   KindEOF,
			Detail: fmt.Sprintf("%d values requested", n),
		}
	}
	buf, err := c.ReadBytes(n * 8)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.Float64frombits(order.Uint64(buf[i*8:]))
	}
	return vals, nil
}

// ReadFixedText reads an n-byte fixed-length text field. The field is a
// single-byte encoding cut at the first NUL; bytes after the NUL are
// padding and are not inspected. Trailing spaces are trimmed. A
// non-decodable byte in the visible region fails with KindEncoding at
// the offset of the offending byte, never silently replaced.
func (c *Cursor) ReadFixedText(n int) (string, error) {
	start := c.pos
	buf, err := c.ReadBytes(n)
	if err != nil {
		return "", err
	}
	end := len(buf)
	for i, b := range buf {
		if b == 0 {
			end = i
			break
		}
	}
	if err := validateText(buf[:end], start); err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf[:end]), " "), nil
}

// ReadPrefixedText reads a text field preceded by a 16-bit length.
func (c *Cursor) ReadPrefixedText() (string, error) {
	n, err := c.ReadUint16()
	if err != nil {
		return "", err
	}
	start := c.pos
	buf, err := c.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if err := validateText(buf, start); err != nil {
		return "", err
	}
	return string(buf), nil
}

// validateText checks that every byte is decodable single-byte text.
func validateText(buf []byte, start int64) error {
	for i, b := range buf {
		if b < 0x20 || b > 0x7e {
			return &Error{
				Offset: start + int64(i),
				Kind:   KindEncoding,
				Detail: fmt.Sprintf("byte 0x%02x is not decodable text", b),
			}
		}
	}
	return nil
}
