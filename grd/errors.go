// Package grd provides a pure Go reader for Petra GRD binary grid files.
package grd

import (
	"errors"
	"fmt"

	gbin "github.com/derrickturk/go-petra-grid/internal/binary"
)

// Stage identifies the decode phase in which a failure occurred.
type Stage string

const (
	StageHeader   Stage = "header"
	StageMetadata Stage = "metadata"
	StageBody     Stage = "body"
)

// Decode failure kinds. Match against a returned error with errors.Is;
// the concrete error is always a *DecodeError carrying the stage and
// byte offset at the point of failure.
var (
	ErrBadMagic            = errors.New("not a GRD file")
	ErrUnsupportedVersion  = errors.New("unsupported GRD version")
	ErrUnsupportedGridKind = errors.New("unsupported grid kind")
	ErrUnsupportedUnit     = errors.New("unsupported unit of measure")
	ErrUnexpectedEOF       = errors.New("unexpected end of input")
	ErrTruncatedGrid       = errors.New("truncated grid payload")
	ErrInvalidEncoding     = errors.New("invalid text encoding")

	// ErrInconsistentBounds is never fatal: it identifies a Diagnostic
	// reported alongside a successfully decoded Grid.
	ErrInconsistentBounds = errors.New("inconsistent grid bounds")
)

// DecodeError is a fatal decode failure. The decode aborts at the first
// DecodeError; no partial Grid is ever returned.
type DecodeError struct {
	Stage  Stage
	Offset int64
	Kind   error  // one of the Err* sentinels; nil for plain I/O failures
	Detail string // human-readable specifics (bytes found, codes seen)
	Err    error  // underlying cause, if any
}

func (e *DecodeError) Error() string {
	msg := "i/o error"
	if e.Kind != nil {
		msg = e.Kind.Error()
	}
	s := fmt.Sprintf("grd: %s at offset %d in %s", msg, e.Offset, e.Stage)
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *DecodeError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// decodeErr builds a DecodeError for a failure detected by a parser itself.
func decodeErr(stage Stage, off int64, kind error, format string, args ...any) *DecodeError {
	return &DecodeError{Stage: stage, Offset: off, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// stageErr translates a cursor failure into the decode taxonomy, tagging
// it with the stage that triggered the read. I/O errors from the byte
// source propagate unchanged inside the wrapper.
func stageErr(stage Stage, err error) error {
	var ce *gbin.Error
	if !errors.As(err, &ce) {
		return err
	}
	switch ce.Kind {
	case gbin.KindEOF:
		return &DecodeError{Stage: stage, Offset: ce.Offset, Kind: ErrUnexpectedEOF, Detail: ce.Detail}
	case gbin.KindEncoding:
		return &DecodeError{Stage: stage, Offset: ce.Offset, Kind: ErrInvalidEncoding, Detail: ce.Detail}
	default:
		return &DecodeError{Stage: stage, Offset: ce.Offset, Detail: ce.Detail, Err: ce.Err}
	}
}
