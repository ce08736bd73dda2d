package tlvf

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBuffer = errors.New("tlvf: malformed buffer")
	ErrIndexOutOfRange = errors.New("tlvf: index out of range")
	ErrBufferFull      = errors.New("tlvf: buffer full")
	ErrIncompleteData  = errors.New("tlvf: incomplete data")
	ErrChildFinalize   = errors.New("tlvf: child finalize failed")
	ErrFinalized       = errors.New("tlvf: record is finalized")
	ErrReadOnly        = errors.New("tlvf: record is read-only")
	ErrAllocationOrder = errors.New("tlvf: region locked by a later allocation")
	ErrElementSize     = errors.New("tlvf: size is not a whole number of elements")
	ErrReleased        = errors.New("tlvf: record buffer released")
	ErrInvalidLayout   = errors.New("tlvf: invalid layout")
	ErrValueRange      = errors.New("tlvf: value does not fit field width")
)

// ParseError describes why a buffer was rejected during parse.
type ParseError struct {
	Layout string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tlvf: %s: malformed buffer at offset %d: %s", e.Layout, e.Offset, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformedBuffer }

// ChildFinalizeError carries the first nested record that failed to finalize.
type ChildFinalizeError struct {
	Index int
	Code  uint16
	Err   error
}

func (e *ChildFinalizeError) Error() string {
	return fmt.Sprintf("tlvf: child[%d] type=0x%02x: %v", e.Index, e.Code, e.Err)
}

func (e *ChildFinalizeError) Unwrap() []error { return []error{ErrChildFinalize, e.Err} }

func malformed(layout string, offset int, format string, args ...any) error {
	return &ParseError{Layout: layout, Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
