package tlvf

import (
	"encoding/binary"
	"fmt"
)

// FieldRef is a handle to one fixed field of an overlay. It holds no slice
// into the arena: every call resolves the field's bytes again, so a handle
// taken before the arena grew still reads and writes the right place.
type FieldRef struct {
	o   *Overlay
	idx int
}

func (f FieldRef) spec() field { return f.o.schema.fields[f.idx] }

func (f FieldRef) Name() string { return f.spec().name }
func (f FieldRef) Kind() Kind { return f.spec().kind }
func (f FieldRef) Width() int { return f.spec().width }

func (f FieldRef) order() binary.ByteOrder {
	if f.spec().swap == SwapCaller {
		return hostOrder
	}
	return f.o.schema.order
}

// Bytes is a view of the field's bytes, or nil once the arena is released.
func (f FieldRef) Bytes() []byte {
	if f.o.arena.released {
		return nil
	}
	sp := f.spec()
	return f.o.arena.view(f.o.base+sp.off, sp.width)
}

// Uint decodes the field. SwapCaller fields come back exactly as they were
// set; every other field is decoded from wire order.
func (f FieldRef) Uint() uint64 {
	b := f.Bytes()
	if b == nil || len(b) > 8 {
		return 0
	}
	return getUint(f.order(), b)
}

// SetUint writes v straight into the buffer. Length and count fields are
// computed by Finalize and cannot be set.
func (f FieldRef) SetUint(v uint64) error {
	if err := f.settable(); err != nil {
		return err
	}
	sp := f.spec()
	if sp.width > 8 || v > maxUint(sp.width) {
		return fmt.Errorf("%w: %d into %d-byte field %q", ErrValueRange, v, sp.width, sp.name)
	}
	putUint(f.order(), f.Bytes(), v)
	f.o.set |= 1 << uint(f.idx)
	return nil
}

// SetBytes copies b, which must be exactly the field width, into the field.
func (f FieldRef) SetBytes(b []byte) error {
	if err := f.settable(); err != nil {
		return err
	}
	sp := f.spec()
	if len(b) != sp.width {
		return fmt.Errorf("%w: %d bytes into %d-byte field %q", ErrValueRange, len(b), sp.width, sp.name)
	}
	copy(f.Bytes(), b)
	f.o.set |= 1 << uint(f.idx)
	return nil
}

// IsSet reports whether the field was written since construction.
func (f FieldRef) IsSet() bool { return f.o.set&(1<<uint(f.idx)) != 0 }

func (f FieldRef) settable() error {
	if err := f.o.writable(); err != nil {
		return err
	}
	sp := f.spec()
	if sp.swap == SwapDeferred {
		return fmt.Errorf("%w: %s field %q is computed at finalize", ErrReadOnly, sp.kind, sp.name)
	}
	if sp.kind == KindType && !f.o.schema.anyCode {
		return fmt.Errorf("%w: type of %s is fixed", ErrReadOnly, f.o.schema.name)
	}
	return nil
}

// Elem is a handle to one payload element, resolved per call like FieldRef.
type Elem struct {
	o   *Overlay
	idx int
}

func (e Elem) Index() int { return e.idx }

// Bytes is a view of the element, or nil once the arena is released.
func (e Elem) Bytes() []byte {
	if e.o == nil || e.o.arena.released {
		return nil
	}
	w := e.o.schema.elem
	return e.o.arena.view(e.o.base+e.o.schema.header+e.idx*w, w)
}

// Uint decodes the element from wire order. Elements wider than 8 bytes read 0.
func (e Elem) Uint() uint64 {
	b := e.Bytes()
	if b == nil || len(b) > 8 {
		return 0
	}
	return getUint(e.o.schema.order, b)
}

// SetUint encodes v in wire order.
func (e Elem) SetUint(v uint64) error {
	if err := e.o.writable(); err != nil {
		return err
	}
	w := e.o.schema.elem
	if w > 8 || v > maxUint(w) {
		return fmt.Errorf("%w: %d into %d-byte element", ErrValueRange, v, w)
	}
	putUint(e.o.schema.order, e.Bytes(), v)
	return nil
}

// Set copies b, which must be exactly one element wide.
func (e Elem) Set(b []byte) error {
	if err := e.o.writable(); err != nil {
		return err
	}
	if len(b) != e.o.schema.elem {
		return fmt.Errorf("%w: %d bytes into %d-byte element", ErrElementSize, len(b), e.o.schema.elem)
	}
	copy(e.Bytes(), b)
	return nil
}
