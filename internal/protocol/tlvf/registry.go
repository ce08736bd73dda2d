package tlvf

import (
	"fmt"
	"sort"
)

// Registry resolves a record's schema from its type code. Every registered
// schema must place its type field where the fallback schema does.
type Registry struct {
	fallback *Schema
	typeOff  int
	typeLen  int
	strict   bool
	schemas  map[uint16]*Schema
}

// NewRegistry returns a registry that resolves unknown codes to fallback.
// fallback must have a type field and is normally compiled with AnyCode.
func NewRegistry(fallback *Schema) (*Registry, error) {
	if fallback == nil || fallback.typeField < 0 {
		return nil, fmt.Errorf("%w: registry fallback needs a type field", ErrInvalidLayout)
	}
	f := fallback.fields[fallback.typeField]
	return &Registry{
		fallback: fallback,
		typeOff:  f.off,
		typeLen:  f.width,
		schemas:  make(map[uint16]*Schema),
	}, nil
}

// Register adds schemas. A code registered twice keeps the last schema.
func (r *Registry) Register(schemas ...*Schema) error {
	for _, s := range schemas {
		if s.typeField < 0 || s.anyCode {
			return fmt.Errorf("%w: %s has no fixed type code", ErrInvalidLayout, s.name)
		}
		f := s.fields[s.typeField]
		if f.off != r.typeOff || f.width != r.typeLen || s.order != r.fallback.order {
			return fmt.Errorf("%w: %s type field does not match registry", ErrInvalidLayout, s.name)
		}
		r.schemas[s.code] = s
	}
	return nil
}

// MustRegister is Register for package initialisation.
func (r *Registry) MustRegister(schemas ...*Schema) {
	if err := r.Register(schemas...); err != nil {
		panic(err)
	}
}

// SetStrict makes unknown type codes a parse error instead of resolving to
// the fallback schema.
func (r *Registry) SetStrict(strict bool) { r.strict = strict }

func (r *Registry) Strict() bool { return r.strict }

// Lookup returns the schema for code and whether it was registered.
func (r *Registry) Lookup(code uint16) (*Schema, bool) {
	s, ok := r.schemas[code]
	if !ok {
		return r.fallback, false
	}
	return s, true
}

// Codes lists registered codes in ascending order.
func (r *Registry) Codes() []uint16 {
	out := make([]uint16, 0, len(r.schemas))
	for code := range r.schemas {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// resolve peeks the type code at the head of b. off is b's arena offset,
// reported in errors.
func (r *Registry) resolve(b []byte, off int) (*Schema, error) {
	if len(b) < r.typeOff+r.typeLen {
		return nil, malformed(r.fallback.name, off, "have %d bytes, need a %d-byte type code", len(b), r.typeOff+r.typeLen)
	}
	code := uint16(getUint(r.fallback.order, b[r.typeOff:r.typeOff+r.typeLen]))
	s, ok := r.Lookup(code)
	if !ok && r.strict {
		return nil, malformed(r.fallback.name, off+r.typeOff, "unknown type 0x%02x", code)
	}
	return s, nil
}
