package ieee1905

import (
	"fmt"

	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

// HeaderLen is the size of the type and length fields.
const HeaderLen = 3

// Header returns the type and length fields every 1905 TLV starts with.
// Class layouts append their own fields to it.
func Header(fields ...tlvf.FieldSpec) []tlvf.FieldSpec {
	out := make([]tlvf.FieldSpec, 0, 2+len(fields))
	out = append(out,
		tlvf.FieldSpec{Name: "type", Kind: tlvf.KindType, Width: 1},
		tlvf.FieldSpec{Name: "length", Kind: tlvf.KindLength, Width: 2},
	)
	return append(out, fields...)
}

// Record is the part every class shares: the overlay and the header accessors.
type Record struct {
	o *tlvf.Overlay
}

func (r Record) Overlay() *tlvf.Overlay { return r.o }
func (r Record) Type() TlvType { return TlvType(r.o.Type()) }

// Length reads the length field; in Build mode it is 0 until Finalize.
func (r Record) Length() uint16 { return uint16(r.o.Length()) }

// Bytes is the whole record as currently laid out in the buffer.
func (r Record) Bytes() []byte { return r.o.Bytes() }

func (r Record) Finalize() (tlvf.Wire, error) { return r.o.Finalize() }

// Release frees the buffer of a top-level record built with New<Class>.
func (r Record) Release() { r.o.Release() }

// BuildRecord starts a top-level record of s in its own arena.
func BuildRecord(s *tlvf.Schema, limits tlvf.Limits) (Record, error) {
	o, err := tlvf.NewBuilder(s, limits)
	if err != nil {
		return Record{}, err
	}
	return Record{o: o}, nil
}

// BuildRecordIn appends a record of s to parent.
func BuildRecordIn(parent *tlvf.Overlay, s *tlvf.Schema) (Record, error) {
	o, err := parent.AddChild(s)
	if err != nil {
		return Record{}, err
	}
	return Record{o: o}, nil
}

func ParseRecord(s *tlvf.Schema, buf []byte) (Record, error) {
	o, err := tlvf.Parse(s, buf)
	if err != nil {
		return Record{}, err
	}
	return Record{o: o}, nil
}

// WrapRecord views o as a record of s, failing if o was laid out with
// another schema.
func WrapRecord(o *tlvf.Overlay, s *tlvf.Schema) (Record, error) {
	if o == nil || o.Schema() != s {
		return Record{}, fmt.Errorf("ieee1905: overlay is not a %s", s.Name())
	}
	return Record{o: o}, nil
}
