package tlvf

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Kind classifies a fixed field by who writes it and what it governs.
type Kind uint8

const (
	KindFixed  Kind = iota // caller-owned value
	KindType               // record type code, written at construction
	KindLength             // byte count of everything after this field, written at finalize
	KindCount              // element count of the payload array, written at finalize
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindType:
		return "type"
	case KindLength:
		return "length"
	case KindCount:
		return "count"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Swap selects how a multi-byte field value is converted between host and wire order.
type Swap uint8

const (
	// SwapOnWrite encodes the value in wire order when it is set.
	SwapOnWrite Swap = iota
	// SwapCaller stores the value in host order; the caller supplies it pre-swapped.
	SwapCaller
	// SwapDeferred marks an engine-computed field encoded at finalize.
	SwapDeferred
)

// FieldSpec declares one fixed-width field of a record layout.
type FieldSpec struct {
	Name     string
	Kind     Kind
	Width    int
	Swap     Swap
	Required bool
}

// Layout is the declarative description a generated record class supplies:
// its fixed fields in wire order followed by an optional payload area holding
// either an element array (ElemSize > 0) or nested records (Nested).
type Layout struct {
	Name     string
	Code     uint16
	AnyCode  bool
	Fields   []FieldSpec
	ElemSize int
	MinElems int
	Nested   bool
	Order    binary.ByteOrder
}

type field struct {
	name     string
	kind     Kind
	off      int
	width    int
	swap     Swap
	required bool
}

// Schema is a compiled Layout: validated offset/width descriptors per field.
type Schema struct {
	name        string
	code        uint16
	anyCode     bool
	fields      []field
	byName      map[string]int
	typeField   int
	lengthField int
	countField  int
	header      int
	lengthEnd   int
	elem        int
	minElems    int
	nested      bool
	order       binary.ByteOrder
	maxBody     int
	maxCount    int
}

const maxFields = 64

// Compile validates l and computes field offsets.
func Compile(l Layout) (*Schema, error) {
	if strings.TrimSpace(l.Name) == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidLayout)
	}
	if len(l.Fields) > maxFields {
		return nil, fmt.Errorf("%w: %s: %d fields exceeds %d", ErrInvalidLayout, l.Name, len(l.Fields), maxFields)
	}
	if l.ElemSize < 0 || l.MinElems < 0 {
		return nil, fmt.Errorf("%w: %s: negative element size or minimum", ErrInvalidLayout, l.Name)
	}
	if l.ElemSize > 0 && l.Nested {
		return nil, fmt.Errorf("%w: %s: payload cannot be both an array and nested records", ErrInvalidLayout, l.Name)
	}
	if l.MinElems > 0 && l.ElemSize == 0 {
		return nil, fmt.Errorf("%w: %s: minimum elements without a payload array", ErrInvalidLayout, l.Name)
	}

	s := &Schema{
		name:        l.Name,
		code:        l.Code,
		anyCode:     l.AnyCode,
		fields:      make([]field, 0, len(l.Fields)),
		byName:      make(map[string]int, len(l.Fields)),
		typeField:   -1,
		lengthField: -1,
		countField:  -1,
		elem:        l.ElemSize,
		minElems:    l.MinElems,
		nested:      l.Nested,
		order:       l.Order,
		maxBody:     -1,
		maxCount:    -1,
	}
	if s.order == nil {
		s.order = binary.BigEndian
	}

	off := 0
	for i, spec := range l.Fields {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: %s: field[%d] missing name", ErrInvalidLayout, l.Name, i)
		}
		if _, dup := s.byName[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidLayout, l.Name, spec.Name)
		}
		if spec.Width <= 0 {
			return nil, fmt.Errorf("%w: %s: field %q has width %d", ErrInvalidLayout, l.Name, spec.Name, spec.Width)
		}
		f := field{name: spec.Name, kind: spec.Kind, off: off, width: spec.Width, swap: spec.Swap, required: spec.Required}
		switch spec.Kind {
		case KindType, KindLength, KindCount:
			if !integerWidth(spec.Width) {
				return nil, fmt.Errorf("%w: %s: %s field %q must be 1, 2, 4 or 8 bytes", ErrInvalidLayout, l.Name, spec.Kind, spec.Name)
			}
		}
		switch spec.Kind {
		case KindType:
			if s.typeField >= 0 {
				return nil, fmt.Errorf("%w: %s: more than one type field", ErrInvalidLayout, l.Name)
			}
			if !l.AnyCode && uint64(l.Code) > maxUint(spec.Width) {
				return nil, fmt.Errorf("%w: %s: code 0x%x does not fit %d-byte type field", ErrInvalidLayout, l.Name, l.Code, spec.Width)
			}
			f.swap = SwapOnWrite
			f.required = false
			s.typeField = i
		case KindLength:
			if s.lengthField >= 0 {
				return nil, fmt.Errorf("%w: %s: more than one length field", ErrInvalidLayout, l.Name)
			}
			f.swap = SwapDeferred
			f.required = false
			s.lengthField = i
			s.lengthEnd = off + spec.Width
			s.maxBody = int(min(maxUint(spec.Width), uint64(maxRecordBytes)))
		case KindCount:
			if s.countField >= 0 {
				return nil, fmt.Errorf("%w: %s: more than one count field", ErrInvalidLayout, l.Name)
			}
			if l.ElemSize == 0 {
				return nil, fmt.Errorf("%w: %s: count field %q without a payload array", ErrInvalidLayout, l.Name, spec.Name)
			}
			f.swap = SwapDeferred
			f.required = false
			s.countField = i
			s.maxCount = int(min(maxUint(spec.Width), uint64(maxRecordBytes)))
		case KindFixed:
			if spec.Swap == SwapDeferred {
				return nil, fmt.Errorf("%w: %s: fixed field %q cannot be deferred", ErrInvalidLayout, l.Name, spec.Name)
			}
		default:
			return nil, fmt.Errorf("%w: %s: field %q has unknown kind %d", ErrInvalidLayout, l.Name, spec.Name, spec.Kind)
		}
		s.byName[spec.Name] = i
		s.fields = append(s.fields, f)
		off += spec.Width
	}
	s.header = off
	if s.lengthField >= 0 && s.header-s.lengthEnd > s.maxBody {
		return nil, fmt.Errorf("%w: %s: fixed fields overflow the length field", ErrInvalidLayout, l.Name)
	}
	return s, nil
}

// MustCompile is like Compile but panics on an invalid layout. It is meant
// for package-level schema variables of generated record classes.
func MustCompile(l Layout) *Schema {
	s, err := Compile(l)
	if err != nil {
		panic(err)
	}
	return s
}

// maxRecordBytes bounds arenas, and length and count fields wider than the host int.
const maxRecordBytes = 1<<31 - 1

func (s *Schema) Name() string { return s.name }
func (s *Schema) Code() uint16 { return s.code }
func (s *Schema) Order() binary.ByteOrder { return s.order }
func (s *Schema) ElemSize() int { return s.elem }
func (s *Schema) Nested() bool { return s.nested }
func (s *Schema) NumFields() int { return len(s.fields) }

// InitialSize is the byte count of a record with no payload: the sum of its
// fixed field widths. Buffers shorter than this never parse.
func (s *Schema) InitialSize() int { return s.header }

// FieldIndex returns the position of the named field.
func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// MaxPayload is the largest number of bytes the length field can describe
// after the fixed header, or -1 when the layout has no length field.
func (s *Schema) MaxPayload() int {
	if s.lengthField < 0 {
		return -1
	}
	return s.maxBody - (s.header - s.lengthEnd)
}

// finalValues computes the length and count values for a record of size
// bytes holding count elements, with set marking the fixed fields written.
func (s *Schema) finalValues(size, count int, set uint64) (length, elems uint64, err error) {
	if count < s.minElems {
		return 0, 0, fmt.Errorf("%w: %s has %d elements, requires %d", ErrIncompleteData, s.name, count, s.minElems)
	}
	for i, f := range s.fields {
		if f.required && set&(1<<uint(i)) == 0 {
			return 0, 0, fmt.Errorf("%w: %s field %q never written", ErrIncompleteData, s.name, f.name)
		}
	}
	if s.lengthField >= 0 {
		body := size - s.lengthEnd
		if body > s.maxBody {
			return 0, 0, fmt.Errorf("%w: %s length %d exceeds %d", ErrBufferFull, s.name, body, s.maxBody)
		}
		length = uint64(body)
	}
	if s.countField >= 0 {
		if count > s.maxCount {
			return 0, 0, fmt.Errorf("%w: %s count %d exceeds %d", ErrBufferFull, s.name, count, s.maxCount)
		}
		elems = uint64(count)
	}
	return length, elems, nil
}

func integerWidth(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}

func maxUint(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(width)) - 1
}
