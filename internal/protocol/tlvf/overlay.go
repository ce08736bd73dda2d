package tlvf

import (
	"fmt"
	"math"

	"github.com/danmuck/tlvf/internal/observability"
	"github.com/rs/zerolog/log"
)

// Mode is fixed at construction for the lifetime of an overlay.
type Mode uint8

const (
	ModeParse Mode = iota
	ModeBuild
)

func (m Mode) String() string {
	if m == ModeBuild {
		return "build"
	}
	return "parse"
}

// State is the finalization state. Parsed records start Finalized.
type State uint8

const (
	Unfinalized State = iota
	Finalized
)

func (s State) String() string {
	if s == Finalized {
		return "finalized"
	}
	return "unfinalized"
}

// Limits bounds the arena of a top-level Build record.
type Limits struct {
	CapacityHint int
	MaxCapacity  int
}

func DefaultLimits() Limits {
	return Limits{
		CapacityHint: 64,
		MaxCapacity:  1 << 20,
	}
}

// Overlay maps a Schema onto a byte range of an Arena. The same type serves
// both modes: Parse overlays borrow caller bytes read-only, Build overlays
// claim bytes at the arena tail as payload is appended.
type Overlay struct {
	schema   *Schema
	arena    *Arena
	mode     Mode
	state    State
	base     int
	end      int
	count    int
	set      uint64
	owner    bool
	parent   *Overlay
	children []*Overlay
}

// Parse overlays s onto buf without copying. buf may be longer than the
// record; Size reports how much of it was consumed.
func Parse(s *Schema, buf []byte) (*Overlay, error) {
	return ParseWith(s, buf, nil)
}

// ParseWith is Parse for layouts holding nested records, resolved through reg.
func ParseWith(s *Schema, buf []byte, reg *Registry) (*Overlay, error) {
	o, err := parseAt(s, borrowArena(buf, len(buf)), 0, len(buf), reg, nil)
	observability.RecordParse(s.name, resultLabel(err))
	if err != nil {
		log.Debug().Err(err).Str("layout", s.name).Int("bytes", len(buf)).Msg("tlvf parse rejected")
		return nil, err
	}
	observability.ObserveRecordBytes(s.name, o.Size())
	return o, nil
}

// ParseSequence overlays back-to-back records filling buf, resolving each
// through reg. All returned overlays share one borrowed arena.
func ParseSequence(reg *Registry, buf []byte) ([]*Overlay, error) {
	a := borrowArena(buf, len(buf))
	out := make([]*Overlay, 0, 4)
	for off := 0; off < len(buf); {
		s, err := reg.resolve(a.view(off, len(buf)-off), off)
		if err == nil {
			var o *Overlay
			o, err = parseAt(s, a, off, len(buf), reg, nil)
			if err == nil {
				observability.RecordParse(s.name, resultLabel(nil))
				out = append(out, o)
				off = o.end
				continue
			}
			observability.RecordParse(s.name, resultLabel(err))
		}
		log.Debug().Err(err).Int("offset", off).Msg("tlvf sequence rejected")
		return nil, err
	}
	return out, nil
}

func parseAt(s *Schema, a *Arena, base, limit int, reg *Registry, parent *Overlay) (*Overlay, error) {
	avail := limit - base
	if avail < s.header {
		return nil, malformed(s.name, base, "have %d bytes, need at least %d", avail, s.header)
	}
	raw := a.view(base, avail)
	if s.typeField >= 0 && !s.anyCode {
		f := s.fields[s.typeField]
		if got := getUint(s.order, raw[f.off:f.off+f.width]); got != uint64(s.code) {
			return nil, malformed(s.name, base+f.off, "type 0x%02x, want 0x%02x", got, s.code)
		}
	}

	size := avail
	if s.lengthField >= 0 {
		f := s.fields[s.lengthField]
		declared := getUint(s.order, raw[f.off:f.off+f.width])
		if declared > uint64(avail-s.lengthEnd) {
			return nil, malformed(s.name, base+f.off, "length %d runs past end of buffer (%d bytes remain)", declared, avail-s.lengthEnd)
		}
		size = s.lengthEnd + int(declared)
		if size < s.header {
			return nil, malformed(s.name, base+f.off, "length %d shorter than fixed fields (%d)", declared, s.header-s.lengthEnd)
		}
	}

	o := &Overlay{
		schema: s,
		arena:  a,
		mode:   ModeParse,
		state:  Finalized,
		base:   base,
		end:    base + size,
		set:    ^uint64(0),
		parent: parent,
	}
	body := size - s.header
	switch {
	case s.nested:
		if reg == nil {
			return nil, malformed(s.name, base+s.header, "nested records need a registry")
		}
		for off := base + s.header; off < o.end; {
			cs, err := reg.resolve(a.view(off, o.end-off), off)
			if err != nil {
				return nil, err
			}
			c, err := parseAt(cs, a, off, o.end, reg, o)
			if err != nil {
				return nil, err
			}
			o.children = append(o.children, c)
			off = c.end
		}
	case s.elem > 0:
		if body%s.elem != 0 {
			return nil, malformed(s.name, base+s.header, "payload of %d bytes is not a multiple of %d", body, s.elem)
		}
		o.count = body / s.elem
		if s.countField >= 0 {
			f := s.fields[s.countField]
			declared := getUint(s.order, raw[f.off:f.off+f.width])
			if declared != uint64(o.count) {
				return nil, malformed(s.name, base+f.off, "count %d disagrees with %d payload elements", declared, o.count)
			}
		}
	default:
		if body != 0 {
			return nil, malformed(s.name, base+s.header, "unexpected %d trailing bytes", body)
		}
	}
	return o, nil
}

// NewBuilder starts a top-level record in a pooled, growable arena. The
// returned overlay owns the arena; Release hands it back.
func NewBuilder(s *Schema, limits Limits) (*Overlay, error) {
	hint := max(limits.CapacityHint, s.header)
	if limits.MaxCapacity > 0 && hint > limits.MaxCapacity {
		hint = limits.MaxCapacity
	}
	a := newArena(hint, limits.MaxCapacity)
	o, err := begin(s, a, nil)
	if err != nil {
		a.release()
		return nil, err
	}
	o.owner = true
	return o, nil
}

// NewBuilderInto builds into caller-owned buf. Appends past len(buf) fail
// with ErrBufferFull; buf is never reallocated.
func NewBuilderInto(s *Schema, buf []byte) (*Overlay, error) {
	return begin(s, borrowArena(buf, 0), nil)
}

func begin(s *Schema, a *Arena, parent *Overlay) (*Overlay, error) {
	off, err := a.extend(s.header)
	if err != nil {
		return nil, err
	}
	o := &Overlay{
		schema: s,
		arena:  a,
		mode:   ModeBuild,
		base:   off,
		end:    off + s.header,
		parent: parent,
	}
	if s.typeField >= 0 && !s.anyCode {
		f := s.fields[s.typeField]
		putUint(s.order, a.view(off+f.off, f.width), uint64(s.code))
		o.set |= 1 << uint(s.typeField)
	}
	return o, nil
}

// AddChild appends a nested record of schema s at the end of o.
// Earlier children are locked against further growth once it exists.
func (o *Overlay) AddChild(s *Schema) (*Overlay, error) {
	if err := o.writable(); err != nil {
		return nil, err
	}
	if !o.schema.nested {
		return nil, fmt.Errorf("%w: %s does not hold nested records", ErrInvalidLayout, o.schema.name)
	}
	if err := o.reserve(s.header); err != nil {
		return nil, err
	}
	c, err := begin(s, o.arena, o)
	if err != nil {
		return nil, err
	}
	for p := o; p != nil; p = p.parent {
		p.end += s.header
	}
	o.children = append(o.children, c)
	return c, nil
}

// AllocPayload reserves n zeroed payload elements and counts them at once.
func (o *Overlay) AllocPayload(n int) error {
	if err := o.writable(); err != nil {
		return err
	}
	if o.schema.elem == 0 {
		return fmt.Errorf("%w: %s has no payload array", ErrInvalidLayout, o.schema.name)
	}
	if n < 0 {
		return fmt.Errorf("%w: alloc of %d elements", ErrIndexOutOfRange, n)
	}
	if n > (math.MaxInt-o.arena.Len())/o.schema.elem {
		return fmt.Errorf("%w: %s alloc of %d elements", ErrBufferFull, o.schema.name, n)
	}
	if o.schema.countField >= 0 && o.count+n > o.schema.maxCount {
		return fmt.Errorf("%w: %s count %d exceeds %d", ErrBufferFull, o.schema.name, o.count+n, o.schema.maxCount)
	}
	if _, err := o.extend(n * o.schema.elem); err != nil {
		return err
	}
	o.count += n
	return nil
}

// SetPayload appends src as whole elements, growing the arena as needed.
// Multi-byte elements are copied as given, so src must already be in wire order.
func (o *Overlay) SetPayload(src []byte) error {
	if err := o.writable(); err != nil {
		return err
	}
	if o.schema.elem == 0 {
		return fmt.Errorf("%w: %s has no payload array", ErrInvalidLayout, o.schema.name)
	}
	if len(src)%o.schema.elem != 0 {
		return fmt.Errorf("%w: %d bytes into %d-byte elements", ErrElementSize, len(src), o.schema.elem)
	}
	n := len(src) / o.schema.elem
	if o.schema.countField >= 0 && o.count+n > o.schema.maxCount {
		return fmt.Errorf("%w: %s count %d exceeds %d", ErrBufferFull, o.schema.name, o.count+n, o.schema.maxCount)
	}
	off, err := o.extend(len(src))
	if err != nil {
		return err
	}
	copy(o.arena.buf[off:], src)
	o.count += n
	return nil
}

// Payload returns element idx. In Build mode an index past the count
// allocates up to and including it.
func (o *Overlay) Payload(idx int) (Elem, error) {
	if o.arena.released {
		return Elem{}, ErrReleased
	}
	if o.schema.elem == 0 {
		return Elem{}, fmt.Errorf("%w: %s has no payload array", ErrInvalidLayout, o.schema.name)
	}
	if idx < 0 || (idx >= o.count && o.mode == ModeParse) {
		return Elem{}, fmt.Errorf("%w: %s payload[%d] with %d elements", ErrIndexOutOfRange, o.schema.name, idx, o.count)
	}
	if idx >= o.count {
		if err := o.AllocPayload(idx + 1 - o.count); err != nil {
			return Elem{}, err
		}
	}
	return Elem{o: o, idx: idx}, nil
}

// PayloadLength is element count times element size.
func (o *Overlay) PayloadLength() int { return o.count * o.schema.elem }

// Count is the number of payload elements.
func (o *Overlay) Count() int { return o.count }

// PayloadBytes is a view of the whole element array.
func (o *Overlay) PayloadBytes() []byte {
	if o.arena.released {
		return nil
	}
	return o.arena.view(o.base+o.schema.header, o.PayloadLength())
}

// Field returns a handle to the named fixed field.
func (o *Overlay) Field(name string) (FieldRef, error) {
	i, ok := o.schema.byName[name]
	if !ok {
		return FieldRef{}, fmt.Errorf("%w: %s has no field %q", ErrInvalidLayout, o.schema.name, name)
	}
	return FieldRef{o: o, idx: i}, nil
}

// FieldAt returns a handle to field i. Generated classes index fields by
// constant position; i out of range panics like a slice index.
func (o *Overlay) FieldAt(i int) FieldRef {
	_ = o.schema.fields[i]
	return FieldRef{o: o, idx: i}
}

// Type is the record type code, or 0 for layouts without a type field.
func (o *Overlay) Type() uint16 {
	if o.schema.typeField < 0 || o.arena.released {
		return 0
	}
	return uint16(o.FieldAt(o.schema.typeField).Uint())
}

// Length is the value held in the length field. In Build mode it reads 0
// until Finalize writes it. Layouts without a length field report the bytes
// after the fixed header.
func (o *Overlay) Length() int {
	if o.arena.released {
		return 0
	}
	if o.schema.lengthField < 0 {
		return o.end - o.base - o.schema.header
	}
	return int(o.FieldAt(o.schema.lengthField).Uint())
}

// Size is the number of bytes the record occupies, header included.
func (o *Overlay) Size() int { return o.end - o.base }

// Bytes is a view of the whole record.
func (o *Overlay) Bytes() []byte {
	if o.arena.released {
		return nil
	}
	return o.arena.view(o.base, o.end-o.base)
}

func (o *Overlay) Schema() *Schema { return o.schema }
func (o *Overlay) Mode() Mode { return o.mode }
func (o *Overlay) State() State { return o.state }
func (o *Overlay) Parent() *Overlay { return o.parent }
func (o *Overlay) Children() []*Overlay { return o.children }
func (o *Overlay) Arena() *Arena { return o.arena }
func (o *Overlay) Owner() bool { return o.owner }
func (o *Overlay) Released() bool { return o.arena.released }
func (o *Overlay) String() string { return fmt.Sprintf("%s{type=0x%02x len=%d}", o.schema.name, o.Type(), o.Length()) }

// Release returns the arena to the pool when o owns it. Views held by o or
// its children fail with ErrReleased afterwards.
func (o *Overlay) Release() {
	if !o.owner {
		return
	}
	o.arena.release()
}

func (o *Overlay) writable() error {
	switch {
	case o.arena.released:
		return ErrReleased
	case o.mode == ModeParse:
		return ErrReadOnly
	case o.state == Finalized:
		return fmt.Errorf("%w: %s", ErrFinalized, o.schema.name)
	}
	return nil
}

// reserve checks that n more bytes fit behind o: o must be at the arena
// tail, and no enclosing length or count field may overflow.
func (o *Overlay) reserve(n int) error {
	if n < 0 || n > math.MaxInt-o.arena.Len() {
		return fmt.Errorf("%w: %s cannot claim %d bytes", ErrBufferFull, o.schema.name, n)
	}
	if o.end != o.arena.Len() {
		return fmt.Errorf("%w: %s", ErrAllocationOrder, o.schema.name)
	}
	for p := o; p != nil; p = p.parent {
		if p.state == Finalized {
			return fmt.Errorf("%w: %s", ErrFinalized, p.schema.name)
		}
		s := p.schema
		if s.lengthField < 0 {
			continue
		}
		if body := p.end + n - p.base - s.lengthEnd; body > s.maxBody {
			return fmt.Errorf("%w: %s length %d exceeds %d", ErrBufferFull, s.name, body, s.maxBody)
		}
	}
	return nil
}

// extend claims n bytes at the tail for o and every enclosing record.
func (o *Overlay) extend(n int) (int, error) {
	if err := o.reserve(n); err != nil {
		return 0, err
	}
	off, err := o.arena.extend(n)
	if err != nil {
		return 0, err
	}
	for p := o; p != nil; p = p.parent {
		p.end += n
	}
	return off, nil
}
