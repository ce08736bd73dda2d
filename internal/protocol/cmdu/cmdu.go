// Package cmdu assembles and splits 1905 control messages (CMDUs): an
// 8-byte header followed by TLVs up to and including End of Message.
//
// Ownership boundary:
// - CMDU header layout and flag bits
// - terminating and validating the TLV list
package cmdu

import (
	"errors"
	"fmt"

	"github.com/danmuck/tlvf/internal/protocol/ieee1905"
	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

const (
	Version   uint8 = 0x00
	HeaderLen       = 8

	FlagLastFragment   uint8 = 0x80
	FlagRelayIndicator uint8 = 0x40
)

// Header field positions in rootSchema.
const (
	fieldVersion = iota
	fieldReserved
	fieldMessageType
	fieldMessageID
	fieldFragmentID
	fieldFlags
)

// ErrEndOfMessagePosition rejects a built message with TLVs after End of Message.
var ErrEndOfMessagePosition = errors.New("cmdu: end of message is not the last TLV")

var rootSchema = tlvf.MustCompile(tlvf.Layout{
	Name: "cmdu",
	Fields: []tlvf.FieldSpec{
		{Name: "version", Kind: tlvf.KindFixed, Width: 1},
		{Name: "reserved", Kind: tlvf.KindFixed, Width: 1},
		{Name: "message_type", Kind: tlvf.KindFixed, Width: 2, Required: true},
		{Name: "message_id", Kind: tlvf.KindFixed, Width: 2},
		{Name: "fragment_id", Kind: tlvf.KindFixed, Width: 1},
		{Name: "flags", Kind: tlvf.KindFixed, Width: 1},
	},
	Nested: true,
})

// DefaultLimits bounds a CMDU to one unfragmented Ethernet payload.
func DefaultLimits() tlvf.Limits {
	return tlvf.Limits{
		CapacityHint: 256,
		MaxCapacity:  1500,
	}
}

// Message is one CMDU. Its TLVs are nested records sharing the root buffer.
type Message struct {
	root *tlvf.Overlay
}

// New starts a CMDU. Append TLVs with the New<Class>In constructors on Root.
func New(msgType MessageType, mid uint16, limits tlvf.Limits) (*Message, error) {
	root, err := tlvf.NewBuilder(rootSchema, limits)
	if err != nil {
		return nil, err
	}
	if err := root.FieldAt(fieldMessageType).SetUint(uint64(msgType)); err != nil {
		root.Release()
		return nil, err
	}
	if err := root.FieldAt(fieldMessageID).SetUint(uint64(mid)); err != nil {
		root.Release()
		return nil, err
	}
	return &Message{root: root}, nil
}

// Parse overlays a CMDU on buf. Every TLV is resolved through reg, and the
// list must end with exactly one End of Message TLV.
func Parse(buf []byte, reg *tlvf.Registry) (*Message, error) {
	root, err := tlvf.ParseWith(rootSchema, buf, reg)
	if err != nil {
		return nil, err
	}
	if v := uint8(root.FieldAt(fieldVersion).Uint()); v != Version {
		return nil, &tlvf.ParseError{Layout: rootSchema.Name(), Offset: 0, Reason: fmt.Sprintf("version 0x%02x", v)}
	}
	tlvs := root.Children()
	for i, c := range tlvs {
		if ieee1905.TlvType(c.Type()) != ieee1905.TlvTypeEndOfMessage {
			continue
		}
		if i != len(tlvs)-1 {
			return nil, &tlvf.ParseError{Layout: rootSchema.Name(), Offset: childOffset(root, i+1), Reason: "TLVs after end of message"}
		}
		return &Message{root: root}, nil
	}
	return nil, &tlvf.ParseError{Layout: rootSchema.Name(), Offset: len(buf), Reason: "missing end of message TLV"}
}

// childOffset is the offset of TLV i from the start of the CMDU.
func childOffset(root *tlvf.Overlay, i int) int {
	off := HeaderLen
	for _, c := range root.Children()[:i] {
		off += c.Size()
	}
	return off
}

// Root is the overlay TLVs are appended to.
func (m *Message) Root() *tlvf.Overlay { return m.root }

func (m *Message) MessageType() MessageType {
	return MessageType(m.root.FieldAt(fieldMessageType).Uint())
}

func (m *Message) MessageID() uint16 { return uint16(m.root.FieldAt(fieldMessageID).Uint()) }

func (m *Message) FragmentID() uint8 { return uint8(m.root.FieldAt(fieldFragmentID).Uint()) }

func (m *Message) Flags() uint8 { return uint8(m.root.FieldAt(fieldFlags).Uint()) }

func (m *Message) LastFragment() bool { return m.Flags()&FlagLastFragment != 0 }

func (m *Message) RelayIndicator() bool { return m.Flags()&FlagRelayIndicator != 0 }

// SetRelayIndicator marks the CMDU for relayed multicast.
func (m *Message) SetRelayIndicator(on bool) error {
	flags := m.Flags() &^ FlagRelayIndicator
	if on {
		flags |= FlagRelayIndicator
	}
	return m.root.FieldAt(fieldFlags).SetUint(uint64(flags))
}

// TLVs lists the records in wire order, End of Message included once the
// message is finalized or parsed.
func (m *Message) TLVs() []*tlvf.Overlay { return m.root.Children() }

// Find returns the first TLV of type t.
func (m *Message) Find(t ieee1905.TlvType) (*tlvf.Overlay, bool) {
	for _, c := range m.root.Children() {
		if ieee1905.TlvType(c.Type()) == t {
			return c, true
		}
	}
	return nil, false
}

// Finalize terminates the TLV list, sets the last-fragment flag and
// finalizes every TLV. A finalized message is returned unchanged.
func (m *Message) Finalize() (tlvf.Wire, error) {
	if m.root.Mode() == tlvf.ModeParse || m.root.State() == tlvf.Finalized {
		return m.root.Finalize()
	}
	tlvs := m.root.Children()
	for i, c := range tlvs {
		if i < len(tlvs)-1 && ieee1905.TlvType(c.Type()) == ieee1905.TlvTypeEndOfMessage {
			return tlvf.Wire{}, fmt.Errorf("%w: TLV %d of %d", ErrEndOfMessagePosition, i, len(tlvs))
		}
	}
	if n := len(tlvs); n == 0 || ieee1905.TlvType(tlvs[n-1].Type()) != ieee1905.TlvTypeEndOfMessage {
		if _, err := ieee1905.NewTlvEndOfMessageIn(m.root); err != nil {
			return tlvf.Wire{}, fmt.Errorf("cmdu: terminate: %w", err)
		}
	}
	if err := m.root.FieldAt(fieldFlags).SetUint(uint64(m.Flags() | FlagLastFragment)); err != nil {
		return tlvf.Wire{}, err
	}
	return m.root.Finalize()
}

// Bytes is the CMDU as currently laid out.
func (m *Message) Bytes() []byte { return m.root.Bytes() }

// Release returns the buffer of a built message.
func (m *Message) Release() { m.root.Release() }

func (m *Message) String() string {
	return fmt.Sprintf("cmdu{type=%s mid=%d tlvs=%d}", m.MessageType(), m.MessageID(), len(m.root.Children()))
}
