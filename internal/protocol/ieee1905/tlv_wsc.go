package ieee1905

import "github.com/danmuck/tlvf/internal/protocol/tlvf"

// TlvWsc carries one Wi-Fi Simple Configuration frame (M1 or M2) as an
// opaque byte payload.
type TlvWsc struct {
	Record
}

var tlvWscSchema = tlvf.MustCompile(tlvf.Layout{
	Name:     "tlvWsc",
	Code:     uint16(TlvTypeWsc),
	Fields:   Header(),
	ElemSize: 1,
})

func TlvWscInitialSize() int { return tlvWscSchema.InitialSize() }

func NewTlvWsc(limits tlvf.Limits) (*TlvWsc, error) {
	r, err := BuildRecord(tlvWscSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvWsc{r}, nil
}

// NewTlvWscIn appends a WSC TLV to parent, sharing its buffer.
func NewTlvWscIn(parent *tlvf.Overlay) (*TlvWsc, error) {
	r, err := BuildRecordIn(parent, tlvWscSchema)
	if err != nil {
		return nil, err
	}
	return &TlvWsc{r}, nil
}

func ParseTlvWsc(buf []byte) (*TlvWsc, error) {
	r, err := ParseRecord(tlvWscSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvWsc{r}, nil
}

func AsTlvWsc(o *tlvf.Overlay) (*TlvWsc, error) {
	r, err := WrapRecord(o, tlvWscSchema)
	if err != nil {
		return nil, err
	}
	return &TlvWsc{r}, nil
}

func (t *TlvWsc) PayloadLength() int { return t.o.PayloadLength() }

// Payload returns byte idx of the WSC frame.
func (t *TlvWsc) Payload(idx int) (tlvf.Elem, error) { return t.o.Payload(idx) }

// PayloadBytes is a view of the whole WSC frame.
func (t *TlvWsc) PayloadBytes() []byte { return t.o.PayloadBytes() }

func (t *TlvWsc) SetPayload(b []byte) error { return t.o.SetPayload(b) }

func (t *TlvWsc) AllocPayload(count int) error { return t.o.AllocPayload(count) }
