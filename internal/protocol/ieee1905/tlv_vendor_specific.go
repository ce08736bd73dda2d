package ieee1905

import "github.com/danmuck/tlvf/internal/protocol/tlvf"

const vendorOUIFieldIndex = 2

// TlvVendorSpecific carries vendor data behind a 3-byte OUI.
type TlvVendorSpecific struct {
	Record
}

var tlvVendorSpecificSchema = tlvf.MustCompile(tlvf.Layout{
	Name:     "tlvVendorSpecific",
	Code:     uint16(TlvTypeVendorSpecific),
	Fields:   Header(tlvf.FieldSpec{Name: "vendor_oui", Kind: tlvf.KindFixed, Width: 3, Required: true}),
	ElemSize: 1,
})

func TlvVendorSpecificInitialSize() int { return tlvVendorSpecificSchema.InitialSize() }

func NewTlvVendorSpecific(limits tlvf.Limits) (*TlvVendorSpecific, error) {
	r, err := BuildRecord(tlvVendorSpecificSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvVendorSpecific{r}, nil
}

func NewTlvVendorSpecificIn(parent *tlvf.Overlay) (*TlvVendorSpecific, error) {
	r, err := BuildRecordIn(parent, tlvVendorSpecificSchema)
	if err != nil {
		return nil, err
	}
	return &TlvVendorSpecific{r}, nil
}

func ParseTlvVendorSpecific(buf []byte) (*TlvVendorSpecific, error) {
	r, err := ParseRecord(tlvVendorSpecificSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvVendorSpecific{r}, nil
}

func AsTlvVendorSpecific(o *tlvf.Overlay) (*TlvVendorSpecific, error) {
	r, err := WrapRecord(o, tlvVendorSpecificSchema)
	if err != nil {
		return nil, err
	}
	return &TlvVendorSpecific{r}, nil
}

// VendorOUI is the OUI as a 24-bit big-endian number.
func (t *TlvVendorSpecific) VendorOUI() uint32 {
	return uint32(t.o.FieldAt(vendorOUIFieldIndex).Uint())
}

func (t *TlvVendorSpecific) SetVendorOUI(oui uint32) error {
	return t.o.FieldAt(vendorOUIFieldIndex).SetUint(uint64(oui))
}

func (t *TlvVendorSpecific) PayloadLength() int { return t.o.PayloadLength() }

func (t *TlvVendorSpecific) Payload(idx int) (tlvf.Elem, error) { return t.o.Payload(idx) }

func (t *TlvVendorSpecific) PayloadBytes() []byte { return t.o.PayloadBytes() }

func (t *TlvVendorSpecific) SetPayload(b []byte) error { return t.o.SetPayload(b) }

func (t *TlvVendorSpecific) AllocPayload(count int) error { return t.o.AllocPayload(count) }
