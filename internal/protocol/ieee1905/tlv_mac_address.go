package ieee1905

import (
	"fmt"
	"net"

	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

const macFieldIndex = 2

// TlvAlMacAddress names the 1905 abstraction-layer MAC of the sender.
type TlvAlMacAddress struct {
	Record
}

// TlvMacAddress names the MAC of the interface a CMDU was sent on.
type TlvMacAddress struct {
	Record
}

var (
	tlvAlMacAddressSchema = tlvf.MustCompile(tlvf.Layout{
		Name:   "tlvAlMacAddress",
		Code:   uint16(TlvTypeAlMacAddress),
		Fields: Header(tlvf.FieldSpec{Name: "mac", Kind: tlvf.KindFixed, Width: 6, Required: true}),
	})
	tlvMacAddressSchema = tlvf.MustCompile(tlvf.Layout{
		Name:   "tlvMacAddress",
		Code:   uint16(TlvTypeMacAddress),
		Fields: Header(tlvf.FieldSpec{Name: "mac", Kind: tlvf.KindFixed, Width: 6, Required: true}),
	})
)

func TlvAlMacAddressInitialSize() int { return tlvAlMacAddressSchema.InitialSize() }
func TlvMacAddressInitialSize() int { return tlvMacAddressSchema.InitialSize() }

func NewTlvAlMacAddress(limits tlvf.Limits) (*TlvAlMacAddress, error) {
	r, err := BuildRecord(tlvAlMacAddressSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvAlMacAddress{r}, nil
}

func NewTlvAlMacAddressIn(parent *tlvf.Overlay) (*TlvAlMacAddress, error) {
	r, err := BuildRecordIn(parent, tlvAlMacAddressSchema)
	if err != nil {
		return nil, err
	}
	return &TlvAlMacAddress{r}, nil
}

func ParseTlvAlMacAddress(buf []byte) (*TlvAlMacAddress, error) {
	r, err := ParseRecord(tlvAlMacAddressSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvAlMacAddress{r}, nil
}

func AsTlvAlMacAddress(o *tlvf.Overlay) (*TlvAlMacAddress, error) {
	r, err := WrapRecord(o, tlvAlMacAddressSchema)
	if err != nil {
		return nil, err
	}
	return &TlvAlMacAddress{r}, nil
}

func (t *TlvAlMacAddress) Mac() net.HardwareAddr { return getMac(t.Record) }

func (t *TlvAlMacAddress) SetMac(mac net.HardwareAddr) error { return setMac(t.Record, mac) }

func NewTlvMacAddress(limits tlvf.Limits) (*TlvMacAddress, error) {
	r, err := BuildRecord(tlvMacAddressSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvMacAddress{r}, nil
}

func NewTlvMacAddressIn(parent *tlvf.Overlay) (*TlvMacAddress, error) {
	r, err := BuildRecordIn(parent, tlvMacAddressSchema)
	if err != nil {
		return nil, err
	}
	return &TlvMacAddress{r}, nil
}

func ParseTlvMacAddress(buf []byte) (*TlvMacAddress, error) {
	r, err := ParseRecord(tlvMacAddressSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvMacAddress{r}, nil
}

func AsTlvMacAddress(o *tlvf.Overlay) (*TlvMacAddress, error) {
	r, err := WrapRecord(o, tlvMacAddressSchema)
	if err != nil {
		return nil, err
	}
	return &TlvMacAddress{r}, nil
}

func (t *TlvMacAddress) Mac() net.HardwareAddr { return getMac(t.Record) }

func (t *TlvMacAddress) SetMac(mac net.HardwareAddr) error { return setMac(t.Record, mac) }

// getMac copies the address out so it survives buffer growth or release.
func getMac(r Record) net.HardwareAddr {
	b := r.o.FieldAt(macFieldIndex).Bytes()
	if b == nil {
		return nil
	}
	return append(net.HardwareAddr(nil), b...)
}

func setMac(r Record, mac net.HardwareAddr) error {
	if len(mac) != 6 {
		return fmt.Errorf("%w: mac %q is not 6 bytes", tlvf.ErrValueRange, mac.String())
	}
	return r.o.FieldAt(macFieldIndex).SetBytes(mac)
}
