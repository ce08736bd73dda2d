package wfamap

import (
	"fmt"
	"net"

	"github.com/danmuck/tlvf/internal/protocol/ieee1905"
	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

const radioUIDFieldIndex = 2

// TlvApRadioIdentifier names one radio of an agent by its 6-byte unique id.
type TlvApRadioIdentifier struct {
	ieee1905.Record
}

func TlvApRadioIdentifierInitialSize() int { return tlvApRadioIdentifierSchema.InitialSize() }

func NewTlvApRadioIdentifier(limits tlvf.Limits) (*TlvApRadioIdentifier, error) {
	r, err := ieee1905.BuildRecord(tlvApRadioIdentifierSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvApRadioIdentifier{r}, nil
}

func NewTlvApRadioIdentifierIn(parent *tlvf.Overlay) (*TlvApRadioIdentifier, error) {
	r, err := ieee1905.BuildRecordIn(parent, tlvApRadioIdentifierSchema)
	if err != nil {
		return nil, err
	}
	return &TlvApRadioIdentifier{r}, nil
}

func ParseTlvApRadioIdentifier(buf []byte) (*TlvApRadioIdentifier, error) {
	r, err := ieee1905.ParseRecord(tlvApRadioIdentifierSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvApRadioIdentifier{r}, nil
}

func AsTlvApRadioIdentifier(o *tlvf.Overlay) (*TlvApRadioIdentifier, error) {
	r, err := ieee1905.WrapRecord(o, tlvApRadioIdentifierSchema)
	if err != nil {
		return nil, err
	}
	return &TlvApRadioIdentifier{r}, nil
}

func (t *TlvApRadioIdentifier) RadioUID() net.HardwareAddr {
	b := t.Overlay().FieldAt(radioUIDFieldIndex).Bytes()
	if b == nil {
		return nil
	}
	return append(net.HardwareAddr(nil), b...)
}

func (t *TlvApRadioIdentifier) SetRadioUID(uid net.HardwareAddr) error {
	if len(uid) != 6 {
		return fmt.Errorf("%w: radio uid %q is not 6 bytes", tlvf.ErrValueRange, uid.String())
	}
	return t.Overlay().FieldAt(radioUIDFieldIndex).SetBytes(uid)
}
