package ieee1905

import (
	"fmt"

	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

// Role is the 1905 device role carried by the searched and supported role TLVs.
type Role uint8

const RoleRegistrar Role = 0x00

func (r Role) String() string {
	if r == RoleRegistrar {
		return "registrar"
	}
	return fmt.Sprintf("role(0x%02x)", uint8(r))
}

// FreqBand is the band carried by the autoconfig and supported band TLVs.
type FreqBand uint8

const (
	FreqBand24GHz FreqBand = 0x00
	FreqBand5GHz  FreqBand = 0x01
	FreqBand60GHz FreqBand = 0x02
)

func (b FreqBand) String() string {
	switch b {
	case FreqBand24GHz:
		return "2.4GHz"
	case FreqBand5GHz:
		return "5GHz"
	case FreqBand60GHz:
		return "60GHz"
	default:
		return fmt.Sprintf("band(0x%02x)", uint8(b))
	}
}

const valueFieldIndex = 2

func valueLayout(name string, code TlvType) tlvf.Layout {
	return tlvf.Layout{
		Name:   name,
		Code:   uint16(code),
		Fields: Header(tlvf.FieldSpec{Name: "value", Kind: tlvf.KindFixed, Width: 1, Required: true}),
	}
}

var (
	tlvSearchedRoleSchema       = tlvf.MustCompile(valueLayout("tlvSearchedRole", TlvTypeSearchedRole))
	tlvAutoconfigFreqBandSchema = tlvf.MustCompile(valueLayout("tlvAutoconfigFreqBand", TlvTypeAutoconfigFreqBand))
	tlvSupportedRoleSchema      = tlvf.MustCompile(valueLayout("tlvSupportedRole", TlvTypeSupportedRole))
	tlvSupportedFreqBandSchema  = tlvf.MustCompile(valueLayout("tlvSupportedFreqBand", TlvTypeSupportedFreqBand))
)

func (r Record) value() uint8 { return uint8(r.o.FieldAt(valueFieldIndex).Uint()) }

func (r Record) setValue(v uint8) error { return r.o.FieldAt(valueFieldIndex).SetUint(uint64(v)) }

// TlvSearchedRole is sent in an AP-autoconfiguration search.
type TlvSearchedRole struct {
	Record
}

func TlvSearchedRoleInitialSize() int { return tlvSearchedRoleSchema.InitialSize() }

func NewTlvSearchedRole(limits tlvf.Limits) (*TlvSearchedRole, error) {
	r, err := BuildRecord(tlvSearchedRoleSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedRole{r}, nil
}

func NewTlvSearchedRoleIn(parent *tlvf.Overlay) (*TlvSearchedRole, error) {
	r, err := BuildRecordIn(parent, tlvSearchedRoleSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedRole{r}, nil
}

func ParseTlvSearchedRole(buf []byte) (*TlvSearchedRole, error) {
	r, err := ParseRecord(tlvSearchedRoleSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedRole{r}, nil
}

func AsTlvSearchedRole(o *tlvf.Overlay) (*TlvSearchedRole, error) {
	r, err := WrapRecord(o, tlvSearchedRoleSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedRole{r}, nil
}

func (t *TlvSearchedRole) Role() Role { return Role(t.value()) }

func (t *TlvSearchedRole) SetRole(r Role) error { return t.setValue(uint8(r)) }

// TlvSupportedRole answers a search with the role the sender fills.
type TlvSupportedRole struct {
	Record
}

func TlvSupportedRoleInitialSize() int { return tlvSupportedRoleSchema.InitialSize() }

func NewTlvSupportedRole(limits tlvf.Limits) (*TlvSupportedRole, error) {
	r, err := BuildRecord(tlvSupportedRoleSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedRole{r}, nil
}

func NewTlvSupportedRoleIn(parent *tlvf.Overlay) (*TlvSupportedRole, error) {
	r, err := BuildRecordIn(parent, tlvSupportedRoleSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedRole{r}, nil
}

func ParseTlvSupportedRole(buf []byte) (*TlvSupportedRole, error) {
	r, err := ParseRecord(tlvSupportedRoleSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedRole{r}, nil
}

func AsTlvSupportedRole(o *tlvf.Overlay) (*TlvSupportedRole, error) {
	r, err := WrapRecord(o, tlvSupportedRoleSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedRole{r}, nil
}

func (t *TlvSupportedRole) Role() Role { return Role(t.value()) }

func (t *TlvSupportedRole) SetRole(r Role) error { return t.setValue(uint8(r)) }

// TlvAutoconfigFreqBand names the band a search is made for.
type TlvAutoconfigFreqBand struct {
	Record
}

func TlvAutoconfigFreqBandInitialSize() int { return tlvAutoconfigFreqBandSchema.InitialSize() }

func NewTlvAutoconfigFreqBand(limits tlvf.Limits) (*TlvAutoconfigFreqBand, error) {
	r, err := BuildRecord(tlvAutoconfigFreqBandSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvAutoconfigFreqBand{r}, nil
}

func NewTlvAutoconfigFreqBandIn(parent *tlvf.Overlay) (*TlvAutoconfigFreqBand, error) {
	r, err := BuildRecordIn(parent, tlvAutoconfigFreqBandSchema)
	if err != nil {
		return nil, err
	}
	return &TlvAutoconfigFreqBand{r}, nil
}

func ParseTlvAutoconfigFreqBand(buf []byte) (*TlvAutoconfigFreqBand, error) {
	r, err := ParseRecord(tlvAutoconfigFreqBandSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvAutoconfigFreqBand{r}, nil
}

func AsTlvAutoconfigFreqBand(o *tlvf.Overlay) (*TlvAutoconfigFreqBand, error) {
	r, err := WrapRecord(o, tlvAutoconfigFreqBandSchema)
	if err != nil {
		return nil, err
	}
	return &TlvAutoconfigFreqBand{r}, nil
}

func (t *TlvAutoconfigFreqBand) Band() FreqBand { return FreqBand(t.value()) }

func (t *TlvAutoconfigFreqBand) SetBand(b FreqBand) error { return t.setValue(uint8(b)) }

// TlvSupportedFreqBand answers a search with the band the registrar serves.
type TlvSupportedFreqBand struct {
	Record
}

func TlvSupportedFreqBandInitialSize() int { return tlvSupportedFreqBandSchema.InitialSize() }

func NewTlvSupportedFreqBand(limits tlvf.Limits) (*TlvSupportedFreqBand, error) {
	r, err := BuildRecord(tlvSupportedFreqBandSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedFreqBand{r}, nil
}

func NewTlvSupportedFreqBandIn(parent *tlvf.Overlay) (*TlvSupportedFreqBand, error) {
	r, err := BuildRecordIn(parent, tlvSupportedFreqBandSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedFreqBand{r}, nil
}

func ParseTlvSupportedFreqBand(buf []byte) (*TlvSupportedFreqBand, error) {
	r, err := ParseRecord(tlvSupportedFreqBandSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedFreqBand{r}, nil
}

func AsTlvSupportedFreqBand(o *tlvf.Overlay) (*TlvSupportedFreqBand, error) {
	r, err := WrapRecord(o, tlvSupportedFreqBandSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedFreqBand{r}, nil
}

func (t *TlvSupportedFreqBand) Band() FreqBand { return FreqBand(t.value()) }

func (t *TlvSupportedFreqBand) SetBand(b FreqBand) error { return t.setValue(uint8(b)) }
