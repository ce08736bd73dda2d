// Package wfamap adds the Wi-Fi EasyMesh (Multi-AP) TLV classes on top of
// the 1905 set.
//
// Ownership boundary:
// - Multi-AP class layouts and accessors
// - registering them with an ieee1905 registry
package wfamap

import (
	"fmt"

	"github.com/danmuck/tlvf/internal/protocol/ieee1905"
	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

const (
	TlvTypeSupportedService  ieee1905.TlvType = 0x80
	TlvTypeSearchedService   ieee1905.TlvType = 0x81
	TlvTypeApRadioIdentifier ieee1905.TlvType = 0x82
)

// Service is one Multi-AP service entry.
type Service uint8

const (
	ServiceController Service = 0x00
	ServiceAgent      Service = 0x01
)

func (s Service) String() string {
	switch s {
	case ServiceController:
		return "controller"
	case ServiceAgent:
		return "agent"
	default:
		return fmt.Sprintf("service(0x%02x)", uint8(s))
	}
}

func init() {
	ieee1905.RegisterName(TlvTypeSupportedService, "TLV_SUPPORTED_SERVICE")
	ieee1905.RegisterName(TlvTypeSearchedService, "TLV_SEARCHED_SERVICE")
	ieee1905.RegisterName(TlvTypeApRadioIdentifier, "TLV_AP_RADIO_IDENTIFIER")
}

func serviceLayout(name string, code ieee1905.TlvType) tlvf.Layout {
	return tlvf.Layout{
		Name:     name,
		Code:     uint16(code),
		Fields:   ieee1905.Header(tlvf.FieldSpec{Name: "service_count", Kind: tlvf.KindCount, Width: 1}),
		ElemSize: 1,
		MinElems: 1,
	}
}

var (
	tlvSupportedServiceSchema  = tlvf.MustCompile(serviceLayout("tlvSupportedService", TlvTypeSupportedService))
	tlvSearchedServiceSchema   = tlvf.MustCompile(serviceLayout("tlvSearchedService", TlvTypeSearchedService))
	tlvApRadioIdentifierSchema = tlvf.MustCompile(tlvf.Layout{
		Name:   "tlvApRadioIdentifier",
		Code:   uint16(TlvTypeApRadioIdentifier),
		Fields: ieee1905.Header(tlvf.FieldSpec{Name: "radio_uid", Kind: tlvf.KindFixed, Width: 6, Required: true}),
	})
)

// Register adds the Multi-AP classes to reg.
func Register(reg *tlvf.Registry) error {
	return reg.Register(
		tlvSupportedServiceSchema,
		tlvSearchedServiceSchema,
		tlvApRadioIdentifierSchema,
	)
}
