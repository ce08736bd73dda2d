package ieee1905

import "github.com/danmuck/tlvf/internal/protocol/tlvf"

// tlvUnknownSchema keeps TLVs of unregistered types as opaque bytes so a
// CMDU carrying them still parses.
var tlvUnknownSchema = tlvf.MustCompile(tlvf.Layout{
	Name:     "tlvUnknown",
	AnyCode:  true,
	Fields:   Header(),
	ElemSize: 1,
})

// Schemas lists every class layout this package defines.
func Schemas() []*tlvf.Schema {
	return []*tlvf.Schema{
		tlvEndOfMessageSchema,
		tlvAlMacAddressSchema,
		tlvMacAddressSchema,
		tlvVendorSpecificSchema,
		tlvSearchedRoleSchema,
		tlvAutoconfigFreqBandSchema,
		tlvSupportedRoleSchema,
		tlvSupportedFreqBandSchema,
		tlvWscSchema,
	}
}

// UnknownSchema is the fallback for unregistered type codes.
func UnknownSchema() *tlvf.Schema { return tlvUnknownSchema }

// NewRegistry returns a fresh registry holding every 1905 class. Callers
// add extension classes to it before parsing.
func NewRegistry() *tlvf.Registry {
	reg, err := tlvf.NewRegistry(tlvUnknownSchema)
	if err != nil {
		panic(err)
	}
	reg.MustRegister(Schemas()...)
	return reg
}
