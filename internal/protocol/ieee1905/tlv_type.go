package ieee1905

import "fmt"

// TlvType is the 1-byte IEEE 1905.1 TLV type code.
type TlvType uint8

const (
	TlvTypeEndOfMessage       TlvType = 0x00
	TlvTypeAlMacAddress       TlvType = 0x01
	TlvTypeMacAddress         TlvType = 0x02
	TlvTypeVendorSpecific     TlvType = 0x0B
	TlvTypeSearchedRole       TlvType = 0x0D
	TlvTypeAutoconfigFreqBand TlvType = 0x0E
	TlvTypeSupportedRole      TlvType = 0x0F
	TlvTypeSupportedFreqBand  TlvType = 0x10
	TlvTypeWsc                TlvType = 0x11
)

var tlvTypeNames = map[TlvType]string{
	TlvTypeEndOfMessage:       "TLV_END_OF_MESSAGE",
	TlvTypeAlMacAddress:       "TLV_AL_MAC_ADDRESS",
	TlvTypeMacAddress:         "TLV_MAC_ADDRESS",
	TlvTypeVendorSpecific:     "TLV_VENDOR_SPECIFIC",
	TlvTypeSearchedRole:       "TLV_SEARCHED_ROLE",
	TlvTypeAutoconfigFreqBand: "TLV_AUTOCONFIG_FREQ_BAND",
	TlvTypeSupportedRole:      "TLV_SUPPORTED_ROLE",
	TlvTypeSupportedFreqBand:  "TLV_SUPPORTED_FREQ_BAND",
	TlvTypeWsc:                "TLV_WSC",
}

func (t TlvType) String() string {
	if name, ok := tlvTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TLV_UNKNOWN(0x%02x)", uint8(t))
}

// RegisterName lets extension packages name the codes they add.
func RegisterName(t TlvType, name string) {
	tlvTypeNames[t] = name
}
