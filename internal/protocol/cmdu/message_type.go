package cmdu

import "fmt"

// MessageType is the 16-bit CMDU message type.
type MessageType uint16

const (
	MessageTopologyDiscovery    MessageType = 0x0000
	MessageTopologyNotification MessageType = 0x0001
	MessageTopologyQuery        MessageType = 0x0002
	MessageTopologyResponse     MessageType = 0x0003
	MessageVendorSpecific       MessageType = 0x0004
	MessageApAutoconfigSearch   MessageType = 0x0007
	MessageApAutoconfigResponse MessageType = 0x0008
	MessageApAutoconfigWsc      MessageType = 0x0009
)

var messageTypeNames = map[MessageType]string{
	MessageTopologyDiscovery:    "TOPOLOGY_DISCOVERY",
	MessageTopologyNotification: "TOPOLOGY_NOTIFICATION",
	MessageTopologyQuery:        "TOPOLOGY_QUERY",
	MessageTopologyResponse:     "TOPOLOGY_RESPONSE",
	MessageVendorSpecific:       "VENDOR_SPECIFIC",
	MessageApAutoconfigSearch:   "AP_AUTOCONFIGURATION_SEARCH",
	MessageApAutoconfigResponse: "AP_AUTOCONFIGURATION_RESPONSE",
	MessageApAutoconfigWsc:      "AP_AUTOCONFIGURATION_WSC",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MESSAGE(0x%04x)", uint16(t))
}
