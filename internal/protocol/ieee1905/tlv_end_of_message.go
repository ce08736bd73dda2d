package ieee1905

import "github.com/danmuck/tlvf/internal/protocol/tlvf"

// TlvEndOfMessage terminates the TLV list of every CMDU.
type TlvEndOfMessage struct {
	Record
}

var tlvEndOfMessageSchema = tlvf.MustCompile(tlvf.Layout{
	Name:   "tlvEndOfMessage",
	Code:   uint16(TlvTypeEndOfMessage),
	Fields: Header(),
})

func TlvEndOfMessageInitialSize() int { return tlvEndOfMessageSchema.InitialSize() }

func NewTlvEndOfMessage(limits tlvf.Limits) (*TlvEndOfMessage, error) {
	r, err := BuildRecord(tlvEndOfMessageSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvEndOfMessage{r}, nil
}

func NewTlvEndOfMessageIn(parent *tlvf.Overlay) (*TlvEndOfMessage, error) {
	r, err := BuildRecordIn(parent, tlvEndOfMessageSchema)
	if err != nil {
		return nil, err
	}
	return &TlvEndOfMessage{r}, nil
}

func ParseTlvEndOfMessage(buf []byte) (*TlvEndOfMessage, error) {
	r, err := ParseRecord(tlvEndOfMessageSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvEndOfMessage{r}, nil
}
