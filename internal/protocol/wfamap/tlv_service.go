package wfamap

import (
	"github.com/danmuck/tlvf/internal/protocol/ieee1905"
	"github.com/danmuck/tlvf/internal/protocol/tlvf"
)

// services is shared by the supported and searched service classes: a count
// byte followed by one byte per service.
type services struct {
	ieee1905.Record
}

// Count is the number of service entries.
func (s services) Count() int { return s.Overlay().Count() }

func (s services) PayloadLength() int { return s.Overlay().PayloadLength() }

func (s services) Service(idx int) (Service, error) {
	e, err := s.Overlay().Payload(idx)
	if err != nil {
		return 0, err
	}
	return Service(e.Uint()), nil
}

// Services copies every entry out.
func (s services) Services() []Service {
	raw := s.Overlay().PayloadBytes()
	out := make([]Service, len(raw))
	for i, b := range raw {
		out[i] = Service(b)
	}
	return out
}

// AddService appends one entry; the count is written by Finalize.
func (s services) AddService(svc Service) error {
	o := s.Overlay()
	e, err := o.Payload(o.Count())
	if err != nil {
		return err
	}
	return e.SetUint(uint64(svc))
}

// TlvSupportedService lists the Multi-AP services the sender implements.
type TlvSupportedService struct {
	services
}

// TlvSearchedService lists the services a searching agent is looking for.
type TlvSearchedService struct {
	services
}

func TlvSupportedServiceInitialSize() int { return tlvSupportedServiceSchema.InitialSize() }

func NewTlvSupportedService(limits tlvf.Limits) (*TlvSupportedService, error) {
	r, err := ieee1905.BuildRecord(tlvSupportedServiceSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedService{services{r}}, nil
}

func NewTlvSupportedServiceIn(parent *tlvf.Overlay) (*TlvSupportedService, error) {
	r, err := ieee1905.BuildRecordIn(parent, tlvSupportedServiceSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedService{services{r}}, nil
}

func ParseTlvSupportedService(buf []byte) (*TlvSupportedService, error) {
	r, err := ieee1905.ParseRecord(tlvSupportedServiceSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedService{services{r}}, nil
}

func AsTlvSupportedService(o *tlvf.Overlay) (*TlvSupportedService, error) {
	r, err := ieee1905.WrapRecord(o, tlvSupportedServiceSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSupportedService{services{r}}, nil
}

func TlvSearchedServiceInitialSize() int { return tlvSearchedServiceSchema.InitialSize() }

func NewTlvSearchedService(limits tlvf.Limits) (*TlvSearchedService, error) {
	r, err := ieee1905.BuildRecord(tlvSearchedServiceSchema, limits)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedService{services{r}}, nil
}

func NewTlvSearchedServiceIn(parent *tlvf.Overlay) (*TlvSearchedService, error) {
	r, err := ieee1905.BuildRecordIn(parent, tlvSearchedServiceSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedService{services{r}}, nil
}

func ParseTlvSearchedService(buf []byte) (*TlvSearchedService, error) {
	r, err := ieee1905.ParseRecord(tlvSearchedServiceSchema, buf)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedService{services{r}}, nil
}

func AsTlvSearchedService(o *tlvf.Overlay) (*TlvSearchedService, error) {
	r, err := ieee1905.WrapRecord(o, tlvSearchedServiceSchema)
	if err != nil {
		return nil, err
	}
	return &TlvSearchedService{services{r}}, nil
}
