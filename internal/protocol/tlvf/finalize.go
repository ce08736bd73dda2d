package tlvf

import (
	"errors"

	"github.com/danmuck/tlvf/internal/observability"
	"github.com/rs/zerolog/log"
)

// Wire is the wire-ready form of a finalized record. Bytes aliases the
// record's arena and stays valid until the record is reopened or released.
type Wire struct {
	Code   uint16
	Length int
	Bytes  []byte
}

func (o *Overlay) wire() Wire {
	return Wire{Code: o.Type(), Length: o.Length(), Bytes: o.Bytes()}
}

// Finalize computes and writes every deferred field, children first, then
// marks the record Finalized. Parsed records are already wire-ready. Calling
// it again on a finalized record changes nothing and returns the same Wire.
func (o *Overlay) Finalize() (Wire, error) {
	if o.arena.released {
		return Wire{}, ErrReleased
	}
	if o.state == Finalized {
		return o.wire(), nil
	}
	for i, c := range o.children {
		if _, err := c.Finalize(); err != nil {
			err = &ChildFinalizeError{Index: i, Code: c.Type(), Err: err}
			o.finalizeFailed(err)
			return Wire{}, err
		}
	}

	s := o.schema
	length, count, err := s.finalValues(o.end-o.base, o.count, o.set)
	if err != nil {
		o.finalizeFailed(err)
		return Wire{}, err
	}
	if s.lengthField >= 0 {
		f := s.fields[s.lengthField]
		putUint(s.order, o.arena.view(o.base+f.off, f.width), length)
	}
	if s.countField >= 0 {
		f := s.fields[s.countField]
		putUint(s.order, o.arena.view(o.base+f.off, f.width), count)
	}
	o.state = Finalized

	observability.RecordFinalize(s.name, resultLabel(nil))
	if o.parent == nil {
		observability.ObserveRecordBytes(s.name, o.Size())
	}
	log.Trace().
		Str("layout", s.name).
		Uint64("length", length).
		Int("elements", o.count).
		Int("children", len(o.children)).
		Msg("tlvf finalized")
	return o.wire(), nil
}

func (o *Overlay) finalizeFailed(err error) {
	observability.RecordFinalize(o.schema.name, resultLabel(err))
	log.Debug().Err(err).Str("layout", o.schema.name).Msg("tlvf finalize failed")
}

// Reopen returns a finalized Build record, and every record enclosing it, to
// Unfinalized so it can be mutated again. Deferred fields keep their old
// values until the next Finalize.
func (o *Overlay) Reopen() error {
	if o.arena.released {
		return ErrReleased
	}
	if o.mode == ModeParse {
		return ErrReadOnly
	}
	for p := o; p != nil; p = p.parent {
		p.state = Unfinalized
	}
	return nil
}

// resultLabel maps an error to the metric label of its kind.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrChildFinalize):
		return "child_finalize"
	case errors.Is(err, ErrMalformedBuffer):
		return "malformed"
	case errors.Is(err, ErrIncompleteData):
		return "incomplete"
	case errors.Is(err, ErrBufferFull):
		return "buffer_full"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	default:
		return "error"
	}
}
