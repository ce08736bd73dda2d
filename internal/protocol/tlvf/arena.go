package tlvf

import (
	"fmt"
	"sync"

	"github.com/danmuck/tlvf/internal/observability"
)

// Arena buffers are pooled in size classes of arenaPage bytes, so a record
// that grows from 64 to 300 bytes moves between two pooled buffers instead of
// allocating twice.
const (
	arenaPage    = 256
	arenaClasses = 64
)

var arenaPools [arenaClasses]sync.Pool

func init() {
	for i := range arenaPools {
		size := (i + 1) * arenaPage
		arenaPools[i].New = func() any {
			buf := make([]byte, 0, size)
			return &buf
		}
	}
}

func getBuffer(n int) *[]byte {
	if n <= 0 {
		n = 1
	}
	index := (n - 1) / arenaPage
	if index >= arenaClasses {
		buf := make([]byte, 0, n)
		return &buf
	}
	buf := arenaPools[index].Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

func putBuffer(buf *[]byte) {
	c := cap(*buf)
	if c < arenaPage || c%arenaPage != 0 {
		return
	}
	index := c/arenaPage - 1
	if index >= arenaClasses {
		return
	}
	arenaPools[index].Put(buf)
}

// Arena is the contiguous byte range shared by a top-level record and every
// record nested in it. Records address it by offset, never by slice, so a
// reallocation on growth leaves every view valid.
type Arena struct {
	buf      []byte
	pooled   *[]byte
	fixed    bool
	max      int
	grows    int
	released bool
}

func newArena(hint, max int) *Arena {
	pooled := getBuffer(hint)
	return &Arena{buf: *pooled, pooled: pooled, max: max}
}

// borrowArena wraps caller-owned bytes. The arena never grows past them.
func borrowArena(buf []byte, used int) *Arena {
	return &Arena{buf: buf[:used:len(buf)], fixed: true}
}

// Len is the write cursor: bytes claimed so far.
func (a *Arena) Len() int { return len(a.buf) }

// Cap is the current capacity before the next growth event.
func (a *Arena) Cap() int { return cap(a.buf) }

// Grows counts reallocations since construction.
func (a *Arena) Grows() int { return a.grows }

// Growable reports whether the arena may reallocate.
func (a *Arena) Growable() bool { return !a.fixed }

func (a *Arena) view(off, n int) []byte {
	return a.buf[off : off+n : off+n]
}

// extend claims n zeroed bytes at the tail and returns their offset.
func (a *Arena) extend(n int) (int, error) {
	if a.released {
		return 0, ErrReleased
	}
	if n < 0 || n > maxRecordBytes-len(a.buf) {
		return 0, fmt.Errorf("%w: cannot claim %d bytes", ErrBufferFull, n)
	}
	need := len(a.buf) + n
	if a.max > 0 && need > a.max {
		return 0, fmt.Errorf("%w: need %d bytes, max capacity %d", ErrBufferFull, need, a.max)
	}
	if need > cap(a.buf) {
		if a.fixed {
			return 0, fmt.Errorf("%w: need %d bytes, fixed capacity %d", ErrBufferFull, need, cap(a.buf))
		}
		size := max(2*cap(a.buf), need)
		if a.max > 0 && size > a.max {
			size = a.max
		}
		next := getBuffer(size)
		*next = append((*next)[:0], a.buf...)
		// The old buffer is not pooled: views taken before growth may still alias it.
		a.pooled = next
		a.buf = *next
		a.grows++
		observability.RecordArenaGrow()
	}
	off := len(a.buf)
	a.buf = a.buf[:need]
	clear(a.buf[off:need])
	return off, nil
}

func (a *Arena) release() {
	if a.released {
		return
	}
	if a.pooled != nil {
		putBuffer(a.pooled)
		a.pooled = nil
	}
	a.buf = nil
	a.released = true
}
