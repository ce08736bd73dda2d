package tlvf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var (
	testOpaque = MustCompile(Layout{
		Name:    "testOpaque",
		AnyCode: true,
		Fields: []FieldSpec{
			{Name: "type", Kind: KindType, Width: 1},
			{Name: "length", Kind: KindLength, Width: 2},
		},
		ElemSize: 1,
	})
	testGroup = MustCompile(Layout{
		Name: "testGroup",
		Code: 0x40,
		Fields: []FieldSpec{
			{Name: "type", Kind: KindType, Width: 1},
			{Name: "length", Kind: KindLength, Width: 2},
		},
		Nested: true,
	})
	testFrame = MustCompile(Layout{
		Name: "testFrame",
		Fields: []FieldSpec{
			{Name: "version", Kind: KindFixed, Width: 1},
			{Name: "id", Kind: KindFixed, Width: 2},
		},
		Nested: true,
	})
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(testOpaque)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := reg.Register(testBytes, testCounted, testGroup, testEmpty); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestLengthEqualsPayloadLengthForAllSizes(t *testing.T) {
	o, err := NewBuilder(testBytes, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer o.Release()

	for n := 0; n <= testBytes.MaxPayload(); n++ {
		if n > 0 {
			if err := o.Reopen(); err != nil {
				t.Fatalf("reopen: %v", err)
			}
			if err := o.SetPayload([]byte{byte(n)}); err != nil {
				t.Fatalf("append %d: %v", n, err)
			}
		}
		w, err := o.Finalize()
		if err != nil {
			t.Fatalf("finalize at %d: %v", n, err)
		}
		if o.Length() != o.PayloadLength() || w.Length != n {
			t.Fatalf("n=%d: length=%d payload length=%d", n, o.Length(), o.PayloadLength())
		}
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	o, err := NewBuilder(testCounted, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer o.Release()
	if err := o.SetPayload([]byte{0x01, 0x02}); err != nil {
		t.Fatalf("set payload: %v", err)
	}
	first, err := o.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	snapshot := append([]byte(nil), first.Bytes...)
	second, err := o.Finalize()
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}
	if diff := cmp.Diff(snapshot, second.Bytes); diff != "" {
		t.Fatalf("second finalize changed bytes (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{0x80, 0x00, 0x03, 0x02, 0x01, 0x02}, snapshot); diff != "" {
		t.Fatalf("wire (-want +got):\n%s", diff)
	}
	if o.State() != Finalized {
		t.Fatalf("state: %s", o.State())
	}
}

func TestFinalizedRecordRejectsMutationUntilReopened(t *testing.T) {
	o, err := NewBuilder(testBytes, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer o.Release()
	if _, err := o.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := o.SetPayload([]byte{1}); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized, got %v", err)
	}
	if err := o.Reopen(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := o.SetPayload([]byte{1}); err != nil {
		t.Fatalf("set after reopen: %v", err)
	}
	w, err := o.Finalize()
	if err != nil {
		t.Fatalf("refinalize: %v", err)
	}
	if w.Length != 1 {
		t.Fatalf("length after reopen: %d", w.Length)
	}
}

func TestFinalizeIncompleteData(t *testing.T) {
	o, err := NewBuilder(testCounted, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer o.Release()
	if _, err := o.Finalize(); !errors.Is(err, ErrIncompleteData) {
		t.Fatalf("expected ErrIncompleteData for empty list, got %v", err)
	}
	if o.State() != Unfinalized {
		t.Fatalf("failed finalize changed state")
	}

	w, err := NewBuilder(testWords, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer w.Release()
	if _, err := w.Finalize(); !errors.Is(err, ErrIncompleteData) {
		t.Fatalf("expected ErrIncompleteData for unset required field, got %v", err)
	}
}

func TestNestedBuildFinalizesChildrenFirst(t *testing.T) {
	root, err := NewBuilder(testFrame, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer root.Release()

	id, _ := root.Field("id")
	if err := id.SetUint(0x0102); err != nil {
		t.Fatalf("set id: %v", err)
	}
	group, err := root.AddChild(testGroup)
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	inner, err := group.AddChild(testBytes)
	if err != nil {
		t.Fatalf("add inner: %v", err)
	}
	if err := inner.SetPayload([]byte{0xAA, 0xBB}); err != nil {
		t.Fatalf("inner payload: %v", err)
	}
	tail, err := root.AddChild(testEmpty)
	if err != nil {
		t.Fatalf("add tail: %v", err)
	}

	w, err := root.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	want := []byte{
		0x00, 0x01, 0x02, // frame header
		0x40, 0x00, 0x05, // group, length 5
		0x11, 0x00, 0x02, 0xAA, 0xBB, // inner
		0x00, 0x00, 0x00, // tail
	}
	if diff := cmp.Diff(want, w.Bytes); diff != "" {
		t.Fatalf("wire (-want +got):\n%s", diff)
	}
	for _, o := range []*Overlay{group, inner, tail} {
		if o.State() != Finalized {
			t.Fatalf("%s not finalized", o)
		}
	}

	parsed, err := ParseWith(testFrame, w.Bytes, testRegistry(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	kids := parsed.Children()
	if len(kids) != 2 || kids[0].Schema() != testGroup || kids[1].Schema() != testEmpty {
		t.Fatalf("children: %v", kids)
	}
	grand := kids[0].Children()
	if len(grand) != 1 || !bytes.Equal(grand[0].PayloadBytes(), []byte{0xAA, 0xBB}) {
		t.Fatalf("grandchildren: %v", grand)
	}
	if grand[0].Parent() != kids[0] {
		t.Fatalf("parent link not set")
	}
}

func TestChildFinalizeErrorPropagates(t *testing.T) {
	root, err := NewBuilder(testGroup, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer root.Release()
	if _, err := root.AddChild(testBytes); err != nil {
		t.Fatalf("add ok child: %v", err)
	}
	if _, err := root.AddChild(testCounted); err != nil {
		t.Fatalf("add empty list child: %v", err)
	}

	_, err = root.Finalize()
	if !errors.Is(err, ErrChildFinalize) || !errors.Is(err, ErrIncompleteData) {
		t.Fatalf("expected child finalize wrapping incomplete data, got %v", err)
	}
	var cerr *ChildFinalizeError
	if !errors.As(err, &cerr) || cerr.Index != 1 || cerr.Code != 0x80 {
		t.Fatalf("child error detail: %#v", err)
	}
	if root.State() != Unfinalized {
		t.Fatalf("parent finalized despite child failure")
	}
}

func TestEarlierChildLockedAfterSiblingAdded(t *testing.T) {
	root, err := NewBuilder(testGroup, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer root.Release()
	first, err := root.AddChild(testBytes)
	if err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := first.SetPayload([]byte{1}); err != nil {
		t.Fatalf("first payload: %v", err)
	}
	if _, err := root.AddChild(testBytes); err != nil {
		t.Fatalf("add second: %v", err)
	}
	if err := first.SetPayload([]byte{2}); !errors.Is(err, ErrAllocationOrder) {
		t.Fatalf("expected ErrAllocationOrder, got %v", err)
	}
	// fixed-width writes into a locked child still land
	e, err := first.Payload(0)
	if err != nil {
		t.Fatalf("payload[0]: %v", err)
	}
	if err := e.SetUint(7); err != nil {
		t.Fatalf("overwrite locked element: %v", err)
	}
}

func TestChildGrowthUpdatesAncestors(t *testing.T) {
	root, err := NewBuilder(testGroup, Limits{CapacityHint: 4})
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer root.Release()
	child, err := root.AddChild(testBytes)
	if err != nil {
		t.Fatalf("add child: %v", err)
	}
	payload := bytes.Repeat([]byte{0x5A}, 1000)
	if err := child.SetPayload(payload); err != nil {
		t.Fatalf("child payload: %v", err)
	}
	if root.Size() != 3+3+1000 {
		t.Fatalf("root size: %d", root.Size())
	}
	w, err := root.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := binary.BigEndian.Uint16(w.Bytes[1:3]); got != 1003 {
		t.Fatalf("root length: %d", got)
	}
	if got := binary.BigEndian.Uint16(w.Bytes[4:6]); got != 1000 {
		t.Fatalf("child length: %d", got)
	}
}

func TestReopenChildReopensAncestors(t *testing.T) {
	root, err := NewBuilder(testGroup, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer root.Release()
	child, err := root.AddChild(testBytes)
	if err != nil {
		t.Fatalf("add child: %v", err)
	}
	if _, err := root.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if err := child.SetPayload([]byte{1}); !errors.Is(err, ErrFinalized) {
		t.Fatalf("expected ErrFinalized on child, got %v", err)
	}
	if err := child.Reopen(); err != nil {
		t.Fatalf("reopen child: %v", err)
	}
	if root.State() != Unfinalized {
		t.Fatalf("parent still finalized")
	}
	if err := child.SetPayload([]byte{1, 2}); err != nil {
		t.Fatalf("child payload: %v", err)
	}
	w, err := root.Finalize()
	if err != nil {
		t.Fatalf("refinalize: %v", err)
	}
	if w.Length != 5 {
		t.Fatalf("root length: %d", w.Length)
	}
}

func TestAddChildRequiresNestedLayout(t *testing.T) {
	o, err := NewBuilder(testBytes, DefaultLimits())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	defer o.Release()
	if _, err := o.AddChild(testBytes); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
}

func TestParseSequenceAndStrictRegistry(t *testing.T) {
	reg := testRegistry(t)
	buf := []byte{
		0x11, 0x00, 0x01, 0xAA,
		0x99, 0x00, 0x02, 0x01, 0x02,
		0x00, 0x00, 0x00,
	}
	recs, err := ParseSequence(reg, buf)
	if err != nil {
		t.Fatalf("parse sequence: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records: %d", len(recs))
	}
	if recs[1].Schema() != testOpaque || recs[1].Type() != 0x99 || recs[1].PayloadLength() != 2 {
		t.Fatalf("unknown record: %s", recs[1])
	}

	reg.SetStrict(true)
	if _, err := ParseSequence(reg, buf); !errors.Is(err, ErrMalformedBuffer) {
		t.Fatalf("strict registry: expected ErrMalformedBuffer, got %v", err)
	}

	reg.SetStrict(false)
	if _, err := ParseSequence(reg, buf[:len(buf)-1]); !errors.Is(err, ErrMalformedBuffer) {
		t.Fatalf("truncated tail: expected ErrMalformedBuffer, got %v", err)
	}
}

func TestNestedChildCannotOverrunParent(t *testing.T) {
	// group declares 4 bytes, child claims 2 bytes of payload but only 1 is inside the group
	buf := []byte{0x40, 0x00, 0x04, 0x11, 0x00, 0x02, 0xAA, 0xBB}
	if _, err := ParseWith(testGroup, buf, testRegistry(t)); !errors.Is(err, ErrMalformedBuffer) {
		t.Fatalf("expected ErrMalformedBuffer, got %v", err)
	}
	if _, err := Parse(testGroup, buf); !errors.Is(err, ErrMalformedBuffer) {
		t.Fatalf("nested parse without registry: expected ErrMalformedBuffer, got %v", err)
	}
}
