// Package tlvf overlays TLV record layouts onto byte buffers.
//
// A Schema compiled from a Layout describes fixed fields by offset and
// width, followed by either an element array or nested records. The same
// Overlay type parses an existing buffer in place or builds a new record in
// a pooled Arena, with length and count fields written by Finalize.
//
// Ownership boundary:
// - layout compilation and validation
// - parse and build overlays, field and element handles
// - finalize ordering and record state
// - arena pooling and growth
package tlvf
