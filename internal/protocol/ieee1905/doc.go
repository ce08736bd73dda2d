// Package ieee1905 holds the IEEE 1905.1 record classes: one type per TLV,
// each a thin typed view over a tlvf overlay.
//
// Ownership boundary:
// - TLV type codes
// - per-TLV field layouts and accessors
// - the code-to-layout registry used when parsing CMDUs
package ieee1905
