package tlvf

import "encoding/binary"

// hostOrder is the order SwapCaller fields are stored in.
var hostOrder binary.ByteOrder = binary.NativeEndian

func littleEndian(order binary.ByteOrder) bool {
	var probe [2]byte
	order.PutUint16(probe[:], 1)
	return probe[0] == 1
}

// getUint decodes an unsigned integer of len(b) bytes (at most 8).
func getUint(order binary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	var v uint64
	if littleEndian(order) {
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return v
	}
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

// putUint encodes v into all of b. The caller checks that v fits.
func putUint(order binary.ByteOrder, b []byte, v uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(v)
		return
	case 2:
		order.PutUint16(b, uint16(v))
		return
	case 4:
		order.PutUint32(b, uint32(v))
		return
	case 8:
		order.PutUint64(b, v)
		return
	}
	if littleEndian(order) {
		for i := range b {
			b[i] = byte(v)
			v >>= 8
		}
		return
	}
	for i := len(b) - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
