package main

import "encoding/binary"

// hostIsBigEndian reports whether the running process's native byte order
// is big-endian. The on-disk image is always little-endian (spec section
// 3); this is used only to decide whether a value needs swapping before a
// native-order put, mirroring the original C implementation's #if
// BYTE_ORDER==BIG_ENDIAN guarded align16/align32 helpers.
func hostIsBigEndian() bool {
	return binary.NativeEndian.Uint16([]byte{0x01, 0x00}) != 1
}

// swap16 byte-swaps a 16-bit word.
func swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// swap32 byte-swaps a 32-bit word.
func swap32(v uint32) uint32 {
	return v<<24 | (v&0xff00)<<8 | (v>>8)&0xff00 | v>>24
}

// swap64 byte-swaps a 64-bit word.
func swap64(v uint64) uint64 {
	return v<<56 | (v&0xff00)<<40 | (v&0xff0000)<<24 | (v&0xff000000)<<8 |
		(v>>8)&0xff000000 | (v>>24)&0xff0000 | (v>>40)&0xff00 | v>>56
}

// adapt16 byte-swaps v on a big-endian host only, so that a subsequent
// native-order Put writes little-endian bytes regardless of host order.
func adapt16(v uint16) uint16 {
	if hostIsBigEndian() {
		return swap16(v)
	}
	return v
}

func adapt32(v uint32) uint32 {
	if hostIsBigEndian() {
		return swap32(v)
	}
	return v
}

func adapt64(v uint64) uint64 {
	if hostIsBigEndian() {
		return swap64(v)
	}
	return v
}

// putLittle16 writes v to buf[0:2] in on-disk little-endian order,
// regardless of host byte order.
func putLittle16(buf []byte, v uint16) {
	binary.NativeEndian.PutUint16(buf, adapt16(v))
}

func putLittle32(buf []byte, v uint32) {
	binary.NativeEndian.PutUint32(buf, adapt32(v))
}

func putLittle64(buf []byte, v uint64) {
	binary.NativeEndian.PutUint64(buf, adapt64(v))
}
