package main

import "fmt"

// CellBits is the configured word width of the abstract machine, chosen at
// build time. All addresses, opcodes and operands are cells of this width.
type CellBits int

const (
	Cell16 CellBits = 16
	Cell32 CellBits = 32
	Cell64 CellBits = 64
)

func (b CellBits) valid() bool {
	return b == Cell16 || b == Cell32 || b == Cell64
}

func (b CellBits) String() string {
	return fmt.Sprintf("%d-bit", int(b))
}

// Bytes returns the on-disk size of a raw (non-compact) cell.
func (b CellBits) Bytes() int {
	return int(b) / 8
}

// Magic is the width-dependent image magic number (spec section 6).
func (b CellBits) Magic() uint16 {
	switch b {
	case Cell16:
		return 0xF1E2
	case Cell32:
		return 0xF1E0
	case Cell64:
		return 0xF1E1
	default:
		return 0
	}
}

// encMax is the maximum number of bytes a compact-encoded cell of this
// width can occupy: floor(W/7) + 1 groups of 7 bits.
func (b CellBits) encMax() int {
	return int(b)/7 + 1
}

// encMask is ENC_MASK: the bitmask of the top (partial) 7-bit group.
func (b CellBits) encMask() byte {
	return byte((1 << uint(int(b)%7)) - 1)
}

// Cell is the AM's signed native word. Go's int64 holds any configured
// width; callers mask/sign-extend against the configured CellBits.
type Cell int64

// UCell is the unsigned view of a Cell.
type UCell uint64

const (
	// CurFileVersion is the file format version this assembler produces.
	CurFileVersion = 10

	// MinAMXVersion is the minimum runtime version required to load an
	// image produced without the NOCHECKS/JIT fast path.
	MinAMXVersion = 8

	// AMXCompactMarginDefault is the default AMX_COMPACTMARGIN: the number
	// of excess bytes compact encoding may produce over raw encoding before
	// the codec signals overflow. Must be > 2.
	AMXCompactMarginDefault = 64

	// sNameMax is the maximum symbol name length the format reserves room
	// for; it is the sole payload of the NAMETABLE region (spec section 6:
	// "int16 sNAMEMAX, then zero padding to align cod") since names
	// themselves are never stored verbatim on disk — every nameofs field
	// is a hash (spec section 3, "Name table").
	sNameMax = 128
)

// Flag bits stored in Header.Flags.
const (
	FlagOverlay  uint16 = 0x01
	FlagDebug    uint16 = 0x02
	FlagCompact  uint16 = 0x04
	FlagSleep    uint16 = 0x08
	FlagNoChecks uint16 = 0x10
)

// maskToWidth returns v truncated to the configured cell width, as an unsigned
// value — used when a computation (e.g. relative addressing) must wrap
// the way fixed-width arithmetic wraps.
func maskToWidth(v uint64, bits CellBits) uint64 {
	if bits >= 64 {
		return v
	}
	return v & ((uint64(1) << uint(bits)) - 1)
}

// signExtend sign-extends a value of the given bit width to a full int64.
func signExtend(v uint64, bits CellBits) int64 {
	v = maskToWidth(v, bits)
	shift := uint(64 - int(bits))
	if bits >= 64 {
		return int64(v)
	}
	return int64(v<<shift) >> shift
}
