package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCellBitsValid(t *testing.T) {
	require.True(t, Cell16.valid())
	require.True(t, Cell32.valid())
	require.True(t, Cell64.valid())
	require.False(t, CellBits(24).valid())
}

func TestCellBitsMagicDistinctPerWidth(t *testing.T) {
	magics := map[uint16]bool{Cell16.Magic(): true, Cell32.Magic(): true, Cell64.Magic(): true}
	require.Len(t, magics, 3)
}

func TestMaskToWidthWraps(t *testing.T) {
	require.EqualValues(t, 0xff, maskToWidth(0x1ff, Cell16)&0xff)
	require.EqualValues(t, 0xffff, maskToWidth(0x1ffff, Cell16))
}

func TestSignExtendNegativeValue(t *testing.T) {
	v := maskToWidth(uint64(int64(-1)), Cell16)
	require.EqualValues(t, -1, signExtend(v, Cell16))
}

func TestSignExtendPositiveValue(t *testing.T) {
	require.EqualValues(t, 5, signExtend(5, Cell32))
}
