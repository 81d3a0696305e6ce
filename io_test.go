package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemSinkWriteAppends(t *testing.T) {
	s := NewMemSink()
	n, err := s.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.EqualValues(t, 3, s.Len())
}

func TestMemSinkWriteAtGrowsBuffer(t *testing.T) {
	s := NewMemSink()
	_, err := s.WriteAt([]byte("xy"), 10)
	require.NoError(t, err)
	require.EqualValues(t, 12, s.Len())
	require.Equal(t, byte('x'), s.Bytes()[10])
}

func TestMemSinkTruncate(t *testing.T) {
	s := NewMemSink()
	s.Write([]byte("abcdef"))
	require.NoError(t, s.Truncate(3))
	require.EqualValues(t, 3, s.Len())
	require.Equal(t, "abc", string(s.Bytes()))
}

func TestByteWriterSequentialFields(t *testing.T) {
	s := NewMemSink()
	require.NoError(t, writeZeroPlaceholder(s, 16))
	w := newByteWriter(s, 0)
	w.u32(1)
	w.u16(2)
	w.u8(3)
	require.NoError(t, w.err)
	require.EqualValues(t, 7, w.pos)
}
