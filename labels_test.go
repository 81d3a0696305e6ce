package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveLabelsTracksCodeAddressesOnly(t *testing.T) {
	src := NewAsmSource("l.0\nadd\njump l.0\n")
	ctx := &EmitContext{Codec: NewCodec(Cell32, false, AMXCompactMarginDefault), Bits: Cell32}
	labels, codeSize, dataSize, err := resolveLabels(src, ctx)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	require.EqualValues(t, 0, labels[0])
	require.EqualValues(t, 12, codeSize)
	require.EqualValues(t, 0, dataSize)
}

func TestResolveLabelsDataSegmentDoesNotAdvanceLabelAddresses(t *testing.T) {
	src := NewAsmSource("dump 1 2\nl.0\nadd\n")
	ctx := &EmitContext{Codec: NewCodec(Cell32, false, AMXCompactMarginDefault), Bits: Cell32}
	labels, codeSize, dataSize, err := resolveLabels(src, ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, labels[0])
	require.EqualValues(t, 4, codeSize)
	require.EqualValues(t, 8, dataSize)
}

func TestResolveLabelsDuplicateLabelIsAnError(t *testing.T) {
	src := NewAsmSource("l.0\nadd\nl.0\n")
	ctx := &EmitContext{Codec: NewCodec(Cell32, false, AMXCompactMarginDefault), Bits: Cell32}
	_, _, _, err := resolveLabels(src, ctx)
	require.ErrorIs(t, err, ErrDuplicateLabel)
}

func TestResolveLabelsUnknownMnemonicIsAnError(t *testing.T) {
	src := NewAsmSource("frobnicate\n")
	ctx := &EmitContext{Codec: NewCodec(Cell32, false, AMXCompactMarginDefault), Bits: Cell32}
	_, _, _, err := resolveLabels(src, ctx)
	require.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestResolveLabelsIsSizeInvariantAcrossCompactMode(t *testing.T) {
	src := NewAsmSource("l.0\nadd.c 1\njump l.0\n")
	raw := &EmitContext{Codec: NewCodec(Cell32, false, AMXCompactMarginDefault), Bits: Cell32}
	compact := &EmitContext{Codec: NewCodec(Cell32, true, AMXCompactMarginDefault), Bits: Cell32}

	rawLabels, rawCode, _, err := resolveLabels(src, raw)
	require.NoError(t, err)
	compactLabels, compactCode, _, err := resolveLabels(src, compact)
	require.NoError(t, err)

	require.Equal(t, rawLabels, compactLabels)
	require.Equal(t, rawCode, compactCode)
}
