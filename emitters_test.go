package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newWriteCtx(bits CellBits, sink Sink) *EmitContext {
	return &EmitContext{Sink: sink, Codec: NewCodec(bits, false, AMXCompactMarginDefault), Bits: bits}
}

func TestParm0EmitsOneOpcodeCell(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	n, err := parm0(ctx, "", 78, 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.EqualValues(t, 4, sink.Len())
}

func TestParmNEmitsOpcodeThenOperands(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	emit := parmN(2)
	n, err := emit(ctx, "10 20", 1, 0)
	require.NoError(t, err)
	require.Equal(t, 4*3, n)
	require.EqualValues(t, 12, sink.Len())
}

func TestMeasuringModeNeverWrites(t *testing.T) {
	ctx := &EmitContext{Codec: NewCodec(Cell32, false, AMXCompactMarginDefault), Bits: Cell32}
	require.True(t, ctx.Measuring())
	n, err := parmN(2)(ctx, "1 2", 5, 0)
	require.NoError(t, err)
	require.Equal(t, 4*3, n)
}

func TestOpcodeBytesIgnoresCompactMode(t *testing.T) {
	require.Equal(t, opcodeBytes(1, Cell32), opcodeBytes(1, Cell32))
	require.Equal(t, 4, opcodeBytes(1, Cell32))
	require.Equal(t, 8, opargBytes(1, Cell64))
}

func TestParm1PPacksOperandAboveOpcode(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	n, err := parm1P(ctx, "7", 9, 0)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	buf := sink.Bytes()
	got := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	require.EqualValues(t, uint32(9)|uint32(7)<<16, got)
}

func TestParm1PRejectsOversizeOperand(t *testing.T) {
	ctx := newWriteCtx(Cell32, NewMemSink())
	_, err := parm1P(ctx, "10000", 1, 0)
	require.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestDoJumpEmitsPCRelativeDisplacement(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	ctx.Labels = []UCell{0x100}
	n, err := doJump(ctx, "l.0", 51, 0x10)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	buf := sink.Bytes()
	rel := uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16 | uint32(buf[7])<<24
	require.EqualValues(t, 0x100-0x10, rel)
}

func TestDoJumpUnresolvedLabel(t *testing.T) {
	ctx := newWriteCtx(Cell32, NewMemSink())
	ctx.Labels = []UCell{}
	_, err := doJump(ctx, "l.5", 51, 0)
	require.ErrorIs(t, err, ErrUnresolvedLabel)
}

func TestDoCallResolvesSymbolByName(t *testing.T) {
	st := NewStaticSymbolTable()
	st.AddFunction("helper", 0x40, false)
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	ctx.Symtab = st
	n, err := doCall(ctx, "helper", 49, 0x10)
	require.NoError(t, err)
	require.Equal(t, 8, n)
}

func TestDoCallUnknownSymbol(t *testing.T) {
	st := NewStaticSymbolTable()
	ctx := newWriteCtx(Cell32, NewMemSink())
	ctx.Symtab = st
	_, err := doCall(ctx, "nosuch", 49, 0)
	require.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestDoCaseHasNoOpcodeCell(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	ctx.Labels = []UCell{0x20}
	n, err := doCase(ctx, "5 l.0", 0, 0x10)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.EqualValues(t, 8, sink.Len())
}

func TestDoICaseEmitsTwoPlainValues(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	n, err := doICase(ctx, "5 6", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 8, n)
}

func TestDoDumpHandlesVariableOperandCount(t *testing.T) {
	sink := NewMemSink()
	ctx := newWriteCtx(Cell32, sink)
	n, err := doDump(ctx, "1 2 3 4", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 16, n)
	require.EqualValues(t, 16, sink.Len())
}

func TestSetCurrentFileHasNoEmission(t *testing.T) {
	ctx := newWriteCtx(Cell32, NewMemSink())
	n, err := setCurrentFile(ctx, "2", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, 2, ctx.FCurrent)
}
