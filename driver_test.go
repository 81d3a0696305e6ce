package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func smallSource() *AsmSource {
	return NewAsmSource("zero.pri\npush.c 5\nretn\n")
}

func TestDriverAssembleProducesValidHeader(t *testing.T) {
	st := NewStaticSymbolTable()
	st.AddFunction("main", 0, true)

	d := &Driver{
		Bits: Cell32, DataAlign: 4, StackCells: 16, Margin: AMXCompactMarginDefault,
		Symtab: st, Source: smallSource(),
	}
	image, err := d.Assemble()
	require.NoError(t, err)
	require.NotEmpty(t, image)
	require.GreaterOrEqual(t, len(image), headerSize)
}

func TestDriverAssembleWithCompactEncoding(t *testing.T) {
	st := NewStaticSymbolTable()
	st.AddFunction("main", 0, true)

	d := &Driver{
		Bits: Cell32, Compact: true, DataAlign: 4, StackCells: 16, Margin: AMXCompactMarginDefault,
		Symtab: st, Source: smallSource(),
	}
	image, err := d.Assemble()
	require.NoError(t, err)
	require.NotEmpty(t, image)
}

func TestDriverAssembleWithOverlayTable(t *testing.T) {
	st := NewStaticSymbolTable()
	st.AddFunction("main", 0, true)
	st.AddFunction("helper", 4, false)

	d := &Driver{
		Bits: Cell32, Overlay: true, DataAlign: 4, StackCells: 16, Margin: AMXCompactMarginDefault,
		Symtab: st, Source: smallSource(),
	}
	image, err := d.Assemble()
	require.NoError(t, err)
	require.NotEmpty(t, image)
}

func TestDriverAssembleWithDebugBlock(t *testing.T) {
	st := NewStaticSymbolTable()
	st.AddFunction("main", 0, true)
	dt, err := ParseDebugTable("F: 0 main.p\nL: 0 1\n", Cell32)
	require.NoError(t, err)

	d := &Driver{
		Bits: Cell32, DataAlign: 4, StackCells: 16, Margin: AMXCompactMarginDefault,
		Symtab: st, Source: smallSource(), Debug: dt,
	}
	image, err := d.Assemble()
	require.NoError(t, err)
	require.NotEmpty(t, image)
}

func TestDriverRejectsInvalidCellWidth(t *testing.T) {
	d := &Driver{Bits: CellBits(24), Symtab: NewStaticSymbolTable(), Source: smallSource()}
	_, err := d.Assemble()
	require.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestDriverRejectsUnresolvedSymbol(t *testing.T) {
	st := NewStaticSymbolTable()
	src := NewAsmSource("call nosuch\n")
	d := &Driver{Bits: Cell32, DataAlign: 4, StackCells: 16, Margin: AMXCompactMarginDefault, Symtab: st, Source: src}
	_, err := d.Assemble()
	require.ErrorIs(t, err, ErrSymbolNotFound)
}

func TestIsCompressionOverflowUnwrapsErrorChain(t *testing.T) {
	require.True(t, isCompressionOverflow(ErrCompressionOverflow))
	require.True(t, isCompressionOverflow(fmt.Errorf("emitting code: %w", ErrCompressionOverflow)))
	require.False(t, isCompressionOverflow(ErrSymbolNotFound))
}

// TestDriverNameTableHoldsOnlySNameMax decodes the NAMETABLE region at its
// header-reported offset and checks it holds exactly the 16-bit sNAMEMAX
// field, nothing else — names are hashed into the fixup tables, never
// stored verbatim (spec section 3, section 4.4 step 7, section 6).
func TestDriverNameTableHoldsOnlySNameMax(t *testing.T) {
	st := NewStaticSymbolTable()
	st.AddFunction("main", 0, true)
	st.AddFunction("some_long_helper_name_that_would_never_fit_inline", 4, true)
	st.AddNative(0, "print")
	st.AddTag("Float", 1)

	d := &Driver{
		Bits: Cell32, DataAlign: 4, StackCells: 16, Margin: AMXCompactMarginDefault,
		Symtab: st, Source: smallSource(),
	}
	image, err := d.Assemble()
	require.NoError(t, err)

	// Header layout (spec section 6): size, magic, fileversion, amxversion,
	// flags, defsize (12 bytes), then cod/dat/hea/stp/cip/publics/natives/
	// libraries/pubvars/tags/nametable/overlays as twelve consecutive u32
	// fields — nametable is the 11th of those, overlays the 12th.
	const headerPrefix = 4 + 2 + 1 + 1 + 2 + 2
	codeOff := le32(image, headerPrefix)
	nameTableOff := le32(image, headerPrefix+4*10)
	require.Less(t, nameTableOff, codeOff)

	got := uint16(image[nameTableOff]) | uint16(image[nameTableOff+1])<<8
	require.EqualValues(t, sNameMax, got)

	// Everything from just past the sNAMEMAX field out to cod must be the
	// zero padding laid down by the placeholder write — no inline names.
	for i := nameTableOff + 2; i < codeOff; i++ {
		require.Zero(t, image[i], "byte %d between nametable and cod should be zero padding", i)
	}
}

func le32(b []byte, off uint32) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
