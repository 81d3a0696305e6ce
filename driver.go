package main

import (
	"fmt"
	"log/slog"
)

// Driver owns one assembly run end to end. Every module-level mutable the
// original C implementation relied on (lbltab, bytes_in/bytes_out,
// writeerror, fcurrent) lives instead as a field of this struct or of the
// Codec/EmitContext it builds fresh on each attempt, so a compact-overflow
// restart just means building a new Driver-owned state and trying again
// (spec section 9).
type Driver struct {
	Bits       CellBits
	Compact    bool
	Overlay    bool
	NoChecks   bool
	Sleep      bool
	DataAlign  int
	StackCells int
	Margin     int

	Symtab SymbolTable
	Source *AsmSource
	Debug  *DebugTable // nil when no debug block is requested

	Log *slog.Logger
}

// Assemble runs the full pipeline and returns the finished image bytes.
func (d *Driver) Assemble() ([]byte, error) {
	sink := NewMemSink()
	if err := d.AssembleInto(sink); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// AssembleInto writes the finished image to sink, implementing spec
// section 4.4 steps 1-14. Compact-encoding overflow triggers at most one
// restart: the whole function body re-runs with compact disabled, rather
// than resuming mid-stream, mirroring the original's longjmp back to the
// top of assemble() (spec section 4.4 step 11).
func (d *Driver) AssembleInto(sink Sink) error {
	if !d.Bits.valid() {
		return fmt.Errorf("%w: unsupported cell width %d", ErrInvalidInstruction, int(d.Bits))
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if err := checkOpcodeTableSorted(); err != nil {
		return err
	}

	compact := d.Compact
	for attempt := 1; ; attempt++ {
		if err := sink.Truncate(0); err != nil {
			return err
		}
		err := d.assembleAttempt(sink, compact)
		if err == nil {
			return nil
		}
		if !isCompressionOverflow(err) || attempt >= 2 {
			return err
		}
		d.Log.Warn("disabled compact encoding: output overflowed margin, retrying with raw encoding", "attempt", attempt)
		compact = false
	}
}

func isCompressionOverflow(err error) bool {
	for err != nil {
		if err == ErrCompressionOverflow {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func (d *Driver) assembleAttempt(sink Sink, compact bool) error {
	margin := d.Margin
	codec := NewCodec(d.Bits, compact, margin)

	// Pass 1: measure every instruction against a nil sink to resolve
	// label addresses and the total code/data sizes, without writing a
	// byte (spec section 4.4 step 9).
	measureCtx := &EmitContext{Codec: codec, Bits: d.Bits, Symtab: d.Symtab}
	labels, codeSize, dataSize, err := resolveLabels(d.Source, measureCtx)
	if err != nil {
		return err
	}

	lay := planLayout(d.Bits, d.Symtab, nameTableByteSize(), d.DataAlign)
	dataOff := lay.CodeOff + uint32(codeSize)
	heaOff := dataOff + uint32(dataSize)
	stpOff := heaOff + uint32(d.StackCells*d.Bits.Bytes())

	if err := writeZeroPlaceholder(sink, int64(lay.CodeOff)); err != nil {
		return err
	}

	writeCtx := &EmitContext{Sink: sink, Codec: codec, Bits: d.Bits, Symtab: d.Symtab, Labels: labels}
	if _, err := emitSegment(d.Source, writeCtx, SegCode, 0); err != nil {
		return err
	}
	actualCodeEnd := lay.CodeOff + uint32(writeCtx.Pos)
	if actualCodeEnd != lay.CodeOff+uint32(codeSize) {
		// Compact encoding shrank the code section; data/hea/stp follow
		// the section that was actually written, not the pass-1 estimate.
		dataOff = actualCodeEnd
		heaOff = dataOff + uint32(dataSize)
		stpOff = heaOff + uint32(d.StackCells*d.Bits.Bytes())
	}

	codeBytesWritten := writeCtx.Pos
	if _, err := emitSegment(d.Source, writeCtx, SegData, UCell(dataOff)); err != nil {
		return err
	}
	actualDataEnd := dataOff + uint32(writeCtx.Pos-codeBytesWritten)

	var flags uint16
	if d.Overlay {
		flags |= FlagOverlay
	}
	if compact {
		flags |= FlagCompact
	}
	if d.NoChecks {
		flags |= FlagNoChecks
	}
	if d.Sleep {
		flags |= FlagSleep
	}
	if d.Debug != nil {
		flags |= FlagDebug
	}

	var overlayRecords []OverlayRecord
	if d.Overlay {
		overlayRecords, err = buildOverlayTable(d.Symtab, uint32(codeSize))
		if err != nil {
			return err
		}
	}

	nameTableOff, _, err := writeNameTable(sink, lay)
	if err != nil {
		return err
	}

	if err := writeFixupTable(sink, lay.PublicsOff, d.Bits, d.Symtab.Publics(),
		func(s Symbol) uint64 { return uint64(s.Addr) }, func(s Symbol) uint32 { return pubvarNameOfs(s.Name) }); err != nil {
		return err
	}
	nativesByID := d.Symtab.NativesByID()
	if err := writeFixupTable(sink, lay.NativesOff, d.Bits, nativesByID,
		func(s Symbol) uint64 { return uint64(s.NativeID) }, func(s Symbol) uint32 { return nameHash(s.Name) }); err != nil {
		return err
	}
	if err := writeFixupTable(sink, lay.LibrariesOff, d.Bits, d.Symtab.Libraries(),
		func(s Symbol) uint64 { return 0 }, func(s Symbol) uint32 { return nameHash(s.Name) }); err != nil {
		return err
	}
	if err := writeFixupTable(sink, lay.PubVarsOff, d.Bits, d.Symtab.PubVars(),
		func(s Symbol) uint64 { return uint64(s.Addr) }, func(s Symbol) uint32 { return pubvarNameOfs(s.Name) }); err != nil {
		return err
	}
	if err := writeFixupTable(sink, lay.TagsOff, d.Bits, d.Symtab.Tags(),
		func(s Symbol) uint64 { return uint64(s.Addr) }, func(s Symbol) uint32 { return nameHash(s.Name) }); err != nil {
		return err
	}
	if d.Overlay {
		if err := writeOverlayTable(sink, lay.OverlaysOff, overlayRecords); err != nil {
			return err
		}
	}

	size := actualDataEnd
	if d.Debug != nil {
		populateDebugCollaboratorTables(d.Debug, d.Symtab)
		n, err := writeDebugBlock(sink, int64(actualDataEnd), d.Debug, d.Bits)
		if err != nil {
			return err
		}
		size = uint32(n)
	}

	mainAddr := uint32(0)
	if m, ok := d.Symtab.Main(); ok {
		mainAddr = uint32(m.Addr)
	} else {
		d.Log.Debug("no main() found; cip left at zero")
	}

	h := &Header{
		Size:        size,
		Magic:       d.Bits.Magic(),
		FileVersion: CurFileVersion,
		AMXVersion:  MinAMXVersion,
		Flags:       flags,
		DefSize:     uint16(fixupEntrySize(d.Bits)),
		Cod:         lay.CodeOff,
		Dat:         dataOff,
		Hea:         heaOff,
		Stp:         stpOff,
		Cip:         mainAddr,
		Publics:     lay.PublicsOff,
		Natives:     lay.NativesOff,
		Libraries:   lay.LibrariesOff,
		PubVars:     lay.PubVarsOff,
		Tags:        lay.TagsOff,
		NameTable:   nameTableOff,
		Overlays:    lay.OverlaysOff,
	}
	if _, err := h.write(sink, 0); err != nil {
		return err
	}
	return nil
}

// emitSegment runs the real write pass over src once, restarting from line
// zero (spec section 4.4 step 10 — "pass 2 runs twice... each restarting
// the input stream from scratch"), emitting only instructions belonging to
// seg. start is the address the segment's first instruction is assumed to
// begin at, used for PC-relative displacement math; the code segment starts
// at 0, the same origin pass 1 records label addresses against.
func emitSegment(src *AsmSource, ctx *EmitContext, seg Segment, start UCell) (UCell, error) {
	pos := start
	for _, ln := range src.Lines() {
		if ln.Blank || ln.IsLabel {
			continue
		}
		desc, ok := findOpcode(ln.Mnemonic)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrInvalidInstruction, ln.Mnemonic)
		}
		if desc.Segment != seg {
			continue
		}
		n, err := desc.Emit(ctx, ln.Params, Cell(desc.Opcode), pos)
		if err != nil {
			return 0, err
		}
		pos += UCell(n)
	}
	return pos, nil
}

// writeNameTable writes the NAMETABLE region's only payload: a 16-bit
// sNAMEMAX field (spec section 4.4 step 7, section 6 "int16 sNAMEMAX,
// then zero padding to align cod"). Names themselves are never stored
// here — every fixup table's nameofs field already carries a hash (see
// nameHash/pubvarNameOfs), so the region's byte size is fixed at
// sizeof(int16) regardless of how many symbols exist; the placeholder
// write earlier in the pipeline already zero-filled the padding out to
// lay.CodeOff.
func writeNameTable(sink Sink, lay FixupLayout) (uint32, uint32, error) {
	w := newByteWriter(sink, int64(lay.NameTableOff))
	w.u16(uint16(sNameMax))
	if w.err != nil {
		return 0, 0, w.err
	}
	return lay.NameTableOff, uint32(w.pos - int64(lay.NameTableOff)), nil
}

// nameTableByteSize is the NAMETABLE region's interior size ahead of
// planLayout: just sizeof(int16) (spec section 4.4 step 4, "The name
// table's interior size is just sizeof(int16) because names are hashed,
// not inlined"). Any gap to the data-aligned code offset is zero padding,
// added by planLayout/writeZeroPlaceholder, not by this function.
func nameTableByteSize() int {
	return 2
}
