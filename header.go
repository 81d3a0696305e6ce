package main

// Header mirrors the fixed 18-field image header (spec section 6). All
// offsets are byte offsets from the start of the file; all sizes are in
// bytes. Table offsets point at the first entry of each fixup table.
type Header struct {
	Size        uint32
	Magic       uint16
	FileVersion uint8
	AMXVersion  uint8
	Flags       uint16
	DefSize     uint16
	Cod         uint32
	Dat         uint32
	Hea         uint32
	Stp         uint32
	Cip         uint32
	Publics     uint32
	Natives     uint32
	Libraries   uint32
	PubVars     uint32
	Tags        uint32
	NameTable   uint32
	Overlays    uint32
}

// headerSize is the on-disk byte size of Header's fixed fields.
const headerSize = 4 + 2 + 1 + 1 + 2 + 2 + 4*12

// fixupEntrySize is the byte size of one PUBLICS/NATIVES/LIBRARIES/PUBVARS/
// TAGS record: an address-or-id cell plus a nameofs cell, both at
// the configured cell width, matching the original's AMX_FUNCSTUB layout.
func fixupEntrySize(bits CellBits) int { return 2 * bits.Bytes() }

// write serializes the header's fixed fields to w at the given position,
// little-endian regardless of host order.
func (h *Header) write(sink Sink, pos int64) (int64, error) {
	w := newByteWriter(sink, pos)
	w.u32(h.Size)
	w.u16(h.Magic)
	w.u8(h.FileVersion)
	w.u8(h.AMXVersion)
	w.u16(h.Flags)
	w.u16(h.DefSize)
	w.u32(h.Cod)
	w.u32(h.Dat)
	w.u32(h.Hea)
	w.u32(h.Stp)
	w.u32(h.Cip)
	w.u32(h.Publics)
	w.u32(h.Natives)
	w.u32(h.Libraries)
	w.u32(h.PubVars)
	w.u32(h.Tags)
	w.u32(h.NameTable)
	w.u32(h.Overlays)
	return w.pos, w.err
}

// FixupLayout records where each fixup table lands during the zero-filled
// placeholder pass (spec section 4.4 step 5), so step 4's backpatch pass can
// seek straight to each record instead of recomputing offsets.
type FixupLayout struct {
	PublicsOff   uint32
	NativesOff   uint32
	LibrariesOff uint32
	PubVarsOff   uint32
	TagsOff      uint32
	OverlaysOff  uint32
	NameTableOff uint32
	CodeOff      uint32
}

// planLayout computes every table's offset from the symbol table's
// category counts, in the fixed order PUBLICS, NATIVES, LIBRARIES, PUBVARS,
// TAGS, OVERLAYS, NAMETABLE, CODE (spec section 6) — this is step 3/4 of
// the driver, run before a single byte of the real image is written.
func planLayout(bits CellBits, sym SymbolTable, nameTableSize int, dataAlign int) FixupLayout {
	entry := fixupEntrySize(bits)
	off := uint32(headerSize)

	var lay FixupLayout
	lay.PublicsOff = off
	off += uint32(len(sym.Publics()) * entry)

	lay.NativesOff = off
	off += uint32(len(sym.NativesByID()) * entry)

	lay.LibrariesOff = off
	off += uint32(len(sym.Libraries()) * entry)

	lay.PubVarsOff = off
	off += uint32(len(sym.PubVars()) * entry)

	lay.TagsOff = off
	off += uint32(len(sym.Tags()) * entry)

	lay.OverlaysOff = off
	numOverlays := len(sym.Overlayable())
	for _, special := range sym.SpecialOverlays() {
		if special.Size != 0 {
			numOverlays++
		}
	}
	off += uint32(numOverlays * overlayEntrySize)

	lay.NameTableOff = off
	off += uint32(nameTableSize)

	if dataAlign > 1 {
		rem := int(off) % dataAlign
		if rem != 0 {
			off += uint32(dataAlign - rem)
		}
	}
	lay.CodeOff = off
	return lay
}

// writeZeroPlaceholder lays down a zero-filled header-plus-fixup-table
// region so an append-only sink can reserve the space before any table
// value is known (spec section 4.4 step 5); the backpatch pass later
// overwrites each slot positionally.
func writeZeroPlaceholder(sink Sink, size int64) error {
	const chunk = 4096
	zeros := make([]byte, chunk)
	var written int64
	for written < size {
		n := chunk
		if remaining := size - written; remaining < int64(n) {
			n = int(remaining)
		}
		if _, err := sink.Write(zeros[:n]); err != nil {
			return err
		}
		written += int64(n)
	}
	return nil
}

// writeFixupTable backpatches one table's entries (publics, natives,
// libraries, pubvars, or tags): for each symbol, an address/id cell
// followed by a nameofs cell, at the table's planned offset.
func writeFixupTable(sink Sink, off uint32, bits CellBits, entries []Symbol, idOf func(Symbol) uint64, nameOf func(Symbol) uint32) error {
	entry := fixupEntrySize(bits)
	for i, s := range entries {
		w := newByteWriter(sink, int64(off)+int64(i*entry))
		switch bits {
		case Cell16:
			w.u16(uint16(idOf(s)))
			w.u16(uint16(nameOf(s)))
		case Cell32:
			w.u32(uint32(idOf(s)))
			w.u32(nameOf(s))
		case Cell64:
			w.u64(idOf(s))
			w.u64(uint64(nameOf(s)))
		}
		if w.err != nil {
			return w.err
		}
	}
	return nil
}
