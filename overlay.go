package main

import "fmt"

// overlayEntrySize is the on-disk size of one OVERLAYS record: a code
// offset plus a size, both stored as 32-bit fields regardless of cell
// width (spec section 6) — the overlay table is consulted by the loader
// before any cell-width-specific decoding happens.
const overlayEntrySize = 8

// OverlayRecord is one entry of the overlay table: the byte range of a
// single overlayable unit (a function body or state variant) within the
// code section.
type OverlayRecord struct {
	Offset uint32
	Size   uint32
}

// buildOverlayTable produces the overlay table in the order the loader
// expects (spec section 3, "up to ovlFIRST reserved special overlays...
// followed by one overlay per non-native function and one per state
// variant"; spec section 4.4 step 8): first the reserved special-overlay
// records that have a non-zero size (unused reserved slots are dropped),
// then one record per SymbolTable.Overlayable() entry in its stable
// declaration order — each symbol's code address becomes its overlay
// offset, and its size is the gap to the next symbol's address (or to the
// end of the code section, for the last one). Asserts the function/state
// addresses are non-decreasing since their overlay indices must be
// contiguous and sequential; the special records precede them and are not
// subject to that ordering check, since they describe fixed stub code
// outside the function address space.
func buildOverlayTable(sym SymbolTable, codeSize uint32) ([]OverlayRecord, error) {
	var records []OverlayRecord
	for _, special := range sym.SpecialOverlays() {
		if special.Size == 0 {
			continue
		}
		records = append(records, special)
	}

	entries := sym.Overlayable()
	if len(entries) == 0 {
		return records, nil
	}
	funcRecords := make([]OverlayRecord, len(entries))
	for i, s := range entries {
		if i > 0 && uint32(s.Addr) < funcRecords[i-1].Offset {
			return nil, fmt.Errorf("%w: overlay entries are not in ascending address order at %s", ErrInvalidInstruction, s.Name)
		}
		funcRecords[i].Offset = uint32(s.Addr)
	}
	for i := 0; i < len(funcRecords)-1; i++ {
		funcRecords[i].Size = funcRecords[i+1].Offset - funcRecords[i].Offset
	}
	funcRecords[len(funcRecords)-1].Size = codeSize - funcRecords[len(funcRecords)-1].Offset

	return append(records, funcRecords...), nil
}

// writeOverlayTable backpatches the planned OVERLAYS table region.
func writeOverlayTable(sink Sink, off uint32, records []OverlayRecord) error {
	for i, r := range records {
		w := newByteWriter(sink, int64(off)+int64(i*overlayEntrySize))
		w.u32(r.Offset)
		w.u32(r.Size)
		if w.err != nil {
			return w.err
		}
	}
	return nil
}
