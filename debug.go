package main

import (
	"fmt"
	"strconv"
	"strings"
)

// DebugFileEntry records one source file's starting code address (a "F:"
// line): files are collapsed by code index, so a file that contributes no
// code between two others is dropped rather than emitted as a zero-width
// entry.
type DebugFileEntry struct {
	Name string
	Addr UCell
}

// DebugLineEntry maps one code address to a source line number ("L:").
type DebugLineEntry struct {
	Addr UCell
	Line uint32
}

// DebugSymbolEntry describes one symbol's debug dimension record ("S:"):
// its storage class, tag, address, and (for arrays) dimension sizes.
type DebugSymbolEntry struct {
	Name  string
	Addr  UCell
	Tag   UCell
	Class uint8
	Dims  []UCell
}

// DebugTagEntry, DebugAutomatonEntry and DebugStateEntry are the verbatim
// pass-through records for the tag, automaton and state sub-tables (spec
// section 4.5, "Tags / automatons / states are emitted verbatim from
// their respective collaborator tables"). Unlike files/lines/symbols,
// these are not parsed from the F:/L:/S: debug text at all — they are
// populated directly from the symbol table's own tag and state-variant
// records, since that is the collaborator spec section 1 names for them.
type DebugTagEntry struct {
	Name string
	ID   UCell
}

type DebugAutomatonEntry struct {
	Name  string
	Index uint32
}

type DebugStateEntry struct {
	Name           string
	AutomatonIndex uint32
	Address        UCell
}

// DebugTable is the externally-supplied, line-tagged debug information the
// driver serializes into the image's optional trailing DEBUG block (spec
// section 4.5). Files/Lines/Symbols come from the "F:"/"L:"/"S:"
// debug-string table; Tags/Automatons/States are filled in separately by
// the driver from the symbol table (populateDebugCollaboratorTables).
type DebugTable struct {
	Files      []DebugFileEntry
	Lines      []DebugLineEntry
	Symbols    []DebugSymbolEntry
	Tags       []DebugTagEntry
	Automatons []DebugAutomatonEntry
	States     []DebugStateEntry
}

// ParseDebugTable parses the "F:"/"L:"/"S:" line-tagged grammar directly,
// so a CLI caller can supply debug information as a plain text file
// alongside the assembly listing without inventing a new format.
func ParseDebugTable(text string, bits CellBits) (*DebugTable, error) {
	dt := &DebugTable{}
	fileIndex := make(map[UCell]int) // codeindex -> index into dt.Files, for F: collapsing
	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		tag, rest, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: malformed debug line %d: %q", ErrInvalidInstruction, lineNo+1, raw)
		}
		fields := strings.Fields(rest)
		switch tag {
		case "F":
			// F:<hex-codeindex> <path> — codeindex first, then path (spec
			// section 4.5). Entries sharing a codeindex collapse, adjacent
			// or not: only the last path for that codeindex survives, at
			// the position of its first entry.
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: debug line %d: F needs codeindex and path", ErrInvalidInstruction, lineNo+1)
			}
			addr, _ := hex2ucell(fields[0])
			name := strings.Join(fields[1:], " ")
			if i, ok := fileIndex[addr]; ok {
				dt.Files[i].Name = name
			} else {
				fileIndex[addr] = len(dt.Files)
				dt.Files = append(dt.Files, DebugFileEntry{Name: name, Addr: addr})
			}
		case "L":
			// L:<hex-address> <hex-line> — address first, then line, both
			// hex (spec section 4.5).
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: debug line %d: L needs address and line", ErrInvalidInstruction, lineNo+1)
			}
			addr, _ := hex2ucell(fields[0])
			lineVal, _ := hex2ucell(fields[1])
			dt.Lines = append(dt.Lines, DebugLineEntry{Addr: addr, Line: uint32(lineVal)})
		case "S":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: debug line %d: S needs name, class, address, tag", ErrInvalidInstruction, lineNo+1)
			}
			class, _ := strconv.ParseUint(fields[1], 16, 8)
			addr, _ := hex2ucell(fields[2])
			var tag UCell
			if len(fields) > 3 {
				tag, _ = hex2ucell(fields[3])
			}
			var dims []UCell
			for _, d := range fields[4:] {
				v, _ := hex2ucell(d)
				dims = append(dims, v)
			}
			dt.Symbols = append(dt.Symbols, DebugSymbolEntry{
				Name: fields[0], Class: uint8(class), Addr: addr, Tag: tag, Dims: dims,
			})
		default:
			return nil, fmt.Errorf("%w: debug line %d: unknown tag %q", ErrInvalidInstruction, lineNo+1, tag)
		}
	}
	return dt, nil
}

// populateDebugCollaboratorTables fills dt's Tags/Automatons/States
// sub-tables verbatim from sym (spec section 4.5): tags come straight from
// the tag table, and automatons/states are derived from the symbol
// table's state-variant records — each variant names the automaton
// (function) it implements a state of.
func populateDebugCollaboratorTables(dt *DebugTable, sym SymbolTable) {
	dt.Tags = nil
	for _, t := range sym.Tags() {
		dt.Tags = append(dt.Tags, DebugTagEntry{Name: t.Name, ID: t.Addr})
	}

	dt.Automatons = nil
	dt.States = nil
	automatonIndex := make(map[string]uint32)
	for _, v := range sym.StateVariants() {
		idx, ok := automatonIndex[v.OwnerFunc]
		if !ok {
			idx = uint32(len(dt.Automatons))
			automatonIndex[v.OwnerFunc] = idx
			dt.Automatons = append(dt.Automatons, DebugAutomatonEntry{Name: v.OwnerFunc, Index: idx})
		}
		dt.States = append(dt.States, DebugStateEntry{Name: v.Name, AutomatonIndex: idx, Address: v.Addr})
	}
}

// debugMagic/debugVersion identify the appended DEBUG block independently
// of the main image's cell-width-dependent magic (spec section 3, "begins
// with a header (magic, version, flags...)").
const (
	debugMagic   = 0xF1EB
	debugVersion = 1
)

// debugHeaderSize is the fixed-size self-describing sub-header placed
// first in the DEBUG block: magic, version, flags, six section counts
// (files, lines, symbols, tags, automatons, states), and the total block
// size, so a loader can skip the block without decoding it.
const debugHeaderSize = 2 + 1 + 1 + 4*6 + 4

// sizeDebugBlock computes the exact byte size the DEBUG block will occupy,
// the pass-1 half of the two-pass serializer (spec section 4.5): callers
// need this before they know where the block starts relative to the rest
// of the image. Every sub-table stores its name(s) verbatim and
// NUL-terminated, so the size depends on the actual string lengths.
func sizeDebugBlock(dt *DebugTable, bits CellBits) int64 {
	cellSz := int64(bits.Bytes())
	size := int64(debugHeaderSize)
	for _, f := range dt.Files {
		size += cellSz + int64(len(f.Name)) + 1
	}
	for range dt.Lines {
		size += cellSz + 4
	}
	for _, s := range dt.Symbols {
		size += cellSz + cellSz + 1 + int64(len(s.Name)) + 1 + 2 + int64(len(s.Dims))*cellSz
	}
	for _, t := range dt.Tags {
		size += cellSz + int64(len(t.Name)) + 1
	}
	for _, a := range dt.Automatons {
		size += 4 + int64(len(a.Name)) + 1
	}
	for _, st := range dt.States {
		size += 4 + cellSz + int64(len(st.Name)) + 1
	}
	return size
}

// writeDebugBlock is pass 2: emit the sub-header then each section in
// file/line/symbol/tag/automaton/state order, verbatim from the parsed
// and collaborator-supplied tables (spec section 4.5).
func writeDebugBlock(sink Sink, pos int64, dt *DebugTable, bits CellBits) (int64, error) {
	w := newByteWriter(sink, pos)
	w.u16(debugMagic)
	w.u8(debugVersion)
	w.u8(0) // flags, reserved
	w.u32(uint32(len(dt.Files)))
	w.u32(uint32(len(dt.Lines)))
	w.u32(uint32(len(dt.Symbols)))
	w.u32(uint32(len(dt.Tags)))
	w.u32(uint32(len(dt.Automatons)))
	w.u32(uint32(len(dt.States)))
	w.u32(uint32(sizeDebugBlock(dt, bits)))

	for _, f := range dt.Files {
		writeCellField(w, f.Addr, bits)
		writeCString(w, f.Name)
	}
	for _, l := range dt.Lines {
		writeCellField(w, l.Addr, bits)
		w.u32(l.Line)
	}
	for _, s := range dt.Symbols {
		writeCellField(w, s.Addr, bits)
		writeCellField(w, s.Tag, bits)
		w.u8(s.Class)
		writeCString(w, s.Name)
		w.u16(uint16(len(s.Dims)))
		for _, d := range s.Dims {
			writeCellField(w, d, bits)
		}
	}
	for _, t := range dt.Tags {
		writeCellField(w, t.ID, bits)
		writeCString(w, t.Name)
	}
	for _, a := range dt.Automatons {
		w.u32(a.Index)
		writeCString(w, a.Name)
	}
	for _, st := range dt.States {
		w.u32(st.AutomatonIndex)
		writeCellField(w, st.Address, bits)
		writeCString(w, st.Name)
	}
	return w.pos, w.err
}

func writeCellField(w *byteWriter, v UCell, bits CellBits) {
	switch bits {
	case Cell16:
		w.u16(uint16(v))
	case Cell32:
		w.u32(uint32(v))
	case Cell64:
		w.u64(uint64(v))
	}
}

// writeCString writes s verbatim followed by a single NUL terminator
// (spec section 4.5, "the name (NUL-terminated)").
func writeCString(w *byteWriter, s string) {
	w.writeBytes([]byte(s))
	w.u8(0)
}
