package main

// The symbol table, tag table, library table and debug-string table are
// produced by earlier compilation phases (lexer, parser, semantic
// analyzer) that spec section 1 explicitly places out of scope for this
// component. This file defines the narrow read-only contract the
// assembler driver needs from them, plus a small in-memory implementation
// so the driver has a real, testable caller instead of only an interface.

// SymbolClass classifies a global symbol the way the original semantic
// analyzer's vclass/ident fields do.
type SymbolClass int

const (
	ClassFunction SymbolClass = iota
	ClassStateVariant
	ClassVariable
	ClassNative
	ClassLibrary
	ClassTag
)

// Symbol is one entry of the global symbol table.
type Symbol struct {
	Name      string
	Addr      UCell // code or data address, or the tag id when Class is Tag; zero for natives (see NativeID) and libraries
	Class     SymbolClass
	Public    bool
	FileIndex int
	NativeID  int    // ascending native-id order, used for sparse native lookup
	OwnerFunc string // for state variants, the function they implement a variant of
}

// SymbolTable is the read-only contract the driver consumes (spec section
// 3, "global symbol table").
type SymbolTable interface {
	// FindGlobal looks up a function or variable symbol visible from the
	// given source file index (static globals are file-scoped).
	FindGlobal(name string, fileIndex int) (Symbol, bool)

	Publics() []Symbol
	NativesByID() []Symbol // dense, ascending NativeID, no gaps
	Libraries() []Symbol
	PubVars() []Symbol
	Tags() []Symbol

	// Overlayable returns, in stable declaration order, every non-native
	// function (other than the state-entry dispatch stub) followed by
	// every state variant — the set that receives one overlay record each
	// (spec section 4.4 step 8).
	Overlayable() []Symbol

	// SpecialOverlays returns the reserved "special" overlay records
	// (return-point stubs) that precede the function/state-variant
	// records in the overlay table (spec section 3, `ovlFIRST`; section
	// 4.4 step 8). Entries with zero size are reserved-but-unused slots
	// and are skipped when the table is written.
	SpecialOverlays() []OverlayRecord

	// StateVariants returns every state-variant symbol, for the debug
	// serializer's state sub-table (spec section 4.5, "states ... emitted
	// verbatim from their respective collaborator tables").
	StateVariants() []Symbol

	// Main returns the program entry point symbol, if declared.
	Main() (Symbol, bool)
}

// StaticSymbolTable is a simple slice-backed SymbolTable, built once
// (typically from a manifest file or directly by a test) and never
// mutated during assembly.
type StaticSymbolTable struct {
	globals         map[string]Symbol // keyed by name; file-scoping is not modeled beyond a single translation unit
	publics         []Symbol
	natives         []Symbol
	libraries       []Symbol
	pubvars         []Symbol
	tags            []Symbol
	overlayable     []Symbol
	stateVariants   []Symbol
	specialOverlays []OverlayRecord
	main            *Symbol
}

func NewStaticSymbolTable() *StaticSymbolTable {
	return &StaticSymbolTable{globals: make(map[string]Symbol)}
}

func (t *StaticSymbolTable) AddFunction(name string, addr UCell, public bool) {
	sym := Symbol{Name: name, Addr: addr, Class: ClassFunction, Public: public}
	t.globals[name] = sym
	if public {
		t.publics = append(t.publics, sym)
	}
	t.overlayable = append(t.overlayable, sym)
	if name == "main" {
		s := sym
		t.main = &s
	}
}

func (t *StaticSymbolTable) AddStateVariant(name, owner string, addr UCell) {
	sym := Symbol{Name: name, Addr: addr, Class: ClassStateVariant, OwnerFunc: owner}
	t.globals[name] = sym
	t.overlayable = append(t.overlayable, sym)
	t.stateVariants = append(t.stateVariants, sym)
}

// AddSpecialOverlay registers one reserved special-overlay slot (a
// return-point stub) at the given offset/size, in the fixed order the
// loader expects them. A zero size marks a reserved-but-unused slot and
// is dropped when the overlay table is written.
func (t *StaticSymbolTable) AddSpecialOverlay(offset, size uint32) {
	t.specialOverlays = append(t.specialOverlays, OverlayRecord{Offset: offset, Size: size})
}

func (t *StaticSymbolTable) AddNative(id int, name string) {
	sym := Symbol{Name: name, Class: ClassNative, NativeID: id}
	t.globals[name] = sym
	t.natives = append(t.natives, sym)
}

func (t *StaticSymbolTable) AddLibrary(name string) {
	t.libraries = append(t.libraries, Symbol{Name: name, Class: ClassLibrary})
}

func (t *StaticSymbolTable) AddPubVar(name string, addr UCell) {
	sym := Symbol{Name: name, Addr: addr, Class: ClassVariable, Public: true}
	t.globals[name] = sym
	t.pubvars = append(t.pubvars, sym)
}

func (t *StaticSymbolTable) AddTag(name string, id UCell) {
	t.tags = append(t.tags, Symbol{Name: name, Addr: id, Class: ClassTag, Public: true})
}

func (t *StaticSymbolTable) FindGlobal(name string, _ int) (Symbol, bool) {
	s, ok := t.globals[name]
	return s, ok
}

func (t *StaticSymbolTable) Publics() []Symbol     { return t.publics }
func (t *StaticSymbolTable) Libraries() []Symbol   { return t.libraries }
func (t *StaticSymbolTable) PubVars() []Symbol     { return t.pubvars }
func (t *StaticSymbolTable) Tags() []Symbol        { return t.tags }
func (t *StaticSymbolTable) Overlayable() []Symbol { return t.overlayable }
func (t *StaticSymbolTable) StateVariants() []Symbol { return t.stateVariants }

func (t *StaticSymbolTable) SpecialOverlays() []OverlayRecord { return t.specialOverlays }

// NativesByID returns natives in ascending id order with no gaps,
// building the dense array in one pass the way spec section 4.4 step 6
// requires (avoiding an O(n^2) scan per id).
func (t *StaticSymbolTable) NativesByID() []Symbol {
	if len(t.natives) == 0 {
		return nil
	}
	maxID := 0
	for _, s := range t.natives {
		if s.NativeID > maxID {
			maxID = s.NativeID
		}
	}
	dense := make([]Symbol, maxID+1)
	for _, s := range t.natives {
		dense[s.NativeID] = s
	}
	return dense
}

func (t *StaticSymbolTable) Main() (Symbol, bool) {
	if t.main == nil {
		return Symbol{}, false
	}
	return *t.main, true
}
