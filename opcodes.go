package main

import (
	"fmt"
	"strings"
)

// Segment marks which image segment an instruction belongs to, used to
// decide whether a mnemonic contributes to the running code-address
// counter during label resolution (spec section 4.3: only sIN_CSEG
// instructions advance the counter pass 1 accumulates into the label
// table).
type Segment int

const (
	SegNone Segment = iota
	SegCode
	SegData
)

// OpcodeDescriptor is one row of the assembler's mnemonic table: the
// numeric opcode stored on disk, which segment the mnemonic belongs to, and
// the emitter family that knows how to size and, when writing, encode its
// operands. Grounded directly on the original opcodelist[] array
// (compiler/sc6.c) — same numeric opcodes, same mnemonics, same emitter
// groupings, reorganized as Go data plus function values instead of a
// C struct-of-function-pointers.
type OpcodeDescriptor struct {
	Opcode  int
	Name    string
	Segment Segment
	Emit    EmitterFunc
}

// opcodeTable is sorted case-insensitively by Name with a reserved sentinel
// at index 0 ("not found"), mirroring findopcode()'s binary search
// precondition (low starts at 1; index 0 never matches a real mnemonic).
var opcodeTable = []OpcodeDescriptor{
	{0, "", SegNone, noop},
	{78, "add", SegCode, parm0},
	{87, "add.c", SegCode, parm1},
	{197, "add.p.c", SegCode, parm1P},
	{14, "addr.alt", SegCode, parm1},
	{174, "addr.p.alt", SegCode, parm1P},
	{173, "addr.p.pri", SegCode, parm1P},
	{13, "addr.pri", SegCode, parm1},
	{30, "align.alt", SegCode, parm1},
	{187, "align.p.alt", SegCode, parm1P},
	{186, "align.p.pri", SegCode, parm1P},
	{29, "align.pri", SegCode, parm1},
	{81, "and", SegCode, parm0},
	{121, "bounds", SegCode, parm1},
	{211, "bounds.p", SegCode, parm1P},
	{137, "break", SegCode, parm0},
	{49, "call", SegCode, doCall},
	{0, "case", SegCode, doCase},
	{130, "casetbl", SegCode, parm0},
	{118, "cmps", SegCode, parm1},
	{208, "cmps.p", SegCode, parm1P},
	{0, "code", SegCode, setCurrentFile},
	{156, "const", SegCode, parm2},
	{12, "const.alt", SegCode, parm1},
	{172, "const.p.alt", SegCode, parm1P},
	{171, "const.p.pri", SegCode, parm1P},
	{11, "const.pri", SegCode, parm1},
	{157, "const.s", SegCode, parm2},
	{0, "data", SegData, setCurrentFile},
	{114, "dec", SegCode, parm1},
	{113, "dec.alt", SegCode, parm0},
	{116, "dec.i", SegCode, parm0},
	{205, "dec.p", SegCode, parm1P},
	{206, "dec.p.s", SegCode, parm1P},
	{112, "dec.pri", SegCode, parm0},
	{115, "dec.s", SegCode, parm1},
	{0, "dump", SegData, doDump},
	{95, "eq", SegCode, parm0},
	{106, "eq.c.alt", SegCode, parm1},
	{105, "eq.c.pri", SegCode, parm1},
	{202, "eq.p.c.alt", SegCode, parm1P},
	{201, "eq.p.c.pri", SegCode, parm1P},
	{119, "fill", SegCode, parm1},
	{209, "fill.p", SegCode, parm1P},
	{100, "geq", SegCode, parm0},
	{99, "grtr", SegCode, parm0},
	{120, "halt", SegCode, parm1},
	{210, "halt.p", SegCode, parm1P},
	{45, "heap", SegCode, parm1},
	{192, "heap.p", SegCode, parm1P},
	{158, "icall", SegCode, parm1},
	{0, "icase", SegCode, doICase},
	{161, "icasetbl", SegCode, parm0},
	{27, "idxaddr", SegCode, parm0},
	{28, "idxaddr.b", SegCode, parm1},
	{185, "idxaddr.p.b", SegCode, parm1P},
	{109, "inc", SegCode, parm1},
	{108, "inc.alt", SegCode, parm0},
	{111, "inc.i", SegCode, parm0},
	{203, "inc.p", SegCode, parm1P},
	{204, "inc.p.s", SegCode, parm1P},
	{107, "inc.pri", SegCode, parm0},
	{110, "inc.s", SegCode, parm1},
	{86, "invert", SegCode, parm0},
	{159, "iretn", SegCode, parm0},
	{160, "iswitch", SegCode, doSwitch},
	{55, "jeq", SegCode, doJump},
	{60, "jgeq", SegCode, doJump},
	{59, "jgrtr", SegCode, doJump},
	{58, "jleq", SegCode, doJump},
	{57, "jless", SegCode, doJump},
	{56, "jneq", SegCode, doJump},
	{54, "jnz", SegCode, doJump},
	{64, "jsgeq", SegCode, doJump},
	{63, "jsgrtr", SegCode, doJump},
	{62, "jsleq", SegCode, doJump},
	{61, "jsless", SegCode, doJump},
	{51, "jump", SegCode, doJump},
	{53, "jzer", SegCode, doJump},
	{31, "lctrl", SegCode, parm1},
	{98, "leq", SegCode, parm0},
	{97, "less", SegCode, parm0},
	{25, "lidx", SegCode, parm0},
	{26, "lidx.b", SegCode, parm1},
	{184, "lidx.p.b", SegCode, parm1P},
	{2, "load.alt", SegCode, parm1},
	{154, "load.both", SegCode, parm2},
	{9, "load.i", SegCode, parm0},
	{163, "load.p.alt", SegCode, parm1P},
	{162, "load.p.pri", SegCode, parm1P},
	{165, "load.p.s.alt", SegCode, parm1P},
	{164, "load.p.s.pri", SegCode, parm1P},
	{1, "load.pri", SegCode, parm1},
	{4, "load.s.alt", SegCode, parm1},
	{155, "load.s.both", SegCode, parm2},
	{3, "load.s.pri", SegCode, parm1},
	{10, "lodb.i", SegCode, parm1},
	{170, "lodb.p.i", SegCode, parm1P},
	{6, "lref.alt", SegCode, parm1},
	{167, "lref.p.alt", SegCode, parm1P},
	{166, "lref.p.pri", SegCode, parm1P},
	{169, "lref.p.s.alt", SegCode, parm1P},
	{168, "lref.p.s.pri", SegCode, parm1P},
	{5, "lref.pri", SegCode, parm1},
	{8, "lref.s.alt", SegCode, parm1},
	{7, "lref.s.pri", SegCode, parm1},
	{34, "move.alt", SegCode, parm0},
	{33, "move.pri", SegCode, parm0},
	{117, "movs", SegCode, parm1},
	{207, "movs.p", SegCode, parm1P},
	{85, "neg", SegCode, parm0},
	{96, "neq", SegCode, parm0},
	{134, "nop", SegCode, parm0},
	{84, "not", SegCode, parm0},
	{82, "or", SegCode, parm0},
	{38, "pick", SegCode, parm1},
	{43, "pop.alt", SegCode, parm0},
	{42, "pop.pri", SegCode, parm0},
	{46, "proc", SegCode, parm0},
	{40, "push", SegCode, parm1},
	{133, "push.adr", SegCode, parm1},
	{37, "push.alt", SegCode, parm0},
	{39, "push.c", SegCode, parm1},
	{189, "push.p", SegCode, parm1P},
	{212, "push.p.adr", SegCode, parm1P},
	{188, "push.p.c", SegCode, parm1P},
	{190, "push.p.s", SegCode, parm1P},
	{36, "push.pri", SegCode, parm0},
	{41, "push.s", SegCode, parm1},
	{139, "push2", SegCode, parm2},
	{141, "push2.adr", SegCode, parm2},
	{138, "push2.c", SegCode, parm2},
	{140, "push2.s", SegCode, parm2},
	{143, "push3", SegCode, parm3},
	{145, "push3.adr", SegCode, parm3},
	{142, "push3.c", SegCode, parm3},
	{144, "push3.s", SegCode, parm3},
	{147, "push4", SegCode, parm4},
	{149, "push4.adr", SegCode, parm4},
	{146, "push4.c", SegCode, parm4},
	{148, "push4.s", SegCode, parm4},
	{151, "push5", SegCode, parm5},
	{153, "push5.adr", SegCode, parm5},
	{150, "push5.c", SegCode, parm5},
	{152, "push5.s", SegCode, parm5},
	{127, "pushr.adr", SegCode, parm1},
	{125, "pushr.c", SegCode, parm1},
	{215, "pushr.p.adr", SegCode, parm1P},
	{213, "pushr.p.c", SegCode, parm1P},
	{214, "pushr.p.s", SegCode, parm1P},
	{124, "pushr.pri", SegCode, parm0},
	{126, "pushr.s", SegCode, parm1},
	{47, "ret", SegCode, parm0},
	{48, "retn", SegCode, parm0},
	{32, "sctrl", SegCode, parm1},
	{73, "sdiv", SegCode, parm0},
	{74, "sdiv.alt", SegCode, parm0},
	{104, "sgeq", SegCode, parm0},
	{103, "sgrtr", SegCode, parm0},
	{65, "shl", SegCode, parm0},
	{69, "shl.c.alt", SegCode, parm1},
	{68, "shl.c.pri", SegCode, parm1},
	{194, "shl.p.c.alt", SegCode, parm1P},
	{193, "shl.p.c.pri", SegCode, parm1P},
	{66, "shr", SegCode, parm0},
	{71, "shr.c.alt", SegCode, parm1},
	{70, "shr.c.pri", SegCode, parm1},
	{196, "shr.p.c.alt", SegCode, parm1P},
	{195, "shr.p.c.pri", SegCode, parm1P},
	{94, "sign.alt", SegCode, parm0},
	{93, "sign.pri", SegCode, parm0},
	{102, "sleq", SegCode, parm0},
	{101, "sless", SegCode, parm0},
	{72, "smul", SegCode, parm0},
	{88, "smul.c", SegCode, parm1},
	{198, "smul.p.c", SegCode, parm1P},
	{20, "sref.alt", SegCode, parm1},
	{180, "sref.p.alt", SegCode, parm1P},
	{179, "sref.p.pri", SegCode, parm1P},
	{182, "sref.p.s.alt", SegCode, parm1P},
	{181, "sref.p.s.pri", SegCode, parm1P},
	{19, "sref.pri", SegCode, parm1},
	{22, "sref.s.alt", SegCode, parm1},
	{21, "sref.s.pri", SegCode, parm1},
	{67, "sshr", SegCode, parm0},
	{44, "stack", SegCode, parm1},
	{191, "stack.p", SegCode, parm1P},
	{0, "stksize", SegNone, noop},
	{16, "stor.alt", SegCode, parm1},
	{23, "stor.i", SegCode, parm0},
	{176, "stor.p.alt", SegCode, parm1P},
	{175, "stor.p.pri", SegCode, parm1P},
	{178, "stor.p.s.alt", SegCode, parm1P},
	{177, "stor.p.s.pri", SegCode, parm1P},
	{15, "stor.pri", SegCode, parm1},
	{18, "stor.s.alt", SegCode, parm1},
	{17, "stor.s.pri", SegCode, parm1},
	{24, "strb.i", SegCode, parm1},
	{183, "strb.p.i", SegCode, parm1P},
	{79, "sub", SegCode, parm0},
	{80, "sub.alt", SegCode, parm0},
	{132, "swap.alt", SegCode, parm0},
	{131, "swap.pri", SegCode, parm0},
	{129, "switch", SegCode, doSwitch},
	{123, "sysreq.c", SegCode, parm1},
	{135, "sysreq.n", SegCode, parm2},
	{122, "sysreq.pri", SegCode, parm0},
	{76, "udiv", SegCode, parm0},
	{77, "udiv.alt", SegCode, parm0},
	{75, "umul", SegCode, parm0},
	{35, "xchg", SegCode, parm0},
	{83, "xor", SegCode, parm0},
	{91, "zero", SegCode, parm1},
	{90, "zero.alt", SegCode, parm0},
	{199, "zero.p", SegCode, parm1P},
	{200, "zero.p.s", SegCode, parm1P},
	{89, "zero.pri", SegCode, parm0},
	{92, "zero.s", SegCode, parm1},
}

// checkOpcodeTableSorted verifies opcodeTable is sorted case-insensitively
// by name with no duplicate mnemonics, the precondition findOpcode's binary
// search relies on. AssembleInto runs it at the start of every assembly.
func checkOpcodeTableSorted() error {
	for i := 1; i < len(opcodeTable)-1; i++ {
		a, b := opcodeTable[i].Name, opcodeTable[i+1].Name
		if strings.ToLower(a) >= strings.ToLower(b) {
			return fmt.Errorf("opcode table out of order or duplicated at %q / %q", a, b)
		}
	}
	return nil
}

// findOpcode looks up name by case-insensitive binary search, mirroring
// findopcode() in the original implementation exactly (entry 0 reserved as
// the not-found sentinel; low starts at 1).
func findOpcode(name string) (OpcodeDescriptor, bool) {
	low, high := 1, len(opcodeTable)-1
	for low < high {
		mid := (low + high) / 2
		if strings.ToLower(name) > strings.ToLower(opcodeTable[mid].Name) {
			low = mid + 1
		} else {
			high = mid
		}
	}
	if strings.EqualFold(name, opcodeTable[low].Name) {
		return opcodeTable[low], true
	}
	return OpcodeDescriptor{}, false
}
