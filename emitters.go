package main

import (
	"fmt"
	"strings"
)

// EmitContext replaces the original's module-level mutables (lbltab,
// fcurrent) with fields of a value the driver owns for the lifetime of one
// emission pass. A nil Sink means measurement mode: label resolution (pass
// 1) runs the same dispatch table against a nil sink so the emitter
// functions return sizes without writing a single byte (spec section 4.3).
type EmitContext struct {
	Sink     Sink
	Pos      int64 // current append position, advanced by every successful emit
	Codec    *Codec
	Bits     CellBits
	Labels   []UCell // nil until the label resolver (pass 1) has run
	Symtab   SymbolTable
	FCurrent int
}

func (c *EmitContext) Measuring() bool { return c.Sink == nil }

// emit writes one cell through the codec in write mode; in measurement mode
// it is a no-op, since measurement sizes are computed independently of the
// codec (see opcodeBytes/opargBytes below) so that switching between
// compact and raw encoding never changes a label's resolved address.
func (c *EmitContext) emit(v UCell) error {
	if c.Measuring() {
		return nil
	}
	n, err := c.Codec.WriteCell(c.Sink, v)
	c.Pos += int64(n)
	return err
}

// opcodeBytes and opargBytes are the original's opcodes()/opargs() macros:
// n cells' worth of bytes at the configured (uncompacted) cell width. These
// sizes are what the label resolver accumulates into byte offsets, and they
// stay fixed regardless of whether the actual write pass later compacts
// those same cells into fewer on-disk bytes, so every label resolves to the
// same address whether the image is written compact or raw.
func opcodeBytes(n int, bits CellBits) int { return n * bits.Bytes() }
func opargBytes(n int, bits CellBits) int  { return n * bits.Bytes() }

// EmitterFunc is the signature every opcode's emission routine satisfies:
// given the raw operand text, the numeric opcode, and the address (in
// bytes) the instruction starts at, emit the instruction (unless
// measuring) and return its size in bytes.
type EmitterFunc func(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error)

func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' }); i >= 0 {
		return s[:i]
	}
	return s
}

// parseLabelOperand accepts an optional "l." prefix (the grammar's label
// form) ahead of a hex label index; jump/case targets are always label
// references, so the prefix is tolerated but not required.
func parseLabelOperand(s string) (idx int, rest string) {
	s = strings.TrimLeft(s, " \t")
	if len(s) >= 2 && (s[0] == 'l' || s[0] == 'L') && s[1] == '.' {
		s = s[2:]
	}
	v, rem := hex2ucell(s)
	return int(v), rem
}

func (c *EmitContext) labelAddr(idx int) (UCell, error) {
	if idx < 0 || idx >= len(c.Labels) {
		return 0, fmt.Errorf("%w: l.%x", ErrUnresolvedLabel, idx)
	}
	return c.Labels[idx], nil
}

// noop backs the table's reserved entry 0 and the "stksize"
// pseudo-mnemonic: it emits nothing and reports a size of zero.
func noop(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	return 0, nil
}

// setCurrentFile backs the "code"/"data" pseudo-instructions: a bare file
// index switch with no emitted bytes.
func setCurrentFile(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	v, _ := getParamValue(params)
	ctx.FCurrent = int(v)
	return 0, nil
}

// parm0 takes no operand: one opcode cell.
func parm0(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if !ctx.Measuring() {
		if err := ctx.emit(UCell(opcode)); err != nil {
			return 0, err
		}
	}
	return opcodeBytes(1, ctx.Bits), nil
}

func parmN(n int) EmitterFunc {
	return func(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
		if !ctx.Measuring() {
			if err := ctx.emit(UCell(opcode)); err != nil {
				return 0, err
			}
			rest := params
			for i := 0; i < n; i++ {
				var v UCell
				v, rest = getParamValue(rest)
				if err := ctx.emit(v); err != nil {
					return 0, err
				}
			}
		}
		return opcodeBytes(1, ctx.Bits) + opargBytes(n, ctx.Bits), nil
	}
}

var (
	parm1 = parmN(1)
	parm2 = parmN(2)
	parm3 = parmN(3)
	parm4 = parmN(4)
	parm5 = parmN(5)
)

// parm1P packs a small operand into the high bits of the single cell that
// also carries the opcode (the ".p" opcode family): the operand must fit in
// the upper half-width, and the opcode must fit in a byte.
func parm1P(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if opcode < 0 || opcode > 255 {
		return 0, fmt.Errorf("%w: packed opcode %d out of byte range", ErrInvalidInstruction, opcode)
	}
	p, _ := getParamValue(params)
	half := uint(ctx.Bits) / 2
	if uint64(p) >= (uint64(1) << half) {
		return 0, fmt.Errorf("%w: operand %#x does not fit in %d bits", ErrInvalidInstruction, uint64(p), half)
	}
	if !ctx.Measuring() {
		combined := UCell(uint64(p)<<half) | UCell(uint64(opcode))
		if err := ctx.emit(combined); err != nil {
			return 0, err
		}
	}
	return opcodeBytes(1, ctx.Bits), nil
}

// doCall resolves its one operand as either a label ("l.<hex>") or a global
// symbol name, then emits the opcode followed by the PC-relative
// displacement to the resolved address.
func doCall(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if !ctx.Measuring() {
		tok := firstToken(params)
		var target UCell
		if idx, ok := isLabelToken(tok); ok {
			addr, err := ctx.labelAddr(idx)
			if err != nil {
				return 0, err
			}
			target = addr
		} else {
			sym, ok := ctx.Symtab.FindGlobal(tok, ctx.FCurrent)
			if !ok {
				return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, tok)
			}
			target = sym.Addr
		}
		rel := UCell(maskToWidth(uint64(target)-uint64(cip), ctx.Bits))
		if err := ctx.emit(UCell(opcode)); err != nil {
			return 0, err
		}
		if err := ctx.emit(rel); err != nil {
			return 0, err
		}
	}
	return opcodeBytes(1, ctx.Bits) + opargBytes(1, ctx.Bits), nil
}

// doJump emits the opcode followed by the PC-relative displacement to a
// label operand; every conditional/unconditional jump mnemonic shares this
// routine (spec section 4.2).
func doJump(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if !ctx.Measuring() {
		idx, _ := parseLabelOperand(params)
		addr, err := ctx.labelAddr(idx)
		if err != nil {
			return 0, err
		}
		rel := UCell(maskToWidth(uint64(addr)-uint64(cip), ctx.Bits))
		if err := ctx.emit(UCell(opcode)); err != nil {
			return 0, err
		}
		if err := ctx.emit(rel); err != nil {
			return 0, err
		}
	}
	return opcodeBytes(1, ctx.Bits) + opargBytes(1, ctx.Bits), nil
}

// doSwitch emits the opcode followed by the absolute address of the case
// table (a label), used by the switch/iswitch dispatch opcodes.
func doSwitch(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if !ctx.Measuring() {
		idx, _ := parseLabelOperand(params)
		addr, err := ctx.labelAddr(idx)
		if err != nil {
			return 0, err
		}
		if err := ctx.emit(UCell(opcode)); err != nil {
			return 0, err
		}
		if err := ctx.emit(addr); err != nil {
			return 0, err
		}
	}
	return opcodeBytes(1, ctx.Bits) + opargBytes(1, ctx.Bits), nil
}

// doCase emits one case-table row: a compared value followed by the
// PC-relative displacement of the matching branch target. Case rows carry
// no opcode cell of their own — they are operand data laid out after a
// casetbl/icasetbl instruction.
func doCase(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if !ctx.Measuring() {
		value, rest := getParamValue(params)
		idx, _ := parseLabelOperand(rest)
		addr, err := ctx.labelAddr(idx)
		if err != nil {
			return 0, err
		}
		rel := UCell(maskToWidth(uint64(addr)-uint64(cip), ctx.Bits))
		if err := ctx.emit(value); err != nil {
			return 0, err
		}
		if err := ctx.emit(rel); err != nil {
			return 0, err
		}
	}
	return opargBytes(2, ctx.Bits), nil
}

// doICase emits one indexed-case-table row: two plain values (compared
// value, table index) with no opcode cell and no label arithmetic.
func doICase(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	if !ctx.Measuring() {
		v1, rest := getParamValue(params)
		v2, _ := getParamValue(rest)
		if err := ctx.emit(v1); err != nil {
			return 0, err
		}
		if err := ctx.emit(v2); err != nil {
			return 0, err
		}
	}
	return opargBytes(2, ctx.Bits), nil
}

// doDump emits a variable-length list of raw cells (the "dump" pseudo
// instruction, used to lay out initialized data) with no opcode cell.
func doDump(ctx *EmitContext, params string, opcode Cell, cip UCell) (int, error) {
	rest := strings.TrimSpace(params)
	n := 0
	for rest != "" {
		var v UCell
		v, rest = getParamValue(rest)
		rest = strings.TrimSpace(rest)
		if !ctx.Measuring() {
			if err := ctx.emit(v); err != nil {
				return 0, err
			}
		}
		n++
	}
	return opargBytes(n, ctx.Bits), nil
}
