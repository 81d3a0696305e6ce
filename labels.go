package main

import "fmt"

// resolveLabels performs pass 1 (spec section 4.4 step 9): walk every line
// of src once, in measurement mode, accumulating a running code-address
// counter that only advances for sIN_CSEG instructions, and recording that
// counter as each label declaration's resolved address. The original
// implementation does this by dispatching the same opcode functions used
// for real emission against a null output file; ctx here plays that role
// via Measuring().
func resolveLabels(src *AsmSource, ctx *EmitContext) (labels []UCell, codeSize, dataSize UCell, err error) {
	maxLabel := -1
	for _, ln := range src.Lines() {
		if ln.IsLabel && ln.LabelIndex > maxLabel {
			maxLabel = ln.LabelIndex
		}
	}
	labels = make([]UCell, maxLabel+1)
	seen := make([]bool, maxLabel+1)

	// Only sIN_CSEG instructions advance cip, the counter labels are
	// recorded against: the label table holds code addresses, the only
	// kind do_call/do_jump/do_switch/do_case ever reference. sIN_DSEG
	// instructions advance a separate dip counter purely so the driver
	// knows the data section's total size ahead of the write pass.
	var cip, dip UCell
	for _, ln := range src.Lines() {
		switch {
		case ln.Blank:
			continue
		case ln.IsLabel:
			if ln.LabelIndex < 0 || ln.LabelIndex > maxLabel {
				return nil, 0, 0, fmt.Errorf("%w: l.%x", ErrInvalidInstruction, ln.LabelIndex)
			}
			if seen[ln.LabelIndex] {
				return nil, 0, 0, fmt.Errorf("%w: l.%x", ErrDuplicateLabel, ln.LabelIndex)
			}
			seen[ln.LabelIndex] = true
			labels[ln.LabelIndex] = cip
		default:
			desc, ok := findOpcode(ln.Mnemonic)
			if !ok {
				return nil, 0, 0, fmt.Errorf("%w: %s", ErrInvalidInstruction, ln.Mnemonic)
			}
			n, emitErr := desc.Emit(ctx, ln.Params, Cell(desc.Opcode), cip)
			if emitErr != nil {
				return nil, 0, 0, emitErr
			}
			switch desc.Segment {
			case SegCode:
				cip += UCell(n)
			case SegData:
				dip += UCell(n)
			}
		}
	}
	return labels, cip, dip, nil
}
