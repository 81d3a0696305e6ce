package main

import (
	"strings"
	"unicode"
)

// AsmLine is one parsed line of the assembly input grammar (spec section
// 6): a blank line, a label declaration ("l.<hex>"), or an instruction
// (a mnemonic followed by a raw, not-yet-tokenized operand string).
type AsmLine struct {
	Blank      bool
	IsLabel    bool
	LabelIndex int
	Mnemonic   string
	Params     string
}

// AsmSource holds the already-read, comment-stripped lines of an assembly
// listing. Multiple independent passes over the same source (label
// resolution, code-segment emission, data-segment emission) each restart
// from line zero, mirroring the driver's repeated stream resets (spec
// section 4.4 steps 9-10) — here expressed as re-iterating a slice instead
// of re-seeking a file handle, since the whole listing is held in memory
// once at load time.
type AsmSource struct {
	lines []AsmLine
}

// NewAsmSource parses raw assembly text into a reusable, pre-parsed
// AsmSource.
func NewAsmSource(text string) *AsmSource {
	src := &AsmSource{}
	// A trailing newline terminates the last line rather than starting an
	// extra empty one.
	text = strings.TrimSuffix(text, "\n")
	for _, raw := range strings.Split(text, "\n") {
		src.lines = append(src.lines, parseAsmLine(raw))
	}
	return src
}

// Lines returns the parsed lines in source order, for range-based passes.
func (s *AsmSource) Lines() []AsmLine { return s.lines }

func parseAsmLine(raw string) AsmLine {
	line := stripComment(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return AsmLine{Blank: true}
	}
	if isLabelDecl(line) {
		idx, _ := hex2ucell(line[2:])
		return AsmLine{IsLabel: true, LabelIndex: int(idx)}
	}
	cut := strings.IndexFunc(line, unicode.IsSpace)
	if cut < 0 {
		return AsmLine{Mnemonic: line}
	}
	return AsmLine{
		Mnemonic: line[:cut],
		Params:   strings.TrimSpace(line[cut:]),
	}
}

// isLabelDecl reports whether line begins with the case-insensitive
// "l." label-declaration prefix.
func isLabelDecl(line string) bool {
	if len(line) < 2 {
		return false
	}
	c := line[0]
	return (c == 'l' || c == 'L') && line[1] == '.'
}

// stripComment truncates line at the first ';', the assembly
// grammar's end-of-line comment marker.
func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// isLabelToken reports whether an operand token is a label reference
// ("l.<hex>") rather than a symbol name, and if so returns its index.
func isLabelToken(tok string) (int, bool) {
	if !isLabelDecl(tok) {
		return 0, false
	}
	idx, _ := hex2ucell(tok[2:])
	return int(idx), true
}
