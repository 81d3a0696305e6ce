package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeTableIsSorted(t *testing.T) {
	require.NoError(t, checkOpcodeTableSorted())
}

func TestFindOpcodeKnownMnemonics(t *testing.T) {
	cases := []string{"add", "call", "jump", "push.pri", "casetbl", "icall"}
	for _, name := range cases {
		desc, ok := findOpcode(name)
		require.True(t, ok, "expected %s to be found", name)
		require.Equal(t, name, desc.Name)
	}
}

func TestFindOpcodeCaseInsensitive(t *testing.T) {
	lower, ok := findOpcode("add")
	require.True(t, ok)
	upper, ok := findOpcode("ADD")
	require.True(t, ok)
	require.Equal(t, lower.Opcode, upper.Opcode)
}

func TestFindOpcodeUnknownMnemonic(t *testing.T) {
	_, ok := findOpcode("not.a.real.mnemonic")
	require.False(t, ok)
}

func TestOpcodeTableHasNoDuplicateMnemonics(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range opcodeTable {
		if d.Name == "" {
			continue
		}
		require.False(t, seen[d.Name], "duplicate mnemonic %s", d.Name)
		seen[d.Name] = true
	}
}
