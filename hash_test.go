package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameHashDeterministic(t *testing.T) {
	require.Equal(t, nameHash("main"), nameHash("main"))
	require.NotEqual(t, nameHash("main"), nameHash("Main"))
}

func TestNameHashEmptyIsZero(t *testing.T) {
	require.Equal(t, uint32(0), nameHash(""))
}

func TestPubvarNameOfsUsesExplicitIDPrefix(t *testing.T) {
	got := pubvarNameOfs("_x2a")
	require.EqualValues(t, 0x2a, got)
}

func TestPubvarNameOfsFallsBackToHash(t *testing.T) {
	require.Equal(t, nameHash("score"), pubvarNameOfs("score"))
}

func TestParsePubvarID(t *testing.T) {
	id, ok := parsePubvarID("_x1f")
	require.True(t, ok)
	require.EqualValues(t, 0x1f, id)

	_, ok = parsePubvarID("score")
	require.False(t, ok)

	_, ok = parsePubvarID("_x")
	require.False(t, ok)
}

func TestHex2UCell(t *testing.T) {
	v, rest := hex2ucell("1a2b rest")
	require.EqualValues(t, 0x1a2b, v)
	require.Equal(t, " rest", rest)

	neg, _ := hex2ucell("-1")
	require.EqualValues(t, UCell(^uint64(0)), neg)
}

func TestGetParamValueSumsPlusJoinedLiterals(t *testing.T) {
	v, rest := getParamValue("10+20 trailing")
	require.EqualValues(t, 0x30, v)
	require.Equal(t, " trailing", rest)
}
