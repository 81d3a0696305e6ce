package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigHasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, int(Cell32), cfg.CellBits)
	require.Equal(t, 4, cfg.DataAlign)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestSymbolManifestToSymbolTable(t *testing.T) {
	m := SymbolManifest{
		Functions: []struct {
			Name   string `toml:"name"`
			Addr   string `toml:"addr"`
			Public bool   `toml:"public"`
		}{{Name: "main", Addr: "0", Public: true}},
		Natives: []struct {
			ID   int    `toml:"id"`
			Name string `toml:"name"`
		}{{ID: 0, Name: "print"}},
		Libraries: []string{"core"},
		PubVars: []struct {
			Name string `toml:"name"`
			Addr string `toml:"addr"`
		}{{Name: "score", Addr: "4"}},
		Tags: []struct {
			Name string `toml:"name"`
			ID   string `toml:"id"`
		}{{Name: "bool", ID: "1"}},
	}

	st, err := m.ToSymbolTable()
	require.NoError(t, err)
	require.Len(t, st.Publics(), 1)
	require.Len(t, st.NativesByID(), 1)
	require.Len(t, st.Libraries(), 1)
	require.Len(t, st.PubVars(), 1)
	require.Len(t, st.Tags(), 1)

	main, ok := st.Main()
	require.True(t, ok)
	require.EqualValues(t, 0, main.Addr)
}

func TestSymbolManifestRejectsMalformedHex(t *testing.T) {
	m := SymbolManifest{
		Functions: []struct {
			Name   string `toml:"name"`
			Addr   string `toml:"addr"`
			Public bool   `toml:"public"`
		}{{Name: "main", Addr: "not-hex!", Public: true}},
	}
	_, err := m.ToSymbolTable()
	require.Error(t, err)
}

func TestParseManifestHex(t *testing.T) {
	v, err := parseManifestHex("2a")
	require.NoError(t, err)
	require.EqualValues(t, 0x2a, v)

	_, err = parseManifestHex("2a garbage")
	require.Error(t, err)
}
