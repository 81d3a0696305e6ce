package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the assembler's full configuration surface: command-line flags
// override a TOML file's values, which override DefaultConfig's. Grounded
// on the ARM emulator's config package (lookbusy1344-arm_emulator), which
// uses the same BurntSushi/toml-backed layered-override shape for its own
// machine parameters.
type Config struct {
	CellBits    int    `toml:"cell_bits"`
	Compact     bool   `toml:"compact"`
	Overlay     bool   `toml:"overlay"`
	Debug       bool   `toml:"debug"`
	DataAlign   int    `toml:"data_align"`
	StackCells  int    `toml:"stack_cells"`
	NoChecks    bool   `toml:"no_checks"`
	Sleep       bool   `toml:"sleep"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`

	Symbols SymbolManifest `toml:"symbols"`
}

// SymbolManifest is the TOML-driven stand-in for the symbol table a real
// front end would hand the assembler; it gives the CLI a genuine,
// file-based way to supply publics/natives/libraries/pubvars/tags (spec
// section 3, "external collaborator").
type SymbolManifest struct {
	Functions []struct {
		Name   string `toml:"name"`
		Addr   string `toml:"addr"`
		Public bool   `toml:"public"`
	} `toml:"functions"`
	StateVariants []struct {
		Name  string `toml:"name"`
		Owner string `toml:"owner"`
		Addr  string `toml:"addr"`
	} `toml:"state_variants"`
	Natives []struct {
		ID   int    `toml:"id"`
		Name string `toml:"name"`
	} `toml:"natives"`
	Libraries []string `toml:"libraries"`
	PubVars   []struct {
		Name string `toml:"name"`
		Addr string `toml:"addr"`
	} `toml:"pubvars"`
	Tags []struct {
		Name string `toml:"name"`
		ID   string `toml:"id"`
	} `toml:"tags"`
}

// DefaultConfig returns the assembler's built-in defaults, applied before
// any config file or flag override.
func DefaultConfig() Config {
	return Config{
		CellBits:   int(Cell32),
		Compact:    false,
		Overlay:    false,
		Debug:      false,
		DataAlign:  4,
		StackCells: 4096,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// LoadConfigFile merges a TOML file's fields into cfg, leaving fields the
// file doesn't set untouched.
func LoadConfigFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}
	return nil
}

// ToSymbolTable builds a StaticSymbolTable from the manifest, parsing every
// address/id field with the same hex grammar the assembly listing itself
// uses.
func (m SymbolManifest) ToSymbolTable() (*StaticSymbolTable, error) {
	st := NewStaticSymbolTable()
	for _, f := range m.Functions {
		addr, err := parseManifestHex(f.Addr)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", f.Name, err)
		}
		st.AddFunction(f.Name, addr, f.Public)
	}
	for _, sv := range m.StateVariants {
		addr, err := parseManifestHex(sv.Addr)
		if err != nil {
			return nil, fmt.Errorf("state variant %s: %w", sv.Name, err)
		}
		st.AddStateVariant(sv.Name, sv.Owner, addr)
	}
	for _, n := range m.Natives {
		st.AddNative(n.ID, n.Name)
	}
	for _, lib := range m.Libraries {
		st.AddLibrary(lib)
	}
	for _, pv := range m.PubVars {
		addr, err := parseManifestHex(pv.Addr)
		if err != nil {
			return nil, fmt.Errorf("pubvar %s: %w", pv.Name, err)
		}
		st.AddPubVar(pv.Name, addr)
	}
	for _, t := range m.Tags {
		id, err := parseManifestHex(t.ID)
		if err != nil {
			return nil, fmt.Errorf("tag %s: %w", t.Name, err)
		}
		st.AddTag(t.Name, id)
	}
	return st, nil
}

func parseManifestHex(s string) (UCell, error) {
	v, rest := hex2ucell(s)
	if rest != "" {
		return 0, fmt.Errorf("trailing garbage in hex literal %q", s)
	}
	return v, nil
}

// readDebugFile loads the "F:"/"L:"/"S:" debug listing a --debug run
// sources its DebugTable from.
func readDebugFile(path string, bits CellBits) (*DebugTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading debug file %s: %w", path, err)
	}
	return ParseDebugTable(string(data), bits)
}
