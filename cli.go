package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cli.go wires the cobra command tree: a root command plus "assemble" and
// "version" subcommands. Grounded on the oisee-z80-optimizer CLI, which
// uses the same cobra root-plus-subcommands shape with flags bound via
// cmd.Flags() rather than the package-level flag.FlagSet the teacher's own
// CLI used.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "casmgen",
		Short:         "Assemble abstract-machine assembly listings into executable images",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newAssembleCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return nil
		},
	}
}

type assembleFlags struct {
	cellBits    int
	compact     bool
	overlay     bool
	debugFile   string
	dataAlign   int
	stackCells  int
	noChecks    bool
	sleep       bool
	configPath  string
	output      string
	manifest    string
	logLevel    string
	logFormat   string
}

func newAssembleCmd() *cobra.Command {
	f := &assembleFlags{}
	cmd := &cobra.Command{
		Use:   "assemble <source.asm>",
		Short: "Assemble one listing into an executable image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(cmd, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.cellBits, "cell-bits", 0, "cell width: 16, 32, or 64 (default from config)")
	fl.BoolVar(&f.compact, "compact", false, "enable compact cell encoding")
	fl.BoolVar(&f.overlay, "overlay", false, "emit an overlay table")
	fl.StringVar(&f.debugFile, "debug", "", "path to a F:/L:/S: debug listing; emits a DEBUG block when set")
	fl.IntVar(&f.dataAlign, "data-align", 0, "code-section alignment in bytes (default from config)")
	fl.IntVar(&f.stackCells, "stack-cells", 0, "stack reservation in cells (default from config)")
	fl.BoolVar(&f.noChecks, "no-checks", false, "set the NOCHECKS flag")
	fl.BoolVar(&f.sleep, "sleep", false, "set the SLEEP flag")
	fl.StringVar(&f.configPath, "config", "", "path to a TOML config/manifest file")
	fl.StringVar(&f.manifest, "manifest", "", "path to a TOML symbol manifest (defaults to --config)")
	fl.StringVarP(&f.output, "output", "o", "", "output image path (default: <source>.amx)")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn, or error")
	fl.StringVar(&f.logFormat, "log-format", "", "text or json")
	return cmd
}

func runAssemble(cmd *cobra.Command, sourcePath string, f *assembleFlags) error {
	cfg := DefaultConfig()
	if f.configPath != "" {
		if err := LoadConfigFile(&cfg, f.configPath); err != nil {
			return err
		}
	}
	manifestPath := f.manifest
	if manifestPath == "" {
		manifestPath = f.configPath
	}
	if manifestPath != "" && manifestPath != f.configPath {
		if err := LoadConfigFile(&cfg, manifestPath); err != nil {
			return err
		}
	}

	if f.cellBits != 0 {
		cfg.CellBits = f.cellBits
	}
	if f.dataAlign != 0 {
		cfg.DataAlign = f.dataAlign
	}
	if f.stackCells != 0 {
		cfg.StackCells = f.stackCells
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.logFormat != "" {
		cfg.LogFormat = f.logFormat
	}
	fl := cmd.Flags()
	if fl.Changed("compact") {
		cfg.Compact = f.compact
	}
	if fl.Changed("overlay") {
		cfg.Overlay = f.overlay
	}
	if fl.Changed("no-checks") {
		cfg.NoChecks = f.noChecks
	}
	if fl.Changed("sleep") {
		cfg.Sleep = f.sleep
	}

	logger := newLogger(cfg)

	bits := CellBits(cfg.CellBits)
	if !bits.valid() {
		return fmt.Errorf("%w: --cell-bits must be 16, 32, or 64, got %d", ErrInvalidInstruction, cfg.CellBits)
	}

	sourceText, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", sourcePath, err)
	}
	src := NewAsmSource(string(sourceText))

	symtab, err := cfg.Symbols.ToSymbolTable()
	if err != nil {
		return fmt.Errorf("building symbol table: %w", err)
	}

	var debugTable *DebugTable
	if f.debugFile != "" {
		debugTable, err = readDebugFile(f.debugFile, bits)
		if err != nil {
			return err
		}
		cfg.Debug = true
	}

	driver := &Driver{
		Bits:       bits,
		Compact:    cfg.Compact,
		Overlay:    cfg.Overlay,
		NoChecks:   cfg.NoChecks,
		Sleep:      cfg.Sleep,
		DataAlign:  cfg.DataAlign,
		StackCells: cfg.StackCells,
		Margin:     AMXCompactMarginDefault,
		Symtab:     symtab,
		Source:     src,
		Debug:      debugTable,
		Log:        logger,
	}

	image, err := driver.Assemble()
	if err != nil {
		return fmt.Errorf("assembling %s: %w", sourcePath, err)
	}

	outPath := f.output
	if outPath == "" {
		outPath = sourcePath + ".amx"
	}
	if err := os.WriteFile(outPath, image, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	logger.Info("assembled image", "source", sourcePath, "output", outPath, "bytes", len(image))
	fmt.Fprintln(cmd.OutOrStdout(), outPath)
	return nil
}
