// Package symbols resolves kernel symbol offsets inside a raw aarch64 Image.
package symbols

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/kfind/internal/analysis"
	"github.com/coral-mesh/kfind/internal/constants"
	"github.com/coral-mesh/kfind/internal/kernel/kallsyms"
)

var (
	// ErrNoBaseSymbol is returned when none of the base symbols are present.
	ErrNoBaseSymbol = errors.New("no image base symbol found")
	// ErrOutsideImage is returned when a symbol does not map into the image.
	ErrOutsideImage = errors.New("symbol lies outside the image")
	// ErrNoPrologue is returned in strict mode when no function entry is
	// decoded at the resolved offset.
	ErrNoPrologue = errors.New("no function prologue at resolved offset")
)

// Config contains configuration for the analyzer.
type Config struct {
	// BaseSymbols are tried in order; the first one found is taken as the
	// address of file offset 0.
	BaseSymbols []string

	// StrictPrologue rejects offsets with no recognisable function entry.
	StrictPrologue bool

	Logger zerolog.Logger
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		BaseSymbols: append([]string(nil), constants.DefaultBaseSymbols...),
		Logger:      zerolog.Nop(),
	}
}

// Analyzer resolves load_module through the kallsyms table of an image.
type Analyzer struct {
	cfg    Config
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	if len(cfg.BaseSymbols) == 0 {
		cfg.BaseSymbols = append([]string(nil), constants.DefaultBaseSymbols...)
	}
	return &Analyzer{
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "symbols").Logger(),
	}
}

// Analyze locates kallsyms in image and returns the file offsets of the
// symbols kfind reports.
func (a *Analyzer) Analyze(image []byte) (analysis.SymbolOffset, error) {
	table, err := kallsyms.Parse(image)
	if err != nil {
		return analysis.SymbolOffset{}, fmt.Errorf("locate kallsyms: %w", err)
	}

	a.logger.Debug().
		Int("symbols", table.Len()).
		Int("token_table", table.Layout.TokenTable).
		Int("names", table.Layout.Names).
		Int("marker_width", table.Layout.MarkerWidth).
		Bool("relative", table.Layout.RelativeBase != 0).
		Msg("Decoded kallsyms table")

	base, baseName, err := a.imageBase(table)
	if err != nil {
		return analysis.SymbolOffset{}, err
	}

	loadModule, err := a.offsetOf(table, image, constants.LoadModuleSymbol, base)
	if err != nil {
		return analysis.SymbolOffset{}, err
	}

	prologue, ok := FindPrologue(image[loadModule:])
	switch {
	case ok:
		a.logger.Debug().
			Str("symbol", constants.LoadModuleSymbol).
			Stringer("prologue", prologue).
			Msg("Function entry verified")
	case a.cfg.StrictPrologue:
		return analysis.SymbolOffset{}, fmt.Errorf("%s at 0x%x: %w", constants.LoadModuleSymbol, loadModule, ErrNoPrologue)
	default:
		a.logger.Warn().
			Str("symbol", constants.LoadModuleSymbol).
			Uint64("offset", loadModule).
			Msg("No function prologue recognised at resolved offset")
	}

	a.logger.Debug().
		Str("base_symbol", baseName).
		Uint64("base", base).
		Uint64("load_module", loadModule).
		Msg("Resolved symbol offsets")

	return analysis.SymbolOffset{LoadModule: loadModule}, nil
}

func (a *Analyzer) imageBase(table *kallsyms.Table) (uint64, string, error) {
	for _, name := range a.cfg.BaseSymbols {
		if sym, ok := table.Lookup(name); ok {
			return sym.Address, name, nil
		}
	}
	return 0, "", fmt.Errorf("%w (tried %v)", ErrNoBaseSymbol, a.cfg.BaseSymbols)
}

func (a *Analyzer) offsetOf(table *kallsyms.Table, image []byte, name string, base uint64) (uint64, error) {
	addr, err := table.Address(name)
	if err != nil {
		return 0, err
	}
	if addr < base || addr-base >= uint64(len(image)) {
		return 0, fmt.Errorf("%s at 0x%x (base 0x%x): %w", name, addr, base, ErrOutsideImage)
	}
	return addr - base, nil
}
