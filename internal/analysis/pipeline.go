package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/kfind/internal/constants"
)

// ErrEmptyImage is the cause recorded when the byte source returns no data.
var ErrEmptyImage = errors.New("image is empty")

// ByteSource loads the full contents of a kernel image.
// An error or an empty slice both mean the image is unavailable.
type ByteSource interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// VersionDetector extracts a best-effort kernel release string.
// An empty result means no recognizable version was found.
type VersionDetector interface {
	Detect(image []byte) string
}

// SymbolAnalyzer resolves symbol offsets inside a kernel image.
// Offsets are only valid when the returned error is nil.
type SymbolAnalyzer interface {
	Analyze(image []byte) (SymbolOffset, error)
}

// Pipeline sequences the byte source, version detector and symbol analyzer
// into one Outcome. It holds no per-run state and may be shared.
type Pipeline struct {
	source   ByteSource
	detector VersionDetector
	analyzer SymbolAnalyzer
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline over the given collaborators.
func NewPipeline(source ByteSource, detector VersionDetector, analyzer SymbolAnalyzer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		source:   source,
		detector: detector,
		analyzer: analyzer,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run analyzes the image at path. Every step may end the run early; no
// error escapes, failures are reported as Outcome variants.
func (p *Pipeline) Run(ctx context.Context, path string) Outcome {
	logger := p.logger.With().Str("path", path).Logger()

	if path == "" {
		logger.Debug().Msg("No input path supplied")
		return NoInput()
	}

	if IsContainerImage(path) {
		logger.Info().Msg("Container image supplied, raw kernel required")
		return InvalidFormat()
	}

	image, err := p.source.Load(ctx, path)
	if err == nil && len(image) == 0 {
		err = ErrEmptyImage
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Kernel image unreadable")
		return Unreadable(err)
	}
	size := len(image)
	logger.Debug().Int("size", size).Msg("Kernel image loaded")

	version := p.detector.Detect(image)
	if version != "" {
		logger.Info().Str("version", version).Msg("Detected kernel version")
	}
	if IsUnsignedGeneration(version) {
		logger.Info().Str("version", version).Msg("Kernel generation has no signature, skipping symbol analysis")
		return UnsignedLegacyVersion(version, size)
	}

	offsets, err := p.analyzer.Analyze(image)
	if err != nil {
		logger.Warn().Err(err).Msg("Symbol analysis failed")
		return SymbolAnalysisFailed(version, size, err)
	}

	logger.Info().
		Str("load_module", fmt.Sprintf("0x%x", offsets.LoadModule)).
		Msg("Resolved kernel symbols")

	return Success(version, size, offsets)
}

// IsContainerImage reports whether path names a container image that must
// be unpacked before analysis. The suffix match ignores case.
func IsContainerImage(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), constants.ContainerImageSuffix)
}

// IsUnsignedGeneration reports whether a kernel release belongs to the 5.x
// or 6.x generations, which lack the signature the analyzer looks for.
func IsUnsignedGeneration(version string) bool {
	return version != "" && (version[0] == '5' || version[0] == '6')
}
