// Package analysis turns a kernel image path into a single Outcome.
package analysis

import (
	"fmt"
)

// Kind tags the variant held by an Outcome.
type Kind int

const (
	// KindNoInput means no path was supplied.
	KindNoInput Kind = iota
	// KindUnreadable means the file could not be read or was empty.
	KindUnreadable
	// KindInvalidFormat means a container image (e.g. boot.img) was supplied
	// instead of a raw kernel.
	KindInvalidFormat
	// KindUnsignedLegacyVersion means the detected kernel generation lacks the
	// signature the symbol analyzer needs, so analysis was skipped.
	KindUnsignedLegacyVersion
	// KindSymbolAnalysisFailed means the symbol analyzer could not resolve
	// the offsets.
	KindSymbolAnalysisFailed
	// KindSuccess carries the resolved offsets.
	KindSuccess
)

var kindNames = map[Kind]string{
	KindNoInput:               "no-input",
	KindUnreadable:            "unreadable",
	KindInvalidFormat:         "invalid-format",
	KindUnsignedLegacyVersion: "unsigned-legacy-version",
	KindSymbolAnalysisFailed:  "symbol-analysis-failed",
	KindSuccess:               "success",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// SymbolOffset holds file offsets of kernel symbols inside a raw image.
type SymbolOffset struct {
	// LoadModule is the offset of load_module from the start of the image.
	LoadModule uint64
}

// Outcome is the single value produced by one pipeline run.
type Outcome struct {
	Kind Kind

	// Version is the detected kernel release. It is set for
	// KindUnsignedLegacyVersion and, when one was found, for
	// KindSymbolAnalysisFailed and KindSuccess.
	Version string

	// Offsets is only meaningful when Kind is KindSuccess.
	Offsets SymbolOffset

	// ImageSize is the number of bytes loaded, zero before the load step.
	ImageSize int

	// Cause is the error behind KindUnreadable or KindSymbolAnalysisFailed.
	Cause error
}

// NoInput returns the outcome for an empty path.
func NoInput() Outcome {
	return Outcome{Kind: KindNoInput}
}

// InvalidFormat returns the outcome for a container image path.
func InvalidFormat() Outcome {
	return Outcome{Kind: KindInvalidFormat}
}

// Unreadable returns the outcome for a file that could not be loaded.
func Unreadable(cause error) Outcome {
	return Outcome{Kind: KindUnreadable, Cause: cause}
}

// UnsignedLegacyVersion returns the outcome for a skipped kernel generation.
func UnsignedLegacyVersion(version string, size int) Outcome {
	return Outcome{Kind: KindUnsignedLegacyVersion, Version: version, ImageSize: size}
}

// SymbolAnalysisFailed returns the outcome for a failed symbol analysis.
func SymbolAnalysisFailed(version string, size int, cause error) Outcome {
	return Outcome{Kind: KindSymbolAnalysisFailed, Version: version, ImageSize: size, Cause: cause}
}

// Success returns the outcome carrying resolved offsets.
func Success(version string, size int, offsets SymbolOffset) Outcome {
	return Outcome{Kind: KindSuccess, Version: version, ImageSize: size, Offsets: offsets}
}

// OK reports whether the outcome carries offsets.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// HasVersion reports whether a kernel release was detected.
func (o Outcome) HasVersion() bool {
	return o.Version != ""
}

// LoadModuleHex formats the load_module offset as 0x-prefixed hex, or ""
// when the outcome is not a success.
func (o Outcome) LoadModuleHex() string {
	if !o.OK() {
		return ""
	}
	return fmt.Sprintf("0x%x", o.Offsets.LoadModule)
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindUnsignedLegacyVersion:
		return fmt.Sprintf("%s(%s)", o.Kind, o.Version)
	case KindSuccess:
		return fmt.Sprintf("%s(version=%q, load_module=%s)", o.Kind, o.Version, o.LoadModuleHex())
	}
	if o.Cause != nil {
		return fmt.Sprintf("%s: %v", o.Kind, o.Cause)
	}
	return o.Kind.String()
}
