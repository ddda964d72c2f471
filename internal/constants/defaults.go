package constants

// Source defaults.
const (
	// DefaultMaxImageSize caps how much of a kernel image is read into memory.
	// Raw aarch64 Images are usually 20-60MB.
	DefaultMaxImageSize = 512 << 20

	// DefaultAllowSymlinks lets dropped or shortcut paths be followed.
	DefaultAllowSymlinks = true
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
)

// Analyzer defaults.
var (
	// DefaultBaseSymbols are tried in order to find the address that maps to
	// file offset zero of a raw Image.
	DefaultBaseSymbols = []string{"_text", "_head"}
)

// UI defaults.
const (
	// DefaultUIWidth is the fallback terminal width before the first resize.
	DefaultUIWidth = 80

	// DefaultUIHeight is the fallback terminal height before the first resize.
	DefaultUIHeight = 24
)
