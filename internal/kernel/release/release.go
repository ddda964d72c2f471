// Package release detects the kernel release string in a raw kernel image.
package release

import (
	"regexp"

	"github.com/hashicorp/go-version"
)

var (
	// bannerPattern matches the linux_banner string compiled into every
	// kernel, e.g. "Linux version 4.14.186-perf+ (builder@host) (gcc ...".
	bannerPattern = regexp.MustCompile(`Linux version (\d+\.\d+[^\s\x00]*) \(`)

	// numericPrefix is the dotted numeric part of a release.
	numericPrefix = regexp.MustCompile(`^\d+(\.\d+){1,2}`)
)

// Detector finds the kernel release in an image.
type Detector struct{}

// NewDetector creates a detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the release of the first banner whose version parses,
// or "" when none is found.
func (d *Detector) Detect(image []byte) string {
	for _, m := range bannerPattern.FindAllSubmatch(image, -1) {
		release := string(m[1])
		if _, err := Parse(release); err == nil {
			return release
		}
	}
	return ""
}

// Parse parses the numeric part of a release such as "4.14.186-perf+".
func Parse(release string) (*version.Version, error) {
	core := numericPrefix.FindString(release)
	if core == "" {
		core = release
	}
	return version.NewVersion(core)
}

// Major returns the major version of a release, or false if it does not parse.
func Major(release string) (int, bool) {
	v, err := Parse(release)
	if err != nil {
		return 0, false
	}
	return v.Segments()[0], true
}
