// Package report renders analysis outcomes as the human-readable lines
// shown by the console session and the interactive log.
package report

import (
	"fmt"

	"github.com/coral-mesh/kfind/internal/analysis"
	"github.com/coral-mesh/kfind/internal/kernel/release"
)

// Level classifies a line for styling.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
	LevelResult
)

// Line is a single line of report text.
type Line struct {
	Level Level
	Text  string
}

func (l Line) String() string {
	return l.Text
}

const (
	rule        = "=============================="
	parsingText = "Parsing kernel symbols, this may take a few seconds..."
)

// Banner returns the lines printed once at the start of a session.
func Banner() []Line {
	return []Line{
		info("kfind: locate load_module in aarch64 Linux kernels"),
		info(rule),
	}
}

// Started returns the line printed when a run is accepted.
func Started(path string) Line {
	return info(fmt.Sprintf("Processing %s...", path))
}

// Finished returns the trailer printed when a console session ends.
func Finished() Line {
	return info("Search complete")
}

// Lines renders one outcome.
func Lines(o analysis.Outcome) []Line {
	switch o.Kind {
	case analysis.KindNoInput:
		return []Line{warn("Please pass a kernel image path, or drop the kernel binary onto the terminal")}
	case analysis.KindInvalidFormat:
		return []Line{
			warn("Please supply a raw Linux kernel binary"),
			warn("e.g. boot.img must be unpacked and the kernel extracted first"),
		}
	case analysis.KindUnreadable:
		return []Line{errorf("Cannot open file (path may be invalid or permission denied)")}
	}

	lines := []Line{info(fmt.Sprintf("File size: %d bytes", o.ImageSize))}
	if o.HasVersion() {
		lines = append(lines, info("Found Linux kernel version: "+o.Version))
	}

	if o.Kind == analysis.KindUnsignedLegacyVersion {
		return append(lines, warn(unsignedText(o.Version)))
	}

	lines = append(lines, info(parsingText))
	switch o.Kind {
	case analysis.KindSymbolAnalysisFailed:
		lines = append(lines, errorf("Failed to parse kernel symbols"))
	case analysis.KindSuccess:
		lines = append(lines, Line{Level: LevelResult, Text: "load_module offset: " + o.LoadModuleHex()})
	}
	return lines
}

// Texts flattens lines to their text.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func unsignedText(version string) string {
	if major, ok := release.Major(version); ok {
		return fmt.Sprintf("No signature feature in %d.x kernels", major)
	}
	return "No signature feature"
}

func info(text string) Line   { return Line{Level: LevelInfo, Text: text} }
func warn(text string) Line   { return Line{Level: LevelWarn, Text: text} }
func errorf(text string) Line { return Line{Level: LevelError, Text: text} }
