// Package console runs a blocking analysis session and prints its report.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/coral-mesh/kfind/internal/cli/helpers"
	"github.com/coral-mesh/kfind/internal/presentation"
	"github.com/coral-mesh/kfind/internal/report"
	"github.com/coral-mesh/kfind/internal/runner"
)

// Session prints one analysis to an output writer.
type Session struct {
	exec   runner.Executor
	out    io.Writer
	format helpers.OutputFormat
	styles styles
}

type styles struct {
	info   lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	result lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		info:   r.NewStyle(),
		warn:   r.NewStyle().Foreground(lipgloss.Color("11")),
		err:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		result: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	}
}

// NewSession creates a console session. Colours are only emitted when out
// is a terminal.
func NewSession(exec runner.Executor, out io.Writer, format helpers.OutputFormat) *Session {
	return &Session{
		exec:   exec,
		out:    out,
		format: format,
		styles: newStyles(out),
	}
}

// Record is the JSON form of a result.
type Record struct {
	RunID      string `json:"run_id"`
	Path       string `json:"path"`
	Outcome    string `json:"outcome"`
	Version    string `json:"version,omitempty"`
	ImageSize  int    `json:"image_size,omitempty"`
	LoadModule string `json:"load_module,omitempty"`
	Error      string `json:"error,omitempty"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// NewRecord converts a result to its JSON form.
func NewRecord(r runner.Result) Record {
	rec := Record{
		RunID:      r.RunID.String(),
		Path:       r.Path,
		Outcome:    r.Outcome.Kind.String(),
		Version:    r.Outcome.Version,
		ImageSize:  r.Outcome.ImageSize,
		LoadModule: r.Outcome.LoadModuleHex(),
		ElapsedMS:  r.Elapsed.Milliseconds(),
	}
	if r.Outcome.Cause != nil {
		rec.Error = r.Outcome.Cause.Error()
	}
	return rec
}

// Run analyzes path and writes the report. Analysis failures are part of
// the report; only write errors are returned.
func (s *Session) Run(ctx context.Context, path string) error {
	state := presentation.New()
	state.Submit(path)

	var result runner.Result
	s.exec.Execute(ctx, path, func(r runner.Result) {
		result = r
		state.Receive(r)
	})

	if s.format == helpers.FormatJSON {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(NewRecord(result))
	}

	state.Note(report.Finished())
	for _, line := range state.Log() {
		if _, err := fmt.Fprintln(s.out, s.render(line)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) render(line report.Line) string {
	switch line.Level {
	case report.LevelWarn:
		return s.styles.warn.Render(line.Text)
	case report.LevelError:
		return s.styles.err.Render(line.Text)
	case report.LevelResult:
		return s.styles.result.Render(line.Text)
	default:
		return s.styles.info.Render(line.Text)
	}
}
