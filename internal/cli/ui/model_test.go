package ui

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/kfind/internal/analysis"
	"github.com/coral-mesh/kfind/internal/presentation"
	"github.com/coral-mesh/kfind/internal/report"
	"github.com/coral-mesh/kfind/internal/runner"
	"github.com/coral-mesh/kfind/internal/testutil"
)

type gatedAnalyzer struct {
	outcome analysis.Outcome
	gate    chan struct{}
	calls   atomic.Int32
}

func (g *gatedAnalyzer) Run(_ context.Context, _ string) analysis.Outcome {
	g.calls.Add(1)
	<-g.gate
	return g.outcome
}

func newTestModel(t *testing.T, outcome analysis.Outcome, opts Options) (Model, *gatedAnalyzer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	analyzer := &gatedAnalyzer{outcome: outcome, gate: make(chan struct{})}
	exec := runner.NewAsync(analyzer, testutil.NewTestLogger(t))
	m, err := NewModel(context.Background(), exec, opts)
	require.NoError(t, err)
	return m, analyzer
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func awaitResult(t *testing.T, m Model) resultMsg {
	t.Helper()
	select {
	case r := <-m.results:
		return resultMsg{result: r}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return resultMsg{}
	}
}

func TestModel_SubmitAndReceive(t *testing.T) {
	success := analysis.Success("4.14.186", 16, analysis.SymbolOffset{LoadModule: 0x1234})
	m, analyzer := newTestModel(t, success, Options{})

	m, cmd := update(t, m, submitMsg{path: "/boot/Image"})
	require.NotNil(t, cmd)
	assert.Equal(t, presentation.Working, m.State().Phase())
	assert.Contains(t, m.View(), "Analyzing...")

	// Re-entrant submission is dropped.
	m, cmd = update(t, m, submitMsg{path: "/other"})
	assert.Nil(t, cmd)
	assert.Equal(t, "/boot/Image", m.State().Path())

	close(analyzer.gate)
	m, _ = update(t, m, awaitResult(t, m))

	assert.Equal(t, presentation.Done, m.State().Phase())
	assert.Equal(t, "0x1234", m.State().CopyText())
	assert.EqualValues(t, 1, analyzer.calls.Load())
	assert.Contains(t, report.Texts(m.State().Log()), "load_module offset: 0x1234")
}

func TestModel_ResultOutsideRunIgnored(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{})

	m, _ = update(t, m, resultMsg{result: runner.Result{Outcome: analysis.NoInput()}})
	assert.Equal(t, presentation.Idle, m.State().Phase())
}

func TestModel_InitSubmitsInitialPath(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{InitialPath: "/boot/Image"})

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, submitMsg{path: "/boot/Image"}, cmd())

	empty, _ := newTestModel(t, analysis.NoInput(), Options{})
	assert.Nil(t, empty.Init())
}

func TestModel_OpenPrompt(t *testing.T) {
	m, analyzer := newTestModel(t, analysis.InvalidFormat(), Options{})
	close(analyzer.gate)

	m, _ = update(t, m, key("o"))
	require.True(t, m.prompting)
	assert.Contains(t, m.View(), "Kernel image:")

	m, _ = update(t, m, key("'/tmp/boot.img'"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, m.prompting)
	assert.Equal(t, "/tmp/boot.img", m.State().Path())

	m, _ = update(t, m, awaitResult(t, m))
	assert.Equal(t, presentation.Done, m.State().Phase())
	assert.Empty(t, m.State().CopyText())
}

func TestModel_PromptEscape(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{})

	m, _ = update(t, m, key("o"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.prompting)
	assert.Equal(t, presentation.Idle, m.State().Phase())
}

func TestModel_DroppedFileSubmits(t *testing.T) {
	m, analyzer := newTestModel(t, analysis.NoInput(), Options{})
	close(analyzer.gate)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/home/me/Image'"), Paste: true})
	require.NotNil(t, cmd)
	assert.Equal(t, "/home/me/Image", m.State().Path())

	m, _ = update(t, m, awaitResult(t, m))
	assert.Equal(t, presentation.Done, m.State().Phase())
}

func TestModel_Copy(t *testing.T) {
	var copied string
	opts := Options{Clipboard: func(s string) error {
		copied = s
		return nil
	}}
	m, analyzer := newTestModel(t, analysis.Success("", 1, analysis.SymbolOffset{LoadModule: 0xbeef}), opts)

	m, cmd := update(t, m, key("c"))
	assert.Nil(t, cmd)
	assert.Equal(t, "No offset to copy", m.status)

	close(analyzer.gate)
	m, _ = update(t, m, submitMsg{path: "Image"})
	m, _ = update(t, m, awaitResult(t, m))

	m, cmd = update(t, m, key("c"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, "0xbeef", copied)
	assert.Equal(t, "Copied 0xbeef to clipboard", m.status)
}

func TestModel_CopyError(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{})

	m, _ = update(t, m, copiedMsg{text: "0x1", err: errors.New("no clipboard")})
	assert.Equal(t, "Copy failed: no clipboard", m.status)
}

func TestModel_RerunAfterDone(t *testing.T) {
	m, analyzer := newTestModel(t, analysis.NoInput(), Options{})
	close(analyzer.gate)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "nothing to re-run while idle")

	m, _ = update(t, m, submitMsg{path: "Image"})
	m, _ = update(t, m, awaitResult(t, m))
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, presentation.Working, m.State().Phase())

	m, _ = update(t, m, awaitResult(t, m))
	assert.Equal(t, presentation.Done, m.State().Phase())
	assert.EqualValues(t, 2, analyzer.calls.Load())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{})

	m, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestModel_Help(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{})

	m, _ = update(t, m, key("?"))
	assert.Contains(t, m.View(), "load_module")

	m, _ = update(t, m, key("?"))
	assert.False(t, m.showHelp)
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := newTestModel(t, analysis.NoInput(), Options{})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.log.Width)
	assert.Equal(t, 33, m.log.Height)
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"/boot/Image":             "/boot/Image",
		"  /boot/Image \n":        "/boot/Image",
		"'/tmp/my kernel/Image'":  "/tmp/my kernel/Image",
		`"/tmp/Image"`:            "/tmp/Image",
		`/tmp/my\ kernel/Image`:   "/tmp/my kernel/Image",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanPath(in), "input %q", in)
	}
}
