package presentation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/kfind/internal/analysis"
	"github.com/coral-mesh/kfind/internal/report"
	"github.com/coral-mesh/kfind/internal/runner"
)

func result(outcome analysis.Outcome) runner.Result {
	return runner.Result{RunID: uuid.New(), Path: "img", Outcome: outcome}
}

func TestState_Initial(t *testing.T) {
	s := New()

	assert.Equal(t, Idle, s.Phase())
	assert.True(t, s.ControlsEnabled())
	assert.Equal(t, ProgressNone, s.Progress())
	assert.Empty(t, s.CopyText())
	_, ok := s.LastResult()
	assert.False(t, ok)
	assert.Equal(t, report.Banner(), s.Log())
}

func TestState_Lifecycle(t *testing.T) {
	s := New()

	require.True(t, s.Submit("/boot/Image"))
	assert.Equal(t, Working, s.Phase())
	assert.False(t, s.ControlsEnabled())
	assert.Equal(t, ProgressIndeterminate, s.Progress())
	assert.Equal(t, "/boot/Image", s.Path())

	assert.False(t, s.Submit("/other"), "submission while working is rejected")
	assert.Equal(t, "/boot/Image", s.Path())

	r := result(analysis.Success("4.19.1", 8, analysis.SymbolOffset{LoadModule: 0x1234}))
	require.True(t, s.Receive(r))
	assert.Equal(t, Done, s.Phase())
	assert.True(t, s.ControlsEnabled())
	assert.Equal(t, ProgressComplete, s.Progress())
	assert.Equal(t, "0x1234", s.CopyText())

	last, ok := s.LastResult()
	require.True(t, ok)
	assert.Equal(t, r, last)

	assert.False(t, s.Receive(r), "duplicate delivery is ignored")
	assert.Equal(t, Done, s.Phase(), "no automatic return to idle")
}

func TestState_CopyTextOnlyForSuccess(t *testing.T) {
	s := New()

	require.True(t, s.Submit("a"))
	require.True(t, s.Receive(result(analysis.Success("", 1, analysis.SymbolOffset{LoadModule: 0x40}))))
	assert.Equal(t, "0x40", s.CopyText())

	require.True(t, s.Submit("b"))
	require.True(t, s.Receive(result(analysis.SymbolAnalysisFailed("", 1, assert.AnError))))
	assert.Empty(t, s.CopyText())
}

func TestState_ReceiveOutsideWorking(t *testing.T) {
	s := New()

	assert.False(t, s.Receive(result(analysis.NoInput())))
	assert.Equal(t, Idle, s.Phase())
}

func TestState_LogAccumulates(t *testing.T) {
	s := New()

	s.Submit("")
	s.Receive(result(analysis.NoInput()))
	s.Submit("k.img")
	s.Receive(result(analysis.InvalidFormat()))

	texts := report.Texts(s.Log())
	assert.Contains(t, texts, "Processing (no file)...")
	assert.Contains(t, texts, "Processing k.img...")
	assert.Contains(t, texts, "Please supply a raw Linux kernel binary")
	assert.Len(t, texts, len(report.Banner())+2+1+2)

	s.Note(report.Finished())
	log := s.Log()
	assert.Equal(t, "Search complete", log[len(log)-1].Text)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "working", Working.String())
	assert.Equal(t, "done", Done.String())
}
