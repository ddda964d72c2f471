package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/kfind/internal/testutil"
)

type fakeSource struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeSource) Load(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type fakeDetector struct {
	version string
	calls   int
}

func (f *fakeDetector) Detect(_ []byte) string {
	f.calls++
	return f.version
}

type fakeAnalyzer struct {
	offsets SymbolOffset
	err     error
	calls   int
}

func (f *fakeAnalyzer) Analyze(_ []byte) (SymbolOffset, error) {
	f.calls++
	return f.offsets, f.err
}

type fakes struct {
	source   *fakeSource
	detector *fakeDetector
	analyzer *fakeAnalyzer
}

func newFakes() fakes {
	return fakes{
		source:   &fakeSource{data: []byte("kernel")},
		detector: &fakeDetector{},
		analyzer: &fakeAnalyzer{offsets: SymbolOffset{LoadModule: 0x1234}},
	}
}

func (f fakes) pipeline(t *testing.T) *Pipeline {
	return NewPipeline(f.source, f.detector, f.analyzer, testutil.NewTestLogger(t))
}

func TestPipeline_NoInput(t *testing.T) {
	f := newFakes()

	out := f.pipeline(t).Run(context.Background(), "")

	assert.Equal(t, KindNoInput, out.Kind)
	assert.Zero(t, f.source.calls)
}

func TestPipeline_ContainerImage(t *testing.T) {
	paths := []string{"k.img", "boot.IMG", "/tmp/dir/recovery.Img", ".img"}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			f := newFakes()

			out := f.pipeline(t).Run(context.Background(), path)

			assert.Equal(t, KindInvalidFormat, out.Kind)
			assert.Zero(t, f.source.calls, "byte source must not be invoked")
			assert.Zero(t, f.detector.calls)
			assert.Zero(t, f.analyzer.calls)
		})
	}
}

func TestPipeline_Unreadable(t *testing.T) {
	readErr := errors.New("permission denied")

	tests := []struct {
		name      string
		data      []byte
		err       error
		wantCause error
	}{
		{name: "load error", err: readErr, wantCause: readErr},
		{name: "nil buffer", data: nil, wantCause: ErrEmptyImage},
		{name: "zero length", data: []byte{}, wantCause: ErrEmptyImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakes()
			f.source.data, f.source.err = tt.data, tt.err

			out := f.pipeline(t).Run(context.Background(), "/boot/Image")

			assert.Equal(t, KindUnreadable, out.Kind)
			assert.ErrorIs(t, out.Cause, tt.wantCause)
			assert.Equal(t, 1, f.source.calls)
			assert.Zero(t, f.detector.calls, "version detector must not be invoked")
			assert.Zero(t, f.analyzer.calls, "symbol analyzer must not be invoked")
		})
	}
}

func TestPipeline_UnsignedLegacyVersion(t *testing.T) {
	for _, version := range []string{"5.10.0", "5.4.210-qgki", "6.1.25-android14", "6"} {
		t.Run(version, func(t *testing.T) {
			f := newFakes()
			f.detector.version = version

			out := f.pipeline(t).Run(context.Background(), "/boot/Image")

			assert.Equal(t, KindUnsignedLegacyVersion, out.Kind)
			assert.Equal(t, version, out.Version)
			assert.Equal(t, len("kernel"), out.ImageSize)
			assert.Zero(t, f.analyzer.calls, "symbol analyzer must not be invoked")
		})
	}
}

func TestPipeline_OtherVersionsCarriedThrough(t *testing.T) {
	for _, version := range []string{"", "4.14.186", "3.18.71", "7.0.0", "15.1"} {
		t.Run(version, func(t *testing.T) {
			f := newFakes()
			f.detector.version = version

			out := f.pipeline(t).Run(context.Background(), "/boot/Image")

			require.Equal(t, KindSuccess, out.Kind)
			assert.Equal(t, version, out.Version)
			assert.Equal(t, 1, f.analyzer.calls)
		})
	}
}

func TestPipeline_SymbolAnalysisFailed(t *testing.T) {
	f := newFakes()
	f.detector.version = "4.9.112"
	f.analyzer.err = errors.New("signature not found")
	f.analyzer.offsets = SymbolOffset{LoadModule: 0xdead}

	out := f.pipeline(t).Run(context.Background(), "/boot/Image")

	assert.Equal(t, KindSymbolAnalysisFailed, out.Kind)
	assert.Equal(t, "4.9.112", out.Version)
	assert.Zero(t, out.Offsets, "no offsets are produced on failure")
	assert.Empty(t, out.LoadModuleHex())
	assert.EqualError(t, out.Cause, "signature not found")
}

func TestPipeline_Success(t *testing.T) {
	f := newFakes()

	out := f.pipeline(t).Run(context.Background(), "/boot/Image")

	require.True(t, out.OK())
	assert.Equal(t, SymbolOffset{LoadModule: 0x1234}, out.Offsets)
	assert.Equal(t, "0x1234", out.LoadModuleHex())
	assert.False(t, out.HasVersion())
	assert.Equal(t, 1, f.source.calls)
	assert.Equal(t, 1, f.detector.calls)
	assert.Equal(t, 1, f.analyzer.calls)
}

func TestIsUnsignedGeneration(t *testing.T) {
	assert.True(t, IsUnsignedGeneration("5.15.0"))
	assert.True(t, IsUnsignedGeneration("6.6.30"))
	assert.False(t, IsUnsignedGeneration("4.19.157"))
	assert.False(t, IsUnsignedGeneration(""))
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		out  Outcome
		want string
	}{
		{NoInput(), "no-input"},
		{InvalidFormat(), "invalid-format"},
		{Unreadable(errors.New("boom")), "unreadable: boom"},
		{UnsignedLegacyVersion("5.10.0", 1), "unsigned-legacy-version(5.10.0)"},
		{SymbolAnalysisFailed("", 1, errors.New("nope")), "symbol-analysis-failed: nope"},
		{Success("4.14.186", 1, SymbolOffset{LoadModule: 0x1234}), `success(version="4.14.186", load_module=0x1234)`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.out.String())
	}
	assert.Equal(t, "kind(42)", Kind(42).String())
}
