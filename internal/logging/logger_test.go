package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		logged  []string
		dropped []string
	}{
		{level: "trace", logged: []string{"trace message", "debug message", "info message"}},
		{level: "debug", logged: []string{"debug message", "info message"}, dropped: []string{"trace message"}},
		{level: "info", logged: []string{"info message"}, dropped: []string{"trace message", "debug message"}},
		{level: "warn", logged: []string{"warn message"}, dropped: []string{"info message"}},
		{level: "error", logged: []string{"error message"}, dropped: []string{"warn message"}},
		{level: "disabled", dropped: []string{"info message", "error message"}},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: tc.level, Output: &buf})

			logger.Trace().Msg("trace message")
			logger.Debug().Msg("debug message")
			logger.Info().Msg("info message")
			logger.Warn().Msg("warn message")
			logger.Error().Msg("error message")

			output := buf.String()
			for _, want := range tc.logged {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q to be logged at %s level", want, tc.level)
				}
			}
			for _, unwanted := range tc.dropped {
				if strings.Contains(output, unwanted) {
					t.Errorf("Expected %q to NOT be logged at %s level", unwanted, tc.level)
				}
			}
		})
	}
}

func TestNewWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithComponent(Config{
		Level:  "info",
		Pretty: false,
		Output: &buf,
	}, "pipeline")

	logger.Info().Msg("test message")

	output := buf.String()

	if !strings.Contains(output, `"component":"pipeline"`) {
		t.Errorf("Expected log to contain component field, got %s", output)
	}
	if !strings.Contains(output, "test message") {
		t.Error("Expected log to contain message 'test message'")
	}
}

func TestNew_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  "info",
		Pretty: true,
		Output: &buf,
	})

	logger.Info().Msg("test message")

	// Pretty output should contain the message (specific formatting may vary).
	if !strings.Contains(buf.String(), "test message") {
		t.Error("Expected pretty output to contain message 'test message'")
	}
}

func TestNew_DefaultOutput(t *testing.T) {
	// Nil output falls back to stderr and must not panic.
	logger := New(Config{Level: "info"})
	logger.Info().Msg("test message")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("Expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Output != os.Stderr {
		t.Error("Expected default output to be stderr")
	}
}

func TestParseLevel(t *testing.T) {
	levels := []struct {
		level    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tc := range levels {
		t.Run(tc.level, func(t *testing.T) {
			if got := ParseLevel(tc.level); got != tc.expected {
				t.Errorf("Expected level %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("Expected a buffer to not be reported as a terminal")
	}
}
