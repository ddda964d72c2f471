package helpers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// OutputFormat is the format of a console report.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// SupportedFormats lists every console output format.
var SupportedFormats = []OutputFormat{FormatText, FormatJSON}

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile string
	LogLevel   string
}

// AddGlobalFlags registers --config and --log-level on cmd and its children.
func AddGlobalFlags(cmd *cobra.Command, g *GlobalFlags) {
	cmd.PersistentFlags().StringVar(&g.ConfigFile, "config", "", "Config file (default ~/.kfind/config.yaml)")
	cmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")

	_ = cmd.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error", "disabled"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat) {
	formatNames := make([]string, len(SupportedFormats))
	for i, f := range SupportedFormats {
		formatNames[i] = string(f)
	}

	description := fmt.Sprintf("Output format (%s)", strings.Join(formatNames, ", "))
	cmd.Flags().StringVarP(formatVar, "format", "o", string(defaultFormat), description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks that format is one of SupportedFormats.
func ValidateFormat(format string) (OutputFormat, error) {
	for _, s := range SupportedFormats {
		if format == string(s) {
			return s, nil
		}
	}

	names := make([]string, len(SupportedFormats))
	for i, s := range SupportedFormats {
		names[i] = string(s)
	}

	return "", fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(names, ", "))
}
