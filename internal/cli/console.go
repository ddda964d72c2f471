package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/kfind/internal/cli/console"
	"github.com/coral-mesh/kfind/internal/cli/helpers"
	"github.com/coral-mesh/kfind/internal/errors"
	"github.com/coral-mesh/kfind/internal/runner"
)

// runConsole analyzes path synchronously and prints the report to stdout.
// Analysis failures are reported as text; only setup errors are returned.
func runConsole(cmd *cobra.Command, global helpers.GlobalFlags, format, path string) error {
	outputFormat, err := helpers.ValidateFormat(format)
	if err != nil {
		return err
	}

	cfg, err := helpers.LoadConfig(global)
	if err != nil {
		return err
	}

	logs, err := helpers.NewLogging(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	logger := logs.Logger()
	defer errors.DeferClose(logger, logs, "failed to close log file")

	cliLogger := logs.Component("cli")
	cliLogger.Debug().Str("path", path).Str("format", string(outputFormat)).Msg("Starting console session")

	exec := runner.NewSync(helpers.NewPipeline(cfg, logger), logger)
	return console.NewSession(exec, cmd.OutOrStdout(), outputFormat).Run(cmd.Context(), path)
}
