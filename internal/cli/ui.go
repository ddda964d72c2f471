package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/kfind/internal/cli/helpers"
	"github.com/coral-mesh/kfind/internal/cli/ui"
	"github.com/coral-mesh/kfind/internal/errors"
	"github.com/coral-mesh/kfind/internal/runner"
)

func newUICmd(global *helpers.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ui [kernel-image]",
		Short: "Interactive terminal interface",
		Long: `Open the interactive interface. Analysis runs in the background while
the interface stays responsive; results accumulate in a scrollable log.

If a kernel image is given it is analyzed immediately. Press "o" to choose
another file (or drop it onto the terminal), "c" to copy the offset and
"?" for help.

Logs are discarded unless log.file is set in the config, so they cannot
corrupt the screen.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(*global)
			if err != nil {
				return err
			}

			logs, err := helpers.NewLogging(cfg.Log, nil)
			if err != nil {
				return err
			}
			logger := logs.Logger()
			defer errors.DeferClose(logger, logs, "failed to close log file")

			cliLogger := logs.Component("cli")
			cliLogger.Debug().Strs("args", args).Msg("Starting interactive session")

			opts := ui.Options{}
			if len(args) == 1 {
				opts.InitialPath = args[0]
			}

			exec := runner.NewAsync(helpers.NewPipeline(cfg, logger), logger)
			return ui.Run(cmd.Context(), exec, opts)
		},
	}
}
