// Package cli defines the kfind command tree.
package cli

import (
	"github.com/spf13/cobra"

	configcmd "github.com/coral-mesh/kfind/internal/cli/config"
	"github.com/coral-mesh/kfind/internal/cli/helpers"
	"github.com/coral-mesh/kfind/pkg/version"
)

// NewRootCmd builds the kfind command tree.
func NewRootCmd() *cobra.Command {
	var (
		global helpers.GlobalFlags
		format string
	)

	rootCmd := &cobra.Command{
		Use:   "kfind [kernel-image]",
		Short: "Locate load_module in raw aarch64 Linux kernel images",
		Long: `kfind reads a raw aarch64 Linux kernel Image, decodes its kallsyms
table and prints the file offset of load_module.

Container images such as boot.img must be unpacked first; pass the
extracted kernel binary instead.

Run without a subcommand for a one-shot console report, or use
"kfind ui" for the interactive terminal interface.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runConsole(cmd, global, format, path)
		},
	}

	helpers.AddGlobalFlags(rootCmd, &global)
	helpers.AddFormatFlag(rootCmd, &format, helpers.FormatText)

	rootCmd.AddCommand(newUICmd(&global))
	rootCmd.AddCommand(configcmd.NewConfigCmd(&global))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("kfind version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
