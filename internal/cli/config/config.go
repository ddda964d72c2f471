// Package config implements the 'kfind config' command family.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/kfind/internal/cli/helpers"
	"github.com/coral-mesh/kfind/internal/config"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd(global *helpers.GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kfind configuration",
		Long: `Manage kfind configuration.

Configuration Priority:
  1. Command-line flags (--log-level)
  2. Environment variables (KFIND_LOG_LEVEL, KFIND_MAX_IMAGE_SIZE, ...)
  3. Config file (--config, or config.yaml under $KFIND_CONFIG or ~/.kfind)
  4. Built-in defaults

Environment Variables:
  KFIND_CONFIG    Override config directory (default: ~/.kfind)`,
	}

	cmd.AddCommand(newViewCmd(global))
	cmd.AddCommand(newValidateCmd(global))
	cmd.AddCommand(newInitCmd())

	return cmd
}

// newViewCmd creates the 'config view' command.
func newViewCmd(global *helpers.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := helpers.LoadConfig(*global)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// newValidateCmd creates the 'config validate' command.
func newValidateCmd(global *helpers.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := helpers.LoadConfig(*global); err != nil {
				return err
			}
			cmd.Println("✓ Configuration is valid")
			return nil
		},
	}
}

// newInitCmd creates the 'config init' command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader()
			path := loader.ConfigPath()

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := loader.Save(config.DefaultConfig()); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
