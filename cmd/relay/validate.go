package main

import (
	"fmt"

	"hypedigitaly/claude-relay/pkg/cli"
	"hypedigitaly/claude-relay/pkg/config"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without starting the server",
	Long: `Load the configuration exactly as "relay run" would (file, .env,
environment, defaults) and report every problem found.

Exits with status 2 when the configuration is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✓ Configuration valid")
		fmt.Fprintf(out, "  listen:        %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  upstream:      %s\n", cfg.Upstream.BaseURL)
		fmt.Fprintf(out, "  forward scope: %s\n", cfg.Relay.ForwardScope)
		fmt.Fprintf(out, "  idle timeout:  %s\n", cfg.Upstream.IdleTimeout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// loadConfig loads .env and the configuration named by the global flags.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, cli.NewConfigError(envFile, err)
		}
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}
