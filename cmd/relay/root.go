package main

import (
	"fmt"
	"os"

	"hypedigitaly/claude-relay/pkg/cli"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Claude relay - SSE streaming proxy for the Anthropic Messages API",
	Long: `Claude relay forwards chat requests from browser clients to the Anthropic
Messages API and streams the model's answer back as Server-Sent Events.

The API key is held by the server (ANTHROPIC_API_KEY) and never reaches
clients. Configuration comes from an optional YAML file, a .env file and
RELAY_* environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}
