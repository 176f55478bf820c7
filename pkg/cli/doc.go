/*
Package cli provides helpers shared by the relay's commands: output
formatting, typed command errors with exit codes, and signal handling.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, info); err != nil {
		return err
	}

Exit Codes:

ExitCode maps an error returned by a command to the process exit status.
Configuration problems exit with 2 so supervisors can tell a bad deployment
from a crash:

	if err := rootCmd.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
*/
package cli
