package main

import (
	"log/slog"

	"github.com/couchcryptid/incident-map-service/internal/observability"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "incidentctl",
		Short: "Inspect and generate incident map feeds",
		Long: `incidentctl checks sheet exports the same way the map service does and
generates mock feeds for local runs and tests.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	root.AddCommand(newCheckCmd(&logLevel), newGenmockCmd())
	return root
}

// cliLogger writes human-readable diagnostics to the command's stderr so
// they never mix with report output.
func cliLogger(cmd *cobra.Command, level string) *slog.Logger {
	return observability.NewLogger(cmd.ErrOrStderr(), level, "text")
}
