package cli

import (
	"github.com/spf13/cobra"
)

func NewMigrateCmd() *cobra.Command {
	var dryRun bool
	var logFile string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the legacy-to-redesigned schema migration",
	}

	migrateCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "log what would be inserted without writing to the target")
	migrateCmd.PersistentFlags().StringVar(&logFile, "log-file", "voxmigrate.log", "path of the migration log file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate every entity type in dependency order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleRunAll(logFile, dryRun)
		},
	}

	moduleCmd := &cobra.Command{
		Use:   "module <entity-type>",
		Short: "Migrate a single entity type (its dependencies must already be migrated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleRunModule(logFile, dryRun, args[0])
		},
	}

	migrateCmd.AddCommand(runCmd)
	migrateCmd.AddCommand(moduleCmd)

	return migrateCmd
}
