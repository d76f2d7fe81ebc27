// Package cli handles the command-line interface logic using the Cobra
// library.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voxmigrate",
		Short: "One-shot migration of the legacy practice platform into the redesigned schema",
		Long: `voxmigrate moves users, clinics, cases and invoices from the legacy
relational schema into the redesigned one, in dependency order, re-keying
every cross-entity reference through a durable identity map. Runs are
idempotent: re-running after an interruption resumes where the previous
run stopped without duplicating records.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}
