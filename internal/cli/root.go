// Package cli implements the bargainctl operator commands.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bargainctl",
	Short: "Operate the vehicle bargain back office",
	Long: `bargainctl previews commissions, installment schedules and subscription
renewals offline, and runs the scheduled jobs that need the database:
the overdue installment report and the subscription status sync.`,
	SilenceUsage: true,
}

// Execute runs the command named by the process arguments
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
