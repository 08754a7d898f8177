package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/autobargain/backend/internal/domain/shared/calendar"
	"github.com/autobargain/backend/internal/infrastructure/logger"
)

func init() {
	rootCmd.AddCommand(installmentsCmd)
	installmentsCmd.AddCommand(installmentsOverdueCmd)
	rootCmd.AddCommand(subscriptionsCmd)
	subscriptionsCmd.AddCommand(subscriptionsSyncCmd)

	installmentsOverdueCmd.Flags().String("bargain", "", "Bargain id; empty sweeps every bargain")
	subscriptionsSyncCmd.Flags().Int("batch-size", 0, "Subscriptions loaded per page (default 100)")
}

var installmentsCmd = &cobra.Command{
	Use:   "installments",
	Short: "Installment reports",
}

var installmentsOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List unpaid installments past their due date",
	Args:  cobra.NoArgs,
	RunE:  runInstallmentsOverdue,
}

func runInstallmentsOverdue(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	bargainID := uuid.Nil
	if bargainFlag != "" {
		id, err := parseUUID("bargain", bargainFlag)
		if err != nil {
			return err
		}
		bargainID = id
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, log := logger.WithRunID(ctx, app.log)
	if bargainID != uuid.Nil {
		ctx = logger.WithBargainID(ctx, bargainID)
	}

	overdue, err := app.installments.OverdueInstallments(ctx, bargainID, app.clock.Now())
	if err != nil {
		return err
	}
	log.Info("overdue installment report", zap.Int("overdue", len(overdue)))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "BARGAIN\tTRANSACTION\t#\tDUE\tAMOUNT\tOUTSTANDING\n")
	for _, inst := range overdue {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			inst.BargainID, inst.Subject, inst.SequenceNumber, calendar.Format(inst.DueDate),
			inst.Amount.StringFixed(2), inst.Outstanding.StringFixed(2))
	}
	return w.Flush()
}

var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "Subscription jobs",
}

var subscriptionsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh every subscription's stored status from its term",
	Args:  cobra.NoArgs,
	RunE:  runSubscriptionsSync,
}

func runSubscriptionsSync(cmd *cobra.Command, args []string) error {
	batchSize, _ := cmd.Flags().GetInt("batch-size")

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	app.subscriptions.SetBatchSize(batchSize)
	result, err := app.subscriptions.Sync(ctx, app.clock.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "visited %d, changed %d, failed %d\n", result.Visited, result.Changed, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d subscriptions could not be saved", result.Failed)
	}
	return nil
}
