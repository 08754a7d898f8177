package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	subscriptionapp "github.com/autobargain/backend/internal/application/subscription"
	"github.com/autobargain/backend/internal/domain/commission"
	"github.com/autobargain/backend/internal/domain/installment"
	"github.com/autobargain/backend/internal/domain/shared/calendar"
	"github.com/autobargain/backend/internal/domain/subscription"
	"github.com/autobargain/backend/internal/infrastructure/config"
)

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.AddCommand(previewCommissionCmd)
	previewCmd.AddCommand(previewScheduleCmd)
	previewCmd.AddCommand(previewRenewalCmd)

	previewCommissionCmd.Flags().String("amount", "", "Bargain price the commission is taken from")
	previewCommissionCmd.Flags().String("kind", "percentage", "Policy kind: percentage or fixed")
	previewCommissionCmd.Flags().String("value", "", "Rate in percent, or the fixed amount")
	_ = previewCommissionCmd.MarkFlagRequired("amount")
	_ = previewCommissionCmd.MarkFlagRequired("value")

	previewScheduleCmd.Flags().String("net", "", "Net amount after commission")
	previewScheduleCmd.Flags().String("down", "0", "Down payment")
	previewScheduleCmd.Flags().Int("term", 0, "Term in months")
	previewScheduleCmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	_ = previewScheduleCmd.MarkFlagRequired("net")
	_ = previewScheduleCmd.MarkFlagRequired("term")
	_ = previewScheduleCmd.MarkFlagRequired("start")

	previewRenewalCmd.Flags().String("start", "", "Payment date the term starts on (YYYY-MM-DD)")
	previewRenewalCmd.Flags().String("plan", "monthly", "Plan: monthly, quarterly or yearly")
	_ = previewRenewalCmd.MarkFlagRequired("start")
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute commissions, schedules and renewals without touching the database",
}

var previewCommissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Show the commission and net amount of a price",
	Args:  cobra.NoArgs,
	RunE:  runPreviewCommission,
}

func runPreviewCommission(cmd *cobra.Command, args []string) error {
	amount, _ := cmd.Flags().GetString("amount")
	kind, _ := cmd.Flags().GetString("kind")
	value, _ := cmd.Flags().GetString("value")

	price, err := parseDecimal("amount", amount)
	if err != nil {
		return err
	}
	policy, err := commission.ParsePolicy(kind, value)
	if err != nil {
		return err
	}
	result, err := commission.Compute(price, policy)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "policy\t%s\n", policy)
	fmt.Fprintf(w, "original\t%s\n", result.OriginalAmount.StringFixed(2))
	fmt.Fprintf(w, "commission\t%s\n", result.CommissionAmount.StringFixed(2))
	fmt.Fprintf(w, "net\t%s\n", result.NetAmount.StringFixed(2))
	if result.Capped() {
		fmt.Fprintf(w, "note\tfixed commission capped at the original amount\n")
	}
	return w.Flush()
}

var previewScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the monthly installments of a plan",
	Args:  cobra.NoArgs,
	RunE:  runPreviewSchedule,
}

func runPreviewSchedule(cmd *cobra.Command, args []string) error {
	netFlag, _ := cmd.Flags().GetString("net")
	downFlag, _ := cmd.Flags().GetString("down")
	term, _ := cmd.Flags().GetInt("term")
	startFlag, _ := cmd.Flags().GetString("start")

	net, err := parseDecimal("net", netFlag)
	if err != nil {
		return err
	}
	down, err := parseDecimal("down", downFlag)
	if err != nil {
		return err
	}
	start, err := calendar.Parse(startFlag)
	if err != nil {
		return err
	}

	plan := installment.Plan{NetAmount: net, DownPayment: down, TermMonths: term, StartDate: start}
	lines, err := installment.Schedule(plan)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tDUE\tAMOUNT\n")
	for _, line := range lines {
		fmt.Fprintf(w, "%d\t%s\t%s\n", line.SequenceNumber, calendar.Format(line.DueDate), line.Amount.StringFixed(2))
	}
	fmt.Fprintf(w, "\tdown\t%s\n", down.StringFixed(2))
	fmt.Fprintf(w, "\tremaining\t%s\n", plan.Remaining().StringFixed(2))
	return w.Flush()
}

var previewRenewalCmd = &cobra.Command{
	Use:   "renewal",
	Short: "Show when a subscription paid on a date runs out, and its fee",
	Args:  cobra.NoArgs,
	RunE:  runPreviewRenewal,
}

func runPreviewRenewal(cmd *cobra.Command, args []string) error {
	startFlag, _ := cmd.Flags().GetString("start")
	planFlag, _ := cmd.Flags().GetString("plan")

	start, err := calendar.Parse(startFlag)
	if err != nil {
		return err
	}
	plan := subscription.Plan(planFlag)
	end, err := subscription.RenewalEndDate(start, plan)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "plan\t%s\n", plan)
	fmt.Fprintf(w, "start\t%s\n", calendar.Format(start))
	fmt.Fprintf(w, "end\t%s\n", calendar.Format(end))
	if fee, ok := configuredFee(plan); ok {
		fmt.Fprintf(w, "fee\t%s\n", fee.StringFixed(2))
	}
	return w.Flush()
}

// configuredFee looks the plan up in the configured fee table. Preview works
// without a usable configuration, it just leaves the fee out.
func configuredFee(plan subscription.Plan) (decimal.Decimal, bool) {
	cfg, err := config.Load()
	if err != nil {
		return decimal.Zero, false
	}
	fees, err := subscriptionapp.ParseFeeSchedule(cfg.Subscription.MonthlyFee, cfg.Subscription.QuarterlyFee, cfg.Subscription.YearlyFee)
	if err != nil {
		return decimal.Zero, false
	}
	fee, err := fees.FeeFor(plan)
	return fee, err == nil
}

func parseDecimal(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s must be a decimal, got %q", flag, value)
	}
	return d, nil
}

func parseUUID(flag, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s must be a UUID, got %q", flag, value)
	}
	return id, nil
}
