package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	installmentapp "github.com/autobargain/backend/internal/application/installment"
	tradeapp "github.com/autobargain/backend/internal/application/trade"
	"github.com/autobargain/backend/internal/domain/shared/calendar"
	"github.com/autobargain/backend/internal/domain/trade"
	"github.com/autobargain/backend/internal/infrastructure/logger"
)

func init() {
	rootCmd.AddCommand(commissionCmd)
	commissionCmd.AddCommand(commissionResolveCmd)
	rootCmd.AddCommand(transactionsCmd)
	transactionsCmd.AddCommand(transactionsListCmd)
	transactionsCmd.AddCommand(transactionsPreviewCmd)
	installmentsCmd.AddCommand(installmentsPayCmd)

	for _, cmd := range []*cobra.Command{commissionResolveCmd, transactionsListCmd, transactionsPreviewCmd, installmentsPayCmd} {
		cmd.Flags().String("bargain", "", "Bargain id")
		_ = cmd.MarkFlagRequired("bargain")
	}

	commissionResolveCmd.Flags().String("kind", "sale", "Transaction kind: purchase or sale")

	transactionsListCmd.Flags().String("kind", "", "purchase or sale; empty lists both")
	transactionsListCmd.Flags().String("status", "", "active or completed")
	transactionsListCmd.Flags().String("payment-type", "", "cash or installment")
	transactionsListCmd.Flags().Int("page", 1, "Page number")
	transactionsListCmd.Flags().Int("page-size", 20, "Rows per page")

	transactionsPreviewCmd.Flags().String("kind", "sale", "Transaction kind: purchase or sale")
	transactionsPreviewCmd.Flags().String("price", "", "Bargain price")
	transactionsPreviewCmd.Flags().String("payment-type", "cash", "cash or installment")
	transactionsPreviewCmd.Flags().Int("term", 0, "Installment term in months")
	transactionsPreviewCmd.Flags().String("down", "0", "Down payment")
	transactionsPreviewCmd.Flags().String("date", "", "Transaction date (YYYY-MM-DD); defaults to today")
	_ = transactionsPreviewCmd.MarkFlagRequired("price")

	installmentsPayCmd.Flags().String("installment", "", "Installment id")
	installmentsPayCmd.Flags().String("amount", "", "Amount received")
	installmentsPayCmd.Flags().String("method", "cash", "cash, bank_transfer, cheque or online")
	installmentsPayCmd.Flags().String("date", "", "Payment date (YYYY-MM-DD); defaults to today")
	installmentsPayCmd.Flags().String("reference", "", "Bank or cheque reference")
	_ = installmentsPayCmd.MarkFlagRequired("installment")
	_ = installmentsPayCmd.MarkFlagRequired("amount")
}

var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Commission settings stored for a bargain",
}

var commissionResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the commission policy a bargain's next transaction would use",
	Args:  cobra.NoArgs,
	RunE:  runCommissionResolve,
}

func runCommissionResolve(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	kind, _ := cmd.Flags().GetString("kind")
	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	subject := trade.SubjectType(kind)
	if !subject.IsValid() {
		return fmt.Errorf("--kind must be purchase or sale, got %q", kind)
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	resolved, err := app.settings.Resolve(logger.WithBargainID(ctx, bargainID), bargainID, subject)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "kind\t%s\n", subject)
	fmt.Fprintf(w, "policy\t%s\n", resolved.Policy)
	fmt.Fprintf(w, "source\t%s\n", resolved.Source)
	return w.Flush()
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Purchases and sales of a bargain",
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a bargain's purchases and sales, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTransactionsList,
}

func runTransactionsList(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	filter := tradeapp.TransactionListFilter{}
	filter.Kind, _ = cmd.Flags().GetString("kind")
	filter.Status, _ = cmd.Flags().GetString("status")
	filter.PaymentType, _ = cmd.Flags().GetString("payment-type")
	filter.Page, _ = cmd.Flags().GetInt("page")
	filter.PageSize, _ = cmd.Flags().GetInt("page-size")

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)

	page, err := app.transactions.ListTransactions(logger.WithBargainID(ctx, bargainID), bargainID, filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tKIND\tDATE\tPAYMENT\tSTATUS\tNET\tPAID\tPENDING\n")
	for _, tx := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.Kind, calendar.Format(tx.TransactionDate), tx.PaymentType, tx.Status,
			tx.NetAmount.StringFixed(2), tx.PaidAmount.StringFixed(2), tx.PendingAmount.StringFixed(2))
	}
	fmt.Fprintf(w, "page %d of %d, %d transactions\n", page.Page, page.TotalPages, page.Total)
	return w.Flush()
}

var transactionsPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Price a transaction with the bargain's stored commission policy",
	Args:  cobra.NoArgs,
	RunE:  runTransactionsPreview,
}

func runTransactionsPreview(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	priceFlag, _ := cmd.Flags().GetString("price")
	downFlag, _ := cmd.Flags().GetString("down")
	dateFlag, _ := cmd.Flags().GetString("date")

	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	req := tradeapp.PreviewRequest{}
	req.Kind, _ = cmd.Flags().GetString("kind")
	req.PaymentType, _ = cmd.Flags().GetString("payment-type")
	req.InstallmentMonths, _ = cmd.Flags().GetInt("term")
	if req.BargainPrice, err = parseDecimal("price", priceFlag); err != nil {
		return err
	}
	if req.DownPayment, err = parseDecimal("down", downFlag); err != nil {
		return err
	}
	if dateFlag != "" {
		if req.TransactionDate, err = calendar.Parse(dateFlag); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)
	if req.TransactionDate.IsZero() {
		req.TransactionDate = app.clock.Today()
	}

	preview, err := app.transactions.PreviewTransaction(logger.WithBargainID(ctx, bargainID), bargainID, req)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "source\t%s\n", preview.Commission.Source)
	fmt.Fprintf(w, "commission\t%s\n", preview.Commission.CommissionAmount.StringFixed(2))
	fmt.Fprintf(w, "net\t%s\n", preview.Commission.NetAmount.StringFixed(2))
	fmt.Fprintf(w, "down\t%s\n", preview.DownPayment.StringFixed(2))
	fmt.Fprintf(w, "remaining\t%s\n", preview.Remaining.StringFixed(2))
	for _, line := range preview.Schedule {
		fmt.Fprintf(w, "#%d\t%s\t%s\n", line.SequenceNumber, calendar.Format(line.DueDate), line.Amount.StringFixed(2))
	}
	return w.Flush()
}

var installmentsPayCmd = &cobra.Command{
	Use:   "pay",
	Short: "Record a payment against an installment",
	Args:  cobra.NoArgs,
	RunE:  runInstallmentsPay,
}

func runInstallmentsPay(cmd *cobra.Command, args []string) error {
	bargainFlag, _ := cmd.Flags().GetString("bargain")
	installmentFlag, _ := cmd.Flags().GetString("installment")
	amountFlag, _ := cmd.Flags().GetString("amount")
	dateFlag, _ := cmd.Flags().GetString("date")

	bargainID, err := parseUUID("bargain", bargainFlag)
	if err != nil {
		return err
	}
	req := installmentapp.RecordPaymentRequest{}
	if req.InstallmentID, err = parseUUID("installment", installmentFlag); err != nil {
		return err
	}
	if req.Amount, err = parseDecimal("amount", amountFlag); err != nil {
		return err
	}
	if dateFlag != "" {
		if req.PaymentDate, err = calendar.Parse(dateFlag); err != nil {
			return err
		}
	}
	req.Method, _ = cmd.Flags().GetString("method")
	req.ReferenceNumber, _ = cmd.Flags().GetString("reference")

	ctx := cmd.Context()
	app, err := newApplication(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	ctx, _ = logger.WithRunID(ctx, app.log)
	if req.PaymentDate.IsZero() {
		req.PaymentDate = app.clock.Today()
	}

	resp, err := app.installments.RecordPayment(logger.WithBargainID(ctx, bargainID), bargainID, req)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "payment\t%s\n", resp.PaymentID)
	fmt.Fprintf(w, "installment\t%s\n", resp.Installment.Status)
	fmt.Fprintf(w, "outstanding\t%s\n", resp.Installment.Outstanding.StringFixed(2))
	fmt.Fprintf(w, "transaction\t%s\n", resp.TransactionStatus)
	fmt.Fprintf(w, "pending\t%s\n", resp.TransactionPending.StringFixed(2))
	return w.Flush()
}
