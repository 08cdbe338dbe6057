package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/statementworks/recon/internal/cli"
	"github.com/statementworks/recon/internal/model"
	"github.com/statementworks/recon/internal/service"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review and classify imported transactions",
		Long: `Walk through every transaction that still needs attention: confirm or
reject auto-matches, act on suggestions, and classify the rest. Bulk-apply
offers appear whenever other pending rows share the same description.`,
		RunE: runReview,
	}

	cmd.Flags().StringP("bank", "b", "", "Bank of the statement to review")
	cmd.Flags().StringP("currency", "c", "", "Currency of the statement to review")
	cmd.Flags().String("statement", "", "Review a specific statement ID instead of the latest")

	_ = viper.BindPFlag("review.bank", cmd.Flags().Lookup("bank"))
	_ = viper.BindPFlag("review.currency", cmd.Flags().Lookup("currency"))

	return cmd
}

// resolveStatement picks the statement to review: an explicit ID, or the
// latest for the configured bank and currency.
func resolveStatement(ctx context.Context, store service.Storage, stmtID string) (*model.Statement, error) {
	if stmtID != "" {
		return store.GetStatement(ctx, stmtID)
	}

	bank := viper.GetString("review.bank")
	currency := viper.GetString("review.currency")
	if bank == "" || currency == "" {
		return nil, fmt.Errorf("either --statement or both --bank and --currency are required")
	}
	return store.GetLatestStatement(ctx, bank, currency)
}

func runReview(cmd *cobra.Command, _ []string) error {
	eng, store, cleanup, err := initEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	handler := cli.NewInterruptHandler(os.Stdout)
	ctx := handler.HandleInterrupts(cmd.Context())

	stmtID, _ := cmd.Flags().GetString("statement")
	statement, err := resolveStatement(ctx, store, stmtID)
	if err != nil {
		return err
	}

	txns, err := store.GetStatementTransactions(ctx, statement.ID)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Println(cli.FormatWarning("Statement has no transactions"))
		return nil
	}

	prompter := cli.NewPrompter(eng, store, os.Stdin, os.Stdout)
	if _, err := prompter.ReviewStatement(ctx, statement, txns); err != nil {
		return err
	}
	if handler.WasInterrupted() {
		return nil
	}

	stats, err := store.GetStatementStats(ctx, statement.ID)
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatInfo(fmt.Sprintf(
		"Statement progress: %d/%d categorized, %d pending, %d awaiting confirmation, %d suggested",
		stats.Categorized, stats.Total, stats.Pending, stats.AutoMatched, stats.Suggested)))

	if stats.Categorized == stats.Total {
		fmt.Println(cli.FormatSuccess("All transactions categorized. Finish with: recon statements complete " + statement.ID))
	}
	return nil
}
