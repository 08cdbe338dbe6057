package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/statementworks/recon/internal/cli"
)

func statementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Manage imported statements",
	}

	cmd.AddCommand(statementsListCmd())
	cmd.AddCommand(statementsCompleteCmd())

	return cmd
}

func statementsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported statements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stmts, err := store.ListStatements(ctx)
			if err != nil {
				return err
			}
			if len(stmts) == 0 {
				fmt.Println(cli.FormatInfo("No statements imported yet"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tBANK\tCURRENCY\tPERIOD\tSTATUS\tPROGRESS")
			for i := range stmts {
				stmt := &stmts[i]
				stats, err := store.GetStatementStats(ctx, stmt.ID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s to %s\t%s\t%d/%d\n",
					stmt.ID, stmt.Bank, stmt.Currency,
					stmt.PeriodStart.Format("2006-01-02"),
					stmt.PeriodEnd.Format("2006-01-02"),
					stmt.Status, stats.Categorized, stats.Total)
			}
			return w.Flush()
		},
	}
}

func statementsCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <statement-id>",
		Short: "Mark a fully categorized statement complete and learn patterns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, _, cleanup, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			learned, err := eng.CompleteStatement(ctx, args[0])
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Statement %s completed, %d new patterns learned", args[0], learned)
			fmt.Println(cli.FormatSuccess(msg))
			return nil
		},
	}
}
