package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/statementworks/recon/internal/cli"
	"github.com/statementworks/recon/internal/model"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Manage description-based classification patterns",
		Long: `Patterns map normalized transaction descriptions to classifications.
They are learned from completed statements and bulk applies, or created
manually here.`,
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsShowCmd())
	cmd.AddCommand(patternsCreateCmd())
	cmd.AddCommand(patternsDeleteCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.GetActivePatterns(ctx)
			if err != nil {
				return fmt.Errorf("failed to get patterns: %w", err)
			}
			if len(patterns) == 0 {
				fmt.Println(cli.FormatInfo("No active patterns"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tKEY\tTYPE\tSOURCE\tCONFIDENCE\tMATCHES\tCONFIRMS")
			for i := range patterns {
				p := &patterns[i]
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.0f%%\t%d\t%d\n",
					p.ID, p.NormalizedKey, p.Type, p.Source,
					p.Confidence*100, p.MatchCount, p.ConfirmCount)
			}
			return w.Flush()
		},
	}
}

func patternsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one pattern in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pattern id %q", args[0])
			}

			p, err := store.GetPattern(ctx, id)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "ID:\t%d\n", p.ID)
			_, _ = fmt.Fprintf(w, "Key:\t%s\n", p.NormalizedKey)
			_, _ = fmt.Fprintf(w, "Type:\t%s\n", p.Type)
			if p.CategoryID != "" {
				_, _ = fmt.Fprintf(w, "Category:\t%s\n", p.CategoryID)
			}
			if p.SubCategoryID != "" {
				_, _ = fmt.Fprintf(w, "Sub-category:\t%s\n", p.SubCategoryID)
			}
			if p.CustomerID != "" {
				_, _ = fmt.Fprintf(w, "Customer:\t%s\n", p.CustomerID)
			}
			if p.CurrencyPair != "" {
				_, _ = fmt.Fprintf(w, "Currency pair:\t%s\n", p.CurrencyPair)
			}
			_, _ = fmt.Fprintf(w, "Source:\t%s\n", p.Source)
			_, _ = fmt.Fprintf(w, "Confidence:\t%.0f%%\n", p.Confidence*100)
			_, _ = fmt.Fprintf(w, "Matches:\t%d\n", p.MatchCount)
			_, _ = fmt.Fprintf(w, "Confirms:\t%d\n", p.ConfirmCount)
			_, _ = fmt.Fprintf(w, "Rejects:\t%d\n", p.RejectCount)
			_, _ = fmt.Fprintf(w, "Active:\t%t\n", p.IsActive)
			return w.Flush()
		},
	}
}

func patternsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create <key>",
		Aliases: []string{"add"},
		Short:   "Create a manual pattern",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txnType, _ := cmd.Flags().GetString("type")
			categoryID, _ := cmd.Flags().GetString("category")
			customerID, _ := cmd.Flags().GetString("customer")
			currencyPair, _ := cmd.Flags().GetString("currency-pair")
			isRegex, _ := cmd.Flags().GetBool("regex")

			if txnType == "" {
				return fmt.Errorf("--type is required")
			}

			p := &model.DescriptionPattern{
				NormalizedKey: args[0],
				Type:          model.TransactionType(txnType),
				CategoryID:    categoryID,
				CustomerID:    customerID,
				CurrencyPair:  currencyPair,
				Source:        model.PatternSourceManual,
				Confidence:    1.0,
				IsActive:      true,
				IsRegex:       isRegex,
			}
			if err := store.CreatePattern(ctx, p); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created pattern %d for %q", p.ID, p.NormalizedKey)))
			return nil
		},
	}

	cmd.Flags().String("type", "", "Transaction type the pattern applies (required)")
	cmd.Flags().String("category", "", "Category ID")
	cmd.Flags().String("customer", "", "Customer ID")
	cmd.Flags().String("currency-pair", "", "Currency pair, e.g. USD/TRY")
	cmd.Flags().Bool("regex", false, "Treat the key as a regular expression")

	return cmd
}

func patternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pattern id %q", args[0])
			}
			if err := store.DeletePattern(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted pattern %d", id)))
			return nil
		},
	}
}
