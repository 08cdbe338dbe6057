package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/statementworks/recon/internal/cli"
	"github.com/statementworks/recon/internal/importer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Import bank statement files",
		Long: `Import one or more statement files (CSV, OFX, QFX) into the local database.

Transactions are deduplicated, run through the active patterns, and stored
ready for review.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("bank", "b", "", "Bank name for the statement (overrides file metadata)")
	cmd.Flags().StringP("currency", "c", "", "Statement currency, e.g. TRY or USD")
	cmd.Flags().Bool("dry-run", false, "Parse and report without saving")

	_ = viper.BindPFlag("import.bank", cmd.Flags().Lookup("bank"))
	_ = viper.BindPFlag("import.currency", cmd.Flags().Lookup("currency"))
	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	bank := viper.GetString("import.bank")
	currency := viper.GetString("import.currency")
	dryRun := viper.GetBool("import.dry_run")

	eng, _, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	bar := progressbar.NewOptions(len(args),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing statements..."),
	)

	for _, path := range args {
		parsed, err := importer.ParseFile(ctx, path, bank, currency)
		if err != nil {
			return err
		}
		if parsed.Statement.Bank == "" || parsed.Statement.Currency == "" {
			return fmt.Errorf("%s: bank and currency are required (use --bank and --currency)", path)
		}

		if dryRun {
			fmt.Println(cli.FormatInfo(fmt.Sprintf("%s: %d transactions (%s %s, %s to %s), not saved",
				path, len(parsed.Transactions),
				parsed.Statement.Bank, parsed.Statement.Currency,
				parsed.Statement.PeriodStart.Format("2006-01-02"),
				parsed.Statement.PeriodEnd.Format("2006-01-02"))))
			_ = bar.Add(1)
			continue
		}

		result, err := eng.ImportStatement(ctx, parsed.Statement, parsed.Transactions)
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		_ = bar.Add(1)

		fmt.Println()
		fmt.Println(cli.FormatSuccess(fmt.Sprintf(
			"%s: imported %d transactions (%d duplicates skipped, %d auto-matched, %d suggested)",
			path, result.Imported, result.Duplicates, result.AutoMatched, result.Suggested)))
	}

	return nil
}
