package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/statementworks/recon/internal/cli"
)

func customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage customers",
	}

	cmd.AddCommand(customersListCmd())
	cmd.AddCommand(customersAddCmd())

	return cmd
}

func customersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			customers, err := store.GetCustomers(ctx)
			if err != nil {
				return err
			}
			if len(customers) == 0 {
				fmt.Println(cli.FormatInfo("No customers defined yet"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME")
			for _, cust := range customers {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", cust.ID, cust.Name)
			}
			return w.Flush()
		},
	}
}

func customersAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cust, err := store.CreateCustomer(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created customer %s (%s)", cust.Name, cust.ID)))
			return nil
		},
	}
}
