package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/statementworks/recon/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage classification categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and sub-categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cats, err := store.GetCategories(ctx)
			if err != nil {
				return err
			}
			if len(cats) == 0 {
				fmt.Println(cli.FormatInfo("No categories defined yet"))
				return nil
			}

			names := make(map[string]string, len(cats))
			for _, cat := range cats {
				names[cat.ID] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tPARENT")
			for _, cat := range cats {
				parent := ""
				if cat.ParentID != "" {
					parent = names[cat.ParentID]
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", cat.ID, cat.Name, parent)
			}
			return w.Flush()
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			parentID, _ := cmd.Flags().GetString("parent")
			cat, err := store.CreateCategory(ctx, args[0], parentID)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %s (%s)", cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().String("parent", "", "Parent category ID (makes this a sub-category)")
	return cmd
}
