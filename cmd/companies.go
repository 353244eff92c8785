package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mobiletools/catalog-cli/internal/model"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Manage device companies",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies with their model counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		companies, err := st.ListCompanies(ctx)
		if err != nil {
			return eris.Wrap(err, "companies list")
		}
		if len(companies) == 0 {
			fmt.Fprintln(os.Stderr, "No companies found.")
			return nil
		}

		formatCompanies(os.Stdout, companies)
		return nil
	},
}

var companiesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := st.AddCompany(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "companies add")
		}

		zap.L().Info("company added", zap.Int64("company_id", id), zap.String("name", args[0]))
		fmt.Printf("Added company %q (id %d)\n", args[0], id)
		return nil
	},
}

var companiesRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a company",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid company id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.RenameCompany(ctx, id, args[1]); err != nil {
			return eris.Wrap(err, "companies rename")
		}

		fmt.Printf("Renamed company %d to %q\n", id, args[1])
		return nil
	},
}

var companiesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a company and, by cascade, its models and prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid company id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteCompany(ctx, id); err != nil {
			return eris.Wrap(err, "companies delete")
		}

		fmt.Printf("Deleted company %d\n", id)
		return nil
	},
}

// formatCompanies writes a tabular company listing to out.
func formatCompanies(out io.Writer, companies []model.CompanyListItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMODELS")
	_, _ = fmt.Fprintln(w, "--\t----\t------")
	for _, c := range companies {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", c.ID, c.Name, c.ModelsCount)
	}
	_ = w.Flush()
}

func init() {
	companiesCmd.AddCommand(companiesListCmd, companiesAddCmd, companiesRenameCmd, companiesDeleteCmd)
	rootCmd.AddCommand(companiesCmd)
}
