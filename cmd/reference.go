package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mobiletools/catalog-cli/internal/model"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Manage sales regions",
}

var regionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all regions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		regions, err := st.ListRegions(ctx)
		if err != nil {
			return eris.Wrap(err, "regions list")
		}

		formatRegions(os.Stdout, regions)
		return nil
	},
}

var processorsCmd = &cobra.Command{
	Use:   "processors",
	Short: "Manage processors",
}

var processorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all processors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		procs, err := st.ListProcessors(ctx)
		if err != nil {
			return eris.Wrap(err, "processors list")
		}
		if len(procs) == 0 {
			fmt.Fprintln(os.Stderr, "No processors found.")
			return nil
		}

		formatProcessors(os.Stdout, procs)
		return nil
	},
}

func formatRegions(out io.Writer, regions []model.Region) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCURRENCY\tSYMBOL")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t------")
	for _, r := range regions {
		c := model.CurrencyFor(r.Name)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Name, c.Code, c.Symbol)
	}
	_ = w.Flush()
}

func formatProcessors(out io.Writer, procs []model.Processor) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME")
	_, _ = fmt.Fprintln(w, "--\t----")
	for _, p := range procs {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", p.ID, p.Name)
	}
	_ = w.Flush()
}

func init() {
	regionsCmd.AddCommand(regionsListCmd)
	processorsCmd.AddCommand(processorsListCmd)
	rootCmd.AddCommand(regionsCmd, processorsCmd)
}
