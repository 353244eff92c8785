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

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-region price statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		stats, err := st.PriceStatistics(ctx)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		if len(stats) == 0 {
			fmt.Fprintln(os.Stderr, "No prices recorded yet.")
			return nil
		}

		formatStats(os.Stdout, stats)
		return nil
	},
}

func formatStats(out io.Writer, stats []model.RegionStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REGION\tMODELS\tAVG\tMIN\tMAX")
	_, _ = fmt.Fprintln(w, "------\t------\t---\t---\t---")
	for _, s := range stats {
		c := model.CurrencyFor(s.RegionName)
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s%.2f\t%s%.2f\t%s%.2f\n",
			s.RegionName, s.ModelsCount,
			c.Symbol, s.AvgPrice,
			c.Symbol, s.MinPrice,
			c.Symbol, s.MaxPrice)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
