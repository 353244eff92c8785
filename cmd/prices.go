package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mobiletools/catalog-cli/internal/model"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Manage per-region launch prices",
}

var pricesListCmd = &cobra.Command{
	Use:   "list <model-id>",
	Short: "List a model's prices by region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		modelID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid model id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		prices, err := st.ListModelPrices(ctx, modelID)
		if err != nil {
			return eris.Wrap(err, "prices list")
		}
		if len(prices) == 0 {
			fmt.Fprintln(os.Stderr, "No prices found.")
			return nil
		}

		formatPrices(os.Stdout, prices)
		return nil
	},
}

var pricesSetCmd = &cobra.Command{
	Use:   "set <model-id> <region-id> <amount>",
	Short: "Set a model's price for a region (insert or overwrite)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		modelID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid model id: %s", args[0])
		}
		regionID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return eris.Errorf("invalid region id: %s", args[1])
		}
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return eris.Errorf("invalid amount: %s", args[2])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.UpsertPrice(ctx, modelID, regionID, amount); err != nil {
			return eris.Wrap(err, "prices set")
		}

		fmt.Printf("Set price %.2f for model %d in region %d\n", amount, modelID, regionID)
		return nil
	},
}

var pricesDeleteCmd = &cobra.Command{
	Use:   "delete <price-id>",
	Short: "Delete a price row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		priceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid price id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeletePrice(ctx, priceID); err != nil {
			return eris.Wrap(err, "prices delete")
		}

		fmt.Printf("Deleted price %d\n", priceID)
		return nil
	},
}

// formatPrices writes a tabular price listing to out, with each region's
// display currency.
func formatPrices(out io.Writer, prices []model.PriceListItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tREGION\tPRICE\tCURRENCY")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t--------")
	for _, p := range prices {
		c := model.CurrencyFor(p.RegionName)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s%.2f\t%s\n", p.ID, p.RegionName, c.Symbol, p.Amount, c.Code)
	}
	_ = w.Flush()
}

func init() {
	pricesCmd.AddCommand(pricesListCmd, pricesSetCmd, pricesDeleteCmd)
	rootCmd.AddCommand(pricesCmd)
}
