package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mobiletools/catalog-cli/internal/importer"
)

var (
	importBatchSize int
	importEncoding  string
)

var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Bulk-import devices and prices from a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		importCfg := cfg.Import
		if cmd.Flags().Changed("batch-size") {
			importCfg.BatchSize = importBatchSize
		}
		if cmd.Flags().Changed("encoding") {
			importCfg.Encoding = importEncoding
		}

		imp := importer.New(st, importCfg)
		summary, err := imp.Run(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "import")
		}

		fmt.Printf("Processed %d rows (%d failed)\n", summary.Rows, summary.RowsFailed)
		fmt.Printf("  models added:    %d\n", summary.ModelsAdded)
		fmt.Printf("  prices added:    %d\n", summary.PricesAdded)
		fmt.Printf("  companies seen:  %d\n", summary.Companies)
		fmt.Printf("  processors seen: %d\n", summary.Processors)
		return nil
	},
}

func init() {
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 100, "rows per intermediate commit")
	importCmd.Flags().StringVar(&importEncoding, "encoding", "cp1252", "source file encoding (cp1252 or utf-8)")
	rootCmd.AddCommand(importCmd)
}
