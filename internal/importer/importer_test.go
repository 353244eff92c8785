package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/mobiletools/catalog-cli/internal/config"
	"github.com/mobiletools/catalog-cli/internal/store"
)

const testHeader = "Company Name,Model Name,Processor,Mobile Weight,RAM,Front Camera,Back Camera,Battery Capacity,Screen Size,Launched Year,Launched Price (Pakistan),Launched Price (India),Launched Price (China),Launched Price (USA),Launched Price (Dubai)"

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImporter_Run_EndToEnd(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	csv := testHeader + "\n" +
		`Acme,X1,Octa X1,194g,8GB,12MP,50MP,5000mAh,6.7 inches,2024,"₨ 10,000","₹ 5,000",,,` + "\n" +
		`Acme,X2,Octa X1,201g,12GB,12MP,108MP,5500mAh,6.9 inches,2024,"₨ 20,000",,,,` + "\n"
	path := writeCSV(t, csv)

	imp := New(st, config.ImportConfig{BatchSize: 100, Encoding: "utf-8"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 2, sum.ModelsAdded)
	assert.Equal(t, 3, sum.PricesAdded)
	assert.Equal(t, 1, sum.Companies)
	assert.Equal(t, 1, sum.Processors)
	assert.Equal(t, 0, sum.RowsFailed)

	companies, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, int64(2), companies[0].ModelsCount)

	models, err := st.ListModels(ctx, nil)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "X1", models[0].Name)
	assert.Equal(t, "X2", models[1].Name)
	require.NotNil(t, models[0].ProcessorName)
	assert.Equal(t, "Octa X1", *models[0].ProcessorName)

	stats, err := st.PriceStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Pakistan", stats[0].RegionName)
	assert.Equal(t, int64(2), stats[0].ModelsCount)
	assert.InDelta(t, 15000, stats[0].AvgPrice, 0.001)
	assert.InDelta(t, 10000, stats[0].MinPrice, 0.001)
	assert.InDelta(t, 20000, stats[0].MaxPrice, 0.001)
	assert.Equal(t, "India", stats[1].RegionName)
	assert.Equal(t, int64(1), stats[1].ModelsCount)
	assert.InDelta(t, 5000, stats[1].AvgPrice, 0.001)
}

func TestImporter_Run_Idempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	csv := testHeader + "\n" +
		`Acme,X1,Octa X1,194g,8GB,12MP,50MP,5000mAh,6.7 inches,2024,"₨ 10,000",,,,` + "\n"
	path := writeCSV(t, csv)

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ModelsAdded)
	assert.Equal(t, 1, sum.PricesAdded)

	// Re-running the same file adds nothing: existing models and prices
	// are silently skipped.
	imp = New(st, config.ImportConfig{Encoding: "utf-8"})
	sum, err = imp.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Rows)
	assert.Equal(t, 0, sum.ModelsAdded)
	assert.Equal(t, 0, sum.PricesAdded)
	assert.Equal(t, 0, sum.RowsFailed)

	models, err := st.ListModels(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestImporter_Run_MalformedRowSkipped(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Middle row has a non-numeric launch year; it must fail alone.
	csv := testHeader + "\n" +
		`Acme,X1,,,,,,,,2024,"$500",,,,` + "\n" +
		`Acme,Broken,,,,,,,,not-a-year,"$100",,,,` + "\n" +
		`Acme,X2,,,,,,,,2025,"$700",,,,` + "\n"
	path := writeCSV(t, csv)

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.RowsFailed)
	assert.Equal(t, 2, sum.ModelsAdded)
	assert.Equal(t, 2, sum.PricesAdded)

	models, err := st.ListModels(ctx, nil)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "X1", models[0].Name)
	assert.Equal(t, "X2", models[1].Name)
}

func TestImporter_Run_MissingCompanyName(t *testing.T) {
	st := newTestStore(t)

	csv := testHeader + "\n" +
		`,X1,,,,,,,,2024,"$500",,,,` + "\n"
	path := writeCSV(t, csv)

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	sum, err := imp.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.RowsFailed)
	assert.Equal(t, 0, sum.ModelsAdded)
}

func TestImporter_Run_BadQuotingSkipsRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// The middle row has a bare quote inside a field, a CSV parse error.
	// The run must skip it and finish the remaining rows.
	csv := testHeader + "\n" +
		`Acme,X1,,,,,,,,2024,"$500",,,,` + "\n" +
		`Acme,X"2,,,,,,,,2024,"$600",,,,` + "\n" +
		`Acme,X3,,,,,,,,2025,"$700",,,,` + "\n"
	path := writeCSV(t, csv)

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Rows)
	assert.Equal(t, 1, sum.RowsFailed)
	assert.Equal(t, 2, sum.ModelsAdded)

	models, err := st.ListModels(ctx, nil)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "X1", models[0].Name)
	assert.Equal(t, "X3", models[1].Name)
}

func TestImporter_Run_HeaderByteOrderMark(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Excel exports prefix the first header cell with a BOM.
	csv := "\uFEFF" + testHeader + "\n" +
		`Acme,X1,,,,,,,,2024,"$500",,,,` + "\n"
	path := writeCSV(t, csv)

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ModelsAdded)
	assert.Equal(t, 0, sum.RowsFailed)
}

func TestImporter_Run_MissingRequiredColumn(t *testing.T) {
	st := newTestStore(t)

	path := writeCSV(t, "Company Name,Processor\nAcme,Octa\n")

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	_, err := imp.Run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model Name")
}

func TestImporter_Run_MissingFile(t *testing.T) {
	st := newTestStore(t)

	imp := New(st, config.ImportConfig{Encoding: "utf-8"})
	_, err := imp.Run(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestImporter_Run_Windows1252(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// The legacy export is Windows-1252; é is a single 0xE9 byte there.
	raw := testHeader + "\n" +
		`Café,X1,,,,,,,,2024,,,,"$1,200",` + "\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(raw)
	require.NoError(t, err)
	path := writeCSV(t, encoded)

	imp := New(st, config.ImportConfig{Encoding: "cp1252"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ModelsAdded)

	companies, err := st.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Café", companies[0].Name)
}

func TestImporter_Run_UnsupportedEncoding(t *testing.T) {
	st := newTestStore(t)

	path := writeCSV(t, testHeader+"\n")

	imp := New(st, config.ImportConfig{Encoding: "latin-9"})
	_, err := imp.Run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestImporter_Run_BatchFlush(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	csv := testHeader + "\n" +
		`Acme,X1,,,,,,,,2024,"$100",,,,` + "\n" +
		`Acme,X2,,,,,,,,2024,"$200",,,,` + "\n" +
		`Acme,X3,,,,,,,,2024,"$300",,,,` + "\n"
	path := writeCSV(t, csv)

	// Batch size below the row count forces intermediate commits.
	imp := New(st, config.ImportConfig{BatchSize: 2, Encoding: "utf-8"})
	sum, err := imp.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.ModelsAdded)
	assert.Equal(t, 3, sum.PricesAdded)

	models, err := st.ListModels(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, models, 3)
}
