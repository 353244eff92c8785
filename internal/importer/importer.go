// Package importer loads a spreadsheet of device listings into the catalog,
// normalizing free-text company and processor names into reference rows and
// parsing currency-formatted price strings.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mobiletools/catalog-cli/internal/config"
	"github.com/mobiletools/catalog-cli/internal/model"
	"github.com/mobiletools/catalog-cli/internal/store"
)

// Expected CSV column headers.
const (
	colCompany = "Company Name"
	colModel   = "Model Name"
	colCPU     = "Processor"
	colWeight  = "Mobile Weight"
	colRAM     = "RAM"
	colFront   = "Front Camera"
	colBack    = "Back Camera"
	colBattery = "Battery Capacity"
	colScreen  = "Screen Size"
	colYear    = "Launched Year"
)

// priceColumns maps each seeded region to its price column.
var priceColumns = []struct {
	Region string
	Column string
}{
	{"Pakistan", "Launched Price (Pakistan)"},
	{"India", "Launched Price (India)"},
	{"China", "Launched Price (China)"},
	{"USA", "Launched Price (USA)"},
	{"Dubai", "Launched Price (Dubai)"},
}

// Summary is the outcome of one import run. Companies and Processors count
// distinct names touched, whether found or created.
type Summary struct {
	Rows        int `json:"rows"`
	ModelsAdded int `json:"models_added"`
	PricesAdded int `json:"prices_added"`
	Companies   int `json:"companies"`
	Processors  int `json:"processors"`
	RowsFailed  int `json:"rows_failed"`
}

// Importer drives one CSV import run. Its caches live on the run, never
// globally; a fresh Importer is built per invocation.
type Importer struct {
	store     store.Store
	batchSize int
	encoding  string

	resolver *Resolver
	regions  map[string]int64
}

// New creates an Importer for one run against st.
func New(st store.Store, cfg config.ImportConfig) *Importer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return &Importer{
		store:     st,
		batchSize: batch,
		encoding:  cfg.Encoding,
		resolver:  newResolver(),
	}
}

// Run imports the CSV at path. Whole-file problems (unreadable file, bad
// header, lost connection) fail the run; a malformed row only loses that
// row. Progress is durably committed every batchSize rows.
func (im *Importer) Run(ctx context.Context, path string) (*Summary, error) {
	log := zap.L().With(
		zap.String("run_id", uuid.New().String()),
		zap.String("csv", path),
	)
	log.Info("starting import")

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "import: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader, err := im.decodeReader(f)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "import: read CSV header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	tx, err := im.store.BeginImport(ctx)
	if err != nil {
		return nil, err
	}

	if err := im.loadRegions(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	log.Info("loaded regions", zap.Int("count", len(im.regions)))

	sum := &Summary{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Only parse errors are row-scoped; anything else (a failing
			// underlying reader) would repeat forever, so the run aborts.
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				_ = tx.Rollback(ctx)
				return nil, eris.Wrap(err, "import: read CSV")
			}
			sum.Rows++
			log.Error("malformed CSV row", zap.Int("row", sum.Rows), zap.Error(err))
			sum.RowsFailed++
			continue
		}
		sum.Rows++

		if err := im.processRow(ctx, tx, cols, record, sum); err != nil {
			log.Error("row failed", zap.Int("row", sum.Rows), zap.Error(err))
			sum.RowsFailed++
		}

		if sum.Rows%im.batchSize == 0 {
			if err := tx.Flush(ctx); err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			log.Info("processed rows", zap.Int("rows", sum.Rows))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	sum.Companies = im.resolver.Companies()
	sum.Processors = im.resolver.Processors()

	log.Info("import complete",
		zap.Int("rows", sum.Rows),
		zap.Int("models_added", sum.ModelsAdded),
		zap.Int("prices_added", sum.PricesAdded),
		zap.Int("companies", sum.Companies),
		zap.Int("processors", sum.Processors),
		zap.Int("rows_failed", sum.RowsFailed),
	)
	return sum, nil
}

// processRow handles one device listing. Reference-name resolution runs in
// the outer transaction: company and processor rows are shared across the
// run and stay consistent with the caches. The model and price writes are
// scoped to a savepoint, so a failure rolls back only this row's data.
func (im *Importer) processRow(ctx context.Context, tx store.ImportTx, cols map[string]int, record []string, sum *Summary) error {
	companyID, err := im.resolver.Company(ctx, tx, field(record, cols, colCompany))
	if err != nil {
		return err
	}
	processorID, err := im.resolver.Processor(ctx, tx, field(record, cols, colCPU))
	if err != nil {
		return err
	}

	if err := tx.BeginRow(ctx); err != nil {
		return err
	}

	modelsAdded, pricesAdded, err := im.writeRow(ctx, tx, cols, record, companyID, processorID)
	if err != nil {
		if rbErr := tx.RollbackRow(ctx); rbErr != nil {
			return rbErr
		}
		return err
	}
	if err := tx.CommitRow(ctx); err != nil {
		return err
	}

	sum.ModelsAdded += modelsAdded
	sum.PricesAdded += pricesAdded
	return nil
}

// writeRow upserts the model and its prices inside the current savepoint.
// An existing (name, company) model is reused as-is: only net-new models
// and net-new prices are written on the import path.
func (im *Importer) writeRow(ctx context.Context, tx store.ImportTx, cols map[string]int, record []string, companyID int64, processorID *int64) (modelsAdded, pricesAdded int, err error) {
	name := field(record, cols, colModel)
	if name == "" {
		return 0, 0, eris.New("import: missing model name")
	}

	modelID, found, err := tx.FindModel(ctx, name, companyID)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		year, err := parseYear(field(record, cols, colYear))
		if err != nil {
			return 0, 0, err
		}
		modelID, err = tx.InsertModel(ctx, model.DeviceInput{
			Name:            name,
			CompanyID:       companyID,
			MobileWeight:    optional(field(record, cols, colWeight)),
			RAM:             optional(field(record, cols, colRAM)),
			FrontCamera:     optional(field(record, cols, colFront)),
			BackCamera:      optional(field(record, cols, colBack)),
			BatteryCapacity: optional(field(record, cols, colBattery)),
			ScreenSize:      optional(field(record, cols, colScreen)),
			LaunchedYear:    year,
		}, processorID)
		if err != nil {
			return 0, 0, err
		}
		modelsAdded = 1
	}

	for _, pc := range priceColumns {
		amount, ok := ParsePrice(field(record, cols, pc.Column))
		if !ok {
			continue
		}
		regionID, ok := im.regions[pc.Region]
		if !ok {
			return modelsAdded, pricesAdded, eris.Errorf("import: unknown region %q", pc.Region)
		}
		exists, err := tx.PriceExists(ctx, modelID, regionID)
		if err != nil {
			return modelsAdded, pricesAdded, err
		}
		if exists {
			continue
		}
		if err := tx.InsertPrice(ctx, modelID, regionID, amount); err != nil {
			return modelsAdded, pricesAdded, err
		}
		pricesAdded++
	}

	return modelsAdded, pricesAdded, nil
}

func (im *Importer) loadRegions(ctx context.Context, tx store.ImportTx) error {
	regions, err := tx.Regions(ctx)
	if err != nil {
		return err
	}
	im.regions = make(map[string]int64, len(regions))
	for _, r := range regions {
		im.regions[r.Name] = r.ID
	}
	return nil
}

// decodeReader wraps the raw file in a charset decoder. The legacy dataset
// is Windows-1252.
func (im *Importer) decodeReader(f io.Reader) (io.Reader, error) {
	switch strings.ToLower(im.encoding) {
	case "", "cp1252", "windows-1252":
		return transform.NewReader(f, charmap.Windows1252.NewDecoder()), nil
	case "utf-8", "utf8":
		return f, nil
	default:
		return nil, eris.Errorf("import: unsupported encoding %q", im.encoding)
	}
}

// mapColumns indexes header names, tolerating stray whitespace and a BOM.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	for _, required := range []string{colCompany, colModel} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("import: CSV is missing required column %q", required)
		}
	}
	return cols, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseYear parses the launch year strictly: a present but non-numeric
// value fails the row rather than being silently dropped.
func parseYear(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	y, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "import: parse launched year %q", s)
	}
	return &y, nil
}
