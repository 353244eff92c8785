package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mobiletools/catalog-cli/internal/model"
)

var modelsCompanyID int64

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage device models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models, optionally filtered to one company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var companyID *int64
		if cmd.Flags().Changed("company") {
			companyID = &modelsCompanyID
		}

		models, err := st.ListModels(ctx, companyID)
		if err != nil {
			return eris.Wrap(err, "models list")
		}
		if len(models) == 0 {
			fmt.Fprintln(os.Stderr, "No models found.")
			return nil
		}

		formatModels(os.Stdout, models)
		return nil
	},
}

var modelsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a model's full field set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid model id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		device, err := st.GetModel(ctx, id)
		if err != nil {
			return eris.Wrap(err, "models show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(device)
	},
}

var modelsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search models by name, company, RAM, or battery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		results, err := st.SearchModels(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "models search")
		}
		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No matches.")
			return nil
		}

		formatSearchResults(os.Stdout, results)
		return nil
	},
}

var modelsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a model",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		in, err := deviceInputFromFlags(cmd, model.DeviceInput{})
		if err != nil {
			return err
		}
		if in.Name == "" || in.CompanyID == 0 {
			return eris.New("--name and --company are required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		id, err := st.AddModel(ctx, in)
		if err != nil {
			return eris.Wrap(err, "models add")
		}

		fmt.Printf("Added model %q (id %d)\n", in.Name, id)
		return nil
	},
}

var modelsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a model, replacing its mutable fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid model id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// Start from the stored record so unchanged flags keep their values.
		current, err := st.GetModel(ctx, id)
		if err != nil {
			return eris.Wrap(err, "models update")
		}
		in, err := deviceInputFromFlags(cmd, model.DeviceInput{
			Name:            current.Name,
			CompanyID:       current.CompanyID,
			ProcessorName:   current.ProcessorName,
			MobileWeight:    current.MobileWeight,
			RAM:             current.RAM,
			FrontCamera:     current.FrontCamera,
			BackCamera:      current.BackCamera,
			BatteryCapacity: current.BatteryCapacity,
			ScreenSize:      current.ScreenSize,
			LaunchedYear:    current.LaunchedYear,
		})
		if err != nil {
			return err
		}

		if err := st.UpdateModel(ctx, id, in); err != nil {
			return eris.Wrap(err, "models update")
		}

		fmt.Printf("Updated model %d\n", id)
		return nil
	},
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a model and, by cascade, its prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return eris.Errorf("invalid model id: %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteModel(ctx, id); err != nil {
			return eris.Wrap(err, "models delete")
		}

		fmt.Printf("Deleted model %d\n", id)
		return nil
	},
}

// deviceInputFromFlags overlays set flags onto base. An optional flag set
// to the empty string clears the field.
func deviceInputFromFlags(cmd *cobra.Command, base model.DeviceInput) (model.DeviceInput, error) {
	flags := cmd.Flags()

	if flags.Changed("name") {
		base.Name, _ = flags.GetString("name")
	}
	if flags.Changed("company") {
		base.CompanyID, _ = flags.GetInt64("company")
	}
	for flag, dst := range map[string]**string{
		"processor":    &base.ProcessorName,
		"weight":       &base.MobileWeight,
		"ram":          &base.RAM,
		"front-camera": &base.FrontCamera,
		"back-camera":  &base.BackCamera,
		"battery":      &base.BatteryCapacity,
		"screen":       &base.ScreenSize,
	} {
		if !flags.Changed(flag) {
			continue
		}
		v, _ := flags.GetString(flag)
		if v == "" {
			*dst = nil
		} else {
			*dst = &v
		}
	}
	if flags.Changed("year") {
		y, _ := flags.GetInt64("year")
		if y == 0 {
			base.LaunchedYear = nil
		} else {
			base.LaunchedYear = &y
		}
	}
	return base, nil
}

func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "model name")
	cmd.Flags().Int64("company", 0, "owning company id")
	cmd.Flags().String("processor", "", "processor name (created on first use)")
	cmd.Flags().String("weight", "", "device weight")
	cmd.Flags().String("ram", "", "RAM description")
	cmd.Flags().String("front-camera", "", "front camera description")
	cmd.Flags().String("back-camera", "", "back camera description")
	cmd.Flags().String("battery", "", "battery capacity")
	cmd.Flags().String("screen", "", "screen size")
	cmd.Flags().Int64("year", 0, "launch year (0 clears)")
}

// formatModels writes a tabular model listing to out.
func formatModels(out io.Writer, models []model.DeviceListItem) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tMODEL\tRAM\tBATTERY\tSCREEN\tYEAR\tPRICED_REGIONS")
	_, _ = fmt.Fprintln(w, "--\t-------\t-----\t---\t-------\t------\t----\t--------------")
	for _, m := range models {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			m.ID, m.CompanyName, m.Name,
			strOr(m.RAM), strOr(m.BatteryCapacity), strOr(m.ScreenSize),
			yearOr(m.LaunchedYear), m.PriceRegions)
	}
	_ = w.Flush()
}

// formatSearchResults writes a tabular search listing to out.
func formatSearchResults(out io.Writer, results []model.SearchResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tMODEL\tRAM\tBATTERY\tYEAR")
	_, _ = fmt.Fprintln(w, "--\t-------\t-----\t---\t-------\t----")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CompanyName, r.Name, strOr(r.RAM), strOr(r.BatteryCapacity), yearOr(r.LaunchedYear))
	}
	_ = w.Flush()
}

func strOr(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func yearOr(y *int64) string {
	if y == nil {
		return "-"
	}
	return strconv.FormatInt(*y, 10)
}

func init() {
	addDeviceFlags(modelsAddCmd)
	addDeviceFlags(modelsUpdateCmd)
	modelsListCmd.Flags().Int64Var(&modelsCompanyID, "company", 0, "filter to one company id")
	modelsCmd.AddCommand(modelsListCmd, modelsShowCmd, modelsSearchCmd, modelsAddCmd, modelsUpdateCmd, modelsDeleteCmd)
	rootCmd.AddCommand(modelsCmd)
}
