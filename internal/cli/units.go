package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matprat/matprat/backend/internal/database"
	"github.com/matprat/matprat/backend/internal/models"
)

func newUnitsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Manage the measurement unit list",
	}

	add := &cobra.Command{
		Use:   "add [unit...]",
		Short: "Add measurement units offered by the recipe form",
		Long: `Add appends labels to the measurement_units type. Labels that already
exist are skipped. Without arguments the common imperial and metric
abbreviations are added.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := args
			if len(labels) == 0 {
				labels = models.ExtraMeasurementUnits
			}
			return opts.withRuntime(cmd, func(rt *Runtime) error {
				added, err := database.AddEnumValues(cmd.Context(), rt.DB, "measurement_units", labels)
				if errors.Is(err, database.ErrNoEnumTypes) {
					fmt.Fprintln(cmd.OutOrStdout(), "This database has no enum types; units are free text")
					return nil
				}
				if err != nil {
					return err
				}
				if len(added) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "All units already present")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added units: %s\n", strings.Join(added, ", "))
				return nil
			})
		},
	}

	cmd.AddCommand(add)
	return cmd
}
