package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matprat/matprat/backend/internal/recipeform"
	"github.com/matprat/matprat/backend/internal/service"
	"github.com/matprat/matprat/backend/internal/types"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var keepGoing bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import recipes from a JSON file",
		Long: `Import reads a JSON array of recipes in the same shape the admin save
endpoint accepts and stores each one. Existing recipes with the same name
are replaced when the entry sets "mode": "edit".

Example:
  matpratctl import recipes.json
  matpratctl import --keep-going recipes.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var requests []types.RecipeRequest
			if err := json.Unmarshal(data, &requests); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			return opts.withRuntime(cmd, func(rt *Runtime) error {
				recipes := service.NewRecipeService(rt.DB, rt.Log)
				imported := 0
				for i := range requests {
					in := recipeform.FromRequest(&requests[i])
					err := recipeform.Validate(in)
					if err == nil {
						_, err = recipes.SaveRecipe(cmd.Context(), in)
					}
					if err != nil {
						if !keepGoing {
							return fmt.Errorf("recipe %d (%q): %w", i+1, in.Name, err)
						}
						rt.Log.WithFields(logrus.Fields{"recipe": in.Name, "error": err.Error()}).Warn("Skipping recipe")
						continue
					}
					imported++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d recipes\n", imported, len(requests))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip recipes that fail instead of stopping")
	return cmd
}
