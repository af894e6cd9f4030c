// Package cli implements matpratctl, the operator tool for schema
// migrations, admin accounts and bulk recipe import.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/matprat/matprat/backend/config"
	"github.com/matprat/matprat/backend/internal/database"
	"github.com/matprat/matprat/backend/internal/logging"
)

// Runtime is what a command needs to touch the catalog.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *logrus.Logger
}

// Opener connects to the database. The returned func releases it.
type Opener func(ctx context.Context, logLevel string) (*Runtime, func(), error)

// DefaultOpener loads the server configuration and opens its database.
func DefaultOpener(_ context.Context, logLevel string) (*Runtime, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logging.New(logging.Config{Level: logLevel})

	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return &Runtime{Config: cfg, DB: db, Log: log}, func() { _ = database.Close(db) }, nil
}

type rootOptions struct {
	open     Opener
	logLevel string
}

// withRuntime opens the database for the duration of fn.
func (o *rootOptions) withRuntime(cmd *cobra.Command, fn func(*Runtime) error) error {
	rt, release, err := o.open(cmd.Context(), o.logLevel)
	if err != nil {
		return err
	}
	defer release()
	return fn(rt)
}

func NewRootCommand(open Opener) *cobra.Command {
	opts := &rootOptions{open: open}

	cmd := &cobra.Command{
		Use:           "matpratctl",
		Short:         "Matprat operator tool",
		Long:          "Runs schema migrations, manages admin accounts and imports recipes into the Matprat catalog.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newMigrateCommand(opts),
		newAdminCommand(opts),
		newUnitsCommand(opts),
		newImportCommand(opts),
	)
	return cmd
}
