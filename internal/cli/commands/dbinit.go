package commands

import (
	"context"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trxr/internal/config"
	"trxr/internal/database"
)

// DBInitCommand handles the db-init command
type DBInitCommand struct {
	config *config.Config
	log    *logrus.Logger
}

// NewDBInitCommand creates a new DBInitCommand
func NewDBInitCommand(cfg *config.Config, log *logrus.Logger) *DBInitCommand {
	return &DBInitCommand{
		config: cfg,
		log:    log,
	}
}

// Execute runs the command
func (dc *DBInitCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := database.NewManager(dc.log, dc.config.Database).EnsureSchema(ctx); err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Database %s is ready\n", dc.config.Database.Name)
	return nil
}
