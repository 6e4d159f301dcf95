package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trxr/internal/config"
	"trxr/internal/storage"
	"trxr/internal/ui"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	config *config.Config
	log    *logrus.Logger
}

// NewSummaryCommand creates a new SummaryCommand
func NewSummaryCommand(cfg *config.Config, log *logrus.Logger) *SummaryCommand {
	return &SummaryCommand{
		config: cfg,
		log:    log,
	}
}

// Execute runs the command
func (sc *SummaryCommand) Execute(cmd *cobra.Command, args []string) error {
	summary, err := storage.NewJSONStorage(sc.config).Load()
	if err != nil {
		return err
	}

	ui.NewFormatter(cmd.OutOrStdout()).PrintSummary(summary, sc.config.Flags.NameFilter)
	return nil
}
