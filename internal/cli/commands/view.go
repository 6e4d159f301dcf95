package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trxr/internal/config"
	"trxr/internal/storage"
	"trxr/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	config *config.Config
	log    *logrus.Logger
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(cfg *config.Config, log *logrus.Logger) *ViewCommand {
	return &ViewCommand{
		config: cfg,
		log:    log,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	store := storage.NewJSONStorage(vc.config)
	summary, err := store.Load()
	if err != nil {
		return err
	}

	return ui.NewFailureViewer(vc.log, store).View(summary)
}
