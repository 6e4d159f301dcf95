package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trxr/internal/aggregator"
	"trxr/internal/artifact"
	"trxr/internal/config"
	"trxr/internal/database"
	"trxr/internal/domain"
	"trxr/internal/parser"
	"trxr/internal/report"
	"trxr/internal/storage"
	"trxr/internal/ui"
	"trxr/internal/upload"
)

// ConvertCommand handles the convert command
type ConvertCommand struct {
	config *config.Config
	log    *logrus.Logger
}

// NewConvertCommand creates a new ConvertCommand
func NewConvertCommand(cfg *config.Config, log *logrus.Logger) *ConvertCommand {
	return &ConvertCommand{
		config: cfg,
		log:    log,
	}
}

// Execute runs the command
func (cc *ConvertCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in, err := cc.openEvents(cmd)
	if err != nil {
		return err
	}
	defer in.Close()

	store := storage.NewJSONStorage(cc.config)
	emitter, err := cc.newEmitter(ctx, store)
	if err != nil {
		return err
	}
	agg := aggregator.New(cc.log, emitter)

	handle := func(ctx context.Context, ev domain.Event) error {
		err := agg.Handle(ctx, ev)
		if errors.Is(err, aggregator.ErrInvalidEvent) || errors.Is(err, aggregator.ErrRunEnded) {
			cc.log.WithError(err).Warn("Skipping event")
			return nil
		}
		return err
	}

	stats, err := parser.NewNDJSONParser(cc.log).Parse(ctx, in, handle)
	if err != nil {
		return fmt.Errorf("convert events: %w", err)
	}

	if !agg.Ended() {
		cc.log.WithField("events", stats.Events).Warn("Event stream ended without a run end, finishing the run")
		if _, err := agg.RunEnd(ctx, nil); err != nil {
			return err
		}
	}

	summary := emitter.Summary()
	if summary == nil {
		return nil
	}
	ui.NewFormatter(cmd.OutOrStdout()).PrintSummary(summary, "")

	if cc.config.Flags.OpenViewer && summary.HasFailures() {
		return ui.NewFailureViewer(cc.log, store).View(summary)
	}
	return nil
}

func (cc *ConvertCommand) openEvents(cmd *cobra.Command) (io.ReadCloser, error) {
	path := cc.config.Flags.Events
	if path == "" || path == config.DefaultEventsPath {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	return f, nil
}

func (cc *ConvertCommand) newEmitter(ctx context.Context, store storage.Storage) (*report.Emitter, error) {
	correlator := artifact.NewCorrelator(cc.log, cc.config.Reporter)
	if cc.config.Progress {
		correlator.WithProgress(func(total int) artifact.Progress {
			return ui.NewProgressBar(total)
		})
	}

	emitter := report.NewEmitter(cc.log, cc.config, correlator, store)

	if cc.config.Flags.Upload {
		uploader := upload.NewS3Uploader(cc.log, cc.config.S3)
		if err := uploader.Preflight(ctx); err != nil {
			return nil, fmt.Errorf("s3 preflight: %w", err)
		}
		emitter.WithPublisher("s3", uploader)
	}

	if cc.config.Database.Enabled {
		manager := database.NewManager(cc.log, cc.config.Database)
		emitter.WithPublisher("mysql", database.NewPublisher(manager))
	}

	return emitter, nil
}
