package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trxr/internal/cli"
	"trxr/internal/config"
)

// Commands holds all CLI commands
type Commands struct {
	Convert *ConvertCommand
	Summary *SummaryCommand
	View    *ViewCommand
	DBInit  *DBInitCommand
}

// NewCommands creates all commands. cfg is filled in by the pre-run hook
// once flags have been parsed, so dependencies are built inside Execute.
func NewCommands(cfg *config.Config, log *logrus.Logger) *Commands {
	return &Commands{
		Convert: NewConvertCommand(cfg, log),
		Summary: NewSummaryCommand(cfg, log),
		View:    NewViewCommand(cfg, log),
		DBInit:  NewDBInitCommand(cfg, log),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config, log *logrus.Logger) {
	loadConfig := func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return err
		}
		*cfg = *loaded

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		log.SetLevel(level)
		return nil
	}

	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "YAML config file path")
	rootCmd.PersistentFlags().StringVar(&flags.EnvFile, "env-file", "", "dotenv file path (default <work-dir>/.env)")
	rootCmd.PersistentFlags().StringVarP(&flags.WorkDir, "work-dir", "w", "", "Base directory for relative paths")
	rootCmd.PersistentFlags().StringVarP(&flags.OutputPath, "output", "o", "", "Directory the report is written to")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	// Convert command
	convertCmd := &cobra.Command{
		Use:     "convert",
		Short:   "Convert a lifecycle event stream into a TRX report",
		Long:    "Read NDJSON lifecycle events from a file or stdin, correlate failure screenshots and write a TRX report",
		RunE:    c.Convert.Execute,
		PreRunE: loadConfig,
	}
	convertCmd.Flags().StringVarP(&flags.Events, "events", "e", config.DefaultEventsPath, "Event stream file, - for stdin")
	convertCmd.Flags().StringVar(&flags.InputScreenshotPath, "screenshots", "", "Folder searched for failure screenshots")
	convertCmd.Flags().StringVar(&flags.OutputScreenshotFolder, "screenshot-folder", "", "Folder name for relocated screenshots below the output directory")
	convertCmd.Flags().BoolVar(&flags.TreatPendingAsNotExecuted, "pending-as-not-executed", false, "Report pending tests as NotExecuted instead of Pending")
	convertCmd.Flags().BoolVar(&flags.ExcludePending, "exclude-pending", false, "Leave pending tests out of the report")
	convertCmd.Flags().BoolVar(&flags.WarnExcludedPending, "warn-excluded-pending", false, "Print a warning when pending tests were excluded")
	convertCmd.Flags().BoolVar(&flags.Progress, "progress", false, "Show a progress bar while correlating screenshots")
	convertCmd.Flags().BoolVar(&flags.Upload, "upload", false, "Upload the report and screenshots to the configured S3 bucket")
	convertCmd.Flags().BoolVar(&flags.PublishDB, "publish-db", false, "Store the run in the configured MySQL database")
	convertCmd.Flags().BoolVar(&flags.OpenViewer, "open-viewer", false, "Open the failure viewer when the run has failures")
	rootCmd.AddCommand(convertCmd)

	// Summary command
	summaryCmd := &cobra.Command{
		Use:     "summary",
		Short:   "Print statistics of the last emitted run",
		Long:    "Print the counters of the last emitted run and the failed tests grouped by file",
		RunE:    c.Summary.Execute,
		PreRunE: loadConfig,
	}
	summaryCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter failed tests by name pattern (supports wildcards, e.g. 'Login*' or '*cart*')")
	rootCmd.AddCommand(summaryCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:     "view",
		Short:   "View failures of the last run interactively",
		Long:    "Browse the failed tests of the last emitted run and mark them resolved",
		RunE:    c.View.Execute,
		PreRunE: loadConfig,
	}
	rootCmd.AddCommand(viewCmd)

	// DB init command
	dbInitCmd := &cobra.Command{
		Use:     "db-init",
		Short:   "Create the results database and tables",
		Long:    "Create the MySQL database and tables used by --publish-db, using DB_* connection settings",
		RunE:    c.DBInit.Execute,
		PreRunE: loadConfig,
	}
	rootCmd.AddCommand(dbInitCmd)
}
