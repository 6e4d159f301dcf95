package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"trxr/internal/cli"
	"trxr/internal/cli/commands"
	"trxr/internal/config"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "trxr",
		Short: "Test-run report materializer",
		Long: `trxr turns a test runner's lifecycle event stream into a TRX report,
reconciling tests skipped by failed hooks and attaching failure screenshots.`,
		SilenceUsage: true,
		Version:      version,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "trxr %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		},
	})

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create and register commands
	cmds := commands.NewCommands(cfg, log)
	cmds.Register(rootCmd, &flags, cfg, log)

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
