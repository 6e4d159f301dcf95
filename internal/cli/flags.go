package cli

import "trxr/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile                string
	EnvFile                   string
	WorkDir                   string
	LogLevel                  string
	Events                    string
	OutputPath                string
	InputScreenshotPath       string
	OutputScreenshotFolder    string
	TreatPendingAsNotExecuted bool
	ExcludePending            bool
	WarnExcludedPending       bool
	Progress                  bool
	Upload                    bool
	PublishDB                 bool
	OpenViewer                bool
	NameFilter                string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:                f.ConfigFile,
		EnvFile:                   f.EnvFile,
		Events:                    f.Events,
		WorkDir:                   f.WorkDir,
		OutputPath:                f.OutputPath,
		InputScreenshotPath:       f.InputScreenshotPath,
		OutputScreenshotFolder:    f.OutputScreenshotFolder,
		TreatPendingAsNotExecuted: f.TreatPendingAsNotExecuted,
		ExcludePending:            f.ExcludePending,
		WarnExcludedPending:       f.WarnExcludedPending,
		LogLevel:                  f.LogLevel,
		Progress:                  f.Progress,
		Upload:                    f.Upload,
		PublishDB:                 f.PublishDB,
		OpenViewer:                f.OpenViewer,
		NameFilter:                f.NameFilter,
	}
}
