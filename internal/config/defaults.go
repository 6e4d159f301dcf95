package config

const (
	// DefaultWorkDir is the base directory relative paths are resolved against
	DefaultWorkDir = "."
	// DefaultOutputPath is where the report and relocated artifacts are written
	DefaultOutputPath = "test-results"
	// DefaultInputScreenshotPath is searched recursively for failure screenshots
	DefaultInputScreenshotPath = "screenshots/"
	// DefaultOutputScreenshotFolder is the artifact folder name under the output path
	DefaultOutputScreenshotFolder = "screenshots"
	// DefaultSummaryFile is the last-run summary file name under the output path
	DefaultSummaryFile = "last-run.json"
	// DefaultEventsPath reads the event stream from stdin
	DefaultEventsPath = "-"
	// DefaultEnvFile is loaded from the work dir when present
	DefaultEnvFile = ".env"
	// DefaultLogLevel is the logrus level used when none is configured
	DefaultLogLevel = "info"

	// ScreenshotPattern is appended verbatim to the screenshot search path
	ScreenshotPattern = "**/*.png"
	// ReportExtension is the file extension of the written report
	ReportExtension = ".trx"
	// ArtifactInboxDir is the fixed folder between the screenshot folder and the execution id
	ArtifactInboxDir = "In"
)

// Database defaults, matching a local MySQL install
const (
	DefaultDBHost = "127.0.0.1"
	DefaultDBPort = "3306"
	DefaultDBUser = "root"
	DefaultDBName = "trx_results"
)

// DefaultS3Region is used when an S3 bucket is configured without a region
const DefaultS3Region = "us-east-1"
