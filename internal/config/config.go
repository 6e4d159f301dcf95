package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Base directory for relative paths
	WorkDir string `yaml:"workDir"`

	// Reporter options
	Reporter ReporterOptions `yaml:"reporter"`

	// Output settings
	SummaryFile string `yaml:"summaryFile"`
	LogLevel    string `yaml:"logLevel"`
	Progress    bool   `yaml:"progress"`

	// Publishers
	S3       S3Config       `yaml:"s3"`
	Database DatabaseConfig `yaml:"database"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// ReporterOptions are the options recognized by the report pipeline
type ReporterOptions struct {
	TreatPendingAsNotExecuted bool   `yaml:"treatPendingAsNotExecuted"`
	ExcludePending            bool   `yaml:"excludePending"`
	WarnExcludedPending       bool   `yaml:"warnExcludedPending"`
	InputScreenshotPath       string `yaml:"inputScreenshotPath"`
	OutputPath                string `yaml:"outputPath"`
	OutputScreenshotFolder    string `yaml:"outputScreenshotFolder"`
}

// S3Config configures the optional upload of the report and artifacts
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	EndpointURL     string `yaml:"endpointURL"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	ForcePathStyle  bool   `yaml:"forcePathStyle"`
}

// Enabled reports whether a bucket has been configured
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// DatabaseConfig configures the optional MySQL results store
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile                string
	EnvFile                   string
	Events                    string
	WorkDir                   string
	OutputPath                string
	InputScreenshotPath       string
	OutputScreenshotFolder    string
	TreatPendingAsNotExecuted bool
	ExcludePending            bool
	WarnExcludedPending       bool
	LogLevel                  string
	Progress                  bool
	Upload                    bool
	PublishDB                 bool
	OpenViewer                bool
	NameFilter                string
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		WorkDir: DefaultWorkDir,
		Reporter: ReporterOptions{
			InputScreenshotPath:    DefaultInputScreenshotPath,
			OutputPath:             DefaultOutputPath,
			OutputScreenshotFolder: DefaultOutputScreenshotFolder,
		},
		SummaryFile: DefaultSummaryFile,
		LogLevel:    DefaultLogLevel,
		Database: DatabaseConfig{
			Host: DefaultDBHost,
			Port: DefaultDBPort,
			User: DefaultDBUser,
			Name: DefaultDBName,
		},
		Flags: Flags{Events: DefaultEventsPath},
	}
}

// Load builds a config from defaults, the env file, the optional YAML file and flags
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags
	if flags.WorkDir != "" {
		cfg.WorkDir = flags.WorkDir
	}

	envFile := flags.EnvFile
	if envFile == "" {
		envFile = filepath.Join(cfg.WorkDir, DefaultEnvFile)
	}
	if err := cfg.LoadEnv(envFile); err != nil {
		return nil, err
	}

	if flags.ConfigFile != "" {
		if err := cfg.LoadFile(flags.ConfigFile); err != nil {
			return nil, err
		}
	}

	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv applies TRXR_* and DB_* values from a dotenv file. Variables already
// set in the process environment win over the file. A missing file is not an error.
func (c *Config) LoadEnv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", path, err)
		}
		values = map[string]string{}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}

	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		*dst = b
		return nil
	}

	setString("TRXR_WORK_DIR", &c.WorkDir)
	setString("TRXR_OUTPUT_PATH", &c.Reporter.OutputPath)
	setString("TRXR_INPUT_SCREENSHOT_PATH", &c.Reporter.InputScreenshotPath)
	setString("TRXR_OUTPUT_SCREENSHOT_FOLDER", &c.Reporter.OutputScreenshotFolder)
	setString("TRXR_LOG_LEVEL", &c.LogLevel)
	setString("TRXR_S3_BUCKET", &c.S3.Bucket)
	setString("TRXR_S3_PREFIX", &c.S3.Prefix)
	setString("TRXR_S3_REGION", &c.S3.Region)
	setString("TRXR_S3_ENDPOINT_URL", &c.S3.EndpointURL)
	setString("TRXR_S3_ACCESS_KEY_ID", &c.S3.AccessKeyID)
	setString("TRXR_S3_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey)
	setString("DB_HOST", &c.Database.Host)
	setString("DB_PORT", &c.Database.Port)
	setString("DB_USERNAME", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_DATABASE", &c.Database.Name)

	for key, dst := range map[string]*bool{
		"TRXR_TREAT_PENDING_AS_NOT_EXECUTED": &c.Reporter.TreatPendingAsNotExecuted,
		"TRXR_EXCLUDE_PENDING":               &c.Reporter.ExcludePending,
		"TRXR_WARN_EXCLUDED_PENDING":         &c.Reporter.WarnExcludedPending,
		"TRXR_PROGRESS":                      &c.Progress,
		"TRXR_S3_FORCE_PATH_STYLE":           &c.S3.ForcePathStyle,
		"TRXR_DB_ENABLED":                    &c.Database.Enabled,
	} {
		if err := setBool(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile overlays the YAML file at path onto the config
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// ApplyFlags overrides config values with flags that were set
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if c.Flags.Events == "" {
		c.Flags.Events = DefaultEventsPath
	}
	if flags.WorkDir != "" {
		c.WorkDir = flags.WorkDir
	}
	if flags.OutputPath != "" {
		c.Reporter.OutputPath = flags.OutputPath
	}
	if flags.InputScreenshotPath != "" {
		c.Reporter.InputScreenshotPath = flags.InputScreenshotPath
	}
	if flags.OutputScreenshotFolder != "" {
		c.Reporter.OutputScreenshotFolder = flags.OutputScreenshotFolder
	}
	if flags.TreatPendingAsNotExecuted {
		c.Reporter.TreatPendingAsNotExecuted = true
	}
	if flags.ExcludePending {
		c.Reporter.ExcludePending = true
	}
	if flags.WarnExcludedPending {
		c.Reporter.WarnExcludedPending = true
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Progress {
		c.Progress = true
	}
	if flags.PublishDB {
		c.Database.Enabled = true
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Reporter.OutputPath == "" {
		return fmt.Errorf("output path must not be empty")
	}
	folder := c.Reporter.OutputScreenshotFolder
	if folder == "" {
		return fmt.Errorf("output screenshot folder must not be empty")
	}
	if strings.ContainsAny(folder, `/\`) {
		return fmt.Errorf("output screenshot folder must be a name, got %q", folder)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Flags.Upload && !c.S3.Enabled() {
		return fmt.Errorf("upload requested but no S3 bucket is configured")
	}
	return nil
}

// GetWorkDir returns the absolute work directory
func (c *Config) GetWorkDir() string {
	if abs, err := filepath.Abs(c.WorkDir); err == nil {
		return abs
	}
	return c.WorkDir
}

// GetOutputDir returns the directory the report is written to
func (c *Config) GetOutputDir() string {
	return filepath.Join(c.GetWorkDir(), c.Reporter.OutputPath)
}

// GetReportPath returns the report file path for an execution
func (c *Config) GetReportPath(executionID string) string {
	return filepath.Join(c.GetOutputDir(), executionID+ReportExtension)
}

// GetArtifactDir returns the relocated artifact directory for an execution
func (c *Config) GetArtifactDir(executionID string) string {
	return filepath.Join(c.GetOutputDir(), c.Reporter.OutputScreenshotFolder, ArtifactInboxDir, executionID)
}

// GetSummaryPath returns the path of the last-run summary file
func (c *Config) GetSummaryPath() string {
	return filepath.Join(c.GetOutputDir(), c.SummaryFile)
}

// GetScreenshotPattern returns the glob used to discover screenshots. The
// pattern is appended to the input path without inserting a separator, so
// "shots/" searches inside shots while "shots" also matches sibling folders
// whose names start with "shots".
func (c *Config) GetScreenshotPattern() string {
	input := strings.ReplaceAll(c.Reporter.InputScreenshotPath, `\`, "/")
	joined := filepath.ToSlash(filepath.Join(c.GetWorkDir(), input))
	if strings.HasSuffix(input, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined + ScreenshotPattern
}
