package trx

import (
	"path/filepath"

	"github.com/google/uuid"

	"trxr/internal/config"
	"trxr/internal/domain"
)

// Placeholder fills report fields the runner has no notion of
const Placeholder = "none"

// Projector turns frozen records into report entries for one run
type Projector struct {
	computerName string
	baseDir      string
	opts         config.ReporterOptions
	executionID  string
}

// NewProjector creates a new Projector
func NewProjector(computerName, baseDir string, opts config.ReporterOptions, executionID string) *Projector {
	return &Projector{
		computerName: computerName,
		baseDir:      baseDir,
		opts:         opts,
		executionID:  executionID,
	}
}

// Project builds the report entry for r. It never fails: missing data
// becomes an empty string or the "none" placeholder.
func (p *Projector) Project(r *domain.TestRecord) domain.ReportEntry {
	entry := domain.ReportEntry{
		TestID:                   TestID(r.ID),
		TestName:                 r.FullTitle(),
		CodeBase:                 p.codeBase(r.File),
		MethodName:               Placeholder,
		ClassName:                Placeholder,
		ComputerName:             p.computerName,
		Outcome:                  MapOutcome(r, p.opts),
		Duration:                 FormatDuration(r.Elapsed()),
		StartTime:                FormatTimestamp(r.Start),
		EndTime:                  FormatTimestamp(r.End),
		ExecutionID:              p.executionID,
		RelativeResultsDirectory: p.executionID,
		ResultFiles:              []string{},
	}
	if r.Err != nil {
		entry.ErrorMessage = r.Err.Message
		entry.ErrorStack = r.Err.Stack
	}
	if r.Artifact != "" {
		entry.ResultFiles = append(entry.ResultFiles, filepath.Base(r.Artifact))
	}
	return entry
}

func (p *Projector) codeBase(file string) string {
	if file == "" {
		return Placeholder
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(p.baseDir, file)
	}
	rel, err := filepath.Rel(p.baseDir, file)
	if err != nil {
		return Placeholder
	}
	return filepath.ToSlash(rel)
}

var testNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:trxr:test"))

// TestID derives a stable UUID for a record identity
func TestID(recordID string) string {
	return uuid.NewSHA1(testNamespace, []byte(recordID)).String()
}
