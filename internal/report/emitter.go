// Package report turns the frozen results of a run into a TRX file on disk
// and hands it to the configured publishers.
package report

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trxr/internal/aggregator"
	"trxr/internal/artifact"
	"trxr/internal/config"
	"trxr/internal/discovery"
	"trxr/internal/domain"
	"trxr/internal/storage"
	"trxr/internal/trx"
)

// Publisher ships an emitted run somewhere else
type Publisher interface {
	Publish(ctx context.Context, summary *domain.RunSummary, entries []domain.ReportEntry) error
}

// Emitter writes the report once the aggregator hands over the results
type Emitter struct {
	log        logrus.FieldLogger
	cfg        *config.Config
	scanner    *discovery.Scanner
	correlator *artifact.Correlator
	store      storage.Storage
	publishers map[string]Publisher
	order      []string

	now      func() time.Time
	newID    func() string
	identity func() (string, string)

	last *domain.RunSummary
}

var _ aggregator.Emitter = (*Emitter)(nil)

// NewEmitter creates a new Emitter. store may be nil to skip the summary file.
func NewEmitter(log logrus.FieldLogger, cfg *config.Config, correlator *artifact.Correlator, store storage.Storage) *Emitter {
	return &Emitter{
		log:        log.WithField("component", "report"),
		cfg:        cfg,
		scanner:    discovery.NewScanner(log),
		correlator: correlator,
		store:      store,
		publishers: make(map[string]Publisher),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
		identity:   hostIdentity,
	}
}

// WithPublisher adds a publisher run after the report has been written
func (e *Emitter) WithPublisher(name string, p Publisher) *Emitter {
	if _, ok := e.publishers[name]; !ok {
		e.order = append(e.order, name)
	}
	e.publishers[name] = p
	return e
}

// WithClock replaces the clock used for run times and the run name
func (e *Emitter) WithClock(now func() time.Time) *Emitter {
	e.now = now
	return e
}

// WithIDs replaces the generator for the run and execution ids
func (e *Emitter) WithIDs(newID func() string) *Emitter {
	e.newID = newID
	return e
}

// WithIdentity replaces the user and host lookup
func (e *Emitter) WithIdentity(identity func() (userName, host string)) *Emitter {
	e.identity = identity
	return e
}

// Summary returns the summary of the last emitted run, or nil
func (e *Emitter) Summary() *domain.RunSummary {
	return e.last
}

// Emit runs discovery, correlation and projection, then writes the report.
// I/O failures are logged and do not abort the run.
func (e *Emitter) Emit(ctx context.Context, results *domain.RunResults) error {
	now := e.now()
	userName, host := e.identity()

	meta := domain.RunMetadata{
		ID:             e.newID(),
		Name:           RunName(userName, host, now),
		User:           userName,
		ExecutionID:    e.newID(),
		DeploymentRoot: e.cfg.Reporter.OutputScreenshotFolder,
		Creation:       now,
		Queuing:        now,
		Start:          results.Start,
		Finish:         results.End,
	}
	if stats := results.Stats; stats != nil {
		if meta.Start.IsZero() {
			meta.Start = stats.Start
		}
		if meta.Finish.IsZero() {
			meta.Finish = stats.End
		}
	}
	if meta.Start.IsZero() {
		meta.Start = now
	}
	if meta.Finish.IsZero() {
		meta.Finish = now
	}

	artifactDir := e.cfg.GetArtifactDir(meta.ExecutionID)
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		e.log.WithError(err).WithField("dir", artifactDir).Error("Failed to create artifact directory")
	}

	pattern := e.cfg.GetScreenshotPattern()
	files, err := e.scanner.Scan(pattern)
	if err != nil {
		e.log.WithError(err).Error("Screenshot discovery failed")
		files = nil
	}

	correlated := e.correlator.Correlate(results.Records, files, artifactDir)

	projector := trx.NewProjector(host, e.cfg.GetWorkDir(), e.cfg.Reporter, meta.ExecutionID)
	entries := make([]domain.ReportEntry, 0, len(correlated.Kept))
	for _, r := range correlated.Kept {
		entries = append(entries, projector.Project(r))
	}

	doc := trx.NewDocument(meta, entries)
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	summary := &domain.RunSummary{
		Run:         meta,
		Counters:    trx.Count(entries),
		Excluded:    correlated.Excluded,
		ReportPath:  e.cfg.GetReportPath(meta.ExecutionID),
		ArtifactDir: artifactDir,
		Failures:    failures(entries),
	}
	e.last = summary

	if err := writeReport(summary.ReportPath, data); err != nil {
		e.log.WithError(err).WithField("path", summary.ReportPath).Error("Failed to write report")
		return nil
	}

	e.log.WithFields(logrus.Fields{
		"path":    summary.ReportPath,
		"results": len(entries),
		"failed":  summary.Counters.Failed,
	}).Info("Report written")

	if e.store != nil {
		if err := e.store.Save(summary); err != nil {
			e.log.WithError(err).Warn("Failed to save run summary")
		}
	}

	for _, name := range e.order {
		if err := e.publishers[name].Publish(ctx, summary, entries); err != nil {
			e.log.WithError(err).WithField("publisher", name).Error("Publish failed")
		}
	}

	return nil
}

// RunName formats the human-readable run name in local time
func RunName(userName, host string, t time.Time) string {
	return fmt.Sprintf("%s@%s %s", userName, host, t.Local().Format("2006-01-02 15:04:05"))
}

func writeReport(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func failures(entries []domain.ReportEntry) []domain.FailedEntry {
	var out []domain.FailedEntry
	for _, e := range entries {
		if e.Outcome != domain.OutcomeFailed && e.Outcome != domain.OutcomeTimeout {
			continue
		}
		f := domain.FailedEntry{
			TestName: e.TestName,
			CodeBase: e.CodeBase,
			Outcome:  e.Outcome,
			Message:  e.ErrorMessage,
			Stack:    e.ErrorStack,
		}
		if len(e.ResultFiles) > 0 {
			f.Artifact = e.ResultFiles[0]
		}
		out = append(out, f)
	}
	return out
}

func hostIdentity() (string, string) {
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	if name == "" {
		name = "unknown"
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return name, host
}
