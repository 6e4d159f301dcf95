package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trxr/internal/aggregator"
	"trxr/internal/artifact"
	"trxr/internal/config"
	"trxr/internal/domain"
	"trxr/internal/storage"
)

type recordingPublisher struct {
	calls   int
	summary *domain.RunSummary
	entries []domain.ReportEntry
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, s *domain.RunSummary, entries []domain.ReportEntry) error {
	p.calls++
	p.summary = s
	p.entries = entries
	return p.err
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestEmitter(t *testing.T, cfg *config.Config, logger logrus.FieldLogger) *Emitter {
	t.Helper()
	correlator := artifact.NewCorrelator(logger, cfg.Reporter).WithWarningOutput(&bytes.Buffer{})
	return NewEmitter(logger, cfg, correlator, storage.NewJSONStorage(cfg)).
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }).
		WithIDs(sequence()).
		WithIdentity(func() (string, string) { return "ci", "build-01" })
}

func TestEmitter_EndToEnd(t *testing.T) {
	work := t.TempDir()
	shot := filepath.Join(work, "screenshots", "login.spec.js", "Login fails (failed).png")
	require.NoError(t, os.MkdirAll(filepath.Dir(shot), 0755))
	require.NoError(t, os.WriteFile(shot, []byte("png"), 0644))

	cfg := config.New()
	cfg.WorkDir = work

	logger, _ := logtest.NewNullLogger()
	publisher := &recordingPublisher{}
	emitter := newTestEmitter(t, cfg, logger).WithPublisher("recorder", publisher)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	agg := aggregator.New(logger, emitter).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	ctx := context.Background()
	events := []domain.Event{
		{Kind: domain.EventScopeBegin, Scope: &domain.ScopeInfo{ID: "s", Title: "Login"}},
		{Kind: domain.EventTestBegin, Test: &domain.TestInfo{ID: "a", Scope: "s", Title: "works", File: "login.spec.js"}},
		{Kind: domain.EventTestEnd, Test: &domain.TestInfo{ID: "a", Scope: "s", Title: "works", State: domain.StatePassed}},
		{Kind: domain.EventTestBegin, Test: &domain.TestInfo{ID: "b", Scope: "s", Title: "fails", File: "login.spec.js"}},
		{Kind: domain.EventFailure, Subject: domain.SubjectTest, Test: &domain.TestInfo{ID: "b", Title: "fails"}, Error: &domain.TestError{Message: "expected true", Stack: "at login.spec.js:3"}},
		{Kind: domain.EventTestEnd, Test: &domain.TestInfo{ID: "b", Scope: "s", Title: "fails", State: domain.StateFailed}},
		{Kind: domain.EventScopeEnd, Scope: &domain.ScopeInfo{ID: "s"}},
		{Kind: domain.EventRunEnd},
	}
	for _, ev := range events {
		require.NoError(t, agg.Handle(ctx, ev))
	}

	summary := emitter.Summary()
	require.NotNil(t, summary)
	assert.Equal(t, "id-1", summary.Run.ID)
	assert.Equal(t, "id-2", summary.Run.ExecutionID)
	assert.Equal(t, "ci", summary.Run.User)
	assert.Equal(t, filepath.Join(work, "test-results", "id-2.trx"), summary.ReportPath)
	assert.Equal(t, 2, summary.Counters.Total)
	assert.Equal(t, 1, summary.Counters.Failed)
	assert.Equal(t, base.Add(time.Second), summary.Run.Start)
	assert.Equal(t, "screenshots", summary.Run.DeploymentRoot)

	report, err := os.ReadFile(summary.ReportPath)
	require.NoError(t, err)
	xml := string(report)
	assert.Contains(t, xml, `testName="Login fails"`)
	assert.Contains(t, xml, `outcome="Failed"`)
	assert.Contains(t, xml, `<ResultFile path="Login fails (failed).png"`)
	assert.Contains(t, xml, `codeBase="login.spec.js"`)
	assert.Contains(t, xml, "expected true")

	copied := filepath.Join(work, "test-results", "screenshots", "In", "id-2", "Login fails (failed).png")
	_, err = os.Stat(copied)
	assert.NoError(t, err)

	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "Login fails (failed).png", summary.Failures[0].Artifact)

	saved, err := storage.NewJSONStorage(cfg).Load()
	require.NoError(t, err)
	assert.Equal(t, "id-2", saved.Run.ExecutionID)

	assert.Equal(t, 1, publisher.calls)
	assert.Len(t, publisher.entries, 2)
}

func TestEmitter_ExcludedPendingProducesEmptyReport(t *testing.T) {
	cfg := config.New()
	cfg.WorkDir = t.TempDir()
	cfg.Reporter.ExcludePending = true
	cfg.Reporter.WarnExcludedPending = true

	logger, _ := logtest.NewNullLogger()
	var warn bytes.Buffer
	correlator := artifact.NewCorrelator(logger, cfg.Reporter).WithWarningOutput(&warn)
	emitter := NewEmitter(logger, cfg, correlator, nil).WithIDs(sequence())

	results := &domain.RunResults{Records: []*domain.TestRecord{
		{ID: "p1", Title: "later", Pending: true},
		{ID: "p2", Title: "someday", Pending: true},
	}}
	require.NoError(t, emitter.Emit(context.Background(), results))

	summary := emitter.Summary()
	assert.Equal(t, 2, summary.Excluded)
	assert.Zero(t, summary.Counters.Total)
	assert.Contains(t, warn.String(), "Excluded 2 tests because they are marked as Pending.")

	report, err := os.ReadFile(summary.ReportPath)
	require.NoError(t, err)
	assert.NotContains(t, string(report), "<UnitTestResult")

	// Artifact dir exists even when nothing was copied
	info, err := os.Stat(summary.ArtifactDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEmitter_WriteFailureIsLogged(t *testing.T) {
	work := t.TempDir()
	// A file where the output directory should be
	require.NoError(t, os.WriteFile(filepath.Join(work, "test-results"), []byte("x"), 0644))

	cfg := config.New()
	cfg.WorkDir = work

	logger, hook := logtest.NewNullLogger()
	publisher := &recordingPublisher{}
	emitter := newTestEmitter(t, cfg, logger).WithPublisher("recorder", publisher)

	err := emitter.Emit(context.Background(), &domain.RunResults{Records: []*domain.TestRecord{
		{ID: "a", Title: "works", State: domain.StatePassed},
	}})
	require.NoError(t, err)

	assert.Zero(t, publisher.calls)
	var errorsLogged int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			errorsLogged++
		}
	}
	assert.Equal(t, 2, errorsLogged, "artifact dir and report write failures")
}

func TestEmitter_DiscoveryFailureStillWritesReport(t *testing.T) {
	work := t.TempDir()
	shot := filepath.Join(work, "screenshots", "Login fails (failed).png")
	require.NoError(t, os.MkdirAll(filepath.Dir(shot), 0755))
	require.NoError(t, os.WriteFile(shot, []byte("png"), 0644))

	cfg := config.New()
	cfg.WorkDir = work
	cfg.Reporter.InputScreenshotPath = "screenshots[/"

	logger, hook := logtest.NewNullLogger()
	emitter := newTestEmitter(t, cfg, logger)

	err := emitter.Emit(context.Background(), &domain.RunResults{Records: []*domain.TestRecord{
		{ID: "a", Title: "Login fails", State: domain.StateFailed, Err: &domain.TestError{Message: "expected true"}},
		{ID: "b", Title: "Login works", State: domain.StatePassed},
	}})
	require.NoError(t, err)

	var discoveryErrors int
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "Screenshot discovery failed" {
			discoveryErrors++
		}
	}
	assert.Equal(t, 1, discoveryErrors)

	summary := emitter.Summary()
	require.NotNil(t, summary)
	require.Len(t, summary.Failures, 1)
	assert.Empty(t, summary.Failures[0].Artifact)

	report, err := os.ReadFile(summary.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), `outcome="Failed"`)
	assert.NotContains(t, string(report), "<ResultFile")

	entries, err := os.ReadDir(summary.ArtifactDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmitter_PublisherErrorIsLogged(t *testing.T) {
	cfg := config.New()
	cfg.WorkDir = t.TempDir()

	logger, hook := logtest.NewNullLogger()
	failing := &recordingPublisher{err: errors.New("bucket missing")}
	second := &recordingPublisher{}
	emitter := newTestEmitter(t, cfg, logger).
		WithPublisher("s3", failing).
		WithPublisher("mysql", second)

	require.NoError(t, emitter.Emit(context.Background(), &domain.RunResults{}))

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, second.calls)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "s3", entry.Data["publisher"])
}

func TestEmitter_RunTimesFallBackToStats(t *testing.T) {
	cfg := config.New()
	cfg.WorkDir = t.TempDir()

	logger, _ := logtest.NewNullLogger()
	emitter := newTestEmitter(t, cfg, logger)

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	results := &domain.RunResults{
		Records: []*domain.TestRecord{{ID: "p", Title: "later", Pending: true}},
		Stats:   &domain.RunStats{Start: start},
	}
	require.NoError(t, emitter.Emit(context.Background(), results))

	run := emitter.Summary().Run
	assert.Equal(t, start, run.Start)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), run.Finish)
}

func TestRunName(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 4, 5, 0, time.Local)
	assert.Equal(t, "ci@build-01 2024-03-01 10:04:05", RunName("ci", "build-01", at))
}
