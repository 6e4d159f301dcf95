package trx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trxr/internal/config"
	"trxr/internal/domain"
)

func TestProjector_Project(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	scope := &domain.Scope{Title: "Login"}
	record := &domain.TestRecord{
		ID:         "t1",
		Title:      "fails",
		File:       "/work/test/login.spec.js",
		Start:      start,
		End:        start.Add(1500 * time.Millisecond),
		DurationMS: 1500,
		State:      domain.StateFailed,
		Err:        &domain.TestError{Message: "expected true", Stack: "Error: expected true\n    at x"},
		Artifact:   "Login fails (failed).png",
	}
	scope.AddTest(record)

	p := NewProjector("build-01", "/work", config.ReporterOptions{}, "exec-1")
	entry := p.Project(record)

	assert.Equal(t, "Login fails", entry.TestName)
	assert.Equal(t, TestID("t1"), entry.TestID)
	assert.Equal(t, "test/login.spec.js", entry.CodeBase)
	assert.Equal(t, Placeholder, entry.MethodName)
	assert.Equal(t, Placeholder, entry.ClassName)
	assert.Equal(t, "build-01", entry.ComputerName)
	assert.Equal(t, domain.OutcomeFailed, entry.Outcome)
	assert.Equal(t, "00:00:01.500", entry.Duration)
	assert.Equal(t, "2024-01-02T03:04:05.000Z", entry.StartTime)
	assert.Equal(t, "2024-01-02T03:04:06.500Z", entry.EndTime)
	assert.Equal(t, "expected true", entry.ErrorMessage)
	assert.Equal(t, "exec-1", entry.ExecutionID)
	assert.Equal(t, "exec-1", entry.RelativeResultsDirectory)
	assert.Equal(t, []string{"Login fails (failed).png"}, entry.ResultFiles)
}

func TestProjector_Placeholders(t *testing.T) {
	p := NewProjector("host", "/work", config.ReporterOptions{}, "exec-1")
	entry := p.Project(&domain.TestRecord{ID: "t2", Title: "bare"})

	assert.Equal(t, Placeholder, entry.CodeBase)
	assert.Equal(t, "", entry.StartTime)
	assert.Equal(t, "", entry.EndTime)
	assert.Equal(t, "00:00:00.000", entry.Duration)
	assert.Equal(t, "", entry.ErrorMessage)
	assert.Equal(t, "", entry.ErrorStack)
	assert.Empty(t, entry.ResultFiles)
	assert.Equal(t, domain.OutcomeInconclusive, entry.Outcome)
}

func TestProjector_RelativeFile(t *testing.T) {
	p := NewProjector("host", "/work", config.ReporterOptions{}, "exec-1")
	entry := p.Project(&domain.TestRecord{ID: "t3", Title: "rel", File: "spec/a.spec.js"})

	assert.Equal(t, "spec/a.spec.js", entry.CodeBase)
}

func TestTestID_Stable(t *testing.T) {
	assert.Equal(t, TestID("abc"), TestID("abc"))
	assert.NotEqual(t, TestID("abc"), TestID("abd"))
}
