package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"trxr/internal/domain"
)

const insertRun = `INSERT INTO trx_runs
	(id, execution_id, name, run_user, started_at, finished_at, total, executed, passed, failed, timed_out, not_executed, pending, excluded, report_path)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertResult = `INSERT INTO trx_results
	(run_id, test_id, test_name, code_base, outcome, duration, started_at, ended_at, error_message, error_stack, result_file)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Publisher writes an emitted run and its results in one transaction
type Publisher struct {
	manager *Manager
}

// NewPublisher creates a new Publisher
func NewPublisher(manager *Manager) *Publisher {
	return &Publisher{manager: manager}
}

// Publish stores the run summary and every report entry
func (p *Publisher) Publish(ctx context.Context, summary *domain.RunSummary, entries []domain.ReportEntry) error {
	db, err := p.manager.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertRun, runArgs(summary)...); err != nil {
		return fmt.Errorf("insert run %s: %w", summary.Run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertResult)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, resultArgs(summary.Run.ID, e)...); err != nil {
			return fmt.Errorf("insert result %q: %w", e.TestName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	p.manager.log.WithFields(logrus.Fields{
		"run":     summary.Run.ID,
		"results": len(entries),
	}).Info("Published run to database")

	return nil
}

func runArgs(s *domain.RunSummary) []any {
	c := s.Counters
	return []any{
		s.Run.ID, s.Run.ExecutionID, s.Run.Name, s.Run.User,
		nullTime(s.Run.Start), nullTime(s.Run.Finish),
		c.Total, c.Executed, c.Passed, c.Failed, c.Timeout, c.NotExecuted, c.Pending,
		s.Excluded, s.ReportPath,
	}
}

func resultArgs(runID string, e domain.ReportEntry) []any {
	var file sql.NullString
	if len(e.ResultFiles) > 0 {
		file = sql.NullString{String: e.ResultFiles[0], Valid: true}
	}
	return []any{
		runID, e.TestID, e.TestName, e.CodeBase, string(e.Outcome), e.Duration,
		e.StartTime, e.EndTime, nullString(e.ErrorMessage), nullString(e.ErrorStack), file,
	}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
