// Package upload publishes the emitted report and its artifacts to remote storage.
package upload

import (
	"context"

	"trxr/internal/domain"
)

// Uploader uploads an emitted report to remote storage.
type Uploader interface {
	// Preflight verifies that the remote storage is reachable and writable.
	Preflight(ctx context.Context) error

	// Publish uploads the report file and every relocated artifact of the run.
	Publish(ctx context.Context, summary *domain.RunSummary, entries []domain.ReportEntry) error
}
