package ui

import "trxr/internal/domain"

// Viewer displays the failures of a run in an interactive TUI
type Viewer interface {
	View(summary *domain.RunSummary) error
}
