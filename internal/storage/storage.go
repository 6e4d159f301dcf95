package storage

import (
	"trxr/internal/config"
	"trxr/internal/domain"
)

// Storage persists and loads the last run summary (e.g. for the failure viewer).
type Storage interface {
	Save(summary *domain.RunSummary) error
	Load() (*domain.RunSummary, error)
}

// JSONStorage stores the summary in a JSON file next to the report.
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes the config's summary path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{path: cfg.GetSummaryPath()}
}

// Path returns the summary file location
func (s *JSONStorage) Path() string {
	return s.path
}
