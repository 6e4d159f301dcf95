package discovery

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// Scanner discovers artifact files matching a glob pattern
type Scanner struct {
	log logrus.FieldLogger
}

// NewScanner creates a new Scanner
func NewScanner(log logrus.FieldLogger) *Scanner {
	return &Scanner{log: log.WithField("component", "discovery")}
}

// Scan returns the files matching pattern in discovery order. Directories
// are never returned; "**" matches any number of nested folders.
func (s *Scanner) Scan(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid artifact pattern: %s", pattern)
	}

	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search artifacts %s: %w", pattern, err)
	}

	s.log.WithFields(logrus.Fields{
		"pattern": pattern,
		"files":   len(files),
	}).Debug("Artifact search finished")

	return files, nil
}
