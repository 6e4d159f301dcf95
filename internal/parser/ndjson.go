package parser

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"trxr/internal/domain"
)

// maxLineSize bounds a single event line; stack traces can be long
const maxLineSize = 4 * 1024 * 1024

// NDJSONParser decodes one JSON event per line
type NDJSONParser struct {
	log logrus.FieldLogger
}

// NewNDJSONParser creates a new NDJSONParser
func NewNDJSONParser(log logrus.FieldLogger) *NDJSONParser {
	return &NDJSONParser{log: log.WithField("component", "parser")}
}

// Parse decodes events from r until EOF. Blank lines are ignored and
// malformed lines are logged and skipped. A handler error stops parsing.
func (p *NDJSONParser) Parse(ctx context.Context, r io.Reader, handle Handler) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Lines++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		ev, err := Decode(line)
		if err != nil {
			stats.Skipped++
			p.log.WithError(err).WithField("line", stats.Lines).Warn("Skipping malformed event")
			continue
		}

		stats.Events++
		if err := handle(ctx, ev); err != nil {
			return stats, fmt.Errorf("line %d (%s): %w", stats.Lines, ev.Kind, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read events: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"lines":   stats.Lines,
		"events":  stats.Events,
		"skipped": stats.Skipped,
	}).Debug("Event stream finished")

	return stats, nil
}

// Decode parses a single event line
func Decode(line []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.Kind == "" {
		return ev, fmt.Errorf("decode event: missing event kind")
	}
	return ev, nil
}
