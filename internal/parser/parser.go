// Package parser decodes the runner's lifecycle event stream.
package parser

import (
	"context"
	"io"

	"trxr/internal/domain"
)

// Handler consumes decoded events in stream order
type Handler func(ctx context.Context, ev domain.Event) error

// Parser reads lifecycle events and passes them to a handler
type Parser interface {
	Parse(ctx context.Context, r io.Reader, handle Handler) (Stats, error)
}

// Stats counts what a Parse call saw
type Stats struct {
	Lines   int
	Events  int
	Skipped int
}
