// Package aggregator builds the authoritative set of test records from the
// runner's lifecycle events.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"trxr/internal/domain"
)

var (
	// ErrRunEnded is returned when a second run end is received
	ErrRunEnded = errors.New("run already ended")
	// ErrInvalidEvent wraps events whose kind or payload cannot be handled
	ErrInvalidEvent = errors.New("invalid event")
)

// Emitter receives the frozen results once the run has ended
type Emitter interface {
	Emit(ctx context.Context, results *domain.RunResults) error
}

// Aggregator consumes lifecycle events on a single goroutine. It owns the
// retained record set and the unresolved hook failure; nothing else mutates them.
type Aggregator struct {
	log     logrus.FieldLogger
	emitter Emitter
	now     func() time.Time

	scopes     map[string]*domain.Scope
	tests      map[string]*domain.TestRecord
	retained   *RetainedSet
	failedHook *domain.FailedHook
	ended      bool
}

// New creates a new Aggregator. emitter may be nil, in which case RunEnd
// only freezes and returns the results.
func New(log logrus.FieldLogger, emitter Emitter) *Aggregator {
	return &Aggregator{
		log:      log.WithField("component", "aggregator"),
		emitter:  emitter,
		now:      time.Now,
		scopes:   make(map[string]*domain.Scope),
		tests:    make(map[string]*domain.TestRecord),
		retained: NewRetainedSet(),
	}
}

// WithClock replaces the clock used to stamp start and end instants
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Handle dispatches a decoded event. Events arriving after the run has
// ended are ignored, except a second run end which yields ErrRunEnded.
func (a *Aggregator) Handle(ctx context.Context, ev domain.Event) error {
	if a.ended {
		if ev.Kind == domain.EventRunEnd {
			return ErrRunEnded
		}
		a.log.WithField("event", ev.Kind).Debug("Ignoring event after run end")
		return nil
	}

	switch ev.Kind {
	case domain.EventScopeBegin:
		if ev.Scope == nil {
			return missing(ev.Kind, "scope")
		}
		a.ScopeBegin(*ev.Scope)
	case domain.EventTestBegin:
		if ev.Test == nil {
			return missing(ev.Kind, "test")
		}
		a.TestBegin(*ev.Test)
	case domain.EventTestPending:
		if ev.Test == nil {
			return missing(ev.Kind, "test")
		}
		a.TestPending(*ev.Test)
	case domain.EventTestEnd:
		if ev.Test == nil {
			return missing(ev.Kind, "test")
		}
		a.TestEnd(*ev.Test)
	case domain.EventFailure:
		switch ev.Subject {
		case domain.SubjectHook:
			if ev.Hook == nil {
				return missing(ev.Kind, "hook")
			}
			a.HookFailed(*ev.Hook, ev.Error)
		case domain.SubjectTest, "":
			if ev.Test == nil {
				return missing(ev.Kind, "test")
			}
			a.TestFailed(*ev.Test, ev.Error)
		default:
			return fmt.Errorf("%w: unknown failure subject %q", ErrInvalidEvent, ev.Subject)
		}
	case domain.EventScopeEnd:
		if ev.Scope == nil {
			return missing(ev.Kind, "scope")
		}
		a.ScopeEnd(ev.Scope.ID)
	case domain.EventRunEnd:
		_, err := a.RunEnd(ctx, ev.Stats)
		return err
	default:
		return fmt.Errorf("%w: unknown event %q", ErrInvalidEvent, ev.Kind)
	}
	return nil
}

// ScopeBegin declares a scope and the tests it owns
func (a *Aggregator) ScopeBegin(info domain.ScopeInfo) *domain.Scope {
	scope, ok := a.scopes[info.ID]
	if !ok {
		scope = &domain.Scope{ID: info.ID}
		a.scopes[info.ID] = scope
	}
	scope.Title = info.Title
	scope.Pending = scope.Pending || info.Pending

	if parent, ok := a.scopes[info.Parent]; ok && info.Parent != info.ID && scope.Parent == nil {
		parent.AddScope(scope)
	}

	for _, t := range info.Tests {
		if t.Scope == "" {
			t.Scope = info.ID
		}
		r := a.record(t)
		if t.Pending || scope.IsPending() {
			r.Pending = true
		}
	}
	return scope
}

// TestBegin creates or fetches the record and stamps its start
func (a *Aggregator) TestBegin(info domain.TestInfo) *domain.TestRecord {
	r := a.record(info)
	a.merge(r, info)
	r.BeginAt(a.now())
	return r
}

// TestPending marks the record pending
func (a *Aggregator) TestPending(info domain.TestInfo) *domain.TestRecord {
	r := a.record(info)
	info.Pending = true
	a.merge(r, info)
	return r
}

// TestEnd stamps the end, applies the runner's final state and retains the record
func (a *Aggregator) TestEnd(info domain.TestInfo) *domain.TestRecord {
	r := a.record(info)
	r.EndAt(a.now())
	a.merge(r, info)
	if !a.retained.Add(r) {
		a.log.WithField("test", r.FullTitle()).Debug("Duplicate test end")
	}
	return r
}

// TestFailed attaches the failure to the test's record
func (a *Aggregator) TestFailed(info domain.TestInfo, err *domain.TestError) *domain.TestRecord {
	r := a.record(info)
	a.merge(r, info)
	if err == nil {
		err = info.Err
	}
	r.Fail(err)
	return r
}

// HookFailed remembers the hook failure until its scope ends. A newer
// failure replaces an unresolved one.
func (a *Aggregator) HookFailed(hook domain.HookInfo, err *domain.TestError) {
	scope, ok := a.scopes[hook.Scope]
	if !ok {
		a.log.WithField("scope", hook.Scope).Warn("Hook failed in an undeclared scope")
		scope = &domain.Scope{ID: hook.Scope}
		a.scopes[hook.Scope] = scope
	}
	if a.failedHook != nil {
		a.log.WithFields(logrus.Fields{
			"hook":  a.failedHook.Title,
			"scope": a.failedHook.Scope.FullTitle(),
		}).Debug("Replacing unresolved hook failure")
	}
	a.failedHook = &domain.FailedHook{Title: hook.Title, Scope: scope, Err: err}
}

// ScopeEnd resolves the pending hook failure when it guards the ending scope
func (a *Aggregator) ScopeEnd(scopeID string) {
	scope, ok := a.scopes[scopeID]
	if !ok || a.failedHook == nil || a.failedHook.Scope != scope {
		return
	}
	a.reconcile(a.failedHook)
	a.failedHook = nil
}

// reconcile fails every test of the hook's scope that did not get to run
func (a *Aggregator) reconcile(hook *domain.FailedHook) {
	scope := hook.Scope
	message := fmt.Sprintf("Not executed due to %s on \"%s\"", hook.Title, scope.FullTitle())
	var stack string
	if hook.Err != nil {
		if hook.Err.Message != "" {
			message += ": " + hook.Err.Message
		}
		stack = hook.Err.Stack
	}

	var count int
	scope.EachTest(func(r *domain.TestRecord) {
		if !r.IsPending() && r.State != domain.StateUnset {
			return
		}
		synthesized := &domain.TestError{Message: message, Stack: stack}
		if r.State == domain.StateUnset {
			r.Fail(synthesized)
		} else {
			r.SetError(synthesized)
		}
		a.retained.Add(r)
		count++
	})

	a.log.WithFields(logrus.Fields{
		"hook":  hook.Title,
		"scope": scope.FullTitle(),
		"tests": count,
	}).Debug("Reconciled tests after hook failure")
}

// RunEnd freezes all records, aggregates the timing window and hands the
// results to the emitter.
func (a *Aggregator) RunEnd(ctx context.Context, stats *domain.RunStats) (*domain.RunResults, error) {
	if a.ended {
		return nil, ErrRunEnded
	}
	a.ended = true

	if a.failedHook != nil {
		a.log.WithField("hook", a.failedHook.Title).Warn("Run ended with an unresolved hook failure")
	}

	for _, r := range a.tests {
		r.Freeze()
	}

	results := &domain.RunResults{
		Records: a.retained.Records(),
		Stats:   stats,
	}
	for _, r := range results.Records {
		if !r.Start.IsZero() && (results.Start.IsZero() || r.Start.Before(results.Start)) {
			results.Start = r.Start
		}
		if !r.End.IsZero() && r.End.After(results.End) {
			results.End = r.End
		}
	}

	a.log.WithFields(logrus.Fields{
		"retained": len(results.Records),
		"known":    len(a.tests),
	}).Debug("Run ended")

	if a.emitter == nil {
		return results, nil
	}
	if err := a.emitter.Emit(ctx, results); err != nil {
		return results, fmt.Errorf("emit report: %w", err)
	}
	return results, nil
}

// Ended reports whether a run end has been processed
func (a *Aggregator) Ended() bool {
	return a.ended
}

// Retained returns the currently retained records in insertion order
func (a *Aggregator) Retained() []*domain.TestRecord {
	return a.retained.Records()
}

// Lookup returns the record known under id
func (a *Aggregator) Lookup(id string) (*domain.TestRecord, bool) {
	r, ok := a.tests[id]
	return r, ok
}

// record creates or fetches the record for the test identity
func (a *Aggregator) record(info domain.TestInfo) *domain.TestRecord {
	id := a.identity(info)
	if r, ok := a.tests[id]; ok {
		return r
	}

	r := &domain.TestRecord{ID: id, Title: info.Title, File: info.File}
	if scope, ok := a.scopes[info.Scope]; ok {
		scope.AddTest(r)
	} else if info.FullTitle != "" {
		r.Title = info.FullTitle
	}
	a.tests[id] = r
	return r
}

// merge applies the runner's view of the test onto the record
func (a *Aggregator) merge(r *domain.TestRecord, info domain.TestInfo) {
	if r.Frozen() {
		a.log.WithField("test", r.FullTitle()).Debug("Ignoring update to frozen record")
		return
	}
	if r.File == "" {
		r.File = info.File
	}
	if info.State != domain.StateUnset {
		r.State = info.State
	}
	if info.Duration > 0 {
		r.DurationMS = info.Duration
	}
	if info.Pending || (r.Scope != nil && r.Scope.IsPending()) {
		r.Pending = true
	}
	if info.TimedOut {
		r.TimedOut = true
	}
	if info.Err != nil {
		r.Err = info.Err
	}
}

// identity returns the stream id, or a hash of the full title when absent.
// The file is not part of the identity.
func (a *Aggregator) identity(info domain.TestInfo) string {
	if info.ID != "" {
		return info.ID
	}
	title := info.FullTitle
	if title == "" {
		title = info.Title
		if scope, ok := a.scopes[info.Scope]; ok {
			title = (&domain.TestRecord{Title: info.Title, Scope: scope}).FullTitle()
		}
	}
	return strconv.FormatUint(xxhash.Sum64String(title), 16)
}

func missing(kind domain.EventKind, field string) error {
	return fmt.Errorf("%w: %s event without %s", ErrInvalidEvent, kind, field)
}
