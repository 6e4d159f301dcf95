package domain

import "time"

// EventKind identifies a lifecycle event emitted by the test runner
type EventKind string

const (
	EventScopeBegin  EventKind = "scope begin"
	EventTestBegin   EventKind = "test begin"
	EventTestPending EventKind = "test pending"
	EventTestEnd     EventKind = "test end"
	EventFailure     EventKind = "failure"
	EventScopeEnd    EventKind = "scope end"
	EventRunEnd      EventKind = "run end"
)

// SubjectKind tells whether a failure belongs to a test or a hook
type SubjectKind string

const (
	SubjectTest SubjectKind = "test"
	SubjectHook SubjectKind = "hook"
)

// Event is one line of the runner's lifecycle stream
type Event struct {
	Kind    EventKind   `json:"event"`
	Subject SubjectKind `json:"kind,omitempty"`
	Scope   *ScopeInfo  `json:"scope,omitempty"`
	Test    *TestInfo   `json:"test,omitempty"`
	Hook    *HookInfo   `json:"hook,omitempty"`
	Error   *TestError  `json:"error,omitempty"`
	Stats   *RunStats   `json:"stats,omitempty"`
}

// ScopeInfo describes a scope as announced by the runner. Tests lists the
// scope's own tests so that tests which never start are still known.
type ScopeInfo struct {
	ID      string     `json:"id"`
	Parent  string     `json:"parent,omitempty"`
	Title   string     `json:"title"`
	Pending bool       `json:"pending,omitempty"`
	Tests   []TestInfo `json:"tests,omitempty"`
}

// TestInfo is the runner's snapshot of a test at the time of an event
type TestInfo struct {
	ID        string     `json:"id,omitempty"`
	Scope     string     `json:"scope,omitempty"`
	Title     string     `json:"title"`
	FullTitle string     `json:"fullTitle,omitempty"`
	File      string     `json:"file,omitempty"`
	State     TestState  `json:"state,omitempty"`
	Pending   bool       `json:"pending,omitempty"`
	TimedOut  bool       `json:"timedOut,omitempty"`
	Duration  int64      `json:"duration,omitempty"`
	Err       *TestError `json:"err,omitempty"`
}

// HookInfo identifies a setup/teardown hook and the scope it guards
type HookInfo struct {
	Title string `json:"title"`
	Scope string `json:"scope"`
}

// RunStats carries the runner's own run-level statistics
type RunStats struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Tests    int       `json:"tests,omitempty"`
	Passes   int       `json:"passes,omitempty"`
	Failures int       `json:"failures,omitempty"`
	Pending  int       `json:"pending,omitempty"`
}
