package domain

import (
	"strings"
	"time"
)

// TestState is the terminal state a runner assigns to a test
type TestState string

const (
	StateUnset  TestState = ""
	StatePassed TestState = "passed"
	StateFailed TestState = "failed"
)

// TestError holds the error detail attached to a failed test
type TestError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// TestRecord represents a single test case observed during a run.
// Records stay mutable until the run ends; after Freeze only the artifact
// reference may still be attached.
type TestRecord struct {
	ID         string    // Stable identity of the test within the run
	Title      string    // Own title, without enclosing scopes
	File       string    // Source file, empty when unknown
	Scope      *Scope    // Owning scope, nil for tests reported without one
	Start      time.Time // Zero until the test begins
	End        time.Time // Zero until the test ends
	DurationMS int64     // Duration reported by the runner
	State      TestState
	Pending    bool
	TimedOut   bool
	Err        *TestError
	Artifact   string // Basename of the correlated artifact

	frozen bool
}

// FullTitle returns the scope titles and the test title joined by spaces
func (r *TestRecord) FullTitle() string {
	if r.Scope == nil {
		return r.Title
	}
	return joinTitles(r.Scope.FullTitle(), r.Title)
}

// IsPending reports whether the test or any enclosing scope is pending
func (r *TestRecord) IsPending() bool {
	if r.Pending {
		return true
	}
	return r.Scope != nil && r.Scope.IsPending()
}

// IsFailed reports whether the test ran and failed
func (r *TestRecord) IsFailed() bool {
	return !r.IsPending() && r.State == StateFailed
}

// Elapsed returns the elapsed time in milliseconds, preferring the runner's figure
func (r *TestRecord) Elapsed() int64 {
	if r.DurationMS > 0 {
		return r.DurationMS
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start).Milliseconds()
}

// BeginAt stamps the start instant
func (r *TestRecord) BeginAt(t time.Time) bool {
	if r.frozen {
		return false
	}
	r.Start = t
	return true
}

// EndAt stamps the end instant, never earlier than the start
func (r *TestRecord) EndAt(t time.Time) bool {
	if r.frozen {
		return false
	}
	if !r.Start.IsZero() && t.Before(r.Start) {
		t = r.Start
	}
	r.End = t
	return true
}

// SetError attaches err without touching the terminal state
func (r *TestRecord) SetError(err *TestError) bool {
	if r.frozen {
		return false
	}
	r.Err = err
	return true
}

// Fail attaches err and marks the record failed
func (r *TestRecord) Fail(err *TestError) bool {
	if !r.SetError(err) {
		return false
	}
	r.State = StateFailed
	return true
}

// AttachArtifact records the basename of the artifact copied for this test
func (r *TestRecord) AttachArtifact(name string) {
	r.Artifact = name
}

// Freeze makes the record immutable for the remainder of the run
func (r *TestRecord) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called
func (r *TestRecord) Frozen() bool {
	return r.frozen
}

// Scope is a named grouping of tests and nested scopes sharing hooks
type Scope struct {
	ID      string
	Title   string
	Parent  *Scope
	Pending bool
	Tests   []*TestRecord
	Scopes  []*Scope
}

// FullTitle returns the non-empty titles from the root down to this scope
func (s *Scope) FullTitle() string {
	if s.Parent == nil {
		return s.Title
	}
	return joinTitles(s.Parent.FullTitle(), s.Title)
}

// IsPending reports whether this scope or any ancestor is pending
func (s *Scope) IsPending() bool {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.Pending {
			return true
		}
	}
	return false
}

// AddTest appends a test to the scope and points the test back at it
func (s *Scope) AddTest(t *TestRecord) {
	t.Scope = s
	s.Tests = append(s.Tests, t)
}

// AddScope nests child under the scope
func (s *Scope) AddScope(child *Scope) {
	child.Parent = s
	s.Scopes = append(s.Scopes, child)
}

// EachTest walks the scope's own tests, then every nested scope depth-first
func (s *Scope) EachTest(fn func(*TestRecord)) {
	for _, t := range s.Tests {
		fn(t)
	}
	for _, child := range s.Scopes {
		child.EachTest(fn)
	}
}

func joinTitles(parent, title string) string {
	return strings.TrimSpace(strings.Join([]string{parent, title}, " "))
}
