package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestRecord_FullTitle(t *testing.T) {
	root := &Scope{ID: "root"}
	login := &Scope{ID: "login", Title: "Login"}
	errors := &Scope{ID: "errors", Title: "errors"}
	root.AddScope(login)
	login.AddScope(errors)

	r := &TestRecord{Title: "shows message"}
	errors.AddTest(r)

	assert.Equal(t, "Login errors shows message", r.FullTitle())
	assert.Same(t, errors, r.Scope)
	assert.Equal(t, "plain", (&TestRecord{Title: "plain"}).FullTitle())
}

func TestTestRecord_PendingAndFailed(t *testing.T) {
	parent := &Scope{Title: "Cart", Pending: true}
	child := &Scope{Title: "checkout"}
	parent.AddScope(child)

	r := &TestRecord{Title: "pays", State: StateFailed}
	child.AddTest(r)

	assert.True(t, r.IsPending(), "pending is inherited from ancestors")
	assert.False(t, r.IsFailed(), "pending tests are never failed")

	parent.Pending = false
	assert.False(t, r.IsPending())
	assert.True(t, r.IsFailed())
}

func TestTestRecord_Elapsed(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    TestRecord
		want int64
	}{
		{name: "runner duration wins", r: TestRecord{DurationMS: 40, Start: start, End: start.Add(time.Second)}, want: 40},
		{name: "computed from instants", r: TestRecord{Start: start, End: start.Add(1500 * time.Millisecond)}, want: 1500},
		{name: "no end", r: TestRecord{Start: start}, want: 0},
		{name: "never ran", r: TestRecord{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Elapsed())
		})
	}
}

func TestTestRecord_EndNeverBeforeStart(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &TestRecord{}
	r.BeginAt(start)
	r.EndAt(start.Add(-time.Second))

	assert.Equal(t, start, r.End)
}

func TestTestRecord_Freeze(t *testing.T) {
	r := &TestRecord{Title: "x", State: StatePassed}
	r.Freeze()

	assert.True(t, r.Frozen())
	assert.False(t, r.BeginAt(time.Now()))
	assert.False(t, r.EndAt(time.Now()))
	assert.False(t, r.Fail(&TestError{Message: "late"}))
	assert.False(t, r.SetError(&TestError{Message: "late"}))
	assert.Equal(t, StatePassed, r.State)
	assert.Nil(t, r.Err)
	assert.True(t, r.Start.IsZero())
}

func TestScope_EachTest(t *testing.T) {
	root := &Scope{Title: "root"}
	a := &Scope{Title: "a"}
	b := &Scope{Title: "b"}
	root.AddScope(a)
	root.AddScope(b)

	root.AddTest(&TestRecord{Title: "r1"})
	a.AddTest(&TestRecord{Title: "a1"})
	b.AddTest(&TestRecord{Title: "b1"})
	a.AddScope(&Scope{Title: "a-inner", Tests: []*TestRecord{{Title: "ai1"}}})

	var seen []string
	root.EachTest(func(r *TestRecord) { seen = append(seen, r.Title) })

	assert.Equal(t, []string{"r1", "a1", "ai1", "b1"}, seen)
}

func TestCounters_Add(t *testing.T) {
	var c Counters
	for _, o := range []Outcome{OutcomePassed, OutcomeFailed, OutcomeTimeout, OutcomeInconclusive, OutcomeNotExecuted, OutcomePending} {
		c.Add(o)
	}

	assert.Equal(t, 6, c.Total)
	assert.Equal(t, 4, c.Executed)
	assert.Equal(t, 1, c.NotExecuted)
	assert.Equal(t, 1, c.Pending)

	s := RunSummary{Counters: Counters{Timeout: 1}}
	assert.True(t, s.HasFailures())
	assert.False(t, (&RunSummary{}).HasFailures())
}
