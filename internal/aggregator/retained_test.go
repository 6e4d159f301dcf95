package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trxr/internal/domain"
)

func TestRetainedSet(t *testing.T) {
	set := NewRetainedSet()
	a := &domain.TestRecord{ID: "a"}
	b := &domain.TestRecord{ID: "b"}

	assert.True(t, set.Add(a))
	assert.True(t, set.Add(b))
	assert.False(t, set.Add(a))
	assert.False(t, set.Add(&domain.TestRecord{ID: "a"}), "identity, not pointer, decides")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("b"))
	assert.False(t, set.Contains("c"))

	records := set.Records()
	assert.Equal(t, []*domain.TestRecord{a, b}, records)

	records[0] = nil
	assert.Same(t, a, set.Records()[0], "Records returns a copy")
}
