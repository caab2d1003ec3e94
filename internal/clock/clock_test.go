package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2024, 2, 3, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	c := NewFakeClock(start)

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, start.Equal(c.Now()))

	c.Advance(36 * time.Hour)
	assert.Equal(t, "2024-02-04", c.Now().Format("2006-01-02"))
}

func TestFakeClockSet(t *testing.T) {
	c := NewFakeClock(time.Time{})
	c.Set(time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("CET", 3600)))
	assert.Equal(t, "2024-12-31T22:30:00Z", c.Now().Format(time.RFC3339))
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := New().Now()
	assert.False(t, got.Before(before))
}
