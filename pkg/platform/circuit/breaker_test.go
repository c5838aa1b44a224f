package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("store", WithFailureThreshold(3))

	assert.False(t, b.RecordFailure().Opened)
	assert.False(t, b.RecordFailure().Opened)
	assert.True(t, b.RecordFailure().Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, "open", b.State().String())
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := New("store", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	assert.False(t, b.RecordFailure().Opened)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpenAllowsOneTrialPerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := New("store",
		WithFailureThreshold(1),
		WithRetryInterval(time.Second),
		WithClock(clock.now),
	)
	b.RecordFailure()

	assert.False(t, b.Allow(), "no trial immediately after opening")
	clock.advance(time.Second)
	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "second trial in the same interval")
}

func TestBreaker_ClosesAfterSuccessfulTrials(t *testing.T) {
	b := New("store", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()

	assert.False(t, b.RecordSuccess().Closed)
	assert.True(t, b.RecordSuccess().Closed)
	assert.True(t, b.Allow())
}
