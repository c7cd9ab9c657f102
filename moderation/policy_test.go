package moderation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyWindows(t *testing.T) {
	assert := assert.New(t)

	p := DefaultPolicy()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// brand new: in grace, nowhere near any other window
	created := now.Add(-30 * time.Second)
	assert.True(p.WithinGrace(created, now))
	assert.False(p.PastDeadline(created, now))
	assert.False(p.OutsideReachback(created, now))

	// five minutes old: grace expired, inside reachback
	created = now.Add(-5 * time.Minute)
	assert.False(p.WithinGrace(created, now))
	assert.False(p.PastDeadline(created, now))
	assert.False(p.OutsideReachback(created, now))

	// three hours old: outside the scan horizon, deadline not yet hit
	created = now.Add(-3 * time.Hour)
	assert.False(p.WithinGrace(created, now))
	assert.False(p.PastDeadline(created, now))
	assert.True(p.OutsideReachback(created, now))

	// twenty-five hours old: past the permanent deadline
	created = now.Add(-25 * time.Hour)
	assert.False(p.WithinGrace(created, now))
	assert.True(p.PastDeadline(created, now))
	assert.True(p.OutsideReachback(created, now))
}

// Boundaries are strict: at exactly the window edge the submission counts as
// past it, favoring action over inaction.
func TestPolicyBoundaries(t *testing.T) {
	assert := assert.New(t)

	p := DefaultPolicy()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	created := now.Add(-p.GracePeriod)
	assert.False(p.WithinGrace(created, now))
	assert.True(p.WithinGrace(created.Add(time.Second), now))

	created = now.Add(-p.PermanentDeadline)
	assert.False(p.PastDeadline(created, now))
	assert.True(p.PastDeadline(created.Add(-time.Second), now))

	created = now.Add(-p.ReachbackHorizon)
	assert.False(p.OutsideReachback(created, now))
	assert.True(p.OutsideReachback(created.Add(-time.Second), now))
}

// Once past the grace period, WithinGrace and PastDeadline can never both
// hold; both are monotonic in now.
func TestPolicyExclusive(t *testing.T) {
	assert := assert.New(t)

	p := DefaultPolicy()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, age := range []time.Duration{
		0, time.Minute, p.GracePeriod, time.Hour, p.PermanentDeadline, 48 * time.Hour,
	} {
		now := created.Add(age)
		if age > p.GracePeriod {
			assert.False(p.WithinGrace(created, now) && p.PastDeadline(created, now), "age %s", age)
		}
		// monotonic: once outside a window, staying later never re-enters it
		later := now.Add(time.Hour)
		if !p.WithinGrace(created, now) {
			assert.False(p.WithinGrace(created, later))
		}
		if p.PastDeadline(created, now) {
			assert.True(p.PastDeadline(created, later))
		}
	}
}
