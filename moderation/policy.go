package moderation

import "time"

// Default enforcement windows. These are startup configuration, not runtime
// tunables.
const (
	DefaultGracePeriod       = 2 * time.Minute
	DefaultPermanentDeadline = 24 * time.Hour
	DefaultReachbackHorizon  = 2 * time.Hour
)

// Policy holds the time windows that drive the submission lifecycle. All
// methods are pure functions of the two time values; boundaries are strict,
// so a submission created exactly GracePeriod ago is already past grace.
type Policy struct {
	// GracePeriod is how long a submission may remain unflaired before it is
	// provisionally removed.
	GracePeriod time.Duration
	// PermanentDeadline is how long after creation an unflaired submission
	// is removed for good.
	PermanentDeadline time.Duration
	// ReachbackHorizon bounds how far back the new-submission scan looks.
	// Purely an optimization over an unbounded historical scan.
	ReachbackHorizon time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		GracePeriod:       DefaultGracePeriod,
		PermanentDeadline: DefaultPermanentDeadline,
		ReachbackHorizon:  DefaultReachbackHorizon,
	}
}

// WithinGrace reports whether the submission is still inside its flair
// opportunity window and must not be removed yet.
func (p Policy) WithinGrace(createdAt, now time.Time) bool {
	return createdAt.Add(p.GracePeriod).After(now)
}

// PastDeadline reports whether the submission's permanent-removal deadline
// has elapsed.
func (p Policy) PastDeadline(createdAt, now time.Time) bool {
	return createdAt.Add(p.PermanentDeadline).Before(now)
}

// OutsideReachback reports whether the submission is too old for the
// new-submission scan to consider.
func (p Policy) OutsideReachback(createdAt, now time.Time) bool {
	return createdAt.Add(p.ReachbackHorizon).Before(now)
}
