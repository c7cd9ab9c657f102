// Package trackstore persists the set of submissions currently removed and
// awaiting flair. A row exists if and only if the submission was removed by
// this agent and has been neither restored nor permanently removed.
package trackstore

import (
	"context"
	"errors"
)

// ErrAlreadyTracked indicates an insert hit the uniqueness constraint: the
// submission was already recorded by a previous pass. This is a
// reconciliation conflict for the caller to resolve, not a hard failure.
var ErrAlreadyTracked = errors.New("submission already tracked")

// TrackedSubmission is one removed-pending-flair record. AgentReplyID points
// at the explanatory comment the agent posted when removing the submission,
// so the comment tree can be cleaned up when the submission exits tracking.
type TrackedSubmission struct {
	SubmissionID string `gorm:"primaryKey"`
	AgentReplyID string `gorm:"uniqueIndex;not null"`
}

// Store is the durable record of pending removals. The moderation engine is
// the only reader and writer.
type Store interface {
	// Insert records a newly removed submission. Returns ErrAlreadyTracked
	// if a row for the submission already exists.
	Insert(ctx context.Context, submissionID, agentReplyID string) error

	// Delete drops a submission from tracking. Deleting an untracked
	// submission is a no-op.
	Delete(ctx context.Context, submissionID string) error

	// Get returns the record for a submission, or nil when untracked.
	Get(ctx context.Context, submissionID string) (*TrackedSubmission, error)

	// List returns a snapshot of every tracked submission.
	List(ctx context.Context) ([]TrackedSubmission, error)
}
