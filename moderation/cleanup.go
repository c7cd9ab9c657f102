package moderation

import (
	"context"
	"fmt"
)

// removeReplyTree removes the agent's explanatory comment and every reply
// nested beneath it. Removal order does not matter and already-removed
// nodes are tolerated, so re-running after a partial pass converges.
func (e *Engine) removeReplyTree(ctx context.Context, submissionID, replyID string) error {
	children, err := e.Client.FetchReplyTree(ctx, submissionID, replyID)
	if err != nil {
		return fmt.Errorf("fetching reply tree under %s: %w", replyID, err)
	}
	for _, id := range append(children, replyID) {
		if err := e.Client.RemoveComment(ctx, id); err != nil {
			return fmt.Errorf("removing comment %s: %w", id, err)
		}
	}
	return nil
}
