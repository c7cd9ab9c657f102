package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/flairmod/flairmod/moderation/trackstore"
	"github.com/flairmod/flairmod/reddit"
)

// ReconcileTracked walks every tracked submission and applies the next
// lifecycle transition: restore it if it has been flaired, finalize the
// removal if the deadline has elapsed, otherwise leave it pending.
func (e *Engine) ReconcileTracked(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ReconcileTracked")
	defer span.End()

	rows, err := e.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing tracked submissions: %w", err)
	}
	for _, row := range rows {
		if err := e.reconcile(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) reconcile(ctx context.Context, row trackstore.TrackedSubmission) error {
	logger := e.logger().With("submission", row.SubmissionID)

	sub, err := e.Client.FetchSubmission(ctx, row.SubmissionID)
	if err != nil && !errors.Is(err, reddit.ErrNotFound) {
		return fmt.Errorf("fetching tracked submission %s: %w", row.SubmissionID, err)
	}

	now := e.now()
	switch {
	case err == nil && sub.Flaired():
		// store deletion before cleanup before restore: a crash mid-sequence
		// leaves a state the next sweep re-processes harmlessly
		if err := e.Store.Delete(ctx, row.SubmissionID); err != nil {
			return fmt.Errorf("untracking %s: %w", row.SubmissionID, err)
		}
		if err := e.removeReplyTree(ctx, row.SubmissionID, row.AgentReplyID); err != nil {
			return err
		}
		if err := e.Client.ApproveSubmission(ctx, row.SubmissionID); err != nil {
			return fmt.Errorf("approving %s: %w", row.SubmissionID, err)
		}
		submissionsRestored.Inc()
		logger.Info("submission approved since being flaired", "flair", sub.LinkFlairText)

	case err != nil || sub.Deleted:
		// author deleted the submission; nothing left to restore or remove
		if err := e.Store.Delete(ctx, row.SubmissionID); err != nil {
			return fmt.Errorf("untracking %s: %w", row.SubmissionID, err)
		}
		if err := e.removeReplyTree(ctx, row.SubmissionID, row.AgentReplyID); err != nil {
			return err
		}
		submissionsAbandoned.Inc()
		logger.Info("tracked submission deleted by author, dropping")

	case e.Policy.PastDeadline(sub.CreatedAt, now):
		if err := e.Store.Delete(ctx, row.SubmissionID); err != nil {
			return fmt.Errorf("untracking %s: %w", row.SubmissionID, err)
		}
		// the deadline notice is left standing as the permanent explanation;
		// only the original notice and its replies are cleaned up
		if _, err := e.Client.CreateReply(ctx, row.SubmissionID, permanentNotice(e.Policy.PermanentDeadline)); err != nil {
			return fmt.Errorf("posting permanent-removal notice on %s: %w", row.SubmissionID, err)
		}
		if err := e.removeReplyTree(ctx, row.SubmissionID, row.AgentReplyID); err != nil {
			return err
		}
		submissionsExpired.Inc()
		logger.Info("submission permanently removed, flair deadline elapsed")
	}
	return nil
}
