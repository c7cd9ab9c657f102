package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/flairmod/flairmod/moderation/trackstore"
	"github.com/flairmod/flairmod/reddit"
)

// CheckNewSubmissions scans every moderated subreddit's fresh submissions
// and provisionally removes those that are past the grace period without a
// flair.
//
// Listings are newest first, so the scan stops at the first submission
// outside the reachback horizon rather than filtering the whole window.
func (e *Engine) CheckNewSubmissions(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "CheckNewSubmissions")
	defer span.End()

	subreddits, err := e.Client.ModeratedSubreddits(ctx)
	if err != nil {
		return fmt.Errorf("listing moderated subreddits: %w", err)
	}

	for _, subreddit := range subreddits {
		subs, err := e.Client.ListNewSubmissions(ctx, subreddit)
		if err != nil {
			return fmt.Errorf("listing new submissions for r/%s: %w", subreddit, err)
		}
		for i := range subs {
			sub := &subs[i]
			now := e.now()
			if e.Policy.OutsideReachback(sub.CreatedAt, now) {
				break
			}
			if sub.Flaired() || e.Policy.WithinGrace(sub.CreatedAt, now) {
				continue
			}
			if err := e.removeUnflaired(ctx, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// removeUnflaired performs the provisional-removal transition: post the
// explanatory comment, record the tracking row, then remove the submission.
// The ordering matters: a crash between steps leaves at worst an orphaned
// comment, never a removed submission with no tracking record.
func (e *Engine) removeUnflaired(ctx context.Context, sub *reddit.Submission) error {
	logger := e.logger().With("submission", sub.ID, "subreddit", sub.Subreddit)

	replyID, err := e.Client.CreateReply(ctx, sub.ID, provisionalNotice(e.Policy.GracePeriod, sub.Subreddit))
	if err != nil {
		return fmt.Errorf("posting removal notice on %s: %w", sub.ID, err)
	}

	if err := e.Store.Insert(ctx, sub.ID, replyID); err != nil {
		if !errors.Is(err, trackstore.ErrAlreadyTracked) {
			return fmt.Errorf("recording removal of %s: %w", sub.ID, err)
		}
		// already recorded by a previous pass; perhaps a moderator manually
		// approved it or the flair was later removed. Discard the redundant
		// comment and remove the submission again.
		logger.Warn("submission already recorded as removed, removing again")
		trackingConflicts.Inc()
		if err := e.Client.DeleteComment(ctx, replyID); err != nil {
			return fmt.Errorf("deleting redundant notice %s: %w", replyID, err)
		}
	}

	if err := e.Client.RemoveSubmission(ctx, sub.ID); err != nil {
		return fmt.Errorf("removing submission %s: %w", sub.ID, err)
	}
	submissionsRemoved.Inc()
	logger.Info("submission removed due to lacking flair")
	return nil
}
