package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flairmod/flairmod/reddit"
)

// inviteMarker opens the platform's canned moderator-invitation message.
const inviteMarker = "**gadzooks!"

// inboxScanLimit bounds how many unread messages one pass inspects.
const inboxScanLimit = 5

// AcceptModeratorInvites scans the unread inbox for moderator invitations
// and accepts them, provided the granted permissions are sufficient. Each
// message is marked read before acting so a crash never re-processes it.
func (e *Engine) AcceptModeratorInvites(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "AcceptModeratorInvites")
	defer span.End()

	msgs, err := e.Client.ListUnreadInbox(ctx, inboxScanLimit)
	if err != nil {
		return fmt.Errorf("listing unread inbox: %w", err)
	}
	for _, msg := range msgs {
		if err := e.Client.MarkRead(ctx, msg.ID); err != nil {
			return fmt.Errorf("marking message %s read: %w", msg.ID, err)
		}
		if !strings.HasPrefix(msg.Body, inviteMarker) || msg.Subreddit == "" {
			continue
		}
		if err := e.acceptInvite(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) acceptInvite(ctx context.Context, msg reddit.Message) error {
	logger := e.logger().With("subreddit", msg.Subreddit)

	if err := e.Client.AcceptModeratorInvite(ctx, msg.Subreddit); err != nil {
		if !errors.Is(err, reddit.ErrNoInvite) {
			return fmt.Errorf("accepting moderator invite for r/%s: %w", msg.Subreddit, err)
		}
		logger.Warn("attempted to accept invite but no invitation found", "message", msg.ID)
	}

	// verify the permissions needed to function correctly
	mods, err := e.Client.ListModerators(ctx, msg.Subreddit)
	if err != nil {
		return fmt.Errorf("listing moderators of r/%s: %w", msg.Subreddit, err)
	}
	for _, mod := range mods {
		if mod.Name != e.Username {
			continue
		}
		if !sufficientPermissions(mod) {
			logger.Info("invited with incorrect permissions, rejecting invitation",
				"permissions", mod.Permissions)
			if err := e.Client.LeaveModerator(ctx, msg.Subreddit); err != nil {
				return fmt.Errorf("leaving r/%s: %w", msg.Subreddit, err)
			}
			if err := e.Client.ReplyToMessage(ctx, msg.ID, inviteRejection()); err != nil {
				return fmt.Errorf("replying to invitation %s: %w", msg.ID, err)
			}
			invitesRejected.Inc()
			return nil
		}
		logger.Info("successfully invited as moderator")
		if err := e.Client.ReplyToMessage(ctx, msg.ID, inviteWelcome(msg.Subreddit)); err != nil {
			return fmt.Errorf("replying to invitation %s: %w", msg.ID, err)
		}
		invitesAccepted.Inc()
		return nil
	}
	return nil
}

// the agent needs either full permissions or both flair and posts
func sufficientPermissions(mod reddit.Moderator) bool {
	if mod.HasPermission("all") {
		return true
	}
	return mod.HasPermission("flair") && mod.HasPermission("posts")
}
