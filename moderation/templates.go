package moderation

import (
	"fmt"
	"time"
)

// formatWindow renders a duration the way the reply templates speak about
// it: whole hours when even, minutes otherwise.
func formatWindow(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d.Hours())
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	m := int(d.Round(time.Minute).Minutes())
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}

// provisionalNotice is the comment posted when a submission is removed
// pending flair.
func provisionalNotice(grace time.Duration, subreddit string) string {
	return fmt.Sprintf(
		"This post has automatically been removed for not being flaired within %s. "+
			"When the post receives a flair, it will automatically be restored.\n\n"+
			"If you believe this removal was in error, please [contact the subreddit moderators]"+
			"(https://www.reddit.com/message/compose?to=/r/%s).\n\n"+
			"---\n\n"+
			"^(flairmod is an automated moderator. Replies to this comment are not monitored.)",
		formatWindow(grace), subreddit)
}

// permanentNotice is the comment posted when the flair deadline elapses and
// the removal becomes final.
func permanentNotice(deadline time.Duration) string {
	return fmt.Sprintf(
		"Your submission has been permanently removed as it was not flaired within %s.\n\n"+
			"Feel free to create a new post and flair it appropriately.\n\n"+
			"---\n\n"+
			"^(flairmod is an automated moderator. Replies to this comment are not monitored.)",
		formatWindow(deadline))
}

// inviteWelcome acknowledges a successful moderator invitation.
func inviteWelcome(subreddit string) string {
	return fmt.Sprintf("flairmod has joined r/%s and will begin enforcing submission flair. "+
		"Thanks for the invite!", subreddit)
}

// inviteRejection explains why the agent resigned after an invitation with
// too narrow a permission grant.
func inviteRejection() string {
	return "flairmod requires either full permissions or both the flair and posts " +
		"permissions to function correctly. The invitation has been rejected; " +
		"please re-invite with flair and posts permissions."
}
