// Package reddit is a minimal typed client for the slice of the Reddit
// moderation API that flairmod needs: new-submission listings, comment
// creation and removal, submission remove/approve, and the moderator
// invitation inbox flow.
//
// The Client interface is what the moderation engine consumes; APIClient is
// the live HTTP implementation and MockClient is an in-memory fake for tests.
package reddit

import (
	"context"
	"errors"
	"time"
)

// ErrNoInvite indicates the platform reported NO_INVITE_FOUND when accepting
// a moderator invitation. Callers are expected to treat this as non-fatal.
var ErrNoInvite = errors.New("no moderator invitation found")

// ErrNotFound indicates the requested thing does not exist (or is not
// visible to the authenticated account).
var ErrNotFound = errors.New("thing not found")

// Submission is a read-only snapshot of a post, fetched fresh for every
// decision. Flair and age are both time-sensitive, so snapshots must not be
// cached across decision cycles.
type Submission struct {
	// ID is the base36 identifier, without the "t3_" fullname prefix.
	ID        string
	Subreddit string
	Author    string
	Title     string
	CreatedAt time.Time
	// LinkFlairText is empty when the submission has no flair.
	LinkFlairText string
	// Deleted is set when the author has deleted the submission.
	Deleted bool
}

// Flaired reports whether the submission carries a flair.
func (s *Submission) Flaired() bool {
	return s.LinkFlairText != ""
}

// Message is an inbox item, possibly a moderator invitation.
type Message struct {
	// ID is the base36 identifier, without the "t4_" fullname prefix.
	ID   string
	Body string
	// Subreddit is empty when the message is not associated with one.
	Subreddit string
	Author    string
}

// Moderator is one entry of a subreddit's moderator list.
type Moderator struct {
	Name        string
	Permissions []string
}

// HasPermission reports whether the named mod permission was granted.
func (m *Moderator) HasPermission(perm string) bool {
	for _, p := range m.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Client is the platform boundary the moderation engine depends on. Every
// method is a synchronous call against the live platform; transient failures
// are returned unmodified so the caller's supervisory loop can restart.
type Client interface {
	// Me returns the authenticated account's username.
	Me(ctx context.Context) (string, error)

	// ModeratedSubreddits lists the display names of all subreddits the
	// authenticated account moderates.
	ModeratedSubreddits(ctx context.Context) ([]string, error)

	// ListNewSubmissions returns a subreddit's most recent submissions.
	//
	// Precondition relied on by callers: results are ordered newest first,
	// so a scan may stop at the first submission older than its horizon.
	ListNewSubmissions(ctx context.Context, subreddit string) ([]Submission, error)

	// FetchSubmission fetches the current state of a single submission.
	FetchSubmission(ctx context.Context, submissionID string) (*Submission, error)

	// CreateReply posts a top-level comment on a submission and returns the
	// new comment's ID.
	CreateReply(ctx context.Context, submissionID, text string) (string, error)

	// ReplyToMessage posts a reply to an inbox message.
	ReplyToMessage(ctx context.Context, messageID, text string) error

	// DeleteComment deletes one of the authenticated account's own comments.
	DeleteComment(ctx context.Context, commentID string) error

	// RemoveSubmission removes a submission from public view (mod action,
	// reversible via ApproveSubmission). Idempotent.
	RemoveSubmission(ctx context.Context, submissionID string) error

	// ApproveSubmission restores a removed submission. Idempotent.
	ApproveSubmission(ctx context.Context, submissionID string) error

	// RemoveComment removes a comment from public view (mod action).
	// Idempotent against already-removed comments.
	RemoveComment(ctx context.Context, commentID string) error

	// FetchReplyTree returns the IDs of every comment nested under the given
	// comment, with collapsed continuations expanded. The root comment
	// itself is not included.
	FetchReplyTree(ctx context.Context, submissionID, commentID string) ([]string, error)

	// ListUnreadInbox returns up to limit unread inbox messages.
	ListUnreadInbox(ctx context.Context, limit int) ([]Message, error)

	// MarkRead marks an inbox message as read.
	MarkRead(ctx context.Context, messageID string) error

	// AcceptModeratorInvite accepts a pending moderator invitation for the
	// subreddit. Returns ErrNoInvite when the platform reports that no
	// invitation exists.
	AcceptModeratorInvite(ctx context.Context, subreddit string) error

	// ListModerators returns the subreddit's moderator list with granted
	// permission sets.
	ListModerators(ctx context.Context, subreddit string) ([]Moderator, error)

	// LeaveModerator resigns the authenticated account's moderator role.
	LeaveModerator(ctx context.Context, subreddit string) error
}
