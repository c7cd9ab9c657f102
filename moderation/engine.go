// Package moderation implements the submission lifecycle engine: unflaired
// submissions are provisionally removed after a short grace period, restored
// when flaired, and permanently removed after a deadline.
//
// Every pass re-derives its decisions from current platform and store state,
// so any step may be safely re-run after a crash. Transient platform errors
// are returned unmodified for the caller's supervisory loop to handle.
package moderation

import (
	"log/slog"
	"time"

	"github.com/flairmod/flairmod/moderation/trackstore"
	"github.com/flairmod/flairmod/reddit"
)

// Engine drives the submission lifecycle across all moderated subreddits.
//
// All fields must be set except Logger and Now, which default to
// slog.Default and time.Now.
type Engine struct {
	Logger *slog.Logger
	Client reddit.Client
	Store  trackstore.Store
	Policy Policy
	// Username is the agent's own account name, used to find its permission
	// grant in moderator lists.
	Username string
	// Now is the clock; tests override it.
	Now func() time.Time
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
