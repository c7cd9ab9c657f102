package moderation

import (
	"log/slog"
	"time"

	"github.com/flairmod/flairmod/moderation/trackstore"
	"github.com/flairmod/flairmod/reddit"
)

const testUsername = "flairmod"

// EngineTestFixture returns an engine wired to an in-memory store and mock
// client, moderating one subreddit, with a frozen clock.
func EngineTestFixture(now time.Time) (*Engine, *reddit.MockClient) {
	client := reddit.NewMockClient(testUsername)
	client.AddSubreddit("golang", reddit.Moderator{Name: testUsername, Permissions: []string{"all"}})
	eng := &Engine{
		Logger:   slog.Default(),
		Client:   client,
		Store:    trackstore.NewMemStore(),
		Policy:   DefaultPolicy(),
		Username: testUsername,
		Now:      func() time.Time { return now },
	}
	return eng, client
}
