package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/flairmod/flairmod/reddit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackRemoved seeds a submission already in the removed-pending-flair
// state, as if intake had processed it on an earlier pass.
func trackRemoved(t *testing.T, eng *Engine, client *reddit.MockClient, sub reddit.Submission) string {
	t.Helper()
	ctx := context.Background()
	client.AddSubmission(sub)
	replyID, err := client.CreateReply(ctx, sub.ID, provisionalNotice(eng.Policy.GracePeriod, sub.Subreddit))
	require.NoError(t, err)
	require.NoError(t, eng.Store.Insert(ctx, sub.ID, replyID))
	require.NoError(t, client.RemoveSubmission(ctx, sub.ID))
	return replyID
}

func TestSweepRestoresFlaired(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	replyID := trackRemoved(t, eng, client, reddit.Submission{
		ID:        "s1",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-time.Hour),
	})
	child := client.AddChildComment(replyID)
	grandchild := client.AddChildComment(child)

	client.SetFlair("s1", "Discussion")
	assert.NoError(eng.ReconcileTracked(ctx))

	row, err := eng.Store.Get(ctx, "s1")
	assert.NoError(err)
	assert.Nil(row)
	assert.Equal([]string{"s1"}, client.Approvals())
	assert.False(client.SubmissionRemoved("s1"))
	assert.True(client.CommentRemoved(replyID))
	assert.True(client.CommentRemoved(child))
	assert.True(client.CommentRemoved(grandchild))
}

func TestSweepExpiresPastDeadline(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	replyID := trackRemoved(t, eng, client, reddit.Submission{
		ID:        "s2",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-25 * time.Hour),
	})

	assert.NoError(eng.ReconcileTracked(ctx))

	row, err := eng.Store.Get(ctx, "s2")
	assert.NoError(err)
	assert.Nil(row)
	assert.True(client.SubmissionRemoved("s2"))
	assert.Empty(client.Approvals())
	assert.True(client.CommentRemoved(replyID))

	// the deadline notice is posted and left standing
	comments := client.CommentsOn("s2")
	require.Equal(t, 2, len(comments))
	for _, id := range comments {
		if id != replyID {
			assert.False(client.CommentRemoved(id))
		}
	}
}

func TestSweepLeavesPending(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	replyID := trackRemoved(t, eng, client, reddit.Submission{
		ID:        "s3",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-time.Hour),
	})

	assert.NoError(eng.ReconcileTracked(ctx))

	row, err := eng.Store.Get(ctx, "s3")
	assert.NoError(err)
	require.NotNil(t, row)
	assert.True(client.SubmissionRemoved("s3"))
	assert.False(client.CommentRemoved(replyID))
	assert.Empty(client.Approvals())
}

// Flair wins over the deadline: a submission flaired at the last possible
// moment is restored, not permanently removed.
func TestSweepFlairBeatsDeadline(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	trackRemoved(t, eng, client, reddit.Submission{
		ID:        "s4",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-25 * time.Hour),
	})

	client.SetFlair("s4", "Help")
	assert.NoError(eng.ReconcileTracked(ctx))

	assert.Equal([]string{"s4"}, client.Approvals())
	assert.False(client.SubmissionRemoved("s4"))
}

func TestSweepDropsAuthorDeleted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	replyID := trackRemoved(t, eng, client, reddit.Submission{
		ID:        "s5",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-time.Hour),
	})

	client.MarkDeleted("s5")
	assert.NoError(eng.ReconcileTracked(ctx))

	row, err := eng.Store.Get(ctx, "s5")
	assert.NoError(err)
	assert.Nil(row)
	assert.True(client.CommentRemoved(replyID))
	assert.Empty(client.Approvals())
}

// A second sweep over a submission that already exited tracking is a no-op.
func TestSweepIdempotent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	trackRemoved(t, eng, client, reddit.Submission{
		ID:        "s6",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-time.Hour),
	})

	client.SetFlair("s6", "Discussion")
	assert.NoError(eng.ReconcileTracked(ctx))
	assert.NoError(eng.ReconcileTracked(ctx))

	assert.Equal([]string{"s6"}, client.Approvals())
}

// Full lifecycle: intake removes an unflaired submission, the author flairs
// it before the deadline, and the next sweep restores it with the agent's
// comment subtree fully removed.
func TestLifecycleRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, client := EngineTestFixture(testNow)
	client.AddSubmission(reddit.Submission{
		ID:        "s7",
		Subreddit: "golang",
		CreatedAt: testNow.Add(-5 * time.Minute),
	})

	assert.NoError(eng.CheckNewSubmissions(ctx))
	assert.True(client.SubmissionRemoved("s7"))
	row, err := eng.Store.Get(ctx, "s7")
	assert.NoError(err)
	require.NotNil(t, row)
	child := client.AddChildComment(row.AgentReplyID)

	client.SetFlair("s7", "Discussion")
	assert.NoError(eng.ReconcileTracked(ctx))

	assert.False(client.SubmissionRemoved("s7"))
	assert.Equal([]string{"s7"}, client.Approvals())
	assert.True(client.CommentRemoved(row.AgentReplyID))
	assert.True(client.CommentRemoved(child))
	rows, err := eng.Store.List(ctx)
	assert.NoError(err)
	assert.Empty(rows)
}
