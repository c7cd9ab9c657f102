package reddit

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockClient is an in-memory Client for tests. Helper methods seed platform
// state and inspect the actions the code under test performed.
type MockClient struct {
	lk sync.Mutex

	Username string

	subs      map[string]*Submission
	bySub     map[string][]string // subreddit -> submission IDs
	removed   map[string]bool     // submission ID -> removed from view
	approvals []string

	comments    map[string]*mockComment
	nextComment int

	inbox      []Message
	read       map[string]bool
	invites    map[string]bool
	moderators map[string][]Moderator
	left       []string
	msgReplies map[string][]string
}

type mockComment struct {
	id           string
	submissionID string
	parentID     string // empty for top-level comments
	children     []string
	removed      bool
	deleted      bool
}

func NewMockClient(username string) *MockClient {
	return &MockClient{
		Username:   username,
		subs:       make(map[string]*Submission),
		bySub:      make(map[string][]string),
		removed:    make(map[string]bool),
		comments:   make(map[string]*mockComment),
		read:       make(map[string]bool),
		invites:    make(map[string]bool),
		moderators: make(map[string][]Moderator),
		msgReplies: make(map[string][]string),
	}
}

var _ Client = (*MockClient)(nil)

// AddSubreddit registers a moderated subreddit with the given moderator list.
func (m *MockClient) AddSubreddit(name string, mods ...Moderator) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if _, ok := m.bySub[name]; !ok {
		m.bySub[name] = []string{}
	}
	m.moderators[name] = mods
}

// SetModerators sets a subreddit's moderator list without registering it as
// moderated (the state before an invitation is accepted).
func (m *MockClient) SetModerators(name string, mods ...Moderator) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.moderators[name] = mods
}

// AddSubmission seeds a submission into its subreddit's listing.
func (m *MockClient) AddSubmission(sub Submission) {
	m.lk.Lock()
	defer m.lk.Unlock()
	s := sub
	m.subs[sub.ID] = &s
	m.bySub[sub.Subreddit] = append(m.bySub[sub.Subreddit], sub.ID)
}

// SetFlair applies a flair to an existing submission.
func (m *MockClient) SetFlair(submissionID, flair string) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if s, ok := m.subs[submissionID]; ok {
		s.LinkFlairText = flair
	}
}

// MarkDeleted simulates the author deleting their submission.
func (m *MockClient) MarkDeleted(submissionID string) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if s, ok := m.subs[submissionID]; ok {
		s.Deleted = true
		s.Author = "[deleted]"
	}
}

// AddChildComment seeds a user reply beneath an existing comment and returns
// its ID.
func (m *MockClient) AddChildComment(parentCommentID string) string {
	m.lk.Lock()
	defer m.lk.Unlock()
	parent, ok := m.comments[parentCommentID]
	if !ok {
		panic(fmt.Sprintf("mock: no such comment %s", parentCommentID))
	}
	id := m.newCommentIDLocked()
	m.comments[id] = &mockComment{id: id, submissionID: parent.submissionID, parentID: parentCommentID}
	parent.children = append(parent.children, id)
	return id
}

// AddInvite registers a pending moderator invitation for the subreddit.
func (m *MockClient) AddInvite(subreddit string) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.invites[subreddit] = true
}

// AddInboxMessage seeds an unread inbox message.
func (m *MockClient) AddInboxMessage(msg Message) {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.inbox = append(m.inbox, msg)
}

// SubmissionRemoved reports whether the submission is currently removed.
func (m *MockClient) SubmissionRemoved(submissionID string) bool {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.removed[submissionID]
}

// CommentRemoved reports whether the comment was removed by a mod action.
func (m *MockClient) CommentRemoved(commentID string) bool {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.comments[commentID]
	return ok && c.removed
}

// CommentDeleted reports whether the comment was deleted by its author.
func (m *MockClient) CommentDeleted(commentID string) bool {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.comments[commentID]
	return ok && c.deleted
}

// CommentsOn returns the IDs of all live (not author-deleted) top-level
// comments on a submission.
func (m *MockClient) CommentsOn(submissionID string) []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	var ids []string
	for _, c := range m.comments {
		if c.submissionID == submissionID && c.parentID == "" && !c.deleted {
			ids = append(ids, c.id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Approvals returns the submissions approved, in order.
func (m *MockClient) Approvals() []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]string{}, m.approvals...)
}

// LeftSubreddits returns the subreddits whose moderator role was resigned.
func (m *MockClient) LeftSubreddits() []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]string{}, m.left...)
}

// RepliesToMessage returns the reply bodies sent to an inbox message.
func (m *MockClient) RepliesToMessage(messageID string) []string {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]string{}, m.msgReplies[messageID]...)
}

// PendingInvite reports whether an invitation is still outstanding.
func (m *MockClient) PendingInvite(subreddit string) bool {
	m.lk.Lock()
	defer m.lk.Unlock()
	return m.invites[subreddit]
}

func (m *MockClient) newCommentIDLocked() string {
	m.nextComment++
	return fmt.Sprintf("c%d", m.nextComment)
}

func (m *MockClient) Me(ctx context.Context) (string, error) {
	return m.Username, nil
}

func (m *MockClient) ModeratedSubreddits(ctx context.Context) ([]string, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	var names []string
	for name := range m.bySub {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockClient) ListNewSubmissions(ctx context.Context, subreddit string) ([]Submission, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	var subs []Submission
	for _, id := range m.bySub[subreddit] {
		subs = append(subs, *m.subs[id])
	}
	// listings are newest first
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}

func (m *MockClient) FetchSubmission(ctx context.Context, submissionID string) (*Submission, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	s, ok := m.subs[submissionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockClient) CreateReply(ctx context.Context, submissionID, text string) (string, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	if _, ok := m.subs[submissionID]; !ok {
		return "", ErrNotFound
	}
	id := m.newCommentIDLocked()
	m.comments[id] = &mockComment{id: id, submissionID: submissionID}
	return id, nil
}

func (m *MockClient) ReplyToMessage(ctx context.Context, messageID, text string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.msgReplies[messageID] = append(m.msgReplies[messageID], text)
	return nil
}

func (m *MockClient) DeleteComment(ctx context.Context, commentID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.comments[commentID]
	if !ok {
		return ErrNotFound
	}
	c.deleted = true
	return nil
}

func (m *MockClient) RemoveSubmission(ctx context.Context, submissionID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if _, ok := m.subs[submissionID]; !ok {
		return ErrNotFound
	}
	m.removed[submissionID] = true
	return nil
}

func (m *MockClient) ApproveSubmission(ctx context.Context, submissionID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if _, ok := m.subs[submissionID]; !ok {
		return ErrNotFound
	}
	m.removed[submissionID] = false
	m.approvals = append(m.approvals, submissionID)
	return nil
}

func (m *MockClient) RemoveComment(ctx context.Context, commentID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	c, ok := m.comments[commentID]
	if !ok {
		return ErrNotFound
	}
	c.removed = true
	return nil
}

func (m *MockClient) FetchReplyTree(ctx context.Context, submissionID, commentID string) ([]string, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	root, ok := m.comments[commentID]
	if !ok {
		return nil, ErrNotFound
	}
	var ids []string
	queue := append([]string{}, root.children...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ids = append(ids, id)
		if c, ok := m.comments[id]; ok {
			queue = append(queue, c.children...)
		}
	}
	return ids, nil
}

func (m *MockClient) ListUnreadInbox(ctx context.Context, limit int) ([]Message, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	var msgs []Message
	for _, msg := range m.inbox {
		if m.read[msg.ID] {
			continue
		}
		msgs = append(msgs, msg)
		if len(msgs) >= limit {
			break
		}
	}
	return msgs, nil
}

func (m *MockClient) MarkRead(ctx context.Context, messageID string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.read[messageID] = true
	return nil
}

func (m *MockClient) AcceptModeratorInvite(ctx context.Context, subreddit string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	if !m.invites[subreddit] {
		return ErrNoInvite
	}
	delete(m.invites, subreddit)
	if _, ok := m.bySub[subreddit]; !ok {
		m.bySub[subreddit] = []string{}
	}
	return nil
}

func (m *MockClient) ListModerators(ctx context.Context, subreddit string) ([]Moderator, error) {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]Moderator{}, m.moderators[subreddit]...), nil
}

func (m *MockClient) LeaveModerator(ctx context.Context, subreddit string) error {
	m.lk.Lock()
	defer m.lk.Unlock()
	m.left = append(m.left, subreddit)
	var keep []Moderator
	for _, mod := range m.moderators[subreddit] {
		if mod.Name != m.Username {
			keep = append(keep, mod)
		}
	}
	m.moderators[subreddit] = keep
	delete(m.bySub, subreddit)
	return nil
}
