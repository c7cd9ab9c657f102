package trackstore

import (
	"context"
	"sort"
	"sync"
)

// MemStore is a map-backed Store for tests.
type MemStore struct {
	lk      sync.Mutex
	rows    map[string]string // submission ID -> agent reply ID
	replies map[string]bool   // reply IDs in use, for the uniqueness constraint
}

func NewMemStore() *MemStore {
	return &MemStore{
		rows:    make(map[string]string),
		replies: make(map[string]bool),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) Insert(ctx context.Context, submissionID, agentReplyID string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	if _, ok := s.rows[submissionID]; ok {
		return ErrAlreadyTracked
	}
	if s.replies[agentReplyID] {
		return ErrAlreadyTracked
	}
	s.rows[submissionID] = agentReplyID
	s.replies[agentReplyID] = true
	return nil
}

func (s *MemStore) Delete(ctx context.Context, submissionID string) error {
	s.lk.Lock()
	defer s.lk.Unlock()
	if replyID, ok := s.rows[submissionID]; ok {
		delete(s.replies, replyID)
		delete(s.rows, submissionID)
	}
	return nil
}

func (s *MemStore) Get(ctx context.Context, submissionID string) (*TrackedSubmission, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	replyID, ok := s.rows[submissionID]
	if !ok {
		return nil, nil
	}
	return &TrackedSubmission{SubmissionID: submissionID, AgentReplyID: replyID}, nil
}

func (s *MemStore) List(ctx context.Context) ([]TrackedSubmission, error) {
	s.lk.Lock()
	defer s.lk.Unlock()
	rows := make([]TrackedSubmission, 0, len(s.rows))
	for submissionID, replyID := range s.rows {
		rows = append(rows, TrackedSubmission{SubmissionID: submissionID, AgentReplyID: replyID})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].SubmissionID < rows[j].SubmissionID
	})
	return rows, nil
}
