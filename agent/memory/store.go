package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNilSnapshot    = errors.New("conversation snapshot is nil")
	ErrInvalidConvID  = errors.New("conversation id is empty")
	errSnapshotAbsent = errors.New("conversation snapshot not found")
)

// Store is the persistence contract the decision engine relies on.
// Get never fails on a missing conversation: it returns a fresh snapshot.
type Store interface {
	Get(ctx context.Context, conversationID string) (*ConversationSnapshot, error)
	Save(ctx context.Context, snap *ConversationSnapshot) error
	// Reset empties slot state while retaining the timeline. Resetting an
	// unknown conversation is a no-op.
	Reset(ctx context.Context, conversationID string) error
}

// InMemoryStore keeps snapshots for the process lifetime. Get and Save deal
// in deep copies so per-conversation writes apply to a total order under the
// engine's keyed lock.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*ConversationSnapshot
	now       func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[string]*ConversationSnapshot),
		now:       time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, conversationID string) (*ConversationSnapshot, error) {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return nil, ErrInvalidConvID
	}

	s.mu.RLock()
	snap, ok := s.snapshots[id]
	s.mu.RUnlock()
	if !ok {
		return NewConversationSnapshot(id, s.now()), nil
	}
	return snap.Clone(), nil
}

func (s *InMemoryStore) Save(_ context.Context, snap *ConversationSnapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	if strings.TrimSpace(snap.ConversationID) == "" {
		return ErrInvalidConvID
	}

	s.mu.Lock()
	s.snapshots[snap.ConversationID] = snap.Clone()
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) Reset(_ context.Context, conversationID string) error {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return ErrInvalidConvID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil
	}
	snap.Clear()
	snap.Touch(s.now())
	return nil
}

// Conversations lists known conversation ids (development helper).
func (s *InMemoryStore) Conversations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	return ids
}
