package memory

import "sync"

// ConversationLocker serializes turns per conversation_id. Duplicate or
// retried turns for the same conversation run one at a time; turns for
// different conversations never contend.
type ConversationLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewConversationLocker() *ConversationLocker {
	return &ConversationLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the conversation's mutex and returns its unlock func.
func (l *ConversationLocker) Lock(conversationID string) func() {
	l.mu.Lock()
	m, ok := l.locks[conversationID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[conversationID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
