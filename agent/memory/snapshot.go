// Package memory holds the durable per-conversation state the decision
// engine reads and writes.
package memory

import (
	"time"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

// DecisionEvent is one immutable timeline entry; exactly one is appended
// per turn.
type DecisionEvent struct {
	Intent      contractx.Intent `json:"intent"`
	Action      contractx.Action `json:"action"`
	Message     string           `json:"message"`
	ToolSuccess bool             `json:"tool_success"`
	Timestamp   time.Time        `json:"timestamp"`
}

// ConversationSnapshot is the full memory state for one conversation_id.
// Slots persist across turns until a reset; RequiredSlots is recomputed
// every turn as a projection of the current intent's requirements; the
// timeline is append-only and survives resets for audit.
type ConversationSnapshot struct {
	ConversationID string            `json:"conversation_id"`
	Slots          map[string]string `json:"slots,omitempty"`
	RequiredSlots  map[string]bool   `json:"required_slots,omitempty"`
	Timeline       []DecisionEvent   `json:"timeline,omitempty"`
	ToolSuccess    bool              `json:"tool_success"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func NewConversationSnapshot(conversationID string, now time.Time) *ConversationSnapshot {
	return &ConversationSnapshot{
		ConversationID: conversationID,
		Slots:          make(map[string]string, 4),
		RequiredSlots:  make(map[string]bool, 2),
		ToolSuccess:    true,
		UpdatedAt:      now.UTC(),
	}
}

func (s *ConversationSnapshot) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureMaps makes sure the slot maps are initialized, e.g. after decoding
// a stored snapshot that omitted empty fields.
func (s *ConversationSnapshot) EnsureMaps() {
	if s.Slots == nil {
		s.Slots = make(map[string]string, 4)
	}
	if s.RequiredSlots == nil {
		s.RequiredSlots = make(map[string]bool, 2)
	}
}

// UpsertSlots merges the provided updates; last write wins per key, keys not
// mentioned are left untouched.
func (s *ConversationSnapshot) UpsertSlots(updates map[string]string) {
	s.EnsureMaps()
	for k, v := range updates {
		s.Slots[k] = v
	}
}

// SetRequiredSlots replaces the requirement projection for the current turn.
// It never accumulates requirements from a previous intent.
func (s *ConversationSnapshot) SetRequiredSlots(required map[string]bool) {
	s.RequiredSlots = make(map[string]bool, len(required))
	for k, v := range required {
		s.RequiredSlots[k] = v
	}
}

// AppendEvent adds a timeline entry. Prior entries are never mutated,
// reordered, or deduplicated.
func (s *ConversationSnapshot) AppendEvent(ev DecisionEvent) {
	s.Timeline = append(s.Timeline, ev)
}

// Clear wipes slot state as if the conversation were new. The conversation
// id and timeline are retained.
func (s *ConversationSnapshot) Clear() {
	s.Slots = make(map[string]string, 4)
	s.RequiredSlots = make(map[string]bool, 2)
	s.ToolSuccess = true
}

// Clone returns a deep copy so callers can mutate without racing the store.
func (s *ConversationSnapshot) Clone() *ConversationSnapshot {
	if s == nil {
		return nil
	}
	clone := &ConversationSnapshot{
		ConversationID: s.ConversationID,
		Slots:          make(map[string]string, len(s.Slots)),
		RequiredSlots:  make(map[string]bool, len(s.RequiredSlots)),
		Timeline:       append([]DecisionEvent(nil), s.Timeline...),
		ToolSuccess:    s.ToolSuccess,
		UpdatedAt:      s.UpdatedAt,
	}
	for k, v := range s.Slots {
		clone.Slots[k] = v
	}
	for k, v := range s.RequiredSlots {
		clone.RequiredSlots[k] = v
	}
	return clone
}
