// Package controllernode holds the per-step functions of the turn-handling
// graph. Each node takes the graph state, does one thing, and hands the state
// on; the graph wiring lives in the engine package.
package controllernode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/intent"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
)

type GraphInput struct {
	ConversationID string
	Content        string
}

type GraphState struct {
	ConversationID string
	Content        string
	Now            time.Time

	Snapshot   *memoryx.ConversationSnapshot
	Intent     contractx.Intent
	Confidence float64
	Definition intent.Definition
	HasDef     bool

	SlotUpdates   map[string]string
	MergedSlots   map[string]string
	RequiredSlots map[string]bool

	Action  contractx.Action
	Message string
	Tool    contractx.ToolResult
}

func ValidateTurn(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	conversationID := strings.TrimSpace(in.ConversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("%w: conversation id", contractx.ErrInvalidConversation)
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content", contractx.ErrInvalidMessage)
	}

	return &GraphState{
		ConversationID: conversationID,
		Content:        content,
		Now:            nowFn().UTC(),
	}, nil
}
