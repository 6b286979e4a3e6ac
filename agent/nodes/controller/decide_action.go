package controllernode

import (
	"fmt"
	"strings"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

const (
	fallbackReply = "Hi! I can help with drinkware products, outlet information, or quick calculations. What would you like to do?"
	resetReply    = "Okay, I've cleared our conversation. How can I help you today?"
	greetingReply = "Hi there! Ask me about drinkware products, outlet hours, or give me a quick calculation."
	thanksReply   = "You're welcome! Anything else I can help with?"
)

var followUpPrompts = map[string]string{
	"operation":    "What would you like me to calculate? For example: 2 + 3 * 4.",
	"product_type": "Which drinkware are you interested in? A tumbler, mug, cup, or bottle?",
	"location":     "Which area should I check for outlets? For example Petaling Jaya or Kuala Lumpur.",
}

// DecideAction turns the classified intent and the merged slot view into
// exactly one action plus, for non-tool actions, the final reply text.
func DecideAction(in *GraphState, fallbackThreshold float64) (*GraphState, error) {
	if in == nil || in.Snapshot == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	in.MergedSlots = mergeSlots(in.Snapshot.Slots, in.SlotUpdates)
	in.RequiredSlots = map[string]bool{}

	switch {
	case in.Intent == contractx.IntentReset:
		in.Action = contractx.ActionFinish
		in.Message = resetReply

	case in.HasDef && in.Definition.HasTool() && in.Confidence >= fallbackThreshold:
		// required_slots carries the satisfaction projection: true means the
		// slot is present and non-empty for the current intent.
		slot := in.Definition.RequiredSlot
		if strings.TrimSpace(in.MergedSlots[slot]) == "" {
			in.RequiredSlots[slot] = false
			in.Action = contractx.ActionAskFollowUp
			in.Message = followUpPrompts[slot]
		} else {
			in.RequiredSlots[slot] = true
			in.Action = in.Definition.ToolAction
		}

	case in.Intent == contractx.IntentSmallTalk && in.Confidence >= fallbackThreshold:
		in.Action = contractx.ActionFallback
		in.Message = smallTalkReply(in.Content)

	default:
		in.Action = contractx.ActionFallback
		in.Message = fallbackReply
	}

	return in, nil
}

func mergeSlots(existing, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(updates))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

func smallTalkReply(content string) string {
	if strings.Contains(strings.ToLower(content), "thank") {
		return thanksReply
	}
	return greetingReply
}
