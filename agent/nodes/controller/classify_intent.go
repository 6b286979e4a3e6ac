package controllernode

import (
	"fmt"
	"strings"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/intent"
)

// followUpPhrases promote a vague continuation onto the topic the user was
// already discussing, provided memory still holds that topic's slot.
var followUpPhrases = []string{
	"anything else",
	"show me more",
	"what about",
	"how about",
	"more option",
}

// ClassifyIntent runs the pure keyword classifier, then layers conversation
// context on top: an unanswered follow-up question claims the next low-signal
// utterance, and continuation phrases reattach to the previous topic. Fresh
// keyword matches and resets are never overridden.
func ClassifyIntent(in *GraphState, classifier contractx.Classifier) (*GraphState, error) {
	if in == nil || in.Snapshot == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	in.Intent, in.Confidence = classifier.Classify(in.Content)
	in.Definition, in.HasDef = intent.Lookup(in.Intent)

	if in.Intent == contractx.IntentUnknown {
		resumePendingSlot(in)
	}
	if in.Intent == contractx.IntentUnknown || in.Intent == contractx.IntentSmallTalk {
		promoteFollowUp(in)
	}
	return in, nil
}

// resumePendingSlot treats an unclassifiable utterance as the answer to the
// follow-up question asked on the previous turn, if one is still pending.
// A pending slot is a required_slots entry still marked unsatisfied.
func resumePendingSlot(in *GraphState) {
	for slot, satisfied := range in.Snapshot.RequiredSlots {
		if satisfied {
			continue
		}
		if def, ok := definitionForSlot(slot); ok {
			adoptDefinition(in, def)
			return
		}
	}
}

func promoteFollowUp(in *GraphState) {
	if !containsFollowUpPhrase(in.Content) {
		return
	}

	for _, slot := range []string{"product_type", "location"} {
		if strings.TrimSpace(in.Snapshot.Slots[slot]) == "" {
			continue
		}
		if def, ok := definitionForSlot(slot); ok {
			adoptDefinition(in, def)
			return
		}
	}
}

func definitionForSlot(slot string) (intent.Definition, bool) {
	for _, def := range intent.Definitions() {
		if def.RequiredSlot == slot && def.HasTool() {
			return def, true
		}
	}
	return intent.Definition{}, false
}

func adoptDefinition(in *GraphState, def intent.Definition) {
	in.Intent = def.Intent
	in.Confidence = def.Confidence
	in.Definition = def
	in.HasDef = true
}

func containsFollowUpPhrase(content string) bool {
	lowered := strings.ToLower(content)
	for _, phrase := range followUpPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
