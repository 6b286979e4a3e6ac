package controllernode

import (
	"strings"
	"testing"
	"time"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/intent"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
)

const testThreshold = 0.6

func newState(t *testing.T, content string) *GraphState {
	t.Helper()

	st, err := ValidateTurn(GraphInput{ConversationID: "conv-1", Content: content}, time.Now)
	if err != nil {
		t.Fatalf("ValidateTurn() error = %v", err)
	}
	st.Snapshot = memoryx.NewConversationSnapshot("conv-1", time.Now())
	st.SlotUpdates = map[string]string{}
	return st
}

func classify(t *testing.T, st *GraphState, it contractx.Intent, confidence float64) {
	t.Helper()

	st.Intent = it
	st.Confidence = confidence
	st.Definition, st.HasDef = intent.Lookup(it)
}

func TestDecideToolCallWhenSlotFilled(t *testing.T) {
	t.Parallel()

	st := newState(t, "calc 5 * 7")
	classify(t, st, contractx.IntentCalculate, 0.9)
	st.SlotUpdates = map[string]string{"operation": "5 * 7"}

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.Action != contractx.ActionCallCalculator {
		t.Fatalf("Action = %s, want call_calculator", st.Action)
	}
	if !st.RequiredSlots["operation"] {
		t.Fatal("operation must be marked satisfied once filled")
	}
}

func TestDecideAsksFollowUpForMissingSlot(t *testing.T) {
	t.Parallel()

	st := newState(t, "what outlets do you have")
	classify(t, st, contractx.IntentOutletInfo, 0.9)

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.Action != contractx.ActionAskFollowUp {
		t.Fatalf("Action = %s, want ask_follow_up", st.Action)
	}
	if satisfied, ok := st.RequiredSlots["location"]; !ok || satisfied {
		t.Fatalf("RequiredSlots = %v, want location unsatisfied", st.RequiredSlots)
	}
	if !strings.Contains(st.Message, "area") {
		t.Fatalf("follow-up prompt %q does not name the missing detail", st.Message)
	}
}

func TestDecideUsesPersistedSlot(t *testing.T) {
	t.Parallel()

	st := newState(t, "any outlets open now?")
	st.Snapshot.Slots["location"] = "Petaling Jaya"
	classify(t, st, contractx.IntentOutletInfo, 0.9)

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.Action != contractx.ActionCallOutlets {
		t.Fatalf("Action = %s, want call_outlets", st.Action)
	}
	if st.MergedSlots["location"] != "Petaling Jaya" {
		t.Fatalf("merged location = %q", st.MergedSlots["location"])
	}
}

func TestDecideFreshSlotOverridesPersisted(t *testing.T) {
	t.Parallel()

	st := newState(t, "what about outlets in kl")
	st.Snapshot.Slots["location"] = "Petaling Jaya"
	classify(t, st, contractx.IntentOutletInfo, 0.9)
	st.SlotUpdates = map[string]string{"location": "Kuala Lumpur"}

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.MergedSlots["location"] != "Kuala Lumpur" {
		t.Fatalf("merged location = %q, want the fresh value", st.MergedSlots["location"])
	}
}

func TestDecideFallbackBelowThreshold(t *testing.T) {
	t.Parallel()

	st := newState(t, "qwerty asdf")
	classify(t, st, contractx.IntentUnknown, 0.4)

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.Action != contractx.ActionFallback {
		t.Fatalf("Action = %s, want fallback", st.Action)
	}
	if !strings.Contains(st.Message, "drinkware") {
		t.Fatalf("fallback message %q does not list capabilities", st.Message)
	}
}

func TestDecideSmallTalkFallsBackWithGreeting(t *testing.T) {
	t.Parallel()

	st := newState(t, "hello there")
	classify(t, st, contractx.IntentSmallTalk, 0.75)

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.Action != contractx.ActionFallback {
		t.Fatalf("Action = %s, want fallback", st.Action)
	}
	if st.Message == fallbackReply {
		t.Fatal("small talk should get a greeting, not the generic capability text")
	}
}

func TestDecideResetFinishes(t *testing.T) {
	t.Parallel()

	st := newState(t, "reset")
	st.Snapshot.Slots["location"] = "Petaling Jaya"
	classify(t, st, contractx.IntentReset, 0.9)

	if _, err := DecideAction(st, testThreshold); err != nil {
		t.Fatalf("DecideAction() error = %v", err)
	}
	if st.Action != contractx.ActionFinish {
		t.Fatalf("Action = %s, want finish", st.Action)
	}
	if !strings.Contains(st.Message, "cleared") {
		t.Fatalf("reset message %q does not confirm the wipe", st.Message)
	}
}

func TestClassifyResumesPendingSlot(t *testing.T) {
	t.Parallel()

	st := newState(t, "pj please")
	st.Snapshot.RequiredSlots = map[string]bool{"location": false}

	if _, err := ClassifyIntent(st, stubClassifier{intent: contractx.IntentUnknown, confidence: 0.4}); err != nil {
		t.Fatalf("ClassifyIntent() error = %v", err)
	}
	if st.Intent != contractx.IntentOutletInfo {
		t.Fatalf("Intent = %s, want outlet_info after resumption", st.Intent)
	}
	if st.Confidence < testThreshold {
		t.Fatalf("resumed confidence %v still below threshold", st.Confidence)
	}
}

func TestClassifyPromotesFollowUpPhrase(t *testing.T) {
	t.Parallel()

	st := newState(t, "anything else you can show me?")
	st.Snapshot.Slots["product_type"] = "tumbler"

	if _, err := ClassifyIntent(st, stubClassifier{intent: contractx.IntentSmallTalk, confidence: 0.75}); err != nil {
		t.Fatalf("ClassifyIntent() error = %v", err)
	}
	if st.Intent != contractx.IntentProductInfo {
		t.Fatalf("Intent = %s, want product_info after promotion", st.Intent)
	}
}

func TestClassifyNeverOverridesKeywordMatch(t *testing.T) {
	t.Parallel()

	st := newState(t, "calc 1 + 1")
	st.Snapshot.Slots["product_type"] = "tumbler"
	st.Snapshot.RequiredSlots = map[string]bool{"location": false}

	if _, err := ClassifyIntent(st, stubClassifier{intent: contractx.IntentCalculate, confidence: 0.9}); err != nil {
		t.Fatalf("ClassifyIntent() error = %v", err)
	}
	if st.Intent != contractx.IntentCalculate {
		t.Fatalf("Intent = %s, want calculate untouched", st.Intent)
	}
}

type stubClassifier struct {
	intent     contractx.Intent
	confidence float64
}

func (s stubClassifier) Classify(string) (contractx.Intent, float64) {
	return s.intent, s.confidence
}
