package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/intent"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
	"github.com/kopihaus/barista-agent/agent/slots"
)

type dispatchCall struct {
	action contractx.Action
	req    contractx.ToolRequest
}

type fakeDispatcher struct {
	results map[contractx.Action]contractx.ToolResult
	calls   []dispatchCall
}

func (f *fakeDispatcher) Dispatch(_ context.Context, action contractx.Action, req contractx.ToolRequest) contractx.ToolResult {
	f.calls = append(f.calls, dispatchCall{action: action, req: req})
	if result, ok := f.results[action]; ok {
		return result
	}
	return contractx.ToolResult{Success: true, Message: "ok", Data: map[string]any{}}
}

func newTestEngine(t *testing.T, dispatcher contractx.Dispatcher) (*Engine, *memoryx.InMemoryStore) {
	t.Helper()

	store := memoryx.NewInMemoryStore()
	eng, err := New(
		store,
		intent.NewClassifier(intent.Config{UnknownConfidence: 0.4}),
		slots.NewExtractor(),
		dispatcher,
		nil,
		Config{FallbackThreshold: 0.6},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng, store
}

func turn(id, content string) contractx.Turn {
	return contractx.Turn{ConversationID: id, Role: "user", Content: content}
}

func TestHandleTurnRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, &fakeDispatcher{})

	if _, err := eng.HandleTurn(context.Background(), turn("", "hello")); !errors.Is(err, contractx.ErrInvalidConversation) {
		t.Fatalf("empty conversation id: err = %v", err)
	}
	if _, err := eng.HandleTurn(context.Background(), turn("conv-1", "   ")); !errors.Is(err, contractx.ErrInvalidMessage) {
		t.Fatalf("empty content: err = %v", err)
	}
}

func TestHandleTurnCalculatorSlotFillAcrossTurns(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{results: map[contractx.Action]contractx.ToolResult{
		contractx.ActionCallCalculator: {Success: true, Message: "5", Data: map[string]any{"result": 5.0}},
	}}
	eng, _ := newTestEngine(t, dispatcher)
	ctx := context.Background()

	first, err := eng.HandleTurn(ctx, turn("conv-calc", "calc"))
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if first.Action != contractx.ActionAskFollowUp {
		t.Fatalf("turn 1 action = %s, want ask_follow_up", first.Action)
	}
	if satisfied, ok := first.RequiredSlots["operation"]; !ok || satisfied {
		t.Fatalf("turn 1 required_slots = %v, want operation unsatisfied", first.RequiredSlots)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatal("no tool may be called while the slot is missing")
	}

	second, err := eng.HandleTurn(ctx, turn("conv-calc", "2 + 3"))
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if second.Action != contractx.ActionCallCalculator {
		t.Fatalf("turn 2 action = %s, want call_calculator", second.Action)
	}
	if second.Message != "5" {
		t.Fatalf("turn 2 message = %q, want tool output", second.Message)
	}
	if len(dispatcher.calls) != 1 || dispatcher.calls[0].req.Slots["operation"] != "2 + 3" {
		t.Fatalf("dispatch calls = %+v", dispatcher.calls)
	}
}

func TestHandleTurnSlotsPersistAcrossSmallTalk(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	eng, _ := newTestEngine(t, dispatcher)
	ctx := context.Background()

	if _, err := eng.HandleTurn(ctx, turn("conv-prod", "show me tumblers")); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	greeting, err := eng.HandleTurn(ctx, turn("conv-prod", "thanks!"))
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if greeting.Intent != contractx.IntentSmallTalk || greeting.Action != contractx.ActionFallback {
		t.Fatalf("turn 2 = %s/%s, want small_talk/fallback", greeting.Intent, greeting.Action)
	}

	followUp, err := eng.HandleTurn(ctx, turn("conv-prod", "anything else?"))
	if err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if followUp.Action != contractx.ActionCallProducts {
		t.Fatalf("turn 3 action = %s, want call_products via topic promotion", followUp.Action)
	}
	if followUp.Slots["product_type"] != "tumbler" {
		t.Fatalf("turn 3 slots = %v, want persisted tumbler", followUp.Slots)
	}
}

func TestHandleTurnOutletFollowUpThenAnswer(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	eng, _ := newTestEngine(t, dispatcher)
	ctx := context.Background()

	first, err := eng.HandleTurn(ctx, turn("conv-out", "what are your outlet hours"))
	if err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if first.Action != contractx.ActionAskFollowUp {
		t.Fatalf("turn 1 action = %s, want ask_follow_up", first.Action)
	}
	if satisfied, ok := first.RequiredSlots["location"]; !ok || satisfied {
		t.Fatalf("turn 1 required_slots = %v, want location unsatisfied", first.RequiredSlots)
	}

	second, err := eng.HandleTurn(ctx, turn("conv-out", "pj"))
	if err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if second.Action != contractx.ActionCallOutlets {
		t.Fatalf("turn 2 action = %s, want call_outlets", second.Action)
	}
	if second.Slots["location"] != "Petaling Jaya" {
		t.Fatalf("turn 2 location = %q, want canonical Petaling Jaya", second.Slots["location"])
	}
}

func TestHandleTurnResetClearsSlotsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	eng, store := newTestEngine(t, dispatcher)
	ctx := context.Background()

	if _, err := eng.HandleTurn(ctx, turn("conv-reset", "outlets in pj")); err != nil {
		t.Fatalf("seed turn: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := eng.HandleTurn(ctx, turn("conv-reset", "reset"))
		if err != nil {
			t.Fatalf("reset turn %d: %v", i+1, err)
		}
		if result.Intent != contractx.IntentReset || result.Action != contractx.ActionFinish {
			t.Fatalf("reset turn %d = %s/%s", i+1, result.Intent, result.Action)
		}
		if len(result.Slots) != 0 {
			t.Fatalf("reset turn %d slots = %v, want empty", i+1, result.Slots)
		}
	}

	snap, err := store.Get(ctx, "conv-reset")
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if len(snap.Slots) != 0 {
		t.Fatalf("persisted slots = %v, want cleared", snap.Slots)
	}
	if len(snap.Timeline) != 3 {
		t.Fatalf("timeline has %d events, want 3 (reset keeps history)", len(snap.Timeline))
	}
}

func TestHandleTurnToolFailureIsRecordedNotRaised(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{results: map[contractx.Action]contractx.ToolResult{
		contractx.ActionCallOutlets: {
			Success: false,
			Message: "I ran into an issue calling that tool. Could you try again later?",
			Data:    map[string]any{},
		},
	}}
	eng, store := newTestEngine(t, dispatcher)
	ctx := context.Background()

	result, err := eng.HandleTurn(ctx, turn("conv-fail", "outlets in pj"))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if result.ToolSuccess {
		t.Fatal("tool failure must surface as ToolSuccess=false")
	}
	if !strings.Contains(result.Message, "try again later") {
		t.Fatalf("message = %q, want the friendly failure text", result.Message)
	}

	snap, err := store.Get(ctx, "conv-fail")
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if snap.ToolSuccess {
		t.Fatal("snapshot must record the failed tool call")
	}
	if snap.Slots["location"] != "Petaling Jaya" {
		t.Fatal("extracted slots must persist even when the tool fails")
	}
}

func TestHandleTurnUnknownFallsBack(t *testing.T) {
	t.Parallel()

	eng, _ := newTestEngine(t, &fakeDispatcher{})

	result, err := eng.HandleTurn(context.Background(), turn("conv-unknown", "qwerty zzz"))
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if result.Intent != contractx.IntentUnknown || result.Action != contractx.ActionFallback {
		t.Fatalf("got %s/%s, want unknown/fallback", result.Intent, result.Action)
	}
}

func TestHandleTurnAppendsOneTimelineEventPerTurn(t *testing.T) {
	t.Parallel()

	eng, store := newTestEngine(t, &fakeDispatcher{})
	ctx := context.Background()

	inputs := []string{"hello", "show me mugs", "reset"}
	for _, content := range inputs {
		if _, err := eng.HandleTurn(ctx, turn("conv-timeline", content)); err != nil {
			t.Fatalf("turn %q: %v", content, err)
		}
	}

	snap, err := store.Get(ctx, "conv-timeline")
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if len(snap.Timeline) != len(inputs) {
		t.Fatalf("timeline has %d events, want %d", len(snap.Timeline), len(inputs))
	}
	for i := 1; i < len(snap.Timeline); i++ {
		if snap.Timeline[i].Timestamp.Before(snap.Timeline[i-1].Timestamp) {
			t.Fatal("timeline timestamps must be non-decreasing")
		}
	}
}
