package controllernode

import (
	"context"
	"fmt"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
)

// PersistState applies the turn's slot writes to the snapshot, appends the
// timeline entry, and saves. A reset wipes slot state first, so the saved
// snapshot is already the post-reset one; the timeline survives either way.
func PersistState(ctx context.Context, in *GraphState, store memoryx.Store) (*GraphState, error) {
	if in == nil || in.Snapshot == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	if in.Intent == contractx.IntentReset {
		in.Snapshot.Clear()
		in.MergedSlots = map[string]string{}
	} else {
		in.Snapshot.UpsertSlots(in.SlotUpdates)
		in.Snapshot.SetRequiredSlots(in.RequiredSlots)
		in.Snapshot.ToolSuccess = in.Tool.Success
	}

	in.Snapshot.AppendEvent(memoryx.DecisionEvent{
		Intent:      in.Intent,
		Action:      in.Action,
		Message:     in.Message,
		ToolSuccess: in.Tool.Success,
		Timestamp:   in.Now,
	})
	in.Snapshot.Touch(in.Now)

	if err := store.Save(ctx, in.Snapshot); err != nil {
		return nil, fmt.Errorf("save conversation snapshot: %w", err)
	}
	return in, nil
}
