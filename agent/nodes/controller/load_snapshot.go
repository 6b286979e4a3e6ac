package controllernode

import (
	"context"
	"fmt"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
)

func LoadSnapshot(ctx context.Context, in *GraphState, store memoryx.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	snap, err := store.Get(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation snapshot: %w", err)
	}
	snap.EnsureMaps()

	in.Snapshot = snap
	return in, nil
}
