package controllernode

import (
	"context"
	"fmt"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

// DispatchTool invokes the dispatcher for tool-call actions. Tool failure is
// a value carried in the state, never an error: the turn proceeds through
// persistence and telemetry with the dispatcher's friendly failure message.
func DispatchTool(ctx context.Context, in *GraphState, dispatcher contractx.Dispatcher) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if !in.Action.IsToolCall() {
		in.Tool = contractx.ToolResult{Success: true, Data: map[string]any{}}
		return in, nil
	}

	in.Tool = dispatcher.Dispatch(ctx, in.Action, contractx.ToolRequest{
		Query: in.Content,
		Slots: in.MergedSlots,
	})
	in.Message = in.Tool.Message
	return in, nil
}
