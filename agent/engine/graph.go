package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	nodex "github.com/kopihaus/barista-agent/agent/nodes/controller"
)

func (e *Engine) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, contractx.TurnResult], error) {
	graph := compose.NewGraph[nodex.GraphInput, contractx.TurnResult]()

	if err := graph.AddLambdaNode("validate_turn",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateTurn(in, e.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_turn: %w", err)
	}

	if err := graph.AddLambdaNode("load_snapshot",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadSnapshot(ctx, in, e.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_snapshot: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ClassifyIntent(in, e.classifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	if err := graph.AddLambdaNode("extract_slots",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExtractSlots(in, e.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node extract_slots: %w", err)
	}

	if err := graph.AddLambdaNode("decide_action",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DecideAction(in, e.cfg.FallbackThreshold)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide_action: %w", err)
	}

	if err := graph.AddLambdaNode("dispatch_tool",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.DispatchTool(ctx, in, e.dispatcher)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node dispatch_tool: %w", err)
	}

	if err := graph.AddLambdaNode("persist_state",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PersistState(ctx, in, e.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist_state: %w", err)
	}

	if err := graph.AddLambdaNode("record_metrics",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordMetrics(in, e.recorder)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_metrics: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResult, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_turn"},
		{"validate_turn", "load_snapshot"},
		{"load_snapshot", "classify_intent"},
		{"classify_intent", "extract_slots"},
		{"extract_slots", "decide_action"},
		{"decide_action", "dispatch_tool"},
		{"dispatch_tool", "persist_state"},
		{"persist_state", "record_metrics"},
		{"record_metrics", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("engine.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
