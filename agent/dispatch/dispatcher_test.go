package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/tool"
)

type scriptedTool struct {
	name string
	run  func(ctx context.Context, req tool.Request) (tool.Response, error)
}

func (s *scriptedTool) Name() string { return s.name }

func (s *scriptedTool) Run(ctx context.Context, req tool.Request) (tool.Response, error) {
	return s.run(ctx, req)
}

func TestDispatchForwardsToolResponse(t *testing.T) {
	t.Parallel()

	d := New(map[contract.Action]tool.Tool{
		contract.ActionCallCalculator: &scriptedTool{
			name: "calculator",
			run: func(_ context.Context, req tool.Request) (tool.Response, error) {
				return tool.Response{Content: "42", Data: map[string]any{"expression": req.Query}, Success: true}, nil
			},
		},
	}, time.Second)

	result := d.Dispatch(context.Background(), contract.ActionCallCalculator, contract.ToolRequest{Query: "40 + 2"})
	if !result.Success {
		t.Fatalf("Dispatch() failed: %s", result.Message)
	}
	if result.Message != "42" {
		t.Fatalf("Dispatch() message = %q, want 42", result.Message)
	}
	if result.Data["expression"] != "40 + 2" {
		t.Fatalf("Dispatch() data = %v", result.Data)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	t.Parallel()

	d := New(nil, time.Second)
	result := d.Dispatch(context.Background(), contract.ActionCallOutlets, contract.ToolRequest{Query: "pj"})
	if result.Success {
		t.Fatal("unknown action must not succeed")
	}
	if !strings.Contains(result.Message, "don't have a tool") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if result.Data == nil {
		t.Fatal("result data must never be nil")
	}
}

func TestDispatchContainsToolError(t *testing.T) {
	t.Parallel()

	d := New(map[contract.Action]tool.Tool{
		contract.ActionCallProducts: &scriptedTool{
			name: "products",
			run: func(context.Context, tool.Request) (tool.Response, error) {
				return tool.Response{}, errors.New("catalogue corrupted at byte 1337")
			},
		},
	}, time.Second)

	result := d.Dispatch(context.Background(), contract.ActionCallProducts, contract.ToolRequest{Query: "mug"})
	if result.Success {
		t.Fatal("tool error must not succeed")
	}
	if strings.Contains(result.Message, "1337") || strings.Contains(result.Message, "corrupted") {
		t.Fatalf("internal error detail leaked into message: %q", result.Message)
	}
}

func TestDispatchContainsToolPanic(t *testing.T) {
	t.Parallel()

	d := New(map[contract.Action]tool.Tool{
		contract.ActionCallProducts: &scriptedTool{
			name: "products",
			run: func(context.Context, tool.Request) (tool.Response, error) {
				panic("index out of range")
			},
		},
	}, time.Second)

	result := d.Dispatch(context.Background(), contract.ActionCallProducts, contract.ToolRequest{Query: "mug"})
	if result.Success {
		t.Fatal("panicking tool must not succeed")
	}
	if strings.Contains(result.Message, "index out of range") {
		t.Fatalf("panic detail leaked into message: %q", result.Message)
	}
}

func TestDispatchTimesOutSlowTool(t *testing.T) {
	t.Parallel()

	d := New(map[contract.Action]tool.Tool{
		contract.ActionCallOutlets: &scriptedTool{
			name: "outlets",
			run: func(ctx context.Context, _ tool.Request) (tool.Response, error) {
				<-ctx.Done()
				return tool.Response{}, ctx.Err()
			},
		},
	}, 20*time.Millisecond)

	start := time.Now()
	result := d.Dispatch(context.Background(), contract.ActionCallOutlets, contract.ToolRequest{Query: "pj"})
	if result.Success {
		t.Fatal("timed-out tool must not succeed")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("dispatch blocked for %v despite timeout", elapsed)
	}
}
