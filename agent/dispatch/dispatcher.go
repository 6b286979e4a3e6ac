// Package dispatch routes tool-call actions to their tools behind a failure
// boundary. Whatever happens inside a tool, the conversation keeps going: the
// dispatcher converts errors, panics, and timeouts into a friendly failure
// result and never propagates them to the caller.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kopihaus/barista-agent/agent/contract"
	"github.com/kopihaus/barista-agent/agent/tool"
)

const (
	// DefaultTimeout bounds a single tool invocation.
	DefaultTimeout = 10 * time.Second

	toolFailureMessage = "I ran into an issue calling that tool. Could you try again later?"
	unknownToolMessage = "I don't have a tool for that yet."
)

var errToolPanicked = errors.New("tool panicked")

// Dispatcher owns the action-to-tool routing table.
type Dispatcher struct {
	tools   map[contract.Action]tool.Tool
	timeout time.Duration
}

// New builds a dispatcher over the given routing table. A zero timeout falls
// back to DefaultTimeout.
func New(tools map[contract.Action]tool.Tool, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{tools: tools, timeout: timeout}
}

// Dispatch runs the tool bound to action. It always returns a usable result:
// internal error details go to the log, never to the user-facing message.
func (d *Dispatcher) Dispatch(ctx context.Context, action contract.Action, req contract.ToolRequest) contract.ToolResult {
	t, ok := d.tools[action]
	if !ok {
		log.Warn().Str("action", string(action)).Msg("no tool registered for action")
		return contract.ToolResult{Message: unknownToolMessage, Data: map[string]any{}}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type outcome struct {
		resp tool.Response
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("tool", t.Name()).Any("panic", r).Msg("tool panicked")
				done <- outcome{err: errToolPanicked}
			}
		}()
		resp, err := t.Run(ctx, tool.Request{Query: req.Query, Slots: req.Slots})
		done <- outcome{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		log.Warn().Str("tool", t.Name()).Err(ctx.Err()).Msg("tool call timed out")
		return failureResult()
	case out := <-done:
		if out.err != nil {
			log.Error().Str("tool", t.Name()).Err(out.err).Msg("tool call failed")
			return failureResult()
		}
		data := out.resp.Data
		if data == nil {
			data = map[string]any{}
		}
		return contract.ToolResult{
			Success: out.resp.Success,
			Message: out.resp.Content,
			Data:    data,
		}
	}
}

func failureResult() contract.ToolResult {
	return contract.ToolResult{Message: toolFailureMessage, Data: map[string]any{}}
}
