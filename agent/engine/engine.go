// Package engine is the per-turn decision controller. It compiles the
// turn-handling graph once at startup and serializes turns per conversation
// so every conversation sees a total order of snapshot writes.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
	memoryx "github.com/kopihaus/barista-agent/agent/memory"
	nodex "github.com/kopihaus/barista-agent/agent/nodes/controller"
)

// Config tunes decision behavior. Classifications below FallbackThreshold
// are answered with the capability fallback instead of a tool call.
type Config struct {
	FallbackThreshold float64 `envconfig:"FALLBACK_THRESHOLD" default:"0.6"`
}

type Engine struct {
	store      memoryx.Store
	classifier contractx.Classifier
	extractor  contractx.Extractor
	dispatcher contractx.Dispatcher
	recorder   contractx.Recorder
	locks      *memoryx.ConversationLocker

	graphRunner compose.Runnable[nodex.GraphInput, contractx.TurnResult]

	cfg Config
	now func() time.Time
}

func New(
	store memoryx.Store,
	classifier contractx.Classifier,
	extractor contractx.Extractor,
	dispatcher contractx.Dispatcher,
	recorder contractx.Recorder,
	cfg Config,
) (*Engine, error) {
	if store == nil {
		return nil, errors.New("conversation store is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if extractor == nil {
		return nil, errors.New("slot extractor is required")
	}
	if dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if cfg.FallbackThreshold <= 0 || cfg.FallbackThreshold > 1 {
		cfg.FallbackThreshold = 0.6
	}

	e := &Engine{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		dispatcher: dispatcher,
		recorder:   recorder,
		locks:      memoryx.NewConversationLocker(),
		cfg:        cfg,
		now:        time.Now,
	}

	graphRunner, err := e.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.graphRunner = graphRunner

	return e, nil
}

// HandleTurn processes one user message end to end. The conversation lock is
// held for the whole turn, so concurrent turns for the same id serialize.
func (e *Engine) HandleTurn(ctx context.Context, turn contractx.Turn) (contractx.TurnResult, error) {
	conversationID := strings.TrimSpace(turn.ConversationID)
	if conversationID == "" {
		return contractx.TurnResult{}, contractx.ErrInvalidConversation
	}

	unlock := e.locks.Lock(conversationID)
	defer unlock()

	result, err := e.graphRunner.Invoke(ctx, nodex.GraphInput{
		ConversationID: conversationID,
		Content:        turn.Content,
	})
	if err != nil {
		return contractx.TurnResult{}, err
	}

	log.Debug().
		Str("conversation_id", result.ConversationID).
		Str("intent", string(result.Intent)).
		Str("action", string(result.Action)).
		Float64("confidence", result.Confidence).
		Bool("tool_success", result.ToolSuccess).
		Msg("turn handled")

	return result, nil
}

type noopRecorder struct{}

func (noopRecorder) Record(contractx.Intent, contractx.Action, bool) {}
