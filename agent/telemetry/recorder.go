// Package telemetry counts decision outcomes per turn. Counters are kept in
// two forms: an in-process snapshot served by the summary endpoint, and a
// Prometheus mirror for scraping.
package telemetry

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kopihaus/barista-agent/agent/contract"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalTurns   int64            `json:"total_turns"`
	Intents      map[string]int64 `json:"intents"`
	Actions      map[string]int64 `json:"actions"`
	ToolFailures int64            `json:"tool_failures"`
}

// Recorder accumulates per-turn telemetry. Safe for concurrent use.
type Recorder struct {
	mu           sync.Mutex
	totalTurns   int64
	intents      map[contract.Intent]int64
	actions      map[contract.Action]int64
	toolFailures int64

	turnCounter   *prometheus.CounterVec
	actionCounter *prometheus.CounterVec
}

// NewRecorder registers the Prometheus mirror on reg and returns a recorder
// with zeroed counters.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		intents: make(map[contract.Intent]int64),
		actions: make(map[contract.Action]int64),
		turnCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "turns_total",
			Help:      "Turns handled, labelled by classified intent.",
		}, []string{"intent"}),
		actionCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Name:      "actions_total",
			Help:      "Actions decided, labelled by action and tool outcome.",
		}, []string{"action", "success"}),
	}
}

// Record counts one completed turn.
func (r *Recorder) Record(intent contract.Intent, action contract.Action, toolSuccess bool) {
	r.mu.Lock()
	r.totalTurns++
	r.intents[intent]++
	r.actions[action]++
	if !toolSuccess {
		r.toolFailures++
	}
	r.mu.Unlock()

	r.turnCounter.WithLabelValues(string(intent)).Inc()
	r.actionCounter.WithLabelValues(string(action), strconv.FormatBool(toolSuccess)).Inc()
}

// Snapshot copies the counters without exposing internal maps.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		TotalTurns:   r.totalTurns,
		Intents:      make(map[string]int64, len(r.intents)),
		Actions:      make(map[string]int64, len(r.actions)),
		ToolFailures: r.toolFailures,
	}
	for intent, n := range r.intents {
		snap.Intents[string(intent)] = n
	}
	for action, n := range r.actions {
		snap.Actions[string(action)] = n
	}
	return snap
}
