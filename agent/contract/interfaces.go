package contract

import "context"

// Classifier maps raw utterance text to an intent label with a confidence
// score in [0,1]. Implementations must be pure functions of the text.
type Classifier interface {
	Classify(utterance string) (Intent, float64)
}

// Extractor pulls slot values out of an utterance for a given intent.
// Absence of a match yields an empty map, never an error.
type Extractor interface {
	Extract(utterance string, intent Intent) map[string]string
}

// Dispatcher executes the tool bound to an action under a failure boundary.
type Dispatcher interface {
	Dispatch(ctx context.Context, action Action, req ToolRequest) ToolResult
}

// Recorder tracks per-intent and per-action counters. Safe for concurrent
// use across conversations.
type Recorder interface {
	Record(intent Intent, action Action, success bool)
}
