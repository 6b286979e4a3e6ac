// Package tool contains the external capabilities the controller can invoke:
// arithmetic evaluation, product retrieval, and outlet lookup. Tools are only
// ever reached through the dispatcher's failure boundary.
package tool

import "context"

// Request carries the raw utterance plus the merged slot view for the turn.
type Request struct {
	Query string
	Slots map[string]string
}

// Slot returns the named slot value, or "" when unset.
func (r Request) Slot(name string) string {
	if r.Slots == nil {
		return ""
	}
	return r.Slots[name]
}

// Response is the standard tool payload. Success=false with a friendly
// Content covers both genuine failures and legitimate zero-match results,
// so the two are indistinguishable to a caller.
type Response struct {
	Content string
	Data    map[string]any
	Success bool
}

type Tool interface {
	Name() string
	Run(ctx context.Context, req Request) (Response, error)
}
