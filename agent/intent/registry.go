package intent

import (
	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

// Definition binds everything an intent needs in one row: the keywords that
// trigger it, the slot it requires, the tool action it resolves to, and the
// confidence reported on a keyword match. Order in the table is
// classification precedence (first match wins).
type Definition struct {
	Intent       contractx.Intent
	Keywords     []string
	RequiredSlot string
	ToolAction   contractx.Action
	Confidence   float64
}

// HasTool reports whether the intent is backed by a dispatchable tool.
func (d Definition) HasTool() bool {
	return d.ToolAction.IsToolCall()
}

// definitions is the single registration point for intents. Adding an intent
// means adding one row here; the classifier, the required-slot projection,
// and the action binding all derive from it.
var definitions = []Definition{
	{
		Intent:       contractx.IntentCalculate,
		Keywords:     []string{"calc", "sum", "add", "minus", "+", "-"},
		RequiredSlot: "operation",
		ToolAction:   contractx.ActionCallCalculator,
		Confidence:   0.9,
	},
	{
		Intent: contractx.IntentProductInfo,
		Keywords: []string{
			"product", "drink", "tumbler", "tumblers", "merch",
			"mug", "mugs", "cup", "cups", "bottle", "bottles", "thermos",
		},
		RequiredSlot: "product_type",
		ToolAction:   contractx.ActionCallProducts,
		Confidence:   0.9,
	},
	{
		Intent:       contractx.IntentOutletInfo,
		Keywords:     []string{"outlet", "store", "open", "closing", "hours"},
		RequiredSlot: "location",
		ToolAction:   contractx.ActionCallOutlets,
		Confidence:   0.9,
	},
	{
		Intent:     contractx.IntentReset,
		Keywords:   []string{"reset"},
		Confidence: 0.9,
	},
	{
		Intent:     contractx.IntentSmallTalk,
		Keywords:   []string{"hello", "hi", "thanks", "help"},
		Confidence: 0.75,
	},
}

// Definitions returns the precedence-ordered intent table.
func Definitions() []Definition {
	return definitions
}

// Lookup returns the definition for a registered intent.
func Lookup(it contractx.Intent) (Definition, bool) {
	for _, def := range definitions {
		if def.Intent == it {
			return def, true
		}
	}
	return Definition{}, false
}
