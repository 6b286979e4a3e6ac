package contract

// Intent is the classified high-level purpose of a user utterance.
// The closed set lives in the intent registry; adding a label there is the
// only way to introduce a new one.
type Intent string

const (
	IntentCalculate   Intent = "calculate"
	IntentProductInfo Intent = "product_info"
	IntentOutletInfo  Intent = "outlet_info"
	IntentReset       Intent = "reset"
	IntentSmallTalk   Intent = "small_talk"
	IntentUnknown     Intent = "unknown"
)

// Action is the controller's chosen next step for a turn. Exactly one action
// is chosen per turn.
type Action string

const (
	ActionCallCalculator Action = "call_calculator"
	ActionCallProducts   Action = "call_products"
	ActionCallOutlets    Action = "call_outlets"
	ActionAskFollowUp    Action = "ask_follow_up"
	ActionFallback       Action = "fallback"
	ActionFinish         Action = "finish"
)

// IsToolCall reports whether the action dispatches an external tool.
func (a Action) IsToolCall() bool {
	switch a {
	case ActionCallCalculator, ActionCallProducts, ActionCallOutlets:
		return true
	default:
		return false
	}
}

// Turn is a single inbound user message.
type Turn struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
}

// TurnResult is the full controller output for one turn.
type TurnResult struct {
	ConversationID string            `json:"conversation_id"`
	Intent         Intent            `json:"intent"`
	Action         Action            `json:"action"`
	Confidence     float64           `json:"confidence"`
	ToolSuccess    bool              `json:"tool_success"`
	Message        string            `json:"message"`
	ToolData       map[string]any    `json:"tool_data"`
	RequiredSlots  map[string]bool   `json:"required_slots"`
	Slots          map[string]string `json:"slots"`
}

// ToolRequest carries the utterance and the merged slot view to a tool.
type ToolRequest struct {
	Query string            `json:"query"`
	Slots map[string]string `json:"slots,omitempty"`
}

// ToolResult is the dispatcher's normalized outcome. Failures are values;
// nothing escapes the dispatch boundary as a raised fault.
type ToolResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}
