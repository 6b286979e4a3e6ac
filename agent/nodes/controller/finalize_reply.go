package controllernode

import (
	"fmt"
	"strings"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (contractx.TurnResult, error) {
	if in == nil {
		return contractx.TurnResult{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return contractx.TurnResult{}, fmt.Errorf("%w: decision produced an empty reply", contractx.ErrValidation)
	}

	data := in.Tool.Data
	if data == nil {
		data = map[string]any{}
	}

	return contractx.TurnResult{
		ConversationID: in.ConversationID,
		Intent:         in.Intent,
		Action:         in.Action,
		Confidence:     in.Confidence,
		ToolSuccess:    in.Tool.Success,
		Message:        message,
		ToolData:       data,
		RequiredSlots:  in.RequiredSlots,
		Slots:          in.MergedSlots,
	}, nil
}
