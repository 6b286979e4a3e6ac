package controllernode

import (
	"fmt"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

func ExtractSlots(in *GraphState, extractor contractx.Extractor) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.SlotUpdates = extractor.Extract(in.Content, in.Intent)
	if in.SlotUpdates == nil {
		in.SlotUpdates = map[string]string{}
	}
	return in, nil
}
