package controllernode

import (
	"fmt"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

func RecordMetrics(in *GraphState, recorder contractx.Recorder) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	recorder.Record(in.Intent, in.Action, in.Tool.Success)
	return in, nil
}
