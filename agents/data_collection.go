package agents

import "context"

// DataSink is the narrow seam for wherever collected turn data is
// persisted (a data warehouse, an event bus); implementations live outside
// this package.
type DataSink interface {
	Record(ctx context.Context, event map[string]any) error
}

// DataCollectionRequest is the data collection agent's input contract: the
// set of fields already written to state this turn, passed through
// verbatim as the event payload.
type DataCollectionRequest struct {
	SessionID string
	Fields    map[string]any
}

// DataCollectionResult is the single field the data collection agent
// writes back.
type DataCollectionResult struct {
	Recorded bool
}

// DataCollectionAgent is a thin contract: it consumes the state fields
// written by earlier nodes this turn and records them as one event,
// without interpreting or transforming them.
type DataCollectionAgent struct {
	Sink DataSink
}

// Run records the turn's fields as one event.
func (a *DataCollectionAgent) Run(ctx context.Context, req DataCollectionRequest) DataCollectionResult {
	if a.Sink == nil {
		return DataCollectionResult{Recorded: false}
	}
	event := map[string]any{"session_id": req.SessionID}
	for k, v := range req.Fields {
		event[k] = v
	}
	if err := a.Sink.Record(ctx, event); err != nil {
		return DataCollectionResult{Recorded: false}
	}
	return DataCollectionResult{Recorded: true}
}
