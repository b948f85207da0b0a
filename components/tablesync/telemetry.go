package tablesync

import "context"

// Telemetry receives sync lifecycle events. Event names are dotted
// ("tablesync.table.synced", "tablesync.bulk.completed") and payloads are
// flat maps keyed by table, source, run_id and row counts.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// NopTelemetry drops every event. Services and commands fall back to it when
// no sink is configured.
type NopTelemetry struct{}

func (NopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return NopTelemetry{}
	}
	return t
}
