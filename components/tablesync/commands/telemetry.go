package commands

import "github.com/goliatone/go-tablesync/components/tablesync"

// Telemetry is the sink commands report "tablesync.command.*" events to.
// It is usually the same sink the Service records table writes on.
type Telemetry = tablesync.Telemetry

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return tablesync.NopTelemetry{}
	}
	return t
}
