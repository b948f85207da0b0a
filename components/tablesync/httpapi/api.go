package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/goliatone/go-tablesync/components/tablesync"
	"github.com/goliatone/go-tablesync/components/tablesync/commands"
	"github.com/goliatone/go-tablesync/components/tablesync/queries"
)

// Handlers exposes net/http endpoints backed by an Executor.
type Handlers struct {
	API Executor
}

// SyncRequest is the body accepted by the bulk and single source endpoints.
type SyncRequest struct {
	Sources []string       `json:"sources,omitempty"`
	Mode    tablesync.Mode `json:"mode,omitempty"`
}

// DecodeSyncRequest reads an optional JSON body. An empty body is valid.
func DecodeSyncRequest(body []byte) (SyncRequest, error) {
	var req SyncRequest
	if len(body) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}
	return req, nil
}

// ParseLimit reads a positive history limit, returning 0 when absent or invalid.
func ParseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (h *Handlers) HandleSyncSources(w http.ResponseWriter, r *http.Request) {
	req, ok := readSyncRequest(w, r)
	if !ok {
		return
	}
	var report tablesync.BulkReport
	if err := h.API.SyncSources(r.Context(), commands.SyncSourcesInput{SourceIDs: req.Sources, Mode: req.Mode, Report: &report}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) HandleSyncSource(w http.ResponseWriter, r *http.Request, sourceID string) {
	req, ok := readSyncRequest(w, r)
	if !ok {
		return
	}
	var result tablesync.SyncResult
	if err := h.API.SyncSource(r.Context(), commands.SyncSourceInput{SourceID: sourceID, Mode: req.Mode, Result: &result}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) HandleSources(w http.ResponseWriter, r *http.Request) {
	enabled, _ := strconv.ParseBool(r.URL.Query().Get("enabled"))
	sources, err := h.API.Sources(r.Context(), queries.SourcesInput{EnabledOnly: enabled})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

func (h *Handlers) HandleRows(w http.ResponseWriter, r *http.Request, table string) {
	rows, err := h.API.Rows(r.Context(), queries.ListRowsInput{Table: table})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table": table, "rows": rows})
}

func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.API.History(r.Context(), queries.HistoryInput{Limit: ParseLimit(r.URL.Query().Get("limit"))})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func readSyncRequest(w http.ResponseWriter, r *http.Request) (SyncRequest, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return SyncRequest{}, false
	}
	req, err := DecodeSyncRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return SyncRequest{}, false
	}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		req.Mode = tablesync.Mode(mode)
	}
	return req, true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
