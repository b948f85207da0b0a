package httpapi

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// NewServeMux mounts the sync endpoints on a standard library mux under basePath.
// The broadcast hook is optional; when set, /ws and /events stream sync progress.
func NewServeMux(api Executor, hook *tablesync.BroadcastHook, basePath string) *http.ServeMux {
	base := "/" + strings.Trim(basePath, "/")
	if base == "/" {
		base = ""
	}
	h := &Handlers{API: api}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+base+"/sync", h.HandleSyncSources)
	mux.HandleFunc("POST "+base+"/sources/{id}/sync", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSyncSource(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("GET "+base+"/sources", h.HandleSources)
	mux.HandleFunc("GET "+base+"/tables/{table}/rows", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRows(w, r, r.PathValue("table"))
	})
	mux.HandleFunc("GET "+base+"/history", h.HandleHistory)
	if hook != nil {
		mux.HandleFunc("GET "+base+"/ws", hook.ServeWebSocket)
		mux.HandleFunc("GET "+base+"/events", hook.ServeSSE)
	}
	return mux
}
