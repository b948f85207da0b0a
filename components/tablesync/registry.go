package tablesync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// SourceHook lets packages register data sources during init().
type SourceHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []SourceHook
)

// RegisterSourceHook registers a hook executed against new registries.
func RegisterSourceHook(h SourceHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry keeps data sources in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]SourceDescriptor
	logger  *slog.Logger
}

// NewRegistry builds an empty registry and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		sources: map[string]SourceDescriptor{},
		logger:  slog.Default(),
	}
	_ = reg.ApplyHooks()
	return reg
}

// WithLogger sets the logger used when a source fails inside GetMultipleData.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = normalizeLogger(logger)
	return r
}

// ApplyHooks executes registered source hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register adds or replaces a source. Replacing keeps the original position.
func (r *Registry) Register(desc SourceDescriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("tablesync: source id is required")
	}
	if desc.Source == nil {
		return fmt.Errorf("tablesync: source %s has no data source", desc.ID)
	}
	if desc.Type == "" {
		return fmt.Errorf("tablesync: source %s has no type", desc.ID)
	}
	if desc.Name == "" {
		desc.Name = desc.ID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[desc.ID]; !exists {
		r.order = append(r.order, desc.ID)
	}
	r.sources[desc.ID] = desc
	return nil
}

// GetDataSources returns every registered source in registration order.
func (r *Registry) GetDataSources() []SourceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SourceDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sources[id])
	}
	return out
}

// EnabledSources returns the enabled sources in registration order.
func (r *Registry) EnabledSources() []SourceDescriptor {
	all := r.GetDataSources()
	out := all[:0]
	for _, desc := range all {
		if desc.Enabled {
			out = append(out, desc)
		}
	}
	return out
}

// GetDataSource fetches a source by id.
func (r *Registry) GetDataSource(id string) (SourceDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.sources[id]
	return desc, ok
}

// Resolve maps ids to descriptors, preserving the requested order. Unknown
// ids produce a descriptor whose GetData fails with ErrSourceNotFound so the
// caller can report them per source.
func (r *Registry) Resolve(ids []string) []SourceDescriptor {
	out := make([]SourceDescriptor, 0, len(ids))
	for _, id := range ids {
		desc, ok := r.GetDataSource(id)
		if !ok {
			desc = SourceDescriptor{ID: id, Name: id, Source: missingSource(id)}
		}
		out = append(out, desc)
	}
	return out
}

// GetMultipleData fetches the exports of the given sources one at a time.
// Unknown ids are skipped and failing sources are logged and left out.
func (r *Registry) GetMultipleData(ctx context.Context, ids []string) map[string]DashboardDataExport {
	results := make(map[string]DashboardDataExport, len(ids))
	for _, id := range ids {
		desc, ok := r.GetDataSource(id)
		if !ok {
			continue
		}
		export, err := desc.GetData(ctx)
		if err != nil {
			r.logger.Error("get data failed", "source", id, "error", err)
			continue
		}
		results[id] = export
	}
	return results
}

func missingSource(id string) DataSource {
	return SourceFunc(func(context.Context) (DashboardDataExport, error) {
		return DashboardDataExport{}, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	})
}
