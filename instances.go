package precinct

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/precinct/site"
)

// Registry holds the live page instances by id. An instance idle for longer
// than the TTL is evicted and closed.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	ttl     time.Duration
	now     func() time.Time
	log     *zap.Logger
}

type registryEntry struct {
	in   *site.Instance
	seen time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry(ttl time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		entries: make(map[string]*registryEntry),
		ttl:     ttl,
		now:     time.Now,
		log:     log,
	}
}

func (r *Registry) expired(e *registryEntry, now time.Time) bool {
	return now.Sub(e.seen) >= r.ttl
}

// Put adds in, replacing and closing any instance with the same id.
func (r *Registry) Put(in *site.Instance) {
	r.mu.Lock()
	old := r.entries[in.ID]
	r.entries[in.ID] = &registryEntry{in: in, seen: r.now()}
	r.mu.Unlock()
	if old != nil && old.in != in {
		old.in.Close()
	}
}

// Get returns the instance and marks it used. Expired instances are not
// returned; the janitor closes them.
func (r *Registry) Get(id string) (*site.Instance, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if r.expired(e, now) {
		return nil, false
	}
	e.seen = now
	return e.in, true
}

// Len returns the number of held instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Evict closes every expired instance and returns how many there were.
func (r *Registry) Evict() int {
	now := r.now()
	var stale []*site.Instance
	r.mu.Lock()
	for id, e := range r.entries {
		if r.expired(e, now) {
			stale = append(stale, e.in)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, in := range stale {
		in.Close()
		r.log.Debug("page instance evicted", zap.String("instance", in.ID))
	}
	return len(stale)
}

// CloseAll closes and forgets every instance.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.entries
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()
	for _, e := range all {
		e.in.Close()
	}
}
