package event

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the community events the sweeper and dispatcher know about.
type Registry struct {
	events map[string]Event
	mu     sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{events: make(map[string]Event)}
}

// Register adds an event. Returns an error if the name is taken.
func (r *Registry) Register(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[e.Name()]; exists {
		return fmt.Errorf("event %s already registered", e.Name())
	}
	r.events[e.Name()] = e
	return nil
}

// Get returns an event by name, or nil.
func (r *Registry) Get(name string) Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[name]
}

// All returns every event sorted by name.
func (r *Registry) All() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
