// Package memory provides insertion-ordered in-memory repositories.
//
// Each repository guards its own index, but the entities it hands out are
// live: callers that mutate them must serialize access themselves.
package memory

import "sync"

// ordered is an insertion-ordered map from ID to entity.
type ordered[T any] struct {
	mu   sync.RWMutex
	ids  []string
	byID map[string]T
}

func newOrdered[T any]() *ordered[T] {
	return &ordered[T]{byID: make(map[string]T)}
}

func (o *ordered[T]) get(id string) (T, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	v, ok := o.byID[id]
	return v, ok
}

// put stores v under id and reports false if id is taken.
func (o *ordered[T]) put(id string, v T) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.byID[id]; ok {
		return false
	}
	o.byID[id] = v
	o.ids = append(o.ids, id)
	return true
}

func (o *ordered[T]) list() []T {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]T, len(o.ids))
	for i, id := range o.ids {
		out[i] = o.byID[id]
	}
	return out
}
