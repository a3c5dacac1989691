// Package observer provides an ordered, synchronous listener registry.
package observer

import "sync"

// Listener receives the full current state on every broadcast. Without a
// Clone func every listener shares the broadcast value and must treat it
// as read-only.
type Listener[T any] func(T)

type entry[T any] struct {
	id uint64
	fn Listener[T]
}

// Registry calls listeners in registration order. It is safe for
// concurrent use; Broadcast runs listeners on the caller's goroutine.
type Registry[T any] struct {
	// Clone, when set, gives each listener its own copy of the broadcast
	// value. Set it before the first Subscribe.
	Clone func(T) T

	mu      sync.RWMutex
	nextID  uint64
	entries []entry[T]
}

// Subscribe registers fn and returns a handle that removes it. Calling the
// handle more than once is a no-op.
func (r *Registry[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.entries = append(r.entries, entry[T]{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Broadcast delivers v to every listener registered at call time.
func (r *Registry[T]) Broadcast(v T) {
	r.mu.RLock()
	snapshot := make([]entry[T], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	for _, e := range snapshot {
		if r.Clone != nil {
			e.fn(r.Clone(v))
			continue
		}
		e.fn(v)
	}
}

// Len returns the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
