// Package locking provides per-account mutual exclusion. The transaction
// engine and the auth service share one registry, so every read-modify-write
// of an account's state is serialized no matter which entry point performs
// it.
package locking

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// Registry hands out one mutex per account ID. The zero value is not usable;
// create one with NewRegistry.
type Registry struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock acquires the account's mutex and returns its release func.
func (r *Registry) Lock(id uuid.UUID) func() {
	mu := r.mutexFor(id)
	mu.Lock()
	return mu.Unlock
}

// LockPair acquires both accounts' mutexes in ascending ID order, so
// opposing operations on the same pair cannot deadlock.
func (r *Registry) LockPair(a, b uuid.UUID) func() {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	first, second := r.mutexFor(a), r.mutexFor(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

func (r *Registry) mutexFor(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	mu, ok := r.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[id] = mu
	}
	return mu
}
