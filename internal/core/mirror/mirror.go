// Package mirror keeps the last successfully loaded copy of a store collection together with
// the writes that are still in flight against it.
package mirror

import (
	"sync"
)

type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeConfirmed
	OutcomeFailed
	OutcomeSuperseded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeFailed:
		return "failed"
	case OutcomeSuperseded:
		return "superseded"
	default:
		return "pending"
	}
}

type Mirror[T any] struct {
	mu      sync.RWMutex
	key     func(T) string
	base    []T
	loaded  bool
	pending map[string]*Command[T]
	order   []string
}

// Command is one write dispatched to the store and not yet resolved.
type Command[T any] struct {
	m       *Mirror[T]
	key     string
	value   T
	deleted bool
	outcome Outcome
	err     error
}

func New[T any](key func(T) string) *Mirror[T] {
	return &Mirror[T]{
		key:     key,
		pending: make(map[string]*Command[T]),
	}
}

// Replace installs a freshly loaded collection as the confirmed base.
func (m *Mirror[T]) Replace(items []T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.base = append(make([]T, 0, len(items)), items...)
	m.loaded = true
}

func (m *Mirror[T]) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Snapshot returns the confirmed collection without pending writes.
func (m *Mirror[T]) Snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append(make([]T, 0, len(m.base)), m.base...)
}

// View returns the confirmed collection with pending writes overlaid.
func (m *Mirror[T]) View() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.base)+len(m.pending))
	seen := make(map[string]bool, len(m.pending))
	for _, item := range m.base {
		k := m.key(item)
		if cmd, ok := m.pending[k]; ok {
			seen[k] = true
			if !cmd.deleted {
				out = append(out, cmd.value)
			}
			continue
		}
		out = append(out, item)
	}
	for _, k := range m.order {
		cmd, ok := m.pending[k]
		if !ok || seen[k] || cmd.deleted {
			continue
		}
		out = append(out, cmd.value)
	}
	return out
}

// Pending reports the number of unresolved commands.
func (m *Mirror[T]) Pending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

// Begin registers an upsert of value. A pending command on the same key is superseded.
func (m *Mirror[T]) Begin(value T) *Command[T] {
	return m.begin(&Command[T]{key: m.key(value), value: value})
}

// BeginDelete registers a removal of key.
func (m *Mirror[T]) BeginDelete(key string) *Command[T] {
	return m.begin(&Command[T]{key: key, deleted: true})
}

func (m *Mirror[T]) begin(cmd *Command[T]) *Command[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd.m = m
	if prev, ok := m.pending[cmd.key]; ok {
		prev.outcome = OutcomeSuperseded
	} else {
		m.order = append(m.order, cmd.key)
	}
	m.pending[cmd.key] = cmd
	return cmd
}

func (c *Command[T]) Key() string {
	return c.key
}

func (c *Command[T]) Outcome() Outcome {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	return c.outcome
}

func (c *Command[T]) Err() error {
	c.m.mu.RLock()
	defer c.m.mu.RUnlock()
	return c.err
}

// Confirm applies the write to the base. A superseded command still lands in the base, since
// the store accepted it, but the newer pending value keeps precedence in View.
func (c *Command[T]) Confirm() Outcome {
	m := c.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.outcome == OutcomeConfirmed || c.outcome == OutcomeFailed {
		return c.outcome
	}

	m.applyLocked(c)
	if m.pending[c.key] == c {
		m.releaseLocked(c.key)
		c.outcome = OutcomeConfirmed
	} else {
		c.outcome = OutcomeSuperseded
	}
	return c.outcome
}

// Fail discards the pending write; the view falls back to the confirmed base.
func (c *Command[T]) Fail(err error) Outcome {
	m := c.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.outcome == OutcomeConfirmed || c.outcome == OutcomeFailed {
		return c.outcome
	}

	c.err = err
	if m.pending[c.key] == c {
		m.releaseLocked(c.key)
		c.outcome = OutcomeFailed
	} else {
		c.outcome = OutcomeSuperseded
	}
	return c.outcome
}

func (m *Mirror[T]) applyLocked(c *Command[T]) {
	for i, item := range m.base {
		if m.key(item) != c.key {
			continue
		}
		if c.deleted {
			m.base = append(m.base[:i:i], m.base[i+1:]...)
		} else {
			next := append(make([]T, 0, len(m.base)), m.base...)
			next[i] = c.value
			m.base = next
		}
		return
	}
	if !c.deleted {
		m.base = append(m.base[:len(m.base):len(m.base)], c.value)
	}
}

func (m *Mirror[T]) releaseLocked(key string) {
	delete(m.pending, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
}
