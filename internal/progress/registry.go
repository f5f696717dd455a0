// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package progress

import "sort"

// Tag names an independent progress domain, e.g. "assets" or "world".
type Tag string

// DefaultTag is the domain used when none is given.
const DefaultTag Tag = "default"

// Registry keeps one exclusively owned Ledger per Tag.
type Registry struct {
	ledgers map[Tag]*Ledger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ledgers: make(map[Tag]*Ledger)}
}

// Ledger returns the ledger for tag, creating an empty one on first access.
func (r *Registry) Ledger(tag Tag) *Ledger {
	if l, ok := r.ledgers[tag]; ok {
		return l
	}
	l := NewLedger()
	r.ledgers[tag] = l
	return l
}

// Lookup returns the ledger for tag without creating it.
func (r *Registry) Lookup(tag Tag) (*Ledger, bool) {
	l, ok := r.ledgers[tag]
	return l, ok
}

// Remove drops the ledger for tag. It reports whether one existed.
func (r *Registry) Remove(tag Tag) bool {
	if _, ok := r.ledgers[tag]; !ok {
		return false
	}
	delete(r.ledgers, tag)
	return true
}

// Tags returns all registered tags in sorted order.
func (r *Registry) Tags() []Tag {
	tags := make([]Tag, 0, len(r.ledgers))
	for tag := range r.ledgers {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Len returns the number of registered ledgers.
func (r *Registry) Len() int {
	return len(r.ledgers)
}

// FinishCycle finishes the current cycle on every ledger.
func (r *Registry) FinishCycle() {
	for _, l := range r.ledgers {
		l.FinishCycle()
	}
}

// Clear fully resets every ledger. The ledgers stay registered.
func (r *Registry) Clear() {
	for _, l := range r.ledgers {
		l.Clear()
	}
}
