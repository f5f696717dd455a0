// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LedgerIsCreatedOnce(t *testing.T) {
	r := NewRegistry()

	a := r.Ledger("assets")
	require.NotNil(t, a)
	assert.Same(t, a, r.Ledger("assets"))
	assert.Equal(t, 1, r.Len())

	_, ok := r.Lookup("world")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len(), "Lookup must not create ledgers")
}

func TestRegistry_DomainsAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.Ledger("assets").RegisterTasks(4, 1)
	r.Ledger("world").PersistDoneTasks(2)

	r.FinishCycle()

	assert.Equal(t, 0.25, r.Ledger("assets").Progress())
	assert.Equal(t, 1.0, r.Ledger("world").Progress())
}

func TestRegistry_TagsSorted(t *testing.T) {
	r := NewRegistry()
	r.Ledger("world")
	r.Ledger("assets")
	r.Ledger(DefaultTag)

	assert.Equal(t, []Tag{"assets", DefaultTag, "world"}, r.Tags())
}

func TestRegistry_RemoveAndClear(t *testing.T) {
	r := NewRegistry()
	r.Ledger("a").PersistTasks(1)
	r.Ledger("b").PersistDone(1)

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"))
	assert.Equal(t, []Tag{"b"}, r.Tags())

	r.Clear()
	b, ok := r.Lookup("b")
	require.True(t, ok)
	assert.True(t, b.Persisted().IsZero())
}
