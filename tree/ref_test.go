// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dacapoday/twig/mem"
	"github.com/dacapoday/twig/store"
)

func newTestStorage(t *testing.T) *store.Store[*mem.File] {
	t.Helper()
	storage := new(store.Store[*mem.File])
	require.NoError(t, storage.Load(new(mem.File)))
	return storage
}

func TestValueRefStates(t *testing.T) {
	storage := newTestStorage(t)

	// referent-only: value in memory, no address
	ref := NewValue("payload")
	require.EqualValues(t, 0, ref.Address())

	val, err := ref.Get(storage)
	require.NoError(t, err)
	require.Equal(t, "payload", val)

	// store transitions to both; the address is stable afterwards
	require.NoError(t, ref.Store(storage))
	addr := ref.Address()
	require.NotEqualValues(t, 0, addr)

	require.NoError(t, ref.Store(storage))
	require.Equal(t, addr, ref.Address())

	// address-only: a fresh ref loads the same bytes back
	cold := valueAt(addr)
	val, err = cold.Get(storage)
	require.NoError(t, err)
	require.Equal(t, "payload", val)
}

func TestValueRefEmptyString(t *testing.T) {
	storage := newTestStorage(t)

	ref := NewValue("")
	require.NoError(t, ref.Store(storage))
	require.NotEqualValues(t, 0, ref.Address())

	cold := valueAt(ref.Address())
	val, err := cold.Get(storage)
	require.NoError(t, err)
	require.Equal(t, "", val)
}

func TestNodeRefLength(t *testing.T) {
	var empty NodeRef
	require.True(t, empty.Empty())
	require.EqualValues(t, 0, empty.Length())

	loaded := newNode(newLeaf("k", NewValue("v")))
	require.EqualValues(t, 1, loaded.Length())

	// length of an unloaded on-disk node is a programming error
	unloaded := nodeAt(4096)
	require.Panics(t, func() { unloaded.Length() })
}

func TestNodeRefStorePostOrder(t *testing.T) {
	storage := newTestStorage(t)

	left := newNode(newLeaf("a", NewValue("1")))
	right := newNode(newLeaf("c", NewValue("3")))
	root := newNode(&Node{
		left:   left,
		right:  right,
		key:    "b",
		value:  NewValue("2"),
		length: 3,
	})

	require.NoError(t, root.store(storage))

	// children are written before their parent, so the parent block sits
	// at the highest address
	node := root.node
	require.Less(t, uint64(node.left.Address()), uint64(root.Address()))
	require.Less(t, uint64(node.right.Address()), uint64(root.Address()))
	require.Less(t, uint64(node.value.Address()), uint64(root.Address()))

	// store is write-once: repeating it moves nothing
	addr := root.Address()
	require.NoError(t, root.store(storage))
	require.Equal(t, addr, root.Address())

	// a cold read of the root reconstructs the node with address-only
	// child refs
	cold := nodeAt(root.Address())
	reloaded, err := cold.follow(storage)
	require.NoError(t, err)
	require.Equal(t, "b", reloaded.key)
	require.EqualValues(t, 3, reloaded.length)
	require.Equal(t, node.left.Address(), reloaded.left.Address())
	require.Equal(t, node.right.Address(), reloaded.right.Address())

	val, err := reloaded.value.Get(storage)
	require.NoError(t, err)
	require.Equal(t, "2", val)
}

func TestNodeRefFollowCaches(t *testing.T) {
	storage := newTestStorage(t)

	ref := newNode(newLeaf("k", NewValue("v")))
	require.NoError(t, ref.store(storage))

	cold := nodeAt(ref.Address())
	first, err := cold.follow(storage)
	require.NoError(t, err)

	again, err := cold.follow(storage)
	require.NoError(t, err)
	require.Same(t, first, again)
}
