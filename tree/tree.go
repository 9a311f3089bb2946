// Package tree implements a persistent, immutable binary search tree
// keyed by string, layered over append-only block storage.
//
// Mutation never modifies an existing node: Set and Delete rebuild the
// path from the root and share every untouched subtree with the previous
// version. Uncommitted changes live purely in memory, held by references
// that have a referent but no address yet; Commit writes them post-order
// and swaps the root pointer, making the new version durable atomically.
//
// The tree is unbalanced. Pathological insertion orders produce linear
// chains; balance is traded for structural sharing simplicity.
package tree

import (
	"github.com/dacapoday/twig"
)

// Tree provides the persistent BST over a Storage.
//
// Reads refresh the root reference from storage whenever the lock is not
// held, so a reader observes the latest committed state on each
// operation. The first mutation acquires the lock and refreshes once;
// after that the in-memory root carries the uncommitted edits and is not
// refreshed again until the lock is released.
type Tree struct {
	storage Storage
	root    NodeRef
}

// Load binds the tree to storage and reads the current root reference.
func (t *Tree) Load(storage Storage) (err error) {
	t.storage = storage
	return t.refresh()
}

func (t *Tree) refresh() (err error) {
	addr, err := t.storage.Root()
	if err != nil {
		return
	}
	t.root = nodeAt(addr)
	return
}

func (t *Tree) lock() (err error) {
	acquired, err := t.storage.Lock()
	if err != nil {
		return
	}
	if acquired {
		err = t.refresh()
	}
	return
}

// Get returns the value stored under key, or twig.ErrNotFound.
func (t *Tree) Get(key string) (val string, err error) {
	if !t.storage.Locked() {
		if err = t.refresh(); err != nil {
			return
		}
	}

	node, err := t.root.follow(t.storage)
	if err != nil {
		return
	}
	for node != nil {
		switch {
		case key < node.key:
			node, err = node.left.follow(t.storage)
		case node.key < key:
			node, err = node.right.follow(t.storage)
		default:
			return node.value.Get(t.storage)
		}
		if err != nil {
			return
		}
	}
	err = twig.ErrNotFound
	return
}

// Set maps key to val in a new tree version. The change is held in
// memory until Commit.
func (t *Tree) Set(key, val string) (err error) {
	if err = t.lock(); err != nil {
		return
	}

	root, err := t.insert(&t.root, key, NewValue(val))
	if err != nil {
		return
	}
	t.root = root
	return
}

func (t *Tree) insert(ref *NodeRef, key string, value ValueRef) (out NodeRef, err error) {
	node, err := ref.follow(t.storage)
	if err != nil {
		return
	}

	var child NodeRef
	switch {
	case node == nil:
		out = newNode(newLeaf(key, value))
	case key < node.key:
		if child, err = t.insert(&node.left, key, value); err != nil {
			return
		}
		out = newNode(node.withLeft(child))
	case node.key < key:
		if child, err = t.insert(&node.right, key, value); err != nil {
			return
		}
		out = newNode(node.withRight(child))
	default:
		out = newNode(node.withValue(value))
	}
	return
}

// Delete removes key in a new tree version, or returns twig.ErrNotFound.
// The change is held in memory until Commit.
func (t *Tree) Delete(key string) (err error) {
	if err = t.lock(); err != nil {
		return
	}

	root, err := t.remove(&t.root, key)
	if err != nil {
		return
	}
	t.root = root
	return
}

func (t *Tree) remove(ref *NodeRef, key string) (out NodeRef, err error) {
	node, err := ref.follow(t.storage)
	if err != nil {
		return
	}
	if node == nil {
		err = twig.ErrNotFound
		return
	}

	var child NodeRef
	switch {
	case key < node.key:
		if child, err = t.remove(&node.left, key); err != nil {
			return
		}
		out = newNode(node.withLeft(child))
	case node.key < key:
		if child, err = t.remove(&node.right, key); err != nil {
			return
		}
		out = newNode(node.withRight(child))
	default:
		var left, right *Node
		if left, err = node.left.follow(t.storage); err != nil {
			return
		}
		if right, err = node.right.follow(t.storage); err != nil {
			return
		}
		switch {
		case left == nil && right == nil:
			// subtree gone, out stays empty
		case left == nil:
			out = node.right
		case right == nil:
			out = node.left
		default:
			var succ *Node
			if succ, err = t.min(right); err != nil {
				return
			}
			if child, err = t.remove(&node.right, succ.key); err != nil {
				return
			}
			out = newNode(node.withSuccessor(succ.key, succ.value, child))
		}
	}
	return
}

// min walks left to the smallest key of the subtree, the in-order
// successor used for two-child deletion.
func (t *Tree) min(node *Node) (*Node, error) {
	for {
		left, err := node.left.follow(t.storage)
		if err != nil {
			return nil, err
		}
		if left == nil {
			return node, nil
		}
		node = left
	}
}

// Commit persists all pending mutations: unwritten nodes are stored
// post-order (leaves first, so parents record child addresses), then the
// new root address is swapped into the superblock and the lock released.
func (t *Tree) Commit() (err error) {
	if err = t.root.store(t.storage); err != nil {
		return
	}
	return t.storage.CommitRoot(t.root.addr)
}

// Len reports the number of key-value pairs in the tree.
func (t *Tree) Len() (n int, err error) {
	if !t.storage.Locked() {
		if err = t.refresh(); err != nil {
			return
		}
	}

	node, err := t.root.follow(t.storage)
	if err != nil || node == nil {
		return
	}
	n = int(node.length)
	return
}

// Root returns the current root reference. Test and inspection hook.
func (t *Tree) Root() *NodeRef {
	return &t.root
}
