package tree

import (
	"github.com/dacapoday/twig"
)

// Storage is the persistence surface the tree needs. *store.Store
// implements it.
type Storage interface {
	Read(addr twig.Address) ([]byte, error)
	Write(data []byte) (twig.Address, error)
	Root() (twig.Address, error)
	CommitRoot(addr twig.Address) error
	Lock() (bool, error)
	Unlock() error
	Locked() bool
}

// ValueRef is a lazy handle to a value payload that may live on disk, in
// memory, both, or neither. A ref with an address and no loaded value
// reads on first access; a ref with a value and no address writes once on
// store; neither happens otherwise. Once both are present the ref is
// immutable: the address names exactly that byte sequence.
type ValueRef struct {
	addr   twig.Address
	val    string
	loaded bool
}

// NewValue returns a reference holding val in memory, not yet written.
func NewValue(val string) ValueRef {
	return ValueRef{val: val, loaded: true}
}

func valueAt(addr twig.Address) ValueRef {
	return ValueRef{addr: addr}
}

// Address returns the stored address, or 0 if unwritten.
func (ref *ValueRef) Address() twig.Address {
	return ref.addr
}

// Get returns the value, reading and caching it from storage on first
// access. Idempotent after the first load.
func (ref *ValueRef) Get(storage Storage) (val string, err error) {
	if ref.loaded || ref.addr == 0 {
		val = ref.val
		return
	}

	data, err := storage.Read(ref.addr)
	if err != nil {
		return
	}
	if val, err = decodeValue(data); err != nil {
		return
	}
	ref.val = val
	ref.loaded = true
	return
}

// Store writes the value if it is loaded but not yet addressed.
// No-op when the ref is empty or already written.
func (ref *ValueRef) Store(storage Storage) (err error) {
	if !ref.loaded || ref.addr != 0 {
		return
	}
	ref.addr, err = storage.Write(encodeValue(ref.val))
	return
}

// NodeRef is the node flavor of the lazy reference: same four states as
// ValueRef with a *Node referent. The empty ref (no node, address 0)
// stands for the empty subtree.
type NodeRef struct {
	addr twig.Address
	node *Node
}

func newNode(node *Node) NodeRef {
	return NodeRef{node: node}
}

func nodeAt(addr twig.Address) NodeRef {
	return NodeRef{addr: addr}
}

// Address returns the stored address, or 0 if empty or unwritten.
func (ref *NodeRef) Address() twig.Address {
	return ref.addr
}

// Empty reports whether the ref names no subtree at all.
func (ref *NodeRef) Empty() bool {
	return ref.node == nil && ref.addr == 0
}

// Length reports the number of key-value pairs in the referenced subtree
// without touching disk: 0 for the empty ref, the node's count when
// loaded. Asking an unloaded on-disk ref is a programming error; the tree
// always follows a ref before computing lengths near it.
func (ref *NodeRef) Length() uint64 {
	if ref.node != nil {
		return ref.node.length
	}
	if ref.addr != 0 {
		panic("tree: length unknown for unloaded node")
	}
	return 0
}

// follow returns the referenced node, reading and caching it on first
// access. The empty ref yields nil.
func (ref *NodeRef) follow(storage Storage) (node *Node, err error) {
	if ref.node != nil || ref.addr == 0 {
		node = ref.node
		return
	}

	data, err := storage.Read(ref.addr)
	if err != nil {
		return
	}
	if node, err = decodeNode(data); err != nil {
		return
	}
	ref.node = node
	return
}

// store persists the subtree below this ref. The node's value and child
// refs are stored first, so writes hit the file in post-order and every
// serialized node records durable child addresses. No-op when the ref is
// empty or already addressed.
func (ref *NodeRef) store(storage Storage) (err error) {
	if ref.node == nil || ref.addr != 0 {
		return
	}

	node := ref.node
	if err = node.value.Store(storage); err != nil {
		return
	}
	if err = node.left.store(storage); err != nil {
		return
	}
	if err = node.right.store(storage); err != nil {
		return
	}

	data, err := encodeNode(node)
	if err != nil {
		return
	}
	ref.addr, err = storage.Write(data)
	return
}
