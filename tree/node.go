package tree

// Node is one immutable tree node. Mutations never touch an existing
// Node; they build a fresh one sharing the untouched child refs.
//
// length counts the key-value pairs in the subtree rooted here, including
// the node itself: length = 1 + left.Length() + right.Length().
type Node struct {
	left   NodeRef
	right  NodeRef
	key    string
	value  ValueRef
	length uint64
}

// Key returns the node's key.
func (n *Node) Key() string {
	return n.key
}

func newLeaf(key string, value ValueRef) *Node {
	return &Node{key: key, value: value, length: 1}
}

// withLeft derives a node identical to n with the left subtree replaced.
// n.left must be loaded or empty; the replaced subtree's old and new
// lengths adjust the count without touching the right subtree.
func (n *Node) withLeft(left NodeRef) *Node {
	return &Node{
		left:   left,
		right:  n.right,
		key:    n.key,
		value:  n.value,
		length: n.length - n.left.Length() + left.Length(),
	}
}

// withRight derives a node identical to n with the right subtree replaced.
func (n *Node) withRight(right NodeRef) *Node {
	return &Node{
		left:   n.left,
		right:  right,
		key:    n.key,
		value:  n.value,
		length: n.length - n.right.Length() + right.Length(),
	}
}

// withValue derives a node identical to n with the value replaced.
func (n *Node) withValue(value ValueRef) *Node {
	return &Node{
		left:   n.left,
		right:  n.right,
		key:    n.key,
		value:  value,
		length: n.length,
	}
}

// withSuccessor derives the replacement for a deleted two-child node:
// key and value come from the in-order successor, the left subtree stays,
// and right is the right subtree with the successor removed.
func (n *Node) withSuccessor(key string, value ValueRef, right NodeRef) *Node {
	return &Node{
		left:   n.left,
		right:  right,
		key:    key,
		value:  value,
		length: n.length - n.right.Length() + right.Length(),
	}
}
