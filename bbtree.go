package physics

import (
	"math"
)

// BBTreeVelocityFunc estimates how fast an object moves, so its box can be fattened in that direction.
type BBTreeVelocityFunc func(obj *Shape) Vector

// Node is either a leaf holding an object or an internal node with two children.
type Node struct {
	obj    *Shape
	bb     BB
	parent *Node

	a, b *Node

	// insertion order of a leaf
	order uint
}

// BBTree is a bounding volume hierarchy broad phase. Leaves store slightly enlarged boxes
// and are only reinserted when their object leaves that box.
type BBTree struct {
	*SpatialIndex
	velocityFunc BBTreeVelocityFunc

	leaves map[HashValue]*Node
	order  []*Node
	root   *Node

	pooledNodes *Node

	stamp uint
}

func NewBBTree(bbfunc SpatialIndexBB, staticIndex *SpatialIndex) *SpatialIndex {
	tree := &BBTree{
		leaves: map[HashValue]*Node{},
	}
	tree.SpatialIndex = NewSpatialIndex(tree, bbfunc, staticIndex)
	return tree.SpatialIndex
}

func (tree *BBTree) SetVelocityFunc(f BBTreeVelocityFunc) {
	tree.velocityFunc = f
}

func (tree *BBTree) Count() int {
	return len(tree.order)
}

func (tree *BBTree) Each(f SpatialIndexIterator) {
	for _, leaf := range tree.order {
		f(leaf.obj)
	}
}

func (tree *BBTree) Contains(obj *Shape, hashId HashValue) bool {
	leaf, ok := tree.leaves[hashId]
	return ok && leaf.obj == obj
}

func (tree *BBTree) Insert(obj *Shape, hashId HashValue) {
	leaf := tree.NewLeaf(obj)
	tree.stamp++
	leaf.order = tree.stamp

	tree.leaves[hashId] = leaf
	tree.order = append(tree.order, leaf)
	tree.root = tree.SubtreeInsert(tree.root, leaf)
}

func (tree *BBTree) Remove(obj *Shape, hashId HashValue) {
	leaf, ok := tree.leaves[hashId]
	if !ok {
		return
	}
	delete(tree.leaves, hashId)
	for i, l := range tree.order {
		if l == leaf {
			tree.order = append(tree.order[:i], tree.order[i+1:]...)
			break
		}
	}

	tree.root = tree.SubtreeRemove(tree.root, leaf)
	tree.NodeRecycle(leaf)
}

func (tree *BBTree) Reindex() {
	for _, leaf := range tree.order {
		tree.LeafUpdate(leaf)
	}
}

func (tree *BBTree) ReindexObject(obj *Shape, hashId HashValue) {
	if leaf, ok := tree.leaves[hashId]; ok {
		tree.LeafUpdate(leaf)
	}
}

// ReindexQuery reports each overlapping pair once, from the leaf inserted first.
func (tree *BBTree) ReindexQuery(f SpatialIndexQuery) {
	tree.Reindex()

	for _, leaf := range tree.order {
		bb := tree.bbfunc(leaf.obj)
		tree.root.SubtreeQuery(bb, func(other *Node) {
			if other.order > leaf.order {
				f(leaf.obj, other.obj)
			}
		})
	}
}

func (tree *BBTree) Query(obj *Shape, bb BB, f SpatialIndexQuery) {
	tree.root.SubtreeQuery(bb, func(leaf *Node) {
		f(obj, leaf.obj)
	})
}

// LeafUpdate reinserts a leaf whose object escaped its box.
func (tree *BBTree) LeafUpdate(leaf *Node) bool {
	bb := tree.bbfunc(leaf.obj)
	if leaf.bb.Contains(bb) {
		return false
	}

	tree.root = tree.SubtreeRemove(tree.root, leaf)
	leaf.bb = tree.GetBB(leaf.obj)
	tree.root = tree.SubtreeInsert(tree.root, leaf)
	return true
}

// GetBB is the object's box, enlarged by a margin and its velocity when a velocity func is set.
func (tree *BBTree) GetBB(obj *Shape) BB {
	bb := tree.bbfunc(obj)
	if tree.velocityFunc == nil {
		return bb
	}

	coef := 0.1
	x := (bb.R - bb.L) * coef
	y := (bb.T - bb.B) * coef

	v := tree.velocityFunc(obj).Mult(0.1)
	return BB{
		bb.L + math.Min(-x, v.X),
		bb.B + math.Min(-y, v.Y),
		bb.R + math.Max(x, v.X),
		bb.T + math.Max(y, v.Y),
	}
}

func (node *Node) IsLeaf() bool {
	return node.obj != nil
}

// SubtreeQuery visits the leaves whose boxes overlap bb.
func (node *Node) SubtreeQuery(bb BB, visit func(leaf *Node)) {
	if node == nil || !node.bb.Intersects(bb) {
		return
	}
	if node.IsLeaf() {
		visit(node)
		return
	}
	node.a.SubtreeQuery(bb, visit)
	node.b.SubtreeQuery(bb, visit)
}

// SubtreeInsert adds leaf to the child whose area grows the least.
func (tree *BBTree) SubtreeInsert(subtree *Node, leaf *Node) *Node {
	if subtree == nil {
		leaf.parent = nil
		return leaf
	}
	if subtree.IsLeaf() {
		parent := subtree.parent
		node := tree.NewNode(leaf, subtree)
		node.parent = parent
		return node
	}

	cost_a := subtree.b.bb.Area() + subtree.a.bb.MergedArea(leaf.bb)
	cost_b := subtree.a.bb.Area() + subtree.b.bb.MergedArea(leaf.bb)

	if cost_a == cost_b {
		cost_a = subtree.a.bb.Proximity(leaf.bb)
		cost_b = subtree.b.bb.Proximity(leaf.bb)
	}

	if cost_b < cost_a {
		NodeSetB(subtree, tree.SubtreeInsert(subtree.b, leaf))
	} else {
		NodeSetA(subtree, tree.SubtreeInsert(subtree.a, leaf))
	}

	subtree.bb = subtree.bb.Merge(leaf.bb)
	return subtree
}

// SubtreeRemove unlinks leaf, its parent is replaced by the sibling.
func (tree *BBTree) SubtreeRemove(subtree *Node, leaf *Node) *Node {
	if leaf == subtree {
		leaf.parent = nil
		return nil
	}

	parent := leaf.parent
	leaf.parent = nil
	if parent == subtree {
		other := subtree.Other(leaf)
		other.parent = subtree.parent
		tree.NodeRecycle(subtree)
		return other
	}

	tree.NodeReplaceChild(parent.parent, parent, parent.Other(leaf))
	return subtree
}

func (node *Node) Other(child *Node) *Node {
	if node.a == child {
		return node.b
	}
	return node.a
}

// NodeReplaceChild swaps child for value and shrinks the boxes up to the root.
func (tree *BBTree) NodeReplaceChild(parent, child, value *Node) {
	if parent.a == child {
		tree.NodeRecycle(parent.a)
		NodeSetA(parent, value)
	} else {
		tree.NodeRecycle(parent.b)
		NodeSetB(parent, value)
	}

	for node := parent; node != nil; node = node.parent {
		node.bb = node.a.bb.Merge(node.b.bb)
	}
}

func (tree *BBTree) NewNode(a, b *Node) *Node {
	node := tree.NodeFromPool()
	node.obj = nil
	node.bb = a.bb.Merge(b.bb)
	node.parent = nil

	NodeSetA(node, a)
	NodeSetB(node, b)
	return node
}

func NodeSetA(node, value *Node) {
	node.a = value
	value.parent = node
}

func NodeSetB(node, value *Node) {
	node.b = value
	value.parent = node
}

func (tree *BBTree) NewLeaf(obj *Shape) *Node {
	node := tree.NodeFromPool()
	node.obj = obj
	node.bb = tree.GetBB(obj)
	node.parent = nil
	node.a = nil
	node.b = nil

	return node
}

func (tree *BBTree) NodeFromPool() *Node {
	if tree.pooledNodes == nil {
		// Pool is exhausted make more
		for i := 0; i < 32; i++ {
			tree.NodeRecycle(&Node{})
		}
	}

	node := tree.pooledNodes
	tree.pooledNodes = node.parent
	*node = Node{}
	return node
}

func (tree *BBTree) NodeRecycle(node *Node) {
	*node = Node{}
	node.parent = tree.pooledNodes
	tree.pooledNodes = node
}
