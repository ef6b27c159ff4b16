package physics

import (
	"testing"
)

func TestBBTree_NodeFromPool(t *testing.T) {
	tree := &BBTree{}
	node := tree.NodeFromPool()
	if node == nil {
		t.Fatal("Expected a node")
	}
	if node.parent != nil || node.obj != nil {
		t.Error("Pooled nodes should come back cleared")
	}

	seen := map[*Node]bool{node: true}
	for i := 0; i < 100; i++ {
		node = tree.NodeFromPool()
		if seen[node] {
			t.Fatalf("Node %d was handed out twice", i)
		}
		seen[node] = true
	}

	tree.NodeRecycle(node)
	if tree.NodeFromPool() != node {
		t.Error("A recycled node should be reused first")
	}
}

func TestBBTree_InsertRemove(t *testing.T) {
	index := NewBBTree(ShapeGetBB, nil)
	tree := index.Class().(*BBTree)

	shapes := make([]*Shape, 20)
	for i := range shapes {
		x := float64(i * 10)
		shapes[i] = &Shape{bb: BB{x, 0, x + 5, 5}, hashid: HashValue(i)}
		tree.Insert(shapes[i], shapes[i].hashid)
	}
	if tree.Count() != 20 {
		t.Fatalf("Expected 20 leaves, got %d", tree.Count())
	}
	if root := tree.root.bb; root != (BB{0, 0, 195, 5}) {
		t.Errorf("Root should bound every leaf, got %v", root)
	}

	for i := 0; i < 20; i += 2 {
		tree.Remove(shapes[i], shapes[i].hashid)
	}
	if tree.Count() != 10 {
		t.Fatalf("Expected 10 leaves, got %d", tree.Count())
	}
	if tree.Contains(shapes[0], 0) || !tree.Contains(shapes[1], 1) {
		t.Error("Contains does not match the removals")
	}

	var hits []*Shape
	tree.Query(nil, BB{0, 0, 40, 5}, func(_, other *Shape) {
		hits = append(hits, other)
	})
	if len(hits) != 2 {
		t.Errorf("Expected shapes 1 and 3, got %v", hits)
	}

	for i := 1; i < 20; i += 2 {
		tree.Remove(shapes[i], shapes[i].hashid)
	}
	if tree.root != nil {
		t.Error("Empty tree should have no root")
	}
}

func TestBBTree_LeafUpdate(t *testing.T) {
	velocity := Vector{100, 0}
	index := NewBBTree(ShapeGetBB, nil)
	tree := index.Class().(*BBTree)
	tree.SetVelocityFunc(func(obj *Shape) Vector {
		return velocity
	})

	shape := &Shape{bb: BB{0, 0, 10, 10}, hashid: 1}
	tree.Insert(shape, 1)
	leaf := tree.leaves[1]
	if leaf.bb.R < 20 {
		t.Errorf("Leaf box should be stretched along the velocity, got %v", leaf.bb)
	}

	shape.bb = BB{2, 0, 12, 10}
	if tree.LeafUpdate(leaf) {
		t.Error("Moving inside the fat box should not reinsert the leaf")
	}

	shape.bb = BB{100, 0, 110, 10}
	if !tree.LeafUpdate(leaf) {
		t.Error("Escaping the fat box should reinsert the leaf")
	}
	if !leaf.bb.Contains(shape.bb) {
		t.Errorf("Reinserted leaf %v should contain %v", leaf.bb, shape.bb)
	}
}
