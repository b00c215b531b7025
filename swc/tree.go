// Package swc reads and writes SWC morphology files and holds the resulting
// skeleton as an arena-backed tree.
package swc

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask/log"
)

// NoParent is the parent ID declared by the root node.
const NoParent = -1

var (
	ErrNoRoot      = errors.New("root not found")
	ErrNodeMissing = errors.New("node not found")
)

var logger = log.New("swc")

// Node is a single skeleton joint.
type Node struct {
	ID        int
	Structure int
	Pos       ms3.Vec
	Radius    float32
	// ParentID is the parent as declared in the source. It may not resolve
	// to a linked parent, see [Tree.Parent].
	ParentID int

	parent   int // Arena index of linked parent or -1.
	children []int
}

// NumChildren returns the amount of nodes linked as children of n.
func (n Node) NumChildren() int { return len(n.children) }

// IsTermination reports whether n is a leaf.
func (n Node) IsTermination() bool { return len(n.children) == 0 }

// IsElongation reports whether n continues a single branch.
func (n Node) IsElongation() bool { return len(n.children) == 1 }

// IsBifurcation reports whether n splits into two or more branches.
func (n Node) IsBifurcation() bool { return len(n.children) > 1 }

func (n Node) String() string {
	return fmt.Sprintf("%d, %d, %g, %g, %g, %g, %d", n.ID, n.Structure, n.Pos.X, n.Pos.Y, n.Pos.Z, n.Radius, n.ParentID)
}

// Tree is a rooted skeleton. Nodes are stored in an arena in insertion order
// and reference each other by arena index. Nodes whose parent could not be
// resolved when added (orphans) stay in the arena but are not part of the
// root's subtree.
type Tree struct {
	nodes []Node
	index map[int]int
	root  int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{index: make(map[int]int), root: -1}
}

// Add appends n to the tree. The first node declaring [NoParent] becomes the root.
// A node whose parent ID is not already in the tree is kept as an orphan and a
// warning is logged. Adding an existing ID is an error.
func (t *Tree) Add(n Node) error {
	if _, exists := t.index[n.ID]; exists {
		return fmt.Errorf("duplicate node id %d", n.ID)
	}
	n.parent = -1
	n.children = nil
	idx := len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.index[n.ID] = idx

	switch {
	case n.ParentID == NoParent && t.root < 0:
		t.root = idx
	case n.ParentID == NoParent:
		logger.Warningf("extra root node ignored, id: %d", n.ID)
	default:
		if _, ok := t.index[n.ParentID]; !ok {
			logger.Warningf("parent not found, id: %d, pid: %d", n.ID, n.ParentID)
			return nil
		}
		return t.Link(n.ParentID, n.ID)
	}
	return nil
}

// Link appends child to parent's children and records parent as child's linked parent.
// Link does not check for cycles nor for an already linked child.
func (t *Tree) Link(parentID, childID int) error {
	pi, ok := t.index[parentID]
	if !ok {
		return fmt.Errorf("link parent %d: %w", parentID, ErrNodeMissing)
	}
	ci, ok := t.index[childID]
	if !ok {
		return fmt.Errorf("link child %d: %w", childID, ErrNodeMissing)
	}
	t.nodes[pi].children = append(t.nodes[pi].children, ci)
	t.nodes[ci].parent = pi
	return nil
}

// Len returns the total amount of nodes in the tree, including orphans.
func (t *Tree) Len() int { return len(t.nodes) }

// Linked returns the amount of nodes reachable from the root, root included.
func (t *Tree) Linked() int {
	if t.root < 0 {
		return 0
	}
	n := 0
	t.walk(t.root, make([]bool, len(t.nodes)), func(int) { n++ })
	return n
}

// RootID returns the root node's ID.
func (t *Tree) RootID() (int, bool) {
	if t.root < 0 {
		return 0, false
	}
	return t.nodes[t.root].ID, true
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id int) (Node, bool) {
	idx, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[idx], true
}

// Find searches the root's subtree for the node with the given ID.
// Unlike [Tree.Node] it does not find orphans.
func (t *Tree) Find(id int) (Node, bool) {
	idx, ok := t.index[id]
	if !ok || t.root < 0 {
		return Node{}, false
	}
	// Bounded by arena size so malformed links cannot loop forever.
	cur := idx
	for steps := 0; cur >= 0 && steps <= len(t.nodes); steps++ {
		if cur == t.root {
			return t.nodes[idx], true
		}
		cur = t.nodes[cur].parent
	}
	return Node{}, false
}

// Parent returns the linked parent ID of the node with the given ID.
func (t *Tree) Parent(id int) (int, bool) {
	idx, ok := t.index[id]
	if !ok || t.nodes[idx].parent < 0 {
		return 0, false
	}
	return t.nodes[t.nodes[idx].parent].ID, true
}

// Children returns the IDs of nodes linked as children of the node with the given ID.
func (t *Tree) Children(id int) []int {
	idx, ok := t.index[id]
	if !ok {
		return nil
	}
	children := t.nodes[idx].children
	ids := make([]int, len(children))
	for i, ci := range children {
		ids[i] = t.nodes[ci].ID
	}
	return ids
}

// SetRadius sets the radius of every node in the root's subtree.
func (t *Tree) SetRadius(r float32) {
	if t.root < 0 {
		return
	}
	t.walk(t.root, make([]bool, len(t.nodes)), func(idx int) {
		t.nodes[idx].Radius = r
	})
}

func (t *Tree) String() string {
	return fmt.Sprintf("skeleton with %d nodes (%d linked to root)", t.Len(), t.Linked())
}

// walk visits the subtree at idx depth first. seen guards against malformed links.
func (t *Tree) walk(idx int, seen []bool, fn func(idx int)) {
	if seen[idx] {
		return
	}
	seen[idx] = true
	fn(idx)
	for _, ci := range t.nodes[idx].children {
		t.walk(ci, seen, fn)
	}
}
