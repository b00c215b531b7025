package swc

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask/log"
)

const branching = `# id structure x y z radius parent
1 1 0 0 0 2 -1

2 3 0 0 5 1 1
3 3 3 0 8 1 2
4 3 -3 0 8 1 2
5 3 -3 0 12 0.5 4 extra fields ignored
`

func TestRead(t *testing.T) {
	tree, err := Read(strings.NewReader(branching))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 5 || tree.Linked() != 5 {
		t.Fatalf("got %d nodes (%d linked), want 5", tree.Len(), tree.Linked())
	}
	root, ok := tree.RootID()
	if !ok || root != 1 {
		t.Fatalf("root: got %d %v", root, ok)
	}
	n, ok := tree.Node(2)
	if !ok {
		t.Fatal("node 2 not found")
	}
	want := ms3.Vec{Z: 5}
	if n.Pos != want || n.Radius != 1 || n.Structure != 3 || n.ParentID != 1 {
		t.Errorf("bad node 2: %v", n)
	}
	if !n.IsBifurcation() || n.NumChildren() != 2 {
		t.Errorf("node 2 should bifurcate, got %d children", n.NumChildren())
	}
	if n, _ := tree.Node(4); !n.IsElongation() {
		t.Error("node 4 should be an elongation")
	}
	if n, _ := tree.Node(5); !n.IsTermination() {
		t.Error("node 5 should be a termination")
	}
	if got := tree.Children(2); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("children of 2: got %v, want [3 4]", got)
	}
	if p, ok := tree.Parent(5); !ok || p != 4 {
		t.Errorf("parent of 5: got %d %v", p, ok)
	}
	if _, ok := tree.Parent(1); ok {
		t.Error("root should have no linked parent")
	}
}

func TestReadOrphan(t *testing.T) {
	var buf bytes.Buffer
	log.SetSink(&buf)
	defer log.SetSink(os.Stdout)
	const src = "1 1 0 0 0 1 -1\n2 1 0 0 10 1 1\n3 1 5 5 5 1 99\n"
	tree, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 3 {
		t.Errorf("orphan should be counted, got Len %d", tree.Len())
	}
	if tree.Linked() != 2 {
		t.Errorf("orphan should not be linked, got Linked %d", tree.Linked())
	}
	if _, ok := tree.Node(3); !ok {
		t.Error("orphan should be retained in arena")
	}
	if _, ok := tree.Find(3); ok {
		t.Error("orphan should not be found in root subtree")
	}
	if _, ok := tree.Find(2); !ok {
		t.Error("node 2 should be found in root subtree")
	}
	if !strings.Contains(buf.String(), "parent not found") {
		t.Errorf("expected orphan warning in log output, got %q", buf.String())
	}
}

func TestReadErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		src  string
		want string
	}{
		{name: "short", src: "1 1 0 0 0 1\n", want: "line 1"},
		{name: "badfloat", src: "1 1 0 zero 0 1 -1\n", want: "line 1"},
		{name: "badid", src: "# c\n1.5 1 0 0 0 1 -1\n", want: "line 2"},
		{name: "negradius", src: "1 1 0 0 0 -1 -1\n", want: "negative radius"},
		{name: "duplicate", src: "1 1 0 0 0 1 -1\n1 1 0 0 1 1 1\n", want: "duplicate"},
	} {
		_, err := Read(strings.NewReader(test.src))
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("%s: got error %v, want containing %q", test.name, err, test.want)
		}
	}
	_, err := Read(strings.NewReader("2 1 0 0 0 1 1\n"))
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("expected ErrNoRoot, got %v", err)
	}
}

func TestSetRadius(t *testing.T) {
	log.SetSink(&bytes.Buffer{})
	defer log.SetSink(os.Stdout)
	tree, err := Read(strings.NewReader(branching + "6 1 0 0 0 3 77\n"))
	if err != nil {
		t.Fatal(err)
	}
	tree.SetRadius(0.25)
	for id := 1; id <= 5; id++ {
		n, _ := tree.Node(id)
		if n.Radius != 0.25 {
			t.Errorf("node %d radius %v, want 0.25", id, n.Radius)
		}
	}
	if n, _ := tree.Node(6); n.Radius != 3 {
		t.Errorf("orphan radius should be untouched, got %v", n.Radius)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tree, err := Read(strings.NewReader(branching))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = Write(&buf, tree)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != tree.Len() {
		t.Fatalf("round trip lost nodes: %d != %d", got.Len(), tree.Len())
	}
	for id := 1; id <= 5; id++ {
		a, _ := tree.Node(id)
		b, _ := got.Node(id)
		if a.String() != b.String() {
			t.Errorf("node %d: %q != %q", id, a, b)
		}
	}
}
