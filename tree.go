package treesit

import (
	"fmt"
	"strings"

	"github.com/golangsnmp/treesit/internal/input"
	"github.com/golangsnmp/treesit/internal/table"
)

// tree is the data a Tree owns. Nodes point here directly.
type tree struct {
	lang *Language
	text *input.Text
	tbl  *table.Table
}

// Tree is an immutable parse result. It has move semantics by convention:
// IntoRaw and the parse entry points consume it, after which the value is
// null. A nil *Tree is also null.
type Tree struct {
	data *tree
}

// RawTree is the owned contents of a Tree in transit.
type RawTree struct {
	data *tree
}

// Null returns the null Tree.
func Null() *Tree { return &Tree{} }

// FromRaw wraps raw in a Tree and consumes raw.
func FromRaw(raw *RawTree) *Tree {
	if raw == nil {
		return Null()
	}
	t := &Tree{data: raw.data}
	raw.data = nil
	return t
}

// IsNull reports whether t holds no tree.
func (t *Tree) IsNull() bool { return t == nil || t.data == nil }

// IntoRaw moves the contents out of t, leaving t null. It returns nil for a
// null tree.
func (t *Tree) IntoRaw() *RawTree {
	if t.IsNull() {
		return nil
	}
	raw := &RawTree{data: t.data}
	t.data = nil
	return raw
}

// IsNull reports whether raw holds no tree.
func (raw *RawTree) IsNull() bool { return raw == nil || raw.data == nil }

// Release drops the tree's contents. Nodes taken from it must not be used
// afterwards.
func (t *Tree) Release() {
	if t != nil {
		t.data = nil
	}
}

// Language returns the language the tree was parsed with, or nil.
func (t *Tree) Language() *Language {
	if t.IsNull() {
		return nil
	}
	return t.data.lang
}

// RootNode returns the root node. It panics on a null tree.
func (t *Tree) RootNode() Node {
	if t.IsNull() {
		panic("Tree.RootNode: tree is null")
	}
	return Node{t: t.data, id: t.data.tbl.Root}
}

// PrintDotGraph writes a Graphviz rendering of the tree to a file
// descriptor the caller keeps open. It panics on a null tree.
func (t *Tree) PrintDotGraph(fd int) error {
	if t.IsNull() {
		panic("Tree.PrintDotGraph: tree is null")
	}
	f, err := dupFile(fd)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeDot(f, t.data)
}

// String renders the tree with one line per node, indented by depth. A null
// tree renders as Tree{null}.
func (t *Tree) String() string {
	if t.IsNull() {
		return "Tree{null}"
	}
	root := t.RootNode()
	var sb strings.Builder
	sb.WriteString("Tree{root_node=")
	sb.WriteString(root.Describe())
	sb.WriteString("}")
	n := root.ChildCount()
	if n == 0 {
		return sb.String()
	}
	sb.WriteByte('\n')
	for i := range n {
		dumpChild(&sb, root, i, 1)
	}
	return sb.String()
}

func dumpChild(sb *strings.Builder, parent Node, index, level uint32) {
	for range level {
		sb.WriteString("  ")
	}
	fmt.Fprintf(sb, "Child{index=%d, ", index)
	if name := parent.FieldNameForChild(index); name != "" {
		fmt.Fprintf(sb, "field_name=%s, ", name)
	}
	node := parent.Child(index)
	sb.WriteString("node=")
	sb.WriteString(node.Describe())
	sb.WriteString("}\n")
	for i := range node.ChildCount() {
		dumpChild(sb, node, i, level+1)
	}
}
