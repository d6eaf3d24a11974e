package treesit_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/grammars/arith"
)

func TestNullTree(t *testing.T) {
	tree := treesit.Null()
	require.True(t, tree.IsNull())
	require.Nil(t, tree.Language())
	require.Equal(t, "Tree{null}", tree.String())
	require.Nil(t, tree.IntoRaw())
	require.NoError(t, tree.WriteDotGraph(&bytes.Buffer{}))
	require.PanicsWithValue(t, "Tree.RootNode: tree is null", func() { tree.RootNode() })
	require.PanicsWithValue(t, "Tree.PrintDotGraph: tree is null", func() { _ = tree.PrintDotGraph(3) })

	var nilTree *treesit.Tree
	require.True(t, nilTree.IsNull())
	nilTree.Release()
}

func TestRawRoundTrip(t *testing.T) {
	tree := parseArith(t, "1+2")
	want := tree.RootNode().String().StringView()

	raw := tree.IntoRaw()
	require.True(t, tree.IsNull(), "IntoRaw consumes the tree")
	require.False(t, raw.IsNull())

	back := treesit.FromRaw(raw)
	require.True(t, raw.IsNull(), "FromRaw consumes the raw tree")
	require.False(t, back.IsNull())
	require.Equal(t, want, back.RootNode().String().StringView())

	require.True(t, treesit.FromRaw(nil).IsNull())
}

func TestRelease(t *testing.T) {
	tree := parseArith(t, "1")
	tree.Release()
	require.True(t, tree.IsNull())
}

func TestTreeOutlivesParser(t *testing.T) {
	p := treesit.NewParser(treesit.WithLanguage(arith.Language()))
	tree := p.ParseString(treesit.Null(), "a*b")
	p.Close()

	require.Equal(t, "binary_expression", tree.RootNode().Child(0).Type())
	require.Same(t, arith.Language(), tree.Language())
}

func TestTreeString(t *testing.T) {
	tree := parseArith(t, "a+1")
	dump := tree.String()
	lines := strings.Split(strings.TrimSuffix(dump, "\n"), "\n")

	require.True(t, strings.HasPrefix(lines[0], "Tree{root_node=Node{start_byte=0, "))
	require.True(t, strings.HasSuffix(lines[0], "}}"))
	require.Len(t, lines, 5, "root line plus four nodes")
	require.True(t, strings.HasPrefix(lines[1], "  Child{index=0, node=Node{"))
	require.Contains(t, lines[1], "type=binary_expression")
	require.True(t, strings.HasPrefix(lines[2], "    Child{index=0, field_name=left, node=Node{"))
	require.True(t, strings.HasPrefix(lines[3], "    Child{index=1, field_name=operator, node=Node{"))
	require.Contains(t, lines[4], "field_name=right")
	require.Contains(t, lines[4], "grammar_type=integer")

	leaf := parseArith(t, "")
	require.True(t, strings.HasPrefix(leaf.String(), "Tree{root_node=Node{"))
	require.NotContains(t, leaf.String(), "\n")
}

func TestWriteDotGraph(t *testing.T) {
	tree := parseArith(t, "x*(1)")
	var buf bytes.Buffer
	require.NoError(t, tree.WriteDotGraph(&buf))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "digraph tree {\nedge [arrowhead=none]\n"))
	require.True(t, strings.HasSuffix(out, "}\n\n"))
	require.Contains(t, out, `label="binary_expression"`)
	require.Contains(t, out, `label="\"*\"", fontcolor=gray`)
	require.Contains(t, out, `label="left"`)
	require.Equal(t, int(tree.RootNode().DescendantCount())-1, strings.Count(out, " -> "), "one edge per non-root node")
}

func TestWriteDotGraphMarksErrors(t *testing.T) {
	tree := parseArith(t, "(1")
	var buf bytes.Buffer
	require.NoError(t, tree.WriteDotGraph(&buf))
	require.Contains(t, buf.String(), `label="\")\"", fontcolor=red`)
}

func TestPrintDotGraph(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file descriptors are unix only")
	}
	tree := parseArith(t, "1")

	f, err := os.Create(filepath.Join(t.TempDir(), "tree.dot"))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, tree.PrintDotGraph(int(f.Fd())))
	_, err = f.WriteString("// still open\n")
	require.NoError(t, err, "caller keeps the descriptor")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "digraph tree {"))
	require.True(t, strings.HasSuffix(string(data), "// still open\n"))

	require.Error(t, tree.PrintDotGraph(-5))
}
