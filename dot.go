package treesit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/golangsnmp/treesit/internal/table"
)

// WriteDotGraph writes a Graphviz rendering of the tree to w. A null tree
// writes nothing.
func (t *Tree) WriteDotGraph(w io.Writer) error {
	if t.IsNull() {
		return nil
	}
	return writeDot(w, t.data)
}

func writeDot(w io.Writer, tr *tree) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("digraph tree {\n")
	bw.WriteString("edge [arrowhead=none]\n")
	writeDotNode(bw, tr, tr.tbl.Root)
	bw.WriteString("}\n\n")
	return bw.Flush()
}

func writeDotNode(w *bufio.Writer, tr *tree, id uint32) {
	r := &tr.tbl.Records[id]
	name := tr.lang.SymbolName(Symbol(r.Symbol))
	label := name
	if !r.Flags.Has(table.FlagNamed) {
		label = "\\\"" + name + "\\\""
	}

	fmt.Fprintf(w, "node_%d [label=\"%s\"", id, escapeDot(label))
	switch {
	case r.Flags.Has(table.FlagError), r.Flags.Has(table.FlagMissing):
		w.WriteString(", fontcolor=red")
	case r.Flags.Has(table.FlagExtra), !r.Flags.Has(table.FlagNamed):
		w.WriteString(", fontcolor=gray")
	}
	fmt.Fprintf(w, ", tooltip=\"range: %d - %d\\nstate: %d\\nchanged: %t\\nreusable: %t\\nlookahead: %d\\ndescendants: %d\"]\n",
		r.StartByte, r.EndByte, r.State, r.Flags.Has(table.FlagChanged), r.Flags.Has(table.FlagReusable),
		r.Lookahead, r.DescendantCount)

	fields := tr.tbl.EdgeFields(id)
	for i, kid := range tr.tbl.Children(id) {
		writeDotNode(w, tr, kid)
		fmt.Fprintf(w, "node_%d -> node_%d [tooltip=%d", id, kid, i)
		if fields[i] != 0 {
			fmt.Fprintf(w, ", label=\"%s\"", tr.lang.FieldNameForID(FieldID(fields[i])))
		}
		w.WriteString("]\n")
	}
}

func escapeDot(s string) string {
	if !strings.ContainsAny(s, "\n") {
		return s
	}
	return strings.ReplaceAll(s, "\n", "\\n")
}
