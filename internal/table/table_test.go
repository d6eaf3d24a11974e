package table

import (
	"testing"

	"github.com/golangsnmp/treesit/internal/input"
	"github.com/golangsnmp/treesit/internal/testutil"
)

func leaf(sym uint16, start, end uint32, flags Flags) Record {
	return Record{
		Symbol:        sym,
		GrammarSymbol: sym,
		Flags:         flags,
		StartByte:     start,
		EndByte:       end,
		StartPoint:    input.Point{Column: start},
		EndPoint:      input.Point{Column: end},
		Lookahead:     end + 1,
	}
}

// build makes (root (add 1 + (mul 2 * 3))) shaped like "1+2*3".
func build(t *testing.T) *Table {
	t.Helper()
	b := NewBuilder(0)
	outer := b.Depth()
	b.Push(leaf(1, 0, 1, FlagNamed))
	b.SetField(b.Depth()-1, 1)
	b.Push(leaf(2, 1, 2, 0))
	inner := b.Depth()
	b.Push(leaf(1, 2, 3, FlagNamed))
	b.Push(leaf(3, 3, 4, 0))
	b.Push(leaf(1, 4, 5, FlagNamed))
	b.Reduce(Record{Symbol: 5, GrammarSymbol: 5, Flags: FlagNamed}, inner)
	b.SetField(b.Depth()-1, 2)
	b.Reduce(Record{Symbol: 5, GrammarSymbol: 5, Flags: FlagNamed}, outer)
	testutil.Equal(t, 1, b.Depth(), "one node left on the stack")
	return b.Finish(Record{Symbol: 9, Flags: FlagNamed, EndByte: 5, EndPoint: input.Point{Column: 5}})
}

func TestReduceShape(t *testing.T) {
	tbl := build(t)

	root := tbl.Record(tbl.Root)
	testutil.Equal(t, uint32(1), root.ChildCount, "root child count")
	testutil.Equal(t, uint32(8), root.DescendantCount, "descendant count")
	testutil.Equal(t, uint32(0), root.Parent, "root has no parent")

	outer := tbl.Children(tbl.Root)[0]
	testutil.Equal(t, uint32(3), tbl.Record(outer).ChildCount, "outer children")
	testutil.Equal(t, uint32(2), tbl.Record(outer).NamedChildCount, "outer named children")
	testutil.SliceEqual(t, []uint16{1, 0, 2}, tbl.EdgeFields(outer), "outer edge fields")

	inner := tbl.Children(outer)[2]
	r := tbl.Record(inner)
	testutil.Equal(t, uint32(2), r.StartByte, "inner start from first child")
	testutil.Equal(t, uint32(5), r.EndByte, "inner end from last child")
	testutil.Equal(t, uint32(6), r.Lookahead, "lookahead from children")
	testutil.Equal(t, uint32(2), r.Index, "inner index")

	parent, ok := tbl.Parent(inner)
	testutil.True(t, ok, "inner has a parent")
	testutil.Equal(t, outer, parent, "inner parent")

	_, ok = tbl.Parent(tbl.Root)
	testutil.False(t, ok, "root parent")
}

func TestErrorPropagates(t *testing.T) {
	b := NewBuilder(4)
	mark := b.Depth()
	b.Push(leaf(1, 0, 1, FlagNamed))
	b.Push(leaf(1, 1, 1, FlagNamed|FlagMissing))
	id := b.Reduce(Record{Symbol: 5, Flags: FlagNamed}, mark)
	tbl := b.Finish(Record{Symbol: 9, EndByte: 1})

	testutil.True(t, tbl.Record(id).Flags.Has(FlagHasError), "parent of missing has error")
	testutil.True(t, tbl.Record(tbl.Root).Flags.Has(FlagHasError), "root has error")
	testutil.False(t, tbl.Record(id).Flags.Has(FlagMissing), "missing flag is not inherited")
}

func TestReduceEmptyKeepsSpan(t *testing.T) {
	b := NewBuilder(1)
	id := b.Reduce(Record{Symbol: 4, StartByte: 3, EndByte: 3}, b.Depth())
	tbl := b.Finish(Record{Symbol: 9, EndByte: 3})

	testutil.Equal(t, uint32(3), tbl.Record(id).StartByte, "start")
	testutil.Equal(t, uint32(0), tbl.Record(id).ChildCount, "no children")
}

func TestCopyShifts(t *testing.T) {
	src := build(t)
	outer := src.Children(src.Root)[0]
	src.Record(outer).Flags |= FlagChanged

	b := NewBuilder(8)
	b.Push(leaf(7, 0, 2, FlagNamed))
	copied := b.Copy(src, outer, func(r *Record) {
		r.StartByte += 3
		r.EndByte += 3
	})
	tbl := b.Finish(Record{Symbol: 9, EndByte: 8})

	r := tbl.Record(copied)
	testutil.Equal(t, uint32(3), r.StartByte, "shifted start")
	testutil.Equal(t, uint32(8), r.EndByte, "shifted end")
	testutil.Equal(t, uint32(7), r.DescendantCount, "subtree size kept")
	testutil.Equal(t, uint32(1), r.Index, "index in new parent")
	testutil.False(t, r.Flags.Has(FlagChanged), "changed flag cleared")
	testutil.SliceEqual(t, []uint16{1, 0, 2}, tbl.EdgeFields(copied), "fields copied")

	for _, kid := range tbl.Children(copied) {
		parent, _ := tbl.Parent(kid)
		testutil.Equal(t, copied, parent, "copied child parent")
	}
}

func TestFlagsHas(t *testing.T) {
	f := FlagNamed | FlagExtra
	testutil.True(t, f.Has(FlagNamed), "named")
	testutil.True(t, f.Has(FlagNamed|FlagExtra), "both")
	testutil.False(t, f.Has(FlagNamed|FlagError), "not error")
}
