// Package table stores a parsed syntax tree as flat node records.
//
// Records are addressed by their index in Table.Records. A node's children
// are a contiguous run of Edges, and the field annotation of each edge sits
// at the same position in Fields. Parent links are record indices plus one,
// so zero means "no parent". Nothing in a Table changes after Finish.
package table

import "github.com/golangsnmp/treesit/internal/input"

// Flags classify a record.
type Flags uint8

const (
	FlagNamed Flags = 1 << iota
	FlagExtra
	FlagMissing
	FlagError
	FlagHasError
	FlagChanged
	FlagReusable
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Record is one node of the tree.
type Record struct {
	Symbol        uint16 // public symbol, aliased when the grammar aliases the rule
	GrammarSymbol uint16
	State         uint16
	Flags         Flags

	StartByte  uint32
	EndByte    uint32
	StartPoint input.Point
	EndPoint   input.Point

	// Lookahead is the exclusive code-unit bound of input examined while the
	// node was built. A value past the input total means end of input was
	// examined.
	Lookahead uint32

	Parent          uint32 // parent index + 1; 0 for the root
	Index           uint32 // position among the parent's children
	FirstEdge       uint32
	ChildCount      uint32
	NamedChildCount uint32
	DescendantCount uint32
}

// Table is the finished record store.
type Table struct {
	Records []Record
	Edges   []uint32
	Fields  []uint16
	Root    uint32
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// Record returns the record with the given id.
func (t *Table) Record(id uint32) *Record { return &t.Records[id] }

// Children returns the child ids of a record.
func (t *Table) Children(id uint32) []uint32 {
	r := &t.Records[id]
	return t.Edges[r.FirstEdge : r.FirstEdge+r.ChildCount]
}

// EdgeFields returns the field ids of a record's child edges.
func (t *Table) EdgeFields(id uint32) []uint16 {
	r := &t.Records[id]
	return t.Fields[r.FirstEdge : r.FirstEdge+r.ChildCount]
}

// Parent returns the parent id of a record.
func (t *Table) Parent(id uint32) (uint32, bool) {
	p := t.Records[id].Parent
	if p == 0 {
		return 0, false
	}
	return p - 1, true
}
