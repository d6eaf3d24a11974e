package treesit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/golangsnmp/treesit/internal/table"
)

// Node is a handle to one node of a Tree. It is a small value and cheap to
// copy. The zero value is the null node, and every method is safe to call
// on it. A Node is only meaningful while its Tree has not been released or
// consumed.
type Node struct {
	t  *tree
	id uint32
}

// Range is a node's extent.
type Range struct {
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
}

func (n Node) rec() *table.Record { return &n.t.tbl.Records[n.id] }

func (n Node) at(id uint32) Node { return Node{t: n.t, id: id} }

func (n Node) flag(f table.Flags) bool { return n.t != nil && n.rec().Flags.Has(f) }

func (n Node) children() []uint32 {
	if n.t == nil {
		return nil
	}
	return n.t.tbl.Children(n.id)
}

// IsNull reports whether n refers to no node.
func (n Node) IsNull() bool { return n.t == nil }

// Eq reports whether n and o are the same node of the same tree.
func (n Node) Eq(o Node) bool { return n.t == o.t && n.id == o.id }

// Language returns the language of the node's tree, or nil.
func (n Node) Language() *Language {
	if n.t == nil {
		return nil
	}
	return n.t.lang
}

// StartByte returns the code-unit offset where the node starts.
func (n Node) StartByte() uint32 {
	if n.t == nil {
		return 0
	}
	return n.rec().StartByte
}

// EndByte returns the code-unit offset just past the node.
func (n Node) EndByte() uint32 {
	if n.t == nil {
		return 0
	}
	return n.rec().EndByte
}

// StartPoint returns the row/column where the node starts.
func (n Node) StartPoint() Point {
	if n.t == nil {
		return Point{}
	}
	return n.rec().StartPoint
}

// EndPoint returns the row/column just past the node.
func (n Node) EndPoint() Point {
	if n.t == nil {
		return Point{}
	}
	return n.rec().EndPoint
}

// Range returns the node's byte and point extent.
func (n Node) Range() Range {
	if n.t == nil {
		return Range{}
	}
	r := n.rec()
	return Range{StartByte: r.StartByte, EndByte: r.EndByte, StartPoint: r.StartPoint, EndPoint: r.EndPoint}
}

// Symbol returns the public symbol, which is the alias when the grammar
// aliased the rule.
func (n Node) Symbol() Symbol {
	if n.t == nil {
		return SymbolEnd
	}
	return Symbol(n.rec().Symbol)
}

// GrammarSymbol returns the symbol the grammar built the node from.
func (n Node) GrammarSymbol() Symbol {
	if n.t == nil {
		return SymbolEnd
	}
	return Symbol(n.rec().GrammarSymbol)
}

// Type returns the name of Symbol.
func (n Node) Type() string {
	if n.t == nil {
		return ""
	}
	return n.t.lang.SymbolName(n.Symbol())
}

// GrammarType returns the name of GrammarSymbol.
func (n Node) GrammarType() string {
	if n.t == nil {
		return ""
	}
	return n.t.lang.SymbolName(n.GrammarSymbol())
}

// IsNamed reports whether the node is a named rule rather than a literal
// token.
func (n Node) IsNamed() bool { return n.flag(table.FlagNamed) }

// IsExtra reports whether the node is an extra such as a comment.
func (n Node) IsExtra() bool { return n.flag(table.FlagExtra) }

// IsMissing reports whether error recovery inserted the node.
func (n Node) IsMissing() bool { return n.flag(table.FlagMissing) }

// IsError reports whether the node is an ERROR node.
func (n Node) IsError() bool { return n.flag(table.FlagError) }

// HasError reports whether the node or a descendant is an error or missing
// node.
func (n Node) HasError() bool { return n.flag(table.FlagHasError) }

// HasChanges reports whether the node was rebuilt over edited text during
// the reparse that produced its tree.
func (n Node) HasChanges() bool { return n.flag(table.FlagChanged) }

// ChildCount returns the number of children.
func (n Node) ChildCount() uint32 {
	if n.t == nil {
		return 0
	}
	return n.rec().ChildCount
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() uint32 {
	if n.t == nil {
		return 0
	}
	return n.rec().NamedChildCount
}

// DescendantCount returns the number of nodes in the subtree, n included.
func (n Node) DescendantCount() uint32 {
	if n.t == nil {
		return 0
	}
	return n.rec().DescendantCount
}

// Parent returns the parent node, or the null node for the root.
func (n Node) Parent() Node {
	if n.t == nil {
		return Node{}
	}
	p, ok := n.t.tbl.Parent(n.id)
	if !ok {
		return Node{}
	}
	return n.at(p)
}

// Child returns the child at index.
func (n Node) Child(index uint32) Node {
	kids := n.children()
	if uint64(index) >= uint64(len(kids)) {
		return Node{}
	}
	return n.at(kids[index])
}

// NamedChild returns the index-th named child.
func (n Node) NamedChild(index uint32) Node {
	for _, kid := range n.children() {
		if !n.t.tbl.Records[kid].Flags.Has(table.FlagNamed) {
			continue
		}
		if index == 0 {
			return n.at(kid)
		}
		index--
	}
	return Node{}
}

// ChildByFieldID returns the first child whose edge carries field.
func (n Node) ChildByFieldID(field FieldID) Node {
	if n.t == nil || field == FieldNone {
		return Node{}
	}
	kids := n.children()
	for i, f := range n.t.tbl.EdgeFields(n.id) {
		if FieldID(f) == field {
			return n.at(kids[i])
		}
	}
	return Node{}
}

// ChildByFieldName returns the first child whose edge carries the named
// field.
func (n Node) ChildByFieldName(name string) Node {
	if n.t == nil {
		return Node{}
	}
	return n.ChildByFieldID(n.t.lang.FieldIDForName(name))
}

// FieldNameForChild returns the field name on the edge to the child at
// index, or "".
func (n Node) FieldNameForChild(index uint32) string {
	if n.t == nil {
		return ""
	}
	fields := n.t.tbl.EdgeFields(n.id)
	if uint64(index) >= uint64(len(fields)) {
		return ""
	}
	return n.t.lang.FieldNameForID(FieldID(fields[index]))
}

func (n Node) siblings() []uint32 {
	if n.t == nil {
		return nil
	}
	p, ok := n.t.tbl.Parent(n.id)
	if !ok {
		return nil
	}
	return n.t.tbl.Children(p)
}

// NextSibling returns the next child of the parent, or the null node.
func (n Node) NextSibling() Node {
	sibs := n.siblings()
	i := int(n.index()) + 1
	if sibs == nil || i >= len(sibs) {
		return Node{}
	}
	return n.at(sibs[i])
}

// PrevSibling returns the previous child of the parent, or the null node.
func (n Node) PrevSibling() Node {
	sibs := n.siblings()
	i := int(n.index()) - 1
	if sibs == nil || i < 0 {
		return Node{}
	}
	return n.at(sibs[i])
}

// NextNamedSibling returns the next named child of the parent, or the null
// node.
func (n Node) NextNamedSibling() Node {
	sibs := n.siblings()
	if sibs == nil {
		return Node{}
	}
	for i := int(n.index()) + 1; i < len(sibs); i++ {
		if n.t.tbl.Records[sibs[i]].Flags.Has(table.FlagNamed) {
			return n.at(sibs[i])
		}
	}
	return Node{}
}

// PrevNamedSibling returns the previous named child of the parent, or the
// null node.
func (n Node) PrevNamedSibling() Node {
	sibs := n.siblings()
	if sibs == nil {
		return Node{}
	}
	for i := int(n.index()) - 1; i >= 0; i-- {
		if n.t.tbl.Records[sibs[i]].Flags.Has(table.FlagNamed) {
			return n.at(sibs[i])
		}
	}
	return Node{}
}

func (n Node) index() uint32 {
	if n.t == nil {
		return 0
	}
	return n.rec().Index
}

// FirstChildForByte returns the first child that ends after offset.
func (n Node) FirstChildForByte(offset uint32) Node {
	return n.firstChildForByte(offset, false)
}

// FirstNamedChildForByte returns the first named child that ends after
// offset.
func (n Node) FirstNamedChildForByte(offset uint32) Node {
	return n.firstChildForByte(offset, true)
}

func (n Node) firstChildForByte(offset uint32, named bool) Node {
	for _, kid := range n.children() {
		r := &n.t.tbl.Records[kid]
		if r.EndByte <= offset || (named && !r.Flags.Has(table.FlagNamed)) {
			continue
		}
		return n.at(kid)
	}
	return Node{}
}

// DescendantForByteRange returns the deepest node that contains
// [start, end).
func (n Node) DescendantForByteRange(start, end uint32) Node {
	return n.descend(func(r *table.Record) int { return compareSpan(r.StartByte, r.EndByte, start, end) }, false)
}

// NamedDescendantForByteRange is DescendantForByteRange restricted to
// named nodes.
func (n Node) NamedDescendantForByteRange(start, end uint32) Node {
	return n.descend(func(r *table.Record) int { return compareSpan(r.StartByte, r.EndByte, start, end) }, true)
}

// DescendantForPointRange returns the deepest node that contains
// [start, end).
func (n Node) DescendantForPointRange(start, end Point) Node {
	return n.descend(func(r *table.Record) int { return comparePoints(r.StartPoint, r.EndPoint, start, end) }, false)
}

// NamedDescendantForPointRange is DescendantForPointRange restricted to
// named nodes.
func (n Node) NamedDescendantForPointRange(start, end Point) Node {
	return n.descend(func(r *table.Record) int { return comparePoints(r.StartPoint, r.EndPoint, start, end) }, true)
}

// Results of a range comparison against a child.
const (
	spanBefore = iota // child ends too early, try the next one
	spanAfter         // child starts after the range, stop
	spanCovers
)

func compareSpan(childStart, childEnd, start, end uint32) int {
	if childEnd < end || childEnd <= start {
		return spanBefore
	}
	if start < childStart {
		return spanAfter
	}
	return spanCovers
}

func comparePoints(childStart, childEnd, start, end Point) int {
	if childEnd.Less(end) || !start.Less(childEnd) {
		return spanBefore
	}
	if start.Less(childStart) {
		return spanAfter
	}
	return spanCovers
}

func (n Node) descend(cmp func(*table.Record) int, named bool) Node {
	if n.t == nil {
		return Node{}
	}
	node, last := n, n
	for {
		next, ok := Node{}, false
	scan:
		for _, kid := range node.children() {
			switch cmp(&n.t.tbl.Records[kid]) {
			case spanBefore:
				continue
			case spanAfter:
				break scan
			}
			next, ok = node.at(kid), true
			break
		}
		if !ok {
			return last
		}
		node = next
		if !named || node.IsNamed() {
			last = node
		}
	}
}

// ParseState returns the recognizer state the node was built in, or
// StateNone for ERROR nodes.
func (n Node) ParseState() StateID {
	if n.t == nil || n.IsError() {
		return StateNone
	}
	return StateID(n.rec().State)
}

// NextParseState returns the state reached from ParseState on the node's
// grammar symbol.
func (n Node) NextParseState() StateID {
	state := n.ParseState()
	if state == StateNone {
		return StateNone
	}
	return n.t.lang.NextState(state, n.GrammarSymbol())
}

// String renders the subtree as an S-expression of named nodes, with field
// names on the edges that carry one. Only the null node yields the null
// String.
func (n Node) String() String {
	if n.t == nil {
		return String{}
	}
	var sb strings.Builder
	n.writeSexp(&sb, true)
	return newString(sb.String())
}

func (n Node) writeSexp(sb *strings.Builder, root bool) {
	r := n.rec()
	visible := root || r.Flags.Has(table.FlagNamed) || r.Flags.Has(table.FlagMissing)
	if visible {
		switch {
		case r.Flags.Has(table.FlagError) && r.ChildCount == 0 && r.EndByte > r.StartByte:
			sb.WriteString("(UNEXPECTED ")
			sb.WriteString(quoteRune(n.t.text.Rune(n.t.text.Index(r.StartByte))))
		case r.Flags.Has(table.FlagMissing):
			sb.WriteString("(MISSING ")
			sb.WriteString(n.sexpName())
		default:
			sb.WriteString("(")
			sb.WriteString(n.sexpName())
		}
	}

	kids := n.children()
	fields := n.t.tbl.EdgeFields(n.id)
	for i, kid := range kids {
		child := n.at(kid)
		cr := child.rec()
		if !cr.Flags.Has(table.FlagNamed) && !cr.Flags.Has(table.FlagMissing) && cr.ChildCount == 0 {
			continue
		}
		sb.WriteByte(' ')
		if fields[i] != 0 {
			sb.WriteString(n.t.lang.FieldNameForID(FieldID(fields[i])))
			sb.WriteString(": ")
		}
		child.writeSexp(sb, false)
	}

	if visible {
		sb.WriteByte(')')
	}
}

func (n Node) sexpName() string {
	name := n.Type()
	if n.IsNamed() {
		return name
	}
	return fmt.Sprintf("%q", name)
}

func quoteRune(r rune) string {
	if unicode.IsPrint(r) {
		return fmt.Sprintf("'%c'", r)
	}
	return fmt.Sprintf("'\\u%04x'", r)
}

// Describe renders every property of the node as a Node{...} record.
func (n Node) Describe() string {
	return fmt.Sprintf("Node{start_byte=%d, start_point=%s, end_byte=%d, end_point=%s, "+
		"symbol=%d, type=%s, grammar_symbol=%d, grammar_type=%s, "+
		"is_null=%t, is_extra=%t, is_named=%t, is_missing=%t, has_changes=%t, has_error=%t, is_error=%t, "+
		"descendant_count=%d, parse_state=%d, next_parse_state=%d}",
		n.StartByte(), formatPoint(n.StartPoint()), n.EndByte(), formatPoint(n.EndPoint()),
		n.Symbol(), n.Type(), n.GrammarSymbol(), n.GrammarType(),
		n.IsNull(), n.IsExtra(), n.IsNamed(), n.IsMissing(), n.HasChanges(), n.HasError(), n.IsError(),
		n.DescendantCount(), n.ParseState(), n.NextParseState())
}
