package treesit

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/golangsnmp/treesit/internal/input"
	"github.com/golangsnmp/treesit/internal/table"
)

// checkInterval is the number of Session.Check calls between polls of the
// cancellation flag, the timeout and the context.
const checkInterval = 100

// maxTimeoutMicros is the largest timeout a time.Duration can hold. Longer
// timeouts never expire.
const maxTimeoutMicros = uint64(math.MaxInt64 / int64(time.Microsecond))

type reuseKey struct {
	start uint32
	state StateID
}

// Session is the tree builder and control surface handed to a Recognizer
// for one parse. Positions are rune indices into the decoded input; the
// session converts them to code-unit offsets and points.
//
// Nodes are built bottom-up on a stack. Mark returns the current stack
// depth; Reduce adopts everything pushed since a mark as the children of a
// new node, or splices them into the parent when the symbol is hidden.
type Session struct {
	ctx      context.Context
	lang     *Language
	text     *input.Text
	b        *table.Builder
	logger   Logger
	cancel   *atomic.Bool
	deadline time.Time

	checks    int
	furthest  int // exclusive rune bound of examined input; Len()+1 after an EOF peek
	lastState StateID
	halt      error

	prev    *tree
	change  input.Change
	changed bool
	reuse   map[reuseKey]uint32
	reused  int

	result *table.Table
}

func newSession(ctx context.Context, p *Parser, text *input.Text, prev *tree) *Session {
	hint := text.Len() / 2
	if prev != nil {
		hint = prev.tbl.Len()
	}
	s := &Session{
		ctx:    ctx,
		lang:   p.lang,
		text:   text,
		b:      table.NewBuilder(hint),
		logger: p.logger,
		cancel: p.cancel,
	}
	if p.timeout > 0 && p.timeout <= maxTimeoutMicros {
		s.deadline = time.Now().Add(time.Duration(p.timeout) * time.Microsecond)
	}

	s.Log(LogTypeParse, "new_parse")
	if prev == nil || prev.lang != p.lang {
		return s
	}
	change, ok := input.Diff(prev.text, text)
	if !ok {
		s.Log(LogTypeParse, "discard_previous reason:encoding")
		return s
	}
	s.prev = prev
	s.change = change
	s.changed = !change.Identical
	s.indexReusable()
	if change.Identical {
		s.Log(LogTypeParse, "reparse identical candidates:%d", len(s.reuse))
	} else {
		s.Log(LogTypeParse, "reparse old:[%d, %d] new:[%d, %d] candidates:%d",
			change.OldStart, change.OldEnd, change.NewStart, change.NewEnd, len(s.reuse))
	}
	return s
}

// indexReusable maps (start, state) to the outermost reusable error-free
// node of the previous tree.
func (s *Session) indexReusable() {
	tbl := s.prev.tbl
	s.reuse = make(map[reuseKey]uint32)
	for id := range tbl.Records {
		r := &tbl.Records[id]
		if !r.Flags.Has(table.FlagReusable) || r.Flags.Has(table.FlagHasError) || r.EndByte == r.StartByte {
			continue
		}
		key := reuseKey{start: r.StartByte, state: StateID(r.State)}
		if cur, ok := s.reuse[key]; ok && tbl.Records[cur].DescendantCount >= r.DescendantCount {
			continue
		}
		s.reuse[key] = uint32(id)
	}
}

// Language returns the language being parsed.
func (s *Session) Language() *Language { return s.lang }

// Len returns the number of runes of input.
func (s *Session) Len() int { return s.text.Len() }

// RuneAt returns the rune at index i. It reports false past the end of
// input. Every call extends the examined region, which bounds reuse of the
// nodes built afterwards.
func (s *Session) RuneAt(i int) (rune, bool) {
	if i < 0 {
		return 0, false
	}
	if i >= s.text.Len() {
		s.furthest = max(s.furthest, s.text.Len()+1)
		return 0, false
	}
	s.furthest = max(s.furthest, i+1)
	return s.text.Rune(i), true
}

// Offset returns the code-unit offset of rune index i.
func (s *Session) Offset(i int) uint32 { return s.text.Offset(i) }

// Point returns the row/column of rune index i.
func (s *Session) Point(i int) Point { return s.text.PointAt(s.text.Offset(i)) }

// Mark returns the current stack depth for a later Reduce, Label or
// ErrorNode.
func (s *Session) Mark() int { return s.b.Depth() }

func (s *Session) lookahead() uint32 {
	if s.furthest > s.text.Len() {
		return s.text.Total() + 1
	}
	return s.text.Offset(s.furthest)
}

func (s *Session) record(sym Symbol, start, end int, state StateID, flags table.Flags) table.Record {
	info := s.lang.info(sym)
	if info.Visible && info.Named {
		flags |= table.FlagNamed
	}
	sb, eb := s.text.Offset(start), s.text.Offset(end)
	return table.Record{
		Symbol:        uint16(sym),
		GrammarSymbol: uint16(sym),
		State:         uint16(state),
		Flags:         flags,
		StartByte:     sb,
		EndByte:       eb,
		StartPoint:    s.text.PointAt(sb),
		EndPoint:      s.text.PointAt(eb),
		Lookahead:     s.lookahead(),
	}
}

func (s *Session) markChanged(id uint32) {
	if !s.changed {
		return
	}
	r := s.b.Record(id)
	if r.StartByte <= s.change.NewEnd && r.EndByte >= s.change.NewStart {
		r.Flags |= table.FlagChanged
	}
}

func (s *Session) push(rec table.Record) uint32 {
	id := s.b.Push(rec)
	s.markChanged(id)
	return id
}

// Leaf pushes a token spanning runes [start, end) recognized in state.
func (s *Session) Leaf(sym Symbol, start, end int, state StateID) {
	s.lastState = state
	s.push(s.record(sym, start, end, state, 0))
	s.Log(LogTypeParse, "shift sym:%s, state:%d", s.lang.SymbolName(sym), state)
}

// Missing pushes a zero-width node at rune index at that error recovery
// inserted to complete a rule.
func (s *Session) Missing(sym Symbol, at int, state StateID) {
	s.lastState = state
	s.push(s.record(sym, at, at, state, table.FlagMissing))
	s.Log(LogTypeParse, "insert_missing sym:%s, position:%d", s.lang.SymbolName(sym), s.text.Offset(at))
}

// Extra pushes a token that may appear anywhere, such as a comment.
func (s *Session) Extra(sym Symbol, start, end int) {
	s.push(s.record(sym, start, end, s.lastState, table.FlagExtra))
	s.Log(LogTypeParse, "shift_extra sym:%s", s.lang.SymbolName(sym))
}

// Label annotates the edges of the non-extra nodes pushed since mark with
// field.
func (s *Session) Label(mark int, field FieldID) {
	for i := max(mark, 0); i < s.b.Depth(); i++ {
		if s.b.Record(s.b.StackID(i)).Flags.Has(table.FlagExtra) {
			continue
		}
		s.b.SetField(i, uint16(field))
	}
}

// Reduce adopts the nodes pushed since mark as the children of a new sym
// node. Hidden symbols leave their children in place for the enclosing node.
func (s *Session) Reduce(sym Symbol, mark int, state StateID) {
	s.reduce(sym, mark, state, false)
}

// ReduceAlias is Reduce with the node exposed under alias.
func (s *Session) ReduceAlias(sym, alias Symbol, mark int, state StateID) {
	if s.reduce(sym, mark, state, true) {
		s.Alias(alias)
	}
}

func (s *Session) reduce(sym Symbol, mark int, state StateID, force bool) bool {
	s.lastState = state
	count := s.b.Depth() - mark
	s.Log(LogTypeParse, "reduce sym:%s, child_count:%d", s.lang.SymbolName(sym), count)
	if !force && !s.lang.info(sym).Visible {
		return false
	}
	rec := s.record(sym, 0, 0, state, 0)
	if count <= 0 {
		at := s.emptyPosition()
		rec.StartByte, rec.EndByte = at, at
		rec.StartPoint = s.text.PointAt(at)
		rec.EndPoint = rec.StartPoint
	}
	id := s.b.Reduce(rec, mark)
	s.markChanged(id)
	return true
}

// emptyPosition places a childless reduction after the last pushed node.
func (s *Session) emptyPosition() uint32 {
	if id, ok := s.b.Top(); ok {
		return s.b.Record(id).EndByte
	}
	return 0
}

// Alias exposes the most recently pushed node under a different public
// symbol. The grammar symbol is kept.
func (s *Session) Alias(alias Symbol) {
	id, ok := s.b.Top()
	if !ok {
		panic("Session.Alias: no node to alias")
	}
	r := s.b.Record(id)
	r.Symbol = uint16(alias)
	r.Flags &^= table.FlagNamed
	if info := s.lang.info(alias); info.Visible && info.Named {
		r.Flags |= table.FlagNamed
	}
}

// ErrorNode wraps the nodes pushed since mark in an ERROR node. It does
// nothing when nothing was pushed.
func (s *Session) ErrorNode(mark int) {
	count := s.b.Depth() - mark
	if count <= 0 {
		return
	}
	s.Log(LogTypeParse, "detect_error child_count:%d", count)
	rec := s.record(SymbolError, 0, 0, StateNone, table.FlagError)
	id := s.b.Reduce(rec, mark)
	s.markChanged(id)
}

// ErrorLeaf pushes an ERROR token over runes the grammar cannot recognize.
func (s *Session) ErrorLeaf(start, end int) {
	s.push(s.record(SymbolError, start, end, StateNone, table.FlagError))
	s.Log(LogTypeParse, "skip_unrecognized_character position:%d", s.text.Offset(start))
}

// MarkReusable allows the most recently pushed node to be copied into later
// parses by Reuse. The node's lookahead is widened to everything examined so
// far, which includes the token that ended it.
func (s *Session) MarkReusable() {
	if id, ok := s.b.Top(); ok {
		r := s.b.Record(id)
		r.Flags |= table.FlagReusable
		r.Lookahead = max(r.Lookahead, s.lookahead())
	}
}

// Reuse copies the node of the previous tree that started at the same
// position in the same state, if the text it examined is unchanged. It
// returns the rune index after the copied node.
func (s *Session) Reuse(at int, state StateID) (int, bool) {
	if s.reuse == nil || at < 0 || at > s.text.Len() {
		return at, false
	}
	off := s.text.Offset(at)
	c := s.change

	var oldOff uint32
	suffix := false
	switch {
	case c.Identical || off < c.NewStart:
		oldOff = off
	case off >= c.NewEnd && int64(off)-c.Delta() >= int64(c.OldEnd):
		oldOff = uint32(int64(off) - c.Delta())
		suffix = true
	default:
		return at, false
	}

	id, ok := s.reuse[reuseKey{start: oldOff, state: state}]
	if !ok {
		return at, false
	}
	old := s.prev.tbl
	if !c.Identical && !suffix && old.Records[id].Lookahead > c.OldStart {
		s.Log(LogTypeParse, "cant_reuse_node sym:%s, reason:lookahead", s.lang.SymbolName(Symbol(old.Records[id].Symbol)))
		return at, false
	}

	shift := int64(off) - int64(oldOff)
	text := s.text
	nid := s.b.Copy(old, id, func(r *table.Record) {
		r.StartByte = uint32(int64(r.StartByte) + shift)
		r.EndByte = uint32(int64(r.EndByte) + shift)
		r.Lookahead = uint32(int64(r.Lookahead) + shift)
		r.StartPoint = text.PointAt(r.StartByte)
		r.EndPoint = text.PointAt(r.EndByte)
	})

	r := s.b.Record(nid)
	if r.Lookahead > text.Total() {
		s.furthest = max(s.furthest, text.Len()+1)
	} else {
		s.furthest = max(s.furthest, text.Index(r.Lookahead))
	}
	s.lastState = state
	s.reused++
	s.Log(LogTypeParse, "reuse_node sym:%s, start:%d, end:%d", s.lang.SymbolName(Symbol(r.Symbol)), r.StartByte, r.EndByte)
	return text.Index(r.EndByte), true
}

// Accept finishes the parse with a root sym node spanning the whole input
// that adopts everything left on the stack.
func (s *Session) Accept(sym Symbol, state StateID) {
	if s.result != nil {
		panic("Session.Accept: parse already accepted")
	}
	s.furthest = s.text.Len() + 1
	root := s.record(sym, 0, s.text.Len(), state, 0)
	if s.changed {
		root.Flags |= table.FlagChanged
	}
	s.result = s.b.Finish(root)
	s.Log(LogTypeParse, "accept")
	s.Log(LogTypeParse, "done reused:%d", s.reused)
}

// Check polls the cancellation flag, the timeout and the context every
// checkInterval calls. Once it fails it keeps returning the same error.
func (s *Session) Check() error {
	if s.halt != nil {
		return s.halt
	}
	s.checks++
	if s.checks < checkInterval {
		return nil
	}
	s.checks = 0
	switch {
	case s.cancel != nil && s.cancel.Load():
		s.halt = ErrCancelled
	case !s.deadline.IsZero() && time.Now().After(s.deadline):
		s.halt = ErrTimeout
	case s.ctx.Err() != nil:
		s.halt = fmt.Errorf("parse interrupted: %w", s.ctx.Err())
	}
	if s.halt != nil {
		s.Log(LogTypeParse, "halt reason:%v", s.halt)
	}
	return s.halt
}

// Logging reports whether a logger receives events.
func (s *Session) Logging() bool { return s.logger != nil }

// Log formats and sends an event to the logger, if any.
func (s *Session) Log(typ LogType, format string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(typ, fmt.Sprintf(format, args...))
}
