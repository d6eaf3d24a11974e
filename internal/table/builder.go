package table

// Builder assembles a Table bottom-up. Completed nodes sit on a stack until
// a Reduce adopts them as children; Finish adopts whatever remains under the
// root.
type Builder struct {
	recs   []Record
	edges  []uint32
	fields []uint16
	stack  []entry
}

type entry struct {
	id    uint32
	field uint16
}

// NewBuilder returns a builder sized for roughly hint records.
func NewBuilder(hint int) *Builder {
	if hint < 16 {
		hint = 16
	}
	return &Builder{
		recs:   make([]Record, 0, hint),
		edges:  make([]uint32, 0, hint),
		fields: make([]uint16, 0, hint),
		stack:  make([]entry, 0, 32),
	}
}

// Depth returns the number of nodes waiting on the stack.
func (b *Builder) Depth() int { return len(b.stack) }

// Len returns the number of records built so far.
func (b *Builder) Len() int { return len(b.recs) }

// Record returns a built record for adjustment before Finish.
func (b *Builder) Record(id uint32) *Record { return &b.recs[id] }

// StackID returns the record id of stack entry i.
func (b *Builder) StackID(i int) uint32 { return b.stack[i].id }

// SetField annotates the edge that stack entry i will get once adopted.
func (b *Builder) SetField(i int, field uint16) { b.stack[i].field = field }

// Top returns the id of the most recently pushed node.
func (b *Builder) Top() (uint32, bool) {
	if len(b.stack) == 0 {
		return 0, false
	}
	return b.stack[len(b.stack)-1].id, true
}

// Push adds a childless record and places it on the stack.
func (b *Builder) Push(rec Record) uint32 {
	rec.ChildCount = 0
	rec.NamedChildCount = 0
	rec.DescendantCount = 1
	if rec.Flags&(FlagError|FlagMissing) != 0 {
		rec.Flags |= FlagHasError
	}
	id := uint32(len(b.recs))
	b.recs = append(b.recs, rec)
	b.stack = append(b.stack, entry{id: id})
	return id
}

// Reduce pops the stack entries above mark and makes them the children of
// rec. The span of rec is taken from its first and last child; a record
// without children keeps the span it was given.
func (b *Builder) Reduce(rec Record, mark int) uint32 {
	return b.reduce(rec, mark, false)
}

func (b *Builder) reduce(rec Record, mark int, keepSpan bool) uint32 {
	if mark < 0 {
		mark = 0
	}
	if mark > len(b.stack) {
		mark = len(b.stack)
	}
	children := b.stack[mark:]
	id := uint32(len(b.recs))

	rec.FirstEdge = uint32(len(b.edges))
	rec.ChildCount = uint32(len(children))
	rec.NamedChildCount = 0
	rec.DescendantCount = 1
	if rec.Flags&(FlagError|FlagMissing) != 0 {
		rec.Flags |= FlagHasError
	}

	for i, e := range children {
		child := &b.recs[e.id]
		child.Parent = id + 1
		child.Index = uint32(i)
		if child.Flags.Has(FlagNamed) {
			rec.NamedChildCount++
		}
		if child.Flags.Has(FlagHasError) {
			rec.Flags |= FlagHasError
		}
		rec.DescendantCount += child.DescendantCount
		rec.Lookahead = max(rec.Lookahead, child.Lookahead)
		b.edges = append(b.edges, e.id)
		b.fields = append(b.fields, e.field)
	}

	if len(children) > 0 && !keepSpan {
		first, last := &b.recs[children[0].id], &b.recs[children[len(children)-1].id]
		rec.StartByte, rec.StartPoint = first.StartByte, first.StartPoint
		rec.EndByte, rec.EndPoint = last.EndByte, last.EndPoint
	}

	b.recs = append(b.recs, rec)
	b.stack = append(b.stack[:mark], entry{id: id})
	return id
}

// Copy duplicates the subtree rooted at id in src, applying adjust to every
// copied record, and pushes the copy. Structural fields are rebuilt;
// FlagChanged is cleared.
func (b *Builder) Copy(src *Table, id uint32, adjust func(*Record)) uint32 {
	mark := len(b.stack)
	kids := src.Children(id)
	fields := src.EdgeFields(id)
	for i, kid := range kids {
		b.Copy(src, kid, adjust)
		b.stack[len(b.stack)-1].field = fields[i]
	}

	rec := src.Records[id]
	rec.Flags &^= FlagChanged
	rec.Parent, rec.Index = 0, 0
	if adjust != nil {
		adjust(&rec)
	}
	if len(kids) == 0 {
		return b.Push(rec)
	}
	return b.reduce(rec, mark, true)
}

// Finish adopts every remaining stack entry under root and returns the
// table. The root keeps the span it was given.
func (b *Builder) Finish(root Record) *Table {
	id := b.reduce(root, 0, true)
	b.stack = b.stack[:0]
	return &Table{
		Records: b.recs,
		Edges:   b.edges,
		Fields:  b.fields,
		Root:    id,
	}
}
