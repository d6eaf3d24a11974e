// Package input decodes source text into runes and maps rune indices to
// code-unit offsets and row/column points in the declared encoding.
package input

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Encoding identifies how source bytes are laid out.
type Encoding uint8

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	}
	return "unknown"
}

// Point is a zero-based row/column position. Column counts code units
// since the start of the row.
type Point struct {
	Row    uint32
	Column uint32
}

// Less reports whether p sorts before q.
func (p Point) Less(q Point) bool {
	return p.Row < q.Row || (p.Row == q.Row && p.Column < q.Column)
}

// Text is decoded source. It is immutable after Decode.
type Text struct {
	enc     Encoding
	runes   []rune
	offsets []uint32 // code-unit offset of each rune, plus the total at the end
	lines   []uint32 // code-unit offset of each row start
}

// Decode decodes src in the given encoding. Invalid UTF-8 bytes and
// unpaired UTF-16 surrogates decode to utf8.RuneError, one code unit each.
// A trailing odd byte in UTF-16 input is ignored.
func Decode(src []byte, enc Encoding) *Text {
	t := &Text{enc: enc, lines: []uint32{0}}
	switch enc {
	case UTF16LE, UTF16BE:
		t.decodeUTF16(src)
	default:
		t.enc = UTF8
		t.decodeUTF8(src)
	}
	return t
}

func (t *Text) decodeUTF8(src []byte) {
	t.runes = make([]rune, 0, len(src))
	t.offsets = make([]uint32, 0, len(src)+1)
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		t.push(r, uint32(i), uint32(size))
		i += size
	}
	t.offsets = append(t.offsets, uint32(len(src)))
}

func (t *Text) decodeUTF16(src []byte) {
	n := len(src) / 2
	unit := func(i int) uint16 {
		if t.enc == UTF16BE {
			return uint16(src[2*i])<<8 | uint16(src[2*i+1])
		}
		return uint16(src[2*i]) | uint16(src[2*i+1])<<8
	}
	t.runes = make([]rune, 0, n)
	t.offsets = make([]uint32, 0, n+1)
	for i := 0; i < n; {
		u := unit(i)
		if utf16.IsSurrogate(rune(u)) && u < 0xDC00 && i+1 < n {
			if next := unit(i + 1); next >= 0xDC00 && next <= 0xDFFF {
				t.push(utf16.DecodeRune(rune(u), rune(next)), uint32(i), 2)
				i += 2
				continue
			}
		}
		r := rune(u)
		if utf16.IsSurrogate(r) {
			r = utf8.RuneError
		}
		t.push(r, uint32(i), 1)
		i++
	}
	t.offsets = append(t.offsets, uint32(n))
}

func (t *Text) push(r rune, offset, size uint32) {
	t.runes = append(t.runes, r)
	t.offsets = append(t.offsets, offset)
	if r == '\n' {
		t.lines = append(t.lines, offset+size)
	}
}

// Encoding returns the encoding the text was decoded from.
func (t *Text) Encoding() Encoding { return t.enc }

// Len returns the number of runes.
func (t *Text) Len() int { return len(t.runes) }

// Rune returns the rune at index i. The caller checks bounds.
func (t *Text) Rune(i int) rune { return t.runes[i] }

// Offset returns the code-unit offset of rune index i, for i in [0, Len()].
func (t *Text) Offset(i int) uint32 {
	if i <= 0 {
		return 0
	}
	if i >= len(t.runes) {
		return t.offsets[len(t.runes)]
	}
	return t.offsets[i]
}

// Total returns the length of the text in code units.
func (t *Text) Total() uint32 { return t.offsets[len(t.runes)] }

// Index returns the index of the first rune whose offset is >= off.
func (t *Text) Index(off uint32) int {
	return sort.Search(len(t.runes), func(i int) bool { return t.offsets[i] >= off })
}

// PointAt returns the row/column of a code-unit offset.
func (t *Text) PointAt(off uint32) Point {
	row := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > off }) - 1
	if row < 0 {
		row = 0
	}
	return Point{Row: uint32(row), Column: off - t.lines[row]}
}

// Change describes the single contiguous region in which two texts differ.
// Offsets are code units; the Old pair is in the old text, the New pair in
// the new text.
type Change struct {
	Identical bool
	OldStart  uint32
	OldEnd    uint32
	NewStart  uint32
	NewEnd    uint32
}

// Delta returns the code-unit shift applied to text after the change.
func (c Change) Delta() int64 {
	return int64(c.NewEnd) - int64(c.OldEnd)
}

// Diff finds the common rune prefix and suffix of prev and next and returns
// the region between them. It reports false when the texts use different
// encodings, since offsets are then not comparable.
func Diff(prev, next *Text) (Change, bool) {
	if prev == nil || next == nil || prev.enc != next.enc {
		return Change{}, false
	}

	oldN, newN := prev.Len(), next.Len()
	limit := min(oldN, newN)

	start := 0
	for start < limit && prev.runes[start] == next.runes[start] {
		start++
	}
	if start == oldN && start == newN {
		total := prev.Total()
		return Change{
			Identical: true,
			OldStart:  total,
			OldEnd:    total,
			NewStart:  total,
			NewEnd:    total,
		}, true
	}

	oldEnd, newEnd := oldN, newN
	for oldEnd > start && newEnd > start && prev.runes[oldEnd-1] == next.runes[newEnd-1] {
		oldEnd--
		newEnd--
	}

	return Change{
		OldStart: prev.Offset(start),
		OldEnd:   prev.Offset(oldEnd),
		NewStart: next.Offset(start),
		NewEnd:   next.Offset(newEnd),
	}, true
}
