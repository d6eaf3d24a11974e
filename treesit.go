// Package treesit parses source text into immutable concrete syntax trees
// and navigates them.
//
// A Language describes a grammar's symbols, fields and state transitions and
// carries the grammar's Recognizer. A Parser binds one Language at a time and
// turns text into a Tree; passing the previous Tree back in lets the parser
// copy unchanged subtrees instead of rebuilding them. Nodes are small value
// handles into a Tree and every navigation method is total: a node that does
// not exist comes back as the null Node.
//
// Basic usage:
//
//	p := treesit.NewParser(treesit.WithLanguage(arith.Language()))
//	tree := p.ParseString(treesit.Null(), "1+2*3")
//	if tree.IsNull() {
//	    // no language, timeout or cancellation
//	}
//	root := tree.RootNode()
//	expr := root.NamedChild(0)
//	fmt.Println(expr.ChildByFieldName("right").Type())
package treesit

import (
	"errors"
	"fmt"

	"github.com/golangsnmp/treesit/internal/input"
	"github.com/golangsnmp/treesit/internal/types"
)

var (
	// ErrNoLanguage is returned when a parse is requested before a language
	// was bound.
	ErrNoLanguage = errors.New("no language set")

	// ErrTimeout is returned when a parse runs past the parser's timeout.
	ErrTimeout = errors.New("parse timed out")

	// ErrCancelled is returned when a parse observes the cancellation flag.
	ErrCancelled = errors.New("parse cancelled")

	errNotAccepted = errors.New("recognizer returned without accepting")
)

// LevelTrace is a custom log level more verbose than Debug.
// SlogLogger sends lexer events at this level.
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

// InputEncoding declares how source bytes are laid out. Offsets and columns
// reported by nodes are code units of this encoding.
type InputEncoding = input.Encoding

const (
	InputEncodingUTF8    = input.UTF8
	InputEncodingUTF16LE = input.UTF16LE
	InputEncodingUTF16BE = input.UTF16BE

	// InputEncodingUTF16 is little-endian UTF-16.
	InputEncodingUTF16 = input.UTF16LE
)

// Point is a zero-based row/column position.
type Point = input.Point

// formatPoint renders p as Point{row=R, column=C}.
func formatPoint(p Point) string {
	return fmt.Sprintf("Point{row=%d, column=%d}", p.Row, p.Column)
}

// String is an owned debug rendering. The zero value is the null String.
type String struct {
	s     string
	valid bool
}

func newString(s string) String { return String{s: s, valid: true} }

// IsNull reports whether the rendering failed.
func (s String) IsNull() bool { return !s.valid }

// StringView returns the text, or "" for the null String.
func (s String) StringView() string { return s.s }

// String implements fmt.Stringer.
func (s String) String() string { return s.s }
