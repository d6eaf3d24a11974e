package treesit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/golangsnmp/treesit/internal/input"
	"github.com/golangsnmp/treesit/internal/testutil"
)

// Symbols of the scripted test language.
const (
	symWord Symbol = iota + 1
	symPlus
	symPair
	symHidden
	symDoc
	symRenamed
	symNote
)

const (
	fieldHead FieldID = iota + 1
	fieldTail
)

type scripted func(s *Session) error

func (f scripted) Recognize(s *Session) error { return f(s) }

func testLanguage(t *testing.T, script scripted) *Language {
	t.Helper()
	lang, err := NewLanguage(LanguageDefinition{
		Name:    "scripted",
		Version: LanguageVersion,
		Symbols: []SymbolInfo{
			{Name: "end"},
			symWord:    {Name: "word", Visible: true, Named: true},
			symPlus:    {Name: "+", Visible: true},
			symPair:    {Name: "pair", Visible: true, Named: true},
			symHidden:  {Name: "_hidden"},
			symDoc:     {Name: "doc", Visible: true, Named: true},
			symRenamed: {Name: "renamed", Visible: true, Named: true},
			symNote:    {Name: "note", Visible: true, Named: true},
		},
		Fields:     []string{"head", "tail"},
		StateCount: 3,
		Transitions: map[StateID][]Transition{
			1: {{Symbol: symPair, Next: 2}, {Symbol: symWord, Next: 1}},
		},
		Recognizer: script,
	})
	testutil.NoError(t, err, "NewLanguage")
	return lang
}

func runScript(t *testing.T, text string, script scripted) (*Tree, error) {
	t.Helper()
	p := NewParser(WithLanguage(testLanguage(t, script)))
	return p.Parse(context.Background(), nil, []byte(text), InputEncodingUTF8)
}

func TestSessionHiddenSplice(t *testing.T) {
	tree, err := runScript(t, "a+b", func(s *Session) error {
		outer := s.Mark()
		inner := s.Mark()
		s.Leaf(symWord, 0, 1, 1)
		s.Label(inner, fieldHead)
		s.Leaf(symPlus, 1, 2, 1)
		s.Reduce(symHidden, inner, 1)
		s.Leaf(symWord, 2, 3, 1)
		s.Label(s.Mark()-1, fieldTail)
		s.Reduce(symPair, outer, 1)
		s.Accept(symDoc, 1)
		return nil
	})
	testutil.NoError(t, err, "parse")

	pair := tree.RootNode().Child(0)
	testutil.Equal(t, "pair", pair.Type(), "pair type")
	testutil.Equal(t, uint32(3), pair.ChildCount(), "hidden children spliced")
	testutil.Equal(t, "head", pair.FieldNameForChild(0), "field kept through splice")
	testutil.Equal(t, "tail", pair.FieldNameForChild(2), "tail field")
	testutil.True(t, pair.ChildByFieldID(fieldHead).Eq(pair.Child(0)), "field lookup")
	testutil.Equal(t, uint32(4), pair.DescendantCount(), "pair and its three leaves")
	testutil.Equal(t, StateID(2), pair.NextParseState(), "transition on pair")
}

func TestSessionAlias(t *testing.T) {
	tree, err := runScript(t, "ab", func(s *Session) error {
		m := s.Mark()
		s.Leaf(symWord, 0, 1, 1)
		s.Alias(symPlus)
		s.Leaf(symWord, 1, 2, 1)
		s.ReduceAlias(symHidden, symRenamed, m, 1)
		s.Accept(symDoc, 1)
		return nil
	})
	testutil.NoError(t, err, "parse")

	renamed := tree.RootNode().Child(0)
	testutil.Equal(t, "renamed", renamed.Type(), "alias type")
	testutil.Equal(t, "_hidden", renamed.GrammarType(), "grammar type")
	testutil.True(t, renamed.IsNamed(), "alias is named")

	anon := renamed.Child(0)
	testutil.Equal(t, symPlus, anon.Symbol(), "aliased leaf")
	testutil.Equal(t, symWord, anon.GrammarSymbol(), "grammar symbol kept")
	testutil.False(t, anon.IsNamed(), "anonymous alias")
	testutil.Equal(t, uint32(1), renamed.NamedChildCount(), "one named child")
}

func TestSessionErrors(t *testing.T) {
	tree, err := runScript(t, "a?", func(s *Session) error {
		m := s.Mark()
		s.ErrorNode(m)
		s.Leaf(symWord, 0, 1, 1)
		s.ErrorLeaf(1, 2)
		s.Missing(symWord, 2, 1)
		s.Accept(symDoc, 1)
		return nil
	})
	testutil.NoError(t, err, "parse")

	root := tree.RootNode()
	testutil.Equal(t, uint32(3), root.ChildCount(), "empty ErrorNode adds nothing")
	testutil.True(t, root.Child(1).IsError(), "error leaf")
	testutil.True(t, root.Child(2).IsMissing(), "missing")
	testutil.True(t, root.HasError(), "root has error")
	testutil.False(t, root.Child(0).HasError(), "clean sibling")
	testutil.Equal(t, "(doc (word) (UNEXPECTED '?') (MISSING word))", root.String().StringView(), "sexp")
}

func TestSessionEmptyReduce(t *testing.T) {
	tree, err := runScript(t, "ab", func(s *Session) error {
		s.Leaf(symWord, 0, 1, 1)
		s.Reduce(symPair, s.Mark(), 1)
		s.Leaf(symWord, 1, 2, 1)
		s.Accept(symDoc, 1)
		return nil
	})
	testutil.NoError(t, err, "parse")

	empty := tree.RootNode().Child(1)
	testutil.Equal(t, "pair", empty.Type(), "empty node")
	testutil.Equal(t, uint32(1), empty.StartByte(), "placed after previous node")
	testutil.Equal(t, uint32(1), empty.EndByte(), "zero width")
}

func TestSessionLabelSkipsExtras(t *testing.T) {
	tree, err := runScript(t, "a#", func(s *Session) error {
		m := s.Mark()
		s.Leaf(symWord, 0, 1, 1)
		s.Extra(symNote, 1, 2)
		s.Label(m, fieldHead)
		s.Accept(symDoc, 1)
		return nil
	})
	testutil.NoError(t, err, "parse")

	root := tree.RootNode()
	testutil.Equal(t, "head", root.FieldNameForChild(0), "word labelled")
	testutil.Equal(t, "", root.FieldNameForChild(1), "extra not labelled")
	testutil.True(t, root.Child(1).IsExtra(), "extra")
}

func TestSessionNotAccepted(t *testing.T) {
	tree, err := runScript(t, "a", func(s *Session) error { return nil })
	testutil.ErrorIs(t, err, errNotAccepted)
	testutil.True(t, tree.IsNull(), "null tree")
}

func TestSessionRecognizerError(t *testing.T) {
	boom := errors.New("boom")
	_, err := runScript(t, "a", func(s *Session) error { return boom })
	testutil.ErrorIs(t, err, boom)
	testutil.Contains(t, err.Error(), "scripted", "language name in error")
}

func TestSessionAcceptTwice(t *testing.T) {
	testutil.Panics(t, "Session.Accept", func() {
		_, _ = runScript(t, "", func(s *Session) error {
			s.Accept(symDoc, 1)
			s.Accept(symDoc, 1)
			return nil
		})
	})
}

func TestSessionCheckInterval(t *testing.T) {
	flag := new(atomic.Bool)
	flag.Store(true)
	s := &Session{ctx: context.Background(), cancel: flag}

	for i := 1; i < checkInterval; i++ {
		testutil.NoError(t, s.Check(), "before the poll")
	}
	testutil.ErrorIs(t, s.Check(), ErrCancelled)
	testutil.ErrorIs(t, s.Check(), ErrCancelled, "sticky")
}

func TestSessionLookahead(t *testing.T) {
	s := &Session{text: input.Decode([]byte("abc"), input.UTF8)}

	testutil.Equal(t, uint32(0), s.lookahead(), "nothing read")
	s.RuneAt(1)
	testutil.Equal(t, uint32(2), s.lookahead(), "exclusive bound")
	s.RuneAt(0)
	testutil.Equal(t, uint32(2), s.lookahead(), "monotonic")
	_, ok := s.RuneAt(3)
	testutil.False(t, ok, "end of input")
	testutil.Equal(t, uint32(4), s.lookahead(), "end of input peek")
}
