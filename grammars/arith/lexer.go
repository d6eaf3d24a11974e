package arith

import (
	"unicode"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/internal/types"
)

type tokenKind int

const (
	tokError tokenKind = iota
	tokEOF
	tokInteger
	tokFloat
	tokIdentifier
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokSemicolon
	tokComma
	tokComment
)

// symbol returns the grammar symbol a token is shifted as.
func (k tokenKind) symbol() treesit.Symbol {
	switch k {
	case tokInteger:
		return SymInteger
	case tokFloat:
		return SymFloat
	case tokIdentifier:
		return SymIdentifier
	case tokPlus:
		return SymPlus
	case tokMinus:
		return SymMinus
	case tokStar:
		return SymStar
	case tokSlash:
		return SymSlash
	case tokLParen:
		return SymLParen
	case tokRParen:
		return SymRParen
	case tokSemicolon:
		return SymSemicolon
	case tokComma:
		return SymComma
	case tokComment:
		return SymComment
	case tokError:
		return treesit.SymbolError
	}
	return treesit.SymbolEnd
}

type token struct {
	kind tokenKind
	span types.Span
}

var punctuation = map[rune]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'(': tokLParen,
	')': tokRParen,
	';': tokSemicolon,
	',': tokComma,
}

// lexer tokenizes the session input. It reads only through
// Session.RuneAt so the session sees how far each token looked.
type lexer struct {
	s   *treesit.Session
	pos int
}

func newLexer(s *treesit.Session) *lexer {
	return &lexer{s: s}
}

func (l *lexer) peek() (rune, bool) {
	return l.s.RuneAt(l.pos)
}

func (l *lexer) peekAt(offset int) (rune, bool) {
	return l.s.RuneAt(l.pos + offset)
}

func (l *lexer) reset(pos int) {
	l.pos = pos
}

func (l *lexer) skipWhitespace() {
	for {
		r, ok := l.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		l.pos++
	}
}

func (l *lexer) next() token {
	l.skipWhitespace()
	start := l.pos
	if l.s.Logging() {
		p := l.s.Point(start)
		l.s.Log(treesit.LogTypeLex, "lex_internal state:%d, row:%d, column:%d", StateProgram, p.Row, p.Column)
	}

	tok := l.scan()
	tok.span = types.NewSpan(start, l.pos)
	if l.s.Logging() {
		switch {
		case tok.kind == tokError:
			l.s.Log(treesit.LogTypeLex, "skip_unrecognized_character size:%d", tok.span.Len())
		case !tok.span.IsEmpty():
			l.s.Log(treesit.LogTypeLex, "lexed_lookahead sym:%s, size:%d",
				l.s.Language().SymbolName(tok.kind.symbol()), tok.span.Len())
		default:
			l.s.Log(treesit.LogTypeLex, "lexed_lookahead sym:end, size:0")
		}
	}
	return tok
}

func (l *lexer) scan() token {
	r, ok := l.peek()
	if !ok {
		return token{kind: tokEOF}
	}

	switch {
	case r == '#':
		for {
			l.pos++
			c, ok := l.peek()
			if !ok || c == '\n' {
				return token{kind: tokComment}
			}
		}
	case isDigit(r):
		return l.scanNumber()
	case isIdentStart(r):
		for {
			l.pos++
			c, ok := l.peek()
			if !ok || !isIdentPart(c) {
				return token{kind: tokIdentifier}
			}
		}
	}

	l.pos++
	if kind, ok := punctuation[r]; ok {
		return token{kind: kind}
	}
	return token{kind: tokError}
}

func (l *lexer) scanNumber() token {
	l.skipDigits()
	if c, ok := l.peek(); ok && c == '.' {
		if d, ok := l.peekAt(1); ok && isDigit(d) {
			l.pos++
			l.skipDigits()
			return token{kind: tokFloat}
		}
	}
	return token{kind: tokInteger}
}

func (l *lexer) skipDigits() {
	for {
		c, ok := l.peek()
		if !ok || !isDigit(c) {
			return
		}
		l.pos++
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }
