package arith

import (
	"github.com/golangsnmp/treesit"
)

// Binding powers. Unary minus binds tighter than every binary operator.
const (
	precNone = iota
	precAdditive
	precMultiplicative
)

func precedence(k tokenKind) int {
	switch k {
	case tokPlus, tokMinus:
		return precAdditive
	case tokStar, tokSlash:
		return precMultiplicative
	}
	return precNone
}

func operandState(prec int) treesit.StateID {
	if prec > precAdditive {
		return StateMultiplicativeOperand
	}
	return StateAdditiveOperand
}

func startsExpression(k tokenKind) bool {
	switch k {
	case tokInteger, tokFloat, tokIdentifier, tokLParen, tokMinus:
		return true
	}
	return false
}

type recognizer struct{}

// Recognize parses a program. Every top-level expression is marked
// reusable at StateProgram, and the parser tries to copy one from the
// previous tree before parsing each statement.
func (recognizer) Recognize(s *treesit.Session) error {
	p := &parser{s: s, lex: newLexer(s)}
	p.advance()
	for {
		p.flushExtras()
		if p.tok.kind == tokEOF {
			break
		}
		p.parseStatement()
	}
	if p.err != nil {
		return p.err
	}
	p.flushExtras()
	s.Accept(SymProgram, StateProgram)
	return nil
}

// parser is a precedence-climbing recognizer over the lexer's tokens.
// Comments and unrecognized characters are held in pending until the next
// node is started, so they land between the nodes they appeared between.
type parser struct {
	s       *treesit.Session
	lex     *lexer
	tok     token
	pending []token
	lastEnd int
	err     error
}

// advance moves to the next significant token. Once the session reports a
// halt every further token is end of input, which unwinds the parse.
func (p *parser) advance() {
	p.lastEnd = p.tok.span.End
	for {
		if p.err == nil {
			p.err = p.s.Check()
		}
		if p.err != nil {
			p.tok = token{kind: tokEOF}
			p.tok.span.Start, p.tok.span.End = p.lastEnd, p.lastEnd
			return
		}
		tok := p.lex.next()
		if tok.kind == tokComment || tok.kind == tokError {
			p.pending = append(p.pending, tok)
			continue
		}
		p.tok = tok
		return
	}
}

func (p *parser) flushExtras() {
	for _, tok := range p.pending {
		if tok.kind == tokError {
			p.s.ErrorLeaf(tok.span.Start, tok.span.End)
		} else {
			p.s.Extra(SymComment, tok.span.Start, tok.span.End)
		}
	}
	p.pending = p.pending[:0]
}

func (p *parser) mark() int {
	p.flushExtras()
	return p.s.Mark()
}

// shift pushes the current token as sym and advances.
func (p *parser) shift(sym treesit.Symbol, state treesit.StateID) {
	p.flushExtras()
	p.s.Leaf(sym, p.tok.span.Start, p.tok.span.End, state)
	p.advance()
}

// shiftField is shift with the pushed token labelled.
func (p *parser) shiftField(sym treesit.Symbol, state treesit.StateID, field treesit.FieldID) {
	mark := p.mark()
	p.shift(sym, state)
	p.s.Label(mark, field)
}

func (p *parser) parseStatement() {
	mark := p.mark()
	if end, ok := p.s.Reuse(p.tok.span.Start, StateProgram); ok {
		p.lex.reset(end)
		p.tok.span.End = end
		p.advance()
	} else if startsExpression(p.tok.kind) {
		p.parseExpression(precAdditive, StateProgram)
		p.s.MarkReusable()
	} else {
		p.skipStray()
	}
	if p.tok.kind == tokSemicolon {
		p.shift(SymSemicolon, StateStatementEnd)
	}
	p.s.Reduce(SymStatement, mark, StateProgram)
}

// skipStray wraps tokens that cannot start a statement in an ERROR node.
func (p *parser) skipStray() {
	mark := p.mark()
	for !startsExpression(p.tok.kind) && p.tok.kind != tokSemicolon && p.tok.kind != tokEOF {
		p.shift(p.tok.kind.symbol(), StateError)
	}
	p.s.ErrorNode(mark)
}

func (p *parser) parseExpression(minPrec int, state treesit.StateID) {
	mark := p.mark()
	p.parseUnary(state)
	for {
		prec := precedence(p.tok.kind)
		if prec == precNone || prec < minPrec {
			return
		}
		p.s.Label(mark, FieldLeft)
		p.shiftField(p.tok.kind.symbol(), StateAfterOperand, FieldOperator)
		right := p.mark()
		p.parseExpression(prec+1, operandState(prec))
		p.s.Label(right, FieldRight)
		p.s.Reduce(SymBinaryExpression, mark, state)
	}
}

func (p *parser) parseUnary(state treesit.StateID) {
	if p.tok.kind != tokMinus {
		p.parsePrimary(state)
		return
	}
	mark := p.mark()
	p.shiftField(SymMinus, state, FieldOperator)
	operand := p.mark()
	p.parseUnary(StateUnaryOperand)
	p.s.Label(operand, FieldOperand)
	p.s.Reduce(SymUnaryExpression, mark, state)
}

func (p *parser) parsePrimary(state treesit.StateID) {
	switch p.tok.kind {
	case tokInteger, tokFloat:
		p.shift(p.tok.kind.symbol(), state)
		p.s.Alias(SymNumber)
	case tokIdentifier:
		mark := p.mark()
		p.shift(SymIdentifier, state)
		if p.tok.kind == tokLParen {
			p.s.Label(mark, FieldFunction)
			args := p.mark()
			p.parseArguments()
			p.s.Label(args, FieldArguments)
			p.s.Reduce(SymCallExpression, mark, state)
		}
	case tokLParen:
		mark := p.mark()
		p.shift(SymLParen, state)
		p.parseExpression(precAdditive, StateParenOperand)
		p.closeParen()
		p.s.Reduce(SymParenthesizedExpression, mark, state)
	default:
		p.s.Missing(SymIdentifier, p.lastEnd, state)
	}
}

func (p *parser) parseArguments() {
	mark := p.mark()
	p.shift(SymLParen, StateAfterCallee)
	if p.tok.kind != tokRParen {
		for {
			p.parseExpression(precAdditive, StateArgument)
			if p.tok.kind != tokComma {
				break
			}
			p.shift(SymComma, StateAfterOperand)
		}
	}
	p.closeParen()
	p.s.Reduce(SymArgumentList, mark, StateAfterCallee)
}

// closeParen consumes ")", first wrapping any unexpected tokens before it
// in an ERROR node. At the end of the statement it inserts a missing ")".
func (p *parser) closeParen() {
	if p.tok.kind != tokRParen && p.tok.kind != tokSemicolon && p.tok.kind != tokEOF {
		mark := p.mark()
		depth := 0
		for p.tok.kind != tokEOF && p.tok.kind != tokSemicolon {
			if p.tok.kind == tokRParen {
				if depth == 0 {
					break
				}
				depth--
			} else if p.tok.kind == tokLParen {
				depth++
			}
			p.shift(p.tok.kind.symbol(), StateError)
		}
		p.s.ErrorNode(mark)
	}
	if p.tok.kind == tokRParen {
		p.shift(SymRParen, StateAfterOperand)
		return
	}
	p.s.Missing(SymRParen, p.lastEnd, StateAfterOperand)
}
