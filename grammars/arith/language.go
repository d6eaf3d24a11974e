// Package arith is an arithmetic expression grammar for treesit.
//
// A program is a sequence of expressions separated by optional semicolons.
// Expressions are numbers, identifiers, unary minus, the binary operators
// + - * / (left associative, * and / binding tighter), parentheses and calls
// such as max(a, 2). Line comments start with # and may appear anywhere.
//
// Integers and floats are both exposed as number nodes; GrammarType tells
// them apart.
package arith

import (
	"slices"
	"sync"

	"github.com/golangsnmp/treesit"
)

// Symbols.
const (
	SymNumber treesit.Symbol = iota + 1
	SymInteger
	SymFloat
	SymIdentifier
	SymPlus
	SymMinus
	SymStar
	SymSlash
	SymLParen
	SymRParen
	SymSemicolon
	SymComma
	SymComment
	SymProgram
	SymBinaryExpression
	SymUnaryExpression
	SymParenthesizedExpression
	SymCallExpression
	SymArgumentList
	SymStatement
	SymExpression
)

// Fields.
const (
	FieldArguments treesit.FieldID = iota + 1
	FieldFunction
	FieldLeft
	FieldOperand
	FieldOperator
	FieldRight
)

// Recognizer states. Nodes record the state they started in.
const (
	StateError treesit.StateID = iota
	StateProgram
	StateStatementEnd
	StateAdditiveOperand
	StateMultiplicativeOperand
	StateUnaryOperand
	StateParenOperand
	StateArgument
	StateAfterOperand
	StateAfterCallee

	stateCount
)

var symbols = []treesit.SymbolInfo{
	{Name: "end", Named: true},
	SymNumber:                  {Name: "number", Visible: true, Named: true},
	SymInteger:                 {Name: "integer", Visible: true, Named: true},
	SymFloat:                   {Name: "float", Visible: true, Named: true},
	SymIdentifier:              {Name: "identifier", Visible: true, Named: true},
	SymPlus:                    {Name: "+", Visible: true},
	SymMinus:                   {Name: "-", Visible: true},
	SymStar:                    {Name: "*", Visible: true},
	SymSlash:                   {Name: "/", Visible: true},
	SymLParen:                  {Name: "(", Visible: true},
	SymRParen:                  {Name: ")", Visible: true},
	SymSemicolon:               {Name: ";", Visible: true},
	SymComma:                   {Name: ",", Visible: true},
	SymComment:                 {Name: "comment", Visible: true, Named: true},
	SymProgram:                 {Name: "program", Visible: true, Named: true},
	SymBinaryExpression:        {Name: "binary_expression", Visible: true, Named: true},
	SymUnaryExpression:         {Name: "unary_expression", Visible: true, Named: true},
	SymParenthesizedExpression: {Name: "parenthesized_expression", Visible: true, Named: true},
	SymCallExpression:          {Name: "call_expression", Visible: true, Named: true},
	SymArgumentList:            {Name: "argument_list", Visible: true, Named: true},
	SymStatement:               {Name: "_statement"},
	SymExpression:              {Name: "_expression", Named: true, Supertype: true},
}

var fields = []string{
	"arguments",
	"function",
	"left",
	"operand",
	"operator",
	"right",
}

var expressionSymbols = []treesit.Symbol{
	SymBinaryExpression,
	SymUnaryExpression,
	SymParenthesizedExpression,
	SymCallExpression,
	SymNumber,
	SymInteger,
	SymFloat,
}

func transitions() map[treesit.StateID][]treesit.Transition {
	m := make(map[treesit.StateID][]treesit.Transition)
	operandStates := []treesit.StateID{
		StateProgram,
		StateAdditiveOperand,
		StateMultiplicativeOperand,
		StateUnaryOperand,
		StateParenOperand,
		StateArgument,
	}
	for _, st := range operandStates {
		after := StateAfterOperand
		if st == StateProgram {
			after = StateStatementEnd
		}
		list := []treesit.Transition{
			{Symbol: SymIdentifier, Next: StateAfterCallee},
			{Symbol: SymLParen, Next: StateParenOperand},
			{Symbol: SymMinus, Next: StateUnaryOperand},
		}
		for _, sym := range expressionSymbols {
			list = append(list, treesit.Transition{Symbol: sym, Next: after})
		}
		m[st] = list
	}
	m[StateProgram] = append(m[StateProgram],
		treesit.Transition{Symbol: SymSemicolon, Next: StateProgram},
		treesit.Transition{Symbol: SymComment, Next: StateProgram},
	)

	afterOperand := []treesit.Transition{
		{Symbol: SymPlus, Next: StateAdditiveOperand},
		{Symbol: SymMinus, Next: StateAdditiveOperand},
		{Symbol: SymStar, Next: StateMultiplicativeOperand},
		{Symbol: SymSlash, Next: StateMultiplicativeOperand},
		{Symbol: SymRParen, Next: StateAfterOperand},
		{Symbol: SymComma, Next: StateArgument},
		{Symbol: SymSemicolon, Next: StateProgram},
	}
	m[StateAfterOperand] = afterOperand
	m[StateAfterCallee] = append(slices.Clone(afterOperand),
		treesit.Transition{Symbol: SymLParen, Next: StateArgument},
		treesit.Transition{Symbol: SymArgumentList, Next: StateAfterOperand},
	)
	m[StateStatementEnd] = []treesit.Transition{
		{Symbol: SymSemicolon, Next: StateProgram},
	}
	return m
}

// Language returns the arith language. It is built once and shared.
var Language = sync.OnceValue(func() *treesit.Language {
	lang, err := treesit.NewLanguage(treesit.LanguageDefinition{
		Name:        "arith",
		Version:     treesit.LanguageVersion,
		Symbols:     symbols,
		Fields:      fields,
		StateCount:  int(stateCount),
		Transitions: transitions(),
		Recognizer:  recognizer{},
	})
	if err != nil {
		panic("arith: " + err.Error())
	}
	return lang
})
