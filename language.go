package treesit

import (
	"errors"
	"fmt"
	"slices"
)

// Symbol identifies a grammar symbol.
type Symbol uint16

// FieldID identifies a field. Zero means no field.
type FieldID uint16

// StateID identifies a recognizer state.
type StateID uint16

// Reserved symbols and sentinels.
const (
	SymbolEnd         Symbol = 0
	SymbolErrorRepeat Symbol = 0xFFFE
	SymbolError       Symbol = 0xFFFF

	// SymbolNotFound is returned by SymbolForName for unknown names.
	SymbolNotFound Symbol = 0

	FieldNone FieldID = 0

	// StateNone is the parse state of ERROR nodes.
	StateNone StateID = 0xFFFF
)

// Language format versions accepted by Parser.SetLanguage.
const (
	LanguageVersion              = 14
	MinCompatibleLanguageVersion = 13
)

// SymbolType classifies a symbol.
type SymbolType uint8

const (
	SymbolTypeRegular SymbolType = iota
	SymbolTypeAnonymous
	SymbolTypeSupertype
	SymbolTypeAuxiliary
)

func (t SymbolType) String() string {
	switch t {
	case SymbolTypeRegular:
		return "regular"
	case SymbolTypeAnonymous:
		return "anonymous"
	case SymbolTypeSupertype:
		return "supertype"
	case SymbolTypeAuxiliary:
		return "auxiliary"
	}
	return "unknown"
}

// SymbolInfo is the metadata for one symbol.
type SymbolInfo struct {
	Name      string
	Visible   bool
	Named     bool
	Supertype bool
}

// Transition is one entry of a state's transition list.
type Transition struct {
	Symbol Symbol
	Next   StateID
}

// Recognizer is a grammar's parsing engine. It reads the session's input
// and builds the tree through the session's builder methods, finishing with
// Session.Accept. It must return any error from Session.Check.
type Recognizer interface {
	Recognize(s *Session) error
}

// LanguageDefinition is the input to NewLanguage.
type LanguageDefinition struct {
	Name    string
	Version uint32

	// Symbols is indexed by Symbol. Index 0 is the end symbol.
	Symbols []SymbolInfo

	// Fields lists field names; the name at index i has FieldID i+1.
	Fields []string

	StateCount int

	// Transitions maps a state to its outgoing transitions. Order does not
	// matter; NewLanguage sorts each list.
	Transitions map[StateID][]Transition

	Recognizer Recognizer
}

// Language is an immutable grammar description. It is safe to share across
// parsers and trees.
type Language struct {
	name        string
	version     uint32
	symbols     []SymbolInfo
	fields      []string // index 0 is ""
	stateCount  int
	transitions [][]Transition
	recognizer  Recognizer

	namedIDs     map[string]Symbol
	anonymousIDs map[string]Symbol
	fieldIDs     map[string]FieldID
}

// NewLanguage validates def and builds a Language.
func NewLanguage(def LanguageDefinition) (*Language, error) {
	if def.Recognizer == nil {
		return nil, errors.New("language has no recognizer")
	}
	if len(def.Symbols) == 0 {
		return nil, errors.New("language has no symbols")
	}
	if len(def.Symbols) >= int(SymbolErrorRepeat) {
		return nil, fmt.Errorf("language has %d symbols, limit is %d", len(def.Symbols), SymbolErrorRepeat)
	}
	if len(def.Fields) >= 0xFFFF {
		return nil, fmt.Errorf("language has %d fields", len(def.Fields))
	}
	if def.StateCount < 1 || def.StateCount >= int(StateNone) {
		return nil, fmt.Errorf("invalid state count %d", def.StateCount)
	}

	l := &Language{
		name:         def.Name,
		version:      def.Version,
		symbols:      slices.Clone(def.Symbols),
		fields:       append([]string{""}, def.Fields...),
		stateCount:   def.StateCount,
		transitions:  make([][]Transition, def.StateCount),
		recognizer:   def.Recognizer,
		namedIDs:     make(map[string]Symbol),
		anonymousIDs: make(map[string]Symbol),
		fieldIDs:     make(map[string]FieldID, len(def.Fields)),
	}

	for i, sym := range l.symbols {
		if !sym.Visible || i == int(SymbolEnd) {
			continue
		}
		ids := l.anonymousIDs
		if sym.Named {
			ids = l.namedIDs
		}
		if _, dup := ids[sym.Name]; !dup {
			ids[sym.Name] = Symbol(i)
		}
	}

	for i, name := range def.Fields {
		if name == "" {
			return nil, fmt.Errorf("field %d has no name", i+1)
		}
		if _, dup := l.fieldIDs[name]; dup {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		l.fieldIDs[name] = FieldID(i + 1)
	}

	for state, list := range def.Transitions {
		if int(state) >= def.StateCount {
			return nil, fmt.Errorf("transitions for state %d, state count is %d", state, def.StateCount)
		}
		sorted := slices.Clone(list)
		slices.SortFunc(sorted, func(a, b Transition) int { return int(a.Symbol) - int(b.Symbol) })
		for i, tr := range sorted {
			if int(tr.Next) >= def.StateCount {
				return nil, fmt.Errorf("state %d: transition on symbol %d to unknown state %d", state, tr.Symbol, tr.Next)
			}
			if i > 0 && sorted[i-1].Symbol == tr.Symbol {
				return nil, fmt.Errorf("state %d: duplicate transition on symbol %d", state, tr.Symbol)
			}
		}
		l.transitions[state] = sorted
	}

	return l, nil
}

// Name returns the language name.
func (l *Language) Name() string { return l.name }

// Version returns the language format version.
func (l *Language) Version() uint32 { return l.version }

// SymbolCount returns the number of symbols.
func (l *Language) SymbolCount() uint32 { return uint32(len(l.symbols)) }

// StateCount returns the number of recognizer states.
func (l *Language) StateCount() uint32 { return uint32(l.stateCount) }

// FieldCount returns the number of fields.
func (l *Language) FieldCount() uint32 { return uint32(len(l.fields) - 1) }

// SymbolName returns the name of a symbol, or "" if it is unknown.
func (l *Language) SymbolName(sym Symbol) string {
	switch sym {
	case SymbolError:
		return "ERROR"
	case SymbolErrorRepeat:
		return "_ERROR"
	}
	if int(sym) < len(l.symbols) {
		return l.symbols[sym].Name
	}
	return ""
}

// SymbolForName returns the visible symbol with the given name and
// namedness, or SymbolNotFound.
func (l *Language) SymbolForName(name string, named bool) Symbol {
	if named {
		if name == "ERROR" {
			return SymbolError
		}
		return l.namedIDs[name]
	}
	return l.anonymousIDs[name]
}

// SymbolType classifies a symbol.
func (l *Language) SymbolType(sym Symbol) SymbolType {
	switch sym {
	case SymbolError:
		return SymbolTypeRegular
	case SymbolErrorRepeat:
		return SymbolTypeAuxiliary
	}
	info := l.info(sym)
	switch {
	case info.Named && info.Visible:
		return SymbolTypeRegular
	case info.Visible:
		return SymbolTypeAnonymous
	case info.Supertype:
		return SymbolTypeSupertype
	}
	return SymbolTypeAuxiliary
}

// FieldNameForID returns the name of a field, or "" if it is unknown.
func (l *Language) FieldNameForID(id FieldID) string {
	if int(id) < len(l.fields) {
		return l.fields[id]
	}
	return ""
}

// FieldIDForName returns the id of a field, or FieldNone.
func (l *Language) FieldIDForName(name string) FieldID {
	return l.fieldIDs[name]
}

// NextState returns the state reached from state on sym, or 0 when there is
// no such transition.
func (l *Language) NextState(state StateID, sym Symbol) StateID {
	if sym == SymbolError || sym == SymbolErrorRepeat || int(state) >= len(l.transitions) {
		return 0
	}
	list := l.transitions[state]
	i, found := slices.BinarySearchFunc(list, sym, func(t Transition, s Symbol) int {
		return int(t.Symbol) - int(s)
	})
	if !found {
		return 0
	}
	return list[i].Next
}

func (l *Language) compatible() bool {
	return l.version >= MinCompatibleLanguageVersion && l.version <= LanguageVersion
}

func (l *Language) info(sym Symbol) SymbolInfo {
	switch sym {
	case SymbolError:
		return SymbolInfo{Name: "ERROR", Visible: true, Named: true}
	case SymbolErrorRepeat:
		return SymbolInfo{Name: "_ERROR"}
	}
	if int(sym) < len(l.symbols) {
		return l.symbols[sym]
	}
	return SymbolInfo{}
}
