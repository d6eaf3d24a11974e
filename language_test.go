package treesit

import (
	"testing"

	"github.com/golangsnmp/treesit/internal/testutil"
)

func validDefinition() LanguageDefinition {
	return LanguageDefinition{
		Name:    "defs",
		Version: LanguageVersion,
		Symbols: []SymbolInfo{
			{Name: "end"},
			{Name: "word", Visible: true, Named: true},
			{Name: "+", Visible: true},
			{Name: "_expr", Supertype: true},
			{Name: "_rep"},
		},
		Fields:     []string{"left", "right"},
		StateCount: 4,
		Transitions: map[StateID][]Transition{
			1: {{Symbol: 2, Next: 3}, {Symbol: 1, Next: 2}},
		},
		Recognizer: scripted(func(*Session) error { return nil }),
	}
}

func TestNewLanguageRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LanguageDefinition)
		want   string
	}{
		{"no recognizer", func(d *LanguageDefinition) { d.Recognizer = nil }, "no recognizer"},
		{"no symbols", func(d *LanguageDefinition) { d.Symbols = nil }, "no symbols"},
		{"no states", func(d *LanguageDefinition) { d.StateCount = 0 }, "state count"},
		{"empty field", func(d *LanguageDefinition) { d.Fields = []string{"left", ""} }, "no name"},
		{"duplicate field", func(d *LanguageDefinition) { d.Fields = []string{"left", "left"} }, "duplicate field"},
		{"unknown source state", func(d *LanguageDefinition) {
			d.Transitions = map[StateID][]Transition{9: {{Symbol: 1, Next: 1}}}
		}, "state count"},
		{"unknown target state", func(d *LanguageDefinition) {
			d.Transitions = map[StateID][]Transition{1: {{Symbol: 1, Next: 9}}}
		}, "unknown state"},
		{"duplicate transition", func(d *LanguageDefinition) {
			d.Transitions = map[StateID][]Transition{1: {{Symbol: 1, Next: 2}, {Symbol: 1, Next: 3}}}
		}, "duplicate transition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			tt.mutate(&def)
			lang, err := NewLanguage(def)
			if err == nil {
				t.Fatalf("NewLanguage succeeded, want error containing %q", tt.want)
			}
			testutil.True(t, lang == nil, "no language on error")
			testutil.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLanguageLookups(t *testing.T) {
	lang, err := NewLanguage(validDefinition())
	testutil.NoError(t, err, "NewLanguage")

	testutil.Equal(t, "defs", lang.Name())
	testutil.Equal(t, uint32(5), lang.SymbolCount())
	testutil.Equal(t, uint32(4), lang.StateCount())
	testutil.Equal(t, uint32(2), lang.FieldCount())

	testutil.Equal(t, "ERROR", lang.SymbolName(SymbolError))
	testutil.Equal(t, "_ERROR", lang.SymbolName(SymbolErrorRepeat))
	testutil.Equal(t, "", lang.SymbolName(40), "out of range")
	testutil.Equal(t, SymbolError, lang.SymbolForName("ERROR", true))
	testutil.Equal(t, Symbol(1), lang.SymbolForName("word", true))
	testutil.Equal(t, Symbol(2), lang.SymbolForName("+", false))
	testutil.Equal(t, SymbolNotFound, lang.SymbolForName("+", true))
	testutil.Equal(t, SymbolNotFound, lang.SymbolForName("_expr", false), "hidden")

	testutil.Equal(t, SymbolTypeRegular, lang.SymbolType(1))
	testutil.Equal(t, SymbolTypeAnonymous, lang.SymbolType(2))
	testutil.Equal(t, SymbolTypeSupertype, lang.SymbolType(3))
	testutil.Equal(t, SymbolTypeAuxiliary, lang.SymbolType(4))
	testutil.Equal(t, "supertype", SymbolTypeSupertype.String())

	testutil.Equal(t, "right", lang.FieldNameForID(2))
	testutil.Equal(t, "", lang.FieldNameForID(FieldNone))
	testutil.Equal(t, "", lang.FieldNameForID(3))
	testutil.Equal(t, FieldID(1), lang.FieldIDForName("left"))
	testutil.Equal(t, FieldNone, lang.FieldIDForName("middle"))

	testutil.Equal(t, StateID(2), lang.NextState(1, 1))
	testutil.Equal(t, StateID(3), lang.NextState(1, 2), "transitions are sorted")
	testutil.Equal(t, StateID(0), lang.NextState(1, 3), "no transition")
	testutil.Equal(t, StateID(0), lang.NextState(2, 1), "state without transitions")
	testutil.Equal(t, StateID(0), lang.NextState(1, SymbolError))
	testutil.Equal(t, StateID(0), lang.NextState(StateNone, 1), "out of range state")
}

func TestLanguageCompatibility(t *testing.T) {
	def := validDefinition()
	def.Version = MinCompatibleLanguageVersion - 1
	old, err := NewLanguage(def)
	testutil.NoError(t, err, "NewLanguage")

	current, err := NewLanguage(validDefinition())
	testutil.NoError(t, err, "NewLanguage")

	p := NewParser(WithLanguage(old))
	testutil.True(t, p.Language() == nil, "incompatible option ignored")
	testutil.True(t, p.SetLanguage(current), "current version")
	testutil.False(t, p.SetLanguage(old), "too old")
	testutil.True(t, p.Language() == current, "previous binding kept")

	def.Version = LanguageVersion + 1
	future, err := NewLanguage(def)
	testutil.NoError(t, err, "NewLanguage")
	testutil.False(t, p.SetLanguage(future), "too new")
	testutil.False(t, p.SetLanguage(nil), "nil")
	testutil.True(t, p.Language() == current, "still bound")
}
