package main

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/treesit"
)

// NodeJSON is the serializable form of a syntax node, shared by the json
// and yaml formats.
type NodeJSON struct {
	Type        string      `json:"type" yaml:"type"`
	GrammarType string      `json:"grammarType,omitempty" yaml:"grammar_type,omitempty"`
	Field       string      `json:"field,omitempty" yaml:"field,omitempty"`
	Named       bool        `json:"named" yaml:"named"`
	Extra       bool        `json:"extra,omitempty" yaml:"extra,omitempty"`
	Missing     bool        `json:"missing,omitempty" yaml:"missing,omitempty"`
	Error       bool        `json:"error,omitempty" yaml:"error,omitempty"`
	StartByte   uint32      `json:"startByte" yaml:"start_byte"`
	EndByte     uint32      `json:"endByte" yaml:"end_byte"`
	Start       PointJSON   `json:"start" yaml:"start"`
	End         PointJSON   `json:"end" yaml:"end"`
	Text        string      `json:"text,omitempty" yaml:"text,omitempty"`
	Children    []*NodeJSON `json:"children,omitempty" yaml:"children,omitempty"`
}

// PointJSON holds a row/column position.
type PointJSON struct {
	Row    uint32 `json:"row" yaml:"row"`
	Column uint32 `json:"column" yaml:"column"`
}

func buildNode(n treesit.Node, field string, src []byte, enc treesit.InputEncoding) *NodeJSON {
	out := &NodeJSON{
		Type:      n.Type(),
		Field:     field,
		Named:     n.IsNamed(),
		Extra:     n.IsExtra(),
		Missing:   n.IsMissing(),
		Error:     n.IsError(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Start:     PointJSON{Row: n.StartPoint().Row, Column: n.StartPoint().Column},
		End:       PointJSON{Row: n.EndPoint().Row, Column: n.EndPoint().Column},
	}
	if gt := n.GrammarType(); gt != out.Type {
		out.GrammarType = gt
	}
	if n.ChildCount() == 0 {
		out.Text = leafText(n, src, enc)
	}
	for i := range n.ChildCount() {
		out.Children = append(out.Children, buildNode(n.Child(i), n.FieldNameForChild(i), src, enc))
	}
	return out
}

// leafText returns the source under a leaf. Only UTF-8 offsets index src
// directly; other encodings yield "".
func leafText(n treesit.Node, src []byte, enc treesit.InputEncoding) string {
	start, end := int(n.StartByte()), int(n.EndByte())
	if enc != treesit.InputEncodingUTF8 {
		return ""
	}
	if start >= end || end > len(src) {
		return ""
	}
	return string(src[start:end])
}

func marshalTree(v any, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
