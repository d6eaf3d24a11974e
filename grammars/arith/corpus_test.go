package arith_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/grammars/arith"
)

// corpusCase is one entry of testdata/corpus.yaml.
type corpusCase struct {
	Name     string `yaml:"name"`
	Input    string `yaml:"input"`
	Sexp     string `yaml:"sexp"`
	HasError bool   `yaml:"has_error"`
}

func loadCorpus(t *testing.T) []corpusCase {
	t.Helper()
	data, err := os.ReadFile("testdata/corpus.yaml")
	require.NoError(t, err)
	var cases []corpusCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestCorpus(t *testing.T) {
	p := treesit.NewParser(treesit.WithLanguage(arith.Language()))

	for _, tc := range loadCorpus(t) {
		t.Run(tc.Name, func(t *testing.T) {
			tree := p.ParseString(treesit.Null(), tc.Input)
			require.False(t, tree.IsNull(), "parse should succeed")

			root := tree.RootNode()
			require.Equal(t, tc.Sexp, root.String().StringView())
			require.Equal(t, tc.HasError, root.HasError(), "has_error")
			require.Equal(t, uint32(0), root.StartByte())
			require.Equal(t, uint32(len(tc.Input)), root.EndByte())
		})
	}
}

func TestCorpusReparseIdentical(t *testing.T) {
	p := treesit.NewParser(treesit.WithLanguage(arith.Language()))

	for _, tc := range loadCorpus(t) {
		t.Run(tc.Name, func(t *testing.T) {
			fresh := p.ParseString(treesit.Null(), tc.Input)
			first := p.ParseString(treesit.Null(), tc.Input)
			again := p.ParseString(first, tc.Input)
			require.True(t, first.IsNull(), "previous tree is consumed")
			require.False(t, again.IsNull())

			a, b := fresh.RootNode(), again.RootNode()
			require.Equal(t, a.DescendantCount(), b.DescendantCount(), "node count")
			require.Equal(t, a.Range(), b.Range(), "root span")
			require.Equal(t, a.String().StringView(), b.String().StringView())
		})
	}
}
