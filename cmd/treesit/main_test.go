package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expr.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runParse(t *testing.T, args ...string) (string, int) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	code := run(append([]string{"parse", "-o", out}, args...))
	data, err := os.ReadFile(out)
	if err != nil {
		return "", code
	}
	return string(data), code
}

func TestParseSexp(t *testing.T) {
	out, code := runParse(t, writeInput(t, "1+2"))
	require.Equal(t, exitOK, code)
	require.Equal(t, "(program (binary_expression left: (number) right: (number)))\n", out)
}

func TestParseJSON(t *testing.T) {
	out, code := runParse(t, "--format", "json", writeInput(t, "-x"))
	require.Equal(t, exitOK, code)

	var root NodeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &root))
	require.Equal(t, "program", root.Type)
	unary := root.Children[0]
	require.Equal(t, "unary_expression", unary.Type)
	require.Equal(t, "operator", unary.Children[0].Field)
	require.Equal(t, "-", unary.Children[0].Text)
	require.Equal(t, "x", unary.Children[1].Text)
}

func TestParseYAML(t *testing.T) {
	out, code := runParse(t, "--format", "yaml", writeInput(t, "2.5"))
	require.Equal(t, exitOK, code)

	var root NodeJSON
	require.NoError(t, yaml.Unmarshal([]byte(out), &root))
	num := root.Children[0]
	require.Equal(t, "number", num.Type)
	require.Equal(t, "float", num.GrammarType)
	require.Equal(t, uint32(3), num.EndByte)
}

func TestParseStrict(t *testing.T) {
	_, code := runParse(t, "--strict", writeInput(t, "(1"))
	require.Equal(t, exitSyntaxErrs, code)

	_, code = runParse(t, "--strict", writeInput(t, "(1)"))
	require.Equal(t, exitOK, code)
}

func TestParseErrors(t *testing.T) {
	_, code := runParse(t, "--language", "cobol", writeInput(t, "1"))
	require.Equal(t, exitError, code)

	_, code = runParse(t, "--encoding", "latin1", writeInput(t, "1"))
	require.Equal(t, exitError, code)

	_, code = runParse(t, "--format", "xml", writeInput(t, "1"))
	require.Equal(t, exitError, code)

	_, code = runParse(t, filepath.Join(t.TempDir(), "missing"))
	require.Equal(t, exitError, code)
}

func TestParseDotGraphs(t *testing.T) {
	dot := filepath.Join(t.TempDir(), "tree.dot")
	_, code := runParse(t, "--dot-graphs", dot, writeInput(t, "a*b"))
	require.Equal(t, exitOK, code)

	data, err := os.ReadFile(dot)
	require.NoError(t, err)
	require.Contains(t, string(data), "digraph tree {")
}

func runLint(t *testing.T, args ...string) (string, int) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "lint")
	code := run(append([]string{"lint", "-o", out}, args...))
	data, err := os.ReadFile(out)
	if err != nil {
		return "", code
	}
	return string(data), code
}

func TestLintMissing(t *testing.T) {
	path := writeInput(t, "(1")
	out, code := runLint(t, path)
	require.Equal(t, exitSyntaxErrs, code)
	require.Equal(t, "[error] "+path+`:1:3: missing ")" (syntax-missing)`+"\n1 errors, 0 warnings, 0 info\n", out)
}

func TestLintClean(t *testing.T) {
	out, code := runLint(t, writeInput(t, "1+2"))
	require.Equal(t, exitOK, code)
	require.Equal(t, "0 errors, 0 warnings, 0 info\n", out)
}

func TestLintIgnore(t *testing.T) {
	out, code := runLint(t, "--ignore", "syntax-*", writeInput(t, "(1"))
	require.Equal(t, exitOK, code)
	require.Equal(t, "0 errors, 0 warnings, 0 info\n", out)
}

func TestLintJSON(t *testing.T) {
	out, code := runLint(t, "--format", "json", "--level", "info", writeInput(t, ""), writeInput(t, "(1"))
	require.Equal(t, exitSyntaxErrs, code)

	var res lintResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, lintSummary{Errors: 1, Info: 1}, res.Summary)
	require.Len(t, res.Diagnostics, 2)
	require.Equal(t, "empty-input", res.Diagnostics[0].Code)
	require.Equal(t, "syntax-missing", res.Diagnostics[1].Code)
	require.Equal(t, uint32(2), res.Diagnostics[1].Start)
}

func TestLintBadFlags(t *testing.T) {
	_, code := runLint(t, "--level", "fatal", writeInput(t, "1"))
	require.Equal(t, exitError, code)

	_, code = runLint(t, "--format", "sarif", writeInput(t, "1"))
	require.Equal(t, exitError, code)
}
