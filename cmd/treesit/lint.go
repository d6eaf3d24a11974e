package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/cmd/internal/cliutil"
	"github.com/golangsnmp/treesit/internal/types"
)

type lintConfig struct {
	level   string
	failOn  string
	ignore  []string
	format  string
	output  string
	summary bool
	quiet   bool
}

type lintResult struct {
	Diagnostics []lintDiagnostic `json:"diagnostics,omitempty"`
	Summary     lintSummary      `json:"summary"`
}

type lintDiagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Source   string `json:"source,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Start    uint32 `json:"start"`
	End      uint32 `json:"end"`
}

type lintSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

func (c *cli) newLintCmd(code *int) *cobra.Command {
	var cfg lintConfig

	cmd := &cobra.Command{
		Use:   "lint [file...]",
		Short: "Report syntax errors and missing nodes",
		Long: `Parse each file and report the ERROR and MISSING nodes in its tree.

If no file is provided, reads source from stdin.

Codes:
  syntax-unexpected   a character the grammar could not use
  syntax-missing      a node inserted by error recovery
  syntax-error        a span skipped by error recovery
  empty-input         the input has no content (info)

Examples:
  treesit lint expr.txt
  treesit lint --ignore "syntax-missing" expr.txt
  treesit lint --format json a.txt b.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dc := types.DefaultConfig()
			var err error
			if dc.Level, err = types.ParseSeverity(cfg.level); err != nil {
				return err
			}
			if dc.FailAt, err = types.ParseSeverity(cfg.failOn); err != nil {
				return err
			}
			dc.Ignore = cfg.ignore

			enc, err := c.inputEncoding()
			if err != nil {
				return err
			}
			p, err := c.newParser()
			if err != nil {
				return err
			}
			defer p.Close()

			if len(args) == 0 {
				args = []string{""}
			}
			var diags []types.Diagnostic
			var tree *treesit.Tree
			for _, name := range args {
				src, err := cliutil.ReadSource(name)
				if err != nil {
					return err
				}
				tree.Release()
				tree, err = p.Parse(context.Background(), nil, src, enc)
				if err != nil {
					return fmt.Errorf("parse %s: %w", name, err)
				}
				diags = append(diags, collectDiagnostics(tree.RootNode(), name, src, enc)...)
			}
			tree.Release()

			diags = dc.Filter(diags)
			if slices.ContainsFunc(diags, func(d types.Diagnostic) bool { return dc.ShouldFail(d.Severity) }) {
				*code = exitSyntaxErrs
			}
			if cfg.quiet {
				return nil
			}

			out, closeOut, err := cliutil.GetOutput(cfg.output)
			if err != nil {
				return err
			}
			defer closeOut()
			return writeLint(out, cfg, diags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.level, "level", "warning", "report diagnostics at this severity or worse: error, warning, info")
	f.StringVar(&cfg.failOn, "fail-on", "error", "exit with status 2 on diagnostics at this severity or worse")
	f.StringArrayVar(&cfg.ignore, "ignore", nil, `ignore diagnostic codes (repeatable, supports globs like "syntax-*")`)
	f.StringVarP(&cfg.format, "format", "f", "text", "output format: text, json, compact")
	f.StringVarP(&cfg.output, "output", "o", "", "write output to file instead of stdout")
	f.BoolVar(&cfg.summary, "summary", false, "show counts by severity only")
	f.BoolVar(&cfg.quiet, "quiet", false, "no output, exit code only")

	return cmd
}

// collectDiagnostics walks the tree in document order. ERROR nodes with
// children are reported once as a whole.
func collectDiagnostics(root treesit.Node, source string, src []byte, enc treesit.InputEncoding) []types.Diagnostic {
	if source == "-" {
		source = ""
	}
	var diags []types.Diagnostic
	add := func(n treesit.Node, code, msg string) {
		pt := n.StartPoint()
		diags = append(diags, types.Diagnostic{
			Severity: defaultSeverity(code),
			Code:     code,
			Message:  msg,
			Source:   source,
			Line:     int(pt.Row) + 1,
			Column:   int(pt.Column) + 1,
			Start:    n.StartByte(),
			End:      n.EndByte(),
		})
	}

	if root.ChildCount() == 0 && root.EndByte() == 0 {
		add(root, types.DiagEmptyProgram, "input is empty")
		return diags
	}

	var walk func(n treesit.Node)
	walk = func(n treesit.Node) {
		switch {
		case n.IsMissing():
			add(n, types.DiagMissing, "missing "+displayType(n))
			return
		case n.IsError() && n.ChildCount() == 0:
			add(n, types.DiagUnexpected, "unexpected "+unexpectedText(n, src, enc))
			return
		case n.IsError():
			add(n, types.DiagErrorNode, fmt.Sprintf("syntax error spanning %d code units", n.EndByte()-n.StartByte()))
			return
		}
		for i := range n.ChildCount() {
			walk(n.Child(i))
		}
	}
	walk(root)

	slices.SortStableFunc(diags, func(a, b types.Diagnostic) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return diags
}

func defaultSeverity(code string) types.Severity {
	for _, info := range types.AllDiagnosticCodes() {
		if info.Code == code {
			return info.Severity
		}
	}
	return types.SeverityError
}

func displayType(n treesit.Node) string {
	if n.IsNamed() {
		return n.Type()
	}
	return fmt.Sprintf("%q", n.Type())
}

func unexpectedText(n treesit.Node, src []byte, enc treesit.InputEncoding) string {
	if text := leafText(n, src, enc); text != "" {
		return fmt.Sprintf("%q", text)
	}
	return "input"
}

func summarize(diags []types.Diagnostic) lintSummary {
	var s lintSummary
	for _, d := range diags {
		switch d.Severity {
		case types.SeverityError:
			s.Errors++
		case types.SeverityWarning:
			s.Warnings++
		default:
			s.Info++
		}
	}
	return s
}

func writeLint(w io.Writer, cfg lintConfig, diags []types.Diagnostic) error {
	sum := summarize(diags)
	switch cfg.format {
	case "json":
		res := lintResult{Summary: sum}
		if !cfg.summary {
			for _, d := range diags {
				res.Diagnostics = append(res.Diagnostics, lintDiagnostic{
					Severity: d.Severity.String(),
					Code:     d.Code,
					Message:  d.Message,
					Source:   d.Source,
					Line:     d.Line,
					Column:   d.Column,
					Start:    d.Start,
					End:      d.End,
				})
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "compact":
		if !cfg.summary {
			for _, d := range diags {
				fmt.Fprintf(w, "%s:%d:%d:%s:%s\n", d.Source, d.Line, d.Column, d.Severity, d.Code)
			}
		}
	case "text":
		if !cfg.summary {
			for _, d := range diags {
				fmt.Fprintln(w, d.String())
			}
		}
	default:
		return fmt.Errorf("unknown format %q", cfg.format)
	}
	_, err := fmt.Fprintf(w, "%d errors, %d warnings, %d info\n", sum.Errors, sum.Warnings, sum.Info)
	return err
}
