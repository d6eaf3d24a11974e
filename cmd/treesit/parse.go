package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/cmd/internal/cliutil"
)

func (c *cli) newParseCmd(code *int) *cobra.Command {
	var (
		format    string
		output    string
		dotGraphs string
		strict    bool
		stats     bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a file and print its syntax tree",
		Long: `Parse a file and print its syntax tree.

If no file is provided, reads source from stdin.

Formats:
  sexp   S-expression of named nodes (default)
  tree   one line per node with every property
  json   nested JSON objects
  yaml   nested YAML mappings
  dot    Graphviz digraph`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			src, err := cliutil.ReadSource(name)
			if err != nil {
				return err
			}
			enc, err := c.inputEncoding()
			if err != nil {
				return err
			}
			p, err := c.newParser()
			if err != nil {
				return err
			}
			defer p.Close()

			if dotGraphs != "" {
				f, closeDot, err := cliutil.GetOutput(dotGraphs)
				if err != nil {
					return err
				}
				defer closeDot()
				p.SetDotGraphWriter(f)
			}

			start := time.Now()
			tree, err := p.Parse(context.Background(), nil, src, enc)
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			elapsed := time.Since(start)

			out, closeOut, err := cliutil.GetOutput(output)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := writeTree(out, format, tree, src, enc); err != nil {
				return err
			}

			root := tree.RootNode()
			if stats {
				fmt.Fprintf(os.Stderr, "nodes: %d, has_error: %t, elapsed: %s\n",
					root.DescendantCount(), root.HasError(), elapsed)
			}
			if strict && root.HasError() {
				*code = exitSyntaxErrs
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "sexp", "output format: sexp, tree, json, yaml, dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&dotGraphs, "dot-graphs", "", "also write a Graphviz digraph of each parse to file")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when the tree contains syntax errors")
	cmd.Flags().BoolVar(&stats, "stats", false, "print node count and timing to stderr")

	return cmd
}

func writeTree(w io.Writer, format string, tree *treesit.Tree, src []byte, enc treesit.InputEncoding) error {
	switch format {
	case "sexp":
		_, err := fmt.Fprintln(w, tree.RootNode().String())
		return err
	case "tree":
		_, err := fmt.Fprintln(w, tree.String())
		return err
	case "dot":
		return tree.WriteDotGraph(w)
	case "json", "yaml":
		data, err := marshalTree(buildNode(tree.RootNode(), "", src, enc), format)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", format, err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
