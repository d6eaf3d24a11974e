package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/cmd/internal/cliutil"
)

func (c *cli) newAtCmd() *cobra.Command {
	var (
		named  bool
		row    int
		column int
		end    int
	)

	cmd := &cobra.Command{
		Use:   "at <file> [offset]",
		Short: "Describe the deepest node covering an offset or position",
		Long: `Describe the deepest node covering a code-unit offset, or a row/column
position when --row is given, along with its ancestors.

Examples:
  treesit at expr.txt 4
  treesit at expr.txt 4 --end 7 --named
  treesit at expr.txt --row 2 --column 0`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := cliutil.ReadSource(args[0])
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

			tree, err := p.Parse(context.Background(), nil, src, enc)
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			root := tree.RootNode()

			var node treesit.Node
			switch {
			case row >= 0:
				pt := treesit.Point{Row: uint32(row), Column: uint32(max(column, 0))}
				if named {
					node = root.NamedDescendantForPointRange(pt, pt)
				} else {
					node = root.DescendantForPointRange(pt, pt)
				}
			case len(args) == 2:
				var offset uint32
				if _, err := fmt.Sscan(args[1], &offset); err != nil {
					return fmt.Errorf("invalid offset %q", args[1])
				}
				to := offset
				if end >= 0 {
					to = uint32(end)
				}
				if named {
					node = root.NamedDescendantForByteRange(offset, to)
				} else {
					node = root.DescendantForByteRange(offset, to)
				}
			default:
				return fmt.Errorf("an offset or --row is required")
			}

			for depth := 0; !node.IsNull(); depth++ {
				fmt.Printf("%*s%s\n", 2*depth, "", node.Describe())
				node = node.Parent()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&named, "named", false, "only consider named nodes")
	cmd.Flags().IntVar(&row, "row", -1, "zero-based row (selects point lookup)")
	cmd.Flags().IntVar(&column, "column", 0, "zero-based column in code units")
	cmd.Flags().IntVar(&end, "end", -1, "end offset of the range (default: the offset)")

	return cmd
}
