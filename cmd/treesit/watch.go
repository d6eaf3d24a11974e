package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/watch"
)

func (c *cli) newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Reparse a file whenever it changes and print its tree",
		Long: `Parse a file, print its S-expression, and reprint it after every change.
Reparses reuse the previous tree. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := c.inputEncoding()
			if err != nil {
				return err
			}
			p, err := c.newParser()
			if err != nil {
				return err
			}

			opts := []watch.Option{watch.WithDebounce(debounce), watch.WithEncoding(enc)}
			if logger := c.setupLogger(); logger != nil {
				opts = append(opts, watch.WithSlog(logger))
			}
			w, err := watch.New(args[0], p, opts...)
			if err != nil {
				return err
			}
			defer w.Close()

			w.Subscribe(func(ev watch.Event) {
				if ev.Err != nil {
					fmt.Fprintf(os.Stderr, "[%d] %v\n", ev.Version, ev.Err)
					return
				}
				root := ev.Tree.RootNode()
				fmt.Printf("[%d] %s (%s, has_error=%t)\n", ev.Version, root.String(), ev.Elapsed, root.HasError())
			})
			version := w.Version()
			w.Inspect(func(tree *treesit.Tree, _ []byte) {
				fmt.Printf("[%d] %s\n", version, tree.RootNode().String())
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before reparsing")

	return cmd
}
