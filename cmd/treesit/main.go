// Command treesit parses source files with a built-in grammar and prints or
// watches their syntax trees.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/cmd/internal/cliutil"
	"github.com/golangsnmp/treesit/grammars/arith"
)

// Exit codes.
const (
	exitOK         = 0 // success
	exitError      = 1 // user error or parse failure
	exitSyntaxErrs = 2 // parse --strict or lint found syntax errors
)

// languages are the grammars selectable with --language.
var languages = map[string]func() *treesit.Language{
	"arith": arith.Language,
}

type cli struct {
	verbose   int
	language  string
	encoding  string
	timeout   uint64
	logEvents bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var c cli
	code := exitOK

	root := &cobra.Command{
		Use:           "treesit",
		Short:         "Parse source text into concrete syntax trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.CountVarP(&c.verbose, "verbose", "v", "debug logging (-vv for trace)")
	flags.StringVarP(&c.language, "language", "l", "arith", "grammar to parse with")
	flags.StringVarP(&c.encoding, "encoding", "e", "utf8", "input encoding: utf8, utf16le, utf16be")
	flags.Uint64Var(&c.timeout, "timeout", treesit.NoTimeout, "parse timeout in microseconds (0 disables)")
	flags.BoolVar(&c.logEvents, "log-events", false, "print parse and lex events to stderr")

	root.AddCommand(c.newParseCmd(&code))
	root.AddCommand(c.newLintCmd(&code))
	root.AddCommand(c.newAtCmd())
	root.AddCommand(c.newWatchCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run:   func(*cobra.Command, []string) { printVersion() },
	})

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		cliutil.PrintError("%v", err)
		return exitError
	}
	return code
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = treesit.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// newParser builds a parser from the global flags.
func (c *cli) newParser() (*treesit.Parser, error) {
	lang, ok := languages[c.language]
	if !ok {
		return nil, fmt.Errorf("unknown language %q", c.language)
	}
	opts := []treesit.Option{
		treesit.WithLanguage(lang()),
		treesit.WithTimeout(c.timeout),
	}
	switch {
	case c.logEvents:
		opts = append(opts, treesit.WithLogger(treesit.NewConsoleLogger(os.Stderr)))
	case c.verbose > 0:
		opts = append(opts, treesit.WithLogger(treesit.NewSlogLogger(c.setupLogger())))
	}
	return treesit.NewParser(opts...), nil
}

func (c *cli) inputEncoding() (treesit.InputEncoding, error) {
	return cliutil.ParseEncoding(c.encoding)
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("treesit %s\n", version)
}
