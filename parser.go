package treesit

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/golangsnmp/treesit/internal/input"
)

// NoTimeout disables the parse timeout.
const NoTimeout uint64 = 0

// CloseFileDescriptor passed to PrintDotGraphs closes the current dot-graph
// output and disables it.
const CloseFileDescriptor = -1

// Parser turns text into Trees using one bound Language at a time. A Parser
// runs one parse at a time; only Cancel may be called from another
// goroutine while a parse is running. Trees never refer back to the Parser
// that built them.
type Parser struct {
	closed  bool
	lang    *Language
	cancel  *atomic.Bool
	timeout uint64
	logger  Logger
	dot     io.Writer
	dotFile *os.File
}

// NewParser creates a parser.
//
// Example:
//
//	p := treesit.NewParser(
//	    treesit.WithLanguage(arith.Language()),
//	    treesit.WithLogger(treesit.NewSlogLogger(slog.Default())),
//	    treesit.WithTimeout(500_000),
//	)
func NewParser(opts ...Option) *Parser {
	var cfg parserConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Parser{timeout: cfg.timeout, logger: cfg.logger}
	if cfg.lang != nil {
		p.SetLanguage(cfg.lang)
	}
	if cfg.cancellation {
		p.EnableCancellation()
	}
	return p
}

// IsNull reports whether the parser is nil or closed.
func (p *Parser) IsNull() bool { return p == nil || p.closed }

func (p *Parser) mustOpen(method string) {
	if p.IsNull() {
		panic("Parser." + method + ": parser is null")
	}
}

// Close releases the dot-graph output and unbinds the language. Every
// method except IsNull and Close panics afterwards.
func (p *Parser) Close() {
	if p.IsNull() {
		return
	}
	p.closeDot()
	p.lang = nil
	p.cancel = nil
	p.logger = nil
	p.closed = true
}

// Language returns the bound language, or nil.
func (p *Parser) Language() *Language {
	p.mustOpen("Language")
	return p.lang
}

// SetLanguage binds lang. It returns false, keeping the previous binding,
// when lang is nil or its version is outside
// [MinCompatibleLanguageVersion, LanguageVersion].
func (p *Parser) SetLanguage(lang *Language) bool {
	p.mustOpen("SetLanguage")
	if lang == nil || !lang.compatible() {
		return false
	}
	p.lang = lang
	return true
}

// ParseString parses UTF-8 text. It consumes old, which may be null, and
// returns the null Tree when no language is bound or the parse was halted.
func (p *Parser) ParseString(old *Tree, text string) *Tree {
	p.mustOpen("ParseString")
	return p.ParseStringEncoding(old, text, InputEncodingUTF8)
}

// ParseStringEncoding is ParseString for text in the given encoding.
func (p *Parser) ParseStringEncoding(old *Tree, text string, enc InputEncoding) *Tree {
	p.mustOpen("ParseStringEncoding")
	tree, err := p.Parse(context.Background(), old, []byte(text), enc)
	if err != nil {
		return Null()
	}
	return tree
}

// Parse parses text in the given encoding. It consumes old; when old was
// parsed with the same language and encoding, subtrees over unchanged text
// are copied from it. On failure it returns the null Tree and ErrNoLanguage,
// ErrTimeout, ErrCancelled, the context's error, or the recognizer's error.
func (p *Parser) Parse(ctx context.Context, old *Tree, text []byte, enc InputEncoding) (*Tree, error) {
	p.mustOpen("Parse")
	raw := old.IntoRaw()
	if p.lang == nil {
		return Null(), ErrNoLanguage
	}
	if err := ctx.Err(); err != nil {
		return Null(), fmt.Errorf("parse interrupted: %w", err)
	}

	var prev *tree
	if !raw.IsNull() {
		prev = raw.data
		raw.data = nil
	}

	src := input.Decode(text, enc)
	s := newSession(ctx, p, src, prev)
	err := p.lang.recognizer.Recognize(s)
	switch {
	case s.halt != nil:
		err = s.halt
	case err != nil:
		err = fmt.Errorf("%s: %w", p.lang.name, err)
	case s.result == nil:
		err = fmt.Errorf("%s: %w", p.lang.name, errNotAccepted)
	}
	if err != nil {
		s.Log(LogTypeParse, "done error:%v", err)
		return Null(), err
	}

	t := &Tree{data: &tree{lang: p.lang, text: src, tbl: s.result}}
	if p.dot != nil {
		if err := writeDot(p.dot, t.data); err != nil {
			s.Log(LogTypeParse, "dot_graph error:%v", err)
		}
	}
	return t, nil
}

// SetTimeoutMicros bounds the wall-clock time of each parse. Zero disables
// the bound.
func (p *Parser) SetTimeoutMicros(micros uint64) {
	p.mustOpen("SetTimeoutMicros")
	p.timeout = micros
}

// TimeoutMicros returns the parse timeout.
func (p *Parser) TimeoutMicros() uint64 {
	p.mustOpen("TimeoutMicros")
	return p.timeout
}

// EnableCancellation allocates the cancellation flag. It does nothing when
// cancellation is already enabled.
func (p *Parser) EnableCancellation() {
	p.mustOpen("EnableCancellation")
	if p.cancel == nil {
		p.cancel = new(atomic.Bool)
	}
}

// Cancel sets the cancellation flag. The running parse, if any, and every
// later parse return the null Tree until cancellation is disabled. Cancel may
// be called from any goroutine. It panics when cancellation is not enabled.
func (p *Parser) Cancel() {
	p.mustOpen("Cancel")
	if p.cancel == nil {
		panic("Parser.Cancel: cancellation flag is nil, enable cancellation before cancelling")
	}
	p.cancel.Store(true)
}

// DisableCancellation drops the cancellation flag.
func (p *Parser) DisableCancellation() {
	p.mustOpen("DisableCancellation")
	p.cancel = nil
}

// CancellationEnabled reports whether a cancellation flag is allocated.
func (p *Parser) CancellationEnabled() bool {
	p.mustOpen("CancellationEnabled")
	return p.cancel != nil
}

// SetLogger installs logger for subsequent parses. It panics on nil.
func (p *Parser) SetLogger(logger Logger) {
	p.mustOpen("SetLogger")
	if logger == nil {
		panic("Parser.SetLogger: logger is nil")
	}
	p.logger = logger
}

// AccessLogger returns the installed logger. It panics when there is none.
func (p *Parser) AccessLogger() Logger {
	p.mustOpen("AccessLogger")
	if p.logger == nil {
		panic("Parser.AccessLogger: logger is nil")
	}
	return p.logger
}

// HasLogger reports whether a logger is installed.
func (p *Parser) HasLogger() bool {
	p.mustOpen("HasLogger")
	return p.logger != nil
}

// TakeLogger removes and returns the installed logger. It panics when there
// is none.
func (p *Parser) TakeLogger() Logger {
	p.mustOpen("TakeLogger")
	if p.logger == nil {
		panic("Parser.TakeLogger: logger is nil")
	}
	l := p.logger
	p.logger = nil
	return l
}

// PrintDotGraphs makes the parser write a Graphviz rendering of each new
// tree to fd. The parser takes ownership of fd and closes it when replaced,
// on CloseFileDescriptor, or on Close. Standard input, output and error
// are refused with a panic; pass a duplicate instead.
func (p *Parser) PrintDotGraphs(fd int) {
	p.mustOpen("PrintDotGraphs")
	if fd == 0 || fd == 1 || fd == 2 {
		panic("Parser.PrintDotGraphs: stdin/stdout/stderr cannot be used directly, pass a duplicated descriptor")
	}
	p.closeDot()
	if fd < 0 {
		return
	}
	p.dotFile = os.NewFile(uintptr(fd), fmt.Sprintf("dot-graphs-%d", fd))
	p.dot = p.dotFile
}

// SetDotGraphWriter makes the parser write a Graphviz rendering of each new
// tree to w. A nil w disables the output. The parser does not close w.
func (p *Parser) SetDotGraphWriter(w io.Writer) {
	p.mustOpen("SetDotGraphWriter")
	p.closeDot()
	p.dot = w
}

func (p *Parser) closeDot() {
	if p.dotFile != nil {
		p.dotFile.Close()
		p.dotFile = nil
	}
	p.dot = nil
}
