// Package watch keeps the syntax tree of a file current as the file changes
// on disk.
//
// A Watcher parses the file once when created. Run then waits for fsnotify
// events on the file's directory, debounces them, and reparses the new text
// incrementally against the previous tree. Subscribers see every new tree.
//
//	w, err := watch.New("expr.txt", treesit.NewParser(treesit.WithLanguage(arith.Language())))
//	if err != nil {
//	    return err
//	}
//	w.Subscribe(func(ev watch.Event) {
//	    fmt.Println(ev.Tree.RootNode().String())
//	})
//	err = w.Run(ctx)
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/golangsnmp/treesit"
	"github.com/golangsnmp/treesit/internal/types"
)

// DefaultDebounce is the quiet period after the last file event before the
// file is reparsed.
const DefaultDebounce = 100 * time.Millisecond

// Event describes one parse of the watched file. Tree is owned by the
// Watcher and is only valid until the subscriber returns; it is consumed by
// the next reparse.
type Event struct {
	Path    string
	Version int
	Tree    *treesit.Tree
	Elapsed time.Duration
	Err     error
}

// Option configures a Watcher.
type Option func(*config)

type config struct {
	debounce time.Duration
	logger   *slog.Logger
	encoding treesit.InputEncoding
}

// WithDebounce sets the quiet period before a reparse. Values of zero or
// less select DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(c *config) { c.debounce = d }
}

// WithSlog enables logging of watcher activity.
// If not set, logging is disabled (zero overhead).
func WithSlog(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithEncoding declares the encoding of the file. The default is UTF-8.
func WithEncoding(enc treesit.InputEncoding) Option {
	return func(c *config) { c.encoding = enc }
}

// Watcher owns a parser and the current tree of one file.
type Watcher struct {
	path   string
	parser *treesit.Parser
	cfg    config
	log    types.Logger

	mu      sync.Mutex
	tree    *treesit.Tree
	text    []byte
	version int
	subs    []func(Event)
}

// New reads and parses path. The watcher takes the parser over; it must not
// be used elsewhere while the watcher is alive.
func New(path string, parser *treesit.Parser, opts ...Option) (*Watcher, error) {
	if parser.IsNull() {
		return nil, errors.New("watch: parser is null")
	}
	if parser.Language() == nil {
		return nil, treesit.ErrNoLanguage
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	cfg := config{debounce: DefaultDebounce, encoding: treesit.InputEncodingUTF8}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.debounce <= 0 {
		cfg.debounce = DefaultDebounce
	}

	w := &Watcher{
		path:   filepath.Clean(abs),
		parser: parser,
		cfg:    cfg,
		log:    types.Logger{L: cfg.logger},
		tree:   treesit.Null(),
	}
	if ev := w.reparse(context.Background()); ev.Err != nil {
		return nil, ev.Err
	}
	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string { return w.path }

// Version returns the number of successful parses so far.
func (w *Watcher) Version() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.version
}

// Inspect calls fn with the current tree while holding the watcher's lock.
// The tree must not be retained after fn returns.
func (w *Watcher) Inspect(fn func(tree *treesit.Tree, text []byte)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.tree, w.text)
}

// Subscribe registers fn to receive every later parse of the file. fn runs
// on the parsing goroutine with the watcher locked, so it must not call
// the watcher's methods.
func (w *Watcher) Subscribe(fn func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subs = append(w.subs, fn)
}

// Reload rereads and reparses the file immediately.
func (w *Watcher) Reload(ctx context.Context) error {
	return w.reparse(ctx).Err
}

func (w *Watcher) reparse(ctx context.Context) Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	ev := Event{Path: w.path, Version: w.version}
	text, err := os.ReadFile(w.path)
	if err != nil {
		ev.Err = fmt.Errorf("watch: %w", err)
		w.log.Log(slog.LevelWarn, "read failed", slog.String("path", w.path), slog.Any("err", err))
		w.notify(ev)
		return ev
	}

	start := time.Now()
	tree, err := w.parser.Parse(ctx, w.tree, text, w.cfg.encoding)
	ev.Elapsed = time.Since(start)
	if err != nil {
		// The previous tree was consumed; the next parse starts fresh.
		w.tree = treesit.Null()
		ev.Err = fmt.Errorf("watch: parse %s: %w", w.path, err)
		w.log.Log(slog.LevelWarn, "parse failed", slog.String("path", w.path), slog.Any("err", err))
		w.notify(ev)
		return ev
	}

	w.tree = tree
	w.text = text
	w.version++
	ev.Version = w.version
	ev.Tree = tree
	w.log.Log(slog.LevelDebug, "parsed",
		slog.String("path", w.path),
		slog.Int("version", w.version),
		slog.Int("bytes", len(text)),
		slog.Bool("has_error", tree.RootNode().HasError()),
		slog.Duration("elapsed", ev.Elapsed))
	w.notify(ev)
	return ev
}

func (w *Watcher) notify(ev Event) {
	for _, fn := range w.subs {
		fn(ev)
	}
}

// Run watches the file until ctx ends or the fsnotify watcher fails. It
// reparses once per burst of events on the file. Parse failures are
// reported to subscribers and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	// Editors often replace files by rename, which drops a watch on the
	// file itself, so watch the directory.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	w.log.Log(slog.LevelDebug, "watching", slog.String("path", w.path), slog.Duration("debounce", w.cfg.debounce))

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.log.TraceEnabled() {
				w.log.Trace("event", slog.String("op", event.Op.String()))
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.cfg.debounce)
			pending = true
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.reparse(ctx)
		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", werr)
		}
	}
}

// Close releases the current tree and closes the parser.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tree.Release()
	w.parser.Close()
}
