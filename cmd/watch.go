// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/luthersystems/drl/lint"
)

// WatchCommand creates the "watch" cobra command.
func WatchCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var (
		debounce time.Duration
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "watch [flags] DIR",
		Short: "Re-validate DRL files when they change",
		Long: `Watch a directory tree and validate each .drl file as it is written.

All files are checked once on start. After that, only files that change are
checked again, once the directory has been quiet for the debounce interval.
Diagnostics are printed as in "drl check". Press Ctrl-C to stop.

Examples:
  drl watch rules
  drl watch --debounce=500ms rules`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			w, err := newWatcher(args[0], debounce, logger)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "drl watch: %v\n", err)
				os.Exit(2)
			}
			defer w.Close() //nolint:errcheck // best-effort cleanup on exit

			l := &lint.Linter{Analyzers: cfg.resolveAnalyzers(), Analysis: cfg.analysisConfig()}
			settings := loadSettings(cfg.config())
			out := cmd.ErrOrStderr()
			check := func(paths []string) {
				checkAndRender(ctx, out, l, settings, paths, logger)
			}
			if err := w.Run(ctx, check); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "drl watch: %v\n", err)
				os.Exit(2)
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond,
		"Quiet period after the last change before files are checked.")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every file system event.")
	return cmd
}

func init() {
	rootCmd.AddCommand(WatchCommand())
}

// checkAndRender validates paths and renders their diagnostics to w.
func checkAndRender(ctx context.Context, w io.Writer, l *lint.Linter, settings lint.Settings, paths []string, logger *slog.Logger) {
	var sources []source
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			// Removed between the event and the check.
			logger.Debug("skipping unreadable file", "path", path, "error", err)
			continue
		}
		sources = append(sources, source{name: path, data: data})
	}
	renderer := newRenderer(nil)
	for _, res := range checkSources(ctx, l, settings, sources) {
		logger.Info("checked", "path", res.File, "diagnostics", len(res.Diagnostics))
		if err := renderDiagnostics(w, renderer, res.File, res.Diagnostics); err != nil {
			logger.Error("rendering diagnostics", "error", err)
		}
	}
}

// watcher reports batches of changed .drl files below a root directory.
type watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	done    chan struct{}
}

func newWatcher(root string, interval time.Duration, logger *slog.Logger) (*watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &watcher{
		root:     root,
		fsw:      fsw,
		logger:   logger,
		interval: interval,
		pending:  make(map[string]bool),
		done:     make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close() //nolint:errcheck,gosec // already failing
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	close(w.done)
	return w.fsw.Close()
}

// Run checks every file once and then calls check with the files changed
// in each quiet period until ctx is done.
func (w *watcher) Run(ctx context.Context, check func([]string)) error {
	initial, err := findDRLFiles(w.root)
	if err != nil {
		return fmt.Errorf("listing %s: %w", w.root, err)
	}
	check(initial)

	w.logger.Info("watching for changes", "path", w.root, "debounce_ms", w.interval.Milliseconds())
	batches := make(chan []string)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped")
			return nil
		case paths := <-batches:
			check(paths)
		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(event, batches)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// handle records a relevant event and restarts the quiet period timer.
// The batch is delivered on batches by the timer.
func (w *watcher) handle(event fsnotify.Event, batches chan<- []string) {
	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("watching new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !relevantEvent(event) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.interval, func() {
		batch := w.takePending()
		if len(batch) == 0 {
			return
		}
		select {
		case batches <- batch:
		case <-w.done:
		}
	})
}

func (w *watcher) takePending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]bool)
	sort.Strings(batch)
	return batch
}

// addTree watches dir and every non-hidden directory below it.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// relevantEvent reports whether event concerns the contents of a visible
// .drl file.
func relevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".drl")
}
