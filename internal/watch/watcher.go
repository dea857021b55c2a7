// Package watch rebuilds the sitemap when content or configuration changes.
//
// Filesystem events are debounced into a single rebuild, builds never
// overlap, and an optional interval job triggers rebuilds on a timer.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

// Reasons passed to BuildFunc.
const (
	ReasonStartup  = "startup"
	ReasonContent  = "content"
	ReasonConfig   = "config"
	ReasonInterval = "interval"
)

// BuildFunc runs one build. Errors are logged; watching continues.
type BuildFunc func(ctx context.Context, reason string) error

// Options configures a Watcher.
type Options struct {
	ContentDir string
	OutputDir  string // ignored when inside ContentDir, so writing the sitemap does not retrigger
	ConfigPath string // optional

	Debounce time.Duration
	Interval time.Duration // zero disables periodic rebuilds

	Build  BuildFunc
	Logger *slog.Logger
}

// Watcher drives rebuilds from filesystem events and an optional interval.
type Watcher struct {
	contentDir string
	outputDir  string
	configPath string
	debounce   time.Duration
	interval   time.Duration
	build      BuildFunc
	logger     *slog.Logger

	fsw     *fsnotify.Watcher
	pending chan string
	builds  atomic.Int64

	// reload survives requests that collapse into an already queued build.
	reload atomic.Bool
}

// New creates a watcher. Call Run to start it.
func New(opts Options) (*Watcher, error) {
	if opts.Build == nil {
		return nil, fmt.Errorf("watch: build func required")
	}
	if opts.ContentDir == "" {
		return nil, fmt.Errorf("watch: content directory required")
	}

	contentDir, err := filepath.Abs(opts.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("resolve content directory: %w", err)
	}
	w := &Watcher{
		contentDir: contentDir,
		debounce:   opts.Debounce,
		interval:   opts.Interval,
		build:      opts.Build,
		logger:     opts.Logger,
		pending:    make(chan string, 1),
	}
	if opts.OutputDir != "" {
		if w.outputDir, err = filepath.Abs(opts.OutputDir); err != nil {
			return nil, fmt.Errorf("resolve output directory: %w", err)
		}
	}
	if opts.ConfigPath != "" {
		if w.configPath, err = filepath.Abs(opts.ConfigPath); err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return w, nil
}

// Builds returns how many builds have completed.
func (w *Watcher) Builds() int64 { return w.builds.Load() }

// Run builds once, then rebuilds on changes until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.contentDir); err != nil {
		return err
	}
	if w.configPath != "" {
		// The directory is watched rather than the file so editors that
		// replace the file on save keep being noticed.
		if err := w.fsw.Add(filepath.Dir(w.configPath)); err != nil {
			return fmt.Errorf("failed to watch config directory: %w", err)
		}
	}

	if w.interval > 0 {
		sched, err := w.schedule()
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	done := make(chan struct{})
	go w.buildLoop(ctx, done)
	w.request(ReasonStartup)

	w.logger.Info("Watching for changes",
		logfields.Path(w.contentDir),
		slog.Duration("debounce", w.debounce),
		slog.Duration("interval", w.interval))

	w.eventLoop(ctx)
	<-done
	return nil
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.request(ReasonInterval) }),
		gocron.WithName("periodic-sitemap-build"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create periodic build job: %w", err)
	}
	sched.Start()
	return sched, nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	var (
		timer    *time.Timer
		debounce <-chan time.Time
		reason   string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			r := w.classify(event)
			if r == "" {
				continue
			}
			w.logger.Debug("Change detected", logfields.File(event.Name), logfields.Reason(r))
			// A config change outranks content changes in the same burst.
			if reason != ReasonConfig {
				reason = r
			}
			if w.debounce <= 0 {
				w.request(reason)
				reason = ""
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			debounce = timer.C

		case <-debounce:
			debounce = nil
			w.request(reason)
			reason = ""

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

// classify maps an event to a rebuild reason, or "" when it is irrelevant.
func (w *Watcher) classify(event fsnotify.Event) string {
	if event.Op == fsnotify.Chmod {
		return ""
	}
	name := filepath.Clean(event.Name)

	if w.configPath != "" && name == w.configPath {
		if event.Op.Has(fsnotify.Remove) {
			w.logger.Warn("Config file removed", logfields.File(name))
			return ""
		}
		return ReasonConfig
	}

	if !within(w.contentDir, name) || (w.outputDir != "" && within(w.outputDir, name)) {
		return ""
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return ""
	}

	if event.Op.Has(fsnotify.Create) {
		// New directories are not covered by the existing watches.
		if err := w.addTree(name); err != nil {
			w.logger.Debug("Not watching new path", logfields.Path(name), logfields.Error(err))
		}
	}
	return ReasonContent
}

func (w *Watcher) buildLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.pending:
			if w.reload.Swap(false) {
				reason = ReasonConfig
			}
			start := time.Now()
			err := w.build(ctx, reason)
			w.builds.Add(1)
			if err != nil {
				w.logger.Error("Rebuild failed", logfields.Reason(reason), logfields.Error(err))
				continue
			}
			w.logger.Debug("Rebuild complete", logfields.Reason(reason), logfields.Duration(time.Since(start)))
		}
	}
}

// request queues a build. While one is queued further requests collapse
// into it; a config request upgrades the queued build to a config build.
func (w *Watcher) request(reason string) {
	if reason == ReasonConfig {
		w.reload.Store(true)
	}
	select {
	case w.pending <- reason:
	default:
	}
}

// addTree watches root and every directory below it, skipping hidden
// directories and the output directory.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if w.outputDir != "" && within(w.outputDir, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
