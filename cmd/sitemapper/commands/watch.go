package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitemapper/internal/build"
	"git.home.luguber.info/inful/sitemapper/internal/logfields"
	"git.home.luguber.info/inful/sitemapper/internal/watch"
)

// WatchCmd keeps the sitemap current until interrupted.
type WatchCmd struct {
	Format   string        `help:"Override the sitemap format (xml or txt)"`
	Output   string        `short:"o" help:"Override the output directory"`
	Debounce time.Duration `help:"Override the debounce delay"`
	Interval time.Duration `help:"Override the periodic rebuild interval"`
}

func (w *WatchCmd) Run(global *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.run(ctx, global, root)
}

func (w *WatchCmd) run(ctx context.Context, global *Global, root *CLI) error {
	o := overrides{format: w.Format, output: w.Output}
	cfg, err := loadConfig(root.Config, o)
	if err != nil {
		return err
	}
	logger := global.logger()

	debounce, interval := cfg.Debounce(), cfg.Interval()
	if w.Debounce > 0 {
		debounce = w.Debounce
	}
	if w.Interval > 0 {
		interval = w.Interval
	}

	svc := build.NewService(build.WithLogger(logger), build.WithMetrics(prom.NewRegistry()))
	current := cfg

	// Builds run one at a time, so current needs no locking.
	rebuild := func(ctx context.Context, reason string) error {
		if reason == watch.ReasonConfig {
			next, err := loadConfig(root.Config, o)
			if err != nil {
				logger.Error("Keeping previous configuration", logfields.Error(err))
				return err
			}
			if next.ContentPath() != current.ContentPath() || next.OutputPath() != current.OutputPath() {
				logger.Warn("Content or output directory changed; restart to watch the new location",
					logfields.Path(next.ContentPath()))
			}
			current = next
		}
		res, err := svc.Run(ctx, current)
		if err != nil {
			return err
		}
		printSummary(global.out(), res)
		return nil
	}

	watcher, err := watch.New(watch.Options{
		ContentDir: cfg.ContentPath(),
		OutputDir:  cfg.OutputPath(),
		ConfigPath: root.Config,
		Debounce:   debounce,
		Interval:   interval,
		Build:      rebuild,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
