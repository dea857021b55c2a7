package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"git.home.luguber.info/inful/sitemapper/internal/config"
	"git.home.luguber.info/inful/sitemapper/internal/content"
	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/git"
	"git.home.luguber.info/inful/sitemapper/internal/logfields"
	"git.home.luguber.info/inful/sitemapper/internal/metrics"
	"git.home.luguber.info/inful/sitemapper/internal/observability"
	"git.home.luguber.info/inful/sitemapper/internal/sitemap"
)

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Result describes a finished build.
type Result struct {
	BuildID    string
	Status     Status
	OutputPath string // the written sitemap file, empty unless the build succeeded

	Articles int
	Pages    int
	Drafts   int
	Broken   int

	Stats   sitemap.Stats
	Issues  []sitemap.Issue
	Entries []sitemap.Entry

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// HistoryOpener opens the commit history for a content directory.
type HistoryOpener func(path string) (content.LastmodSource, error)

// Service executes builds. It is safe to reuse across builds but not to run
// builds concurrently on the same output directory.
type Service struct {
	fs          afero.Fs
	logger      *slog.Logger
	recorder    metrics.Recorder
	registry    *prom.Registry
	openHistory HistoryOpener
	newID       func() string
	dryRun      bool
}

// Option configures a Service.
type Option func(*Service)

// WithFs sets the filesystem content is read from and the sitemap is written to.
func WithFs(fsys afero.Fs) Option { return func(s *Service) { s.fs = fsys } }

// WithLogger sets the logger passed to every build stage.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithMetrics records build metrics on reg. When the configuration names a
// metrics textfile, reg is written to it after every build.
func WithMetrics(reg *prom.Registry) Option {
	return func(s *Service) {
		s.registry = reg
		s.recorder = metrics.NewPrometheusRecorder(reg)
	}
}

// WithHistoryOpener replaces the git history lookup.
func WithHistoryOpener(open HistoryOpener) Option { return func(s *Service) { s.openHistory = open } }

// WithIDGenerator replaces the build ID source.
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// WithDryRun resolves every entry but skips writing the sitemap.
func WithDryRun() Option { return func(s *Service) { s.dryRun = true } }

// NewService creates a build service.
func NewService(opts ...Option) *Service {
	s := &Service{
		recorder: metrics.NoopRecorder{},
		openHistory: func(path string) (content.LastmodSource, error) {
			return git.Open(path)
		},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Run executes a complete build for cfg.
func (s *Service) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	result := &Result{BuildID: s.newID(), StartTime: time.Now()}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	err := s.run(ctx, cfg, result)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	switch {
	case err == nil:
		result.Status = StatusSuccess
		s.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		s.logger.InfoContext(ctx, "Build finished",
			logfields.Path(result.OutputPath),
			logfields.Count(result.Stats.Recorded),
			slog.Int("excluded", result.Stats.Excluded),
			slog.Int("private", result.Stats.Private),
			slog.Int("overwritten", result.Stats.Overwritten),
			slog.Int("issues", result.Stats.Issues),
			logfields.Duration(result.Duration))
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		result.Status = StatusCanceled
		s.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
		s.logger.WarnContext(ctx, "Build canceled", logfields.Error(err))
	default:
		result.Status = StatusFailed
		s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		s.logger.ErrorContext(ctx, "Build failed", logfields.Error(err))
	}
	s.recorder.ObserveBuildDuration(result.Duration)
	s.exportMetrics(ctx, cfg)

	return result, err
}

func (s *Service) run(ctx context.Context, cfg *config.Config, result *Result) error {
	if cfg == nil {
		return ferrors.ConfigError("config required").Build()
	}

	ctx = observability.WithStage(ctx, "config")
	smCfg, err := sitemap.ResolveConfig(cfg.Sitemap, s.logger)
	if err != nil {
		return err
	}

	ctx = observability.WithStage(ctx, "scan")
	scanOpts := []content.Option{
		content.WithFs(s.fs),
		content.WithLocation(cfg.Location()),
		content.WithLogger(s.logger),
	}
	if cfg.Site.GitLastmod {
		if history, err := s.openHistory(cfg.ContentPath()); err != nil {
			s.logger.WarnContext(ctx, "Commit history unavailable, undated documents get no lastmod",
				logfields.Path(cfg.ContentPath()), logfields.Error(err))
		} else {
			scanOpts = append(scanOpts, content.WithHistory(history))
		}
	}
	site, err := content.NewScanner(cfg.ContentPath(), scanOpts...).Scan(ctx)
	if err != nil {
		return err
	}
	result.Articles, result.Pages = len(site.Articles), len(site.Pages)
	result.Drafts, result.Broken = site.Drafts, site.Broken

	ctx = observability.WithStage(ctx, "collect")
	collector := sitemap.NewCollector(smCfg, cfg.OutputPath(),
		sitemap.WithSiteURL(cfg.Site.URL),
		sitemap.WithLogger(s.logger),
		sitemap.WithRecorder(s.recorder),
		sitemap.WithEmitter(sitemap.NewEmitter(s.fs)))
	for _, item := range site.Items(cfg.Site.DirectTemplates) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := collector.Record(item); err != nil {
			if ce, ok := ferrors.AsClassified(err); ok {
				return ce.WithContext("url", item.URL).WithContext("source", item.Source)
			}
			return err
		}
	}
	result.Stats = collector.Stats()
	result.Issues = collector.Issues()
	result.Entries = collector.Entries()
	if s.dryRun {
		return nil
	}

	ctx = observability.WithStage(ctx, "emit")
	path, err := collector.Finalize(ctx)
	if err != nil {
		return err
	}
	result.OutputPath = path
	return nil
}

func (s *Service) exportMetrics(ctx context.Context, cfg *config.Config) {
	if s.registry == nil || cfg == nil || cfg.MetricsTextfile() == "" {
		return
	}
	if err := metrics.WriteTextfile(s.registry, cfg.MetricsTextfile()); err != nil {
		s.logger.WarnContext(ctx, "Failed to write metrics textfile",
			logfields.Path(cfg.MetricsTextfile()), logfields.Error(err))
	}
}
