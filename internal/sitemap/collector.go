package sitemap

import (
	"context"
	"log/slog"
	"slices"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/logfields"
	"git.home.luguber.info/inful/sitemapper/internal/metrics"
)

// ErrAlreadyFinalized is returned when a collector is used after Finalize.
var ErrAlreadyFinalized = ferrors.InternalError("sitemap collector already finalized").Build()

// Stats summarizes what a collector did with the items it received.
type Stats struct {
	Recorded    int
	Excluded    int
	Private     int
	Overwritten int
	Issues      int
}

// Collector accumulates entries for one build. Entries are keyed by loc; a
// later item with the same loc replaces the earlier entry but keeps its
// position, so the same input sequence always yields the same output.
type Collector struct {
	cfg       *Config
	outputDir string
	siteURL   string
	logger    *slog.Logger
	recorder  metrics.Recorder
	emitter   *Emitter
	resolver  *Resolver

	index     map[string]int
	entries   []Entry
	issues    []Issue
	stats     Stats
	finalized bool
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for the collector and its resolver.
func WithLogger(l *slog.Logger) Option { return func(c *Collector) { c.logger = l } }

// WithSiteURL prefixes every loc with the site URL.
func WithSiteURL(u string) Option { return func(c *Collector) { c.siteURL = u } }

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *Collector) { c.recorder = r } }

// WithEmitter replaces the default OS filesystem emitter.
func WithEmitter(e *Emitter) Option { return func(c *Collector) { c.emitter = e } }

// NewCollector creates the accumulator for one build writing into outputDir.
func NewCollector(cfg *Config, outputDir string, opts ...Option) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Collector{
		cfg:       cfg,
		outputDir: outputDir,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		index:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.recorder == nil {
		c.recorder = metrics.NoopRecorder{}
	}
	if c.emitter == nil {
		c.emitter = NewEmitter(nil)
	}
	c.resolver = NewResolver(cfg, c.siteURL, c.logger)
	return c
}

// Record processes one announced item. Excluded and private items contribute
// nothing. The returned error is either ErrAlreadyFinalized or an input
// contract violation from the resolver; the collector state is unchanged then.
func (c *Collector) Record(item Item) error {
	if c.finalized {
		return ErrAlreadyFinalized
	}

	if c.cfg.Filter().Excludes(item.URL) {
		c.stats.Excluded++
		c.recorder.IncItemExcluded(metrics.ExcludedByPattern)
		c.logger.Debug("Item excluded by pattern", logfields.URL(item.URL))
		return nil
	}

	entry, issues, err := c.resolver.Resolve(item)
	if err != nil {
		return err
	}
	if entry == nil {
		c.stats.Private++
		c.recorder.IncItemExcluded(metrics.ExcludedPrivate)
		c.logger.Debug("Private item skipped", logfields.URL(item.URL))
		return nil
	}
	for _, issue := range issues {
		c.recorder.IncMetadataIssue(issue.Field)
	}
	c.issues = append(c.issues, issues...)
	c.stats.Issues += len(issues)

	if i, seen := c.index[entry.Loc]; seen {
		c.entries[i] = *entry
		c.stats.Overwritten++
		c.recorder.IncEntryOverwritten()
		c.logger.Debug("Entry replaced by later item", logfields.Loc(entry.Loc))
	} else {
		c.index[entry.Loc] = len(c.entries)
		c.entries = append(c.entries, *entry)
	}
	c.stats.Recorded++
	c.recorder.IncItemRecorded(string(item.Class.normalize()))
	return nil
}

// Finalize writes the sitemap and returns its path. It may be called once.
func (c *Collector) Finalize(ctx context.Context) (string, error) {
	if c.finalized {
		return "", ErrAlreadyFinalized
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.finalized = true

	path, err := c.emitter.Write(c.entries, c.cfg.Format(), c.outputDir)
	if err != nil {
		return "", err
	}
	c.recorder.SetEntriesEmitted(string(c.cfg.Format()), len(c.entries))
	c.logger.InfoContext(ctx, "Sitemap written",
		logfields.Path(path),
		logfields.Format(string(c.cfg.Format())),
		logfields.Count(len(c.entries)))
	return path, nil
}

// Entries returns the current entries in output order.
func (c *Collector) Entries() []Entry { return slices.Clone(c.entries) }

// Issues returns every rejected metadata value seen so far.
func (c *Collector) Issues() []Issue { return slices.Clone(c.issues) }

// Stats returns counters for the items seen so far.
func (c *Collector) Stats() Stats { return c.stats }
