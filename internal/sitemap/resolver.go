package sitemap

import (
	"log/slog"
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

// ErrNaiveTimestamp is returned for items whose lastmod has no zone offset.
var ErrNaiveTimestamp = ferrors.ValidationError("lastmod timestamp has no timezone").Build()

// ErrEmptyURL is returned for items announced without a URL.
var ErrEmptyURL = ferrors.ValidationError("content item has an empty url").Build()

// Resolver computes the final entry for one item using
// per-item metadata > per-class configuration > built-in default.
type Resolver struct {
	cfg     *Config
	siteURL string
	logger  *slog.Logger
}

// NewResolver creates a resolver. siteURL, when set, prefixes every loc.
func NewResolver(cfg *Config, siteURL string, logger *slog.Logger) *Resolver {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cfg:     cfg,
		siteURL: strings.TrimRight(siteURL, "/"),
		logger:  logger,
	}
}

// Loc turns a site-relative URL into the loc written to the sitemap.
// With a site URL the home page "index.html" collapses to "<site>/".
func (r *Resolver) Loc(url string) string {
	if r.siteURL == "" {
		return url
	}
	if url == "index.html" {
		url = ""
	}
	return r.siteURL + "/" + strings.TrimLeft(url, "/")
}

// Resolve returns the entry for item, or nil when the item is private. Issues
// lists rejected per-item metadata; each was also logged. The only errors are
// input contract violations: an empty URL or a naive lastmod.
func (r *Resolver) Resolve(item Item) (*Entry, []Issue, error) {
	if item.URL == "" {
		return nil, nil, ErrEmptyURL.WithContext("source", item.Source)
	}
	if item.Private {
		return nil, nil, nil
	}

	entry := &Entry{Loc: r.Loc(item.URL)}
	if item.Lastmod != nil {
		if item.Lastmod.Naive {
			return nil, nil, ErrNaiveTimestamp.
				WithContext("url", item.URL).
				WithContext("value", item.Lastmod.Time.Format("2006-01-02T15:04:05"))
		}
		entry.Lastmod = item.Lastmod.Time
	}

	class := item.Class.normalize()
	var issues []Issue

	entry.Priority = r.cfg.Priority(class)
	if raw := strings.TrimSpace(item.Priority); raw != "" {
		p, err := parseDecimal(raw)
		if err == nil && validPriority(p) {
			entry.Priority = p
		} else {
			issues = append(issues, r.report(item, "priority", item.Priority, strconv.FormatFloat(entry.Priority, 'f', -1, 64)))
		}
	}

	entry.ChangeFreq = r.cfg.ChangeFreq(class)
	if item.ChangeFreq != "" {
		if cf, ok := ParseChangeFreq(item.ChangeFreq); ok {
			entry.ChangeFreq = cf
		} else {
			issues = append(issues, r.report(item, "changefreq", item.ChangeFreq, string(entry.ChangeFreq)))
		}
	}

	return entry, issues, nil
}

func (r *Resolver) report(item Item, field, value, fallback string) Issue {
	r.logger.Warn("Invalid item metadata, using configured value",
		logfields.URL(item.URL),
		logfields.File(item.Source),
		logfields.ContentClass(string(item.Class.normalize())),
		logfields.Field(field),
		logfields.Value(value),
		logfields.Fallback(fallback))
	return Issue{
		URL:      item.URL,
		Source:   item.Source,
		Field:    field,
		Value:    value,
		Fallback: fallback,
	}
}

// parseDecimal is strconv.ParseFloat without the hexadecimal form.
func parseDecimal(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}
