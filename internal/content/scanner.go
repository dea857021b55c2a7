package content

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

// LastmodSource dates documents that carry no date of their own.
type LastmodSource interface {
	LastModified(path string) (time.Time, bool, error)
}

var sourceExtensions = []string{".md", ".markdown", ".mdown"}

// Scanner walks a content directory.
type Scanner struct {
	fs       afero.Fs
	root     string
	location *time.Location
	history  LastmodSource
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs reads from fsys instead of the OS filesystem.
func WithFs(fsys afero.Fs) Option { return func(s *Scanner) { s.fs = fsys } }

// WithLocation sets the zone for dates written without an offset.
func WithLocation(loc *time.Location) Option { return func(s *Scanner) { s.location = loc } }

// WithHistory enables the commit-time fallback for undated documents.
func WithHistory(h LastmodSource) Option { return func(s *Scanner) { s.history = h } }

// WithLogger sets the logger used for scan warnings and the summary.
func WithLogger(l *slog.Logger) Option { return func(s *Scanner) { s.logger = l } }

// NewScanner creates a scanner rooted at root.
func NewScanner(root string, opts ...Option) *Scanner {
	s := &Scanner{root: root, location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	return s
}

// Scan reads every source document below the root. Unreadable or malformed
// documents are logged and skipped; a missing root is an error.
func (s *Scanner) Scan(ctx context.Context) (*Site, error) {
	info, err := s.fs.Stat(s.root)
	if err != nil || !info.IsDir() {
		return nil, ferrors.ContentError("content directory not found").
			WithContext("path", s.root).
			WithCause(err).
			Fatal().
			Build()
	}

	site := &Site{}
	err = afero.Walk(s.fs, s.root, func(path string, info fs.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			s.logger.Warn("Skipping unreadable path", logfields.Path(path), logfields.Error(walkErr))
			site.Broken++
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		hidden := strings.HasPrefix(info.Name(), ".") && path != s.root
		if info.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !isSource(info.Name()) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		doc, err := s.read(path, rel)
		if err != nil {
			s.logger.Warn("Skipping unreadable document", logfields.File(rel), logfields.Error(err))
			site.Broken++
			return nil
		}
		if !doc.Published() {
			s.logger.Debug("Skipping unpublished document", logfields.File(rel), logfields.Reason(doc.Status))
			site.Drafts++
			return nil
		}

		if doc.Kind == KindPage {
			site.Pages = append(site.Pages, doc)
		} else {
			site.Articles = append(site.Articles, doc)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to walk content directory").
			WithContext("path", s.root).
			Build()
	}

	bySource := func(a, b *Document) int { return strings.Compare(a.Source, b.Source) }
	slices.SortFunc(site.Pages, bySource)
	slices.SortFunc(site.Articles, bySource)

	s.logger.Info("Content scanned",
		logfields.Path(s.root),
		slog.Int("articles", len(site.Articles)),
		slog.Int("pages", len(site.Pages)),
		slog.Int("drafts", site.Drafts),
		slog.Int("broken", site.Broken))
	return site, nil
}

func (s *Scanner) read(path, rel string) (*Document, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read document").Build()
	}

	doc, err := parseDocument(rel, data, s.location, s.logger)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "parse document").Build()
	}

	if s.history != nil && doc.Date.IsZero() && doc.Modified.IsZero() {
		when, found, err := s.history.LastModified(path)
		switch {
		case err != nil:
			s.logger.Warn("Commit history unavailable", logfields.File(rel), logfields.Error(err))
		case found:
			doc.Modified = when
		}
	}
	return doc, nil
}

func isSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(sourceExtensions, ext)
}
