package content

import (
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitemapper/internal/sitemap"
)

// TaxonomyKind names a grouping of articles that gets listing pages.
type TaxonomyKind string

const (
	TaxonomyCategory TaxonomyKind = "category"
	TaxonomyTag      TaxonomyKind = "tag"
	TaxonomyAuthor   TaxonomyKind = "author"
)

// Taxonomy is one category, tag or author and the articles filed under it.
type Taxonomy struct {
	Kind     TaxonomyKind
	Name     string
	Slug     string
	Articles []*Document
}

// URL returns the listing page path, e.g. tag/go.html.
func (t *Taxonomy) URL() string { return string(t.Kind) + "/" + t.Slug + ".html" }

// Lastmod returns the newest lastmod among the taxonomy's articles.
func (t *Taxonomy) Lastmod() (time.Time, bool) { return newest(t.Articles) }

// Site is the published content of one source tree.
type Site struct {
	Articles []*Document // sorted by source path
	Pages    []*Document // sorted by source path

	// Drafts counts documents skipped for a status other than published.
	Drafts int
	// Broken counts documents that could not be read or parsed.
	Broken int
}

// Categories groups articles by category, sorted by slug.
func (s *Site) Categories() []*Taxonomy {
	return s.group(TaxonomyCategory, func(d *Document) []string {
		if d.Category == "" {
			return nil
		}
		return []string{d.Category}
	})
}

// Tags groups articles by tag, sorted by slug.
func (s *Site) Tags() []*Taxonomy {
	return s.group(TaxonomyTag, func(d *Document) []string { return d.Tags })
}

// Authors groups articles by author, sorted by slug.
func (s *Site) Authors() []*Taxonomy {
	return s.group(TaxonomyAuthor, func(d *Document) []string { return d.Authors })
}

func (s *Site) group(kind TaxonomyKind, names func(*Document) []string) []*Taxonomy {
	bySlug := make(map[string]*Taxonomy)
	for _, doc := range s.Articles {
		for _, name := range names(doc) {
			slug := Slugify(name)
			if slug == "" {
				continue
			}
			t, ok := bySlug[slug]
			if !ok {
				t = &Taxonomy{Kind: kind, Name: name, Slug: slug}
				bySlug[slug] = t
			}
			if !slices.Contains(t.Articles, doc) {
				t.Articles = append(t.Articles, doc)
			}
		}
	}

	out := make([]*Taxonomy, 0, len(bySlug))
	for _, t := range bySlug {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Taxonomy) int { return strings.Compare(a.Slug, b.Slug) })
	return out
}

// Items lists everything the site publishes, in announcement order: direct
// templates, pages, articles, then category, tag and author listings.
// Documents whose output is disabled are left out.
func (s *Site) Items(directTemplates []string) []sitemap.Item {
	var items []sitemap.Item

	latest, hasLatest := newest(s.Articles)
	for _, name := range directTemplates {
		item := sitemap.Item{
			URL:    name + ".html",
			Class:  sitemap.ClassIndex,
			Source: "template:" + name,
		}
		if hasLatest {
			item.Lastmod = sitemap.Zoned(latest)
		}
		items = append(items, item)
	}

	for _, docs := range [][]*Document{s.Pages, s.Articles} {
		for _, doc := range docs {
			if doc.NoOutput {
				continue
			}
			items = append(items, documentItem(doc))
		}
	}

	for _, groups := range [][]*Taxonomy{s.Categories(), s.Tags(), s.Authors()} {
		for _, t := range groups {
			item := sitemap.Item{
				URL:    t.URL(),
				Class:  sitemap.ClassIndex,
				Source: string(t.Kind) + ":" + t.Name,
			}
			if lm, ok := t.Lastmod(); ok {
				item.Lastmod = sitemap.Zoned(lm)
			}
			items = append(items, item)
		}
	}
	return items
}

func documentItem(doc *Document) sitemap.Item {
	class := sitemap.ClassArticle
	if doc.Kind == KindPage {
		class = sitemap.ClassPage
	}
	item := sitemap.Item{
		URL:        doc.URL,
		Class:      class,
		ChangeFreq: doc.ChangeFreq,
		Priority:   doc.Priority,
		Private:    doc.Private,
		Source:     doc.Source,
	}
	if lm, ok := doc.Lastmod(); ok {
		item.Lastmod = sitemap.Zoned(lm)
	}
	return item
}

func newest(docs []*Document) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, doc := range docs {
		lm, ok := doc.Lastmod()
		if !ok {
			continue
		}
		if !found || lm.After(latest) {
			latest, found = lm, true
		}
	}
	return latest, found
}
