package content

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitemapper/internal/frontmatter"
	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

// Kind distinguishes articles from pages.
type Kind string

const (
	KindArticle Kind = "article"
	KindPage    Kind = "page"
)

// StatusPublished is the only status whose documents are announced.
const StatusPublished = "published"

// DefaultCategory is used for articles at the root of the content tree.
const DefaultCategory = "misc"

const pagesDir = "pages"

// Document is one source file with the metadata the sitemap needs.
type Document struct {
	Source   string // slash-separated path relative to the content root
	Kind     Kind
	Title    string
	Slug     string
	URL      string
	Status   string
	NoOutput bool // save_as was explicitly empty

	Date     time.Time
	Modified time.Time

	Category string
	Tags     []string
	Authors  []string

	ChangeFreq string
	Priority   string
	Private    bool
}

// Lastmod returns the modification date, falling back to the publication
// date.
func (d *Document) Lastmod() (time.Time, bool) {
	if !d.Modified.IsZero() {
		return d.Modified, true
	}
	if !d.Date.IsZero() {
		return d.Date, true
	}
	return time.Time{}, false
}

// Published reports whether the document's status allows output.
func (d *Document) Published() bool { return d.Status == StatusPublished }

// parseDocument builds a Document from a file's bytes. rel is the
// slash-separated path below the content root.
func parseDocument(rel string, data []byte, loc *time.Location, logger *slog.Logger) (*Document, error) {
	fields, _, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{Source: rel, Kind: KindArticle}
	if strings.HasPrefix(rel, pagesDir+"/") {
		doc.Kind = KindPage
	}

	doc.Title, _ = fields.String("title")

	doc.Slug, _ = fields.String("slug")
	doc.Slug = strings.TrimSpace(doc.Slug)
	if doc.Slug == "" {
		doc.Slug = Slugify(doc.Title)
	}
	if doc.Slug == "" {
		doc.Slug = Slugify(strings.TrimSuffix(path.Base(rel), path.Ext(rel)))
	}

	doc.Status = StatusPublished
	if s, ok := fields.String("status"); ok && strings.TrimSpace(s) != "" {
		doc.Status = strings.ToLower(strings.TrimSpace(s))
	}

	doc.URL = defaultURL(doc.Kind, doc.Slug)
	if saveAs, ok := fields.String("save_as"); ok {
		saveAs = strings.TrimSpace(saveAs)
		if saveAs == "" {
			doc.NoOutput = true
		} else {
			doc.URL = saveAs
		}
	}
	if u, ok := fields.String("url"); ok && strings.TrimSpace(u) != "" {
		doc.URL = strings.TrimSpace(u)
	}

	if raw, ok := fields.String("date"); ok && strings.TrimSpace(raw) != "" {
		if t, err := ParseDate(raw, loc); err == nil {
			doc.Date = t
		} else {
			logger.Warn("Ignoring unparsable date",
				logfields.File(rel), logfields.Field("date"), logfields.Value(raw), logfields.Error(err))
		}
	}
	if raw, ok := fields.String("modified"); ok && strings.TrimSpace(raw) != "" {
		if t, err := ParseDate(raw, loc); err == nil {
			doc.Modified = t
		} else {
			logger.Warn("Ignoring unparsable modified date, using date",
				logfields.File(rel), logfields.Field("modified"), logfields.Value(raw), logfields.Error(err))
		}
	}

	if doc.Kind == KindArticle {
		doc.Category, _ = fields.String("category")
		doc.Category = strings.TrimSpace(doc.Category)
		if doc.Category == "" {
			doc.Category = folderCategory(rel)
		}
		doc.Tags = fields.Strings("tags")
		doc.Authors = fields.Strings("authors")
		if len(doc.Authors) == 0 {
			doc.Authors = fields.Strings("author")
		}
	}

	doc.ChangeFreq, _ = fields.String("changefreq")
	doc.Priority, _ = fields.String("priority")
	if private, ok := fields.Bool("private"); ok {
		doc.Private = private
	} else if fields.Has("private") {
		logger.Warn("Ignoring non-boolean private flag", logfields.File(rel), logfields.Field("private"))
	}

	return doc, nil
}

func defaultURL(kind Kind, slug string) string {
	if kind == KindPage {
		return pagesDir + "/" + slug + ".html"
	}
	return slug + ".html"
}

// folderCategory names an article's category after its directory.
func folderCategory(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "" {
		return DefaultCategory
	}
	return path.Base(dir)
}
