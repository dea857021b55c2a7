package sitemap

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ChangeFreq is the sitemaps.org change frequency hint.
type ChangeFreq string

const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

var changeFreqs = []ChangeFreq{
	ChangeFreqAlways,
	ChangeFreqHourly,
	ChangeFreqDaily,
	ChangeFreqWeekly,
	ChangeFreqMonthly,
	ChangeFreqYearly,
	ChangeFreqNever,
}

// ParseChangeFreq matches s case-insensitively against the seven valid values.
func ParseChangeFreq(s string) (ChangeFreq, bool) {
	folded := cases.Fold().String(strings.TrimSpace(s))
	for _, cf := range changeFreqs {
		if string(cf) == folded {
			return cf, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the seven sitemaps.org values.
func (c ChangeFreq) Valid() bool {
	for _, cf := range changeFreqs {
		if cf == c {
			return true
		}
	}
	return false
}

// ContentClass selects which per-class defaults apply to an item.
type ContentClass string

const (
	ClassArticle ContentClass = "article"
	ClassPage    ContentClass = "page"
	ClassIndex   ContentClass = "index"
)

var contentClasses = []ContentClass{ClassArticle, ClassPage, ClassIndex}

// settingsKey is the plural key used in the priorities/changefreqs mappings.
func (c ContentClass) settingsKey() string {
	switch c {
	case ClassArticle:
		return "articles"
	case ClassIndex:
		return "indexes"
	default:
		return "pages"
	}
}

// normalize maps unknown or empty classes onto ClassPage.
func (c ContentClass) normalize() ContentClass {
	switch c {
	case ClassArticle, ClassPage, ClassIndex:
		return c
	default:
		return ClassPage
	}
}

// Format is the output serialization.
type Format string

const (
	FormatXML Format = "xml"
	FormatTXT Format = "txt"
)

// Filename returns the file name written for the format.
func (f Format) Filename() string {
	if f == FormatTXT {
		return "sitemap.txt"
	}
	return "sitemap.xml"
}

// Timestamp is a point in time as reported by the host. Naive is set when the
// source carried no zone offset; such values are rejected rather than guessed.
type Timestamp struct {
	Time  time.Time
	Naive bool
}

// Zoned wraps a zone-aware time.
func Zoned(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// Item is the read-only view of one announced content item.
type Item struct {
	URL        string // relative to the site root, non-empty
	Class      ContentClass
	Lastmod    *Timestamp
	ChangeFreq string // raw per-item metadata, empty when absent
	Priority   string // raw per-item metadata, empty when absent
	Private    bool
	Source     string // where the item came from, for diagnostics only
}

// Entry is one resolved sitemap row. A zero Lastmod means the item had none.
type Entry struct {
	Loc        string
	Lastmod    time.Time
	ChangeFreq ChangeFreq
	Priority   float64
}

// HasLastmod reports whether the entry carries a modification time.
func (e Entry) HasLastmod() bool {
	return !e.Lastmod.IsZero()
}

// Issue describes per-item metadata that was rejected and replaced.
type Issue struct {
	URL      string
	Source   string
	Field    string
	Value    string
	Fallback string
}
