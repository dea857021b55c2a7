// Package content reads a site's source tree and turns it into the items a
// sitemap is built from.
//
// Documents under pages/ are pages; everything else is an article. Articles
// are grouped into categories, tags and authors, each of which gets its own
// listing page, and the configured direct templates (index, archives, ...)
// are announced as listing pages as well.
package content
