package sitemap

import (
	"regexp"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
)

// Filter tests URLs against the compiled exclusion patterns.
// The zero value and a nil *Filter exclude nothing.
type Filter struct {
	patterns []*regexp.Regexp
}

// CompileFilter compiles every pattern once. The first pattern that does not
// compile aborts with a config error naming it.
func CompileFilter(patterns []string) (*Filter, error) {
	f := &Filter{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, ferrors.ConfigError("invalid sitemap exclude pattern").
				WithContext("pattern", p).
				WithContext("index", i).
				WithCause(err).
				Build()
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Excludes reports whether any pattern matches a substring of url.
func (f *Filter) Excludes(url string) bool {
	if f == nil {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.patterns)
}
