package sitemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_UnanchoredSearch(t *testing.T) {
	f, err := CompileFilter([]string{"/tag/"})
	require.NoError(t, err)

	assert.True(t, f.Excludes("blog/tag/python/"))
	assert.False(t, f.Excludes("blog/python/"))
}

func TestFilter_MatchPositions(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
	}{
		{"prefix", "drafts", "drafts/post.html"},
		{"infix", "tag", "blog/tag/go.html"},
		{"suffix", `\.txt`, "notes/readme.txt"},
		{"whole", "about.html", "about.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := CompileFilter([]string{tt.pattern})
			require.NoError(t, err)
			assert.True(t, f.Excludes(tt.url))
		})
	}
}

func TestFilter_OrderDoesNotMatter(t *testing.T) {
	urls := []string{"a/tag/x", "b/category/y", "c/z", "author/me.html"}
	f1, err := CompileFilter([]string{"tag", "^author/"})
	require.NoError(t, err)
	f2, err := CompileFilter([]string{"^author/", "tag"})
	require.NoError(t, err)

	for _, u := range urls {
		assert.Equal(t, f1.Excludes(u), f2.Excludes(u), u)
	}
}

func TestFilter_AnchorsAreHonored(t *testing.T) {
	f, err := CompileFilter([]string{"^tag/"})
	require.NoError(t, err)

	assert.True(t, f.Excludes("tag/go.html"))
	assert.False(t, f.Excludes("blog/tag/go.html"))
}

func TestFilter_EmptyAndNil(t *testing.T) {
	f, err := CompileFilter(nil)
	require.NoError(t, err)
	assert.False(t, f.Excludes("anything"))

	var nilFilter *Filter
	assert.False(t, nilFilter.Excludes("anything"))
	assert.Zero(t, nilFilter.Len())
}

func TestCompileFilter_InvalidPattern(t *testing.T) {
	_, err := CompileFilter([]string{"[unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sitemap exclude pattern")
}
