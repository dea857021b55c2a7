package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/sitemap"
)

const root = "/site/content"

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(root, 0o755))
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fsys, filepath.Join(root, name), []byte(body), 0o644))
	}
	return fsys
}

func scan(t *testing.T, fsys afero.Fs, opts ...Option) *Site {
	t.Helper()
	opts = append([]Option{WithFs(fsys), WithLogger(discardLogger())}, opts...)
	site, err := NewScanner(root, opts...).Scan(context.Background())
	require.NoError(t, err)
	return site
}

type fakeHistory struct {
	dates map[string]time.Time
	err   error
	calls []string
}

func (h *fakeHistory) LastModified(path string) (time.Time, bool, error) {
	h.calls = append(h.calls, path)
	if h.err != nil {
		return time.Time{}, false, h.err
	}
	t, ok := h.dates[path]
	return t, ok, nil
}

func TestScan_ClassifiesAndSorts(t *testing.T) {
	fsys := newFs(t, map[string]string{
		"zeta.md":           "---\ntitle: Zeta\n---\n",
		"alpha.md":          "---\ntitle: Alpha Post\n---\n",
		"pages/about.md":    "---\ntitle: About Us\n---\n",
		"notes.txt":         "not content",
		".hidden.md":        "---\ntitle: Hidden\n---\n",
		".drafts/secret.md": "---\ntitle: Secret\n---\n",
	})

	site := scan(t, fsys)

	require.Len(t, site.Articles, 2)
	assert.Equal(t, "alpha.md", site.Articles[0].Source)
	assert.Equal(t, "alpha-post.html", site.Articles[0].URL)
	assert.Equal(t, "zeta.md", site.Articles[1].Source)

	require.Len(t, site.Pages, 1)
	assert.Equal(t, KindPage, site.Pages[0].Kind)
	assert.Equal(t, "pages/about-us.html", site.Pages[0].URL)
}

func TestScan_SkipsUnpublishedAndBroken(t *testing.T) {
	fsys := newFs(t, map[string]string{
		"draft.md":    "---\ntitle: Draft\nstatus: draft\n---\n",
		"hidden.md":   "---\ntitle: Hidden\nstatus: Hidden\n---\n",
		"broken.md":   "---\ntitle: [unclosed\n---\n",
		"live.md":     "---\ntitle: Live\nstatus: published\n---\n",
		"nostatus.md": "---\ntitle: No Status\n---\n",
	})

	site := scan(t, fsys)

	assert.Len(t, site.Articles, 2)
	assert.Equal(t, 2, site.Drafts)
	assert.Equal(t, 1, site.Broken)
}

func TestScan_URLOverrides(t *testing.T) {
	fsys := newFs(t, map[string]string{
		"custom-slug.md": "---\ntitle: Whatever\nslug: chosen\n---\n",
		"saved.md":       "---\ntitle: Saved\nsave_as: archive/saved.html\n---\n",
		"url.md":         "---\ntitle: Url\nsave_as: out/url.html\nurl: pretty/url/\n---\n",
		"nooutput.md":    "---\ntitle: Nothing\nsave_as: ''\n---\n",
		"untitled.md":    "plain body without metadata\n",
	})

	site := scan(t, fsys)
	urls := map[string]string{}
	for _, d := range site.Articles {
		urls[d.Source] = d.URL
	}

	assert.Equal(t, "chosen.html", urls["custom-slug.md"])
	assert.Equal(t, "archive/saved.html", urls["saved.md"])
	assert.Equal(t, "pretty/url/", urls["url.md"])
	assert.Equal(t, "untitled.html", urls["untitled.md"])

	var noOutput *Document
	for _, d := range site.Articles {
		if d.Source == "nooutput.md" {
			noOutput = d
		}
	}
	require.NotNil(t, noOutput)
	assert.True(t, noOutput.NoOutput)
}

func TestScan_Dates(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	fsys := newFs(t, map[string]string{
		"both.md":        "---\ndate: 2024-01-01 10:00\nmodified: 2024-02-01T12:00:00Z\n---\n",
		"naive.md":       "---\ndate: 2024-06-01 09:30\n---\n",
		"badmodified.md": "---\ndate: 2024-03-01\nmodified: someday\n---\n",
	})

	site := scan(t, fsys, WithLocation(oslo))
	docs := map[string]*Document{}
	for _, d := range site.Articles {
		docs[d.Source] = d
	}

	lm, ok := docs["both.md"].Lastmod()
	require.True(t, ok)
	assert.True(t, lm.Equal(time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)))

	lm, ok = docs["naive.md"].Lastmod()
	require.True(t, ok)
	assert.True(t, lm.Equal(time.Date(2024, 6, 1, 9, 30, 0, 0, oslo)))
	_, offset := lm.Zone()
	assert.Equal(t, 2*3600, offset)

	lm, ok = docs["badmodified.md"].Lastmod()
	require.True(t, ok)
	assert.True(t, lm.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, oslo)))
}

func TestScan_HistoryFallback(t *testing.T) {
	committed := time.Date(2023, 9, 9, 9, 0, 0, 0, time.UTC)
	history := &fakeHistory{dates: map[string]time.Time{
		filepath.Join(root, "undated.md"): committed,
	}}
	fsys := newFs(t, map[string]string{
		"undated.md": "---\ntitle: Undated\n---\n",
		"dated.md":   "---\ndate: 2024-01-01\n---\n",
		"unknown.md": "---\ntitle: Unknown\n---\n",
	})

	site := scan(t, fsys, WithHistory(history))
	docs := map[string]*Document{}
	for _, d := range site.Articles {
		docs[d.Source] = d
	}

	lm, ok := docs["undated.md"].Lastmod()
	require.True(t, ok)
	assert.True(t, lm.Equal(committed))

	_, ok = docs["unknown.md"].Lastmod()
	assert.False(t, ok)

	assert.NotContains(t, history.calls, filepath.Join(root, "dated.md"))
}

func TestScan_HistoryErrorIsNotFatal(t *testing.T) {
	history := &fakeHistory{err: errors.New("corrupt object")}
	fsys := newFs(t, map[string]string{"undated.md": "---\ntitle: Undated\n---\n"})

	site := scan(t, fsys, WithHistory(history))
	require.Len(t, site.Articles, 1)
	_, ok := site.Articles[0].Lastmod()
	assert.False(t, ok)
}

func TestScan_MetadataPassThrough(t *testing.T) {
	fsys := newFs(t, map[string]string{
		"pages/contact.md": "---\nChangeFreq: weekly\nPriority: 0.8\nprivate: \"True\"\n---\n",
	})

	site := scan(t, fsys)
	require.Len(t, site.Pages, 1)
	page := site.Pages[0]
	assert.Equal(t, "weekly", page.ChangeFreq)
	assert.Equal(t, "0.8", page.Priority)
	assert.True(t, page.Private)
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := NewScanner("/nowhere", WithFs(afero.NewMemMapFs()), WithLogger(discardLogger())).
		Scan(context.Background())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryContent))
}

func TestScan_Canceled(t *testing.T) {
	fsys := newFs(t, map[string]string{"a.md": "---\ntitle: A\n---\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(root, WithFs(fsys), WithLogger(discardLogger())).Scan(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_ItemsFeedTheCollector(t *testing.T) {
	fsys := newFs(t, map[string]string{
		"one.md":         "---\ntitle: One\ndate: 2024-01-01T00:00:00Z\ntags: [go]\n---\n",
		"pages/about.md": "---\ntitle: About\ndate: 2023-01-01T00:00:00Z\n---\n",
	})
	site := scan(t, fsys)

	cfg, err := sitemap.ResolveConfig(map[string]any{"format": "txt"}, discardLogger())
	require.NoError(t, err)

	out := afero.NewMemMapFs()
	require.NoError(t, out.MkdirAll("/out", 0o755))
	collector := sitemap.NewCollector(cfg, "/out",
		sitemap.WithSiteURL("https://example.com"),
		sitemap.WithEmitter(sitemap.NewEmitter(out)),
		sitemap.WithLogger(discardLogger()))

	for _, item := range site.Items([]string{"index"}) {
		require.NoError(t, collector.Record(item))
	}
	path, err := collector.Finalize(context.Background())
	require.NoError(t, err)

	data, err := afero.ReadFile(out, path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/\n"+
		"https://example.com/pages/about.html\n"+
		"https://example.com/one.html\n"+
		"https://example.com/category/misc.html\n"+
		"https://example.com/tag/go.html\n", string(data))
}
