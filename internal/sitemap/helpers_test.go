package sitemap

import (
	"strconv"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

// decodeXML parses a sitemap produced by EncodeXML back into entries.
func decodeXML(t *testing.T, data []byte) []Entry {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))

	root := doc.SelectElement("urlset")
	require.NotNil(t, root, "missing urlset root")

	var entries []Entry
	for _, u := range root.SelectElements("url") {
		var e Entry
		e.Loc = u.SelectElement("loc").Text()
		if lm := u.SelectElement("lastmod"); lm != nil {
			ts, err := time.Parse(LastmodLayout, lm.Text())
			require.NoError(t, err)
			e.Lastmod = ts
		}
		e.ChangeFreq = ChangeFreq(u.SelectElement("changefreq").Text())
		p, err := strconv.ParseFloat(u.SelectElement("priority").Text(), 64)
		require.NoError(t, err)
		e.Priority = p
		entries = append(entries, e)
	}
	return entries
}
