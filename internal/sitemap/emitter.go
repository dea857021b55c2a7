package sitemap

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/afero"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNamespace   = "http://www.w3.org/1999/xhtml"

	// LastmodLayout is W3C datetime with a numeric offset, never "Z".
	// Fractional seconds are written only when present.
	LastmodLayout = "2006-01-02T15:04:05.999999999-07:00"

	filePerm fs.FileMode = 0o644
)

// Emitter serializes entries and replaces the sitemap file in one step.
type Emitter struct {
	fs afero.Fs
}

// NewEmitter creates an emitter on fsys; nil means the OS filesystem.
func NewEmitter(fsys afero.Fs) *Emitter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Emitter{fs: fsys}
}

// Write serializes entries in format into dir and returns the final path.
// The content goes to a temporary file in dir that is renamed over the final
// name only after it was fully written and synced; on failure the temporary
// file is removed and any previous sitemap is left untouched.
func (e *Emitter) Write(entries []Entry, format Format, dir string) (path string, err error) {
	path = filepath.Join(dir, format.Filename())

	info, err := e.fs.Stat(dir)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", dir)
	}
	if err != nil {
		return "", writeError(path, "output directory unavailable", err)
	}

	tmp, err := afero.TempFile(e.fs, dir, "."+format.Filename()+".*.tmp")
	if err != nil {
		return "", writeError(path, "create temporary sitemap", err)
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if err != nil {
			_ = e.fs.Remove(tmpName)
		}
	}()

	if err = Encode(tmp, entries, format); err != nil {
		return "", writeError(path, "write sitemap", err)
	}
	if err = tmp.Sync(); err != nil {
		return "", writeError(path, "sync sitemap", err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return "", writeError(path, "close sitemap", err)
	}
	if err = e.fs.Chmod(tmpName, filePerm); err != nil {
		return "", writeError(path, "set sitemap permissions", err)
	}
	if err = e.fs.Rename(tmpName, path); err != nil {
		return "", writeError(path, "replace sitemap", err)
	}
	return path, nil
}

func writeError(path, msg string, cause error) error {
	return ferrors.FileSystemError(msg).WithContext("path", path).WithCause(cause).Build()
}

// Encode writes entries to w in the given format.
func Encode(w io.Writer, entries []Entry, format Format) error {
	if format == FormatTXT {
		return EncodeTXT(w, entries)
	}
	return EncodeXML(w, entries)
}

// EncodeXML writes a sitemaps.org urlset document.
func EncodeXML(w io.Writer, entries []Entry) error {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", sitemapNamespace)
	urlset.CreateAttr("xmlns:xhtml", xhtmlNamespace)

	for _, entry := range entries {
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(entry.Loc)
		if entry.HasLastmod() {
			u.CreateElement("lastmod").SetText(entry.Lastmod.Format(LastmodLayout))
		}
		u.CreateElement("changefreq").SetText(string(entry.ChangeFreq))
		u.CreateElement("priority").SetText(FormatPriority(entry.Priority))
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

// EncodeTXT writes one loc per line.
func EncodeTXT(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, entry := range entries {
		if _, err := bw.WriteString(entry.Loc + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatPriority renders p as the shortest decimal that parses back to p,
// always with a fractional part ("0.5", "1.0").
func FormatPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
