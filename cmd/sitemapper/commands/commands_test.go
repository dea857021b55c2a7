package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/observability"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// newSite lays out a config file with content and output directories next
// to it and returns the config path.
func newSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "output"), 0o750))
	for name, body := range files {
		writeFile(t, filepath.Join(dir, "content", name), body)
	}
	configPath := filepath.Join(dir, "sitemapper.yaml")
	writeFile(t, configPath, "site:\n"+
		"  url: https://example.com/\n"+
		"  direct_templates: [index]\n")
	return configPath
}

func testGlobal(out io.Writer) *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Out: out}
}

var helloSite = map[string]string{
	"hello.md": "---\ntitle: Hello\ndate: 2024-05-01T10:00:00Z\n---\n",
}

func TestNewLogger_JSONCarriesBuildContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", false)

	ctx := observability.WithStage(observability.WithBuildID(context.Background(), "b-1"), "scan")
	logger.InfoContext(ctx, "hello")
	logger.Debug("hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "b-1", record["build_id"])
	assert.Equal(t, "scan", record["stage"])
}

func TestNewLogger_VerboseText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "text", true).Debug("details")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "msg=details")
}

func TestGenerate_WritesXML(t *testing.T) {
	configPath := newSite(t, helloSite)
	var out bytes.Buffer

	require.NoError(t, (&GenerateCmd{}).Run(testGlobal(&out), &CLI{Config: configPath}))

	data, err := os.ReadFile(filepath.Join(filepath.Dir(configPath), "output", "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<loc>https://example.com/hello.html</loc>")
	assert.Contains(t, out.String(), "Wrote ")
	assert.Contains(t, out.String(), "3 entries")
}

func TestGenerate_Overrides(t *testing.T) {
	configPath := newSite(t, helloSite)
	t.Chdir(t.TempDir())
	require.NoError(t, os.Mkdir("public", 0o750))

	cmd := &GenerateCmd{Format: "txt", Output: "public"}
	require.NoError(t, cmd.Run(testGlobal(io.Discard), &CLI{Config: configPath}))

	data, err := os.ReadFile(filepath.Join("public", "sitemap.txt"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/\n"+
		"https://example.com/hello.html\n"+
		"https://example.com/category/misc.html\n", string(data))
}

func TestGenerate_RejectsUnknownFormat(t *testing.T) {
	configPath := newSite(t, helloSite)

	err := (&GenerateCmd{Format: "html"}).Run(testGlobal(io.Discard), &CLI{Config: configPath})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestGenerate_MissingConfig(t *testing.T) {
	err := (&GenerateCmd{}).Run(testGlobal(io.Discard), &CLI{Config: filepath.Join(t.TempDir(), "none.yaml")})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestValidate_ReportsWithoutWriting(t *testing.T) {
	configPath := newSite(t, map[string]string{
		"odd.md": "---\ntitle: Odd\ndate: 2024-01-01T00:00:00Z\npriority: high\n---\n",
	})
	var out bytes.Buffer

	require.NoError(t, (&ValidateCmd{List: true}).Run(testGlobal(&out), &CLI{Config: configPath}))
	assert.Contains(t, out.String(), "Configuration OK: 1 articles, 0 pages")
	assert.Contains(t, out.String(), "https://example.com/odd.html\n")
	assert.Contains(t, out.String(), `invalid priority "high"`)

	_, err := os.Stat(filepath.Join(filepath.Dir(configPath), "output", "sitemap.xml"))
	assert.True(t, os.IsNotExist(err))

	err = (&ValidateCmd{Strict: true}).Run(testGlobal(io.Discard), &CLI{Config: configPath})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestInit(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sitemapper.yaml")
	var out bytes.Buffer

	require.NoError(t, (&InitCmd{}).Run(testGlobal(&out), &CLI{Config: configPath}))
	assert.FileExists(t, configPath)
	assert.Contains(t, out.String(), "Configuration file created")

	err := (&InitCmd{}).Run(testGlobal(io.Discard), &CLI{Config: configPath})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	require.NoError(t, (&InitCmd{Force: true}).Run(testGlobal(io.Discard), &CLI{Config: configPath}))
}

func TestWatch_BuildsUntilCanceled(t *testing.T) {
	configPath := newSite(t, helloSite)
	sitemapPath := filepath.Join(filepath.Dir(configPath), "output", "sitemap.xml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- (&WatchCmd{Debounce: 20 * time.Millisecond}).run(ctx, testGlobal(io.Discard), &CLI{Config: configPath})
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(sitemapPath)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	writeFile(t, filepath.Join(filepath.Dir(configPath), "content", "second.md"), "---\ntitle: Second\n---\n")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(sitemapPath)
		return err == nil && bytes.Contains(data, []byte("second.html"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestCLI_ParsesCommands(t *testing.T) {
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"-c", "site.yaml", "--log-format", "json", "generate", "--format", "txt", "-o", "public"})
	require.NoError(t, err)
	assert.Equal(t, "generate", ctx.Command())
	assert.Equal(t, "site.yaml", cli.Config)
	assert.Equal(t, "json", cli.LogFormat)
	assert.Equal(t, "txt", cli.Generate.Format)
	assert.Equal(t, "public", cli.Generate.Output)

	_, err = parser.Parse([]string{"--log-format", "xml", "validate"})
	require.Error(t, err)
}
