// Package commands implements the sitemapper CLI commands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitemapper/internal/observability"
)

// CLI is the root command.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"sitemapper.yaml"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json)" enum:"text,json" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Generate the sitemap once"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate the sitemap whenever content or configuration changes"`
	Validate ValidateCmd `cmd:"" help:"Check configuration and content metadata without writing the sitemap"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
}

// Global carries dependencies shared by all commands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// AfterApply installs the default logger once flags are parsed.
func (c *CLI) AfterApply() error {
	slog.SetDefault(NewLogger(os.Stderr, c.LogFormat, c.Verbose))
	return nil
}

// NewLogger builds the CLI logger. Records carry the build ID and stage from
// their context.
func NewLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(observability.NewContextHandler(handler))
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}
