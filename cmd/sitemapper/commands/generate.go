package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitemapper/internal/build"
	"git.home.luguber.info/inful/sitemapper/internal/config"
	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/sitemap"
)

// GenerateCmd writes the sitemap once.
type GenerateCmd struct {
	Format string `help:"Override the sitemap format (xml or txt)"`
	Output string `short:"o" help:"Override the output directory"`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, overrides{format: g.Format, output: g.Output})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := build.NewService(build.WithLogger(global.logger()), build.WithMetrics(prom.NewRegistry()))
	res, err := svc.Run(ctx, cfg)
	if err != nil {
		return err
	}
	printSummary(global.out(), res)
	return nil
}

// overrides are command line values that take precedence over the file.
type overrides struct {
	format string
	output string
}

func loadConfig(path string, o overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := o.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o overrides) apply(cfg *config.Config) error {
	if o.format != "" {
		switch sitemap.Format(o.format) {
		case sitemap.FormatXML, sitemap.FormatTXT:
		default:
			return ferrors.ValidationError("unsupported sitemap format").
				WithContext("format", o.format).
				Build()
		}
		if cfg.Sitemap == nil {
			cfg.Sitemap = map[string]any{}
		}
		cfg.Sitemap["format"] = o.format
	}
	if o.output != "" {
		// Relative to the working directory, not the config file.
		abs, err := filepath.Abs(o.output)
		if err != nil {
			return ferrors.FileSystemError("failed to resolve output directory").
				WithCause(err).
				WithContext("path", o.output).
				Build()
		}
		cfg.Site.OutputPath = abs
	}
	return nil
}

func printSummary(w io.Writer, res *build.Result) {
	_, _ = fmt.Fprintf(w, "Wrote %s: %d entries (%d excluded, %d private)\n",
		res.OutputPath, len(res.Entries), res.Stats.Excluded, res.Stats.Private)
	printIssues(w, res.Issues)
}

func printIssues(w io.Writer, issues []sitemap.Issue) {
	for _, issue := range issues {
		_, _ = fmt.Fprintf(w, "  warning: %s: invalid %s %q, using %s\n",
			issue.Source, issue.Field, issue.Value, issue.Fallback)
	}
}
