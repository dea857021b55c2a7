package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitemapper/internal/build"
	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitemapper/internal/sitemap"
)

// ValidateCmd resolves every entry without writing the sitemap.
type ValidateCmd struct {
	Strict bool `help:"Fail when any item metadata had to be replaced"`
	List   bool `help:"Print every resolved URL"`
}

func (v *ValidateCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, overrides{})
	if err != nil {
		return err
	}

	svc := build.NewService(build.WithLogger(global.logger()), build.WithDryRun())
	res, err := svc.Run(context.Background(), cfg)
	if err != nil {
		return err
	}

	out := global.out()
	_, _ = fmt.Fprintf(out, "Configuration OK: %d articles, %d pages, %d drafts, %d unreadable\n",
		res.Articles, res.Pages, res.Drafts, res.Broken)
	_, _ = fmt.Fprintf(out, "%d entries (%d excluded, %d private, %d overwritten)\n",
		len(res.Entries), res.Stats.Excluded, res.Stats.Private, res.Stats.Overwritten)
	if v.List {
		if err := sitemap.EncodeTXT(out, res.Entries); err != nil {
			return err
		}
	}
	printIssues(out, res.Issues)

	if v.Strict && len(res.Issues) > 0 {
		return ferrors.ValidationError("item metadata has issues").
			WithContext("issues", len(res.Issues)).
			Build()
	}
	return nil
}
