package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitemapper/internal/config"
)

// InitCmd writes an example configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	out := global.out()
	_, _ = fmt.Fprintf(out, "Configuration file created: %s\n", root.Config)
	_, _ = fmt.Fprintln(out, "Set SITE_URL (or edit site.url), then run: sitemapper generate")
	return nil
}
