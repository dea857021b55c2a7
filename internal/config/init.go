package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitemapper/internal/foundation/errors"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Site: SiteConfig{
			URL:             "${SITE_URL}",
			ContentDir:      DefaultContentDir,
			OutputPath:      DefaultOutputPath,
			Timezone:        "Europe/Oslo",
			GitLastmod:      true,
			DirectTemplates: DefaultDirectTemplates,
		},
		Sitemap: map[string]any{
			"format": "xml",
			"priorities": map[string]any{
				"articles": 0.5,
				"indexes":  0.5,
				"pages":    0.5,
			},
			"changefreqs": map[string]any{
				"articles": "monthly",
				"indexes":  "daily",
				"pages":    "monthly",
			},
			"exclude": []string{`^tag/`, `^category/`, `^author/`},
		},
		Metrics: MetricsConfig{Textfile: "sitemapper.prom"},
		Watch:   WatchConfig{Debounce: DefaultDebounce.String()},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example config").Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
