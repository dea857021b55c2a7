package sitemap

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"

	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

// DefaultPriority applies to every class without a valid configured priority.
const DefaultPriority = 0.5

var defaultChangeFreqs = map[ContentClass]ChangeFreq{
	ClassArticle: ChangeFreqMonthly,
	ClassPage:    ChangeFreqMonthly,
	ClassIndex:   ChangeFreqDaily,
}

// Config is the resolved sitemap configuration. It is immutable after
// ResolveConfig returns and may be shared by every resolver of a build.
type Config struct {
	format      Format
	priorities  map[ContentClass]float64
	changeFreqs map[ContentClass]ChangeFreq
	exclude     []string
	filter      *Filter
}

// DefaultConfig returns the configuration used when no settings are given.
func DefaultConfig() *Config {
	cfg := &Config{
		format:      FormatXML,
		priorities:  make(map[ContentClass]float64, len(contentClasses)),
		changeFreqs: maps.Clone(defaultChangeFreqs),
		filter:      &Filter{},
	}
	for _, class := range contentClasses {
		cfg.priorities[class] = DefaultPriority
	}
	return cfg
}

// Format returns the output format.
func (c *Config) Format() Format { return c.format }

// Priority returns the configured priority for class; unknown classes use page.
func (c *Config) Priority(class ContentClass) float64 {
	return c.priorities[class.normalize()]
}

// ChangeFreq returns the configured change frequency for class; unknown classes use page.
func (c *Config) ChangeFreq(class ContentClass) ChangeFreq {
	return c.changeFreqs[class.normalize()]
}

// Exclude returns a copy of the exclusion patterns in configuration order.
func (c *Config) Exclude() []string { return slices.Clone(c.exclude) }

// Filter returns the compiled exclusion filter.
func (c *Config) Filter() *Filter { return c.filter }

// ResolveConfig validates raw settings and fills in defaults. Malformed values
// are logged and replaced; only an exclude pattern that does not compile is
// returned as an error. A nil logger uses slog.Default().
func ResolveConfig(raw map[string]any, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := DefaultConfig()
	if raw == nil {
		return cfg, nil
	}

	if v, ok := raw["format"]; ok {
		switch f, _ := v.(string); Format(f) {
		case FormatXML, FormatTXT:
			cfg.format = Format(f)
		default:
			warnFallback(logger, "format", v, FormatXML)
		}
	}

	if v, ok := raw["priorities"]; ok {
		pris, isMap := asMap(v)
		if !isMap {
			logger.Warn("Sitemap priorities must be a mapping, using defaults", logfields.Value(v))
		}
		for _, class := range contentClasses {
			key := class.settingsKey()
			pv, present := pris[key]
			if !present {
				continue
			}
			p, valid := asPriority(pv)
			if !valid {
				warnFallback(logger, "priorities."+key, pv, DefaultPriority)
				continue
			}
			cfg.priorities[class] = p
		}
	}

	if v, ok := raw["changefreqs"]; ok {
		freqs, isMap := asMap(v)
		if !isMap {
			logger.Warn("Sitemap changefreqs must be a mapping, using defaults", logfields.Value(v))
		}
		for _, class := range contentClasses {
			key := class.settingsKey()
			fv, present := freqs[key]
			if !present {
				continue
			}
			s, _ := fv.(string)
			cf, valid := ParseChangeFreq(s)
			if !valid {
				warnFallback(logger, "changefreqs."+key, fv, defaultChangeFreqs[class])
				continue
			}
			cfg.changeFreqs[class] = cf
		}
	}

	if v, ok := raw["exclude"]; ok {
		cfg.exclude = asPatterns(v, logger)
	}
	filter, err := CompileFilter(cfg.exclude)
	if err != nil {
		return nil, err
	}
	cfg.filter = filter

	return cfg, nil
}

func warnFallback(logger *slog.Logger, field string, value, fallback any) {
	logger.Warn("Invalid sitemap setting, using default",
		logfields.Field(field),
		logfields.Value(value),
		logfields.Fallback(fallback))
}

// asMap accepts the mapping shapes produced by yaml.v3 and encoding/json.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asPriority(v any) (float64, bool) {
	var p float64
	switch n := v.(type) {
	case int:
		p = float64(n)
	case int64:
		p = float64(n)
	case uint64:
		p = float64(n)
	case float32:
		p = float64(n)
	case float64:
		p = n
	default:
		return 0, false
	}
	return p, validPriority(p)
}

func validPriority(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func asPatterns(v any, logger *slog.Logger) []string {
	var list []any
	switch l := v.(type) {
	case []any:
		list = l
	case []string:
		return slices.Clone(l)
	default:
		logger.Warn("Sitemap exclude must be a list of patterns, ignoring it", logfields.Value(v))
		return nil
	}
	patterns := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			logger.Warn("Ignoring non-string sitemap exclude entry", logfields.Value(item))
			continue
		}
		patterns = append(patterns, s)
	}
	return patterns
}
