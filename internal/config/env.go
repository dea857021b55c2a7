package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sitemapper/internal/logfields"
)

// envFiles are read in priority order. godotenv never overrides a variable
// that is already set, so the process environment beats .env.local, which
// beats .env.
var envFiles = []string{".env.local", ".env"}

// loadEnvFiles loads .env files from the working directory when present.
// A malformed file is logged and skipped.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", logfields.File(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(name))
	}
}
