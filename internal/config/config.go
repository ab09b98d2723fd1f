// Package config reads application settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config locates the durable store and the backup directory. Everything is
// local: the tracker has no network interface.
type Config struct {
	// Backend selects the persistence adapter: "file" or "sqlite".
	Backend string
	// DataPath is the file the selected backend stores into.
	DataPath string
	// BackupDir receives autosave/export files.
	BackupDir string
	// MetricsAddr, when non-empty, exposes Prometheus metrics on that
	// address for long-running commands.
	MetricsAddr string
	// Verbose enables debug logging.
	Verbose bool
}

// Load reads IT_* variables, after sourcing a .env file when present.
func Load() Config {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".import-tracker")

	cfg := Config{
		Backend:     getenv("IT_BACKEND", "file"),
		DataPath:    getenv("IT_DATA_PATH", ""),
		BackupDir:   getenv("IT_BACKUP_DIR", filepath.Join(base, "backups")),
		MetricsAddr: os.Getenv("IT_METRICS_ADDR"),
		Verbose:     os.Getenv("IT_VERBOSE") == "true",
	}

	if cfg.DataPath == "" {
		switch cfg.Backend {
		case "sqlite":
			cfg.DataPath = filepath.Join(base, "data.db")
		default:
			cfg.DataPath = filepath.Join(base, "data.json")
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
