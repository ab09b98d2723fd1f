// Package cli wires the store, persistence adapter and backup writer into
// the command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ksagna/import-tracker/internal/backup"
	"github.com/ksagna/import-tracker/internal/config"
	"github.com/ksagna/import-tracker/internal/kvstore"
	"github.com/ksagna/import-tracker/internal/logger"
	"github.com/ksagna/import-tracker/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "import-tracker",
	Short: "Personal order ledger for a small import/resale business",
	Long: `import-tracker records orders (client, transport, prices, dates,
status, photos, review), tracks profit and reminds you about orders stuck
in transit. All data stays on this machine.

Run without arguments for the interactive shell, where undo/redo history
spans the whole session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd, args)
	},
}

// Execute is the entrypoint used by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// App holds everything a command needs. Built once per invocation; the
// store is an explicit handle, never a package-level singleton.
type App struct {
	Cfg    config.Config
	Log    *zap.Logger
	Store  *store.Store
	Backup *backup.Writer

	closeKV func() error
}

func newApp() (*App, error) {
	cfg := config.Load()
	log := logger.New(cfg.Verbose)

	var (
		kv      kvstore.KV
		closeKV func() error
		err     error
	)
	switch cfg.Backend {
	case "sqlite":
		sq, sqErr := kvstore.NewSQLiteStore(cfg.DataPath)
		if sqErr != nil {
			err = sqErr
		} else {
			kv, closeKV = sq, sq.Close
		}
	case "file":
		kv, err = kvstore.NewFileStore(cfg.DataPath)
	default:
		err = fmt.Errorf("unknown backend %q (want file or sqlite)", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store at %s: %w", cfg.Backend, cfg.DataPath, err)
	}

	writer := backup.NewWriter(cfg.BackupDir, log)
	writer.Start()

	st, err := store.New(kv, log, store.WithNotifier(writer))
	if err != nil {
		writer.Stop()
		return nil, err
	}

	return &App{
		Cfg:     cfg,
		Log:     log,
		Store:   st,
		Backup:  writer,
		closeKV: closeKV,
	}, nil
}

// Close flushes the backup writer and releases the adapter.
func (a *App) Close() {
	a.Backup.Stop()
	if a.closeKV != nil {
		if err := a.closeKV(); err != nil {
			a.Log.Warn("failed to close store backend", zap.Error(err))
		}
	}
	_ = a.Log.Sync()
}
