// Package backup is the disaster-recovery side channel: it receives
// collection snapshots after mutations and writes them to dated JSON files.
// It is decoupled from the primary persistence path; a slow or failing
// writer can never block or corrupt a mutation.
package backup

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ksagna/import-tracker/internal/codec"
	"github.com/ksagna/import-tracker/internal/metrics"
	"github.com/ksagna/import-tracker/internal/model"
)

const snapshotBuffer = 16

// Writer consumes snapshots from a buffered channel and writes
// import-tracker-backup-<ISO-date>.json files into its directory. When the
// buffer is full the snapshot is dropped with a log line; the next mutation
// will carry the newer state anyway.
type Writer struct {
	dir string
	log *zap.Logger

	snapshots chan []model.Order
	wg        sync.WaitGroup
	stopOnce  sync.Once

	timeNow func() time.Time
}

func NewWriter(dir string, log *zap.Logger) *Writer {
	return &Writer{
		dir:       dir,
		log:       log,
		snapshots: make(chan []model.Order, snapshotBuffer),
		timeNow:   time.Now,
	}
}

// Start launches the worker goroutine.
func (w *Writer) Start() {
	w.wg.Add(1)
	go w.run()
}

// Notify hands a snapshot to the worker without blocking.
func (w *Writer) Notify(orders []model.Order) {
	select {
	case w.snapshots <- orders:
	default:
		metrics.BackupsDroppedTotal.Inc()
		w.log.Warn("backup writer busy, snapshot dropped")
	}
}

// Stop drains pending snapshots and waits for the worker to exit.
func (w *Writer) Stop() {
	w.stopOnce.Do(func() {
		close(w.snapshots)
		w.wg.Wait()
	})
}

func (w *Writer) run() {
	defer w.wg.Done()

	for orders := range w.snapshots {
		if err := w.write(orders); err != nil {
			w.log.Warn("backup write failed", zap.Error(err))
		}
	}
}

// FileName returns the backup file name for a given day.
func FileName(t time.Time) string {
	return "import-tracker-backup-" + t.Format("2006-01-02") + ".json"
}

func (w *Writer) write(orders []model.Order) error {
	raw, err := codec.EncodeOrders(orders)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(w.dir, FileName(w.timeNow()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return err
	}

	metrics.BackupsWrittenTotal.Inc()
	w.log.Debug("backup written",
		zap.String("path", path), zap.Int("orders", len(orders)))
	return nil
}

// WriteBundle writes an explicit export bundle to the same dated file name.
// Used by the export command; unlike Notify it is synchronous and reports
// the path written.
func (w *Writer) WriteBundle(raw []byte) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(w.dir, FileName(w.timeNow()))
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
