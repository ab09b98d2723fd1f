// Package store owns the canonical order collection, the bounded undo/redo
// history over it, and every mutation path. It is the single source of truth;
// views derive from its snapshots and never mutate.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ksagna/import-tracker/internal/codec"
	"github.com/ksagna/import-tracker/internal/kvstore"
	"github.com/ksagna/import-tracker/internal/metrics"
	"github.com/ksagna/import-tracker/internal/model"
)

// historyLimit caps both snapshot stacks; the oldest entry is evicted on
// overflow.
const historyLimit = 50

// Notifier receives a copy of the collection after a successful mutation.
// Implementations must not block: the mutation path never waits on the
// side channel.
type Notifier interface {
	Notify(orders []model.Order)
}

// Store is the order ledger. It is constructed once at process start and
// passed by handle to all consumers. Operations are invoked from a single
// event loop and run to completion; the store does no internal locking.
type Store struct {
	kv       kvstore.KV
	log      *zap.Logger
	notifier Notifier

	orders    []model.Order
	undoStack [][]model.Order
	redoStack [][]model.Order

	settings Settings
	user     string
	pinHash  string
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithNotifier attaches the autosave side channel.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// New loads persisted state from kv and returns a ready store. A corrupt
// order payload is logged and treated as an empty collection; a failing
// adapter is a hard fault.
func New(kv kvstore.KV, log *zap.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		kv:       kv,
		log:      log,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.loadOrders(); err != nil {
		return nil, err
	}
	if err := s.loadSettings(); err != nil {
		return nil, err
	}
	if err := s.loadIdentity(); err != nil {
		return nil, err
	}

	metrics.OrdersInCollection.Set(float64(len(s.orders)))
	return s, nil
}

func (s *Store) loadOrders() error {
	raw, ok, err := s.kv.Get(kvstore.KeyOrders)
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}
	if !ok {
		return nil
	}

	var orders []model.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		s.log.Warn("persisted order collection is corrupt, starting empty",
			zap.Error(err))
		return nil
	}
	s.orders = orders
	return nil
}

// persistOrders writes the current collection through the adapter. State
// stays applied in memory even when this fails; the caller only loses
// durability across restart.
func (s *Store) persistOrders() error {
	raw, err := json.Marshal(s.orders)
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}
	if err := s.kv.Set(kvstore.KeyOrders, string(raw)); err != nil {
		return fmt.Errorf("failed to persist orders: %w", err)
	}
	return nil
}

// pushUndo snapshots the current collection onto the undo stack and clears
// the redo stack. Redo history is only valid immediately after an undo.
func (s *Store) pushUndo() {
	s.undoStack = append(s.undoStack, model.CloneOrders(s.orders))
	if len(s.undoStack) > historyLimit {
		s.undoStack = s.undoStack[len(s.undoStack)-historyLimit:]
	}
	s.redoStack = nil
}

func (s *Store) emitSnapshot() {
	if s.notifier == nil || !s.settings.Autosave {
		return
	}
	s.notifier.Notify(model.CloneOrders(s.orders))
}

// SaveOrder creates the order when its ID is unknown and replaces it
// entirely otherwise. Profit is recomputed here, never taken from the
// caller. Malformed content (empty client, out-of-order dates) is accepted
// as-is; validation is a UI concern.
func (s *Store) SaveOrder(o model.Order) error {
	o.Profit = o.ClientPrice - o.RealPrice

	if size := o.PhotoSize(); size > model.PhotoSizeWarnThreshold {
		metrics.PhotoSizeWarningsTotal.Inc()
		s.log.Warn("order photo payload exceeds threshold",
			zap.String("order_id", o.ID),
			zap.Int("size", size),
			zap.Int("threshold", model.PhotoSizeWarnThreshold))
	}

	s.pushUndo()

	replaced := false
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o
			replaced = true
			break
		}
	}
	if !replaced {
		s.orders = append(s.orders, o)
	}

	metrics.OrdersSavedTotal.Inc()
	metrics.OrdersInCollection.Set(float64(len(s.orders)))
	s.log.Debug("order saved",
		zap.String("order_id", o.ID), zap.Bool("replaced", replaced))

	err := s.persistOrders()
	s.emitSnapshot()
	return err
}

// DeleteOrder removes the matching order. A missing ID is a successful
// no-op, not an error.
func (s *Store) DeleteOrder(id string) error {
	s.pushUndo()

	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			break
		}
	}

	metrics.OrdersDeletedTotal.Inc()
	metrics.OrdersInCollection.Set(float64(len(s.orders)))
	s.log.Debug("order deleted", zap.String("order_id", id))

	err := s.persistOrders()
	s.emitSnapshot()
	return err
}

// Undo restores the most recent snapshot from the undo stack, moving the
// current collection onto the redo stack. No-op when the stack is empty.
func (s *Store) Undo() error {
	if len(s.undoStack) == 0 {
		return nil
	}

	s.redoStack = append(s.redoStack, model.CloneOrders(s.orders))
	last := len(s.undoStack) - 1
	s.orders = s.undoStack[last]
	s.undoStack = s.undoStack[:last]

	metrics.HistoryRestoresTotal.WithLabelValues("undo").Inc()
	metrics.OrdersInCollection.Set(float64(len(s.orders)))
	return s.persistOrders()
}

// Redo is symmetric to Undo.
func (s *Store) Redo() error {
	if len(s.redoStack) == 0 {
		return nil
	}

	s.undoStack = append(s.undoStack, model.CloneOrders(s.orders))
	last := len(s.redoStack) - 1
	s.orders = s.redoStack[last]
	s.redoStack = s.redoStack[:last]

	metrics.HistoryRestoresTotal.WithLabelValues("redo").Inc()
	metrics.OrdersInCollection.Set(float64(len(s.orders)))
	return s.persistOrders()
}

// CanUndo reports whether an undo snapshot is available.
func (s *Store) CanUndo() bool { return len(s.undoStack) > 0 }

// CanRedo reports whether a redo snapshot is available.
func (s *Store) CanRedo() bool { return len(s.redoStack) > 0 }

// Import replaces the collection with decoded interchange data. Malformed
// or unrecognized input is rejected wholesale: the method reports false and
// the current collection is untouched. Persistence trouble after a
// successful decode is logged, not surfaced; the in-memory import stands.
func (s *Store) Import(raw []byte) bool {
	orders, err := codec.Decode(raw)
	if err != nil {
		metrics.ImportsRejectedTotal.Inc()
		s.log.Warn("import rejected", zap.Error(err))
		return false
	}

	s.pushUndo()
	s.orders = orders

	metrics.OrdersInCollection.Set(float64(len(s.orders)))
	s.log.Info("collection imported", zap.Int("orders", len(orders)))

	if err := s.persistOrders(); err != nil {
		s.log.Warn("imported collection not persisted", zap.Error(err))
	}
	return true
}

// Export encodes the full bundle: user, collection and settings.
func (s *Store) Export() ([]byte, error) {
	return codec.Encode(codec.Bundle{
		User:   s.user,
		Orders: model.CloneOrders(s.orders),
		Settings: codec.Settings{
			Lang:         s.settings.Lang,
			Theme:        s.settings.Theme,
			ReminderDays: s.settings.ReminderDays,
			Autosave:     s.settings.Autosave,
		},
	})
}

// ResetAll wipes the collection, both history stacks, identity, settings
// and every persisted key. It is irreversible and not itself undoable.
func (s *Store) ResetAll() error {
	s.orders = nil
	s.undoStack = nil
	s.redoStack = nil
	s.user = ""
	s.pinHash = ""
	s.settings = DefaultSettings()

	metrics.OrdersInCollection.Set(0)
	s.log.Info("all data reset")

	var firstErr error
	for _, key := range kvstore.AllKeys {
		if err := s.kv.Delete(key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to erase %q: %w", key, err)
		}
	}
	return firstErr
}

// Orders returns a read-only snapshot of the current collection.
func (s *Store) Orders() []model.Order {
	return model.CloneOrders(s.orders)
}

// ErrNotFound is returned by Order for unknown IDs.
var ErrNotFound = errors.New("order not found")

// Order returns a copy of a single order by ID.
func (s *Store) Order(id string) (model.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			if o.Photos != nil {
				photos := make([]string, len(o.Photos))
				copy(photos, o.Photos)
				o.Photos = photos
			}
			return o, nil
		}
	}
	return model.Order{}, ErrNotFound
}
