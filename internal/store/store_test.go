package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/ksagna/import-tracker/internal/kvstore"
	mock_kvstore "github.com/ksagna/import-tracker/internal/kvstore/mocks"
	"github.com/ksagna/import-tracker/internal/model"
)

func newTestStore(t *testing.T) (*Store, *kvstore.Memory) {
	t.Helper()
	kv := kvstore.NewMemory()
	st, err := New(kv, zap.NewNop())
	require.NoError(t, err)
	return st, kv
}

func order(id, client string, createdAt int64) model.Order {
	return model.Order{
		ID:        id,
		Client:    client,
		Transport: model.TransportAir,
		Status:    model.StatusOrdered,
		DateOrder: "2025-06-01",
		CreatedAt: createdAt,
	}
}

func TestStore_SaveOrder(t *testing.T) {
	t.Run("creates when id is unknown", func(t *testing.T) {
		st, _ := newTestStore(t)

		err := st.SaveOrder(order("order-1", "Awa", 1))

		assert.NoError(t, err)
		assert.Len(t, st.Orders(), 1)
	})

	t.Run("replaces entirely when id matches", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))

		updated := order("order-1", "Fatou", 1)
		updated.Review = "ok"
		require.NoError(t, st.SaveOrder(updated))

		orders := st.Orders()
		assert.Len(t, orders, 1)
		assert.Equal(t, "Fatou", orders[0].Client)
		assert.Equal(t, "ok", orders[0].Review)
	})

	t.Run("recomputes profit from prices", func(t *testing.T) {
		st, _ := newTestStore(t)

		o := order("order-1", "Awa", 1)
		o.RealPrice = 1000
		o.ClientPrice = 1500
		o.Profit = 999999 // stale caller value must be ignored
		require.NoError(t, st.SaveOrder(o))
		assert.Equal(t, int64(500), st.Orders()[0].Profit)

		o = st.Orders()[0]
		o.RealPrice = 1600
		require.NoError(t, st.SaveOrder(o))
		assert.Equal(t, int64(-100), st.Orders()[0].Profit)
	})

	t.Run("accepts malformed orders as-is", func(t *testing.T) {
		st, _ := newTestStore(t)

		err := st.SaveOrder(model.Order{ID: "order-1"})

		assert.NoError(t, err)
		assert.Empty(t, st.Orders()[0].Client)
	})

	t.Run("persists the collection", func(t *testing.T) {
		st, kv := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))

		reopened, err := New(kv, zap.NewNop())
		require.NoError(t, err)
		assert.Len(t, reopened.Orders(), 1)
		assert.Equal(t, "Awa", reopened.Orders()[0].Client)
	})
}

func TestStore_DeleteOrder(t *testing.T) {
	t.Run("removes a matching order", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))
		require.NoError(t, st.SaveOrder(order("order-2", "Fatou", 2)))

		require.NoError(t, st.DeleteOrder("order-1"))

		orders := st.Orders()
		assert.Len(t, orders, 1)
		assert.Equal(t, "order-2", orders[0].ID)
	})

	t.Run("missing id is a successful no-op", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))

		err := st.DeleteOrder("no-such-order")

		assert.NoError(t, err)
		assert.Len(t, st.Orders(), 1)
	})
}

func TestStore_UndoRedo(t *testing.T) {
	t.Run("undo then redo restores both endpoints exactly", func(t *testing.T) {
		st, _ := newTestStore(t)

		const n = 10
		for i := 0; i < n; i++ {
			require.NoError(t, st.SaveOrder(order(fmt.Sprintf("order-%d", i), "Awa", int64(i))))
		}
		after := st.Orders()

		for i := 0; i < n; i++ {
			require.NoError(t, st.Undo())
		}
		assert.Empty(t, st.Orders())
		assert.False(t, st.CanUndo())

		for i := 0; i < n; i++ {
			require.NoError(t, st.Redo())
		}
		assert.Equal(t, after, st.Orders())
		assert.False(t, st.CanRedo())
	})

	t.Run("undo on empty stack is a no-op", func(t *testing.T) {
		st, _ := newTestStore(t)

		assert.NoError(t, st.Undo())
		assert.NoError(t, st.Redo())
		assert.False(t, st.CanUndo())
		assert.False(t, st.CanRedo())
	})

	t.Run("new mutation clears the redo stack", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))
		require.NoError(t, st.SaveOrder(order("order-2", "Fatou", 2)))

		require.NoError(t, st.Undo())
		assert.True(t, st.CanRedo())

		require.NoError(t, st.SaveOrder(order("order-3", "Aminata", 3)))
		assert.False(t, st.CanRedo())

		before := st.Orders()
		require.NoError(t, st.Redo())
		assert.Equal(t, before, st.Orders())
	})

	t.Run("history is capped at 50 snapshots", func(t *testing.T) {
		st, _ := newTestStore(t)

		for i := 0; i < 60; i++ {
			require.NoError(t, st.SaveOrder(order(fmt.Sprintf("order-%d", i), "Awa", int64(i))))
		}

		restores := 0
		for st.CanUndo() {
			require.NoError(t, st.Undo())
			restores++
		}
		assert.Equal(t, 50, restores)
		// The oldest reachable state still holds the first ten orders.
		assert.Len(t, st.Orders(), 10)
	})

	t.Run("undo restores the pre-delete order content", func(t *testing.T) {
		st, _ := newTestStore(t)
		o := order("order-1", "Awa", 1)
		o.Photos = []string{"data:image/png;base64,AAA"}
		require.NoError(t, st.SaveOrder(o))

		require.NoError(t, st.DeleteOrder("order-1"))
		require.NoError(t, st.Undo())

		orders := st.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, []string{"data:image/png;base64,AAA"}, orders[0].Photos)
	})
}

func TestStore_Import(t *testing.T) {
	t.Run("accepts a bare order list", func(t *testing.T) {
		st, _ := newTestStore(t)

		ok := st.Import([]byte(`[{"id":"order-1","client":"Awa"}]`))

		assert.True(t, ok)
		assert.Len(t, st.Orders(), 1)
	})

	t.Run("accepts a bundle with an orders field", func(t *testing.T) {
		st, _ := newTestStore(t)

		ok := st.Import([]byte(`{"user":"Awa","orders":[{"id":"order-1"}],"settings":{"lang":"fr"}}`))

		assert.True(t, ok)
		assert.Len(t, st.Orders(), 1)
	})

	t.Run("rejects an object without orders and keeps state", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))
		before := st.Orders()

		assert.False(t, st.Import([]byte(`{"settings":{"lang":"fr"}}`)))
		assert.False(t, st.Import([]byte(`"not a backup"`)))
		assert.False(t, st.Import([]byte(`{invalid json`)))

		assert.Equal(t, before, st.Orders())
	})

	t.Run("import is undoable", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))

		require.True(t, st.Import([]byte(`[]`)))
		assert.Empty(t, st.Orders())

		require.NoError(t, st.Undo())
		assert.Len(t, st.Orders(), 1)
	})
}

func TestStore_ResetAll(t *testing.T) {
	st, kv := newTestStore(t)
	require.NoError(t, st.CompleteOnboarding("Awa", "1234", 5))
	require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))
	require.NoError(t, st.SetTheme("light"))

	require.NoError(t, st.ResetAll())

	assert.Empty(t, st.Orders())
	assert.False(t, st.CanUndo())
	assert.False(t, st.CanRedo())
	assert.False(t, st.Onboarded())
	assert.Equal(t, DefaultSettings(), st.Settings())
	assert.Zero(t, kv.Len())
}

func TestStore_Identity(t *testing.T) {
	t.Run("onboarding stores name, pin and threshold", func(t *testing.T) {
		st, kv := newTestStore(t)

		require.NoError(t, st.CompleteOnboarding("Awa", "1234", 5))

		assert.True(t, st.Onboarded())
		assert.Equal(t, "Awa", st.User())
		assert.Equal(t, 5, st.Settings().ReminderDays)
		assert.True(t, st.ValidatePIN("1234"))
		assert.False(t, st.ValidatePIN("0000"))

		// The digest is one-way: the raw PIN never hits the adapter.
		digest, ok, err := kv.Get(kvstore.KeyPIN)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotContains(t, digest, "1234")
	})

	t.Run("pin change requires the old pin", func(t *testing.T) {
		st, _ := newTestStore(t)
		require.NoError(t, st.CompleteOnboarding("Awa", "1234", 3))

		assert.False(t, st.UpdatePIN("9999", "5678"))
		assert.True(t, st.ValidatePIN("1234"))

		assert.True(t, st.UpdatePIN("1234", "5678"))
		assert.True(t, st.ValidatePIN("5678"))
		assert.False(t, st.ValidatePIN("1234"))
	})

	t.Run("no pin set means no access", func(t *testing.T) {
		st, _ := newTestStore(t)
		assert.False(t, st.ValidatePIN(""))
	})
}

func TestStore_Settings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		st, _ := newTestStore(t)
		assert.Equal(t, Settings{Lang: "fr", Theme: "dark", ReminderDays: 3, Autosave: true}, st.Settings())
	})

	t.Run("survive a reopen", func(t *testing.T) {
		st, kv := newTestStore(t)
		require.NoError(t, st.SetLanguage("en"))
		require.NoError(t, st.SetTheme("light"))
		require.NoError(t, st.SetReminderDays(7))
		require.NoError(t, st.SetAutosave(false))

		reopened, err := New(kv, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, Settings{Lang: "en", Theme: "light", ReminderDays: 7, Autosave: false}, reopened.Settings())
	})
}

type recordingNotifier struct {
	snapshots [][]model.Order
}

func (r *recordingNotifier) Notify(orders []model.Order) {
	r.snapshots = append(r.snapshots, orders)
}

func TestStore_AutosaveEmission(t *testing.T) {
	t.Run("mutations emit a snapshot when autosave is on", func(t *testing.T) {
		notifier := &recordingNotifier{}
		st, err := New(kvstore.NewMemory(), zap.NewNop(), WithNotifier(notifier))
		require.NoError(t, err)

		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))
		require.NoError(t, st.DeleteOrder("order-1"))

		require.Len(t, notifier.snapshots, 2)
		assert.Len(t, notifier.snapshots[0], 1)
		assert.Empty(t, notifier.snapshots[1])
	})

	t.Run("silent when autosave is off", func(t *testing.T) {
		notifier := &recordingNotifier{}
		st, err := New(kvstore.NewMemory(), zap.NewNop(), WithNotifier(notifier))
		require.NoError(t, err)
		require.NoError(t, st.SetAutosave(false))

		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))

		assert.Empty(t, notifier.snapshots)
	})

	t.Run("undo does not emit", func(t *testing.T) {
		notifier := &recordingNotifier{}
		st, err := New(kvstore.NewMemory(), zap.NewNop(), WithNotifier(notifier))
		require.NoError(t, err)

		require.NoError(t, st.SaveOrder(order("order-1", "Awa", 1)))
		require.NoError(t, st.Undo())

		assert.Len(t, notifier.snapshots, 1)
	})
}

func TestStore_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockKV := mock_kvstore.NewMockKV(ctrl)
	mockKV.EXPECT().Get(gomock.Any()).Return("", false, nil).AnyTimes()

	st, err := New(mockKV, zap.NewNop())
	require.NoError(t, err)

	t.Run("save surfaces the adapter error but keeps state", func(t *testing.T) {
		expected := errors.New("disk full")
		mockKV.EXPECT().Set(kvstore.KeyOrders, gomock.Any()).Return(expected)

		err := st.SaveOrder(order("order-1", "Awa", 1))

		assert.ErrorIs(t, err, expected)
		assert.Len(t, st.Orders(), 1)
	})

	t.Run("undo surfaces the adapter error but restores state", func(t *testing.T) {
		expected := errors.New("disk full")
		mockKV.EXPECT().Set(kvstore.KeyOrders, gomock.Any()).Return(expected)

		err := st.Undo()

		assert.ErrorIs(t, err, expected)
		assert.Empty(t, st.Orders())
	})
}

func TestStore_CorruptPersistedOrders(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(kvstore.KeyOrders, "{not json"))

	st, err := New(kv, zap.NewNop())

	require.NoError(t, err)
	assert.Empty(t, st.Orders())
}

func TestStore_OrdersReturnsACopy(t *testing.T) {
	st, _ := newTestStore(t)
	o := order("order-1", "Awa", 1)
	o.Photos = []string{"data:image/png;base64,AAA"}
	require.NoError(t, st.SaveOrder(o))

	snapshot := st.Orders()
	snapshot[0].Client = "mutated"
	snapshot[0].Photos[0] = "mutated"

	fresh := st.Orders()
	assert.Equal(t, "Awa", fresh[0].Client)
	assert.Equal(t, "data:image/png;base64,AAA", fresh[0].Photos[0])
}
