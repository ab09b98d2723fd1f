package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importtracker_orders_saved_total",
		Help: "Total number of order create/update mutations.",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importtracker_orders_deleted_total",
		Help: "Total number of order delete mutations.",
	})

	HistoryRestoresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "importtracker_history_restores_total",
		Help: "Total number of applied undo/redo restores.",
	},
		[]string{"direction"},
	)

	ImportsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importtracker_imports_rejected_total",
		Help: "Total number of import attempts rejected as malformed.",
	})

	PhotoSizeWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importtracker_photo_size_warnings_total",
		Help: "Total number of saved orders whose photo payload exceeded the warning threshold.",
	})

	BackupsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importtracker_backups_written_total",
		Help: "Total number of backup files written by the autosave side channel.",
	})

	BackupsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importtracker_backups_dropped_total",
		Help: "Total number of autosave snapshots dropped because the writer was busy.",
	})

	OrdersInCollection = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importtracker_orders_in_collection",
		Help: "Current number of orders in the collection.",
	})
)
