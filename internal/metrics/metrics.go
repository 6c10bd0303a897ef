package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_orders_created_total",
		Help: "Total number of orders successfully created.",
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_transitions_total",
		Help: "Total number of applied status transitions, by target status.",
	},
		[]string{"to_status"},
	)

	TransitionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_transitions_rejected_total",
		Help: "Total number of transition requests rejected by validation.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderflow_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	NotificationsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderflow_notifications_dropped_total",
		Help: "Status-change notifications dropped because the queue was full or the sink failed.",
	})

	OrderCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderflow_order_cache_items",
		Help: "Current number of items in the active-order cache.",
	})
)
