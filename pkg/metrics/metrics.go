package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thrift",
		Name:      "order_transitions_total",
		Help:      "Order status changes committed, by source and target status.",
	}, []string{"from", "to"})

	CheckoutRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "thrift",
		Name:      "checkout_rejections_total",
		Help:      "Checkouts refused because a product was no longer available.",
	})

	InventoryRestores = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "thrift",
		Name:      "inventory_restores_total",
		Help:      "Products returned to the market after a cancellation.",
	})

	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thrift",
		Name:      "notifications_emitted_total",
		Help:      "Notification writes, by type and result.",
	}, []string{"type", "result"})

	RealtimeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "thrift",
		Name:      "realtime_subscribers",
		Help:      "Open change-feed websocket subscriptions.",
	})
)
