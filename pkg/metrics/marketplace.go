package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_orders_created_total",
		Help: "Total number of orders created at checkout",
	})

	OrderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_order_transitions_total",
		Help: "Order status transitions applied",
	}, []string{"role", "from", "to"})

	OrderTransitionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_order_transitions_rejected_total",
		Help: "Order status transitions rejected",
	}, []string{"role", "reason"})

	Spins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_spins_total",
		Help: "Spin wheel attempts by result percentage",
	}, []string{"result"})

	DiscountCodesUsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_discount_codes_used_total",
		Help: "Discount codes consumed at checkout",
	})
)

func Init() {
	prometheus.MustRegister(
		OrdersCreated,
		OrderTransitions,
		OrderTransitionsRejected,
		Spins,
		DiscountCodesUsed,
	)
}
