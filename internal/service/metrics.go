package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sellsTotal counts processed sell lines by outcome status.
	sellsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sells_total",
			Help: "Total number of processed sell lines by outcome status",
		},
		[]string{"status"},
	)

	// unitsSoldTotal counts units across all committed sell lines.
	unitsSoldTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_units_sold_total",
			Help: "Total number of units sold across committed sell lines",
		},
	)

	// stockDepletionsTotal counts stock rows removed because a sale drained them.
	stockDepletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_stock_depletions_total",
			Help: "Total number of stock items deleted after selling out",
		},
	)
)
