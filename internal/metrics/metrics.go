package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonenum_operations_total",
			Help: "Bridge operations by name and outcome",
		},
		[]string{"op", "outcome"}, // parse|parse_list|format|validate|regions , ok|invalid_parameters|invalid_number
	)

	CarrierLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonenum_carrier_lookups_total",
			Help: "Carrier region lookups by answer source",
		},
		[]string{"source"}, // provider|fallback|failed
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonenum_jobs_total",
			Help: "Normalization jobs lifecycle counter",
		},
		[]string{"stage"}, // queued|done|failed
	)

	NumbersNormalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonenum_numbers_normalized_total",
			Help: "Numbers processed by the normalizer worker",
		},
		[]string{"outcome"}, // valid|invalid
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		OperationsTotal,
		CarrierLookups,
		JobsTotal,
		NumbersNormalized,
	)
}
