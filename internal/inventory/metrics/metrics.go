package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks stock adjustments.
type Metrics struct {
	AdjustmentsTotal   *prometheus.CounterVec
	UnitsMoved         *prometheus.CounterVec
	AdjustmentDuration prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AdjustmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_stock_adjustments_total",
			Help: "Stock adjustments by direction and result",
		}, []string{"direction", "result"}),
		UnitsMoved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_stock_units_total",
			Help: "Units added or removed, by direction and blood group",
		}, []string{"direction", "blood_group"}),
		AdjustmentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "redhope_stock_adjustment_duration_seconds",
			Help:    "Duration of stock adjustments including the store round trip",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveAdjustment records one adjustment; result is "ok", "insufficient",
// "not_found" or "error".
func (m *Metrics) ObserveAdjustment(direction, result string, start time.Time) {
	if m == nil {
		return
	}
	m.AdjustmentsTotal.WithLabelValues(direction, result).Inc()
	m.AdjustmentDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddUnits(direction, bloodGroup string, units int) {
	if m == nil {
		return
	}
	m.UnitsMoved.WithLabelValues(direction, bloodGroup).Add(float64(units))
}
