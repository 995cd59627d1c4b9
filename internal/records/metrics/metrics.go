package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RecordsCreated *prometheus.CounterVec
	StatusUpdates  *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_records_created_total",
			Help: "Donations and requests created, by kind",
		}, []string{"kind"}),
		StatusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_record_status_updates_total",
			Help: "Record status updates, by kind and result",
		}, []string{"kind", "result"}),
	}
}

func (m *Metrics) IncCreated(kind string) {
	if m == nil {
		return
	}
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncStatusUpdate(kind, result string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(kind, result).Inc()
}
