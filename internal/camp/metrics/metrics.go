package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CampsCreated   prometheus.Counter
	Enrollments    *prometheus.CounterVec
	Fulfillments   *prometheus.CounterVec
	UnitsCollected prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CampsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "redhope_camps_created_total",
			Help: "Camps scheduled by banks",
		}),
		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_camp_enrollments_total",
			Help: "Camp enroll calls, by result (added, duplicate, error)",
		}, []string{"result"}),
		Fulfillments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_camp_fulfillments_total",
			Help: "Camp fulfill calls, by result (fulfilled, noop, error)",
		}, []string{"result"}),
		UnitsCollected: f.NewCounter(prometheus.CounterOpts{
			Name: "redhope_camp_units_collected_total",
			Help: "Units recorded against fulfilled camp donors",
		}),
	}
}

func (m *Metrics) IncCampCreated() {
	if m == nil {
		return
	}
	m.CampsCreated.Inc()
}

func (m *Metrics) IncEnrollment(result string) {
	if m == nil {
		return
	}
	m.Enrollments.WithLabelValues(result).Inc()
}

func (m *Metrics) IncFulfillment(result string, units int) {
	if m == nil {
		return
	}
	m.Fulfillments.WithLabelValues(result).Inc()
	if result == "fulfilled" {
		m.UnitsCollected.Add(float64(units))
	}
}
