package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks account lifecycle events.
type Metrics struct {
	RegistrationsTotal *prometheus.CounterVec
	LoginsTotal        *prometheus.CounterVec
	LogoutsTotal       prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_registrations_total",
			Help: "Accounts registered, by role",
		}, []string{"role"}),
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "redhope_logins_total",
			Help: "Login attempts, by role and result",
		}, []string{"role", "result"}),
		LogoutsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "redhope_logouts_total",
			Help: "Tokens revoked through logout",
		}),
	}
}

func (m *Metrics) IncRegistration(role string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(role).Inc()
}

// IncLogin records a login attempt; result is "success" or "failure".
func (m *Metrics) IncLogin(role, result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(role, result).Inc()
}

func (m *Metrics) IncLogout() {
	if m == nil {
		return
	}
	m.LogoutsTotal.Inc()
}
