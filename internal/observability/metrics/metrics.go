package metrics

import "github.com/prometheus/client_golang/prometheus"

// DeliveryMetrics exposes counters for the booking notification flow.
type DeliveryMetrics struct {
	bookingsTotal *prometheus.CounterVec
	outcomesTotal *prometheus.CounterVec
	sendsTotal    *prometheus.CounterVec
}

func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	m := &DeliveryMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "received_total",
			Help:      "Total booking submissions by validation status",
		}, []string{"status"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "notify",
			Name:      "delivery_outcomes_total",
			Help:      "Final delivery outcomes per booking",
		}, []string{"outcome"}),
		sendsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "notify",
			Name:      "channel_sends_total",
			Help:      "Individual channel send attempts",
		}, []string{"channel", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.outcomesTotal, m.sendsTotal)
	return m
}

func (m *DeliveryMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *DeliveryMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome).Inc()
}

func (m *DeliveryMetrics) ObserveSend(channel, result string) {
	if m == nil {
		return
	}
	m.sendsTotal.WithLabelValues(channel, result).Inc()
}
