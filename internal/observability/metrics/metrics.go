package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for the order bot's message flow.
type BotMetrics struct {
	inboundTotal      *prometheus.CounterVec
	outboundTotal     *prometheus.CounterVec
	completionTotal   *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
	ordersClosed      prometheus.Counter
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pizzeria",
			Subsystem: "messaging",
			Name:      "inbound_total",
			Help:      "Total inbound channel events by disposition",
		}, []string{"disposition"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pizzeria",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound gateway sends",
		}, []string{"status"}),
		completionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pizzeria",
			Subsystem: "conversation",
			Name:      "completion_total",
			Help:      "Total conversation turns processed",
		}, []string{"status"}),
		completionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pizzeria",
			Subsystem: "conversation",
			Name:      "completion_latency_seconds",
			Help:      "Latency of processing one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		ordersClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pizzeria",
			Subsystem: "conversation",
			Name:      "orders_closed_total",
			Help:      "Total conversations closed with a finished order",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal, m.completionTotal, m.completionLatency, m.ordersClosed)
	return m
}

// ObserveInbound counts one inbound event: accepted, ignored_empty, or ignored_group.
func (m *BotMetrics) ObserveInbound(disposition string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(disposition).Inc()
}

func (m *BotMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveCompletion(status string, seconds float64) {
	if m == nil {
		return
	}
	m.completionTotal.WithLabelValues(status).Inc()
	m.completionLatency.WithLabelValues(status).Observe(seconds)
}

func (m *BotMetrics) ObserveOrderClosed() {
	if m == nil {
		return
	}
	m.ordersClosed.Inc()
}
