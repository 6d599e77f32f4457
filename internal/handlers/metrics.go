package handlers

import "github.com/prometheus/client_golang/prometheus"

type BosunMetrics struct {
	TunnelOperations    *prometheus.CounterVec
	ListenerOperations  *prometheus.CounterVec
	ListenersConfigured *prometheus.GaugeVec
}

func (m *BosunMetrics) IncTunnel(operation, status string) {
	if m == nil || m.TunnelOperations == nil {
		return
	}

	m.TunnelOperations.WithLabelValues(operation, status).Inc()
}

func (m *BosunMetrics) IncListener(operation, status string) {
	if m == nil || m.ListenerOperations == nil {
		return
	}

	m.ListenerOperations.WithLabelValues(operation, status).Inc()
}

func (m *BosunMetrics) SetListeners(n int) {
	if m == nil || m.ListenersConfigured == nil {
		return
	}

	m.ListenersConfigured.WithLabelValues().Set(float64(n))
}
