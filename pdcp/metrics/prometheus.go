// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder is the client_golang-backed Recorder implementation.
// Construct one per process (or per registry) and share it across every
// pdcp.Entity; rb_id is carried as a label, not a separate collector.
type PrometheusRecorder struct {
	pdusSent      *prometheus.CounterVec
	pdusDropped   *prometheus.CounterVec
	sdusDelivered *prometheus.CounterVec
	bufferedBytes *prometheus.GaugeVec
	timerExpired  *prometheus.CounterVec
}

// NewPrometheusRecorder registers the PDCP collector family with reg and
// returns a Recorder backed by it.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	return &PrometheusRecorder{
		pdusSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pdcp_pdus_sent_total",
			Help: "Total PDCP PDUs emitted by RecvSDU, by radio bearer id.",
		}, []string{"rb_id"}),
		pdusDropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pdcp_pdus_dropped_total",
			Help: "Total inbound PDCP PDUs dropped, by radio bearer id and reason.",
		}, []string{"rb_id", "reason"}),
		sdusDelivered: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pdcp_sdus_delivered_total",
			Help: "Total SDUs delivered upward, by radio bearer id.",
		}, []string{"rb_id"}),
		bufferedBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "pdcp_rx_buffered_bytes",
			Help: "Current bytes buffered in the receive pending list (rx_size), by radio bearer id.",
		}, []string{"rb_id"}),
		timerExpired: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "pdcp_reordering_timer_expirations_total",
			Help: "Total t-Reordering expirations, by radio bearer id.",
		}, []string{"rb_id"}),
	}
}

func label(rbID uint32) string { return strconv.FormatUint(uint64(rbID), 10) }

func (m *PrometheusRecorder) PDUSent(rbID uint32) {
	m.pdusSent.WithLabelValues(label(rbID)).Inc()
}

func (m *PrometheusRecorder) PDUDropped(rbID uint32, reason string) {
	m.pdusDropped.WithLabelValues(label(rbID), reason).Inc()
}

func (m *PrometheusRecorder) SDUDelivered(rbID uint32) {
	m.sdusDelivered.WithLabelValues(label(rbID)).Inc()
}

func (m *PrometheusRecorder) BufferedBytes(rbID uint32, n int) {
	m.bufferedBytes.WithLabelValues(label(rbID)).Set(float64(n))
}

func (m *PrometheusRecorder) TimerExpired(rbID uint32) {
	m.timerExpired.WithLabelValues(label(rbID)).Inc()
}
