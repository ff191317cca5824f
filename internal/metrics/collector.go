// Package metrics exposes ACP codec operations as Prometheus metrics,
// retargeted from the teacher's BFD session/peer labels
// (internal/metrics/collector.go) to ACP sessions and frame types.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "acpctl"
	subsystem = "codec"
)

const (
	labelFrameType = "frame_type"
	labelKeyID     = "key_id"
)

// Collector holds all ACP codec Prometheus metrics.
//
//   - FramesEncoded/FramesDecoded track successful codec operations per
//     frame type.
//   - AuthFailures and ReplayRejections flag potential security issues
//     (RFC 2104 HMAC mismatch, sliding-window replay) per key ID.
//   - CRCMismatches flags link-level corruption independent of
//     authentication.
//   - ReplayWindowUtilisation gauges how full each session's 64-bit
//     replay window is, as a fraction in [0,1].
type Collector struct {
	// FramesEncoded counts successfully encoded frames, labeled by type.
	FramesEncoded *prometheus.CounterVec

	// FramesDecoded counts successfully decoded frames, labeled by type.
	FramesDecoded *prometheus.CounterVec

	// AuthFailures counts HMAC verification failures per key ID.
	AuthFailures *prometheus.CounterVec

	// ReplayRejections counts sequence numbers rejected by the sliding
	// replay window per key ID.
	ReplayRejections *prometheus.CounterVec

	// CRCMismatches counts CRC-16 verification failures, labeled by
	// type (CRC failures are detected before authentication state is
	// known).
	CRCMismatches *prometheus.CounterVec

	// ReplayWindowUtilisation gauges the fraction of each session's
	// 64-bit replay window bitmap currently set, per key ID.
	ReplayWindowUtilisation *prometheus.GaugeVec
}

// NewCollector creates a Collector with all ACP metrics registered
// against reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.FramesEncoded,
		c.FramesDecoded,
		c.AuthFailures,
		c.ReplayRejections,
		c.CRCMismatches,
		c.ReplayWindowUtilisation,
	)

	return c
}

func newMetrics() *Collector {
	typeLabels := []string{labelFrameType}
	keyLabels := []string{labelKeyID}

	return &Collector{
		FramesEncoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_encoded_total",
			Help:      "Total ACP frames successfully encoded, by frame type.",
		}, typeLabels),

		FramesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "frames_decoded_total",
			Help:      "Total ACP frames successfully decoded, by frame type.",
		}, typeLabels),

		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Total HMAC verification failures, by key ID.",
		}, keyLabels),

		ReplayRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replay_rejections_total",
			Help:      "Total sequence numbers rejected by the sliding replay window, by key ID.",
		}, keyLabels),

		CRCMismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "crc_mismatches_total",
			Help:      "Total CRC-16 verification failures, by frame type.",
		}, typeLabels),

		ReplayWindowUtilisation: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replay_window_utilisation",
			Help:      "Fraction of the 64-bit replay window bitmap currently set, by key ID.",
		}, keyLabels),
	}
}

// IncFramesEncoded increments the encoded-frame counter for frameType.
func (c *Collector) IncFramesEncoded(frameType string) {
	c.FramesEncoded.WithLabelValues(frameType).Inc()
}

// IncFramesDecoded increments the decoded-frame counter for frameType.
func (c *Collector) IncFramesDecoded(frameType string) {
	c.FramesDecoded.WithLabelValues(frameType).Inc()
}

// IncAuthFailures increments the auth-failure counter for keyID.
func (c *Collector) IncAuthFailures(keyID string) {
	c.AuthFailures.WithLabelValues(keyID).Inc()
}

// IncReplayRejections increments the replay-rejection counter for keyID.
func (c *Collector) IncReplayRejections(keyID string) {
	c.ReplayRejections.WithLabelValues(keyID).Inc()
}

// IncCRCMismatches increments the CRC-mismatch counter for frameType.
func (c *Collector) IncCRCMismatches(frameType string) {
	c.CRCMismatches.WithLabelValues(frameType).Inc()
}

// SetReplayWindowUtilisation records the current replay-window fill
// fraction (set bits / 64) for keyID.
func (c *Collector) SetReplayWindowUtilisation(keyID string, fraction float64) {
	c.ReplayWindowUtilisation.WithLabelValues(keyID).Set(fraction)
}
