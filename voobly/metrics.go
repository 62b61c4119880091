/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports request and cache counters. A nil *Metrics records
// nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "voobly_requests_total",
				Help: "Total number of requests sent to voobly",
			},
			[]string{"endpoint"},
		),
		cacheHits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "voobly_cache_hits_total",
				Help: "Total number of requests served from cache",
			},
			[]string{"endpoint"},
		),
		cacheMisses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "voobly_cache_misses_total",
				Help: "Total number of cache lookups that found nothing valid",
			},
			[]string{"endpoint"},
		),
		errors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "voobly_errors_total",
				Help: "Total number of failed requests by error kind",
			},
			[]string{"endpoint", "kind"},
		),
	}
}

func (m *Metrics) recordRequest(ep Endpoint) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(ep.Name).Inc()
}

func (m *Metrics) recordCacheHit(ep Endpoint) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(ep.Name).Inc()
}

func (m *Metrics) recordCacheMiss(ep Endpoint) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(ep.Name).Inc()
}

func (m *Metrics) recordError(ep Endpoint, err error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(ep.Name, KindOf(err).String()).Inc()
}
