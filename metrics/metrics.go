/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics instruments data stores with Prometheus collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suparena/persistence/datastore"
	"github.com/suparena/persistence/errors"
)

// Outcome label values besides the storage error kinds
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
)

// Metrics holds the collectors shared by every instrumented store
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Entities   *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "persistence",
			Name:      "store_operations_total",
			Help:      "Data store operations by store, operation and outcome.",
		}, []string{"store", "op", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "persistence",
			Name:      "store_operation_duration_seconds",
			Help:      "Data store operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "op"}),
		Entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "persistence",
			Name:      "store_entities",
			Help:      "Entities returned by the last load or written by the last save.",
		}, []string{"store"}),
	}

	for _, c := range []prometheus.Collector{m.Operations, m.Duration, m.Entities} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(store, op string, started time.Time, entities int, err error) {
	m.Duration.WithLabelValues(store, op).Observe(time.Since(started).Seconds())
	m.Operations.WithLabelValues(store, op, outcome(err)).Inc()
	if err == nil {
		m.Entities.WithLabelValues(store).Set(float64(entities))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.IsValidationError(err):
		return OutcomeInvalid
	}
	return errors.KindOf(err).String()
}

// Store wraps a DataStore and records every call
type Store[T any] struct {
	next    datastore.DataStore[T]
	name    string
	metrics *Metrics
}

var _ datastore.DataStore[any] = (*Store[any])(nil)

// Instrument wraps next. name becomes the "store" label.
func Instrument[T any](next datastore.DataStore[T], name string, m *Metrics) *Store[T] {
	return &Store[T]{next: next, name: name, metrics: m}
}

func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	started := time.Now()
	entities, err := s.next.Load(ctx)
	s.metrics.observe(s.name, "load", started, len(entities), err)
	return entities, err
}

func (s *Store[T]) Save(ctx context.Context, entities []T) (int, error) {
	started := time.Now()
	n, err := s.next.Save(ctx, entities)
	s.metrics.observe(s.name, "save", started, n, err)
	return n, err
}

// Location forwards to the wrapped store when it is a datastore.Describer
func (s *Store[T]) Location() string {
	if d, ok := s.next.(datastore.Describer); ok {
		return d.Location()
	}
	return ""
}

// Unwrap returns the wrapped store
func (s *Store[T]) Unwrap() datastore.DataStore[T] {
	return s.next
}
