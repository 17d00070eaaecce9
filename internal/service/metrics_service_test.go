package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest("GET", "/v1/class", 200, 10*time.Millisecond)
	m.ObserveClientRequest("GET", "class", 0, time.Second)
	m.ObserveClientRequest("GET", "class", 0, time.Second)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordMutation("class", "create", errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/v1/class", "200")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.clientTotal.WithLabelValues("GET", "class", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.mutations.WithLabelValues("class", "create", "error")))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, 0)
		m.ObserveClientRequest("GET", "x", 200, 0)
		m.RecordCacheOperation(false, 0)
		m.ObserveCacheWrite(0)
		m.RecordMutation("x", "delete", nil)
	})
}
