package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

func TestMetricsServiceObserveGeneration(t *testing.T) {
	metrics := NewMetricsService()

	metrics.ObserveGeneration(&scheduler.Result{
		Classes:  make([]models.ScheduledClass, 5),
		Unplaced: []scheduler.Unplaced{},
	}, 20*time.Millisecond)
	metrics.ObserveGeneration(&scheduler.Result{
		Classes: make([]models.ScheduledClass, 2),
		Unplaced: []scheduler.Unplaced{
			{CourseID: 1, Reason: scheduler.ReasonNoFreeSlot},
			{CourseID: 2, Reason: scheduler.ReasonNoSuitableRoom},
			{CourseID: 3, Reason: scheduler.ReasonNoFreeSlot},
		},
	}, 10*time.Millisecond)
	metrics.ObserveGeneration(nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues(GenerationOutcomeComplete)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues(GenerationOutcomePartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runsTotal.WithLabelValues(GenerationOutcomeFailed)))
	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.classesEmitted))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.unplacedTotal.WithLabelValues(string(scheduler.ReasonNoFreeSlot))))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.unplacedTotal.WithLabelValues(string(scheduler.ReasonNoSuitableRoom))))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(3), snapshot.GenerationRuns)
	assert.Equal(t, uint64(7), snapshot.ClassesEmitted)
}

func TestMetricsServiceCacheRatio(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snapshot.CacheHitRatio, 1e-9)
}

func TestMetricsServiceNilReceiver(t *testing.T) {
	var metrics *MetricsService
	assert.NotPanics(t, func() {
		metrics.ObserveGeneration(nil, time.Second)
		metrics.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)
		metrics.RecordCacheOperation(true, time.Millisecond)
		metrics.ObserveCacheWrite(time.Millisecond)
	})
	assert.Equal(t, MetricsSnapshot{}, metrics.Snapshot())
}
