package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"innkeep/pkg/kafka"
)

// Metrics holds Kafka producer metrics
type Metrics struct {
	MessagesPublished       int64
	MessagesPublishedFailed int64
	PublishDurationTotal    int64 // Nanoseconds
}

// Global metrics instance
var globalMetrics = &Metrics{}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.MessagesPublished, 0)
	atomic.StoreInt64(&m.MessagesPublishedFailed, 0)
	atomic.StoreInt64(&m.PublishDurationTotal, 0)
}

// GetPublishRate returns messages published per second
func (m *Metrics) GetPublishRate(duration time.Duration) float64 {
	published := atomic.LoadInt64(&m.MessagesPublished)
	return float64(published) / duration.Seconds()
}

// GetAvgPublishDuration returns average publish duration
func (m *Metrics) GetAvgPublishDuration() time.Duration {
	published := atomic.LoadInt64(&m.MessagesPublished)
	if published == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.PublishDurationTotal)
	return time.Duration(total / published)
}

// MetricsProducerMiddleware tracks producer metrics
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		duration := time.Since(start)
		atomic.AddInt64(&globalMetrics.PublishDurationTotal, int64(duration))

		if err != nil {
			atomic.AddInt64(&globalMetrics.MessagesPublishedFailed, 1)
		} else {
			atomic.AddInt64(&globalMetrics.MessagesPublished, 1)
		}

		return err
	}
}
