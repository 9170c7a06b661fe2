package telemetry

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecorderAccumulates(t *testing.T) {
	r := NewRecorder()
	r.Count("press.published", 1)
	r.Count("press.published", 2)
	r.Gauge("queue.depth", 4)
	r.Gauge("queue.depth", 7)
	r.Latency("digest", 50*time.Millisecond)
	r.Latency("digest", 80*time.Millisecond)

	assert.Equal(t, 3, r.CountOf("press.published"))
	assert.Zero(t, r.CountOf("never.seen"))
	assert.Equal(t, 7.0, r.Gauges["queue.depth"])
	assert.Len(t, r.Latencies["digest"], 2)
}

func TestLogSinkEmitsStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewLogSink(logger)

	s.Count("orders.resolved", 2)
	s.Gauge("roster.size", 24)
	s.Latency("digest", 10*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "metric.count")
	assert.Contains(t, out, "orders.resolved")
	assert.Contains(t, out, "metric.gauge")
	assert.Contains(t, out, "metric.latency")
}
