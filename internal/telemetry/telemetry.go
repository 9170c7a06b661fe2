// Package telemetry is the push-only metrics stream: counters, gauges,
// and latencies emitted by the engine. The default sink writes structured
// logs; tests swap in a recording sink.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sink receives typed metric events.
type Sink interface {
	Count(name string, delta int, attrs ...slog.Attr)
	Gauge(name string, value float64, attrs ...slog.Attr)
	Latency(name string, d time.Duration, attrs ...slog.Attr)
}

// LogSink emits every metric as a structured log line.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink wraps a logger; nil uses slog.Default.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Count(name string, delta int, attrs ...slog.Attr) {
	s.log.LogAttrs(context.Background(), slog.LevelDebug, "metric.count",
		append([]slog.Attr{slog.String("name", name), slog.Int("delta", delta)}, attrs...)...)
}

func (s *LogSink) Gauge(name string, value float64, attrs ...slog.Attr) {
	s.log.LogAttrs(context.Background(), slog.LevelDebug, "metric.gauge",
		append([]slog.Attr{slog.String("name", name), slog.Float64("value", value)}, attrs...)...)
}

func (s *LogSink) Latency(name string, d time.Duration, attrs ...slog.Attr) {
	s.log.LogAttrs(context.Background(), slog.LevelDebug, "metric.latency",
		append([]slog.Attr{slog.String("name", name), slog.Duration("elapsed", d)}, attrs...)...)
}

// Recorder is a test sink that keeps everything it is given.
type Recorder struct {
	mu        sync.Mutex
	Counts    map[string]int
	Gauges    map[string]float64
	Latencies map[string][]time.Duration
}

// NewRecorder creates an empty recording sink.
func NewRecorder() *Recorder {
	return &Recorder{
		Counts:    make(map[string]int),
		Gauges:    make(map[string]float64),
		Latencies: make(map[string][]time.Duration),
	}
}

func (r *Recorder) Count(name string, delta int, _ ...slog.Attr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts[name] += delta
}

func (r *Recorder) Gauge(name string, value float64, _ ...slog.Attr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Gauges[name] = value
}

func (r *Recorder) Latency(name string, d time.Duration, _ ...slog.Attr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Latencies[name] = append(r.Latencies[name], d)
}

// CountOf returns a recorded counter value.
func (r *Recorder) CountOf(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Counts[name]
}
