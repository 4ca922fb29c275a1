// Package monitor implements the Performance Monitor (spec.md §4.8): a
// rolling-window collector of per-request timing and confidence events,
// exposing percentile/mean/rate queries plus an OpenTelemetry export,
// grounded on original_source's enhanced_plugin_monitor.py (time-bucketed
// circular buffers of execution metrics, p95/p99 percentiles, error rates)
// and on itsneelabh-gomind's practice of mirroring every internal metric
// through an OTel meter for external scraping.
package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ragcore-ai/engine/internal/ragerr"
	"github.com/ragcore-ai/engine/internal/retrieval"
	"github.com/ragcore-ai/engine/internal/router"
	"github.com/ragcore-ai/engine/pkg/ring"
)

// PathEvent is one recorded path completion: spec.md §4.8's per-request
// event decomposed into one row per path, correlated by RequestID. Kept
// flat rather than merged into one speculative+agentic row per request,
// since none of §4.8's bulleted queries (percentiles, confidence means,
// error rates, mode counts) need the merged shape — only RecordAnomaly's
// count does, and that is tracked separately.
type PathEvent struct {
	RequestID  string
	Mode       retrieval.Mode
	Path       router.PathName
	Elapsed    time.Duration
	Confidence float64
	ErrorKind  ragerr.Kind // zero value ("") means success
	At         time.Time
}

// Snapshot is a point-in-time read of the monitor's rolling window,
// answering spec.md §4.8's bulleted queries.
type Snapshot struct {
	TotalEvents    int
	ErrorRate      float64
	ErrorsByKind   map[ragerr.Kind]int
	ModeCounts     map[retrieval.Mode]int
	P95ByPath      map[router.PathName]time.Duration
	MeanConfidence map[router.PathName]float64
	AnomalyCount   int
	AlertErrorRate bool
	AlertP95       bool
}

// Config wires a Monitor's window size and alert thresholds (spec.md §9's
// "alert_error_rate"/"alert_p95_ms", sourced from internal/config.Config).
type Config struct {
	WindowSize     int // event capacity of the rolling buffer; default 2000
	AlertErrorRate float64
	AlertP95MS     int
	MeterProvider  metric.MeterProvider // optional; defaults to the global provider
}

// Monitor implements router.Recorder and answers rolling-window queries.
// Safe for concurrent use.
type Monitor struct {
	mu       sync.Mutex
	events   *ring.Buffer[PathEvent]
	anomaly  int
	alertErr float64
	alertP95 time.Duration

	latencyHist  metric.Float64Histogram
	confidenceHist metric.Float64Histogram
	errorCounter metric.Int64Counter
	anomalyCounter metric.Int64Counter
}

var _ router.Recorder = (*Monitor)(nil)

// New constructs a Monitor, registering its OTel instruments against the
// given (or global) MeterProvider.
func New(cfg Config) (*Monitor, error) {
	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = 2000
	}
	alertErrorRate := cfg.AlertErrorRate
	if alertErrorRate <= 0 {
		alertErrorRate = 0.05
	}
	alertP95MS := cfg.AlertP95MS
	if alertP95MS <= 0 {
		alertP95MS = 5000
	}

	provider := cfg.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter("github.com/ragcore-ai/engine/internal/monitor")

	latencyHist, err := meter.Float64Histogram(
		"ragcore.router.path.latency_ms",
		metric.WithDescription("Router path completion latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Internal, "monitor: register latency histogram", err)
	}
	confidenceHist, err := meter.Float64Histogram(
		"ragcore.router.path.confidence",
		metric.WithDescription("Router path result confidence"),
	)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Internal, "monitor: register confidence histogram", err)
	}
	errorCounter, err := meter.Int64Counter(
		"ragcore.router.path.errors",
		metric.WithDescription("Router path failures by error kind"),
	)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Internal, "monitor: register error counter", err)
	}
	anomalyCounter, err := meter.Int64Counter(
		"ragcore.router.anomalies",
		metric.WithDescription("Occurrences of the agentic-confidence-lower-than-speculative anomaly"),
	)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.Internal, "monitor: register anomaly counter", err)
	}

	return &Monitor{
		events:         ring.New[PathEvent](windowSize),
		alertErr:       alertErrorRate,
		alertP95:       time.Duration(alertP95MS) * time.Millisecond,
		latencyHist:    latencyHist,
		confidenceHist: confidenceHist,
		errorCounter:   errorCounter,
		anomalyCounter: anomalyCounter,
	}, nil
}

// RecordPathLatency implements router.Recorder.
func (m *Monitor) RecordPathLatency(requestID string, mode retrieval.Mode, path router.PathName, elapsed time.Duration, confidence float64, err error) {
	kind := ragerr.Kind("")
	if err != nil {
		kind = ragerr.ClassifyOf(err)
	}

	m.mu.Lock()
	m.events.Add(PathEvent{
		RequestID:  requestID,
		Mode:       mode,
		Path:       path,
		Elapsed:    elapsed,
		Confidence: confidence,
		ErrorKind:  kind,
		At:         time.Now(),
	})
	m.mu.Unlock()

	attrs := metric.WithAttributes(
		attribute.String("path", string(path)),
		attribute.String("mode", string(mode)),
	)
	m.latencyHist.Record(context.Background(), float64(elapsed.Milliseconds()), attrs)
	if err == nil {
		m.confidenceHist.Record(context.Background(), confidence, attrs)
	} else {
		m.errorCounter.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("path", string(path)),
			attribute.String("mode", string(mode)),
			attribute.String("kind", string(kind)),
		))
	}
}

// RecordAnomaly implements router.Recorder.
func (m *Monitor) RecordAnomaly(requestID string, reason string) {
	m.mu.Lock()
	m.anomaly++
	m.mu.Unlock()
	m.anomalyCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Snapshot computes the current rolling-window view, per spec.md §4.8's
// bulleted queries, and evaluates the two alert thresholds.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	events := m.events.All()
	anomalyCount := m.anomaly
	m.mu.Unlock()

	snap := Snapshot{
		TotalEvents:    len(events),
		ErrorsByKind:   map[ragerr.Kind]int{},
		ModeCounts:     map[retrieval.Mode]int{},
		P95ByPath:      map[router.PathName]time.Duration{},
		MeanConfidence: map[router.PathName]float64{},
		AnomalyCount:   anomalyCount,
	}
	if len(events) == 0 {
		return snap
	}

	byPath := map[router.PathName][]PathEvent{}
	errCount := 0
	for _, e := range events {
		byPath[e.Path] = append(byPath[e.Path], e)
		snap.ModeCounts[e.Mode]++
		if e.ErrorKind != "" {
			errCount++
			snap.ErrorsByKind[e.ErrorKind]++
		}
	}
	snap.ErrorRate = float64(errCount) / float64(len(events))

	var worstP95 time.Duration
	for path, pathEvents := range byPath {
		p95 := percentile(pathEvents, 0.95)
		snap.P95ByPath[path] = p95
		if p95 > worstP95 {
			worstP95 = p95
		}

		successes := 0
		var confSum float64
		for _, e := range pathEvents {
			if e.ErrorKind == "" {
				confSum += e.Confidence
				successes++
			}
		}
		if successes > 0 {
			snap.MeanConfidence[path] = confSum / float64(successes)
		}
	}

	snap.AlertErrorRate = snap.ErrorRate > m.alertErr
	snap.AlertP95 = worstP95 > m.alertP95
	return snap
}

func percentile(events []PathEvent, p float64) time.Duration {
	if len(events) == 0 {
		return 0
	}
	durations := make([]time.Duration, len(events))
	for i, e := range events {
		durations[i] = e.Elapsed
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	idx := int(p * float64(len(durations)))
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	return durations[idx]
}
