package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Analysis outcomes, used as the "outcome" label.
const (
	OutcomeCompleted       = "completed"
	OutcomeFallback        = "fallback"
	OutcomeTimeout         = "timeout"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeRejectedInput   = "rejected_input"
	OutcomeRejectedConfig  = "rejected_config"
	OutcomeInternalFailure = "internal"
)

var (
	analysisOutcomes sync.Map // outcome -> *atomic.Uint64
	upstreamRetries  atomic.Uint64

	upstreamDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysis increments the analysis counter for the outcome.
func IncAnalysis(outcome string) {
	counter, _ := analysisOutcomes.LoadOrStore(outcome, new(atomic.Uint64))
	counter.(*atomic.Uint64).Add(1)
}

// AnalysisCount returns the current counter value for the outcome.
func AnalysisCount(outcome string) uint64 {
	counter, ok := analysisOutcomes.Load(outcome)
	if !ok {
		return 0
	}
	return counter.(*atomic.Uint64).Load()
}

// IncUpstreamRetry counts retried completion calls.
func IncUpstreamRetry() {
	upstreamRetries.Add(1)
}

// ObserveUpstreamDurationMs records a completion call duration in milliseconds.
func ObserveUpstreamDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	upstreamDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer

	var outcomes []string
	analysisOutcomes.Range(func(key, _ any) bool {
		outcomes = append(outcomes, key.(string))
		return true
	})
	sort.Strings(outcomes)
	fmt.Fprintf(&buf, "# HELP analysis_requests_total Resume analyses by outcome\n")
	fmt.Fprintf(&buf, "# TYPE analysis_requests_total counter\n")
	for _, outcome := range outcomes {
		fmt.Fprintf(&buf, "analysis_requests_total{outcome=%q} %d\n", outcome, AnalysisCount(outcome))
	}

	writeCounter(&buf, "llm_retries_total", "Completion calls retried after a transient failure", upstreamRetries.Load())
	writeHistogram(&buf, "llm_request_duration_ms", "Completion call duration in milliseconds", upstreamDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts the value in the first bucket whose bound covers it;
// cumulative totals are computed at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
