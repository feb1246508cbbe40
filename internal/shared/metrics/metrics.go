package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	matchCreated       = newCounterVec("status")
	matchFallbackTotal atomic.Uint64
	matchDeletedTotal  atomic.Uint64
	eventsFailedTotal  atomic.Uint64

	providerDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
	matchScore       = newHistogram([]float64{0, 25, 49, 69, 85, 100})
)

// IncMatchCreated counts a persisted record under its display status.
func IncMatchCreated(status string) {
	matchCreated.Inc(status)
}

// IncMatchFallback counts a record stored with the fallback analysis.
func IncMatchFallback() {
	matchFallbackTotal.Add(1)
}

// IncMatchDeleted counts a deleted match record.
func IncMatchDeleted() {
	matchDeletedTotal.Add(1)
}

// IncEventPublishFailed counts lifecycle events that could not be published.
func IncEventPublishFailed() {
	eventsFailedTotal.Add(1)
}

// ObserveProviderDuration records one analysis provider call.
func ObserveProviderDuration(d time.Duration) {
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	providerDuration.Observe(ms)
}

// ObserveMatchScore records the stored score of a new record. Bucket bounds
// line up with the status thresholds.
func ObserveMatchScore(score int) {
	matchScore.Observe(float64(score))
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
	writeCounterVec(&buf, "match_created_total", "Match records created by status", matchCreated)
	writeCounter(&buf, "match_fallback_total", "Match records stored with fallback analysis", matchFallbackTotal.Load())
	writeCounter(&buf, "match_deleted_total", "Match records deleted", matchDeletedTotal.Load())
	writeCounter(&buf, "match_events_failed_total", "Lifecycle events that failed to publish", eventsFailedTotal.Load())
	writeHistogram(&buf, "match_score", "Stored match scores", matchScore.Snapshot())
	writeHistogram(&buf, "provider_duration_ms", "Analysis provider call duration in milliseconds", providerDuration.Snapshot())
	return buf.String()
}

// counterVec is a counter with a single label.
type counterVec struct {
	label  string
	mu     sync.RWMutex
	values map[string]*atomic.Uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: make(map[string]*atomic.Uint64)}
}

func (v *counterVec) Inc(value string) {
	v.mu.RLock()
	c, ok := v.values[value]
	v.mu.RUnlock()
	if !ok {
		v.mu.Lock()
		if c, ok = v.values[value]; !ok {
			c = new(atomic.Uint64)
			v.values[value] = c
		}
		v.mu.Unlock()
	}
	c.Add(1)
}

func (v *counterVec) Load(value string) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if c, ok := v.values[value]; ok {
		return c.Load()
	}
	return 0
}

func (v *counterVec) snapshot() ([]string, map[string]uint64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.values))
	out := make(map[string]uint64, len(v.values))
	for k, c := range v.values {
		keys = append(keys, k)
		out[k] = c.Load()
	}
	sort.Strings(keys)
	return keys, out
}

// histogram keeps per-bucket counts; writeHistogram makes them cumulative.
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
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

func writeHeader(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s %s\n", name, kind)
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	writeHeader(buf, name, help, "counter")
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeCounterVec(buf *bytes.Buffer, name, help string, v *counterVec) {
	writeHeader(buf, name, help, "counter")
	keys, values := v.snapshot()
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=\"%s\"} %d\n", name, v.label, escapeLabel(k), values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	writeHeader(buf, name, help, "histogram")
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string {
	return labelEscaper.Replace(v)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
