package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	uploadsParsedTotal    atomic.Uint64
	extractionFailedTotal atomic.Uint64
	sitesRenderedTotal    atomic.Uint64
	publishStartedTotal   atomic.Uint64
	publishSucceededTotal atomic.Uint64
	publishFailedTotal    atomic.Uint64
	exportsCompletedTotal atomic.Uint64

	publishDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncUploadParsed counts a resume that was extracted and parsed.
func IncUploadParsed() {
	uploadsParsedTotal.Add(1)
}

// IncExtractionFailed counts an upload whose text could not be extracted.
func IncExtractionFailed() {
	extractionFailedTotal.Add(1)
}

// IncRendered counts a rendered site (zip, preview, publish or export).
func IncRendered() {
	sitesRenderedTotal.Add(1)
}

// IncPublishStarted increments the started counter.
func IncPublishStarted() {
	publishStartedTotal.Add(1)
}

// IncPublishSucceeded increments the succeeded counter.
func IncPublishSucceeded() {
	publishSucceededTotal.Add(1)
}

// IncPublishFailed increments the failed counter.
func IncPublishFailed() {
	publishFailedTotal.Add(1)
}

func IncExportCompleted() {
	exportsCompletedTotal.Add(1)
}

// ObservePublishDurationMs records a publish duration in milliseconds.
func ObservePublishDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	publishDuration.Observe(value)
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
	writeCounter(&buf, "portfolio_uploads_parsed_total", "Total resumes parsed", uploadsParsedTotal.Load())
	writeCounter(&buf, "portfolio_extraction_failed_total", "Total PDF extraction failures", extractionFailedTotal.Load())
	writeCounter(&buf, "portfolio_sites_rendered_total", "Total portfolio sites rendered", sitesRenderedTotal.Load())
	writeCounter(&buf, "portfolio_publish_started_total", "Total publish attempts", publishStartedTotal.Load())
	writeCounter(&buf, "portfolio_publish_succeeded_total", "Total publishes that reached the hosting provider", publishSucceededTotal.Load())
	writeCounter(&buf, "portfolio_publish_failed_total", "Total publishes that failed at any stage", publishFailedTotal.Load())
	writeCounter(&buf, "portfolio_exports_completed_total", "Total sites exported to object storage", exportsCompletedTotal.Load())
	writeHistogram(&buf, "portfolio_publish_duration_ms", "Publish duration in milliseconds", publishDuration.Snapshot())
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
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
