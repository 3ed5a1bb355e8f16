package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	extractionStartedTotal   atomic.Uint64
	extractionCompletedTotal atomic.Uint64
	extractionFailedTotal    atomic.Uint64
	extractionTimeoutTotal   atomic.Uint64
	documentsUploadedTotal   atomic.Uint64

	extractionDuration = newHistogram([]float64{1000, 2500, 5000, 10000, 20000, 30000, 60000, 90000, 120000})
)

// IncExtractionStarted increments the started counter.
func IncExtractionStarted() {
	extractionStartedTotal.Add(1)
}

// IncExtractionCompleted increments the completed counter.
func IncExtractionCompleted() {
	extractionCompletedTotal.Add(1)
}

// IncExtractionFailed increments the failed counter.
func IncExtractionFailed() {
	extractionFailedTotal.Add(1)
}

// IncExtractionTimeout counts extract jobs abandoned after the poll timeout.
func IncExtractionTimeout() {
	extractionTimeoutTotal.Add(1)
}

// IncDocumentsUploaded increments the uploaded documents counter.
func IncDocumentsUploaded() {
	documentsUploadedTotal.Add(1)
}

// ObserveExtractionDurationMs records an extraction duration in milliseconds.
func ObserveExtractionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	extractionDuration.Observe(value)
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
	writeCounter(&buf, "toc_extraction_started_total", "Total TOC extractions started", extractionStartedTotal.Load())
	writeCounter(&buf, "toc_extraction_completed_total", "Total TOC extractions completed", extractionCompletedTotal.Load())
	writeCounter(&buf, "toc_extraction_failed_total", "Total TOC extractions failed", extractionFailedTotal.Load())
	writeCounter(&buf, "toc_extraction_timeout_total", "Total extract jobs that hit the poll timeout", extractionTimeoutTotal.Load())
	writeCounter(&buf, "documents_uploaded_total", "Total documents uploaded", documentsUploadedTotal.Load())
	writeHistogram(&buf, "toc_extraction_duration_ms", "TOC extraction duration in milliseconds", extractionDuration.Snapshot())
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
	// counts are per bucket; writeHistogram makes them cumulative
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
