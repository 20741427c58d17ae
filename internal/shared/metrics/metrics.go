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
	customizationStartedTotal   atomic.Uint64
	customizationCompletedTotal atomic.Uint64
	customizationFailedTotal    atomic.Uint64
	pointsInsertedTotal         atomic.Uint64

	jobsReceivedTotal             atomic.Uint64
	jobsCompletedTotal            atomic.Uint64
	jobsFailedTotal               atomic.Uint64
	jobsDeletedUnrecoverableTotal atomic.Uint64

	emailsSentTotal   atomic.Uint64
	emailsFailedTotal atomic.Uint64

	customizationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncCustomizationStarted increments the started counter.
func IncCustomizationStarted() {
	customizationStartedTotal.Add(1)
}

// IncCustomizationCompleted increments the completed counter.
func IncCustomizationCompleted() {
	customizationCompletedTotal.Add(1)
}

// IncCustomizationFailed increments the failed counter.
func IncCustomizationFailed() {
	customizationFailedTotal.Add(1)
}

// AddPointsInserted records how many bullet points a job inserted.
func AddPointsInserted(n int) {
	if n > 0 {
		pointsInsertedTotal.Add(uint64(n))
	}
}

// IncJobsReceived increments the worker received counter.
func IncJobsReceived() {
	jobsReceivedTotal.Add(1)
}

// IncJobsCompleted increments the worker completed counter.
func IncJobsCompleted() {
	jobsCompletedTotal.Add(1)
}

// IncJobsFailed increments the worker failed counter.
func IncJobsFailed() {
	jobsFailedTotal.Add(1)
}

// IncJobsDeletedUnrecoverable counts messages deleted without processing.
func IncJobsDeletedUnrecoverable() {
	jobsDeletedUnrecoverableTotal.Add(1)
}

// IncEmailsSent increments the delivered email counter.
func IncEmailsSent() {
	emailsSentTotal.Add(1)
}

// IncEmailsFailed increments the failed email counter.
func IncEmailsFailed() {
	emailsFailedTotal.Add(1)
}

// ObserveCustomizationDurationMs records a job duration in milliseconds.
func ObserveCustomizationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	customizationDuration.Observe(value)
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
	writeCounter(&buf, "customization_started_total", "Total customizations started", customizationStartedTotal.Load())
	writeCounter(&buf, "customization_completed_total", "Total customizations completed", customizationCompletedTotal.Load())
	writeCounter(&buf, "customization_failed_total", "Total customizations failed", customizationFailedTotal.Load())
	writeCounter(&buf, "points_inserted_total", "Total bullet points inserted", pointsInsertedTotal.Load())
	writeCounter(&buf, "jobs_received_total", "Total queue jobs received", jobsReceivedTotal.Load())
	writeCounter(&buf, "jobs_completed_total", "Total queue jobs completed", jobsCompletedTotal.Load())
	writeCounter(&buf, "jobs_failed_total", "Total queue jobs failed", jobsFailedTotal.Load())
	writeCounter(&buf, "jobs_deleted_unrecoverable_total", "Total queue jobs deleted without processing", jobsDeletedUnrecoverableTotal.Load())
	writeCounter(&buf, "emails_sent_total", "Total result emails delivered", emailsSentTotal.Load())
	writeCounter(&buf, "emails_failed_total", "Total result emails failed", emailsFailedTotal.Load())
	writeHistogram(&buf, "customization_duration_ms", "Customization duration in milliseconds", customizationDuration.Snapshot())
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

