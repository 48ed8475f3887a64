// Package metrics 提供 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "note_attachment"

var (
	// HTTP 请求
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 附件
	attachmentOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_operations_total",
			Help:      "Attachment operations by kind and result",
		},
		[]string{"op", "result"},
	)

	attachmentBytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_bytes_uploaded_total",
			Help:      "Total attachment bytes accepted for upload",
		},
	)

	attachmentQuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachment_quota_rejections_total",
			Help:      "Put requests rejected because the note reached its attachment quota",
		},
	)

	// 归档
	archiveRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_requests_total",
			Help:      "Archive requests by result",
		},
		[]string{"result"},
	)

	// 后端连通性
	storageUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_up",
			Help:      "1 when the last storage probe succeeded",
		},
	)

	queueUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_up",
			Help:      "1 when the last queue probe succeeded",
		},
	)

	rateLimitHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total rate limit rejections (429s)",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAttachmentOp records one attachment operation; result is a short outcome such as
// created, updated, deleted, absent, ok, error.
func RecordAttachmentOp(op, result string) {
	attachmentOperationsTotal.WithLabelValues(op, result).Inc()
}

// RecordUploadBytes 记录上传字节数
func RecordUploadBytes(n int64) {
	if n > 0 {
		attachmentBytesUploaded.Add(float64(n))
	}
}

// RecordQuotaRejection 记录配额拒绝
func RecordQuotaRejection() {
	attachmentQuotaRejections.Inc()
}

// RecordArchiveRequest 记录归档请求结果：accepted, empty, error
func RecordArchiveRequest(result string) {
	archiveRequestsTotal.WithLabelValues(result).Inc()
}

// SetStorageUp 设置存储连通状态
func SetStorageUp(up bool) {
	storageUp.Set(boolGauge(up))
}

// SetQueueUp 设置队列连通状态
func SetQueueUp(up bool) {
	queueUp.Set(boolGauge(up))
}

// RecordRateLimitHit records a rate limit rejection.
func RecordRateLimitHit() {
	rateLimitHitsTotal.Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
