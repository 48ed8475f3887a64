package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(attachmentQuotaRejections)
	RecordQuotaRejection()
	assert.Equal(t, before+1, testutil.ToFloat64(attachmentQuotaRejections))

	RecordAttachmentOp("put", "created")
	assert.GreaterOrEqual(t, testutil.ToFloat64(attachmentOperationsTotal.WithLabelValues("put", "created")), 1.0)

	SetStorageUp(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(storageUp))
	SetStorageUp(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(storageUp))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordHTTPRequest(http.MethodGet, "/notes/:noteId/attachments", 200, 5*time.Millisecond)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "note_attachment_http_requests_total")
}
