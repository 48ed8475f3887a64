package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterBucketsPerRouteAndClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewMethodLimiter()
	l.AddBuckets(BucketRule{Key: "/notes/:noteId/attachmentzipfiles", FillInterval: time.Hour, Capacity: 1, Quantum: 1})

	var keys []string
	r := gin.New()
	r.POST("/notes/:noteId/attachmentzipfiles", func(c *gin.Context) {
		keys = append(keys, l.Key(c))
	})
	r.GET("/notes/:noteId", func(c *gin.Context) {
		keys = append(keys, l.Key(c))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/notes/a/attachmentzipfiles", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notes/a", nil))

	assert.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Empty(t, keys[1])

	bucket, ok := l.GetBucket(keys[0])
	assert.True(t, ok)
	assert.EqualValues(t, 1, bucket.TakeAvailable(1))
	assert.EqualValues(t, 0, bucket.TakeAvailable(1))

	again, _ := l.GetBucket(keys[0])
	assert.Same(t, bucket, again)

	_, ok = l.GetBucket("")
	assert.False(t, ok)
}

func TestAddBucketsIgnoresInvalidRules(t *testing.T) {
	l := NewMethodLimiter()
	l.AddBuckets(BucketRule{Key: "/x", Capacity: 0, Quantum: 1, FillInterval: time.Second})
	assert.Empty(t, l.rules)
}
