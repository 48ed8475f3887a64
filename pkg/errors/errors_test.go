package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/note-attachment-service/pkg/code"
)

func TestIsWalksWrappedChain(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := fmt.Errorf("put: %w", New(code.ErrorStorageFailure, cause))

	assert.True(t, Is(err, code.ErrorStorageFailure))
	assert.False(t, Is(err, code.ErrorNoteNotFound))
	assert.ErrorIs(t, err, cause)
}

func TestErrorResponseUsesBoundStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponse(c, New(code.ErrorAttachmentQuotaExceeded.WithData(gin.H{"limit": 3}), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2002), body["code"])
	assert.Equal(t, float64(3), body["data"].(map[string]interface{})["limit"])
}

func TestErrorResponseUnknownError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorResponse(c, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
