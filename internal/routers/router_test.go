package routers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/haierkeys/note-attachment-service/internal/dao"
	"github.com/haierkeys/note-attachment-service/internal/dto"
	"github.com/haierkeys/note-attachment-service/pkg/queue/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	app    *app.App
	router *gin.Engine
	queue  *memory.Queue
}

func newTestServer(t *testing.T, tweaks ...func(*app.AppConfig)) *testServer {
	t.Helper()

	cfg := new(app.AppConfig)
	require.NoError(t, defaults.Set(cfg))
	cfg.Storage.SavePath = t.TempDir()
	cfg.Queue.Type = "memory"
	cfg.Limiter.ArchivePerSecond = 0
	cfg.Archive.LocationPrefix = "https://files.example.com"
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)

	q := memory.NewQueue()
	a, err := app.NewApp(cfg, zap.NewNop(), db, app.WithQueue(q))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	return &testServer{app: a, router: NewRouter(a, nil), queue: q}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createNote(t *testing.T) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"trip","content":"photos"}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Data dto.NoteDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Data.ID)
	assert.Equal(t, "/notes/"+res.Data.ID, w.Header().Get("Location"))
	return res.Data.ID
}

func uploadRequest(t *testing.T, noteID, key, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, key))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/notes/"+noteID+"/attachments/"+key, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAttachmentLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	id := s.createNote(t)

	w := s.do(uploadRequest(t, id, "a.png", "image/png", []byte("first")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "/notes/"+id+"/attachments/a.png", w.Header().Get("Location"))

	w = s.do(uploadRequest(t, id, "a.png", "image/png", []byte("second")))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id+"/attachments/a.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "second", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id+"/attachments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.AttachmentDTO
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "a.png", list[0].AttachmentID)
	assert.Equal(t, int64(len("second")), list[0].Length)

	w = s.do(httptest.NewRequest(http.MethodDelete, "/notes/"+id+"/attachments/a.png", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "false", w.Header().Get("X-Already-Absent"))

	w = s.do(httptest.NewRequest(http.MethodDelete, "/notes/"+id+"/attachments/a.png", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Already-Absent"))

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id+"/attachments/a.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuotaExceededOverHTTP(t *testing.T) {
	s := newTestServer(t)
	id := s.createNote(t)

	for _, key := range []string{"a.png", "b.png", "c.png"} {
		w := s.do(uploadRequest(t, id, key, "image/png", []byte(key)))
		require.Equal(t, http.StatusCreated, w.Code, key)
	}

	w := s.do(uploadRequest(t, id, "d.png", "image/png", []byte("d")))
	require.Equal(t, http.StatusForbidden, w.Code)
	var body struct {
		Data struct {
			Limit int `json:"limit"`
		} `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.Limit)

	// 覆盖已有附件不受配额限制
	w = s.do(uploadRequest(t, id, "a.png", "image/png", []byte("other")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAttachmentValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(uploadRequest(t, "not-a-uuid", "a.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(uploadRequest(t, uuid.NewString(), "a.png", "image/png", []byte("x")))
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := s.createNote(t)
	req := httptest.NewRequest(http.MethodPut, "/notes/"+id+"/attachments/a.png", strings.NewReader("raw"))
	req.Header.Set("Content-Type", "application/octet-stream")
	w = s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+uuid.NewString()+"/attachments", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadKeyIsRejectedBeforeNoteLookup(t *testing.T) {
	s := newTestServer(t)
	missing := uuid.NewString()

	w := s.do(httptest.NewRequest(http.MethodGet, "/notes/"+missing+"/attachments/..", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodDelete, "/notes/"+missing+"/attachments/%00", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestOversizedUploadIsRefused(t *testing.T) {
	s := newTestServer(t, func(cfg *app.AppConfig) {
		cfg.Attachment.MaxUploadSize = "1KB"
	})
	id := s.createNote(t)

	// 超过请求体上限，在解析 multipart 时即被拒绝
	w := s.do(uploadRequest(t, id, "big.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 256<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	// 未超过请求体上限但超过附件上限，由服务层拒绝
	w = s.do(uploadRequest(t, id, "mid.bin", "application/octet-stream", bytes.Repeat([]byte("x"), 2<<10)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = s.do(uploadRequest(t, id, "small.bin", "application/octet-stream", []byte("ok")))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id+"/attachments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []dto.AttachmentDTO
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "small.bin", list[0].AttachmentID)
}

func TestArchiveOverHTTP(t *testing.T) {
	s := newTestServer(t)
	id := s.createNote(t)

	w := s.do(httptest.NewRequest(http.MethodPost, "/notes/"+id+"/attachmentzipfiles", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, s.queue.Len(s.app.Config().Queue.ArchiveQueueName))

	w = s.do(uploadRequest(t, id, "a.png", "image/png", []byte("x")))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(httptest.NewRequest(http.MethodPost, "/notes/"+id+"/attachmentzipfiles", nil))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://files.example.com/notes/"+id+"/attachmentzipfiles/"), location)
	assert.True(t, strings.HasSuffix(location, ".zip"), location)
	assert.Equal(t, 1, s.queue.Len(s.app.Config().Queue.ArchiveQueueName))

	var res struct {
		Data dto.ArchiveAcceptedDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, location, res.Data.Location)

	// 归档尚未生成
	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id+"/attachmentzipfiles/"+res.Data.ArchiveID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(httptest.NewRequest(http.MethodPost, "/notes/"+uuid.NewString()+"/attachmentzipfiles", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoteCRUDOverHTTP(t *testing.T) {
	s := newTestServer(t)
	id := s.createNote(t)

	req := httptest.NewRequest(http.MethodPut, "/notes/"+id, strings.NewReader(`{"title":"renamed","content":"c","tags":["x"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := s.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data dto.NoteDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "renamed", got.Data.Title)
	assert.Equal(t, []string{"x"}, got.Data.Tags)

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes?page=1&pageSize=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data struct {
			List  []dto.NoteDTO `json:"list"`
			Pager struct {
				PageSize  int `json:"pageSize"`
				TotalRows int `json:"totalRows"`
			} `json:"pager"`
		} `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data.List, 1)
	assert.Equal(t, 5, list.Data.Pager.PageSize)
	assert.Equal(t, 1, list.Data.Pager.TotalRows)

	req = httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"content":"no title"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, s.do(req).Code)

	w = s.do(httptest.NewRequest(http.MethodDelete, "/notes/"+id, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(httptest.NewRequest(http.MethodGet, "/notes/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestArchiveRateLimit(t *testing.T) {
	s := newTestServer(t)
	cfg := s.app.Config()
	cfg.Limiter.ArchivePerSecond, cfg.Limiter.ArchiveBurst = 1, 1
	router := NewRouter(s.app, nil)
	id := s.createNote(t)

	send := func() int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notes/"+id+"/attachmentzipfiles", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestPrivateRouter(t *testing.T) {
	s := newTestServer(t)
	r := NewPrivateRouter(s.app)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), "note_attachment_")
}
