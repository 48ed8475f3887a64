package tagger

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTaggerTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"go is fun"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tags":["go"," fun ","go","",  "lang"]}`))
	}))
	defer srv.Close()

	tags, err := NewHTTPTagger(srv.URL, time.Second, 2).Tags(context.Background(), "go is fun")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "fun"}, tags)
}

func TestHTTPTaggerBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPTagger(srv.URL, time.Second, 0).Tags(context.Background(), "x")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	tags, err := Noop{}.Tags(context.Background(), "x")
	assert.NoError(t, err)
	assert.Empty(t, tags)
}
