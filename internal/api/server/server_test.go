package server

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"speech-relay/internal/app/api/baidu"
	"speech-relay/internal/app/converter"
	"speech-relay/internal/app/metrics"
)

type fixedTranscriber struct {
	result baidu.Result
}

func (f fixedTranscriber) Transcribe(ctx context.Context, req converter.Request) baidu.Result {
	return f.result
}

func newTestServer(t *testing.T, result baidu.Result) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := NewServer(Config{
		Host:           "127.0.0.1",
		Port:           "0",
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		IdleTimeout:    time.Second,
		Environment:    "production",
		UploadDir:      filepath.Join(t.TempDir(), "uploads"),
		MaxUploadBytes: 1 << 20,
	}, fixedTranscriber{result: result}, metrics.New(reg), reg, zap.NewNop())
	require.NoError(t, err)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, baidu.Succeeded("ok"))

	t.Run("upload page", func(t *testing.T) {
		w := get(s, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "/api/transcribe")
	})

	t.Run("health", func(t *testing.T) {
		w := get(s, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("swagger", func(t *testing.T) {
		w := get(s, "/swagger/doc.json")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/transcribe")
	})

	t.Run("no cross-origin headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/transcribe", nil)
		req.Header.Set("Origin", "http://elsewhere.example")
		w := httptest.NewRecorder()
		s.Router().ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown route", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(s, "/api/unknown").Code)
	})
}

func TestServerTranscribeAndMetrics(t *testing.T) {
	s := newTestServer(t, baidu.Succeeded("hello world"))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "clip.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("RIFF"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"text":"hello world"}`, w.Body.String())

	metricsBody := get(s, "/metrics").Body.String()
	assert.Contains(t, metricsBody, `speech_relay_http_requests_total{method="POST",route="/api/transcribe",status="200"} 1`)
}

func TestServerRejectsOversizedUpload(t *testing.T) {
	s := newTestServer(t, baidu.Succeeded("unused"))

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", bytes.NewReader(make([]byte, 2<<20)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestServerURL(t *testing.T) {
	s := newTestServer(t, baidu.Succeeded(""))
	assert.Equal(t, "http://127.0.0.1:0/", s.URL())
}
