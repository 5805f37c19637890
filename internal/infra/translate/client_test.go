package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/buildvault/bimlibrary/internal/config"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

func testConfig(baseURL string) config.TranslateConfig {
	return config.TranslateConfig{
		BaseURL:      baseURL,
		Token:        "test-token",
		PollInterval: time.Millisecond,
		PollMax:      5 * time.Millisecond,
		Timeout:      2 * time.Second,
	}
}

func TestHTTPClient_Submit_ImmediateHandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req submitRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://blob/source", req.SourceURL)
		assert.Equal(t, "tower-a.ifc", req.DisplayName)

		json.NewEncoder(w).Encode(jobResponse{JobID: "job-1", Status: statusDone, Handle: "trn-handle-1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), zap.NewNop(), nil)

	handle, err := c.Submit(context.Background(), "https://blob/source", "tower-a.ifc")

	assert.NoError(t, err)
	assert.Equal(t, "trn-handle-1", handle)
}

func TestHTTPClient_Submit_PollsUntilDone(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs":
			json.NewEncoder(w).Encode(jobResponse{JobID: "job-2", Status: statusPending})
		case "/jobs/job-2":
			if polls.Add(1) < 3 {
				json.NewEncoder(w).Encode(jobResponse{JobID: "job-2", Status: statusPending})
				return
			}
			json.NewEncoder(w).Encode(jobResponse{JobID: "job-2", Status: statusDone, Handle: "trn-handle-2"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), zap.NewNop(), nil)

	handle, err := c.Submit(context.Background(), "https://blob/source", "tower-a.ifc")

	assert.NoError(t, err)
	assert.Equal(t, "trn-handle-2", handle)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestHTTPClient_Submit_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs":
			json.NewEncoder(w).Encode(jobResponse{JobID: "job-3", Status: statusPending})
		case "/jobs/job-3":
			json.NewEncoder(w).Encode(jobResponse{JobID: "job-3", Status: statusFailed, Reason: "unsupported format"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), zap.NewNop(), nil)

	handle, err := c.Submit(context.Background(), "https://blob/source", "tower-a.ifc")

	assert.Empty(t, handle)
	assert.True(t, apperr.IsKind(err, apperr.KindTranslation))
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestHTTPClient_Submit_RejectedUpFront(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL), zap.NewNop(), nil)

	_, err := c.Submit(context.Background(), "https://blob/source", "tower-a.ifc")

	assert.True(t, apperr.IsKind(err, apperr.KindTranslation))
	assert.Contains(t, err.Error(), "429")
}

func TestHTTPClient_Submit_TimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs":
			json.NewEncoder(w).Encode(jobResponse{JobID: "job-4", Status: statusPending})
		default:
			json.NewEncoder(w).Encode(jobResponse{JobID: "job-4", Status: statusPending})
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	c := NewHTTPClient(cfg, zap.NewNop(), nil)

	_, err := c.Submit(context.Background(), "https://blob/source", "tower-a.ifc")

	assert.True(t, apperr.IsKind(err, apperr.KindTranslation))
}
