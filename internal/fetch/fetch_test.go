package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("sku,price\nFETB,89.50\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Download(context.Background(), srv.URL+"/pricelist.csv", dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pricelist.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FETB")
}

func TestDownload_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	path, err := Download(context.Background(), srv.URL+"/sheet.xlsx", t.TempDir(), Options{})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDownload_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Download(context.Background(), srv.URL+"/gone.xlsx", t.TempDir(), Options{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDownload_BadScheme(t *testing.T) {
	_, err := Download(context.Background(), "gopher://example.com/sheet.xlsx", t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestDownload_NoFileName(t *testing.T) {
	_, err := Download(context.Background(), "https://example.com/", t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestBackoff_Bounded(t *testing.T) {
	cfg := defaultRetryConfig()
	for attempt := 1; attempt <= 10; attempt++ {
		d := backoff(cfg, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Duration(float64(cfg.maxBackoff)*1.3))
	}
}
