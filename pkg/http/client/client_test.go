package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/realtime2/41001.txt", r.URL.Path)
		_, _ = w.Write([]byte("feed body"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})

	resp, err := c.Get(context.Background(), "/data/realtime2/41001.txt")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte("feed body"), resp.Body)
}

func TestClientGetNotFoundNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxRetries: 3})

	_, err := c.Get(context.Background(), "/data/realtime2/zzzz.txt")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FetchNotFound, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestClientGetRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxRetries: 3})

	resp, err := c.Get(context.Background(), "/data/realtime2/41001.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("recovered"), resp.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGetRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxRetries: 2})

	_, err := c.Get(context.Background(), "/x")
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, FetchServerError, fe.Kind)
	assert.False(t, IsNotFound(err))
}

func TestClientGetContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second, MaxRetries: 3})

	_, err := c.Get(ctx, "/x")
	assert.Error(t, err)
}

func TestClientGetFuncOverride(t *testing.T) {
	c := New(Options{BaseURL: "http://unused.invalid"})
	c.GetFunc = func(ctx context.Context, path string) (*Response, error) {
		return &Response{StatusCode: http.StatusOK, Body: []byte("stubbed " + path)}, nil
	}

	resp, err := c.Get(context.Background(), "/feed")
	require.NoError(t, err)
	assert.Equal(t, []byte("stubbed /feed"), resp.Body)
}
