package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "cauldron-reconciler", r.Header.Get("User-Agent"))
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`[{"cauldron_id":"c1"}]`))
	}))
	defer server.Close()

	body, err := NewClient(time.Second).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"cauldron_id":"c1"}]`, string(body))
}

func TestClient_Get_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	_, err := NewClient(time.Second).Get(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "maintenance", statusErr.Body)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Get_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	start := time.Now()
	_, err := NewClient(50*time.Millisecond).Get(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_Get_BadURL(t *testing.T) {
	_, err := NewClient(time.Second).Get(context.Background(), "://bad")
	assert.Error(t, err)
}
