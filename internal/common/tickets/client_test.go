package tickets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "cauldron-reconciler/internal/common/config"
	apperrors "cauldron-reconciler/internal/common/errors"
	"cauldron-reconciler/internal/common/logger"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient(&Config{APIURL: url, Timeout: timeout}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(&Config{APIURL: "", Timeout: time.Second}, logger.NewNoOpLogger())
	assert.Error(t, err)

	_, err = NewClient(&Config{APIURL: "http://x", Timeout: 0}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestDefaultConfig_UsesConfiguredDefaultURL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, appconfig.DefaultTicketsAPIURL, cfg.APIURL)
	assert.NoError(t, cfg.Validate())
}

func TestFetchTickets_Success(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tickets":[{"cauldron_id":"c1","date":"2025-11-01","amount_collected":60}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Second)

	got, err := client.FetchTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].CauldronID)
	assert.Equal(t, 60.0, got[0].AmountCollected)

	// No caching: a second call goes back upstream.
	_, err = client.FetchTickets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchTickets_UpstreamStatusIsFetchFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, time.Second).FetchTickets(context.Background())
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeFetchFailed, stdErr.Code)
	assert.Contains(t, stdErr.Message, "Failed to fetch tickets API: ")
}

func TestFetchTickets_TimeoutIsFetchFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 50*time.Millisecond).FetchTickets(context.Background())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFetchFailed))
}

func TestFetchTickets_DecodeErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		body string
		code apperrors.ErrorCode
	}{
		{"scalar", `"nope"`, apperrors.ErrCodeUnexpectedResponseFormat},
		{"empty", `{"tickets":[]}`, apperrors.ErrCodeEmptyDataset},
		{"html", `<html>oops</html>`, apperrors.ErrCodeParseFailed},
		{"no amount", `[{"cauldron_id":"c1","date":"2025-11-01"}]`, apperrors.ErrCodeMissingColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL, time.Second).FetchTickets(context.Background())
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}
