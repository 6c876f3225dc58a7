package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "igdm/pkg/errors"
	"igdm/pkg/logger"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Options{
		APIKey:  "sk-test-key",
		BaseURL: server.URL + "/v1/",
	}, logger.NewTestLogger())
	return server, client
}

func writeChat(w http.ResponseWriter, content ...string) {
	resp := ChatResponse{ID: "chatcmpl-1", Model: DefaultModel}
	for i, c := range content {
		resp.Choices = append(resp.Choices, Choice{Index: i, Message: Message{Role: "assistant", Content: c}})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Options{APIKey: "sk"}, logger.NewNopLogger())

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, 1, client.retry.MaxAttempts)
	assert.Equal(t, time.Duration(0), client.httpClient.Timeout)
	assert.Equal(t, "Bearer sk", client.headers["Authorization"])
}

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var got ChatRequest
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChat(w, "  Hey there!\n", "second choice")
	})

	text, err := client.Complete(context.Background(), "write a DM")
	require.NoError(t, err)

	assert.Equal(t, "Hey there!", text)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 1, got.N)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "write a DM", got.Messages[0].Content)
}

func TestCompleteStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    errs.ErrorType
		message string
	}{
		{"invalid key", 401, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, errs.ErrorTypeAuth, "Incorrect API key provided"},
		{"unknown model", 404, `{"error":{"message":"model not found"}}`, errs.ErrorTypeNotFound, "model not found"},
		{"quota", 429, `{"error":{"message":"Rate limit reached"}}`, errs.ErrorTypeRateLimit, "Rate limit reached"},
		{"outage", 503, `upstream down`, errs.ErrorTypeServerError, "Service Unavailable"},
		{"bad request", 400, `{}`, errs.ErrorTypeUnknown, "Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), "prompt")

			var apiErr *errs.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.want, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Complete(context.Background(), "prompt")
	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
}

func TestCompleteNoChoices(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChat(w)
	})

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestCompleteNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Options{APIKey: "sk", BaseURL: url}, logger.NewNopLogger())
	_, err := client.Complete(context.Background(), "prompt")

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNetwork, apiErr.Type)
}

func TestCompleteSingleAttemptByDefault(t *testing.T) {
	var calls int32
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCompleteRetriesWhenConfigured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeChat(w, "finally")
	}))
	defer server.Close()

	client := NewClient(Options{APIKey: "sk", BaseURL: server.URL, MaxAttempts: 3}, logger.NewNopLogger())
	client.retry.Backoff = &noDelay{}

	text, err := client.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "finally", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCompleteCancelled(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChat(w, "too late")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, "prompt")
	assert.Error(t, err)
}

type noDelay struct{}

func (noDelay) NextDelay(int) time.Duration { return 0 }
