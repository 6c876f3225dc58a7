package batch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igdm/pkg/composer"
	"igdm/pkg/logger"
	"igdm/pkg/openai"
	"igdm/pkg/profile"
	"igdm/pkg/storage"
	"igdm/pkg/table"
)

// mockChatServer simulates the chat-completions endpoint
type mockChatServer struct {
	server       *httptest.Server
	requestCount int32
	mu           sync.Mutex
	errors       map[string]int // username -> status code
	authHeaders  []string
}

func newMockChatServer(t *testing.T) *mockChatServer {
	m := &mockChatServer{errors: map[string]int{}}
	m.server = httptest.NewServer(http.HandlerFunc(m.handleCompletion))
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockChatServer) failFor(username string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[username] = status
}

func (m *mockChatServer) handleCompletion(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	var req openai.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	prompt := req.Messages[0].Content

	m.mu.Lock()
	m.authHeaders = append(m.authHeaders, r.Header.Get("Authorization"))
	for username, status := range m.errors {
		if strings.Contains(prompt, "@"+username+"\n") {
			m.mu.Unlock()
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "You exceeded your current quota", "type": "insufficient_quota"},
			})
			return
		}
	}
	m.mu.Unlock()

	username := prompt[strings.Index(prompt, "Username: @")+len("Username: @"):]
	username = username[:strings.Index(username, "\n")]

	json.NewEncoder(w).Encode(openai.ChatResponse{
		ID:    "chatcmpl-test",
		Model: req.Model,
		Choices: []openai.Choice{{
			Message: openai.Message{Role: "assistant", Content: "\nHey " + username + ", your latest post was great!\n"},
		}},
	})
}

func TestEndToEndExport(t *testing.T) {
	server := newMockChatServer(t)
	server.failFor("bob", http.StatusTooManyRequests)

	client := openai.NewClient(openai.Options{
		APIKey:  "sk-test-1234567890",
		BaseURL: server.server.URL,
	}, logger.NewNopLogger())
	runner := NewRunner(profile.NewPlaceholderResolver(), composer.New(client, nil), logger.NewTestLogger())

	session := NewSession("sk-test-1234567890", composer.ToneFriendly, []string{"alice", "bob", "carol"})
	results, err := runner.Run(context.Background(), session)
	require.NoError(t, err)
	require.Equal(t, 3, results.Len())

	// Single attempt per row by default
	assert.Equal(t, int32(3), atomic.LoadInt32(&server.requestCount))
	for _, h := range server.authHeaders {
		assert.Equal(t, "Bearer sk-test-1234567890", h)
	}

	rows := results.Rows()
	assert.Equal(t, "Hey alice, your latest post was great!", rows[0].GeneratedDM)
	assert.Equal(t, "[Error generating message: You exceeded your current quota]", rows[1].GeneratedDM)
	assert.Equal(t, "Hey carol, your latest post was great!", rows[2].GeneratedDM)

	manager, err := storage.NewManager(t.TempDir(), false)
	require.NoError(t, err)
	_, err = manager.SaveTable(results, "")
	require.NoError(t, err)

	reloaded, err := manager.LoadTable(storage.DefaultFileName)
	require.NoError(t, err)
	require.Equal(t, results.Len(), reloaded.Len())
	for i, row := range rows {
		got, _ := reloaded.Row(i)
		assert.Equal(t, row.Values(), got.Values())
	}
}

func TestEndToEndRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(openai.ChatResponse{
			Choices: []openai.Choice{{Message: openai.Message{Role: "assistant", Content: "Hi!"}}},
		})
	}))
	defer server.Close()

	client := openai.NewClient(openai.Options{
		APIKey:      "sk-test",
		BaseURL:     server.URL,
		MaxAttempts: 2,
	}, logger.NewNopLogger())
	runner := NewRunner(profile.NewPlaceholderResolver(), composer.New(client, nil), nil)

	var observed []table.Row
	runner.Observer = func(_, _ int, row table.Row) { observed = append(observed, row) }

	results, err := runner.Run(context.Background(), NewSession("sk-test", composer.ToneDirect, []string{"alice"}))
	require.NoError(t, err)
	assert.Equal(t, 0, results.Failed())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	require.Len(t, observed, 1)
	assert.Equal(t, "Hi!", observed[0].GeneratedDM)
}
