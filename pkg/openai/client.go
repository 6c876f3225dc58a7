package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "igdm/pkg/errors"
	"igdm/pkg/logger"
	"igdm/pkg/ratelimit"
	"igdm/pkg/retry"
)

const (
	// DefaultBaseURL is the public OpenAI API root
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the model used when none is configured
	DefaultModel = "gpt-3.5-turbo"

	roleUser = "user"
)

// Options configures a Client
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout of 0 leaves the HTTP client without an explicit deadline
	Timeout time.Duration
	// MaxAttempts of 1 makes exactly one call per prompt
	MaxAttempts       int
	RequestsPerMinute int
}

// Client calls a chat-completions endpoint
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	model      string
	retry      *retry.Config
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a new chat-completions client
func NewClient(opts Options, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		headers: map[string]string{
			"Authorization": "Bearer " + opts.APIKey,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		retry: &retry.Config{
			MaxAttempts: opts.MaxAttempts,
			Backoff:     retry.DefaultExponentialBackoff(),
			RetryIf:     retry.DefaultRetryIf,
			Logger:      log,
		},
		limiter: ratelimit.New(opts.RequestsPerMinute),
		logger:  log,
	}
}

// Model returns the model identifier sent with every request
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as a single user message, requests one completion
// and returns the trimmed text of the first choice
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return retry.DoWithResult(ctx, func(ctx context.Context) (string, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return c.complete(ctx, prompt)
	}, c.retry)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ChatRequest{
		Model:    c.model,
		Messages: []Message{{Role: roleUser, Content: prompt}},
		N:        1,
	})
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to encode request: %v", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := c.checkResponseStatus(resp, data); err != nil {
		return "", err
	}

	var chat ChatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview(data),
		})
		return "", &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if chat.Error != nil {
		return "", &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: chat.Error.Message,
			Code:    resp.StatusCode,
		}
	}

	if len(chat.Choices) == 0 {
		return "", &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: "response contained no choices",
			Code:    resp.StatusCode,
		}
	}

	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending chat completion request", map[string]interface{}{
		"url":   req.URL.String(),
		"model": c.model,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		// Cancellation is the caller's decision, not a transient failure
		if ctxErr := req.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("request cancelled: %v", ctxErr),
			}
		}

		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps non-2xx responses onto tagged errors, keeping the
// service's own message when it sent one
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	errorType := errs.TypeForStatus(resp.StatusCode)
	c.logger.WarnWithFields("chat completion rejected", map[string]interface{}{
		"status": resp.StatusCode,
		"type":   string(errorType),
	})

	return &errs.Error{
		Type:    errorType,
		Message: message,
		Code:    resp.StatusCode,
	}
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
