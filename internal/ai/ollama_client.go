package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultOllamaHost is where a local Ollama listens by default.
const DefaultOllamaHost = "http://127.0.0.1:11434"

// OllamaClient is a minimal HTTP client for a local Ollama runtime.
type OllamaClient struct {
	httpClient       *http.Client
	host             string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
}

// NewOllamaClient creates a client targeting host (e.g., http://127.0.0.1:11434).
func NewOllamaClient(host string, httpTimeout time.Duration, retryMax int, baseDelay time.Duration) *OllamaClient {
	if host == "" {
		host = DefaultOllamaHost
	}
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 2
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	return &OllamaClient{
		httpClient:       &http.Client{Timeout: httpTimeout},
		host:             strings.TrimRight(host, "/"),
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
	}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message         Message `json:"message"`
	Done            bool    `json:"done"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

// Generate sends a non-streaming /api/chat request.
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	oreq := ollamaChatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Options:  map[string]any{},
	}
	if req.Temperature > 0 {
		oreq.Options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		oreq.Options["num_predict"] = req.MaxTokens
	}
	payload, err := json.Marshal(oreq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.host + "/api/chat"
	backoff := c.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		last := attempt == c.retryMaxAttempts
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if isRetryableNetErr(err) && !last {
				if err := sleepCtx(ctx, withJitter(backoff)); err != nil {
					return nil, err
				}
				backoff *= 2
				continue
			}
			return nil, &UnreachableError{Host: c.host, Err: err}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := readAPIError(resp)
			resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusNotFound:
				return nil, &ModelNotFoundError{APIError: apiErr}
			case resp.StatusCode == http.StatusBadRequest:
				return nil, &BadRequestError{APIError: apiErr}
			case resp.StatusCode >= 500:
				lastErr = &ServerError{APIError: apiErr}
			default:
				return nil, apiErr
			}
		} else {
			var oresp ollamaChatResponse
			err := json.NewDecoder(resp.Body).Decode(&oresp)
			resp.Body.Close()
			if err == nil {
				return &GenerateResponse{
					Choices: []Choice{{Message: Message{Role: "assistant", Content: oresp.Message.Content}}},
					Usage: Usage{
						PromptTokens:     oresp.PromptEvalCount,
						CompletionTokens: oresp.EvalCount,
						TotalTokens:      oresp.PromptEvalCount + oresp.EvalCount,
					},
					RequestID: fmt.Sprintf("ollama_%d", time.Now().UnixNano()),
				}, nil
			}
			lastErr = fmt.Errorf("decode response: %w", err)
		}
		if last {
			break
		}
		if err := sleepCtx(ctx, withJitter(backoff)); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, lastErr
}
