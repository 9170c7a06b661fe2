// Package enhance wraps the optional narrative-enhancement service. The
// engine never depends on it for correctness: every release is fully
// formed before enhancement, and a failed call leaves the template text
// in place.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

// Enhancer turns a templated release body into embellished prose.
type Enhancer interface {
	Enhance(ctx context.Context, rel model.PressRelease, toneSeed string) (string, error)
	Enabled() bool
}

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	apiModel   = "claude-haiku-4-5-20251001"
)

// Client calls the Messages API to rewrite press bodies in the Gazette's
// register. A nil or key-less client is a valid disabled enhancer.
type Client struct {
	apiKey     string
	httpClient *http.Client

	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates an enhancement client. Returns nil when apiKey is
// empty, which callers treat as enhancement disabled.
func NewClient(apiKey string, callTimeout time.Duration) *Client {
	if apiKey == "" {
		return nil
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: callTimeout},
		maxPerMin:  20,
	}
}

// Enabled reports whether the client can make calls.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Enhance rewrites the release body, guided by the tone seed. The
// returned text replaces the body only on success; every error path
// leaves the caller with the original template prose.
func (c *Client) Enhance(ctx context.Context, rel model.PressRelease, toneSeed string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("enhancer not configured")
	}

	c.mu.Lock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		c.mu.Unlock()
		return "", fmt.Errorf("rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	c.mu.Unlock()

	system := "You are the house stylist for a period academic gazette. Rewrite the given press item in the requested register. Preserve every name, number, and stated fact exactly. Return only the rewritten body."
	prompt := fmt.Sprintf("Register: %s\nHeadline: %s\nBody:\n%s", toneSeed, rel.Headline, rel.Body)

	req := request{
		Model:     apiModel,
		MaxTokens: 600,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("enhance call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enhance error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("enhance call",
		"press_type", rel.Type,
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)
	return apiResp.Content[0].Text, nil
}
