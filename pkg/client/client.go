package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "faqrag-go-client"
)

type askRequest struct {
	Message string `json:"message"`
	TopK    int    `json:"top_k,omitempty"`
	UseLLM  *bool  `json:"use_llm,omitempty"`
}

// Client is the faqrag API entry point.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	hc        *http.Client
}

// New creates a client for the faqrag instance at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("faqrag: base URL required")
	}

	cfg := &clientConfig{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    cfg.apiKey,
		userAgent: cfg.userAgent,
		hc:        hc,
	}, nil
}

// Ask sends a question and returns the synthesized answer.
// topK <= 0 leaves the server default in effect.
func (c *Client) Ask(ctx context.Context, question string, topK ...int) (*StructuredAnswer, error) {
	req := askRequest{Message: question}
	if len(topK) > 0 {
		req.TopK = topK[0]
	}

	var answer StructuredAnswer
	if err := c.post(ctx, "/api/v1/ask", req, &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// AskRaw sends a question with synthesis disabled and returns the
// ranked matches as-is.
func (c *Client) AskRaw(ctx context.Context, question string, topK int) (*RawMatches, error) {
	useLLM := false
	req := askRequest{Message: question, TopK: topK, UseLLM: &useLLM}

	var raw RawMatches
	if err := c.post(ctx, "/api/v1/ask", req, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// BuildIndex triggers a full reindex of the record store.
func (c *Client) BuildIndex(ctx context.Context) (*BuildResult, error) {
	var result BuildResult
	if err := c.post(ctx, "/api/v1/build_index", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Sync reconciles the index against the record store.
func (c *Client) Sync(ctx context.Context) (*SyncResult, error) {
	var result SyncResult
	if err := c.post(ctx, "/api/v1/sync", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("faqrag: encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("faqrag: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("faqrag: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("faqrag: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
		apiErr.Code = "unknown"
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
