package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/campushelp/faqrag/internal/domain"
	"github.com/campushelp/faqrag/internal/metrics"
)

// Synthesizer produces chat completions using the OpenAI-compatible API.
// It is a thin transport: prompt construction belongs to the caller.
type Synthesizer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// SynthesizerConfig holds the completion provider settings.
type SynthesizerConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewSynthesizer creates an OpenAI-compatible completion provider.
func NewSynthesizer(cfg *SynthesizerConfig) *Synthesizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Synthesizer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Complete sends a system and user message pair and returns the raw
// completion text. The model is asked for a JSON object response.
func (s *Synthesizer) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SynthesisRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", parseAPIError("synthesis", err)
	}

	if len(resp.Choices) == 0 {
		metrics.SynthesisRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrUpstreamUnavailable)
	}

	metrics.SynthesisRequestsTotal.WithLabelValues(s.model, "success").Inc()
	metrics.SynthesisRequestDuration.WithLabelValues(s.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}
