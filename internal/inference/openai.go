package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend uses an OpenAI-compatible chat completion endpoint.
type OpenAIBackend struct {
	name   string
	model  string
	token  string
	client *openai.Client
	br     *MicroBreaker
}

func NewOpenAIBackend(name, baseURL, model, token string, timeoutMs, failThreshold, openForMs int) *OpenAIBackend {
	if timeoutMs <= 0 {
		timeoutMs = 60000
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond}

	return &OpenAIBackend{
		name:   name,
		model:  model,
		token:  token,
		client: openai.NewClientWithConfig(cfg),
		br:     NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *OpenAIBackend) Name() string  { return p.name }
func (p *OpenAIBackend) Ready() bool   { return p.br.Ready() }
func (p *OpenAIBackend) Acquire() bool { return p.br.TryAcquire() }

func (p *OpenAIBackend) Complete(ctx context.Context, req Request) (string, error) {
	if p.token == "" {
		return "", ErrNoToken
	}
	return guard(p.br, func() (string, error) { return p.chat(ctx, req) })
}

func (p *OpenAIBackend) chat(ctx context.Context, r Request) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: r.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.System},
			{Role: openai.ChatMessageRoleUser, Content: r.User},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
				return "", fmt.Errorf("backend=%s: %w", p.name, ErrRateLimited)
			}
			return "", &StatusError{Backend: p.name, Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyOutput
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
