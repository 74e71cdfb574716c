package inference

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

const instEnd = "[/INST]"

// HFBackend talks to a Hugging Face text-generation endpoint serving an
// instruction-tuned Mistral model.
type HFBackend struct {
	name   string
	url    string
	token  string
	client *http.Client
	br     *MicroBreaker
}

func NewHFBackend(name, url, token string, timeoutMs, failThreshold, openForMs int) *HFBackend {
	if timeoutMs <= 0 {
		timeoutMs = 60000
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	return &HFBackend{
		name:   name,
		url:    url,
		token:  token,
		client: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:     NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *HFBackend) Name() string  { return p.name }
func (p *HFBackend) Ready() bool   { return p.br.Ready() }
func (p *HFBackend) Acquire() bool { return p.br.TryAcquire() }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Temperature float32 `json:"temperature"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

func (p *HFBackend) Complete(ctx context.Context, req Request) (string, error) {
	if p.token == "" {
		return "", ErrNoToken
	}
	return guard(p.br, func() (string, error) { return p.post(ctx, req) })
}

func (p *HFBackend) post(ctx context.Context, r Request) (string, error) {
	b, err := json.Marshal(hfRequest{
		Inputs:     mistralPrompt(r.System, r.User),
		Parameters: hfParameters{Temperature: r.Temperature},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if res.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("backend=%s: %w", p.name, ErrRateLimited)
	}
	if res.StatusCode/100 != 2 {
		return "", &StatusError{Backend: p.name, Status: res.StatusCode, Body: truncate(string(body), 512)}
	}

	var gens []hfGeneration
	if err := json.Unmarshal(body, &gens); err != nil {
		return "", fmt.Errorf("backend=%s decode: %w", p.name, err)
	}
	if len(gens) == 0 {
		return "", ErrEmptyOutput
	}

	return generatedAnswer(gens[0].GeneratedText), nil
}

func mistralPrompt(system, user string) string {
	return "<s>[INST] " + system + "\n\n" + user + " " + instEnd + "\n"
}

// generatedAnswer drops the echoed prompt the endpoint prepends to its output.
func generatedAnswer(text string) string {
	if _, after, ok := strings.Cut(text, instEnd); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
