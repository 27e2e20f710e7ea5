package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"nutrivision-go/internal/config"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("ai collaborator unavailable")

// Part is one piece of user content: plain text or an inline image.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

func Text(s string) Part { return Part{Text: s} }

func Image(mimeType string, data []byte) Part { return Part{MIMEType: mimeType, Data: data} }

func (p Part) isImage() bool { return len(p.Data) > 0 }

func (p Part) dataURL() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Request is a single instruction plus user content exchange.
type Request struct {
	Model       string
	System      string
	User        []Part
	Temperature *float64
	MaxTokens   int
}

type OpenAIClient struct {
	cfg     *config.Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	maxFailures := uint32(cfg.AIBreakerMaxFailures)
	st := gobreaker.Settings{
		Name:    "openai",
		Timeout: time.Duration(cfg.AIBreakerCooldownSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return maxFailures > 0 && counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &OpenAIClient{cfg: cfg, http: &http.Client{}, breaker: gobreaker.NewCircuitBreaker(st)}
}

// Complete sends one chat completion and returns the text of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, r Request) (string, error) {
	if c.cfg.OpenAIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY missing")
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, r)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrUnavailable
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *OpenAIClient) complete(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if model == "" {
		model = c.cfg.OpenAILlmModel
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "system", "content": r.System},
			{"role": "user", "content": userContent(r.User)},
		},
	}
	if r.Temperature != nil {
		body["temperature"] = *r.Temperature
	}
	if r.MaxTokens > 0 {
		body["max_tokens"] = r.MaxTokens
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.OpenAIBaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		bs, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm error: %s", string(bs))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// userContent sends text-only input as a plain string and mixed input as
// a list of typed parts.
func userContent(parts []Part) any {
	if len(parts) == 1 && !parts[0].isImage() {
		return parts[0].Text
	}
	out := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		if p.isImage() {
			out = append(out, map[string]any{
				"type":      "image_url",
				"image_url": map[string]string{"url": p.dataURL()},
			})
			continue
		}
		out = append(out, map[string]any{"type": "text", "text": p.Text})
	}
	return out
}
