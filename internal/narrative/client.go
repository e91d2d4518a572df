// AngelaMos | 2026
// client.go

package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/angelamos/stratiq/internal/config"
	"github.com/angelamos/stratiq/internal/core"
)

// Client is the LLM completion boundary. Implementations talk to an
// OpenAI-compatible /chat/completions API; failures surface as
// core.ErrNarrativeUnavailable so callers can degrade instead of 500.
type Client interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type httpClient struct {
	cfg  config.NarrativeConfig
	http *http.Client
}

func NewClient(cfg config.NarrativeConfig) Client {
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *httpClient) GenerateText(
	ctx context.Context,
	system, user string,
) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf(
				"chat completion timed out: %w",
				core.ErrNarrativeUnavailable,
			)
		}
		return "", fmt.Errorf(
			"chat completion: %v: %w",
			err,
			core.ErrNarrativeUnavailable,
		)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf(
			"read chat response: %v: %w",
			err,
			core.ErrNarrativeUnavailable,
		)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"chat completion status %d: %w",
			resp.StatusCode,
			core.ErrNarrativeUnavailable,
		)
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf(
			"decode chat response: %v: %w",
			err,
			core.ErrNarrativeUnavailable,
		)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf(
			"chat completion error %q: %w",
			parsed.Error.Type,
			core.ErrNarrativeUnavailable,
		)
	}

	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf(
			"chat completion returned no choices: %w",
			core.ErrNarrativeUnavailable,
		)
	}

	return parsed.Choices[0].Message.Content, nil
}
