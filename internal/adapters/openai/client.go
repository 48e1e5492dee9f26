// Package openai implements domain.DescriptionEnhancer against an
// OpenAI-compatible chat completions endpoint. Keys with the "sk-or-" prefix
// are routed through OpenRouter.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventflow/internal/domain"
)

const (
	openAIBaseURL     = "https://api.openai.com/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"

	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenRouterModel = "openai/gpt-4o-mini"

	systemPrompt = "You write concise, polished event descriptions under 2000 words with no special symbols like @ # $ *."
)

// Config holds credentials and options for the enhancer.
type Config struct {
	APIKey    string
	Model     string
	ClientURL string
}

type client struct {
	apiKey     string
	model      string
	baseURL    string
	openRouter bool
	clientURL  string
	httpClient *http.Client
}

// NewEnhancer returns a DescriptionEnhancer, or nil when no API key is
// configured (callers treat nil as feature-disabled).
func NewEnhancer(cfg Config) domain.DescriptionEnhancer {
	if cfg.APIKey == "" {
		return nil
	}
	openRouter := strings.HasPrefix(cfg.APIKey, "sk-or-")
	baseURL := openAIBaseURL
	model := cfg.Model
	if openRouter {
		baseURL = openRouterBaseURL
		if model == "" {
			model = defaultOpenRouterModel
		}
	} else if model == "" {
		model = defaultOpenAIModel
	}
	return &client{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		openRouter: openRouter,
		clientURL:  cfg.ClientURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) Enhance(ctx context.Context, title, notes string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Event title: %s\nNotes: %s\nWrite a polished event description.", title, notes)},
		},
		Temperature: 0.7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.openRouter {
		referer := c.clientURL
		if referer == "" {
			referer = "http://localhost:5173"
		}
		req.Header.Set("HTTP-Referer", referer)
		req.Header.Set("X-Title", "EventFlow")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAIUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrAIUpstream, resp.StatusCode, string(errText))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrAIUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrAIUpstream)
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
