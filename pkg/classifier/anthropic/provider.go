package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/pkg/classifier"
)

const DefaultModel = "claude-3-haiku-20240307"

type AnthropicProvider struct {
	ApiKey    string
	ModelName string
	BaseURL   string
	Client    *http.Client
}

// Ensure AnthropicProvider implements Provider
var _ classifier.Provider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &AnthropicProvider{
		ApiKey:    apiKey,
		ModelName: modelName,
		BaseURL:   "https://api.anthropic.com/v1",
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// --- Interface Implementation ---

func (p *AnthropicProvider) Identity() (string, string) {
	return "anthropic", p.ModelName
}

func (p *AnthropicProvider) SuggestBatch(ctx context.Context, tracks []*entity.Track, catalog *entity.ThemeCatalog, options ...classifier.Option) ([]*entity.Suggestion, error) {
	if len(tracks) == 0 {
		return nil, nil
	}

	opts := classifier.BuildOptions(classifier.Options{
		MaxTokens: 2048,
		Model:     p.ModelName,
	}, options)

	reqPayload := messagesRequest{
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
		System:    classifier.BuildSystemPrompt(catalog),
		Messages: []message{
			{Role: "user", Content: classifier.BuildTracksPrompt(tracks)},
		},
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL + "/messages"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.ApiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(bodyBytes, &msgResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return nil, fmt.Errorf("anthropic returned empty content")
	}

	return classifier.ParseSuggestions(msgResp.Content[0].Text), nil
}
