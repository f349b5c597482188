package tips

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"

	systemPrompt = "You are a helpful travel assistant. Provide concise, friendly, and accurate travel tips."
	noTips       = "No tips available."
)

// RemoteSource asks an OpenAI-compatible chat-completion endpoint for tips.
type RemoteSource struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewRemoteSource creates a client for the chat-completion API. Empty
// baseURL or model use the defaults. No client timeout is set.
func NewRemoteSource(apiKey, baseURL, model string) *RemoteSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &RemoteSource{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
	}
}

func prompt(place string, t Type) string {
	switch t {
	case Etiquette:
		return fmt.Sprintf("What cultural etiquette should travelers know when visiting %s? Provide 3 specific bullet points.", place)
	case Packing:
		return fmt.Sprintf("Suggest 3 essential items to pack for %s with brief reasons why they're important.", place)
	case ThingsToDo:
		return fmt.Sprintf("What are 3 unique experiences or activities travelers should try in %s? Be specific and concise.", place)
	default:
		return fmt.Sprintf("Tell me 3 must-see places in %s. Keep each item to one sentence with specific details.", place)
	}
}

// Tips issues one chat-completion request.
func (c *RemoteSource) Tips(ctx context.Context, place string, t Type) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(place, t)},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("request encoding failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("JSON decode error: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return noTips, nil
	}
	return result.Choices[0].Message.Content, nil
}

// API request/response types

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
