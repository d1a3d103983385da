// Package gemini is the AI-analysis collaborator. All failures past the
// HTTP boundary degrade to documented default structures; callers never see
// an error for a malformed model response, only for transport-level refusal
// to construct the client.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// generate sends one prompt and returns the first candidate's text plus the
// total token count reported by the API.
func (c *Client) generate(ctx context.Context, prompt string, maxTokens int32) (string, int, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.1) // low for consistency
	if maxTokens > 0 {
		model.SetMaxOutputTokens(maxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", 0, fmt.Errorf("no response from Gemini")
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	text := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return text, tokens, nil
}
