package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DescriptionClient drafts product descriptions with the Gemini SDK.
type DescriptionClient struct {
	apiKey string
	model  string
}

func NewDescriptionClient(apiKey, model string) *DescriptionClient {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &DescriptionClient{apiKey: apiKey, model: model}
}

func (c *DescriptionClient) Enabled() bool {
	return c != nil && c.apiKey != ""
}

func (c *DescriptionClient) Describe(ctx context.Context, name, school, category string, options []string) (string, error) {
	if !c.Enabled() {
		return "", errors.New("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(buildDescriptionPrompt(name, school, category, options)),
		}, genai.RoleUser),
	}
	temp := float32(0.4)
	res, err := client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty description")
	}
	return text, nil
}
