// Package gemini implements the assistant provider on the Google Gemini
// API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/cwbudde/algo-modsynth/internal/assistant"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
	userRole     = "user"
	modelRole    = "model"
)

var errEmptyReply = errors.New("gemini response did not include any output text")

// Provider talks to the Gemini API.
type Provider struct {
	client *genai.Client
}

// New creates a provider. An empty baseURL uses the Google endpoint.
func New(ctx context.Context, apiKey, baseURL string) (*Provider, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Provider{client: client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Complete sends the conversation and returns the first candidate's text.
func (p *Provider) Complete(ctx context.Context, model string, conversation []assistant.Message) (string, error) {
	if model == "" {
		model = defaultModel
	}
	system, contents := buildContents(conversation)

	var config *genai.GenerateContentConfig
	if system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}
	result, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return responseText(result)
}

// Models lists the model names without the "models/" prefix, sorted.
func (p *Provider) Models(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil, fmt.Errorf("gemini list models: %w", err)
	}
	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	slices.Sort(names)
	return names, nil
}

// buildContents splits off the system messages and maps the remaining
// turns onto Gemini's user and model roles.
func buildContents(conversation []assistant.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(conversation))
	for _, m := range conversation {
		role := userRole
		switch m.Role {
		case assistant.RoleSystem:
			system = append(system, m.Content)
			continue
		case assistant.RoleAssistant:
			role = modelRole
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return strings.Join(system, "\n\n"), contents
}

func responseText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", errors.New("no candidates in Gemini response")
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no parts in Gemini response")
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", errEmptyReply
	}
	return b.String(), nil
}
