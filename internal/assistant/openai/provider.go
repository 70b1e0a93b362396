// Package openai implements the assistant provider on the OpenAI
// Responses API. Any compatible server can be used through a base URL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/cwbudde/algo-modsynth/internal/assistant"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4.1-mini"
)

var errEmptyReply = errors.New("openai response did not include any output text")

// Provider talks to the Responses API.
type Provider struct {
	client *openai.Client
}

// New creates a provider. An empty baseURL uses the OpenAI endpoint. An
// empty apiKey sends no key, for local servers such as Ollama.
func New(apiKey, baseURL string) *Provider {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &Provider{client: &client}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Complete sends the conversation and returns the output text.
func (p *Provider) Complete(ctx context.Context, model string, conversation []assistant.Message) (string, error) {
	resp, err := p.client.Responses.New(ctx, buildParams(model, conversation))
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	text := resp.OutputText()
	if text == "" {
		return "", errEmptyReply
	}
	return text, nil
}

// Models lists the model ids, sorted.
func (p *Provider) Models(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai list models: %w", err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

// buildParams maps the conversation onto Responses input items. System
// messages become the instructions.
func buildParams(model string, conversation []assistant.Message) responses.ResponseNewParams {
	if model == "" {
		model = defaultModel
	}

	var instructions string
	items := responses.ResponseInputParam{}
	for _, m := range conversation {
		var role responses.EasyInputMessageRole
		switch m.Role {
		case assistant.RoleSystem:
			if instructions != "" {
				instructions += "\n\n"
			}
			instructions += m.Content
			continue
		case assistant.RoleAssistant:
			role = responses.EasyInputMessageRoleAssistant
		default:
			role = responses.EasyInputMessageRoleUser
		}
		items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, role))
	}

	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	}
	if instructions != "" {
		params.Instructions = openai.String(instructions)
	}
	return params
}
