// Package anthropic adapts the official Anthropic Go SDK to the chat
// collaborator contract, including tool use with a forced tool choice.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/nodecanvas-go/flow/client"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "claude-sonnet-4-20250514"

const maxTokens = 4096

// Client wraps the Anthropic SDK. Safe for concurrent use after creation.
type Client struct {
	api          *anthropic.Client
	defaultModel string
}

// New creates an Anthropic collaborator client.
func New(apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	api := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{api: &api, defaultModel: defaultModel}, nil
}

// Chat sends a conversation to Claude and returns assistant text plus any
// structured tool calls.
func (c *Client) Chat(ctx context.Context, req client.ChatRequest) (client.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return client.ChatResponse{}, err
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  buildMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	for _, t := range req.Tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			InputSchema: buildSchema(t.Schema),
		}
		if t.Description != "" {
			tool.Description = anthropic.String(t.Description)
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	if req.ForceTool != "" {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: req.ForceTool},
		}
	}

	message, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return client.ChatResponse{}, client.MapError("anthropic", err)
	}

	return parseMessage(message)
}

// buildMessages converts the portable message list. System messages do
// not exist as a role in the Messages API; they are folded into user
// turns so nothing silently disappears.
func buildMessages(messages []client.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == client.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}

// buildSchema maps a JSON Schema object into the SDK's input schema
// shape, which carries properties and required separately.
func buildSchema(schema map[string]interface{}) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = props
	}
	if required, ok := schema["required"].([]interface{}); ok {
		out.Required = make([]string, 0, len(required))
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	return out
}

func parseMessage(message *anthropic.Message) (client.ChatResponse, error) {
	var resp client.ChatResponse
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Text += b.Text
		case anthropic.ToolUseBlock:
			input := map[string]interface{}{}
			if err := json.Unmarshal(b.Input, &input); err != nil {
				return client.ChatResponse{}, client.MapError("anthropic", err)
			}
			resp.ToolCalls = append(resp.ToolCalls, client.ToolCall{Name: b.Name, Input: input})
		}
	}
	return resp, nil
}
