// Package google adapts the Gemini SDK to the collaborator contract:
// chat completion with function calling, translation and rewriting as
// prompted generations, and text embedding.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/nodecanvas-go/flow/client"
)

// Default models for the Gemini-backed operations.
const (
	DefaultModel          = "gemini-1.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// Client wraps the Gemini SDK. Close releases the underlying connection.
type Client struct {
	api          *genai.Client
	defaultModel string
}

// New creates a Gemini collaborator client.
func New(ctx context.Context, apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	api, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{api: api, defaultModel: defaultModel}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c.api != nil {
		return c.api.Close()
	}
	return nil
}

func (c *Client) generativeModel(requested string) *genai.GenerativeModel {
	model := requested
	if model == "" {
		model = c.defaultModel
	}
	return c.api.GenerativeModel(model)
}

// Chat sends a conversation to Gemini. Tool specs become function
// declarations; a forced tool maps to function-calling mode ANY
// restricted to that function.
func (c *Client) Chat(ctx context.Context, req client.ChatRequest) (client.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return client.ChatResponse{}, err
	}

	model := c.generativeModel(req.Model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  buildSchema(t.Schema),
			})
		}
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	if req.ForceTool != "" {
		model.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingAny,
				AllowedFunctionNames: []string{req.ForceTool},
			},
		}
	}

	// Prior turns go into chat history; the final message is the send.
	session := model.StartChat()
	last := genai.Text("")
	for i, m := range req.Messages {
		if i == len(req.Messages)-1 {
			last = genai.Text(m.Content)
			break
		}
		role := "user"
		if m.Role == client.RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, last)
	if err != nil {
		return client.ChatResponse{}, client.MapError("google", err)
	}
	return parseResponse(resp)
}

// Translate renders the text into the target language via a constrained
// generation. Binary input never reaches here; the contract rejects it at
// ExtractText.
func (c *Client) Translate(ctx context.Context, targetLang, text string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text into %s. Reply with the translation only.\n\n%s",
		targetLang, text)
	return c.generateText(ctx, "", prompt)
}

// Rewrite rewrites the text with the requested tone and style.
func (c *Client) Rewrite(ctx context.Context, req client.RewriteRequest) (string, error) {
	var b strings.Builder
	b.WriteString("Rewrite the following text")
	if req.Tone != "" {
		fmt.Fprintf(&b, " in a %s tone", req.Tone)
	}
	if req.Style != "" {
		fmt.Fprintf(&b, " using a %s style", req.Style)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, ", in %s", req.Language)
	}
	b.WriteString(". Reply with the rewritten text only.\n\n")
	b.WriteString(req.Text)
	return c.generateText(ctx, req.Model, b.String())
}

// EmbedText returns the embedding vector for the text.
func (c *Client) EmbedText(ctx context.Context, model, text string) ([]float64, error) {
	if model == "" {
		model = DefaultEmbeddingModel
	}

	res, err := c.api.EmbeddingModel(model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, client.MapError("google", err)
	}
	if res.Embedding == nil {
		return nil, client.MapError("google", errors.New("no embedding returned"))
	}

	vector := make([]float64, len(res.Embedding.Values))
	for i, v := range res.Embedding.Values {
		vector[i] = float64(v)
	}
	return vector, nil
}

// ExtractText passes plain-text blobs through and rejects binary input.
func (c *Client) ExtractText(_ context.Context, _ string, blob []byte) (string, error) {
	if !utf8.Valid(blob) {
		return "", client.ErrUnsupported
	}
	return string(blob), nil
}

func (c *Client) generateText(ctx context.Context, model, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := c.generativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", client.MapError("google", err)
	}

	parsed, err := parseResponse(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(parsed.Text), nil
}

func parseResponse(resp *genai.GenerateContentResponse) (client.ChatResponse, error) {
	var out client.ChatResponse
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, client.MapError("google", errors.New("no candidates returned"))
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Text += string(p)
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, client.ToolCall{Name: p.Name, Input: p.Args})
		}
	}
	return out, nil
}

// buildSchema maps a JSON Schema object into the SDK's schema type. Only
// the shapes tool specs actually use are covered: objects of scalar and
// string-array properties.
func buildSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{Type: schemaType(schema["type"])}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]interface{}); ok {
				out.Properties[name] = buildSchema(sub)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		out.Items = buildSchema(items)
	}
	if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}
	return out
}

func schemaType(raw interface{}) genai.Type {
	switch raw {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	}
	return genai.TypeUnspecified
}
