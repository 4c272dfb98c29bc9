// Package openai adapts the official OpenAI Go SDK to the collaborator
// contract: chat completion with tool calling, image generation, speech
// synthesis, text embedding, and model listing.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/nodecanvas-go/flow/client"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gpt-4o"

// Client wraps the OpenAI SDK. Safe for concurrent use; the underlying
// SDK client handles request concurrency internally.
type Client struct {
	api          *openai.Client
	defaultModel string
}

// New creates an OpenAI collaborator client.
//
// Parameters:
//   - apiKey: OpenAI API key. Must be non-empty.
//   - defaultModel: model used when requests leave Model empty. Empty
//     selects DefaultModel.
func New(apiKey, defaultModel string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}

	api := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{api: &api, defaultModel: defaultModel}, nil
}

func (c *Client) model(requested string) string {
	if requested != "" {
		return requested
	}
	return c.defaultModel
}

// Chat sends a chat completion request, including tool specs and a
// forced tool choice when the request carries them.
func (c *Client) Chat(ctx context.Context, req client.ChatRequest) (client.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return client.ChatResponse{}, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case client.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case client.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model(req.Model)),
		Messages: messages,
	}

	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.Schema),
			},
		})
	}
	if req.ForceTool != "" {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: req.ForceTool},
			},
		}
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return client.ChatResponse{}, client.MapError("openai", err)
	}
	if len(completion.Choices) == 0 {
		return client.ChatResponse{}, client.MapError("openai", errors.New("no response choices returned"))
	}

	msg := completion.Choices[0].Message
	resp := client.ChatResponse{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		input := map[string]interface{}{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
			return client.ChatResponse{}, client.MapError("openai", err)
		}
		resp.ToolCalls = append(resp.ToolCalls, client.ToolCall{Name: tc.Function.Name, Input: input})
	}
	return resp, nil
}

// GenerateImage renders the prompt through the Images API and returns the
// decoded image bytes.
func (c *Client) GenerateImage(ctx context.Context, req client.ImageRequest) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = "gpt-image-1"
	}

	res, err := c.api.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  openai.ImageModel(model),
		Prompt: req.Prompt,
	})
	if err != nil {
		return nil, client.MapError("openai", err)
	}
	if len(res.Data) == 0 {
		return nil, client.MapError("openai", errors.New("no image returned"))
	}

	blob, err := base64.StdEncoding.DecodeString(res.Data[0].B64JSON)
	if err != nil {
		return nil, client.MapError("openai", err)
	}
	return blob, nil
}

// GenerateAudio synthesizes speech for the text.
func (c *Client) GenerateAudio(ctx context.Context, model, text string) ([]byte, error) {
	if model == "" {
		model = "tts-1"
	}

	res, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModel(model),
		Input: text,
		Voice: openai.AudioSpeechNewParamsVoiceAlloy,
	})
	if err != nil {
		return nil, client.MapError("openai", err)
	}
	defer res.Body.Close()

	blob, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, client.MapError("openai", err)
	}
	return blob, nil
}

// EmbedText returns the embedding vector for the text.
func (c *Client) EmbedText(ctx context.Context, model, text string) ([]float64, error) {
	if model == "" {
		model = "text-embedding-3-small"
	}

	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(model),
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, client.MapError("openai", err)
	}
	if len(res.Data) == 0 {
		return nil, client.MapError("openai", errors.New("no embedding returned"))
	}
	return res.Data[0].Embedding, nil
}

// ExtractText passes plain-text blobs through and rejects binary input;
// document conversion is not an OpenAI capability.
func (c *Client) ExtractText(_ context.Context, _ string, blob []byte) (string, error) {
	if !utf8.Valid(blob) {
		return "", client.ErrUnsupported
	}
	return string(blob), nil
}

// ListModels returns the models visible to the API key. The capability
// tag is ignored; OpenAI's listing is not capability-filtered.
func (c *Client) ListModels(ctx context.Context, _ string) ([]client.ModelInfo, error) {
	page, err := c.api.Models.List(ctx)
	if err != nil {
		return nil, client.MapError("openai", err)
	}

	models := make([]client.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, client.ModelInfo{ID: m.ID, Name: m.ID})
	}
	return models, nil
}
