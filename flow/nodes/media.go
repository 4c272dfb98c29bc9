package nodes

import (
	"context"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

// Image generates an image from the node's prompt plus connected text,
// stores the blob, and outputs a media reference.
type Image struct{}

// Kind returns flow.KindImage.
func (Image) Kind() flow.Kind { return flow.KindImage }

// CanExecute requires a prompt or connected input.
func (Image) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	return strings.TrimSpace(node.Data.Prompt) != "" || !input.IsEmpty()
}

func (Image) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	if env.Blobs == nil {
		return nil, &flow.GraphError{Message: "no blob store configured for media output", Code: "NO_BLOB_STORE"}
	}

	prompt := composeTask(input, node.Data.Prompt)
	blob, err := env.Services.GenerateImage(ctx, client.ImageRequest{
		Model:  node.Data.Model,
		Prompt: prompt,
	})
	if err != nil {
		return nil, err
	}

	ref, err := env.Blobs.Put(ctx, node.ID+".png", blob)
	if err != nil {
		return nil, err
	}

	return &flow.NodeOutput{
		Kind:     flow.OutputImage,
		MediaRef: ref,
		Data:     flow.TextData(prompt),
	}, nil
}

// Audio synthesizes speech from the connected text (falling back to the
// node's own prompt), stores the blob, and outputs a media reference.
type Audio struct{}

// Kind returns flow.KindAudio.
func (Audio) Kind() flow.Kind { return flow.KindAudio }

// CanExecute requires some source text: connected input or a prompt.
func (Audio) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	return !input.IsEmpty() || strings.TrimSpace(node.Data.Prompt) != ""
}

func (Audio) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	if env.Blobs == nil {
		return nil, &flow.GraphError{Message: "no blob store configured for media output", Code: "NO_BLOB_STORE"}
	}

	text := input.Text()
	if text == "" {
		text = strings.TrimSpace(node.Data.Prompt)
	}

	blob, err := env.Services.GenerateAudio(ctx, node.Data.Model, text)
	if err != nil {
		return nil, err
	}

	ref, err := env.Blobs.Put(ctx, node.ID+".mp3", blob)
	if err != nil {
		return nil, err
	}

	return &flow.NodeOutput{
		Kind:     flow.OutputAudio,
		MediaRef: ref,
		Data:     flow.TextData(text),
	}, nil
}
