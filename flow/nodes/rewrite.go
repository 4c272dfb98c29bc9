package nodes

import (
	"context"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

// Rewrite rewrites the connected text (or the node's own text field) in
// the requested tone and style.
type Rewrite struct{}

// Kind returns flow.KindRewrite.
func (Rewrite) Kind() flow.Kind { return flow.KindRewrite }

// CanExecute requires some source text: connected input or the node's
// own prompt field.
func (Rewrite) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	return !input.IsEmpty() || strings.TrimSpace(node.Data.Prompt) != ""
}

func (Rewrite) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	text := input.Text()
	if text == "" {
		text = strings.TrimSpace(node.Data.Prompt)
	}

	rewritten, err := env.Services.Rewrite(ctx, client.RewriteRequest{
		Model:    node.Data.Model,
		Text:     text,
		Language: node.Data.TargetLang,
		Tone:     node.Data.Tone,
		Style:    node.Data.Style,
	})
	if err != nil {
		return nil, err
	}
	return flow.TextOutput(rewritten), nil
}
