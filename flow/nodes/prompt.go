package nodes

import (
	"context"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

// Prompt sends the node's prompt, together with any connected input, to
// the chat model and outputs the assistant text.
type Prompt struct{}

// Kind returns flow.KindPrompt.
func (Prompt) Kind() flow.Kind { return flow.KindPrompt }

// CanExecute requires a prompt or connected input; a prompt node with
// neither has nothing to send.
func (Prompt) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	return strings.TrimSpace(node.Data.Prompt) != "" || !input.IsEmpty()
}

// Execute performs one chat completion. Connected inputs are rendered as
// labeled blocks ahead of the prompt so the model can tell which
// connection produced which text.
func (Prompt) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	content := composeTask(input, node.Data.Prompt)

	resp, err := env.Services.Chat(ctx, client.ChatRequest{
		Model:    node.Data.Model,
		Messages: []client.Message{{Role: client.RoleUser, Content: content}},
	})
	if err != nil {
		return nil, err
	}

	return flow.TextOutput(resp.Text), nil
}
