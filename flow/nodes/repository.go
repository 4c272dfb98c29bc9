package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

// DefaultTopK is the repository hit limit when the node does not set one.
const DefaultTopK = 5

// Repository runs a top-K similarity query against a vector repository
// and formats each hit as a markdown block with a similarity percentage.
type Repository struct{}

// Kind returns flow.KindRepository.
func (Repository) Kind() flow.Kind { return flow.KindRepository }

// CanExecute requires a selected repository plus either a typed query or
// connected input to synthesize one from.
func (Repository) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	if strings.TrimSpace(node.Data.RepositoryID) == "" {
		return false
	}
	return strings.TrimSpace(node.Data.Query) != "" || !input.IsEmpty()
}

// Execute queries the repository. A user-typed query is used directly;
// with connections and no typed query the model synthesizes one from the
// connected text plus the node's instructions.
func (Repository) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	query := strings.TrimSpace(node.Data.Query)

	if query == "" {
		resp, err := env.Services.Chat(ctx, client.ChatRequest{
			Model:    node.Data.Model,
			System:   querySynthesisSystem,
			Messages: []client.Message{{Role: client.RoleUser, Content: composeTask(input, node.Data.Prompt)}},
		})
		if err != nil {
			return nil, err
		}
		query = strings.TrimSpace(resp.Text)
	}

	topK := node.Data.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	hits, err := env.Services.QuerySimilar(ctx, node.Data.RepositoryID, query, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, &flow.GraphError{Message: "no matching content found in repository", Code: "NO_MATCHES"}
	}

	items := make([]flow.DataItem[any], 0, len(hits))
	for _, h := range hits {
		items = append(items, flow.DataItem[any]{Value: h, Text: formatHit(h)})
	}
	return flow.ItemsOutput(&flow.Data[any]{Items: items}), nil
}

// formatHit renders one similarity hit as a markdown block.
func formatHit(h client.SimilarityHit) string {
	return fmt.Sprintf("### %s (%.0f%% match)\n\n%s", h.DocumentName, h.Score*100, strings.TrimSpace(h.Text))
}
