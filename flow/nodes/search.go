package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

const (
	querySynthesisSystem = "You formulate web search queries. Given source material and " +
		"optional instructions, reply with a single concise search query and nothing else."

	urlExtractionSystem = "You extract URLs. Given a block of text, reply with the single " +
		"most relevant URL it contains or refers to, and nothing else."
)

// Search covers the three mutually exclusive behaviors of the search
// node, selected by NodeData.Mode: web search, long-form research, and
// URL fetching.
type Search struct{}

// Kind returns flow.KindSearch.
func (Search) Kind() flow.Kind { return flow.KindSearch }

// CanExecute gates per mode: search and research need instructions or
// connected input, fetch needs a URL or connected input.
func (Search) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	switch node.Data.Mode {
	case flow.ModeSearch, flow.ModeResearch:
		return strings.TrimSpace(node.Data.Prompt) != "" || !input.IsEmpty()
	case flow.ModeFetch:
		return strings.TrimSpace(node.Data.URL) != "" || !input.IsEmpty()
	}
	return false
}

func (s Search) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	switch node.Data.Mode {
	case flow.ModeSearch:
		return s.executeSearch(ctx, env, node, input)
	case flow.ModeResearch:
		return s.executeResearch(ctx, env, node, input)
	case flow.ModeFetch:
		return s.executeFetch(ctx, env, node, input)
	}
	return nil, &flow.GraphError{Message: "unknown search mode: " + string(node.Data.Mode), Code: "UNKNOWN_MODE"}
}

// executeSearch runs a web search. With connected input the query is not
// the raw upstream text: the model first synthesizes a single query from
// the input plus the node's instructions, then that query is searched.
func (s Search) executeSearch(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	query := strings.TrimSpace(node.Data.Prompt)

	if !input.IsEmpty() {
		resp, err := env.Services.Chat(ctx, client.ChatRequest{
			Model:    node.Data.Model,
			System:   querySynthesisSystem,
			Messages: []client.Message{{Role: client.RoleUser, Content: composeTask(input, node.Data.Prompt)}},
		})
		if err != nil {
			return nil, err
		}
		if q := strings.TrimSpace(resp.Text); q != "" {
			query = q
		}
	}

	results, err := env.Services.Search(ctx, query, node.Data.Domain)
	if err != nil {
		return nil, err
	}

	items := make([]flow.DataItem[any], 0, len(results))
	for _, r := range results {
		items = append(items, flow.DataItem[any]{Value: r, Text: formatSearchResult(r)})
	}
	return flow.ItemsOutput(&flow.Data[any]{Items: items}), nil
}

// executeResearch runs long-form research over the connected input plus
// the node's instructions, producing one text output.
func (Search) executeResearch(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	text, err := env.Services.Research(ctx, composeTask(input, node.Data.Prompt))
	if err != nil {
		return nil, err
	}
	return flow.TextOutput(text), nil
}

// executeFetch retrieves URL contents. Without connections the node's own
// URL field is fetched once. With connections the model extracts a URL
// from each input item individually, one extraction and one fetch per
// item, and the results become a multi-item output in input order.
func (Search) executeFetch(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	if input.IsEmpty() {
		text, err := env.Services.FetchURL(ctx, strings.TrimSpace(node.Data.URL))
		if err != nil {
			return nil, err
		}
		return flow.TextOutput(text), nil
	}

	items := make([]flow.DataItem[any], 0, len(input.Items))
	for _, in := range input.Items {
		resp, err := env.Services.Chat(ctx, client.ChatRequest{
			Model:    node.Data.Model,
			System:   urlExtractionSystem,
			Messages: []client.Message{{Role: client.RoleUser, Content: in.Text}},
		})
		if err != nil {
			return nil, err
		}
		url := strings.TrimSpace(resp.Text)

		text, err := env.Services.FetchURL(ctx, url)
		if err != nil {
			return nil, err
		}
		items = append(items, flow.DataItem[any]{Value: url, Text: text})
	}
	return flow.ItemsOutput(&flow.Data[any]{Items: items}), nil
}

// formatSearchResult renders one hit as a markdown block.
func formatSearchResult(r client.SearchResult) string {
	var b strings.Builder
	if r.Title != "" {
		fmt.Fprintf(&b, "### %s\n\n", r.Title)
	}
	b.WriteString(strings.TrimSpace(r.Content))
	if r.Source != "" {
		fmt.Fprintf(&b, "\n\nSource: %s", r.Source)
	}
	return b.String()
}
