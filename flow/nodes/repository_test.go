package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

func TestRepositoryNode(t *testing.T) {
	t.Run("gate requires repository and query source", func(t *testing.T) {
		h := Repository{}
		if h.CanExecute(flow.Node{Data: flow.NodeData{Query: "q"}}, emptyInput()) {
			t.Error("missing repository must not be executable")
		}
		if h.CanExecute(flow.Node{Data: flow.NodeData{RepositoryID: "r1"}}, emptyInput()) {
			t.Error("repository without any query source must not be executable")
		}
		if !h.CanExecute(flow.Node{Data: flow.NodeData{RepositoryID: "r1", Query: "q"}}, emptyInput()) {
			t.Error("typed query should be executable")
		}
		if !h.CanExecute(flow.Node{Data: flow.NodeData{RepositoryID: "r1"}}, textInput([2]string{"", "x"})) {
			t.Error("connected input should be executable")
		}
	})

	t.Run("typed query goes straight to the vector store", func(t *testing.T) {
		mock := &client.Mock{Hits: []client.SimilarityHit{
			{DocumentName: "notes.md", Text: "chunk text", Score: 0.87},
		}}
		node := flow.Node{Data: flow.NodeData{RepositoryID: "r1", Query: "error handling", TopK: 3}}

		out, err := Repository{}.Execute(context.Background(), testEnv(mock), node, emptyInput())
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if mock.CallCount("chat") != 0 {
			t.Error("typed query must not be synthesized")
		}

		args := mock.Calls()[0].Args
		if args["repositoryId"] != "r1" || args["query"] != "error handling" || args["topK"] != 3 {
			t.Errorf("query args mismatch: %+v", args)
		}
		if !strings.Contains(out.Data.Items[0].Text, "notes.md (87% match)") {
			t.Errorf("hit not formatted with similarity percent: %q", out.Data.Items[0].Text)
		}
	})

	t.Run("connections synthesize the query", func(t *testing.T) {
		mock := &client.Mock{
			ChatResponses: []client.ChatResponse{{Text: "synthesized"}},
			Hits:          []client.SimilarityHit{{DocumentName: "a", Text: "t", Score: 0.5}},
		}
		node := flow.Node{Data: flow.NodeData{RepositoryID: "r1"}}

		if _, err := (Repository{}).Execute(context.Background(), testEnv(mock), node, textInput([2]string{"", "upstream"})); err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		var query string
		var topK int
		for _, c := range mock.Calls() {
			if c.Op == "query_similar" {
				query = c.Args["query"].(string)
				topK = c.Args["topK"].(int)
			}
		}
		if query != "synthesized" {
			t.Errorf("expected synthesized query, got %q", query)
		}
		if topK != DefaultTopK {
			t.Errorf("expected default topK %d, got %d", DefaultTopK, topK)
		}
	})

	t.Run("no hits is an error", func(t *testing.T) {
		mock := &client.Mock{}
		node := flow.Node{Data: flow.NodeData{RepositoryID: "r1", Query: "q"}}

		if _, err := (Repository{}).Execute(context.Background(), testEnv(mock), node, emptyInput()); err == nil {
			t.Error("expected error when nothing matches")
		}
	})
}
