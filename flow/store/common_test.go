package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/nodecanvas-go/flow"
)

// storeUnderTest runs the shared Store contract against an implementation.
func storeUnderTest(t *testing.T, s Store) {
	ctx := context.Background()

	doc := flow.Document{
		ID:   "wf-1",
		Name: "first",
		Nodes: []flow.Node{
			{ID: "n1", Kind: flow.KindPrompt, Position: flow.Position{X: 5, Y: 7},
				Data: flow.NodeData{Prompt: "hello", Output: flow.TextOutput("answer")}},
			{ID: "n2", Kind: flow.KindSearch, Data: flow.NodeData{Mode: flow.ModeSearch}},
		},
		Edges:     []flow.Edge{{ID: "e1", Source: "n1", Target: "n2", Label: "Input"}},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}

	t.Run("load missing returns ErrNotFound", func(t *testing.T) {
		if _, err := s.Load(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("save and load round-trips the document", func(t *testing.T) {
		if err := s.Save(ctx, doc); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := s.Load(ctx, "wf-1")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.Name != "first" || len(got.Nodes) != 2 || len(got.Edges) != 1 {
			t.Errorf("document shape changed: %+v", got)
		}
		if got.Nodes[0].Data.Output.DisplayText() != "answer" {
			t.Errorf("node output lost in round-trip: %+v", got.Nodes[0].Data)
		}
		if got.Nodes[0].Position.X != 5 {
			t.Errorf("position lost in round-trip: %+v", got.Nodes[0].Position)
		}
	})

	t.Run("save replaces an existing document", func(t *testing.T) {
		updated := doc
		updated.Name = "renamed"
		updated.UpdatedAt = doc.UpdatedAt.Add(time.Hour)
		if err := s.Save(ctx, updated); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		got, err := s.Load(ctx, "wf-1")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if got.Name != "renamed" {
			t.Errorf("expected replacement, got name %q", got.Name)
		}
	})

	t.Run("list orders by most recently updated", func(t *testing.T) {
		older := flow.Document{
			ID: "wf-0", Name: "older",
			CreatedAt: doc.CreatedAt.Add(-time.Hour),
			UpdatedAt: doc.UpdatedAt.Add(-time.Hour),
		}
		if err := s.Save(ctx, older); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		infos, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("expected 2 workflows, got %d", len(infos))
		}
		if infos[0].ID != "wf-1" || infos[1].ID != "wf-0" {
			t.Errorf("wrong order: %q then %q", infos[0].ID, infos[1].ID)
		}
	})

	t.Run("delete removes and reports missing", func(t *testing.T) {
		if err := s.Delete(ctx, "wf-1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := s.Load(ctx, "wf-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.Delete(ctx, "wf-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on double delete, got %v", err)
		}
	})
}
