package flow

import (
	"strings"
	"testing"
)

func TestConnectedData(t *testing.T) {
	t.Run("no incoming edges resolves to empty data", func(t *testing.T) {
		w := NewWorkflow("test")
		id, _ := w.NewNode(KindPrompt, Position{})

		d := w.ConnectedData(id)
		if d == nil {
			t.Fatal("expected non-nil data")
		}
		if !d.IsEmpty() {
			t.Errorf("expected empty data, got %+v", d)
		}
	})

	t.Run("source without output contributes nothing", func(t *testing.T) {
		w := NewWorkflow("test")
		a, _ := w.NewNode(KindPrompt, Position{})
		b, _ := w.NewNode(KindPrompt, Position{})
		w.Connect(a, b, "")

		if got := w.ConnectedText(b); got != "" {
			t.Errorf("expected empty connected text, got %q", got)
		}
		if !w.ConnectedInput(b).IsEmpty() {
			t.Error("expected empty connected input")
		}
	})

	t.Run("chain sees immediate upstream only", func(t *testing.T) {
		w := NewWorkflow("test")
		a, _ := w.NewNode(KindPrompt, Position{})
		b, _ := w.NewNode(KindPrompt, Position{})
		c, _ := w.NewNode(KindPrompt, Position{})
		w.Connect(a, b, "")
		w.Connect(b, c, "")

		gen, _ := w.BeginExecution(a)
		w.CommitOutput(a, gen, TextOutput("x"))

		if got := w.ConnectedText(b); got != "x" {
			t.Errorf("B should see A's output, got %q", got)
		}
		if got := w.ConnectedText(c); got != "" {
			t.Errorf("C should not see A transitively, got %q", got)
		}

		gen, _ = w.BeginExecution(b)
		w.CommitOutput(b, gen, TextOutput("derived from x"))

		if got := w.ConnectedText(c); got != "derived from x" {
			t.Errorf("C should see B's output, got %q", got)
		}
	})

	t.Run("multi-input merges items in edge order", func(t *testing.T) {
		w := NewWorkflow("test")
		a, _ := w.NewNode(KindPrompt, Position{})
		b, _ := w.NewNode(KindPrompt, Position{})
		c, _ := w.NewNode(KindPrompt, Position{})
		w.Connect(a, c, "")
		w.Connect(b, c, "")

		gen, _ := w.BeginExecution(a)
		w.CommitOutput(a, gen, TextOutput("first"))
		gen, _ = w.BeginExecution(b)
		w.CommitOutput(b, gen, TextOutput("second"))

		d := w.ConnectedData(c)
		if len(d.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(d.Items))
		}
		if d.Items[0].Text != "first" || d.Items[1].Text != "second" {
			t.Errorf("items out of order: %q, %q", d.Items[0].Text, d.Items[1].Text)
		}
	})

	t.Run("multi-item source flattens into items", func(t *testing.T) {
		w := NewWorkflow("test")
		a, _ := w.NewNode(KindSearch, Position{})
		b, _ := w.NewNode(KindPrompt, Position{})
		w.Connect(a, b, "")

		gen, _ := w.BeginExecution(a)
		w.CommitOutput(a, gen, ItemsOutput(&Data[any]{Items: []DataItem[any]{
			{Text: "hit one"}, {Text: "hit two"}, {Text: "hit three"},
		}}))

		in := w.ConnectedInput(b)
		if len(in.Items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(in.Items))
		}
	})
}

func TestConnectedLabels(t *testing.T) {
	t.Run("label falls back edge then node then default", func(t *testing.T) {
		w := NewWorkflow("test")
		a, _ := w.NewNode(KindPrompt, Position{})
		b, _ := w.NewNode(KindPrompt, Position{})
		c, _ := w.NewNode(KindPrompt, Position{})
		target, _ := w.NewNode(KindPrompt, Position{})

		w.Update(b, func(d *NodeData) { d.Label = "Notes" })

		w.Connect(a, target, "Sources")
		w.Connect(b, target, "")
		w.Connect(c, target, "")

		for _, id := range []string{a, b, c} {
			gen, _ := w.BeginExecution(id)
			w.CommitOutput(id, gen, TextOutput("text from "+id[:4]))
		}

		in := w.ConnectedInput(target)
		if len(in.Items) != 3 {
			t.Fatalf("expected 3 inputs, got %d", len(in.Items))
		}
		if in.Items[0].Label != "Sources" {
			t.Errorf("expected edge label, got %q", in.Items[0].Label)
		}
		if in.Items[1].Label != "Notes" {
			t.Errorf("expected node label fallback, got %q", in.Items[1].Label)
		}
		if in.Items[2].Label != "" {
			t.Errorf("expected empty label before render-time default, got %q", in.Items[2].Label)
		}

		labeled := in.Labeled()
		if !strings.Contains(labeled, "// Sources\n") {
			t.Errorf("labeled output missing edge label block:\n%s", labeled)
		}
		if !strings.Contains(labeled, "// "+DefaultEdgeLabel+"\n") {
			t.Errorf("labeled output missing default label block:\n%s", labeled)
		}
	})
}
