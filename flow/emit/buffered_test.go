package emit

import (
	"fmt"
	"sync"
	"testing"
)

func TestBufferedEmitterHistory(t *testing.T) {
	t.Run("stores events per workflow in order", func(t *testing.T) {
		b := NewBufferedEmitter()
		b.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_start"})
		b.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_end"})
		b.Emit(Event{WorkflowID: "wf-2", NodeID: "n-9", Msg: "node_start"})

		history := b.History("wf-1")
		if len(history) != 2 {
			t.Fatalf("expected 2 events, got %d", len(history))
		}
		if history[0].Msg != "node_start" || history[1].Msg != "node_end" {
			t.Errorf("emission order lost: %v", history)
		}

		if got := b.History("wf-2"); len(got) != 1 {
			t.Errorf("workflows must not share history, got %d events", len(got))
		}
	})

	t.Run("unknown workflow yields empty slice, never nil", func(t *testing.T) {
		b := NewBufferedEmitter()
		history := b.History("ghost")
		if history == nil {
			t.Fatal("expected empty slice, got nil")
		}
		if len(history) != 0 {
			t.Errorf("expected no events, got %d", len(history))
		}
	})

	t.Run("filter by node and message", func(t *testing.T) {
		b := NewBufferedEmitter()
		b.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_start"})
		b.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_end"})
		b.Emit(Event{WorkflowID: "wf-1", NodeID: "n-2", Msg: "node_end"})

		byNode := b.HistoryWithFilter("wf-1", HistoryFilter{NodeID: "n-1"})
		if len(byNode) != 2 {
			t.Errorf("node filter: expected 2 events, got %d", len(byNode))
		}

		byMsg := b.HistoryWithFilter("wf-1", HistoryFilter{Msg: "node_end"})
		if len(byMsg) != 2 {
			t.Errorf("msg filter: expected 2 events, got %d", len(byMsg))
		}

		both := b.HistoryWithFilter("wf-1", HistoryFilter{NodeID: "n-2", Msg: "node_end"})
		if len(both) != 1 || both[0].NodeID != "n-2" {
			t.Errorf("combined filter must AND, got %v", both)
		}
	})
}

func TestBufferedEmitterClear(t *testing.T) {
	t.Run("clears one workflow", func(t *testing.T) {
		b := NewBufferedEmitter()
		b.Emit(Event{WorkflowID: "wf-1", Msg: "node_start"})
		b.Emit(Event{WorkflowID: "wf-2", Msg: "node_start"})

		b.Clear("wf-1")
		if len(b.History("wf-1")) != 0 {
			t.Error("wf-1 history should be empty")
		}
		if len(b.History("wf-2")) != 1 {
			t.Error("wf-2 history must survive a targeted clear")
		}
	})

	t.Run("empty ID clears everything", func(t *testing.T) {
		b := NewBufferedEmitter()
		b.Emit(Event{WorkflowID: "wf-1", Msg: "node_start"})
		b.Emit(Event{WorkflowID: "wf-2", Msg: "node_start"})

		b.Clear("")
		if len(b.History("wf-1")) != 0 || len(b.History("wf-2")) != 0 {
			t.Error("expected all histories cleared")
		}
	})
}

func TestBufferedEmitterConcurrent(t *testing.T) {
	b := NewBufferedEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				b.Emit(Event{WorkflowID: "wf-1", NodeID: fmt.Sprintf("n-%d", i), Msg: "node_end"})
			}
		}(i)
	}
	wg.Wait()

	if got := len(b.History("wf-1")); got != 200 {
		t.Errorf("expected 200 events, got %d", got)
	}
}
