package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	t.Run("formats event with all fields", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, false)

		emitter.Emit(Event{
			WorkflowID: "wf-1",
			NodeID:     "n-42",
			Kind:       "search",
			Msg:        "node_end",
			Meta:       map[string]interface{}{"items": 3},
		})

		output := buf.String()
		if !strings.HasPrefix(output, "[node_end] ") {
			t.Errorf("message should lead the line, got: %s", output)
		}
		for _, want := range []string{"workflow=wf-1", "node=n-42", "kind=search", `meta={"items":3}`} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got: %s", want, output)
			}
		}
		if !strings.HasSuffix(output, "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("omits meta when empty", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, false)

		emitter.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Kind: "prompt", Msg: "node_start"})

		if strings.Contains(buf.String(), "meta=") {
			t.Errorf("no meta section expected, got: %s", buf.String())
		}
	})

	t.Run("one line per event", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, false)

		emitter.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_start"})
		emitter.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_end"})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Errorf("expected 2 lines, got %d", len(lines))
		}
	})
}

func TestLogEmitterJSON(t *testing.T) {
	t.Run("emits one valid JSON object per line", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{
			WorkflowID: "wf-1",
			NodeID:     "n-42",
			Kind:       "translate",
			Msg:        "node_end",
			Meta:       map[string]interface{}{"duration_ms": 12},
		})

		var parsed map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("expected valid JSON, got error: %v\noutput: %s", err, buf.String())
		}
		if parsed["workflowID"] != "wf-1" {
			t.Errorf("workflowID = %v, want %q", parsed["workflowID"], "wf-1")
		}
		if parsed["nodeID"] != "n-42" {
			t.Errorf("nodeID = %v, want %q", parsed["nodeID"], "n-42")
		}
		if parsed["kind"] != "translate" {
			t.Errorf("kind = %v, want %q", parsed["kind"], "translate")
		}
		if parsed["msg"] != "node_end" {
			t.Errorf("msg = %v, want %q", parsed["msg"], "node_end")
		}

		meta, ok := parsed["meta"].(map[string]interface{})
		if !ok {
			t.Fatal("expected meta to be a map")
		}
		if meta["duration_ms"] != float64(12) {
			t.Errorf("duration_ms = %v, want 12", meta["duration_ms"])
		}
	})

	t.Run("separate lines per event", func(t *testing.T) {
		var buf bytes.Buffer
		emitter := NewLogEmitter(&buf, true)

		emitter.Emit(Event{WorkflowID: "wf-1", Msg: "run_all_start"})
		emitter.Emit(Event{WorkflowID: "wf-1", Msg: "run_all_end"})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		for i, line := range lines {
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(line), &parsed); err != nil {
				t.Errorf("line %d is not valid JSON: %v", i, err)
			}
		}
	})
}

func TestLogEmitterInterfaceContract(t *testing.T) {
	var buf bytes.Buffer
	var _ Emitter = NewLogEmitter(&buf, false)
	var _ Emitter = NewNullEmitter()
	var _ Emitter = NewBufferedEmitter()
}
