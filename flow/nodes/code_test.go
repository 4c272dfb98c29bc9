package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

func submitCodeResponse(code string, packages ...interface{}) client.ChatResponse {
	input := map[string]interface{}{"code": code}
	if len(packages) > 0 {
		input["packages"] = packages
	}
	return client.ChatResponse{ToolCalls: []client.ToolCall{{Name: "submit_code", Input: input}}}
}

func TestCode(t *testing.T) {
	t.Run("gate requires a task", func(t *testing.T) {
		if (Code{}).CanExecute(flow.Node{}, textInput([2]string{"", "x"})) {
			t.Error("code node without a task must not be executable")
		}
		if !(Code{}).CanExecute(flow.Node{Data: flow.NodeData{Prompt: "sum the numbers"}}, emptyInput()) {
			t.Error("task alone should be executable")
		}
	})

	t.Run("forces the submit_code tool", func(t *testing.T) {
		mock := &client.Mock{
			ChatResponses: []client.ChatResponse{submitCodeResponse("print(input_data)")},
			ExecResult:    client.ExecutionResult{Success: true, Output: "ok"},
		}
		node := flow.Node{Data: flow.NodeData{Prompt: "echo the input"}}

		if _, err := (Code{}).Execute(context.Background(), testEnv(mock), node, emptyInput()); err != nil {
			t.Fatalf("execute failed: %v", err)
		}

		req := mock.Calls()[0].Args["request"].(client.ChatRequest)
		if req.ForceTool != "submit_code" {
			t.Errorf("expected forced tool, got %q", req.ForceTool)
		}
		if len(req.Tools) != 1 || req.Tools[0].Name != "submit_code" {
			t.Errorf("tool spec not offered: %+v", req.Tools)
		}
	})

	t.Run("runs once per item with escaped input_data", func(t *testing.T) {
		mock := &client.Mock{
			ChatResponses: []client.ChatResponse{submitCodeResponse("print(len(input_data))", "numpy")},
			ExecResult:    client.ExecutionResult{Success: true, Output: "5"},
		}
		node := flow.Node{Data: flow.NodeData{Prompt: "count characters"}}
		input := textInput([2]string{"", "line \"a\""}, [2]string{"", "second"})

		out, err := Code{}.Execute(context.Background(), testEnv(mock), node, input)
		if err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if out.ItemCount() != 2 {
			t.Fatalf("expected one run per item, got %d items", out.ItemCount())
		}
		if mock.CallCount("execute_code") != 2 {
			t.Fatalf("expected 2 interpreter runs, got %d", mock.CallCount("execute_code"))
		}

		var firstRun string
		var firstPackages []string
		for _, c := range mock.Calls() {
			if c.Op == "execute_code" {
				firstRun = c.Args["code"].(string)
				firstPackages = c.Args["packages"].([]string)
				break
			}
		}
		if !strings.HasPrefix(firstRun, `input_data = "line \"a\""`) {
			t.Errorf("input_data prelude missing or unescaped:\n%s", firstRun)
		}
		if !strings.Contains(firstRun, "print(len(input_data))") {
			t.Errorf("generated code missing from run:\n%s", firstRun)
		}
		if len(firstPackages) != 1 || firstPackages[0] != "numpy" {
			t.Errorf("packages not passed through: %v", firstPackages)
		}
	})

	t.Run("in-band run failure lands in the item", func(t *testing.T) {
		mock := &client.Mock{
			ChatResponses: []client.ChatResponse{submitCodeResponse("boom()")},
			ExecResult:    client.ExecutionResult{Success: false, Error: "NameError: boom"},
		}
		node := flow.Node{Data: flow.NodeData{Prompt: "do work"}}

		out, err := Code{}.Execute(context.Background(), testEnv(mock), node, textInput([2]string{"", "x"}))
		if err != nil {
			t.Fatalf("per-item failure must not abort the execution: %v", err)
		}
		if out.Data.Items[0].Text != "Error: NameError: boom" {
			t.Errorf("expected in-band error text, got %q", out.Data.Items[0].Text)
		}
	})

	t.Run("in-band failure with no connections fails the node", func(t *testing.T) {
		mock := &client.Mock{
			ChatResponses: []client.ChatResponse{submitCodeResponse("boom()")},
			ExecResult:    client.ExecutionResult{Success: false, Error: "SyntaxError"},
		}
		node := flow.Node{Data: flow.NodeData{Prompt: "do work"}}

		_, err := Code{}.Execute(context.Background(), testEnv(mock), node, emptyInput())
		if err == nil || !strings.Contains(err.Error(), "SyntaxError") {
			t.Errorf("expected the run error, got %v", err)
		}
	})

	t.Run("missing tool call is an error", func(t *testing.T) {
		mock := &client.Mock{ChatResponses: []client.ChatResponse{{Text: "here is some code: ..."}}}
		node := flow.Node{Data: flow.NodeData{Prompt: "do work"}}

		if _, err := (Code{}).Execute(context.Background(), testEnv(mock), node, emptyInput()); err == nil {
			t.Error("free-text reply without a tool call must fail")
		}
	})
}
