package nodes

import (
	"context"
	"strconv"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
	"github.com/dshills/nodecanvas-go/flow/client"
)

// submitCodeTool is the forced tool contract for code generation: the
// model must return code and an optional package list structurally, never
// as free text to be scraped.
var submitCodeTool = client.ToolSpec{
	Name:        "submit_code",
	Description: "Submit the code that solves the task, plus any packages it imports.",
	Schema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"code": map[string]interface{}{
				"type":        "string",
				"description": "The complete code. Input is available in the input_data string variable.",
			},
			"packages": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Third-party packages the code imports.",
			},
		},
		"required": []interface{}{"code"},
	},
}

const codeSystem = "You write code to solve the user's task. The input, when present, is " +
	"provided in a pre-defined string variable named input_data. Print the final result. " +
	"Submit your answer through the submit_code tool."

// Code asks the model for code via a forced tool call, then runs the
// returned code once per connected item (or once with empty input when
// the node has no connections).
type Code struct{}

// Kind returns flow.KindCode.
func (Code) Kind() flow.Kind { return flow.KindCode }

// CanExecute requires a task description.
func (Code) CanExecute(node flow.Node, _ flow.ConnectedInput) bool {
	return strings.TrimSpace(node.Data.Prompt) != ""
}

// Execute generates code once, then executes it per input item. Each
// run's input arrives through an input_data variable prepended to the
// generated code as an escaped string literal. Interpreter run failures
// are in-band: a failing item carries its error text instead of output,
// without aborting the remaining items.
func (c Code) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	code, packages, err := c.generate(ctx, env, node, input)
	if err != nil {
		return nil, err
	}

	if len(input.Items) == 0 {
		res, err := env.Services.ExecuteCode(ctx, withInputData("", code), packages)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return nil, &flow.GraphError{Message: executionError(res), Code: "EXECUTION_FAILED"}
		}
		return flow.TextOutput(res.Output), nil
	}

	items := make([]flow.DataItem[any], 0, len(input.Items))
	for _, in := range input.Items {
		res, err := env.Services.ExecuteCode(ctx, withInputData(in.Text, code), packages)
		if err != nil {
			return nil, err
		}

		text := res.Output
		if !res.Success {
			text = "Error: " + executionError(res)
		}
		items = append(items, flow.DataItem[any]{Value: res, Text: text})
	}
	return flow.ItemsOutput(&flow.Data[any]{Items: items}), nil
}

// generate runs the single code-generation chat call and decodes the
// forced tool response.
func (Code) generate(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (code string, packages []string, err error) {
	resp, err := env.Services.Chat(ctx, client.ChatRequest{
		Model:     node.Data.Model,
		System:    codeSystem,
		Messages:  []client.Message{{Role: client.RoleUser, Content: composeTask(input, node.Data.Prompt)}},
		Tools:     []client.ToolSpec{submitCodeTool},
		ForceTool: submitCodeTool.Name,
	})
	if err != nil {
		return "", nil, err
	}

	for _, call := range resp.ToolCalls {
		if call.Name != submitCodeTool.Name {
			continue
		}
		code, _ = call.Input["code"].(string)
		if raw, ok := call.Input["packages"].([]interface{}); ok {
			for _, p := range raw {
				if s, ok := p.(string); ok {
					packages = append(packages, s)
				}
			}
		}
		break
	}

	if strings.TrimSpace(code) == "" {
		return "", nil, &flow.GraphError{Message: "model did not return code through the tool call", Code: "NO_CODE"}
	}
	return code, packages, nil
}

// withInputData prepends the input_data assignment as an escaped string
// literal ahead of the generated code.
func withInputData(inputText, code string) string {
	return "input_data = " + strconv.Quote(inputText) + "\n\n" + code
}

func executionError(res client.ExecutionResult) string {
	if res.Error != "" {
		return res.Error
	}
	return "code execution failed"
}
