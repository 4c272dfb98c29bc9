package nodes

import (
	"context"

	"github.com/dshills/nodecanvas-go/flow"
)

// File extracts plain text from an uploaded file blob.
type File struct{}

// Kind returns flow.KindFile.
func (File) Kind() flow.Kind { return flow.KindFile }

// CanExecute requires an uploaded file. File nodes accept no input edges.
func (File) CanExecute(node flow.Node, _ flow.ConnectedInput) bool {
	return len(node.Data.FileData) > 0
}

func (File) Execute(ctx context.Context, env flow.Env, node flow.Node, _ flow.ConnectedInput) (*flow.NodeOutput, error) {
	text, err := env.Services.ExtractText(ctx, node.Data.FileName, node.Data.FileData)
	if err != nil {
		return nil, err
	}
	return flow.TextOutput(text), nil
}
