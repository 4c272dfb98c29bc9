package nodes

import (
	"context"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
)

// Translate renders each connected item into the target language
// independently, preserving item order and count.
type Translate struct{}

// Kind returns flow.KindTranslate.
func (Translate) Kind() flow.Kind { return flow.KindTranslate }

// CanExecute requires a target language and connected input.
func (Translate) CanExecute(node flow.Node, input flow.ConnectedInput) bool {
	return strings.TrimSpace(node.Data.TargetLang) != "" && !input.IsEmpty()
}

// Execute translates per item: three connected items produce exactly
// three output items, in input order. A failure on any item fails the
// whole execution rather than emitting a partial result.
func (Translate) Execute(ctx context.Context, env flow.Env, node flow.Node, input flow.ConnectedInput) (*flow.NodeOutput, error) {
	lang := strings.TrimSpace(node.Data.TargetLang)

	items := make([]flow.DataItem[any], 0, len(input.Items))
	for _, in := range input.Items {
		translated, err := env.Services.Translate(ctx, lang, in.Text)
		if err != nil {
			return nil, err
		}
		items = append(items, flow.DataItem[any]{Value: translated, Text: translated})
	}
	return flow.ItemsOutput(&flow.Data[any]{Items: items}), nil
}
