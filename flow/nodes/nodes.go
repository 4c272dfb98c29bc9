// Package nodes implements the execute handlers for every node kind.
//
// Each handler follows the same contract: a precondition gate deciding
// whether the node can run at all, then input resolution, exactly one
// collaborator call, and a returned NodeOutput. Handlers never write node
// state; the Executor owns all commits.
package nodes

import (
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
)

// All returns one handler per supported node kind, ready for
// Executor.RegisterAll.
func All() []flow.Handler {
	return []flow.Handler{
		Prompt{},
		Search{},
		Translate{},
		File{},
		Image{},
		Audio{},
		CSV{},
		Repository{},
		Code{},
		Rewrite{},
	}
}

// composeTask joins the node's labeled connected input with its own
// free-text instructions into one model-facing block. Either part may be
// empty; the result is trimmed.
func composeTask(input flow.ConnectedInput, instructions string) string {
	blocks := make([]string, 0, 2)
	if labeled := input.Labeled(); labeled != "" {
		blocks = append(blocks, labeled)
	}
	if s := strings.TrimSpace(instructions); s != "" {
		blocks = append(blocks, s)
	}
	return strings.Join(blocks, "\n\n")
}
