package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/nodecanvas-go/flow"
)

// CSV parses an uploaded delimited file locally. It is the only kind
// with no collaborator call: delimiter sniffing and quote-aware splitting
// happen in process.
//
// The first row is treated as the header; every following row becomes one
// output item whose text lists "Header: value" pairs.
type CSV struct{}

// Kind returns flow.KindCSV.
func (CSV) Kind() flow.Kind { return flow.KindCSV }

// CanExecute requires an uploaded file. CSV nodes accept no input edges.
func (CSV) CanExecute(node flow.Node, _ flow.ConnectedInput) bool {
	return len(node.Data.FileData) > 0
}

func (CSV) Execute(_ context.Context, _ flow.Env, node flow.Node, _ flow.ConnectedInput) (*flow.NodeOutput, error) {
	rows, _ := flow.ParseCSV(string(node.Data.FileData))
	if len(rows) < 2 {
		return nil, &flow.GraphError{Message: "file contains no data rows", Code: "EMPTY_CSV"}
	}

	header := rows[0]
	items := make([]flow.DataItem[any], 0, len(rows)-1)
	for _, row := range rows[1:] {
		items = append(items, flow.DataItem[any]{Value: row, Text: formatRow(header, row)})
	}
	return flow.ItemsOutput(&flow.Data[any]{Items: items}), nil
}

// formatRow pairs each cell with its column header. Rows longer than the
// header get positional column names.
func formatRow(header, row []string) string {
	lines := make([]string, 0, len(row))
	for i, cell := range row {
		name := fmt.Sprintf("Column %d", i+1)
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			name = strings.TrimSpace(header[i])
		}
		lines = append(lines, name+": "+cell)
	}
	return strings.Join(lines, "\n")
}
