// Package flow provides the core data-flow graph for node-based workflows.
package flow

import "strings"

// DefaultSeparator joins item texts when a Data has no precomputed Text.
const DefaultSeparator = "\n\n---\n\n"

// DataItem pairs a structured value with its pre-rendered text form.
//
// The Text field is authored when the item is created (by whichever node
// produced it) and is the only representation consumers ever read. It is
// never re-derived from Value.
//
// Type parameter T is the structured value type (a search result, a
// spreadsheet row, a translated string, ...).
type DataItem[T any] struct {
	// Value is the structured result carried for programmatic consumers.
	Value T `json:"value"`

	// Text is the human/LLM-readable rendering of Value, authored at
	// creation time.
	Text string `json:"text"`
}

// Data is the payload carried from a producer node to its consumers.
//
// A Data either has a non-empty Items list, an explicit Text shortcut, or
// both. A Data with neither is treated everywhere as "no output",
// identically to a nil Data.
type Data[T any] struct {
	// Text, when set, is the precomputed combined text and short-circuits
	// joining Items.
	Text string `json:"text,omitempty"`

	// Items is the ordered list of payload items.
	Items []DataItem[T] `json:"items"`
}

// IsEmpty reports whether d carries no output at all.
// A nil Data is empty.
func (d *Data[T]) IsEmpty() bool {
	return d == nil || (d.Text == "" && len(d.Items) == 0)
}

// DataText returns the canonical text form of d using DefaultSeparator.
//
// Rules:
//   - nil Data returns "".
//   - If d.Text is set it is returned verbatim (short-circuits Items).
//   - Otherwise each item's trimmed Text is joined with the separator.
//
// DataText is pure and never fails.
func DataText[T any](d *Data[T]) string {
	return DataTextSep(d, DefaultSeparator)
}

// DataTextSep is DataText with an explicit separator.
func DataTextSep[T any](d *Data[T], separator string) string {
	if d == nil {
		return ""
	}
	if d.Text != "" {
		return d.Text
	}
	if len(d.Items) == 0 {
		return ""
	}

	parts := make([]string, 0, len(d.Items))
	for _, item := range d.Items {
		parts = append(parts, strings.TrimSpace(item.Text))
	}
	return strings.Join(parts, separator)
}

// TextData wraps a single string as a one-item Data.
//
// The string serves as both value and text, which is the common case for
// nodes producing plain text output.
func TextData(text string) *Data[any] {
	return &Data[any]{
		Items: []DataItem[any]{{Value: text, Text: text}},
	}
}

// NewData builds a Data from parallel values and texts.
//
// Values and texts are paired by index; extra entries on either side are
// dropped. Used by multi-item nodes that render each result independently.
func NewData[T any](values []T, texts []string) *Data[T] {
	n := len(values)
	if len(texts) < n {
		n = len(texts)
	}

	items := make([]DataItem[T], 0, n)
	for i := 0; i < n; i++ {
		items = append(items, DataItem[T]{Value: values[i], Text: texts[i]})
	}
	return &Data[T]{Items: items}
}
