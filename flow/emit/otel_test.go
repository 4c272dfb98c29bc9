package emit

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingEmitter(t *testing.T) (*OTelEmitter, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return NewOTelEmitter(otel.Tracer("test")), exporter
}

// attributeMap converts span attributes to a map for easy assertions.
func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{})
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func TestOTelEmitterEmit(t *testing.T) {
	emitter, exporter := newRecordingEmitter(t)

	emitter.Emit(Event{
		WorkflowID: "wf-1",
		NodeID:     "n-42",
		Kind:       "search",
		Msg:        "node_end",
		Meta: map[string]interface{}{
			"items":       3,
			"duration_ms": int64(812),
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name != "node_end" {
		t.Errorf("span name = %q, want %q", span.Name, "node_end")
	}
	if !span.EndTime.After(span.StartTime) {
		t.Error("span was not ended")
	}

	attrs := attributeMap(span.Attributes)
	if got := attrs["nodecanvas.workflow_id"]; got != "wf-1" {
		t.Errorf("workflow_id = %v, want %q", got, "wf-1")
	}
	if got := attrs["nodecanvas.node_id"]; got != "n-42" {
		t.Errorf("node_id = %v, want %q", got, "n-42")
	}
	if got := attrs["nodecanvas.node_kind"]; got != "search" {
		t.Errorf("node_kind = %v, want %q", got, "search")
	}
	if got := attrs["nodecanvas.items"]; got != int64(3) {
		t.Errorf("items = %v, want 3", got)
	}
	if got := attrs["nodecanvas.duration_ms"]; got != int64(812) {
		t.Errorf("duration_ms = %v, want 812", got)
	}
}

func TestOTelEmitterErrorStatus(t *testing.T) {
	emitter, exporter := newRecordingEmitter(t)

	emitter.Emit(Event{
		WorkflowID: "wf-1",
		NodeID:     "n-1",
		Kind:       "prompt",
		Msg:        "node_error",
		Meta:       map[string]interface{}{"error": "rate limited"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Status.Code != codes.Error {
		t.Errorf("status code = %v, want %v", span.Status.Code, codes.Error)
	}
	if span.Status.Description != "rate limited" {
		t.Errorf("status description = %q, want %q", span.Status.Description, "rate limited")
	}
	if len(span.Events) == 0 {
		t.Error("expected a recorded error event")
	}
}

func TestOTelEmitterMetadataTypes(t *testing.T) {
	emitter, exporter := newRecordingEmitter(t)

	emitter.Emit(Event{
		WorkflowID: "wf-1",
		Msg:        "node_end",
		Meta: map[string]interface{}{
			"string_val":   "hello",
			"int_val":      42,
			"int64_val":    int64(99),
			"float64_val":  3.14,
			"bool_val":     true,
			"duration_val": 250 * time.Millisecond,
			"other_val":    []string{"a", "b"},
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attributeMap(spans[0].Attributes)

	if got := attrs["nodecanvas.string_val"]; got != "hello" {
		t.Errorf("string_val = %v", got)
	}
	if got := attrs["nodecanvas.int_val"]; got != int64(42) {
		t.Errorf("int_val = %v", got)
	}
	if got := attrs["nodecanvas.int64_val"]; got != int64(99) {
		t.Errorf("int64_val = %v", got)
	}
	if got := attrs["nodecanvas.float64_val"]; got != 3.14 {
		t.Errorf("float64_val = %v", got)
	}
	if got := attrs["nodecanvas.bool_val"]; got != true {
		t.Errorf("bool_val = %v", got)
	}
	if got := attrs["nodecanvas.duration_val"]; got != int64(250) {
		t.Errorf("duration_val = %v, want 250 ms", got)
	}
	if got := attrs["nodecanvas.other_val"]; got != "[a b]" {
		t.Errorf("other_val = %v, want stringified fallback", got)
	}
}

func TestOTelEmitterNilMeta(t *testing.T) {
	emitter, exporter := newRecordingEmitter(t)

	emitter.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Kind: "prompt", Msg: "node_start"})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := attributeMap(spans[0].Attributes)
	if got := attrs["nodecanvas.workflow_id"]; got != "wf-1" {
		t.Errorf("workflow_id = %v, want %q", got, "wf-1")
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("no error status expected without an error meta field")
	}
}

func TestOTelEmitterFlush(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))
	emitter.Emit(Event{WorkflowID: "wf-1", NodeID: "n-1", Msg: "node_start"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := emitter.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if got := len(exporter.GetSpans()); got != 1 {
		t.Errorf("expected 1 span after flush, got %d", got)
	}
}
