package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanExportsCallerAttributes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	if err := InitOpenTelemetry(Config{ServiceName: "rentdesk-test", Exporter: exporter}); err != nil {
		t.Fatalf("InitOpenTelemetry: %v", err)
	}

	ctx := WithCaller(context.Background(), "usr_1", "cmp_1")
	ctx = WithRequestID(ctx, "req-1")

	ctx, span := StartSpan(ctx, "test", "tool.call", attribute.String("tool.name", "list_properties"))
	if GetTraceID(ctx) == "" {
		t.Error("trace ID was not stored on the context")
	}
	Fail(span, errors.New("boom"))
	Fail(span, nil)
	span.End()

	t.Cleanup(func() {
		if err := ShutdownOpenTelemetry(context.Background()); err != nil {
			t.Errorf("ShutdownOpenTelemetry: %v", err)
		}
	})

	// The in-memory exporter drops its spans on shutdown, so flush instead.
	if err := FlushOpenTelemetry(context.Background()); err != nil {
		t.Fatalf("FlushOpenTelemetry: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	got := spans[0]
	if got.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", got.Status.Code)
	}
	if got.SpanContext.TraceID().String() != GetTraceID(ctx) {
		t.Error("context trace ID does not match the exported span")
	}

	want := map[attribute.Key]string{
		"tool.name":  "list_properties",
		"enduser.id": "usr_1",
		"company.id": "cmp_1",
		"request.id": "req-1",
	}
	for _, kv := range got.Attributes {
		if v, ok := want[kv.Key]; ok {
			if kv.Value.AsString() != v {
				t.Errorf("%s = %q, want %q", kv.Key, kv.Value.AsString(), v)
			}
			delete(want, kv.Key)
		}
	}
	if len(want) > 0 {
		t.Errorf("missing attributes: %v", want)
	}
}

func TestStartSpanKeepsExistingTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "upstream-trace")
	ctx, span := StartSpan(ctx, "test", "noop")
	defer span.End()

	if got := GetTraceID(ctx); got != "upstream-trace" {
		t.Errorf("trace ID overwritten: %s", got)
	}
}

func TestShutdownWithoutInit(t *testing.T) {
	if err := FlushOpenTelemetry(context.Background()); err != nil {
		t.Errorf("unexpected flush error: %v", err)
	}
	if err := ShutdownOpenTelemetry(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
