package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestPropagateToLogger(t *testing.T) {
	ctx := context.Background()
	ctx = WithTraceID(ctx, "trace-123")
	ctx = WithRequestID(ctx, "req-456")
	ctx = WithCaller(ctx, "usr_789", "cmp_abc")

	var buf bytes.Buffer
	logger := PropagateToLogger(ctx, zerolog.New(&buf))
	logger.Info().Msg("test message")

	output := buf.String()
	for _, want := range []string{"trace-123", "req-456", "usr_789", "cmp_abc"} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not in log output", want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-xyz")

	var buf bytes.Buffer
	logger := LoggerFromContext(ctx, zerolog.New(&buf))
	logger.Info().Msg("test")

	if !strings.Contains(buf.String(), "trace-xyz") {
		t.Error("Trace ID not in log output")
	}
	if strings.Contains(buf.String(), "user_id") {
		t.Error("Empty user ID should not be logged")
	}
}

func TestMergeContextNoOverwrite(t *testing.T) {
	source := WithCaller(WithTraceID(context.Background(), "trace-source"), "usr_source", "cmp_source")
	target := WithTraceID(context.Background(), "trace-target")

	merged := MergeContext(target, source)

	if GetTraceID(merged) != "trace-target" {
		t.Error("Trace ID was overwritten")
	}
	if GetUserID(merged) != "usr_source" {
		t.Error("User ID not merged")
	}
}

func TestDetach(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	parent = WithTraceID(parent, "trace-detached")
	cancel()

	detached := Detach(parent)

	if detached.Err() != nil {
		t.Error("Detached context should not be cancelled")
	}
	if GetTraceID(detached) != "trace-detached" {
		t.Error("Trace ID not carried over")
	}
}
