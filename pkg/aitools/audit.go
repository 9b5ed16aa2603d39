package aitools

import (
	"context"
	"time"

	"github.com/harun/rentdesk/internal/observability"
)

// AuditPhase is the stage of a tool call an AuditEvent describes.
type AuditPhase string

const (
	AuditStarted   AuditPhase = "started"
	AuditSucceeded AuditPhase = "succeeded"
	AuditFailed    AuditPhase = "failed"
	AuditRejected  AuditPhase = "rejected"
)

// AuditEvent is one structured audit record.
type AuditEvent struct {
	Phase     AuditPhase
	CallID    string
	Tool      string
	UserID    string
	CompanyID string
	Role      Role
	Mode      Mode
	// Args are the parsed arguments with sensitive fields removed. Set on
	// started events.
	Args     any
	Duration time.Duration
	Reason   string
	Error    string
}

// AuditSink receives audit events. Sinks must not block for long; a panic
// in a sink is recovered and does not affect the call.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}

// AuditFunc adapts a function to AuditSink.
type AuditFunc func(ctx context.Context, event AuditEvent)

// Record implements AuditSink.
func (f AuditFunc) Record(ctx context.Context, event AuditEvent) { f(ctx, event) }

// NopAudit discards every event.
var NopAudit AuditSink = AuditFunc(func(context.Context, AuditEvent) {})

// AuditLog writes tool events to the process audit log.
type AuditLog struct {
	Logger *observability.AuditLogger
}

// Record implements AuditSink.
func (a AuditLog) Record(ctx context.Context, event AuditEvent) {
	logger := a.Logger
	if logger == nil {
		logger = observability.GetAuditLogger()
	}

	metadata := map[string]interface{}{
		"call_id": event.CallID,
		"role":    string(event.Role),
		"mode":    event.Mode.String(),
	}
	if event.CompanyID != "" {
		metadata["company_id"] = event.CompanyID
	}
	if event.Args != nil {
		metadata["args"] = event.Args
	}
	if event.Phase != AuditStarted && event.Phase != AuditRejected {
		metadata["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.Reason != "" {
		metadata["reason"] = event.Reason
	}
	if event.Error != "" {
		metadata["error"] = event.Error
	}

	logger.Record(ctx, observability.AuditEvent{
		Type:     observability.AuditTypeTool,
		Actor:    event.UserID,
		Action:   "execute:" + event.Tool,
		Status:   string(event.Phase),
		Metadata: metadata,
	})
}
