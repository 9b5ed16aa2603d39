package aitools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harun/rentdesk/internal/observability"
	"github.com/harun/rentdesk/internal/tracing"
)

const tracerName = "rentdesk/aitools"

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Catalog *Catalog
	// Modes is consulted on every call. A nil provider means ModeNone.
	Modes ModeProvider
	// Audit receives started/finished/rejected events. Defaults to NopAudit.
	Audit  AuditSink
	Logger zerolog.Logger
}

// Executor is the single path through which tools run. Every caller, the
// HTTP endpoint and the LLM loop alike, goes through Execute.
type Executor struct {
	catalog *Catalog
	modes   ModeProvider
	audit   AuditSink
	logger  zerolog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("executor requires a catalog")
	}
	if cfg.Audit == nil {
		cfg.Audit = NopAudit
	}
	observability.EnsureRegistered()

	return &Executor{
		catalog: cfg.Catalog,
		modes:   cfg.Modes,
		audit:   cfg.Audit,
		logger:  cfg.Logger.With().Str("component", "aitools.executor").Logger(),
	}, nil
}

// Mode returns the mode currently in effect.
func (e *Executor) Mode() Mode {
	if e.modes == nil {
		return ModeNone
	}
	return e.modes.CurrentMode()
}

// Execute runs the named tool for ec with raw arguments. Rejections are
// returned as *Error; errors from the tool's handler are returned as-is.
func (e *Executor) Execute(ctx context.Context, name string, rawArgs any, ec ExecutionContext) (any, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "aitools.execute",
		attribute.String("tool.name", name),
		attribute.String("user.role", string(ec.Role)),
	)
	defer span.End()

	logger := tracing.LoggerFromContext(ctx, e.logger).With().
		Str("tool", name).
		Str("user_id", ec.UserID).
		Logger()

	mode := e.Mode()
	base := AuditEvent{
		Tool:      name,
		UserID:    ec.UserID,
		CompanyID: ec.CompanyID,
		Role:      ec.Role,
		Mode:      mode,
	}

	def, ok := e.catalog.DefinitionByName(name)
	if !ok {
		return nil, e.reject(ctx, logger, base, notFound(name))
	}

	if reason := gate(mode, def, ec); reason != "" {
		span.SetAttributes(attribute.String("tool.rejection", reason))
		return nil, e.reject(ctx, logger, base, forbidden(name, reason))
	}

	args, rejection := validateArguments(def, rawArgs)
	if rejection != nil {
		return nil, e.reject(ctx, logger, base, rejection)
	}

	callID, _ := gonanoid.New()
	span.SetAttributes(attribute.String("tool.call_id", callID))
	base.CallID = callID

	started := base
	started.Phase = AuditStarted
	started.Args = auditArgs(args)
	e.record(ctx, logger, started)

	logger.Debug().Str("call_id", callID).Str("mode", mode.String()).Msg("Executing tool")

	start := time.Now()
	result, err := def.Execute(ctx, args, ec)
	if err == nil {
		result, err = sanitizeResult(name, result)
	}
	elapsed := time.Since(start)

	finished := base
	finished.Duration = elapsed
	if err != nil {
		observability.RecordToolExecution(name, elapsed, false)
		tracing.Fail(span, err)

		finished.Phase = AuditFailed
		finished.Error = err.Error()
		e.record(ctx, logger, finished)

		logger.Warn().Err(err).Str("call_id", callID).Dur("duration", elapsed).Msg("Tool execution failed")
		return nil, err
	}

	observability.RecordToolExecution(name, elapsed, true)
	finished.Phase = AuditSucceeded
	e.record(ctx, logger, finished)

	logger.Info().Str("call_id", callID).Dur("duration", elapsed).Msg("Tool executed")
	return result, nil
}

// gate returns the rejection reason for a call, or "" if it may proceed.
func gate(mode Mode, def *Definition, ec ExecutionContext) string {
	if !mode.Allows(def.Mutability) {
		if mode == ModeReadOnly {
			return ReasonModeReadOnly
		}
		return ReasonModeDisabled
	}
	if !def.Allows(ec.Role) {
		return ReasonRole
	}
	if strings.TrimSpace(ec.UserID) == "" {
		return ReasonMissingUser
	}
	return ""
}

// validateArguments checks raw arguments against the tool's own schema. If
// the first pass fails, nulls the schema rejects are treated as omitted
// fields and the schema is tried once more; the first error is reported when
// both fail.
func validateArguments(def *Definition, raw any) (any, *Error) {
	args, err := coerceArguments(raw)
	if err != nil {
		return nil, invalidArguments(def.Name, fmt.Errorf("decode arguments: %w", err))
	}
	if def.Parameters == nil {
		return args, nil
	}

	parsed, err := def.Parameters.Parse(args)
	if err == nil {
		return parsed, nil
	}

	if normalized, changed := NormalizeNulls(def.Parameters, args); changed {
		if retried, retryErr := def.Parameters.Parse(normalized); retryErr == nil {
			return retried, nil
		}
	}
	return nil, invalidArguments(def.Name, err)
}

func sanitizeResult(name string, result any) (any, error) {
	clean, err := Sanitize(result)
	if err != nil {
		return nil, fmt.Errorf("sanitize %s result: %w", name, err)
	}
	return clean, nil
}

func auditArgs(args any) any {
	clean, err := Sanitize(args)
	if err != nil {
		return nil
	}
	return clean
}

func (e *Executor) reject(ctx context.Context, logger zerolog.Logger, base AuditEvent, rejection *Error) error {
	label := base.Tool
	if rejection.Kind == ErrNotFound {
		label = "unknown"
	}
	observability.RecordToolRejection(label, rejection.Reason)

	event := base
	event.Phase = AuditRejected
	event.Reason = rejection.Reason
	if rejection.Kind == ErrValidation {
		event.Error = rejection.Message
	}
	e.record(ctx, logger, event)

	logger.Warn().
		Str("reason", rejection.Reason).
		Str("mode", base.Mode.String()).
		Str("role", string(base.Role)).
		Msg("Tool call rejected")
	return rejection
}

// record forwards an event to the audit sink. Sink failures never change
// the outcome of the call.
func (e *Executor) record(ctx context.Context, logger zerolog.Logger, event AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("phase", string(event.Phase)).Msg("Audit sink panicked")
		}
	}()
	e.audit.Record(ctx, event)
}
