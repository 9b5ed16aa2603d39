package aitools

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/harun/rentdesk/pkg/schema"
)

// handlerSpy records calls to a tool handler.
type handlerSpy struct {
	mock.Mock
}

func (s *handlerSpy) Handle(ctx context.Context, args any, ec ExecutionContext) (any, error) {
	called := s.Called(args, ec)
	return called.Get(0), called.Error(1)
}

// recordingAudit keeps every audit event it receives.
type recordingAudit struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (r *recordingAudit) Record(_ context.Context, event AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAudit) phases() []AuditPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditPhase, len(r.events))
	for i, event := range r.events {
		out[i] = event.Phase
	}
	return out
}

func staffContext() ExecutionContext {
	return ExecutionContext{UserID: "usr_1", CompanyID: "cmp_1", Role: RoleManager}
}

func readTool(name string, handler Handler) Definition {
	return Definition{
		Name:         name,
		Description:  "Read " + name,
		Mutability:   ReadOnly,
		AllowedRoles: StaffRoles,
		Parameters:   schema.Object(),
		Execute:      handler,
	}
}

func writeTool(name string, handler Handler) Definition {
	return Definition{
		Name:         name,
		Description:  "Change " + name,
		Mutability:   Mutable,
		AllowedRoles: StaffRoles,
		Parameters:   schema.Object(),
		Execute:      handler,
	}
}

func echoHandler(_ context.Context, args any, _ ExecutionContext) (any, error) {
	return args, nil
}

func fillerTools(n int) []Definition {
	defs := make([]Definition, n)
	for i := range defs {
		defs[i] = readTool(fmt.Sprintf("filler_tool_%03d", i), echoHandler)
		defs[i].Description = fmt.Sprintf("Filler read-only tool number %d", i)
	}
	return defs
}

func newExecutor(t *testing.T, mode Mode, audit AuditSink, defs ...Definition) *Executor {
	t.Helper()
	catalog, err := NewCatalog(ProviderFunc(func() []Definition { return defs }))
	require.NoError(t, err)

	executor, err := NewExecutor(ExecutorConfig{
		Catalog: catalog,
		Modes:   StaticMode(mode),
		Audit:   audit,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return executor
}

func newRegistry(t *testing.T, mode Mode, defs ...Definition) *Registry {
	t.Helper()
	executor := newExecutor(t, mode, nil, defs...)
	registry, err := NewRegistry(RegistryConfig{
		Catalog:  executor.catalog,
		Executor: executor,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return registry
}
