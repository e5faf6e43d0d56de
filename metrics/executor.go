package metrics

import (
	"context"

	"github.com/xiansai/agent-sdk-go/engine"
)

// ActivityReport is the activity name backing Service.reportAsync, per
// spec.md §4.4 ("Metrics... routes through [the executor]").
const ActivityReport = "metrics.Report"

// Service routes UsageEvents through the Context-Aware Executor to backend,
// logging and swallowing failures per spec.md §4.9 ("Failures are swallowed
// (logged WARN) — never surfaced to caller").
type Service struct {
	backend Backend
	logger  Logger
}

// Logger is the minimal logging capability Service needs, satisfied by
// telemetry.Logger.
type Logger interface {
	Warn(ctx context.Context, msg string, keyvals ...any)
}

// NewService constructs a Service posting through backend.
func NewService(backend Backend, logger Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

func (s *Service) reportAsync(ctx context.Context, ev UsageEvent) {
	_, err := engine.Execute(ctx, ActivityReport, ev, func(ctx context.Context, ev UsageEvent) (struct{}, error) {
		return struct{}{}, s.backend.Report(ctx, ev)
	})
	if err != nil && s.logger != nil {
		s.logger.Warn(ctx, "usage report failed", "workflow_id", ev.WorkflowID, "error", err)
	}
}

// Activities returns the ActivityDefinition the registry must register for
// backend to be reachable from inside a workflow.
func Activities(backend Backend) []engine.ActivityDefinition {
	return []engine.ActivityDefinition{
		{Name: ActivityReport, Handler: engine.ActivityHandlerFor(func(ctx context.Context, ev UsageEvent) (struct{}, error) {
			return struct{}{}, backend.Report(ctx, ev)
		})},
	}
}
