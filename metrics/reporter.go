package metrics

import (
	"context"

	"github.com/xiansai/agent-sdk-go/platform/transport"
	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// Backend is the capability a usage-reporting sink provides. ServerReporter
// is the production implementation; tests may substitute a recording double.
type Backend interface {
	Report(ctx context.Context, ev UsageEvent) error
}

// ServerReporter implements Backend against /api/agent/usage/report, per
// spec.md §4.9/§6.
type ServerReporter struct {
	transport *transport.Transport
}

// NewServerReporter constructs a ServerReporter using t for requests.
func NewServerReporter(t *transport.Transport) *ServerReporter {
	return &ServerReporter{transport: t}
}

// Report implements Backend.
func (r *ServerReporter) Report(ctx context.Context, ev UsageEvent) error {
	_, err := r.transport.Post(ctx, "/api/agent/usage/report", ev.TenantID, ev, nil)
	if err != nil {
		return sdkerr.New(sdkerr.Connection, "metrics.Report", err)
	}
	return nil
}
