// Package probe implements the health-check harness: one probe per external
// service, each performing a single representative operation and reporting a
// pass/fail result, plus a Runner that executes registered probes in order.
package probe

import "context"

// Probe performs a single health check against one external service.
// Check never returns an error: construction failures and operation failures
// are both captured in the returned CheckResult.
type Probe interface {
	Name() string
	Check(ctx context.Context) CheckResult
}
