package health

import (
	"context"

	"github.com/kailas-cloud/wsdlab/internal/transport/oracle"
)

// Checker checks availability of one component.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// OracleChecker reports per-endpoint oracle status.
type OracleChecker interface {
	HealthCheck(ctx context.Context) oracle.Status
}
