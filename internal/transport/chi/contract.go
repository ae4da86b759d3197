package chi

import (
	"context"

	"github.com/kailas-cloud/wsdlab/internal/domain/correlation"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
	"github.com/kailas-cloud/wsdlab/internal/domain/sense"
	batchuc "github.com/kailas-cloud/wsdlab/internal/usecase/batch"
	evaluationuc "github.com/kailas-cloud/wsdlab/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/wsdlab/internal/usecase/health"
	leskuc "github.com/kailas-cloud/wsdlab/internal/usecase/lesk"
)

// Disambiguator scores a sentence in one mode.
type Disambiguator interface {
	Disambiguate(ctx context.Context, mode sense.Mode, req leskuc.Request) (sense.Result, error)
}

// Evaluator runs similarity evaluations.
type Evaluator interface {
	Correlate(ctx context.Context, keys []gold.DatasetKey, persist bool) (evaluationuc.Report, error)
	Sweep(ctx context.Context, key gold.DatasetKey, label string) (correlation.Sweep, error)
	Similarity(ctx context.Context, a, b string) (correlation.Result, error)
}

// BatchRunner runs corpus batches.
type BatchRunner interface {
	Run(ctx context.Context, req batchuc.Request) (*run.Run, error)
	MaxLimit() int
}

// RunReader reads stored runs.
type RunReader interface {
	Get(ctx context.Context, id string) (*run.Run, error)
	List(ctx context.Context, limit int) ([]run.Summary, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
