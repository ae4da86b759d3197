package chi

import (
	"github.com/kailas-cloud/wsdlab/internal/domain/correlation"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/domain/run"
	"github.com/kailas-cloud/wsdlab/internal/transport/oracle"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed  ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnknownDataset    ErrorResponseCode = "unknown_dataset"
	ErrorResponseCodeNotFound          ErrorResponseCode = "not_found"
	ErrorResponseCodeNotConfigured     ErrorResponseCode = "not_configured"
	ErrorResponseCodeSourceUnavailable ErrorResponseCode = "source_unavailable"
	ErrorResponseCodeTimeout           ErrorResponseCode = "timeout"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// LeskRequest is the body of POST /api/lesk/{mode}.
type LeskRequest struct {
	Sentence string  `json:"sentence"`
	Target   string  `json:"target"`
	POS      *string `json:"pos,omitempty"`
}

// Candidate is one scored sense.
type Candidate struct {
	ID       string   `json:"id"`
	Gloss    string   `json:"gloss"`
	Forms    []string `json:"forms,omitempty"`
	Size     int      `json:"size"`
	Overlap  int      `json:"overlap"`
	Overlaps []string `json:"overlaps"`
	URL      *string  `json:"url,omitempty"`
}

// LeskResponse is a ranked disambiguation result.
type LeskResponse struct {
	Mode       string      `json:"mode"`
	Target     string      `json:"target"`
	Context    []string    `json:"context"`
	Best       *Candidate  `json:"best"`
	Candidates []Candidate `json:"candidates"`
}

// SimilarityRequest is the body of POST /api/similarity.
type SimilarityRequest struct {
	Word1 string `json:"word1"`
	Word2 string `json:"word2"`
}

// SimilarityResponse maps method label to score, null when unavailable.
type SimilarityResponse struct {
	Word1  string             `json:"word1"`
	Word2  string             `json:"word2"`
	Scores correlation.Result `json:"scores"`
}

// CorrelationRequest is the body of POST /api/eval/correlation.
type CorrelationRequest struct {
	Datasets []string `json:"datasets,omitempty"`
}

// CorrelationResponse maps dataset to method to coefficient.
type CorrelationResponse struct {
	Results map[gold.DatasetKey]correlation.Result `json:"results"`
	RunID   *string                                `json:"run_id,omitempty"`
}

// SweepRequest is the body of POST /api/eval/sweep.
type SweepRequest struct {
	Dataset   string `json:"dataset"`
	Embedding string `json:"embedding"`
}

// SweepResponse is a convex blend sweep.
type SweepResponse struct {
	Dataset   string             `json:"dataset"`
	Embedding string             `json:"embedding"`
	Aligned   int                `json:"aligned"`
	Results   correlation.Result `json:"results"`
	BestAlpha *float64           `json:"best_alpha"`
	BestRho   *float64           `json:"best_rho"`
}

// BatchLeskRequest is the body of POST /api/batch/lesk.
type BatchLeskRequest struct {
	Target string  `json:"target"`
	Mode   string  `json:"mode"`
	POS    *string `json:"pos,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

// RunListResponse lists stored runs, newest first.
type RunListResponse struct {
	Items []run.Summary `json:"items"`
}

// ListRunsParams are the query parameters of GET /api/runs.
type ListRunsParams struct {
	Limit *int `form:"limit" json:"limit,omitempty"`
}

// CorrelationParams are the query parameters of POST /api/eval/correlation.
type CorrelationParams struct {
	Persist *bool `form:"persist" json:"persist,omitempty"`
}

// HealthResponse is the health report.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
	Oracle  *oracle.Status    `json:"oracle,omitempty"`
}

// StatusResponse is the root endpoint body.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
