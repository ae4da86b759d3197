package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/gold"
	"github.com/kailas-cloud/wsdlab/internal/domain/sense"
	logpkg "github.com/kailas-cloud/wsdlab/internal/logger"
	"github.com/kailas-cloud/wsdlab/internal/version"
	batchuc "github.com/kailas-cloud/wsdlab/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/wsdlab/internal/usecase/health"
	leskuc "github.com/kailas-cloud/wsdlab/internal/usecase/lesk"
)

const (
	maxBodyBytes     = 1 << 20
	defaultRunsLimit = 20
	maxRunsLimit     = 100
	defaultBatchSize = 100
	healthTimeout    = 5 * time.Second
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the wsdlab HTTP API.
type Server struct {
	lesk          Disambiguator
	eval          Evaluator
	batch         BatchRunner
	runs          RunReader
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	lesk Disambiguator,
	eval Evaluator,
	batch BatchRunner,
	runs RunReader,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		lesk:   lesk,
		eval:   eval,
		batch:  batch,
		runs:   runs,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownDataset, http.StatusBadRequest, ErrorResponseCodeUnknownDataset),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrNotConfigured, http.StatusServiceUnavailable, ErrorResponseCodeNotConfigured),
		sentinelHandler(domain.ErrSourceUnavailable, http.StatusBadGateway, ErrorResponseCodeSourceUnavailable),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, ErrorResponseCodeTimeout),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api", func(r gochi.Router) {
		r.Post("/lesk/{mode}", s.Lesk)
		r.Post("/similarity", s.Similarity)
		r.Post("/eval/correlation", s.Correlation)
		r.Post("/eval/sweep", s.Sweep)
		r.Post("/batch/lesk", s.BatchLesk)
		r.Get("/runs", s.ListRuns)
		r.Get("/runs/{id}", s.GetRun)
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "ok",
		Message: "wsdlab: Lesk word-sense disambiguation and similarity evaluation",
	})
}

// Lesk handles POST /api/lesk/{mode}.
func (s *Server) Lesk(w http.ResponseWriter, r *http.Request) {
	var mode sense.Mode
	err := runtime.BindStyledParameterWithOptions("simple", "mode", gochi.URLParam(r, "mode"), &mode,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter mode: "+err.Error())
		return
	}

	var req LeskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.lesk.Disambiguate(r.Context(), mode, leskuc.Request{
		Sentence: req.Sentence,
		Target:   req.Target,
		POS:      derefString(req.POS),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, leskToResponse(mode, res))
}

// Similarity handles POST /api/similarity.
func (s *Server) Similarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	scores, err := s.eval.Similarity(r.Context(), req.Word1, req.Word2)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SimilarityResponse{Word1: req.Word1, Word2: req.Word2, Scores: scores})
}

// Correlation handles POST /api/eval/correlation.
func (s *Server) Correlation(w http.ResponseWriter, r *http.Request) {
	var params CorrelationParams
	err := runtime.BindQueryParameter("form", true, false, "persist", r.URL.Query(), &params.Persist)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter persist: "+err.Error())
		return
	}

	var req CorrelationRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	keys := make([]gold.DatasetKey, 0, len(req.Datasets))
	for _, d := range req.Datasets {
		keys = append(keys, gold.DatasetKey(strings.ToUpper(strings.TrimSpace(d))))
	}

	rep, err := s.eval.Correlate(r.Context(), keys, derefBool(params.Persist))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := CorrelationResponse{Results: rep.Results}
	if rep.RunID != "" {
		resp.RunID = &rep.RunID
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sweep handles POST /api/eval/sweep.
func (s *Server) Sweep(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key := gold.DatasetKey(strings.ToUpper(strings.TrimSpace(req.Dataset)))
	sw, err := s.eval.Sweep(r.Context(), key, req.Embedding)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := SweepResponse{
		Dataset:   string(key),
		Embedding: req.Embedding,
		Aligned:   sw.Aligned(),
		Results:   sw.Labeled(),
	}
	if best, ok := sw.Best(); ok {
		resp.BestAlpha = &best.Alpha
		resp.BestRho = &best.Rho
	}
	writeJSON(w, http.StatusOK, resp)
}

// BatchLesk handles POST /api/batch/lesk.
func (s *Server) BatchLesk(w http.ResponseWriter, r *http.Request) {
	var req BatchLeskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	limit := min(defaultBatchSize, s.batch.MaxLimit())
	if req.Limit != nil {
		limit = *req.Limit
	}

	rn, err := s.batch.Run(r.Context(), batchuc.Request{
		Target: req.Target,
		Mode:   sense.Mode(req.Mode),
		POS:    derefString(req.POS),
		Limit:  limit,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rn)
}

// ListRuns handles GET /api/runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	var params ListRunsParams
	err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter limit: "+err.Error())
		return
	}

	limit := defaultRunsLimit
	if params.Limit != nil {
		if *params.Limit <= 0 || *params.Limit > maxRunsLimit {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				fmt.Sprintf("limit must be between 1 and %d", maxRunsLimit))
			return
		}
		limit = *params.Limit
	}

	items, err := s.runs.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RunListResponse{Items: items})
}

// GetRun handles GET /api/runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter id: "+err.Error())
		return
	}

	rn, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rn)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	report := s.health.Check(ctx)

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
		Oracle:  report.Oracle,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid request body: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, msg)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe message. Caller errors are echoed
// in full; everything else collapses to its sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrNotConfigured,
		domain.ErrSourceUnavailable,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func leskToResponse(mode sense.Mode, res sense.Result) LeskResponse {
	candidates := make([]Candidate, len(res.Candidates()))
	for i, c := range res.Candidates() {
		candidates[i] = candidateToResponse(c)
	}

	var best *Candidate
	if b, ok := res.Best(); ok {
		bc := candidateToResponse(b)
		best = &bc
	}

	ctxTokens := res.Context()
	if ctxTokens == nil {
		ctxTokens = []string{}
	}

	return LeskResponse{
		Mode:       string(mode),
		Target:     res.Target(),
		Context:    ctxTokens,
		Best:       best,
		Candidates: candidates,
	}
}

func candidateToResponse(c sense.Candidate) Candidate {
	overlaps := c.Overlaps()
	if overlaps == nil {
		overlaps = []string{}
	}
	out := Candidate{
		ID:       c.ID(),
		Gloss:    c.Gloss(),
		Forms:    c.Forms(),
		Size:     c.Size(),
		Overlap:  c.OverlapCount(),
		Overlaps: overlaps,
	}
	if u := c.URL(); u != "" {
		out.URL = &u
	}
	return out
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
