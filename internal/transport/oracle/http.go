package oracle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kailas-cloud/wsdlab/internal/metrics"
)

const maxResponseBytes = 64 << 10

// HTTPEndpoint asks a similarity service: GET <base>?w1=<a>&w2=<b>.
type HTTPEndpoint struct {
	base    string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPEndpoint creates an HTTP strategy. client may be nil.
func NewHTTPEndpoint(base string, timeout time.Duration, client *http.Client) *HTTPEndpoint {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPEndpoint{base: base, client: client, timeout: timeout}
}

// Name returns the endpoint URL.
func (e *HTTPEndpoint) Name() string { return e.base }

// Similarity queries the endpoint under the configured timeout.
func (e *HTTPEndpoint) Similarity(ctx context.Context, a, b string) (score float64, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternal("oracle_http", time.Since(start).Seconds(), err) }()

	u, err := url.Parse(e.base)
	if err != nil {
		return 0, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("w1", a)
	q.Set("w2", b)
	u.RawQuery = q.Encode()

	body, err := e.get(ctx, u.String())
	if err != nil {
		return 0, err
	}
	return parseScore(body)
}

// Check issues a bare GET against the endpoint; any non-5xx answer counts as reachable.
func (e *HTTPEndpoint) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.base, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func (e *HTTPEndpoint) get(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}
