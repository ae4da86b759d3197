// Package wikipedia is a small MediaWiki API client: article summaries,
// disambiguation options and title search.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/metrics"
)

const maxBodyBytes = 4 << 20

// Page is a resolved article.
type Page struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// DisambiguationError is returned by Resolve when the title names a
// disambiguation page. It matches domain.ErrDisambiguation.
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q is ambiguous (%d options)", e.Title, len(e.Options))
}

// Unwrap links the error to the domain sentinel.
func (e *DisambiguationError) Unwrap() error { return domain.ErrDisambiguation }

// Config holds client settings.
type Config struct {
	BaseURL           string // full api.php URL; derived from Language when empty
	Language          string
	Timeout           time.Duration
	SummarySentences  int
	RequestsPerSecond float64
	UserAgent         string
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// Client talks to one MediaWiki installation.
type Client struct {
	endpoint  string
	sentences int
	timeout   time.Duration
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewClient creates a client. Zero values fall back to English Wikipedia,
// a 5s timeout, 3 summary sentences and 5 requests per second.
func NewClient(cfg Config) *Client {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		lang := cfg.Language
		if lang == "" {
			lang = "en"
		}
		endpoint = "https://" + lang + ".wikipedia.org/w/api.php"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = 3
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "wsdlab/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		endpoint:  endpoint,
		sentences: cfg.SummarySentences,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		http:      cfg.HTTPClient,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    cfg.Logger,
	}
}

type queryResponse struct {
	Query struct {
		Pages []struct {
			Title     string            `json:"title"`
			Missing   bool              `json:"missing"`
			Invalid   bool              `json:"invalid"`
			Extract   string            `json:"extract"`
			FullURL   string            `json:"fullurl"`
			PageProps map[string]string `json:"pageprops"`
		} `json:"pages"`
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
	Parse struct {
		Title string `json:"title"`
		Text  string `json:"text"`
	} `json:"parse"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// Resolve returns the summary of an article, following redirects.
// Errors: domain.ErrPageNotFound, *DisambiguationError, domain.ErrSourceUnavailable.
func (c *Client) Resolve(ctx context.Context, title string) (Page, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Page{}, fmt.Errorf("empty title: %w", domain.ErrInvalidInput)
	}

	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts|info|pageprops"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"exsentences": {strconv.Itoa(c.sentences)},
		"inprop":      {"url"},
		"ppprop":      {"disambiguation"},
		"redirects":   {"1"},
		"titles":      {title},
	}
	var resp queryResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return Page{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return Page{}, fmt.Errorf("%q: %w", title, domain.ErrPageNotFound)
	}

	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid {
		return Page{}, fmt.Errorf("%q: %w", title, domain.ErrPageNotFound)
	}
	if _, ok := p.PageProps["disambiguation"]; ok {
		options, err := c.disambiguationOptions(ctx, p.Title)
		if err != nil {
			return Page{}, err
		}
		return Page{}, &DisambiguationError{Title: p.Title, Options: options}
	}

	return Page{
		Title:   p.Title,
		Summary: strings.TrimSpace(p.Extract),
		URL:     p.FullURL,
	}, nil
}

// Search returns up to limit article titles matching term.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {term},
		"srlimit":  {strconv.Itoa(limit)},
		"srprop":   {""},
	}
	var resp queryResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

// HealthCheck asks the API for site info.
func (c *Client) HealthCheck(ctx context.Context) error {
	var resp queryResponse
	return c.call(ctx, url.Values{"action": {"query"}, "meta": {"siteinfo"}}, &resp)
}

func (c *Client) disambiguationOptions(ctx context.Context, title string) ([]string, error) {
	params := url.Values{
		"action":    {"parse"},
		"page":      {title},
		"prop":      {"text"},
		"redirects": {"1"},
	}
	var resp queryResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return nil, err
	}
	options, err := parseOptions(resp.Parse.Text, title)
	if err != nil {
		return nil, fmt.Errorf("parse disambiguation %q: %w", title, err)
	}
	return options, nil
}

func (c *Client) call(ctx context.Context, params url.Values, out *queryResponse) (err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wikipedia rate limit: %w: %w", err, domain.ErrSourceUnavailable)
	}

	start := time.Now()
	defer func() { metrics.ObserveExternal("wikipedia", time.Since(start).Seconds(), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request: %w: %w", err, domain.ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read wikipedia response: %w: %w", err, domain.ErrSourceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia status %d: %w", resp.StatusCode, domain.ErrSourceUnavailable)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode wikipedia response: %w: %w", err, domain.ErrSourceUnavailable)
	}
	if out.Error != nil {
		if out.Error.Code == "missingtitle" || out.Error.Code == "invalidtitle" {
			return fmt.Errorf("%s: %w", out.Error.Info, domain.ErrPageNotFound)
		}
		return fmt.Errorf("wikipedia error %s: %s: %w", out.Error.Code, out.Error.Info, domain.ErrSourceUnavailable)
	}
	c.logger.Debug("Wikipedia call", zap.String("action", params.Get("action")), zap.Duration("took", time.Since(start)))
	return nil
}

// IsDisambiguation extracts disambiguation options from err.
func IsDisambiguation(err error) (*DisambiguationError, bool) {
	var de *DisambiguationError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
