package wikipedia

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterExternalMetrics()
	os.Exit(m.Run())
}

const bankDisambiguationHTML = `<div class="mw-parser-output">
<p><b>Bank</b> may refer to:</p>
<h2>Finance</h2>
<ul>
<li><a href="/wiki/Bank" title="Bank">Bank</a>, a financial institution</li>
<li><a href="/wiki/Bank_(geography)" title="Bank (geography)">Bank (geography)</a>, land alongside water
  <ul><li><a href="/wiki/River_bank" title="River bank">River bank</a></li></ul>
</li>
<li>A <a href="/wiki/Bank_(aeronautics)" title="Bank (aeronautics)">bank</a> turn, see <a href="/wiki/Flight_dynamics" title="Flight dynamics">flight dynamics</a></li>
<li><a href="/wiki/Banked_turn_missing" class="new" title="Banked turn missing">red link</a></li>
<li><a href="/wiki/Category:Banks" title="Category:Banks">Category</a></li>
<li><a href="https://example.com" class="external text">external</a></li>
</ul>
<table class="navbox"><tr><td><ul><li><a href="/wiki/Navbox_item" title="Navbox item">x</a></li></ul></td></tr></table>
</div>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("formatversion") != "2" {
			t.Errorf("missing format params: %v", q)
		}
		if r.Header.Get("User-Agent") != "wsdlab-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case q.Get("action") == "parse" && q.Get("page") == "Bank (disambiguation)":
			writeJSON(w, map[string]any{"parse": map[string]any{"title": "Bank (disambiguation)", "text": bankDisambiguationHTML}})
		case q.Get("action") == "query" && q.Get("list") == "search":
			if q.Get("srlimit") != "2" {
				t.Errorf("unexpected srlimit %q", q.Get("srlimit"))
			}
			writeJSON(w, map[string]any{"query": map[string]any{"search": []map[string]any{
				{"title": "Interest rate"}, {"title": "Interest"},
			}}})
		case q.Get("action") == "query" && q.Get("meta") == "siteinfo":
			writeJSON(w, map[string]any{"query": map[string]any{"general": map[string]any{"sitename": "Wikipedia"}}})
		case q.Get("action") == "query":
			switch q.Get("titles") {
			case "Bank (disambiguation)":
				writeJSON(w, map[string]any{"query": map[string]any{"pages": []map[string]any{
					{"title": "Bank (disambiguation)", "pageprops": map[string]any{"disambiguation": ""}},
				}}})
			case "Bank":
				if q.Get("exsentences") != "3" {
					t.Errorf("unexpected exsentences %q", q.Get("exsentences"))
				}
				writeJSON(w, map[string]any{"query": map[string]any{"pages": []map[string]any{{
					"title":   "Bank",
					"extract": "A bank is a financial institution that accepts deposits from the public and creates a demand deposit while simultaneously making loans.",
					"fullurl": "https://en.wikipedia.org/wiki/Bank",
				}}}})
			case "Nonexistent":
				writeJSON(w, map[string]any{"query": map[string]any{"pages": []map[string]any{
					{"title": "Nonexistent", "missing": true},
				}}})
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:    srv.URL + "/w/api.php",
		Timeout:    time.Second,
		UserAgent:  "wsdlab-test",
		HTTPClient: srv.Client(),
		Logger:     zap.NewNop(),
	})
}

func TestResolve_Page(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	page, err := newTestClient(srv).Resolve(context.Background(), "Bank")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if page.Title != "Bank" || page.URL != "https://en.wikipedia.org/wiki/Bank" || page.Summary == "" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestResolve_Disambiguation(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	_, err := newTestClient(srv).Resolve(context.Background(), "Bank (disambiguation)")
	if !errors.Is(err, domain.ErrDisambiguation) {
		t.Fatalf("expected ErrDisambiguation, got %v", err)
	}
	de, ok := IsDisambiguation(err)
	if !ok {
		t.Fatal("expected *DisambiguationError")
	}
	want := []string{"Bank", "Bank (geography)", "River bank", "Bank (aeronautics)"}
	if !reflect.DeepEqual(de.Options, want) {
		t.Errorf("options = %q, want %q", de.Options, want)
	}
}

func TestResolve_Missing(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	_, err := newTestClient(srv).Resolve(context.Background(), "Nonexistent")
	if !errors.Is(err, domain.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	if errors.Is(err, domain.ErrDisambiguation) {
		t.Error("not found must be distinct from disambiguation")
	}
}

func TestResolve_ServerError(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	_, err := newTestClient(srv).Resolve(context.Background(), "Explodes")
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestResolve_EmptyTitle(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.Resolve(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	titles, err := newTestClient(srv).Search(context.Background(), "interest", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !reflect.DeepEqual(titles, []string{"Interest rate", "Interest"}) {
		t.Errorf("unexpected titles %v", titles)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	if err := newTestClient(srv).HealthCheck(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, map[string]any{"error": map[string]any{"code": "missingtitle", "info": "The page you specified doesn't exist."}})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Resolve(context.Background(), "Whatever")
	if !errors.Is(err, domain.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, HTTPClient: srv.Client()})
	if _, err := c.Search(context.Background(), "x", 1); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable on timeout, got %v", err)
	}
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient(Config{Language: "de"})
	if c.endpoint != "https://de.wikipedia.org/w/api.php" {
		t.Errorf("unexpected endpoint %q", c.endpoint)
	}
}
