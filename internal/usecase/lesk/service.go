package lesk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/wsdlab/internal/domain"
	"github.com/kailas-cloud/wsdlab/internal/domain/sense"
	"github.com/kailas-cloud/wsdlab/internal/lexical"
	logpkg "github.com/kailas-cloud/wsdlab/internal/logger"
	"github.com/kailas-cloud/wsdlab/internal/transport/wikipedia"
)

// Defaults for encyclopedic mode.
const (
	DefaultMaxCandidates   = 15
	DefaultURLResolveLimit = 5
	DefaultConcurrency     = 4
)

// Options tune encyclopedic mode.
type Options struct {
	MaxCandidates   int
	URLResolveLimit int
	Concurrency     int
}

func (o Options) withDefaults() Options {
	if o.MaxCandidates <= 0 {
		o.MaxCandidates = DefaultMaxCandidates
	}
	if o.URLResolveLimit < 0 {
		o.URLResolveLimit = 0
	} else if o.URLResolveLimit == 0 {
		o.URLResolveLimit = DefaultURLResolveLimit
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Service disambiguates a target word against lexical or encyclopedic senses.
// Either source may be nil; the corresponding mode then reports ErrNotConfigured.
type Service struct {
	scorer *Scorer
	lex    LexicalSource
	wiki   Encyclopedia
	opts   Options
	logger *zap.Logger
}

// New creates a Lesk service.
func New(norm Normalizer, lex LexicalSource, wiki Encyclopedia, opts Options, logger *zap.Logger) *Service {
	return &Service{
		scorer: NewScorer(norm),
		lex:    lex,
		wiki:   wiki,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Request is one disambiguation query.
type Request struct {
	Sentence string
	Target   string
	POS      string // lexical mode only
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Sentence) == "" {
		return fmt.Errorf("sentence is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(r.Target) == "" {
		return fmt.Errorf("target is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

// Disambiguate dispatches on mode.
func (s *Service) Disambiguate(ctx context.Context, mode sense.Mode, req Request) (sense.Result, error) {
	switch mode {
	case sense.ModeLexical:
		return s.Lexical(ctx, req)
	case sense.ModeEncyclopedic:
		return s.Encyclopedic(ctx, req)
	default:
		return sense.Result{}, fmt.Errorf("unknown mode %q: %w", mode, domain.ErrInvalidInput)
	}
}

// Lexical scores every dictionary sense of the target, optionally filtered
// by a part-of-speech hint.
func (s *Service) Lexical(ctx context.Context, req Request) (sense.Result, error) {
	if err := req.validate(); err != nil {
		return sense.Result{}, err
	}
	hint, err := lexical.ParseCategory(req.POS)
	if err != nil {
		return sense.Result{}, err
	}
	if s.lex == nil {
		return sense.Result{}, fmt.Errorf("lexical source: %w", domain.ErrNotConfigured)
	}

	entries, err := s.lex.Lookup(ctx, strings.TrimSpace(req.Target), hint)
	if err != nil {
		return sense.Result{}, fmt.Errorf("lookup %q: %w: %w", req.Target, err, domain.ErrSourceUnavailable)
	}

	candidates := make([]sense.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, sense.NewCandidate(e.ID, e.Gloss(), e.Forms, len(e.Examples)))
	}
	return s.scorer.Score(req.Sentence, req.Target, candidates), nil
}

// Encyclopedic scores article summaries of the target's possible meanings.
func (s *Service) Encyclopedic(ctx context.Context, req Request) (sense.Result, error) {
	if err := req.validate(); err != nil {
		return sense.Result{}, err
	}
	if s.wiki == nil {
		return sense.Result{}, fmt.Errorf("encyclopedic source: %w", domain.ErrNotConfigured)
	}

	target := strings.TrimSpace(req.Target)
	titles, err := s.enumerate(ctx, target)
	if err != nil {
		return sense.Result{}, err
	}

	candidates := s.fetch(ctx, titles)
	res := s.scorer.Score(req.Sentence, req.Target, candidates)
	return s.withURLs(res), nil
}

// enumerate collects candidate titles through an ordered strategy chain:
// disambiguation options of the target, then search results. A plain or
// missing article yields no options, so search takes over. The first
// strategy yielding titles wins.
func (s *Service) enumerate(ctx context.Context, target string) ([]string, error) {
	strategies := []struct {
		name string
		run  func(context.Context) ([]string, error)
	}{
		{"options", func(ctx context.Context) ([]string, error) { return s.options(ctx, target) }},
		{"search", func(ctx context.Context) ([]string, error) {
			return s.wiki.Search(ctx, target, s.opts.MaxCandidates)
		}},
	}

	log := logpkg.FromContext(ctx, s.logger)
	var errs []error
	for _, st := range strategies {
		titles, err := st.run(ctx)
		if err != nil {
			log.Debug("Title enumeration strategy failed", zap.String("strategy", st.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if len(titles) == 0 {
			continue
		}
		if len(titles) > s.opts.MaxCandidates {
			titles = titles[:s.opts.MaxCandidates]
		}
		return titles, nil
	}

	if len(errs) == len(strategies) {
		return nil, fmt.Errorf("enumerate %q: %w", target, errors.Join(errs...))
	}
	return nil, nil
}

// options returns disambiguation options of title, or nothing when the
// title is a plain article or missing.
func (s *Service) options(ctx context.Context, title string) ([]string, error) {
	_, err := s.wiki.Resolve(ctx, title)
	if err == nil || errors.Is(err, domain.ErrPageNotFound) {
		return nil, nil
	}
	if de, ok := wikipedia.IsDisambiguation(err); ok {
		return de.Options, nil
	}
	return nil, err
}

// fetch resolves titles concurrently, keeping enumeration order. Titles that
// fail, are ambiguous or have no summary are skipped.
func (s *Service) fetch(ctx context.Context, titles []string) []sense.Candidate {
	pages := make([]*wikipedia.Page, len(titles))
	log := logpkg.FromContext(ctx, s.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, title := range titles {
		g.Go(func() error {
			page, err := s.wiki.Resolve(gctx, title)
			if err != nil {
				log.Debug("Skipping candidate", zap.String("title", title), zap.Error(err))
				return nil
			}
			if strings.TrimSpace(page.Summary) == "" {
				return nil
			}
			pages[i] = &page
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{}, len(pages))
	candidates := make([]sense.Candidate, 0, len(pages))
	for _, p := range pages {
		if p == nil {
			continue
		}
		if _, dup := seen[p.Title]; dup {
			continue
		}
		seen[p.Title] = struct{}{}
		candidates = append(candidates, sense.NewCandidate(p.Title, p.Summary, nil, len(p.Summary)).WithURL(p.URL))
	}
	return candidates
}

// withURLs keeps reference links only on the first URLResolveLimit ranked
// candidates that share at least one token with the context.
func (s *Service) withURLs(res sense.Result) sense.Result {
	ranked := res.Candidates()
	out := make([]sense.Candidate, len(ranked))
	kept := 0
	for i, c := range ranked {
		if c.OverlapCount() > 0 && kept < s.opts.URLResolveLimit {
			out[i] = c
			kept++
			continue
		}
		out[i] = c.WithURL("")
	}

	best := -1
	if len(out) > 0 {
		best = 0
	}
	return sense.NewResult(res.Target(), res.Context(), out, best)
}
