// Package sense holds the candidate senses produced by the Lesk scorer.
package sense

// Mode identifies where candidate senses come from.
type Mode string

// Candidate source modes.
const (
	// ModeLexical enumerates entries of a WordNet-like lexical database.
	ModeLexical Mode = "wordnet"
	// ModeEncyclopedic enumerates encyclopedia articles.
	ModeEncyclopedic Mode = "wiki"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == ModeLexical || m == ModeEncyclopedic
}

// Candidate is one interpretation of a target word (immutable value object).
type Candidate struct {
	id       string
	gloss    string
	forms    []string
	size     int
	overlaps []string
	url      string
}

// NewCandidate creates an unscored candidate.
// size is the mode-specific tie-break metric: usage example count for
// lexical entries, summary length for encyclopedic articles.
func NewCandidate(id, gloss string, forms []string, size int) Candidate {
	return Candidate{id: id, gloss: gloss, forms: forms, size: size}
}

// ID returns the sense key or article title.
func (c Candidate) ID() string { return c.id }

// Gloss returns the descriptive text used for scoring.
func (c Candidate) Gloss() string { return c.gloss }

// Forms returns alternate lexical forms (lexical mode only).
func (c Candidate) Forms() []string { return c.forms }

// Size returns the secondary tie-break metric.
func (c Candidate) Size() int { return c.size }

// Overlaps returns the sorted tokens shared with the context.
func (c Candidate) Overlaps() []string { return c.overlaps }

// OverlapCount returns the number of tokens shared with the context.
func (c Candidate) OverlapCount() int { return len(c.overlaps) }

// URL returns the reference link, empty when not resolved.
func (c Candidate) URL() string { return c.url }

// WithOverlaps returns a copy annotated with the given sorted overlap tokens.
func (c Candidate) WithOverlaps(overlaps []string) Candidate {
	c.overlaps = overlaps
	return c
}

// WithURL returns a copy carrying a reference link.
func (c Candidate) WithURL(url string) Candidate {
	c.url = url
	return c
}

// Result is a ranked list of scored candidates with the selected best sense.
type Result struct {
	target     string
	context    []string
	candidates []Candidate
	best       int
}

// NewResult creates a result. best is an index into candidates, -1 for none.
func NewResult(target string, context []string, candidates []Candidate, best int) Result {
	if best >= len(candidates) {
		best = -1
	}
	return Result{target: target, context: context, candidates: candidates, best: best}
}

// Target returns the lowercased target word.
func (r Result) Target() string { return r.target }

// Context returns the sorted context tokens.
func (r Result) Context() []string { return r.context }

// Candidates returns candidates in ranked order.
func (r Result) Candidates() []Candidate { return r.candidates }

// Best returns the selected sense, false when there are no candidates.
func (r Result) Best() (Candidate, bool) {
	if r.best < 0 {
		return Candidate{}, false
	}
	return r.candidates[r.best], true
}
