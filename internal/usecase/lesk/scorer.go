package lesk

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/wsdlab/internal/domain/sense"
)

// Scorer implements simplified Lesk: a sense scores the number of distinct
// context tokens that also occur in its gloss.
type Scorer struct {
	norm Normalizer
}

// NewScorer creates a scorer over the given normalizer.
func NewScorer(norm Normalizer) *Scorer {
	return &Scorer{norm: norm}
}

// Score ranks candidates by (overlap desc, size desc, enumeration order) and
// selects the first as best. The target word never counts as overlap.
// Candidates with a blank gloss are dropped.
func (s *Scorer) Score(sentence, target string, candidates []sense.Candidate) sense.Result {
	ctxSet := toSet(s.norm.NormalizeExcluding(sentence, target))

	scored := make([]sense.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Gloss()) == "" {
			continue
		}
		var overlaps []string
		for tok := range toSet(s.norm.NormalizeExcluding(c.Gloss(), target)) {
			if _, ok := ctxSet[tok]; ok {
				overlaps = append(overlaps, tok)
			}
		}
		sort.Strings(overlaps)
		scored = append(scored, c.WithOverlaps(overlaps))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].OverlapCount() != scored[j].OverlapCount() {
			return scored[i].OverlapCount() > scored[j].OverlapCount()
		}
		return scored[i].Size() > scored[j].Size()
	})

	context := make([]string, 0, len(ctxSet))
	for tok := range ctxSet {
		context = append(context, tok)
	}
	sort.Strings(context)

	best := -1
	if len(scored) > 0 {
		best = 0
	}
	return sense.NewResult(strings.ToLower(strings.TrimSpace(target)), context, scored, best)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
