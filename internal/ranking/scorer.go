package ranking

import (
	"coverwall/internal/logger"
	"coverwall/internal/metadata"
)

// RulePoints is one rule's contribution to a score.
type RulePoints struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// ScoredTrack is a candidate with its score attached.
type ScoredTrack struct {
	metadata.Track
	Score     int          `json:"score"`
	Signals   Signals      `json:"signals"`
	Breakdown []RulePoints `json:"breakdown,omitempty"`
}

// Scorer sums a list of rules into a candidate score.
type Scorer struct {
	rules []Rule
	log   *logger.Logger
}

// NewScorer creates a Scorer. A nil rule list means DefaultRules.
func NewScorer(rules []Rule, log *logger.Logger) *Scorer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Scorer{rules: rules, log: log}
}

// Rules returns the rule names in evaluation order.
func (s *Scorer) Rules() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

// Score evaluates every rule against t. A candidate that cannot be scored
// because a rule panics gets score 0 instead of failing the search.
func (s *Scorer) Score(t metadata.Track, q *Query) (st ScoredTrack) {
	st.Track = t

	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Warn("Failed to score %q by %q: %v", t.Title, t.Artist, r)
			}
			st = ScoredTrack{Track: t}
		}
	}()

	st.Signals = Classify(t, q)

	total := 0
	for _, rule := range s.rules {
		points := rule.Eval(t, st.Signals, q)
		if points != 0 {
			st.Breakdown = append(st.Breakdown, RulePoints{Rule: rule.Name, Points: points})
		}
		total += points
	}
	st.Score = max(total, 0)
	return st
}
