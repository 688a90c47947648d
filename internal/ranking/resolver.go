package ranking

import "fmt"

// DefaultMaxChoices bounds how many candidates the picker is offered.
const DefaultMaxChoices = 5

// DecisionKind is the outcome of resolving a ranked list.
type DecisionKind int

const (
	NoMatch DecisionKind = iota
	AutoSelect
	PresentChoices
)

func (k DecisionKind) String() string {
	switch k {
	case AutoSelect:
		return "auto_select"
	case PresentChoices:
		return "present_choices"
	default:
		return "no_match"
	}
}

// MarshalText encodes the kind by name.
func (k DecisionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *DecisionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "auto_select":
		*k = AutoSelect
	case "present_choices":
		*k = PresentChoices
	case "no_match":
		*k = NoMatch
	default:
		return fmt.Errorf("unknown decision kind %q", text)
	}
	return nil
}

// Choice is one candidate offered for disambiguation.
type Choice struct {
	ScoredTrack
	Recommended bool `json:"recommended"`
}

// Decision tells the caller whether to use a cover directly, ask the user,
// or report that nothing was found.
type Decision struct {
	Kind     DecisionKind `json:"kind"`
	Selected *ScoredTrack `json:"selected,omitempty"`
	Choices  []Choice     `json:"choices,omitempty"`
}

// Resolver turns a ranked list into a Decision.
type Resolver struct {
	// MaxChoices caps the candidates considered; zero means DefaultMaxChoices.
	MaxChoices int
	// AutoSelectMargin, when positive, auto-selects the top candidate if it
	// leads the runner-up by at least this many points.
	AutoSelectMargin int
}

// Resolve decides from the top candidates that carry artwork.
func (r Resolver) Resolve(ranked []ScoredTrack) Decision {
	limit := r.MaxChoices
	if limit <= 0 {
		limit = DefaultMaxChoices
	}

	top := make([]ScoredTrack, 0, limit)
	for _, st := range ranked {
		if len(top) == limit {
			break
		}
		if st.HasArtwork() {
			top = append(top, st)
		}
	}

	switch {
	case len(top) == 0:
		return Decision{Kind: NoMatch}
	case len(top) == 1:
		return autoSelect(top[0])
	case r.AutoSelectMargin > 0 && top[0].Score-top[1].Score >= r.AutoSelectMargin:
		return autoSelect(top[0])
	}

	choices := make([]Choice, len(top))
	for i, st := range top {
		choices[i] = Choice{ScoredTrack: st, Recommended: i == 0}
	}
	return Decision{Kind: PresentChoices, Choices: choices}
}

func autoSelect(st ScoredTrack) Decision {
	return Decision{Kind: AutoSelect, Selected: &st}
}
