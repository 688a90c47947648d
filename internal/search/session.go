package search

import (
	"context"
	"sync"

	"coverwall/internal/cover"
	"coverwall/internal/ranking"
)

// Engine runs a single search. *Searcher implements it.
type Engine interface {
	Search(ctx context.Context, raw string) (*Result, error)
}

// State is where a session is in the search and pick flow.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateChoosing
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateChoosing:
		return "choosing"
	case StateSelected:
		return "selected"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a point-in-time copy of a session's state.
type Snapshot struct {
	State      State            `json:"state"`
	Query      string           `json:"query,omitempty"`
	Generation uint64           `json:"generation"`
	Choices    []ranking.Choice `json:"choices,omitempty"`
	Cover      *cover.Cover     `json:"cover,omitempty"`
}

// Session is the state of one client's search flow. A new search supersedes
// any in-flight one; the superseded search never modifies the session.
type Session struct {
	engine      Engine
	artworkSize int

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      State
	query      string
	choices    []ranking.Choice
	cover      *cover.Cover
}

// NewSession creates an idle session. artworkSize is the edge length covers
// are upgraded to.
func NewSession(engine Engine, artworkSize int) *Session {
	return &Session{engine: engine, artworkSize: artworkSize}
}

// Search runs a search for raw on behalf of the session.
//
// AutoSelect stores the cover, PresentChoices stores the choices, and NoMatch
// returns the session to idle with ErrNoMatch alongside the result. If a
// newer search starts first, ErrSuperseded is returned and nothing changes.
func (s *Session) Search(ctx context.Context, raw string) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.state = StateSearching
	s.query = raw
	s.choices = nil
	s.cover = nil
	s.mu.Unlock()

	res, err := s.engine.Search(ctx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil, ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		s.state = StateIdle
		return nil, err
	}

	switch res.Decision.Kind {
	case ranking.AutoSelect:
		c := cover.FromTrack(res.Decision.Selected.Track, s.artworkSize)
		s.cover = &c
		s.state = StateSelected
	case ranking.PresentChoices:
		s.choices = res.Decision.Choices
		s.state = StateChoosing
	default:
		s.state = StateIdle
		return res, ErrNoMatch
	}
	return res, nil
}

// SelectCandidate resolves a pending choice by track ID.
func (s *Session) SelectCandidate(trackID string) (cover.Cover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateChoosing || len(s.choices) == 0 {
		return cover.Cover{}, ErrNoPendingChoices
	}
	for _, ch := range s.choices {
		if ch.ID == trackID {
			c := cover.FromTrack(ch.Track, s.artworkSize)
			s.cover = &c
			s.choices = nil
			s.state = StateSelected
			return c, nil
		}
	}
	return cover.Cover{}, ErrUnknownCandidate
}

// CancelSelection discards pending choices and returns to idle.
func (s *Session) CancelSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateChoosing {
		s.choices = nil
		s.state = StateIdle
	}
}

// Reset cancels any in-flight search and clears all state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.state = StateIdle
	s.query = ""
	s.choices = nil
	s.cover = nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:      s.state,
		Query:      s.query,
		Generation: s.generation,
	}
	if len(s.choices) > 0 {
		snap.Choices = append([]ranking.Choice(nil), s.choices...)
	}
	if s.cover != nil {
		c := *s.cover
		snap.Cover = &c
	}
	return snap
}
