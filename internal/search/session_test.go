package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverwall/internal/metadata"
	"coverwall/internal/ranking"
)

// scriptedEngine returns canned results per query. Queries listed in gates
// block until their gate is closed, ignoring cancellation, so a stale
// search can complete "successfully" after it was superseded.
type scriptedEngine struct {
	results map[string]*Result
	gates   map[string]chan struct{}
	started chan string
}

func (e *scriptedEngine) Search(ctx context.Context, raw string) (*Result, error) {
	if e.started != nil {
		e.started <- raw
	}
	if g, ok := e.gates[raw]; ok {
		<-g
	}
	if raw == "" {
		return nil, ErrEmptyQuery
	}
	if res, ok := e.results[raw]; ok {
		return res, nil
	}
	return &Result{Decision: ranking.Decision{Kind: ranking.NoMatch}}, nil
}

func scoredTrack(id, title string) ranking.ScoredTrack {
	return ranking.ScoredTrack{Track: metadata.Track{
		ID: id, Title: title, Artist: "Artist " + id, Album: "Album " + id, ArtworkURL: art100,
	}}
}

func autoResult(id, title string) *Result {
	st := scoredTrack(id, title)
	return &Result{Decision: ranking.Decision{Kind: ranking.AutoSelect, Selected: &st}}
}

func choicesResult(ids ...string) *Result {
	var ranked []ranking.ScoredTrack
	for _, id := range ids {
		ranked = append(ranked, scoredTrack(id, "Song "+id))
	}
	return &Result{Ranked: ranked, Decision: ranking.Resolver{}.Resolve(ranked)}
}

func TestSession_AutoSelect(t *testing.T) {
	s := NewSession(&scriptedEngine{results: map[string]*Result{
		"peaches": autoResult("1", "Peaches"),
	}}, 1000)

	res, err := s.Search(context.Background(), "peaches")
	require.NoError(t, err)
	assert.Equal(t, ranking.AutoSelect, res.Decision.Kind)

	snap := s.Snapshot()
	assert.Equal(t, StateSelected, snap.State)
	require.NotNil(t, snap.Cover)
	assert.Equal(t, "Peaches", snap.Cover.SongName)
	assert.Equal(t, "https://is1-ssl.mzstatic.com/image/thumb/a/1000x1000bb.jpg", snap.Cover.AlbumCoverURL)
}

func TestSession_ChoicesAndSelect(t *testing.T) {
	s := NewSession(&scriptedEngine{results: map[string]*Result{
		"song": choicesResult("a", "b", "c"),
	}}, 600)

	_, err := s.Search(context.Background(), "song")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, StateChoosing, snap.State)
	require.Len(t, snap.Choices, 3)
	assert.True(t, snap.Choices[0].Recommended)

	_, err = s.SelectCandidate("zzz")
	assert.ErrorIs(t, err, ErrUnknownCandidate)
	assert.Equal(t, StateChoosing, s.Snapshot().State)

	c, err := s.SelectCandidate("b")
	require.NoError(t, err)
	assert.Equal(t, "Song b", c.SongName)
	assert.Contains(t, c.AlbumCoverURL, "600x600")

	snap = s.Snapshot()
	assert.Equal(t, StateSelected, snap.State)
	assert.Empty(t, snap.Choices)

	_, err = s.SelectCandidate("a")
	assert.ErrorIs(t, err, ErrNoPendingChoices)
}

func TestSession_CancelSelection(t *testing.T) {
	s := NewSession(&scriptedEngine{results: map[string]*Result{
		"song": choicesResult("a", "b"),
	}}, 0)

	_, err := s.Search(context.Background(), "song")
	require.NoError(t, err)

	s.CancelSelection()
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Choices)

	_, err = s.SelectCandidate("a")
	assert.ErrorIs(t, err, ErrNoPendingChoices)
}

func TestSession_NoMatch(t *testing.T) {
	s := NewSession(&scriptedEngine{}, 0)

	res, err := s.Search(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrNoMatch)
	require.NotNil(t, res)
	assert.Equal(t, ranking.NoMatch, res.Decision.Kind)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSession_NewSearchClearsPreviousCover(t *testing.T) {
	s := NewSession(&scriptedEngine{results: map[string]*Result{
		"peaches": autoResult("1", "Peaches"),
		"song":    choicesResult("a", "b", "c"),
	}}, 1000)

	_, err := s.Search(context.Background(), "peaches")
	require.NoError(t, err)
	require.NotNil(t, s.Snapshot().Cover)

	_, err = s.Search(context.Background(), "song")
	require.NoError(t, err)
	snap := s.Snapshot()
	assert.Equal(t, StateChoosing, snap.State)
	assert.Len(t, snap.Choices, 3)
	assert.Nil(t, snap.Cover)

	_, err = s.Search(context.Background(), "peaches")
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "unknown")
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Nil(t, s.Snapshot().Cover)
}

func TestSession_InputError(t *testing.T) {
	s := NewSession(&scriptedEngine{}, 0)

	_, err := s.Search(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSession_StaleSearchDiscarded(t *testing.T) {
	engine := &scriptedEngine{
		results: map[string]*Result{
			"old": autoResult("old", "Old Song"),
			"new": choicesResult("n1", "n2"),
		},
		gates:   map[string]chan struct{}{"old": make(chan struct{})},
		started: make(chan string, 2),
	}
	s := NewSession(engine, 0)

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.Search(context.Background(), "old")
		done <- outcome{res, err}
	}()
	require.Equal(t, "old", <-engine.started)

	_, err := s.Search(context.Background(), "new")
	require.NoError(t, err)
	<-engine.started

	close(engine.gates["old"])
	select {
	case o := <-done:
		assert.ErrorIs(t, o.err, ErrSuperseded)
		assert.Nil(t, o.res)
	case <-time.After(5 * time.Second):
		t.Fatal("stale search did not return")
	}

	snap := s.Snapshot()
	assert.Equal(t, StateChoosing, snap.State)
	assert.Equal(t, "new", snap.Query)
	assert.Nil(t, snap.Cover, "stale auto-select must not set a cover")
	require.Len(t, snap.Choices, 2)
}

// cancelAwareEngine blocks until its context is cancelled.
type cancelAwareEngine struct {
	started chan struct{}
}

func (e *cancelAwareEngine) Search(ctx context.Context, raw string) (*Result, error) {
	if raw == "fast" {
		return autoResult("f", "Fast"), nil
	}
	close(e.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSession_NewSearchCancelsInFlight(t *testing.T) {
	engine := &cancelAwareEngine{started: make(chan struct{})}
	s := NewSession(engine, 0)

	done := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "slow")
		done <- err
	}()
	<-engine.started

	_, err := s.Search(context.Background(), "fast")
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight search was not cancelled")
	}
	assert.Equal(t, StateSelected, s.Snapshot().State)
}

func TestSession_ResetSupersedes(t *testing.T) {
	engine := &cancelAwareEngine{started: make(chan struct{})}
	s := NewSession(engine, 0)

	done := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "slow")
		done <- err
	}()
	<-engine.started

	s.Reset()
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Query)
	assert.Nil(t, snap.Cover)
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	s := NewSession(&scriptedEngine{results: map[string]*Result{
		"song": choicesResult("a", "b"),
	}}, 0)
	_, err := s.Search(context.Background(), "song")
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Choices[0].ID = "mutated"
	assert.Equal(t, "a", s.Snapshot().Choices[0].ID)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "searching", StateSearching.String())
	assert.Equal(t, "choosing", StateChoosing.String())
	assert.Equal(t, "selected", StateSelected.String())
}
