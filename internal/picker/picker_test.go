package picker

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverwall/internal/metadata"
	"coverwall/internal/ranking"
)

func testChoices() []ranking.Choice {
	mk := func(id, title string, score int) ranking.ScoredTrack {
		return ranking.ScoredTrack{
			Track: metadata.Track{ID: id, Title: title, Artist: "Artist " + id, Album: "Album " + id},
			Score: score,
		}
	}
	return []ranking.Choice{
		{ScoredTrack: mk("a", "Peaches", 310), Recommended: true},
		{ScoredTrack: mk("b", "Peaches (Remix)", 120)},
		{ScoredTrack: mk("c", "Peach", 40)},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_Navigation(t *testing.T) {
	m := newModel("peaches", testChoices())

	m.Update(key("up"))
	assert.Equal(t, 0, m.cursor, "cursor stays at the top")

	m.Update(key("down"))
	m.Update(key("j"))
	m.Update(key("down"))
	assert.Equal(t, 2, m.cursor, "cursor stays at the bottom")

	m.Update(key("k"))
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.selected)
	assert.True(t, m.done)
}

func TestUpdate_DigitPicks(t *testing.T) {
	m := newModel("peaches", testChoices())

	_, cmd := m.Update(key("9"))
	assert.Nil(t, cmd, "out of range digit is ignored")
	assert.False(t, m.done)

	_, cmd = m.Update(key("3"))
	require.NotNil(t, cmd)
	assert.Equal(t, 2, m.selected)
}

func TestUpdate_Cancel(t *testing.T) {
	for _, k := range []string{"esc", "q"} {
		m := newModel("peaches", testChoices())
		_, cmd := m.Update(key(k))
		require.NotNil(t, cmd, k)
		assert.Equal(t, -1, m.selected, k)
		assert.True(t, m.done, k)
	}
}

func TestView(t *testing.T) {
	m := newModel("peaches", testChoices())
	m.choices[0].ReleaseDate = time.Date(2021, 3, 19, 0, 0, 0, 0, time.UTC)

	v := m.View()
	assert.Contains(t, v, "Peaches - Artist a")
	assert.Contains(t, v, "recommended")
	assert.Contains(t, v, "2021")
	assert.Contains(t, v, "score 120")
	assert.Equal(t, 1, strings.Count(v, "recommended"))

	m.done = true
	assert.Empty(t, m.View())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "晴天晴…", truncate("晴天晴天晴天", 4))
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	choice, ok, err := Run("peaches", testChoices(), strings.NewReader("2"), &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", choice.ID)

	_, ok, err = Run("peaches", nil, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.False(t, ok)
}
