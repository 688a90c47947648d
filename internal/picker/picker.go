// Package picker is the interactive terminal chooser shown when a search
// ends with several candidates.
package picker

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coverwall/internal/ranking"
)

const maxLineLength = 72

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	recommendTag = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("recommended")
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

type model struct {
	query    string
	choices  []ranking.Choice
	cursor   int
	selected int
	done     bool
}

func newModel(query string, choices []ranking.Choice) *model {
	return &model{query: query, choices: choices, selected: -1}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch s := key.String(); s {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.cursor
		m.done = true
		return m, tea.Quit
	case "esc", "q", "ctrl+c":
		m.done = true
		return m, tea.Quit
	default:
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.choices) {
				m.cursor = i
				m.selected = i
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Pick a cover for %q", m.query)))
	b.WriteString("\n\n")

	for i, ch := range m.choices {
		prefix := "  "
		line := fmt.Sprintf("%d. %s - %s", i+1, ch.Title, ch.Artist)
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
			line = cursorStyle.Render(truncate(line, maxLineLength))
		} else {
			line = truncate(line, maxLineLength)
		}
		b.WriteString(prefix + line)
		if ch.Recommended {
			b.WriteString(" " + recommendTag)
		}
		b.WriteString("\n")
		b.WriteString("     " + detailStyle.Render(details(ch)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("up/down to move, enter or 1-9 to pick, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}

func details(ch ranking.Choice) string {
	parts := []string{ch.Album}
	if ch.HasReleaseDate() {
		parts = append(parts, ch.ReleaseDate.Format("2006"))
	}
	parts = append(parts, fmt.Sprintf("score %d", ch.Score))
	return truncate(strings.Join(parts, " · "), maxLineLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run shows choices and blocks until the user picks one or cancels. ok is
// false when the user cancelled.
func Run(query string, choices []ranking.Choice, in io.Reader, out io.Writer) (choice ranking.Choice, ok bool, err error) {
	if len(choices) == 0 {
		return ranking.Choice{}, false, nil
	}

	m := newModel(query, choices)
	program := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	if _, err := program.Run(); err != nil {
		return ranking.Choice{}, false, fmt.Errorf("picker failed: %w", err)
	}
	if m.selected < 0 {
		return ranking.Choice{}, false, nil
	}
	return choices[m.selected], true, nil
}
