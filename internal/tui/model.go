// Package tui provides the Bubble Tea review interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/japaniel/readlex/pkg/vocabulary"
)

// Reviewer is the part of vocabulary.Service a review session drives.
type Reviewer interface {
	Current() (vocabulary.Session, vocabulary.Word, bool)
	Answer(ctx context.Context, wordID string, correct bool) (vocabulary.Word, error)
	Finalize(ctx context.Context) (vocabulary.Session, bool, error)
	Sessions() []vocabulary.Session
	Stats() vocabulary.Stats
}

// Model implements the Bubble Tea review UI.
type Model struct {
	ctx      context.Context
	reviewer Reviewer

	width  int
	height int

	session  vocabulary.Session
	word     vocabulary.Word
	revealed bool

	done    bool
	summary vocabulary.Session
	stats   vocabulary.Stats
	err     error
}

var (
	termStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	posStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#8C8C8C"))
	defStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a review model for the reviewer's in-progress session.
func NewModel(ctx context.Context, r Reviewer) *Model {
	m := &Model{ctx: ctx, reviewer: r}
	m.advance()
	return m
}

// Summary returns the finished session, if the review reached the end.
func (m *Model) Summary() (vocabulary.Session, bool) {
	return m.summary, m.done && m.summary.ID != ""
}

// Err returns the error that stopped the review, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.done || m.err != nil {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, m.quit()
		case tea.KeySpace, tea.KeyEnter:
			m.revealed = true
			return m, nil
		case tea.KeyRunes:
			switch strings.ToLower(string(msg.Runes)) {
			case "y":
				m.answer(true)
			case "n":
				m.answer(false)
			case "q":
				return m, m.quit()
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.err != nil:
		content = errorStyle.Render("Error: "+m.err.Error()) + "\n\n" + footerStyle.Render("press any key to exit")
	case m.done:
		content = m.renderSummary()
	default:
		content = m.renderCard()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderCard() string {
	var b strings.Builder
	b.WriteString(footerStyle.Render(fmt.Sprintf("%s %d/%d", m.session.Kind, len(m.session.Results)+1, len(m.session.WordIDs))))
	b.WriteString("\n\n")
	b.WriteString(termStyle.Render(m.word.Term))
	if m.word.Pronunciation != "" {
		b.WriteString(" " + posStyle.Render("["+m.word.Pronunciation+"]"))
	}
	b.WriteString("\n")
	if m.word.Context != "" {
		b.WriteString(contextStyle.Render("“"+m.word.Context+"”") + "\n")
	}
	b.WriteString("\n")
	if !m.revealed {
		b.WriteString(footerStyle.Render("space: show definition   y/n: knew it / didn't   q: stop"))
		return b.String()
	}
	if m.word.PartOfSpeech != "" {
		b.WriteString(posStyle.Render(m.word.PartOfSpeech) + "\n")
	}
	b.WriteString(defStyle.Render(m.word.Definition) + "\n")
	for _, ex := range m.word.Examples {
		b.WriteString(contextStyle.Render("  e.g. "+ex) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("y: knew it   n: didn't   q: stop"))
	return b.String()
}

func (m *Model) renderSummary() string {
	if m.summary.ID == "" {
		return "No words to review.\n\n" + footerStyle.Render("press any key to exit")
	}
	s := m.summary
	lines := []string{
		termStyle.Render("Session complete"),
		"",
		goodStyle.Render(fmt.Sprintf("%d/%d correct (%.0f%%)", s.Correct, s.Total, s.Accuracy()*100)),
		fmt.Sprintf("Time %s", s.Duration.Round(time.Second)),
		fmt.Sprintf("Streak %d days   Week %d/%d   Due %d", m.stats.Streak, m.stats.WeeklyProgress, m.stats.WeeklyGoal, m.stats.Due),
		"",
		footerStyle.Render("press any key to exit"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) answer(correct bool) {
	if _, err := m.reviewer.Answer(m.ctx, m.word.ID, correct); err != nil {
		m.err = err
		return
	}
	m.advance()
}

// advance moves to the next unanswered word, or to the summary once the
// session has been finalized.
func (m *Model) advance() {
	sess, w, ok := m.reviewer.Current()
	if !ok {
		m.finish(m.session.ID)
		return
	}
	m.session = sess
	m.word = w
	m.revealed = false
}

func (m *Model) finish(sessionID string) {
	m.done = true
	if sessionID == "" {
		sessionID = m.session.ID
	}
	for _, s := range m.reviewer.Sessions() {
		if s.ID == sessionID && sessionID != "" {
			m.summary = s
		}
	}
	m.stats = m.reviewer.Stats()
}

// quit records a partly answered session before exiting.
func (m *Model) quit() tea.Cmd {
	sess, ok, err := m.reviewer.Finalize(m.ctx)
	if err != nil {
		m.err = err
		return tea.Quit
	}
	if ok {
		m.done = true
		m.summary = sess
		m.stats = m.reviewer.Stats()
	}
	return tea.Quit
}
