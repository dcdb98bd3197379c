package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/store"
)

// sessionViewModel shows what is held in session storage.
type sessionViewModel struct {
	store   *store.Store
	session *session.Manager
	apiURL  string
	width   int
	height  int

	items     []store.Item
	expiry    time.Time
	hasExpiry bool
	err       error
}

func newSessionViewModel(st *store.Store, s *session.Manager, apiURL string) sessionViewModel {
	return sessionViewModel{store: st, session: s, apiURL: apiURL}
}

func (s *sessionViewModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type sessionDataMsg struct {
	items     []store.Item
	expiry    time.Time
	hasExpiry bool
	err       error
}

func (s sessionViewModel) refresh() tea.Cmd {
	return func() tea.Msg {
		items, err := s.store.Items()
		exp, ok := s.session.Expiry()
		return sessionDataMsg{items: items, expiry: exp, hasExpiry: ok, err: err}
	}
}

func (s sessionViewModel) update(msg tea.Msg) (sessionViewModel, tea.Cmd) {
	if msg, ok := msg.(sessionDataMsg); ok {
		s.items = msg.items
		s.expiry = msg.expiry
		s.hasExpiry = msg.hasExpiry
		s.err = msg.err
	}
	return s, nil
}

func (s sessionViewModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Session")

	rows := []string{title, ""}
	rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render("API"), highlightStyle.Render(s.apiURL)))

	switch {
	case !s.hasExpiry:
	case time.Until(s.expiry) > 0:
		rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render("Token expires"),
			highlightStyle.Render(s.expiry.Local().Format("15:04:05")+" (in "+time.Until(s.expiry).Round(time.Second).String()+")")))
	default:
		rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(16).Render("Token expires"),
			warningStyle.Render("expired, will refresh on next request")))
	}
	rows = append(rows, "")

	if s.err != nil {
		rows = append(rows, errorStyle.Render("  "+s.err.Error()))
	} else if len(s.items) == 0 {
		rows = append(rows, mutedStyle.Render("  Session storage is empty."))
	}
	for _, it := range s.items {
		value := it.Value
		if it.Key != session.KeyLogged {
			value = maskToken(value)
		}
		label := lipgloss.NewStyle().Width(16).Render(it.Key)
		rows = append(rows, fmt.Sprintf("  %s %s  %s", label, highlightStyle.Render(value),
			mutedStyle.Render(it.UpdatedAt.Local().Format("2006-01-02 15:04:05"))))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
