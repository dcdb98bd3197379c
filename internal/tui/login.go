package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/taskr/internal/session"
)

const loginFailedText = "Login failed. Please check your credentials."

type loginModel struct {
	backend Backend
	session *session.Manager
	log     *log.Logger
	width   int
	height  int

	form       *huh.Form
	submitting bool
	failed     bool

	// Form field pointers (survive value copies)
	email    *string
	password *string
}

func newLoginModel(b Backend, s *session.Manager, l *log.Logger) loginModel {
	email, password := "", ""
	m := loginModel{
		backend:  b,
		session:  s,
		log:      l,
		email:    &email,
		password: &password,
	}
	m.form = m.buildForm()
	return m
}

func (m *loginModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// buildForm binds to the same pointers, so a rebuilt form keeps what the
// user typed.
func (m loginModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Validate(required("email")).
				Value(m.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(required("password")).
				Value(m.password),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m loginModel) Init() tea.Cmd {
	return m.form.Init()
}

// reset clears the password and starts a fresh form.
func (m loginModel) reset() (loginModel, tea.Cmd) {
	*m.password = ""
	m.failed = false
	m.submitting = false
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if msg, ok := msg.(loginDoneMsg); ok {
		m.submitting = false
		if msg.err != nil {
			m.failed = true
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m.reset()
	}

	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.submit()
	}
	return m, cmd
}

// submit exchanges the credentials for tokens and stores them.
func (m loginModel) submit() tea.Cmd {
	email, password := *m.email, *m.password
	return func() tea.Msg {
		tokens, err := m.backend.Login(context.Background(), email, password)
		if err != nil {
			m.log.Error("error logging in", "email", email, "err", err)
			return loginDoneMsg{err: err}
		}
		err = m.session.Login(session.Tokens{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		})
		if err != nil {
			m.log.Error("store session", "err", err)
			return loginDoneMsg{err: err}
		}
		return loginDoneMsg{}
	}
}

func (m loginModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("Login")

	rows := []string{title, ""}
	if m.submitting {
		rows = append(rows, mutedStyle.Render("Signing in..."), "")
	} else if m.failed {
		rows = append(rows, errorStyle.Render(loginFailedText), "")
	}
	rows = append(rows, m.form.View())

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
