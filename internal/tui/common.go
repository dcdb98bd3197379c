package tui

import (
	"context"
	"errors"
	"time"

	"github.com/sadopc/taskr/internal/api"
	apperrors "github.com/sadopc/taskr/internal/errors"
)

// viewState represents the currently active view.
type viewState int

const (
	viewLogin viewState = iota
	viewTasks
	viewStats
	viewSession
)

var viewNames = []string{"Login", "Tasks", "Stats", "Session"}

// Backend is the part of the API client the views call.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.Tokens, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
	ListTasks(ctx context.Context, page, size int) (api.TaskPage, error)
	CreateTask(ctx context.Context, name string) (api.Task, error)
	SetDone(ctx context.Context, id int64, done bool) (api.Task, error)
}

// --- Messages ---

type loginDoneMsg struct {
	err error
}

type tasksLoadedMsg struct {
	page api.TaskPage
	err  error
}

type taskCreatedMsg struct {
	task api.Task
	err  error
}

type taskToggledMsg struct {
	id   int64
	done bool
	err  error
}

type loggedOutMsg struct {
	err error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// SessionExpiredMsg is sent when the API client gives up on refreshing the
// session. The app returns to the login view.
type SessionExpiredMsg struct{}

// failed is implemented by messages that report an API result.
type failed interface {
	failure() error
}

func (m loginDoneMsg) failure() error   { return m.err }
func (m tasksLoadedMsg) failure() error { return m.err }
func (m taskCreatedMsg) failure() error { return m.err }
func (m taskToggledMsg) failure() error { return m.err }

func sessionExpired(msg any) bool {
	f, ok := msg.(failed)
	return ok && errors.Is(f.failure(), apperrors.ErrSessionExpired)
}

// --- Helpers ---

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func doneMark(done bool) string {
	if done {
		return "✓"
	}
	return "✗"
}

// maskToken keeps the first few characters of a credential.
func maskToken(s string) string {
	const keep = 8
	if len(s) <= keep {
		return s
	}
	return s[:keep] + "…"
}
