package tui

import (
	"context"
	"fmt"
	"slices"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	apperrors "github.com/sadopc/taskr/internal/errors"
	"github.com/sadopc/taskr/internal/export"
	"github.com/sadopc/taskr/internal/logging"
	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/store"
)

// Config wires the app to its collaborators.
type Config struct {
	Backend   Backend
	Session   *session.Manager
	Store     *store.Store
	Logger    *log.Logger
	PageSize  int
	APIURL    string
	ExportDir string // defaults to the home directory
}

// App is the root Bubble Tea model.
type App struct {
	cfg    Config
	width  int
	height int

	activeView    viewState
	loggedIn      bool
	showHelp      bool
	exportPicking bool
	exportCursor  int

	login       loginModel
	tasks       tasksModel
	stats       statsModel
	sessionView sessionViewModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(cfg Config) App {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 20
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	a := App{
		cfg:         cfg,
		activeView:  viewLogin,
		loggedIn:    cfg.Session.LoggedIn(),
		login:       newLoginModel(cfg.Backend, cfg.Session, cfg.Logger),
		tasks:       newTasksModel(cfg.Backend, cfg.Logger, cfg.PageSize),
		stats:       newStatsModel(),
		sessionView: newSessionViewModel(cfg.Store, cfg.Session, cfg.APIURL),
		help:        h,
	}
	if a.loggedIn {
		a.activeView = viewTasks
		a.tasks.loading = true
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.loggedIn {
		return a.tasks.load()
	}
	return a.login.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.login.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.sessionView.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			if a.activeView == viewLogin && key.Matches(msg, keys.Back) {
				return a.switchTo(viewTasks)
			}
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.activeView == viewTasks && a.loggedIn {
				a.exportPicking = true
				a.exportCursor = 0
			}
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Logout):
			if a.loggedIn {
				a.setStatus("Logging out...", false)
				return a, a.logout()
			}
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewLogin)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewStats)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSession)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case SessionExpiredMsg:
		return a.expireSession()

	case loginDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		if msg.err != nil {
			a.setStatus(loginFailedText, true)
			return a, cmd
		}
		a.loggedIn = true
		a.setStatus("Logged in", false)
		a.tasks = a.freshTasks()
		next, mount := a.switchTo(viewTasks)
		return next, tea.Batch(cmd, mount)

	case loggedOutMsg:
		a.loggedIn = a.cfg.Session.LoggedIn()
		if msg.err != nil {
			a.setStatus("Logged out ("+apperrors.GetUserMessage(msg.err)+")", true)
		} else {
			a.setStatus("Logged out", false)
		}
		a.tasks = a.freshTasks()
		a.stats.refresh(nil)
		a.activeView = viewLogin
		var cmd tea.Cmd
		a.login, cmd = a.login.reset()
		return a, cmd

	case tasksLoadedMsg, taskCreatedMsg, taskToggledMsg:
		if sessionExpired(msg) {
			return a.expireSession()
		}
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		a.stats.refresh(a.tasks.tasks)
		return a, cmd

	case sessionDataMsg:
		a.sessionView, _ = a.sessionView.update(msg)
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) freshTasks() tasksModel {
	t := newTasksModel(a.cfg.Backend, a.cfg.Logger, a.cfg.PageSize)
	t.setSize(a.width, a.height-4)
	return t
}

// switchTo activates v. Entering the tasks view fetches the current page.
func (a App) switchTo(v viewState) (App, tea.Cmd) {
	a.activeView = v
	switch v {
	case viewLogin:
		if !a.loggedIn {
			return a, a.login.Init()
		}
	case viewTasks:
		if a.loggedIn {
			var cmd tea.Cmd
			a.tasks, cmd = a.tasks.mount()
			return a, cmd
		}
	case viewSession:
		return a, a.sessionView.refresh()
	}
	return a, nil
}

// expireSession returns to the login view after the session could not be
// refreshed. The API client has already cleared storage.
func (a App) expireSession() (App, tea.Cmd) {
	a.cfg.Logger.Warn("session expired")
	a.loggedIn = false
	a.setStatus(apperrors.GetUserMessage(apperrors.ErrSessionExpired), true)
	a.tasks = a.freshTasks()
	a.stats.refresh(nil)
	a.exportPicking = false
	a.activeView = viewLogin
	var cmd tea.Cmd
	a.login, cmd = a.login.reset()
	return a, cmd
}

func (a App) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: a.cfg.Session.Logout(context.Background(), a.cfg.Backend)}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewLogin:
		if !a.loggedIn {
			a.login, cmd = a.login.update(msg)
		}
	case viewTasks:
		if a.loggedIn {
			a.tasks, cmd = a.tasks.update(msg)
		}
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSession:
		a.sessionView, cmd = a.sessionView.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewLogin:
		return !a.loggedIn
	case viewTasks:
		return a.loggedIn && a.tasks.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewLogin:
		if a.loggedIn {
			content = panelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left,
				titleStyle.Render("Login"), "",
				"You are logged in.",
				mutedStyle.Render("Press 2 for tasks or L to log out."),
			))
		} else {
			content = a.login.view()
		}
	case viewTasks:
		content = a.tasks.view(a.loggedIn)
	case viewStats:
		content = a.stats.view()
	case viewSession:
		content = a.sessionView.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskr")
	state := mutedStyle.Render("○ logged out")
	if a.loggedIn {
		state = successStyle.Render("● logged in")
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-lipgloss.Width(state)-6, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", state, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(status)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("%d tasks on page %d", len(a.tasks.tasks), a.tasks.page)))
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	// The command runs off the event loop; toggles keep writing to the model.
	tasks := slices.Clone(a.tasks.tasks)
	dir := a.cfg.ExportDir
	return func() tea.Msg {
		path, err := export.Write(f, tasks, dir)
		if err != nil {
			a.cfg.Logger.Error("export failed", "format", f, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		a.cfg.Logger.Info("exported tasks", "path", path, "count", len(tasks))
		return exportDoneMsg{path: path}
	}
}
