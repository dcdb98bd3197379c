package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/taskr/internal/api"
	apperrors "github.com/sadopc/taskr/internal/errors"
)

const emptyNameText = "Task name cannot be empty"

// doneColumn is the index of the Done cell in a table row.
const doneColumn = 2

// sortOrder is the row order of the loaded page. sortServer keeps the order
// of the response.
type sortOrder int

const (
	sortServer sortOrder = iota
	sortCreatedAsc
	sortCreatedDesc
	sortUpdatedAsc
	sortUpdatedDesc
	sortOrders
)

func (o sortOrder) String() string {
	switch o {
	case sortCreatedAsc:
		return "created ↑"
	case sortCreatedDesc:
		return "created ↓"
	case sortUpdatedAsc:
		return "updated ↑"
	case sortUpdatedDesc:
		return "updated ↓"
	}
	return "server order"
}

func (o sortOrder) compare(a, b api.Task) int {
	switch o {
	case sortCreatedAsc:
		return a.CreatedAt.Compare(b.CreatedAt)
	case sortCreatedDesc:
		return b.CreatedAt.Compare(a.CreatedAt)
	case sortUpdatedAsc:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case sortUpdatedDesc:
		return b.UpdatedAt.Compare(a.UpdatedAt)
	}
	return 0
}

type tasksModel struct {
	backend  Backend
	log      *log.Logger
	width    int
	height   int
	pageSize int

	received []api.Task // as returned by the server
	tasks    []api.Task // received, in display order
	order    sortOrder
	page     int
	lastPage int
	loading  bool
	loaded   bool
	loadErr  string

	table table.Model
	pager paginator.Model

	formActive bool
	form       *huh.Form
	formName   *string
}

func newTasksModel(b Backend, l *log.Logger, pageSize int) tasksModel {
	km := table.DefaultKeyMap()
	// space toggles done
	km.PageDown.SetKeys("f", "pgdown")

	t := table.New(
		table.WithColumns(taskColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithKeyMap(km),
		table.WithStyles(taskTableStyles()),
	)

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = lipgloss.NewStyle().Foreground(colorPrimary).Render("•")
	p.InactiveDot = mutedStyle.Render("•")
	p.TotalPages = 1

	name := ""
	return tasksModel{
		backend:  b,
		log:      l,
		pageSize: pageSize,
		page:     1,
		lastPage: 1,
		table:    t,
		pager:    p,
		formName: &name,
	}
}

func taskColumns(width int) []table.Column {
	const fixed = 6 + 6 + 16 + 16 + 10 // id, done, two dates, cell padding
	name := max(width-fixed, 16)
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: name},
		{Title: "Done", Width: 6},
		{Title: "Created At", Width: 16},
		{Title: "Updated At", Width: 16},
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetColumns(taskColumns(w - 8))
	m.table.SetHeight(max(h-12, 3))
}

func taskRow(t api.Task) table.Row {
	return table.Row{
		strconv.FormatInt(t.ID, 10),
		t.Name,
		doneMark(t.Done),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	}
}

// load fetches the current page. Responses are applied in arrival order.
func (m tasksModel) load() tea.Cmd {
	page, size := m.page, m.pageSize
	return func() tea.Msg {
		p, err := m.backend.ListTasks(context.Background(), page, size)
		if err != nil {
			m.log.Error("error loading tasks", "page", page, "err", err)
		}
		return tasksLoadedMsg{page: p, err: err}
	}
}

// mount marks the view loading and fetches the page.
func (m tasksModel) mount() (tasksModel, tea.Cmd) {
	m.loading = true
	return m, m.load()
}

// submitCreate validates the name before any request is made.
func (m tasksModel) submitCreate(name string) (tasksModel, tea.Cmd) {
	if strings.TrimSpace(name) == "" {
		return m, func() tea.Msg {
			return statusMsg{text: emptyNameText, isError: true}
		}
	}
	return m, func() tea.Msg {
		task, err := m.backend.CreateTask(context.Background(), name)
		if err != nil {
			m.log.Error("error creating task", "err", err)
			return taskCreatedMsg{err: err}
		}
		m.log.Info("task created", "id", task.ID)
		return taskCreatedMsg{task: task}
	}
}

// toggle sends the inverse of the selected task's done flag.
func (m tasksModel) toggle() tea.Cmd {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.tasks) {
		return nil
	}
	id, done := m.tasks[i].ID, !m.tasks[i].Done
	return func() tea.Msg {
		task, err := m.backend.SetDone(context.Background(), id, done)
		if err != nil {
			m.log.Error("error updating task", "id", id, "err", err)
			return taskToggledMsg{id: id, done: done, err: err}
		}
		m.log.Debug("task updated", "id", task.ID, "done", task.Done)
		return taskToggledMsg{id: id, done: done}
	}
}

// applyOrder rebuilds the rows from the received page in the current order.
// The cursor stays on the selected task.
func (m *tasksModel) applyOrder() {
	var selected int64 = -1
	if i := m.table.Cursor(); i >= 0 && i < len(m.tasks) {
		selected = m.tasks[i].ID
	}

	m.tasks = slices.Clone(m.received)
	if m.order != sortServer {
		slices.SortStableFunc(m.tasks, m.order.compare)
	}

	rows := make([]table.Row, len(m.tasks))
	cursor := min(m.table.Cursor(), max(len(rows)-1, 0))
	for i, t := range m.tasks {
		rows[i] = taskRow(t)
		if t.ID == selected {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(cursor)
}

// setDone changes the Done cell of one row in place.
func (m *tasksModel) setDone(id int64, done bool) {
	for i := range m.received {
		if m.received[i].ID == id {
			m.received[i].Done = done
		}
	}
	for i := range m.tasks {
		if m.tasks[i].ID != id {
			continue
		}
		m.tasks[i].Done = done
		rows := m.table.Rows()
		if i < len(rows) {
			rows[i][doneColumn] = doneMark(done)
			m.table.SetRows(rows)
		}
		return
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = apperrors.GetUserMessage(msg.err)
			return m, nil
		}
		m.loaded = true
		m.loadErr = ""
		m.received = msg.page.Tasks
		m.page = max(msg.page.Page, 1)
		m.lastPage = max(msg.page.LastPage, m.page)
		m.applyOrder()
		m.pager.TotalPages = m.lastPage
		m.pager.Page = m.page - 1
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			return m, statusCmd(apperrors.GetUserMessage(msg.err), true)
		}
		*m.formName = ""
		return m, tea.Batch(statusCmd("Task created", false), m.load())

	case taskToggledMsg:
		if msg.err != nil {
			return m, statusCmd(apperrors.GetUserMessage(msg.err), true)
		}
		m.setDone(msg.id, msg.done)
		return m, nil
	}

	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.New):
			return m.showCreateForm()
		case key.Matches(msg, keys.Toggle):
			return m, m.toggle()
		case key.Matches(msg, keys.Sort):
			m.order = (m.order + 1) % sortOrders
			m.applyOrder()
			return m, nil
		case key.Matches(msg, keys.Reload):
			return m.mount()
		case key.Matches(msg, keys.Left):
			if m.page > 1 {
				m.page--
				return m.mount()
			}
			return m, nil
		case key.Matches(msg, keys.Right):
			if m.page < m.lastPage {
				m.page++
				return m.mount()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m tasksModel) showCreateForm() (tasksModel, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task Name").
				Placeholder("Enter task name").
				Value(m.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m.submitCreate(*m.formName)
	}
	return m, cmd
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (m tasksModel) view(loggedIn bool) string {
	w := m.width - 4

	if !loggedIn {
		return deniedPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Bold(true).Render("Access Denied"),
			"",
			"Please log in to access the tasks page.",
		))
	}

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task"), "", m.form.View()),
		)
	}

	title := titleStyle.Render("Tasks")
	label := fmt.Sprintf("page %d of %d", m.page, m.lastPage)
	if m.order != sortServer {
		label += " · sorted by " + m.order.String()
	}
	pageLabel := mutedStyle.Render(label)
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", pageLabel)

	var body string
	switch {
	case m.loading && !m.loaded:
		body = mutedStyle.Render("Loading tasks...")
	case m.loadErr != "":
		body = errorStyle.Render(m.loadErr) + "\n" + mutedStyle.Render("Press r to retry.")
	case len(m.tasks) == 0:
		body = mutedStyle.Render("No tasks yet. Press n to create one.")
	default:
		body = m.table.View()
	}

	nav := mutedStyle.Render("  n: new  space: toggle done  s: sort  ←/→: page  r: reload  L: logout")

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", body, "", "  "+m.pager.View(), nav,
	))
}
