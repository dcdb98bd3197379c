package tui

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/taskr/internal/api"
	"github.com/sadopc/taskr/internal/export"
	"github.com/sadopc/taskr/internal/logging"
	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/store"
	"github.com/sadopc/taskr/internal/testutil"
)

type harness struct {
	fake   *testutil.FakeAPI
	store  *store.Store
	sess   *session.Manager
	client *api.Client
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := testutil.NewFakeAPI()
	t.Cleanup(fake.Close)

	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	sess := session.NewManager(s, nil)
	return &harness{
		fake:   fake,
		store:  s,
		sess:   sess,
		client: api.New(fake.URL(), sess),
		dir:    t.TempDir(),
	}
}

func (h *harness) logIn(t *testing.T) {
	t.Helper()
	access, refresh := h.fake.IssueTokens()
	if err := h.sess.Login(session.Tokens{AccessToken: access, RefreshToken: refresh}); err != nil {
		t.Fatal(err)
	}
}

func (h *harness) newApp() App {
	a := NewApp(Config{
		Backend:   h.client,
		Session:   h.sess,
		Store:     h.store,
		PageSize:  5,
		APIURL:    h.fake.URL(),
		ExportDir: h.dir,
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func update(a App, msg tea.Msg) (App, tea.Cmd) {
	m, cmd := a.Update(msg)
	return m.(App), cmd
}

// loadedApp is a logged-in app showing the first page.
func loadedApp(t *testing.T, h *harness) App {
	t.Helper()
	h.logIn(t)
	a := h.newApp()
	a, _ = update(a, a.Init()())
	if !a.tasks.loaded {
		t.Fatalf("tasks not loaded: %q", a.tasks.loadErr)
	}
	return a
}

// run executes cmd and any batch it expands to. Only use with commands that
// return immediately.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Startup
// ============================================================

func TestNewAppLoggedOut(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()

	if a.activeView != viewLogin {
		t.Fatal("logged-out app should open on the login view")
	}
	if a.loggedIn {
		t.Fatal("should not be logged in")
	}
	if !a.isFormActive() {
		t.Fatal("login form should capture input")
	}
	if a.showHelp || a.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	if !strings.Contains(a.View(), "Password") {
		t.Fatal("login view should render the password field")
	}
}

func TestNewAppLoggedInLoadsTasks(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("write report", false)
	h.logIn(t)

	a := h.newApp()
	if a.activeView != viewTasks {
		t.Fatal("stored session should open on the tasks view")
	}
	if !a.tasks.loading {
		t.Fatal("tasks should be loading on mount")
	}

	msg := a.Init()()
	loaded, ok := msg.(tasksLoadedMsg)
	if !ok {
		t.Fatalf("Init should fetch tasks, got %T", msg)
	}
	if loaded.err != nil || len(loaded.page.Tasks) != 1 {
		t.Fatalf("unexpected load result: %+v", loaded)
	}
}

func TestAppLoadingState(t *testing.T) {
	h := newHarness(t)
	a := NewApp(Config{Backend: h.client, Session: h.sess, Store: h.store})
	// Width 0 means not yet sized
	if out := a.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

// ============================================================
// Access gate
// ============================================================

func TestTasksViewDeniedWhenLoggedOut(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()

	a, cmd := a.switchTo(viewTasks)
	if cmd != nil {
		t.Fatal("no fetch should happen while logged out")
	}
	out := a.View()
	if !strings.Contains(out, "Access Denied") || !strings.Contains(out, "Please log in to access the tasks page.") {
		t.Fatalf("expected access denied panel, got:\n%s", out)
	}
	if a.activeView != viewTasks {
		t.Fatal("access denied is shown in place, not redirected")
	}
	if len(h.fake.RequestsTo(http.MethodGet, "/tasks")) != 0 {
		t.Fatal("no request expected")
	}
}

// ============================================================
// Login flow
// ============================================================

func TestLoginSuccess(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()
	*a.login.email = testutil.Email
	*a.login.password = testutil.Password

	msg := a.login.submit()()
	a, cmd := update(a, msg)

	if !a.loggedIn || !h.sess.LoggedIn() {
		t.Fatal("should be logged in")
	}
	if a.activeView != viewTasks {
		t.Fatal("successful login should switch to tasks")
	}
	if cmd == nil {
		t.Fatal("entering tasks should fetch the page")
	}
	if *a.login.password != "" {
		t.Fatal("password should be cleared after login")
	}
	if h.sess.AccessToken() == "" || h.sess.RefreshToken() == "" {
		t.Fatal("tokens should be stored")
	}
}

func TestLoginFailureKeepsForm(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()
	*a.login.email = testutil.Email
	*a.login.password = "wrong"

	msg := a.login.submit()()
	a, _ = update(a, msg)

	if a.loggedIn || a.activeView != viewLogin {
		t.Fatal("failed login should stay on the login view")
	}
	if a.status != loginFailedText || !a.statusErr {
		t.Fatalf("status = %q", a.status)
	}
	if *a.login.email != testutil.Email || *a.login.password != "wrong" {
		t.Fatal("form should stay populated")
	}
	if !strings.Contains(a.View(), loginFailedText) {
		t.Fatal("failure notice should be rendered")
	}
	if items, _ := h.store.Items(); len(items) != 0 {
		t.Fatal("nothing should be stored")
	}
	if h.fake.LoginCalls.Load() != 1 {
		t.Fatal("one attempt, no retry")
	}
}

func TestLoginSendsEmailAsTyped(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()
	typed := "  " + testutil.Email + " "
	*a.login.email = typed
	*a.login.password = testutil.Password

	a, _ = update(a, a.login.submit()())

	reqs := h.fake.RequestsTo(http.MethodPost, "/auth/login")
	if len(reqs) != 1 {
		t.Fatalf("expected one login request, got %d", len(reqs))
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal([]byte(reqs[0].Body), &body); err != nil {
		t.Fatal(err)
	}
	if body.Email != typed {
		t.Fatalf("email sent = %q, want %q", body.Email, typed)
	}
	if a.loggedIn {
		t.Fatal("the server decides whether padded credentials match")
	}
}

func TestRequiredAcceptsWhitespace(t *testing.T) {
	if err := required("password")("   "); err != nil {
		t.Fatalf("whitespace is a value: %v", err)
	}
	if err := required("email")(""); err == nil {
		t.Fatal("empty input should be rejected")
	}
}

func TestLoginEscShowsTasksGate(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()

	a, _ = update(a, keyMsg("esc"))
	if a.activeView != viewTasks {
		t.Fatal("esc should leave the login form")
	}
}

// ============================================================
// Task list
// ============================================================

func TestTasksRender(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("write report", true)
	h.fake.AddTask("buy milk", false)
	a := loadedApp(t, h)

	out := a.View()
	for _, want := range []string{"write report", "buy milk", "✓", "✗", "Created At", "Updated At"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}

	reqs := h.fake.RequestsTo(http.MethodGet, "/tasks")
	if len(reqs) != 1 || reqs[0].Query != "page=1&size=5" {
		t.Fatalf("unexpected fetch: %+v", reqs)
	}
}

func TestPagination(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 7; i++ {
		h.fake.AddTask("task", false)
	}
	a := loadedApp(t, h)

	if a.tasks.lastPage != 2 || a.tasks.pager.TotalPages != 2 {
		t.Fatalf("lastPage = %d, want 2", a.tasks.lastPage)
	}

	a, cmd := update(a, keyMsg("right"))
	if a.tasks.page != 2 || cmd == nil {
		t.Fatal("right should request page 2")
	}
	a, _ = update(a, cmd())
	if len(a.tasks.tasks) != 2 {
		t.Fatalf("page 2 should hold 2 tasks, got %d", len(a.tasks.tasks))
	}

	// already on the last page
	if _, cmd = update(a, keyMsg("right")); cmd != nil {
		t.Fatal("right on last page should not fetch")
	}

	a, cmd = update(a, keyMsg("left"))
	if a.tasks.page != 1 || cmd == nil {
		t.Fatal("left should go back to page 1")
	}
}

func TestCreateEmptyNameMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	a := loadedApp(t, h)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, cmd := a.tasks.submitCreate(name)
		msgs := run(cmd)
		if len(msgs) != 1 {
			t.Fatalf("expected one message, got %d", len(msgs))
		}
		st, ok := msgs[0].(statusMsg)
		if !ok || st.text != emptyNameText || !st.isError {
			t.Fatalf("unexpected message %#v", msgs[0])
		}
	}

	if n := len(h.fake.RequestsTo(http.MethodPost, "/tasks")); n != 0 {
		t.Fatalf("empty names must not reach the server, saw %d requests", n)
	}
}

func TestCreateTaskClearsInputAndReloads(t *testing.T) {
	h := newHarness(t)
	a := loadedApp(t, h)
	*a.tasks.formName = "buy milk"

	_, cmd := a.tasks.submitCreate(*a.tasks.formName)
	a, cmd = update(a, cmd())

	if *a.tasks.formName != "" {
		t.Fatal("input should be cleared on success")
	}
	if len(a.tasks.tasks) != 0 {
		t.Fatal("no optimistic insert")
	}

	for _, msg := range run(cmd) {
		a, _ = update(a, msg)
	}
	if len(a.tasks.tasks) != 1 || a.tasks.tasks[0].Name != "buy milk" {
		t.Fatalf("reload should show the new task, got %+v", a.tasks.tasks)
	}
	if len(h.fake.RequestsTo(http.MethodGet, "/tasks")) != 2 {
		t.Fatal("creation should trigger exactly one full reload")
	}
	if a.status != "Task created" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestCreateTaskFailureKeepsInput(t *testing.T) {
	h := newHarness(t)
	h.fake.CreateStatus = http.StatusInternalServerError
	a := loadedApp(t, h)
	*a.tasks.formName = "buy milk"

	_, cmd := a.tasks.submitCreate(*a.tasks.formName)
	a, cmd = update(a, cmd())
	for _, msg := range run(cmd) {
		a, _ = update(a, msg)
	}

	if *a.tasks.formName != "buy milk" {
		t.Fatal("input should survive a failed create")
	}
	if !a.statusErr {
		t.Fatal("failure should be shown")
	}
}

func TestToggleUpdatesSingleCell(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("water plants", false)
	h.fake.AddTask("call mum", true)
	a := loadedApp(t, h)

	msg := a.tasks.toggle()()
	a, cmd := update(a, msg)
	if cmd != nil {
		t.Fatal("a successful toggle should not reload")
	}

	reqs := h.fake.RequestsTo(http.MethodPatch, "/tasks/1")
	if len(reqs) != 1 || reqs[0].Body != `{"done":true}` {
		t.Fatalf("expected inverted flag to be sent, got %+v", reqs)
	}
	rows := a.tasks.table.Rows()
	if rows[0][doneColumn] != "✓" {
		t.Fatalf("row 0 done cell = %q, want ✓", rows[0][doneColumn])
	}
	if rows[1][doneColumn] != "✓" {
		t.Fatal("other rows must not change")
	}
	if !a.tasks.tasks[0].Done {
		t.Fatal("local task should be marked done")
	}
	if len(h.fake.RequestsTo(http.MethodGet, "/tasks")) != 1 {
		t.Fatal("toggle must not refetch the table")
	}
}

func TestToggleFailureLeavesCell(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("water plants", false)
	h.fake.UpdateStatus = http.StatusInternalServerError
	a := loadedApp(t, h)

	a, cmd := update(a, a.tasks.toggle()())
	if got := a.tasks.table.Rows()[0][doneColumn]; got != "✗" {
		t.Fatalf("cell changed on failure: %q", got)
	}
	msgs := run(cmd)
	if len(msgs) != 1 {
		t.Fatal("failure should produce a status message")
	}
	if st, ok := msgs[0].(statusMsg); !ok || !st.isError {
		t.Fatalf("unexpected message %#v", msgs[0])
	}
}

func TestToggleWithNoTasks(t *testing.T) {
	h := newHarness(t)
	a := loadedApp(t, h)
	if a.tasks.toggle() != nil {
		t.Fatal("nothing to toggle")
	}
}

func sortFixture() tasksLoadedMsg {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return tasksLoadedMsg{page: api.TaskPage{
		Page:     1,
		LastPage: 1,
		Tasks: []api.Task{
			{ID: 1, Name: "a", CreatedAt: t0.Add(2 * time.Hour), UpdatedAt: t0.Add(time.Hour)},
			{ID: 2, Name: "b", CreatedAt: t0, UpdatedAt: t0.Add(3 * time.Hour)},
			{ID: 3, Name: "c", CreatedAt: t0.Add(time.Hour), UpdatedAt: t0},
		},
	}}
}

func rowIDs(m tasksModel) string {
	var ids []string
	for _, r := range m.table.Rows() {
		ids = append(ids, r[0])
	}
	return strings.Join(ids, ",")
}

func TestSortCycle(t *testing.T) {
	m := newTasksModel(nil, logging.Discard(), 5)
	m.setSize(120, 36)
	m, _ = m.update(sortFixture())
	if got := rowIDs(m); got != "1,2,3" {
		t.Fatalf("server order = %s", got)
	}

	want := []struct {
		order sortOrder
		ids   string
	}{
		{sortCreatedAsc, "2,3,1"},
		{sortCreatedDesc, "1,3,2"},
		{sortUpdatedAsc, "3,1,2"},
		{sortUpdatedDesc, "2,1,3"},
		{sortServer, "1,2,3"},
	}
	for _, w := range want {
		var cmd tea.Cmd
		m, cmd = m.update(keyMsg("s"))
		if cmd != nil {
			t.Fatalf("%s: sorting should not issue a command", w.order)
		}
		if m.order != w.order {
			t.Fatalf("order = %s, want %s", m.order, w.order)
		}
		if got := rowIDs(m); got != w.ids {
			t.Fatalf("%s: rows = %s, want %s", w.order, got, w.ids)
		}
		for i, task := range m.tasks {
			if m.table.Rows()[i][0] != strconv.FormatInt(task.ID, 10) {
				t.Fatalf("%s: tasks and rows out of step", w.order)
			}
		}
	}
}

func TestSortKeepsCursorOnTask(t *testing.T) {
	m := newTasksModel(nil, logging.Discard(), 5)
	m.setSize(120, 36)
	m, _ = m.update(sortFixture())
	m.table.SetCursor(1) // task 2

	m, _ = m.update(keyMsg("s")) // created asc: 2,3,1
	if m.table.Cursor() != 0 {
		t.Fatalf("cursor = %d, want the row of task 2", m.table.Cursor())
	}
}

func TestSortSurvivesReload(t *testing.T) {
	m := newTasksModel(nil, logging.Discard(), 5)
	m.setSize(120, 36)
	m, _ = m.update(sortFixture())
	m, _ = m.update(keyMsg("s"))
	m, _ = m.update(keyMsg("s")) // created desc

	m, _ = m.update(sortFixture())
	if got := rowIDs(m); got != "1,3,2" {
		t.Fatalf("reloaded rows = %s, want created desc", got)
	}
	if !strings.Contains(m.view(true), "sorted by created ↓") {
		t.Fatal("header should name the sort")
	}
}

func TestSortMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"one", "two", "three"} {
		h.fake.AddTask(name, false)
	}
	a := loadedApp(t, h)
	before := len(h.fake.Requests())

	for range 4 {
		var cmd tea.Cmd
		a, cmd = update(a, keyMsg("s"))
		if cmd != nil {
			t.Fatal("sorting should not fetch")
		}
	}
	if len(h.fake.Requests()) != before {
		t.Fatal("sorting must not touch the network")
	}
	if len(a.tasks.tasks) != 3 {
		t.Fatal("sorting should keep the loaded page")
	}
}

func TestToggleAfterSort(t *testing.T) {
	m := newTasksModel(nil, logging.Discard(), 5)
	m.setSize(120, 36)
	m, _ = m.update(sortFixture())
	m, _ = m.update(keyMsg("s")) // created asc: 2,3,1

	m, _ = m.update(taskToggledMsg{id: 1, done: true})
	rows := m.table.Rows()
	if rows[2][doneColumn] != "✓" {
		t.Fatalf("task 1 row = %v, want done", rows[2])
	}
	if rows[0][doneColumn] != "✗" || rows[1][doneColumn] != "✗" {
		t.Fatal("other rows must not change")
	}

	// back to server order: the toggle is kept
	for range 4 {
		m, _ = m.update(keyMsg("s"))
	}
	if m.order != sortServer || m.table.Rows()[0][doneColumn] != "✓" {
		t.Fatalf("toggle lost after resort: %v", m.table.Rows()[0])
	}
}

// ============================================================
// Session boundaries
// ============================================================

func TestSessionExpiryReturnsToLogin(t *testing.T) {
	h := newHarness(t)
	a := loadedApp(t, h)
	h.fake.ExpireAccessTokens()
	h.fake.RevokeRefreshTokens()

	a, _ = update(a, a.tasks.load()())

	if a.activeView != viewLogin || a.loggedIn {
		t.Fatal("expired session should land on the login view")
	}
	if !strings.Contains(a.status, "Session expired") {
		t.Fatalf("status = %q", a.status)
	}
	if items, _ := h.store.Items(); len(items) != 0 {
		t.Fatal("session storage should be empty")
	}
}

func TestSessionExpiredMsg(t *testing.T) {
	h := newHarness(t)
	a := loadedApp(t, h)

	a, _ = update(a, SessionExpiredMsg{})
	if a.activeView != viewLogin || a.loggedIn {
		t.Fatal("hook message should land on the login view")
	}
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server ok", 0},
		{"server fails", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.fake.LogoutStatus = tt.status
			a := loadedApp(t, h)

			a, cmd := update(a, keyMsg("L"))
			if cmd == nil {
				t.Fatal("L should log out")
			}
			a, _ = update(a, cmd())

			if h.fake.LogoutCalls.Load() != 1 {
				t.Fatal("server should be notified once")
			}
			if items, _ := h.store.Items(); len(items) != 0 {
				t.Fatal("all session keys should be cleared")
			}
			if a.loggedIn || a.activeView != viewLogin {
				t.Fatal("should be back on the login view")
			}
			if !strings.HasPrefix(a.status, "Logged out") {
				t.Fatalf("status = %q", a.status)
			}
			if a.statusErr != (tt.status != 0) {
				t.Fatal("server failure should be flagged")
			}
		})
	}
}

// ============================================================
// Export
// ============================================================

func TestExportPicker(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("write report", true)
	a := loadedApp(t, h)

	a, _ = update(a, keyMsg("e"))
	if !a.exportPicking {
		t.Fatal("e should open the export picker")
	}
	if !strings.Contains(a.View(), "Export Format") {
		t.Fatal("picker should render")
	}
	a, _ = update(a, keyMsg("esc"))
	if a.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestDoExport(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("write report", true)
	a := loadedApp(t, h)

	for _, f := range export.Formats {
		msg := a.doExport(f)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("export %s failed: %#v", f, msg)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatal(err)
		}
		a, _ = update(a, msg)
		if !strings.Contains(a.status, "Exported to") {
			t.Fatalf("status = %q", a.status)
		}
	}
}

func TestDoExportSnapshotsTasks(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("write report", true)
	a := loadedApp(t, h)

	cmd := a.doExport(export.FormatJSON)
	a.tasks.tasks[0].Done = false // a toggle landing before the write

	done, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatal("export failed")
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Done  int `json:"done"`
		Tasks []struct {
			Done bool `json:"done"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Done != 1 || len(out.Tasks) != 1 || !out.Tasks[0].Done {
		t.Fatalf("export should hold the page as it was when started: %s", data)
	}
}

// ============================================================
// Stats and session views
// ============================================================

func TestStatsCounts(t *testing.T) {
	now := time.Now()
	s := newStatsModel()
	s.setSize(120, 36)
	s.refresh([]api.Task{
		{ID: 1, Name: "a", Done: true, CreatedAt: now},
		{ID: 2, Name: "b", Done: false, CreatedAt: now},
		{ID: 3, Name: "c", Done: false, CreatedAt: now.AddDate(0, 0, -30)},
	})

	if s.done != 1 || s.open != 2 {
		t.Fatalf("done=%d open=%d", s.done, s.open)
	}
	out := s.view()
	if !strings.Contains(out, "1 done") || !strings.Contains(out, "33% complete") {
		t.Fatalf("unexpected stats view:\n%s", out)
	}

	s, _ = s.update(keyMsg("left"))
	if s.offset != 1 {
		t.Fatal("left should shift the window back")
	}
}

func TestStatsFollowLoadedTasks(t *testing.T) {
	h := newHarness(t)
	h.fake.AddTask("a", true)
	a := loadedApp(t, h)
	if a.stats.done != 1 {
		t.Fatal("stats should track the loaded page")
	}
}

func TestSessionView(t *testing.T) {
	h := newHarness(t)
	a := loadedApp(t, h)
	token := h.sess.AccessToken()

	a, cmd := update(a, keyMsg("4"))
	if a.activeView != viewSession || cmd == nil {
		t.Fatal("4 should open the session view")
	}
	a, _ = update(a, cmd())

	out := a.View()
	if !strings.Contains(out, "accessToken") || !strings.Contains(out, "refreshToken") {
		t.Fatalf("session keys missing:\n%s", out)
	}
	if strings.Contains(out, token) {
		t.Fatal("tokens should be masked")
	}
	if !strings.Contains(out, "Token expires") {
		t.Fatal("JWT expiry should be shown")
	}
}

// ============================================================
// Helpers, header, keys and styles
// ============================================================

func TestHelpers(t *testing.T) {
	if formatTime(time.Time{}) != "-" {
		t.Fatal("zero time should render as -")
	}
	if doneMark(true) != "✓" || doneMark(false) != "✗" {
		t.Fatal("unexpected done marks")
	}
	if maskToken("short") != "short" {
		t.Fatal("short values are shown as-is")
	}
	if got := maskToken("abcdefghijkl"); got != "abcdefgh…" {
		t.Fatalf("maskToken = %q", got)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()

	header := a.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
	if !strings.Contains(header, "logged out") {
		t.Fatal("header should show session state")
	}
}

func TestAppStatusMessage(t *testing.T) {
	h := newHarness(t)
	a := h.newApp()

	a, _ = update(a, statusMsg{text: "test status"})
	if !strings.Contains(a.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"deniedPanel", func() string { return deniedPanelStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
