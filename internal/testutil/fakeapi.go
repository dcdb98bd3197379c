// Package testutil provides an in-process fake of the task API for tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Default credentials accepted by the fake.
const (
	Email    = "ada@example.com"
	Password = "hunter2"
)

// Task mirrors the JSON shape the API serves.
type Task struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Request is what the fake saw of one inbound call.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          string
}

// FakeAPI serves the task API from memory. Zero status fields mean normal
// behaviour; a non-zero value makes the endpoint answer with that status.
type FakeAPI struct {
	Server *httptest.Server

	// Error injection
	LoginStatus   int
	RefreshStatus int
	LogoutStatus  int
	ListStatus    int
	CreateStatus  int
	UpdateStatus  int

	// AlwaysUnauthorized answers 401 on every task endpoint.
	AlwaysUnauthorized bool
	// BareArray serves GET /tasks as a plain JSON array of every task.
	BareArray bool
	// RefreshDelay holds refresh responses to widen race windows.
	RefreshDelay time.Duration

	LoginCalls   atomic.Int32
	RefreshCalls atomic.Int32
	LogoutCalls  atomic.Int32

	secret []byte

	mu       sync.Mutex
	tasks    []Task
	nextID   int64
	access   map[string]bool
	refresh  map[string]bool
	requests []Request
}

// NewFakeAPI starts the fake. Its base URL is URL().
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		secret:  []byte("fake-api-secret"),
		nextID:  1,
		access:  make(map[string]bool),
		refresh: make(map[string]bool),
	}

	r := mux.NewRouter()
	r.Use(f.record)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", f.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", f.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", f.authed(f.handleLogout)).Methods(http.MethodPost)
	api.HandleFunc("/tasks", f.authed(f.handleList)).Methods(http.MethodGet)
	api.HandleFunc("/tasks", f.authed(f.handleCreate)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id:[0-9]+}", f.authed(f.handleUpdate)).Methods(http.MethodPatch)

	f.Server = httptest.NewServer(r)
	return f
}

// URL is the API base URL, including the /api prefix.
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

func (f *FakeAPI) Close() {
	f.Server.Close()
}

// AddTask seeds a task and returns it.
func (f *FakeAPI) AddTask(name string, done bool) Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(name, done)
}

func (f *FakeAPI) addLocked(name string, done bool) Task {
	now := time.Now().UTC().Truncate(time.Second)
	t := Task{ID: f.nextID, Name: name, Done: done, CreatedAt: now, UpdatedAt: now}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Tasks returns a copy of the stored tasks.
func (f *FakeAPI) Tasks() []Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// IssueTokens mints a session as if the user had logged in.
func (f *FakeAPI) IssueTokens() (access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	access = f.mintLocked(15*time.Minute, true)
	refresh = f.mintLocked(24*time.Hour, false)
	return access, refresh
}

// ExpireAccessTokens invalidates every access token issued so far.
func (f *FakeAPI) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]bool)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (f *FakeAPI) RevokeRefreshTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = make(map[string]bool)
}

// Requests returns the recorded calls, oldest first.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo filters Requests by method and path (without the /api prefix).
func (f *FakeAPI) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == "/api"+path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeAPI) mintLocked(ttl time.Duration, isAccess bool) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   Email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		panic(err)
	}
	if isAccess {
		f.access[signed] = true
	} else {
		f.refresh[signed] = true
	}
	return signed
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		f.mu.Lock()
		f.requests = append(f.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authed rejects requests without a live access token.
func (f *FakeAPI) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f.AlwaysUnauthorized || !f.validAccess(r.Header.Get("Authorization")) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		h(w, r)
	}
}

func (f *FakeAPI) validAccess(header string) bool {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return false
	}
	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return f.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access[raw]
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.LoginCalls.Add(1)
	if f.LoginStatus != 0 {
		writeJSON(w, f.LoginStatus, map[string]string{"message": "injected"})
		return
	}
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	if in.Email != Email || in.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	access, refresh := f.IssueTokens()
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access, "refreshToken": refresh})
}

func (f *FakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.RefreshCalls.Add(1)
	if f.RefreshDelay > 0 {
		time.Sleep(f.RefreshDelay)
	}
	if f.RefreshStatus != 0 {
		writeJSON(w, f.RefreshStatus, map[string]string{"message": "injected"})
		return
	}
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.refresh[in.RefreshToken] {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
		return
	}
	// a new access token supersedes every older one
	f.access = make(map[string]bool)
	access := f.mintLocked(15*time.Minute, true)
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": access})
}

func (f *FakeAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	f.LogoutCalls.Add(1)
	if f.LogoutStatus != 0 {
		writeJSON(w, f.LogoutStatus, map[string]string{"message": "injected"})
		return
	}
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	delete(f.refresh, in.RefreshToken)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (f *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if f.ListStatus != 0 {
		writeJSON(w, f.ListStatus, map[string]string{"message": "injected"})
		return
	}
	tasks := f.Tasks()
	if f.BareArray {
		writeJSON(w, http.StatusOK, tasks)
		return
	}

	page := atoiOr(r.URL.Query().Get("page"), 1)
	size := atoiOr(r.URL.Query().Get("size"), 20)
	last := max((len(tasks)+size-1)/size, 1)
	start := min((page-1)*size, len(tasks))
	end := min(start+size, len(tasks))
	writeJSON(w, http.StatusOK, map[string]any{
		"last_page": last,
		"data":      tasks[start:end],
	})
}

func (f *FakeAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	if f.CreateStatus != 0 {
		writeJSON(w, f.CreateStatus, map[string]string{"message": "injected"})
		return
	}
	var in struct {
		Name string `json:"name"`
		Done bool   `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "name required"})
		return
	}
	f.mu.Lock()
	t := f.addLocked(in.Name, in.Done)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (f *FakeAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if f.UpdateStatus != 0 {
		writeJSON(w, f.UpdateStatus, map[string]string{"message": "injected"})
		return
	}
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var in struct {
		Done *bool `json:"done"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Done == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "done required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Done = *in.Done
			f.tasks[i].UpdatedAt = time.Now().UTC().Truncate(time.Second)
			writeJSON(w, http.StatusOK, f.tasks[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
