package api

import "time"

// Tokens is the credential pair returned by POST /auth/login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Task is a task as served by the API. The client never holds an
// authoritative copy.
type Task struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskPage is one page of GET /tasks. Page and LastPage are 1-based.
type TaskPage struct {
	Tasks    []Task
	Page     int
	LastPage int
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type createTaskRequest struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

type setDoneRequest struct {
	Done bool `json:"done"`
}

// pageEnvelope is the paginated form of GET /tasks.
type pageEnvelope struct {
	LastPage int    `json:"last_page"`
	Data     []Task `json:"data"`
}
