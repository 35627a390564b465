// Package testutil provides testing utilities.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"taskdeck/internal/api"
)

// Failure forces a route to respond with the given status and detail.
type Failure struct {
	Status int
	Detail string
}

// FakeBackend is an in-memory implementation of the backend REST
// contract for testing, served as an http.Handler.
type FakeBackend struct {
	mu         sync.Mutex
	users      map[string]fakeUser // email -> user
	tokens     map[string]string   // token -> user id
	tasks      []api.Task
	categories []api.Category
	nextID     int

	// Error injection for testing
	FailLogin          *Failure
	FailRegister       *Failure
	FailLogout         *Failure
	FailSession        *Failure
	FailListTasks      *Failure
	FailCreateTask     *Failure
	FailUpdateTask     *Failure
	FailDeleteTask     *Failure
	FailCompleteTask   *Failure
	FailListCategories *Failure
	FailCreateCategory *Failure
}

type fakeUser struct {
	id       string
	email    string
	name     string
	password string
}

// NewFakeBackend creates a FakeBackend with one seeded account
// (dev@example.com / password123).
func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		users:  make(map[string]fakeUser),
		tokens: make(map[string]string),
	}
	f.users["dev@example.com"] = fakeUser{
		id:       "user-1",
		email:    "dev@example.com",
		name:     "dev",
		password: "password123",
	}
	return f
}

// IssueToken registers a valid token for the seeded user and returns
// it.
func (f *FakeBackend) IssueToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tok := fmt.Sprintf("token-%d", f.nextID)
	f.tokens[tok] = "user-1"
	return tok
}

// RevokeTokens invalidates every issued token.
func (f *FakeBackend) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// AddTask seeds a task.
func (f *FakeBackend) AddTask(id, title string, status api.TaskStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	f.tasks = append(f.tasks, api.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		Priority:  api.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    "user-1",
	})
}

// AddCategory seeds a category.
func (f *FakeBackend) AddCategory(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	f.categories = append(f.categories, api.Category{
		ID:        id,
		Name:      name,
		UserID:    "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Tasks returns a copy of the stored tasks.
func (f *FakeBackend) Tasks() []api.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Handler returns the backend's router.
func (f *FakeBackend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", f.handleLogin)
		r.Post("/auth/register", f.handleRegister)
		r.Post("/auth/logout", f.handleLogout)
		r.Get("/auth/session", f.handleSession)
		r.Get("/tasks/", f.handleListTasks)
		r.Post("/tasks/", f.handleCreateTask)
		r.Put("/tasks/{id}", f.handleUpdateTask)
		r.Delete("/tasks/{id}", f.handleDeleteTask)
		r.Patch("/tasks/{id}/complete", f.handleCompleteTask)
		r.Get("/categories", f.handleListCategories)
		r.Post("/categories", f.handleCreateCategory)
		r.Post("/chat", f.handleChat)
	})
	return r
}

func (f *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailLogin) {
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	u, ok := f.users[strings.ToLower(strings.TrimSpace(req.Email))]
	f.mu.Unlock()
	if !ok || u.password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	f.respondAuth(w, u)
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailRegister) {
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	f.mu.Lock()
	if _, exists := f.users[email]; exists {
		f.mu.Unlock()
		writeDetail(w, http.StatusConflict, "Email already registered")
		return
	}
	f.nextID++
	u := fakeUser{
		id:       fmt.Sprintf("user-%d", f.nextID),
		email:    email,
		name:     req.Name,
		password: req.Password,
	}
	if u.name == "" {
		u.name = strings.Split(email, "@")[0]
	}
	f.users[email] = u
	f.mu.Unlock()

	f.respondAuth(w, u)
}

func (f *FakeBackend) respondAuth(w http.ResponseWriter, u fakeUser) {
	f.mu.Lock()
	f.nextID++
	tok := fmt.Sprintf("token-%d", f.nextID)
	f.tokens[tok] = u.id
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, api.AuthResponse{
		User:      &api.User{ID: u.id, Email: u.email, Name: u.name},
		Token:     tok,
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	})
}

func (f *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailLogout) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (f *FakeBackend) handleSession(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailSession) {
		return
	}
	u, tok, ok := f.authedUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, api.SessionResponse{Session: nil})
		return
	}
	writeJSON(w, http.StatusOK, api.SessionResponse{Session: &api.SessionPayload{
		User:      &api.User{ID: u.id, Email: u.email, Name: u.name},
		Token:     tok,
		ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
	}})
}

func (f *FakeBackend) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailListTasks) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}

	q := r.URL.Query()
	f.mu.Lock()
	var tasks []api.Task
	for _, t := range f.tasks {
		if s := q.Get("status"); s != "" && string(t.Status) != s {
			continue
		}
		if p := q.Get("priority"); p != "" && string(t.Priority) != p {
			continue
		}
		if search := q.Get("search"); search != "" &&
			!strings.Contains(strings.ToLower(t.Title), strings.ToLower(search)) {
			continue
		}
		tasks = append(tasks, t)
	}
	f.mu.Unlock()

	if tasks == nil {
		tasks = []api.Task{}
	}
	writeJSON(w, http.StatusOK, api.TaskListResponse{
		Tasks:      tasks,
		Total:      len(tasks),
		Page:       1,
		Limit:      100,
		TotalPages: 1,
	})
}

func (f *FakeBackend) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailCreateTask) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}
	var req api.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeDetail(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Priority == "" {
		req.Priority = api.PriorityMedium
	}

	f.mu.Lock()
	f.nextID++
	now := time.Now().UTC().Format(time.RFC3339)
	task := api.Task{
		ID:          fmt.Sprintf("task-%d", f.nextID),
		Title:       req.Title,
		Description: req.Description,
		Status:      api.StatusPending,
		Priority:    req.Priority,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      "user-1",
	}
	f.tasks = append(f.tasks, task)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, task)
}

func (f *FakeBackend) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailUpdateTask) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}
	id := chi.URLParam(r, "id")
	var req api.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.CategoryID != nil {
			t.CategoryID = *req.CategoryID
		}
		if req.DueDate != nil {
			t.DueDate = *req.DueDate
		}
		t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, *t)
		return
	}
	writeDetail(w, http.StatusNotFound, "Task not found")
}

func (f *FakeBackend) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailDeleteTask) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Task not found")
}

func (f *FakeBackend) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailCompleteTask) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		now := time.Now().UTC().Format(time.RFC3339)
		f.tasks[i].Status = api.StatusCompleted
		f.tasks[i].CompletedAt = now
		f.tasks[i].UpdatedAt = now
		writeJSON(w, http.StatusOK, f.tasks[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Task not found")
}

func (f *FakeBackend) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailListCategories) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}
	f.mu.Lock()
	items := make([]api.Category, len(f.categories))
	copy(items, f.categories)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, api.CategoryListResponse{Items: items, Total: len(items)})
}

func (f *FakeBackend) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if fail(w, f.FailCreateCategory) {
		return
	}
	if !f.requireAuth(w, r) {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	f.mu.Lock()
	f.nextID++
	now := time.Now().UTC().Format(time.RFC3339)
	cat := api.Category{
		ID:        fmt.Sprintf("cat-%d", f.nextID),
		Name:      req.Name,
		Color:     req.Color,
		UserID:    "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.categories = append(f.categories, cat)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, cat)
}

func (f *FakeBackend) handleChat(w http.ResponseWriter, r *http.Request) {
	if !f.requireAuth(w, r) {
		return
	}
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, api.ChatResponse{Response: "You said: " + req.Message})
}

func (f *FakeBackend) authedUser(r *http.Request) (fakeUser, string, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return fakeUser{}, "", false
	}
	tok := strings.TrimPrefix(auth, "Bearer ")

	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.tokens[tok]
	if !ok {
		return fakeUser{}, "", false
	}
	for _, u := range f.users {
		if u.id == id {
			return u, tok, true
		}
	}
	return fakeUser{}, "", false
}

func (f *FakeBackend) requireAuth(w http.ResponseWriter, r *http.Request) bool {
	if _, _, ok := f.authedUser(r); !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return false
	}
	return true
}

func fail(w http.ResponseWriter, f *Failure) bool {
	if f == nil {
		return false
	}
	writeDetail(w, f.Status, f.Detail)
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
