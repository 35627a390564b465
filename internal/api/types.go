// Package api implements the REST client for the taskdeck backend.
package api

import (
	"net/url"
	"strconv"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusArchived   TaskStatus = "archived"
)

// TaskPriority is the priority level of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// User is the authenticated account identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Task is a single task record. The server is the system of record;
// local copies are replaced wholesale from responses.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CategoryID  string       `json:"categoryId,omitempty"`
	Category    *Category    `json:"category,omitempty"`
	DueDate     string       `json:"dueDate,omitempty"`
	CompletedAt string       `json:"completedAt,omitempty"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
	UserID      string       `json:"userId"`
}

// Category labels tasks. Read-mostly; created but never mutated or
// deleted client-side.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	CategoryID  string       `json:"categoryId,omitempty"`
	DueDate     string       `json:"dueDate,omitempty"`
}

// UpdateTaskRequest is the payload for a partial task update. Nil
// fields are omitted from the request.
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	CategoryID  *string       `json:"categoryId,omitempty"`
	DueDate     *string       `json:"dueDate,omitempty"`
}

// Filters is the transient criteria set applied to a task list fetch.
// Never persisted.
type Filters struct {
	Search     string
	Status     TaskStatus
	Priority   TaskPriority
	CategoryID string
	DueDate    string
	SortBy     string // createdAt, updatedAt, dueDate, priority
	SortOrder  string // asc, desc
	Page       int
	Limit      int
}

// Query encodes the filter set as URL query parameters. Zero-value
// fields are omitted.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.CategoryID != "" {
		q.Set("categoryId", f.CategoryID)
	}
	if f.DueDate != "" {
		q.Set("dueDate", f.DueDate)
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// TaskListResponse is the paginated task list envelope.
type TaskListResponse struct {
	Tasks      []Task `json:"tasks"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// CategoryListResponse is the category list envelope.
type CategoryListResponse struct {
	Items []Category `json:"items"`
	Total int        `json:"total"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// SessionPayload is the body of a successful session check.
type SessionPayload struct {
	User      *User  `json:"user"`
	Token     string `json:"token,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// SessionResponse is the session check envelope. Session is null on
// 401.
type SessionResponse struct {
	Session *SessionPayload `json:"session"`
}

// ChatRequest is the payload for the assistant chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Response string `json:"response"`
}
