// Package store maintains the in-memory, server-synchronized task and
// category collections.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/api"
	"taskdeck/internal/logger"
)

// ErrMutationInFlight is returned when a mutation targets a task that
// already has one in flight. Overlapping mutations on the same entity
// are rejected rather than allowed to race.
var ErrMutationInFlight = errors.New("another change to this task is still in flight")

// TaskAPI is the slice of the backend the task store needs.
// *api.Client satisfies it.
type TaskAPI interface {
	ListTasks(ctx context.Context, filters api.Filters) (*api.TaskListResponse, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.Task, error)
	UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*api.Task, error)
	DeleteTask(ctx context.Context, id string) error
	CompleteTask(ctx context.Context, id string) (*api.Task, error)
}

// AuthChecker gates fetches on session presence. *session.Manager
// satisfies it.
type AuthChecker interface {
	IsAuthenticated() bool
}

// TaskStore owns the local task collection. The server is the system
// of record: fetches replace the collection wholesale, mutations
// reconcile by id. No task appears twice.
type TaskStore struct {
	mu       sync.Mutex
	tasks    []api.Task
	lastErr  string
	inflight map[string]struct{}

	api  TaskAPI
	auth AuthChecker
	log  *logger.Logger
}

// NewTaskStore creates an empty TaskStore.
func NewTaskStore(a TaskAPI, auth AuthChecker, log *logger.Logger) *TaskStore {
	if log == nil {
		log = logger.Discard()
	}
	return &TaskStore{
		inflight: make(map[string]struct{}),
		api:      a,
		auth:     auth,
		log:      log,
	}
}

// Tasks returns a copy of the current collection.
func (s *TaskStore) Tasks() []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Err returns the last recorded error message, empty when the last
// operation succeeded.
func (s *TaskStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearErr resets the error message.
func (s *TaskStore) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// Fetch replaces the collection from the server. While the session is
// absent it is a silent no-op. On failure the previous collection is
// left untouched and the error message recorded; fetch failures are
// surfaced as a page-level message, not returned.
func (s *TaskStore) Fetch(ctx context.Context, filters api.Filters) {
	if !s.auth.IsAuthenticated() {
		s.log.Debug("skipping task fetch: not authenticated")
		return
	}

	s.ClearErr()
	resp, err := s.api.ListTasks(ctx, filters)
	if err != nil {
		s.recordErr(err, "Failed to fetch tasks")
		s.log.Error("task fetch failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A missing tasks field in the response means an empty board, not
	// an error.
	s.tasks = resp.Tasks
	if s.tasks == nil {
		s.tasks = []api.Task{}
	}
}

// Create posts a new task. A placeholder with a locally assigned id is
// unshifted immediately for perceived latency and replaced by the
// server's task on success; on failure the placeholder is rolled back
// and the error returned so the caller can keep the form open.
func (s *TaskStore) Create(ctx context.Context, req api.CreateTaskRequest) (*api.Task, error) {
	s.ClearErr()

	placeholder := placeholderTask(req)
	s.mu.Lock()
	s.tasks = append([]api.Task{placeholder}, s.tasks...)
	s.mu.Unlock()

	task, err := s.api.CreateTask(ctx, req)
	if err != nil {
		s.removeByID(placeholder.ID)
		s.recordErr(err, "Failed to create task")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := false
	for i := range s.tasks {
		if s.tasks[i].ID == placeholder.ID {
			s.tasks[i] = *task
			replaced = true
			break
		}
	}
	if !replaced {
		s.tasks = append([]api.Task{*task}, s.tasks...)
	}
	s.dedupe(task.ID)
	return task, nil
}

// Update applies a partial update and replaces the matching task in
// place by id. No reorder, no optimistic pre-update.
func (s *TaskStore) Update(ctx context.Context, id string, req api.UpdateTaskRequest) (*api.Task, error) {
	if !s.acquire(id) {
		return nil, ErrMutationInFlight
	}
	defer s.release(id)
	s.ClearErr()

	task, err := s.api.UpdateTask(ctx, id, req)
	if err != nil {
		s.recordErr(err, "Failed to update task")
		return nil, err
	}
	s.replaceByID(id, *task)
	return task, nil
}

// Delete removes the task locally only after server confirmation. An
// erroneous delete is harder to recover from than a stale row.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if !s.acquire(id) {
		return ErrMutationInFlight
	}
	defer s.release(id)
	s.ClearErr()

	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.recordErr(err, "Failed to delete task")
		return err
	}
	s.removeByID(id)
	return nil
}

// Complete marks the task completed via the dedicated endpoint and
// replaces it in place.
func (s *TaskStore) Complete(ctx context.Context, id string) (*api.Task, error) {
	if !s.acquire(id) {
		return nil, ErrMutationInFlight
	}
	defer s.release(id)
	s.ClearErr()

	task, err := s.api.CompleteTask(ctx, id)
	if err != nil {
		s.recordErr(err, "Failed to complete task")
		return nil, err
	}
	s.replaceByID(id, *task)
	return task, nil
}

func (s *TaskStore) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *TaskStore) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *TaskStore) replaceByID(id string, task api.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = task
			return
		}
	}
}

func (s *TaskStore) removeByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// dedupe drops any later duplicate of id, keeping the first occurrence.
// Caller holds the lock.
func (s *TaskStore) dedupe(id string) {
	seen := false
	for i := 0; i < len(s.tasks); i++ {
		if s.tasks[i].ID != id {
			continue
		}
		if seen {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			i--
			continue
		}
		seen = true
	}
}

func (s *TaskStore) recordErr(err error, fallback string) {
	msg := fallback
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		msg = apiErr.Detail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

// placeholderTask builds the optimistic row shown until the server
// responds.
func placeholderTask(req api.CreateTaskRequest) api.Task {
	now := time.Now().UTC().Format(time.RFC3339)
	priority := req.Priority
	if priority == "" {
		priority = api.PriorityMedium
	}
	return api.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      api.StatusPending,
		Priority:    priority,
		CategoryID:  req.CategoryID,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
