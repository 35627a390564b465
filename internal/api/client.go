package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"taskdeck/internal/credentials"
	"taskdeck/internal/logger"
)

// Endpoint paths, versioned under a common prefix.
const (
	basePath = "/api/v1"

	epLogin      = basePath + "/auth/login"
	epRegister   = basePath + "/auth/register"
	epLogout     = basePath + "/auth/logout"
	epSession    = basePath + "/auth/session"
	epTasks      = basePath + "/tasks/"
	epCategories = basePath + "/categories"
	epChat       = basePath + "/chat"
)

// ErrNoCredentials is returned when an authenticated request is
// attempted with an empty credential store.
var ErrNoCredentials = errors.New("not logged in")

// Error is a typed API failure carrying the HTTP status and the
// server's detail message when the body provided one.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client is the REST client for the backend. Login and register go out
// without a bearer; every other call carries the stored credential via
// an oauth2 transport reading the store at request time.
type Client struct {
	baseURL string
	bare    *http.Client
	authed  *http.Client
	log     *logger.Logger
}

// storeSource surfaces the credential store as an oauth2.TokenSource.
// It never mutates the store.
type storeSource struct {
	store credentials.Store
}

func (s storeSource) Token() (*oauth2.Token, error) {
	tok, err := s.store.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrNoCredentials
	}
	return tok, nil
}

// New creates a Client against the given base URL. The timeout applies
// to every request; there is no explicit cancellation beyond it.
func New(baseURL string, timeout time.Duration, store credentials.Store, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bare:    &http.Client{Timeout: timeout},
		authed: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: storeSource{store: store}},
		},
		log: log,
	}
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var resp AuthResponse
	if err := c.do(ctx, c.bare, http.MethodPost, epLogin, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. Name is optional.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	if name != "" {
		body["name"] = name
	}
	var resp AuthResponse
	if err := c.do(ctx, c.bare, http.MethodPost, epRegister, nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the server. Best-effort; callers clear local state
// regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, c.authed, http.MethodPost, epLogout, nil, nil, nil)
}

// Session checks the current credential against the server.
func (c *Client) Session(ctx context.Context) (*SessionPayload, error) {
	var resp SessionResponse
	if err := c.do(ctx, c.authed, http.MethodGet, epSession, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// ListTasks fetches the task list with the given filter set.
func (c *Client) ListTasks(ctx context.Context, filters Filters) (*TaskListResponse, error) {
	var resp TaskListResponse
	if err := c.do(ctx, c.authed, http.MethodGet, epTasks, filters.Query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var task Task
	if err := c.do(ctx, c.authed, http.MethodPost, epTasks, nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*Task, error) {
	var task Task
	if err := c.do(ctx, c.authed, http.MethodPut, taskPath(id), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// CompleteTask marks a task completed via the dedicated endpoint.
func (c *Client) CompleteTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, c.authed, http.MethodPatch, taskPath(id)+"/complete", nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context) (*CategoryListResponse, error) {
	var resp CategoryListResponse
	if err := c.do(ctx, c.authed, http.MethodGet, epCategories, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCategory creates a category. Color is optional.
func (c *Client) CreateCategory(ctx context.Context, name, color string) (*Category, error) {
	body := map[string]string{"name": name}
	if color != "" {
		body["color"] = color
	}
	var cat Category
	if err := c.do(ctx, c.authed, http.MethodPost, epCategories, nil, body, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Chat sends a message to the assistant and returns its reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp ChatResponse
	if err := c.do(ctx, c.authed, http.MethodPost, epChat, nil, ChatRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func taskPath(id string) string {
	return basePath + "/tasks/" + url.PathEscape(id)
}

// do issues a request and decodes the response into out when non-nil.
// Non-2xx responses become *Error with the body's detail message when
// present.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
		c.log.Debug("request rejected", "method", method, "path", path, "request_id", reqID, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readDetail pulls the detail message out of an error body, tolerating
// non-JSON and empty bodies.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Detail
}

// wrapTransportError rewrites raw transport errors into user-facing
// messages.
func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return fmt.Errorf("request timed out")
	}
	if errors.Is(err, ErrNoCredentials) {
		return ErrNoCredentials
	}
	// url.Error wrapping from the http client obscures the cause; keep
	// the chain intact for errors.Is checks upstream.
	var uerr *url.Error
	if errors.As(err, &uerr) && errors.Is(uerr.Err, ErrNoCredentials) {
		return ErrNoCredentials
	}
	return err
}
