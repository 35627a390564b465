package session

import (
	"context"
	"errors"
	"sync"

	"taskdeck/internal/api"
	"taskdeck/internal/credentials"
	"taskdeck/internal/logger"
	"taskdeck/internal/routeguard"
)

// Status is the session state machine tag.
type Status int

const (
	// StatusResolving is the initial state, and the state during any
	// in-flight resolution.
	StatusResolving Status = iota

	// StatusAuthenticated means a validated session exists.
	StatusAuthenticated

	// StatusAnonymous means no session exists.
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusResolving:
		return "resolving"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session state machine. User is non-nil
// exactly when Status is StatusAuthenticated.
type State struct {
	Status Status
	User   *api.User
}

// AuthError is a login or register rejection, carrying the server's
// message for form-level display.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Navigator abstracts the router: the manager announces redirects
// through it and reads the current path from it.
type Navigator interface {
	Navigate(path string)
	Path() string
}

// NopNavigator ignores navigation. Used by the CLI, where there is no
// route to change.
type NopNavigator struct{}

func (NopNavigator) Navigate(string) {}
func (NopNavigator) Path() string    { return routeguard.LandingPath }

// Manager owns the session state machine and is the only writer of the
// credential store. Overlapping resolutions are ordered by a
// monotonically increasing sequence: a stale resolution completing
// after a newer one is discarded.
type Manager struct {
	mu    sync.Mutex
	state State
	seq   uint64

	api      API
	creds    credentials.Store
	resolver *Resolver
	nav      Navigator
	log      *logger.Logger
}

// NewManager creates a Manager in the resolving state.
func NewManager(a API, creds credentials.Store, nav Navigator, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	if nav == nil {
		nav = NopNavigator{}
	}
	return &Manager{
		state:    State{Status: StatusResolving},
		api:      a,
		creds:    creds,
		resolver: NewResolver(a, creds, log),
		nav:      nav,
		log:      log,
	}
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsAuthenticated reports whether a validated session exists right now.
func (m *Manager) IsAuthenticated() bool {
	return m.State().Status == StatusAuthenticated
}

// User returns the authenticated user, or nil.
func (m *Manager) User() *api.User {
	return m.State().User
}

// Refresh re-resolves the session. If it resolves to nothing while the
// current path is protected, it forces a client-side redirect to the
// login page.
func (m *Manager) Refresh(ctx context.Context) {
	seq := m.begin()
	s := m.resolver.Resolve(ctx)
	if !m.commit(seq, stateFor(s)) {
		return
	}
	if s == nil && routeguard.IsProtectedPath(m.nav.Path()) {
		m.nav.Navigate(routeguard.LoginPath)
	}
}

// Login authenticates and adopts the returned user, falling back to a
// full resolve when the response omits it. On success it persists the
// credential and navigates to the task board.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(ctx, "Login failed", func() (*api.AuthResponse, error) {
		return m.api.Login(ctx, email, password)
	})
}

// Register creates an account; same shape as Login.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	return m.authenticate(ctx, "Registration failed", func() (*api.AuthResponse, error) {
		return m.api.Register(ctx, email, password, name)
	})
}

func (m *Manager) authenticate(ctx context.Context, fallback string, call func() (*api.AuthResponse, error)) error {
	seq := m.begin()

	resp, err := call()
	if err != nil {
		m.commit(seq, State{Status: StatusAnonymous})
		return &AuthError{Message: detailOf(err, fallback)}
	}

	current, err := m.persistToken(seq, resp)
	if !current {
		// A newer cycle took over while the response was in flight; its
		// outcome stands, including what it did to the credential store.
		m.log.Debug("discarding superseded authentication", "seq", seq)
		return nil
	}
	if err != nil {
		m.commit(seq, State{Status: StatusAnonymous})
		return &AuthError{Message: fallback}
	}

	if resp.User != nil {
		if !m.commit(seq, State{Status: StatusAuthenticated, User: resp.User}) {
			return nil
		}
	} else {
		// Server omitted the user payload; resolve the session in full.
		s := m.resolver.Resolve(ctx)
		if !m.commit(seq, stateFor(s)) {
			return nil
		}
		if s == nil {
			return &AuthError{Message: fallback}
		}
	}

	m.nav.Navigate(routeguard.TasksPath)
	return nil
}

// persistToken writes the credential for the given cycle. The write
// happens under the lock so a cycle that has been superseded can never
// re-populate the store behind the winner's back: any newer cycle bumps
// the sequence before touching the credential itself.
func (m *Manager) persistToken(seq uint64, resp *api.AuthResponse) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return false, nil
	}
	return true, m.creds.SetToken(tokenFromAuth(resp))
}

// Logout clears local state and the credential store unconditionally,
// then notifies the server best-effort. Local state must never be stuck
// authenticated because a network call failed.
func (m *Manager) Logout(ctx context.Context) {
	seq := m.begin()
	m.commit(seq, State{Status: StatusAnonymous})

	if err := m.creds.Clear(); err != nil {
		m.log.Error("failed to clear credential", "error", err)
	}
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn("server logout failed", "error", err)
	}

	m.nav.Navigate(routeguard.LandingPath)
}

// begin starts a resolution cycle: bumps the sequence and enters the
// resolving state.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.state = State{Status: StatusResolving}
	return m.seq
}

// commit installs the terminal state for the given cycle. A stale cycle
// (superseded by a later begin) is discarded.
func (m *Manager) commit(seq uint64, s State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		m.log.Debug("discarding stale session resolution", "seq", seq, "current", m.seq)
		return false
	}
	m.state = s
	return true
}

func stateFor(s *Session) State {
	if s == nil {
		return State{Status: StatusAnonymous}
	}
	u := s.User
	return State{Status: StatusAuthenticated, User: &u}
}

// detailOf extracts the server's detail message from an API error,
// falling back to the given message.
func detailOf(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
