package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"golang.org/x/oauth2"

	"taskdeck/internal/api"
	"taskdeck/internal/credentials"
	"taskdeck/internal/session"
	"taskdeck/internal/testutil"
)

// setup wires a manager against a fake backend, positioned at the
// given path.
func setup(t *testing.T, fake *testutil.FakeBackend, path string) (*session.Manager, *credentials.MemStore, *testutil.RecordingNavigator) {
	t.Helper()

	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	creds := credentials.NewMemStore()
	client := api.New(srv.URL, 0, creds, nil)
	nav := testutil.NewRecordingNavigator(path)
	return session.NewManager(client, creds, nav, nil), creds, nav
}

func TestResolver_NoTokenMakesNoCall(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := credentials.NewMemStore()
	client := api.New(srv.URL, 0, creds, nil)
	resolver := session.NewResolver(client, creds, nil)

	if s := resolver.Resolve(context.Background()); s != nil {
		t.Errorf("expected nil session, got %+v", s)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network call without a token, got %d", calls.Load())
	}
}

func TestResolver_ValidToken(t *testing.T) {
	fake := testutil.NewFakeBackend()
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}

	client := api.New(srv.URL, 0, creds, nil)
	resolver := session.NewResolver(client, creds, nil)

	s := resolver.Resolve(context.Background())
	if s == nil {
		t.Fatal("expected a session")
	}
	if s.User.Email != "dev@example.com" {
		t.Errorf("expected seeded user, got %+v", s.User)
	}
}

func TestResolver_UnauthorizedClearsToken(t *testing.T) {
	fake := testutil.NewFakeBackend()
	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: "bogus"}); err != nil {
		t.Fatal(err)
	}

	client := api.New(srv.URL, 0, creds, nil)
	resolver := session.NewResolver(client, creds, nil)

	if s := resolver.Resolve(context.Background()); s != nil {
		t.Fatalf("expected nil session for a bogus token, got %+v", s)
	}
	tok, err := creds.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok != nil {
		t.Errorf("expected credential cleared after 401, got %+v", tok)
	}
}

func TestManager_LoginSuccess(t *testing.T) {
	mgr, creds, nav := setup(t, testutil.NewFakeBackend(), "/login")

	if err := mgr.Login(context.Background(), "dev@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	st := mgr.State()
	if st.Status != session.StatusAuthenticated {
		t.Errorf("expected authenticated, got %v", st.Status)
	}
	if st.User == nil || st.User.Email != "dev@example.com" {
		t.Errorf("expected seeded user, got %+v", st.User)
	}
	if nav.Path() != "/tasks" {
		t.Errorf("expected redirect to /tasks, got %q", nav.Path())
	}
	tok, _ := creds.Token()
	if tok == nil || tok.AccessToken == "" {
		t.Error("expected credential persisted after login")
	}
}

func TestManager_LoginRejected(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.FailLogin = &testutil.Failure{Status: 401, Detail: "Invalid credentials"}
	mgr, creds, nav := setup(t, fake, "/login")

	err := mgr.Login(context.Background(), "dev@example.com", "wrong")
	var authErr *session.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Message != "Invalid credentials" {
		t.Errorf("expected server detail surfaced, got %q", authErr.Message)
	}

	if st := mgr.State(); st.Status != session.StatusAnonymous {
		t.Errorf("expected anonymous after rejection, got %v", st.Status)
	}
	if tok, _ := creds.Token(); tok != nil {
		t.Errorf("expected no credential after rejection, got %+v", tok)
	}
	if got := nav.Visited(); len(got) != 0 {
		t.Errorf("expected no navigation after rejection, got %v", got)
	}
}

func TestManager_LoginFallsBackToResolve(t *testing.T) {
	// A login response without a user payload forces a full session
	// resolve.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token": "t1"})
	})
	mux.HandleFunc("GET /api/v1/auth/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"session": nil})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"session": map[string]any{
			"user": map[string]string{"id": "u1", "email": "dev@example.com"},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := credentials.NewMemStore()
	client := api.New(srv.URL, 0, creds, nil)
	nav := testutil.NewRecordingNavigator("/login")
	mgr := session.NewManager(client, creds, nav, nil)

	if err := mgr.Login(context.Background(), "dev@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	st := mgr.State()
	if st.Status != session.StatusAuthenticated || st.User == nil || st.User.ID != "u1" {
		t.Errorf("expected authenticated via resolve fallback, got %+v", st)
	}
	if nav.Path() != "/tasks" {
		t.Errorf("expected redirect to /tasks, got %q", nav.Path())
	}
}

func TestManager_LogoutClearsEvenWhenServerFails(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.FailLogout = &testutil.Failure{Status: 500, Detail: "server exploded"}
	mgr, creds, nav := setup(t, fake, "/tasks")

	if err := mgr.Login(context.Background(), "dev@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	mgr.Logout(context.Background())

	if st := mgr.State(); st.Status != session.StatusAnonymous {
		t.Errorf("expected anonymous after logout, got %v", st.Status)
	}
	if tok, _ := creds.Token(); tok != nil {
		t.Errorf("expected credential cleared despite server failure, got %+v", tok)
	}
	if nav.Path() != "/" {
		t.Errorf("expected redirect to landing page, got %q", nav.Path())
	}
}

// blockingAPI holds the login response until released, so a newer
// operation can interleave.
type blockingAPI struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAPI) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	close(b.started)
	<-b.release
	return &api.AuthResponse{
		User:  &api.User{ID: "user-1", Email: email},
		Token: "token-1",
	}, nil
}

func (b *blockingAPI) Register(context.Context, string, string, string) (*api.AuthResponse, error) {
	return nil, errors.New("not scripted")
}

func (b *blockingAPI) Logout(context.Context) error { return nil }

func (b *blockingAPI) Session(context.Context) (*api.SessionPayload, error) {
	return nil, &api.Error{Status: 401}
}

func TestManager_LogoutSupersedesInFlightLogin(t *testing.T) {
	backend := &blockingAPI{started: make(chan struct{}), release: make(chan struct{})}
	creds := credentials.NewMemStore()
	nav := testutil.NewRecordingNavigator("/login")
	mgr := session.NewManager(backend, creds, nav, nil)

	done := make(chan error, 1)
	go func() {
		done <- mgr.Login(context.Background(), "dev@example.com", "password123")
	}()
	<-backend.started

	mgr.Logout(context.Background())
	close(backend.release)
	if err := <-done; err != nil {
		t.Fatalf("superseded login returned error: %v", err)
	}

	// The logout is the newer cycle; nothing of the login survives.
	if st := mgr.State(); st.Status != session.StatusAnonymous {
		t.Errorf("expected anonymous after logout, got %v", st.Status)
	}
	if tok, _ := creds.Token(); tok != nil {
		t.Errorf("superseded login re-populated the credential store: %+v", tok)
	}
	got := nav.Visited()
	if len(got) != 1 || got[0] != "/" {
		t.Errorf("expected only the logout navigation, got %v", got)
	}
}

func TestManager_RefreshRedirectsFromProtectedPath(t *testing.T) {
	fake := testutil.NewFakeBackend()
	mgr, creds, nav := setup(t, fake, "/tasks")

	// An invalid credential makes the refresh resolve to nothing.
	if err := creds.SetToken(&oauth2.Token{AccessToken: "bogus"}); err != nil {
		t.Fatal(err)
	}

	mgr.Refresh(context.Background())

	if st := mgr.State(); st.Status != session.StatusAnonymous {
		t.Errorf("expected anonymous, got %v", st.Status)
	}
	if nav.Path() != "/login" {
		t.Errorf("expected redirect to /login from protected path, got %q", nav.Path())
	}
}

func TestManager_RefreshStaysPutOnPublicPath(t *testing.T) {
	fake := testutil.NewFakeBackend()
	mgr, _, nav := setup(t, fake, "/")

	mgr.Refresh(context.Background())

	if st := mgr.State(); st.Status != session.StatusAnonymous {
		t.Errorf("expected anonymous, got %v", st.Status)
	}
	if got := nav.Visited(); len(got) != 0 {
		t.Errorf("expected no navigation on public path, got %v", got)
	}
}

func TestManager_RefreshAuthenticated(t *testing.T) {
	fake := testutil.NewFakeBackend()
	mgr, creds, nav := setup(t, fake, "/tasks")

	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}

	mgr.Refresh(context.Background())

	st := mgr.State()
	if st.Status != session.StatusAuthenticated {
		t.Fatalf("expected authenticated, got %v", st.Status)
	}
	if !mgr.IsAuthenticated() {
		t.Error("IsAuthenticated should be true")
	}
	if got := nav.Visited(); len(got) != 0 {
		t.Errorf("expected no navigation when session holds, got %v", got)
	}
}
