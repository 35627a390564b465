package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"taskdeck/internal/api"
	"taskdeck/internal/credentials"
	"taskdeck/internal/testutil"
)

func newClient(t *testing.T, fake *testutil.FakeBackend, creds *credentials.MemStore) *api.Client {
	t.Helper()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return api.New(srv.URL, 0, creds, nil)
}

func TestLoginSendsNoBearer(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"u1","email":"dev@example.com"},"token":"t1"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	creds := credentials.NewMemStore()
	// A stored credential must not leak into the login request.
	if err := creds.SetToken(&oauth2.Token{AccessToken: "stale"}); err != nil {
		t.Fatal(err)
	}
	client := api.New(srv.URL, 0, creds, nil)

	resp, err := client.Login(context.Background(), "dev@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header on login, got %q", gotAuth)
	}
	if resp.Token != "t1" || resp.User == nil || resp.User.ID != "u1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAuthedRequestCarriesBearer(t *testing.T) {
	fake := testutil.NewFakeBackend()
	creds := credentials.NewMemStore()
	client := newClient(t, fake, creds)

	tok := fake.IssueToken()
	if err := creds.SetToken(&oauth2.Token{AccessToken: tok}); err != nil {
		t.Fatal(err)
	}

	payload, err := client.Session(context.Background())
	if err != nil {
		t.Fatalf("session check failed: %v", err)
	}
	if payload == nil || payload.User == nil || payload.User.Email != "dev@example.com" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestAuthedRequestWithoutCredential(t *testing.T) {
	fake := testutil.NewFakeBackend()
	client := newClient(t, fake, credentials.NewMemStore())

	_, err := client.Session(context.Background())
	if !errors.Is(err, api.ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestErrorCarriesStatusAndDetail(t *testing.T) {
	fake := testutil.NewFakeBackend()
	client := newClient(t, fake, credentials.NewMemStore())

	_, err := client.Login(context.Background(), "dev@example.com", "wrong")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Status != 401 {
		t.Errorf("expected status 401, got %d", apiErr.Status)
	}
	if apiErr.Detail != "Invalid email or password" {
		t.Errorf("expected server detail, got %q", apiErr.Detail)
	}
	if !api.IsStatus(err, 401) {
		t.Error("IsStatus(err, 401) should be true")
	}
}

func TestErrorWithoutDetailBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := api.New(srv.URL, 0, credentials.NewMemStore(), nil)
	_, err := client.Login(context.Background(), "a@b.c", "pw")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Error() != "request failed with status 500" {
		t.Errorf("unexpected message %q", apiErr.Error())
	}
}

func TestDeleteTaskAcceptsNoContent(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.AddTask("task-1", "buy milk", api.StatusPending)
	creds := credentials.NewMemStore()
	client := newClient(t, fake, creds)
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}

	if err := client.DeleteTask(context.Background(), "task-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if got := fake.Tasks(); len(got) != 0 {
		t.Errorf("expected task removed, got %v", got)
	}
}

func TestListTasksAppliesFilters(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.AddTask("task-1", "buy milk", api.StatusPending)
	fake.AddTask("task-2", "walk dog", api.StatusCompleted)
	creds := credentials.NewMemStore()
	client := newClient(t, fake, creds)
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}

	resp, err := client.ListTasks(context.Background(), api.Filters{Status: api.StatusCompleted})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].ID != "task-2" {
		t.Errorf("expected only the completed task, got %v", resp.Tasks)
	}
}

func TestChat(t *testing.T) {
	fake := testutil.NewFakeBackend()
	creds := credentials.NewMemStore()
	client := newClient(t, fake, creds)
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}

	reply, err := client.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply != "You said: hello" {
		t.Errorf("unexpected reply %q", reply)
	}
}
