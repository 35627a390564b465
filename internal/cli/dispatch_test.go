package cli_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"

	"taskdeck/internal/api"
	"taskdeck/internal/cli"
	"taskdeck/internal/commands"
	"taskdeck/internal/config"
	"taskdeck/internal/credentials"
	"taskdeck/internal/session"
	"taskdeck/internal/store"
	"taskdeck/internal/testutil"
)

// newDispatcher wires a dispatcher whose factory builds the app
// against a fake backend, using an in-memory credential store.
func newDispatcher(t *testing.T, fake *testutil.FakeBackend, creds *credentials.MemStore) *cli.Dispatcher {
	t.Helper()

	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	factory := func(ctx context.Context, cfg *config.Config) (*commands.App, error) {
		client := api.New(srv.URL, cfg.APITimeout(), creds, nil)
		auth := session.NewManager(client, creds, nil, nil)
		return &commands.App{
			Auth:       auth,
			Tasks:      store.NewTaskStore(client, auth, nil),
			Categories: store.NewCategoryStore(client, auth, nil),
			Chat:       client,
		}, nil
	}
	return cli.NewDispatcher(commands.DefaultRegistry, factory)
}

// run dispatches args with an isolated config dir prepended.
func run(t *testing.T, d *cli.Dispatcher, args ...string) (int, string, string) {
	t.Helper()

	if len(args) > 0 {
		args = append([]string{args[0], "--config", t.TempDir()}, args[1:]...)
	}
	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestDispatchUnknownCommand(t *testing.T) {
	d := newDispatcher(t, testutil.NewFakeBackend(), credentials.NewMemStore())

	code, _, errOut := run(t, d, "bogus")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if errOut != "error: unknown command: bogus\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestDispatchFlagBeforeCommand(t *testing.T) {
	d := newDispatcher(t, testutil.NewFakeBackend(), credentials.NewMemStore())

	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), []string{"--debug"}, &out, &errOut)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if errOut.String() != "error: unknown command: --debug\n" {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
}

func TestDispatchUnknownFlag(t *testing.T) {
	d := newDispatcher(t, testutil.NewFakeBackend(), credentials.NewMemStore())

	code, _, errOut := run(t, d, "version", "--bogus")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if errOut != "error: unknown flag: -bogus\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestDispatchNeedsAuthWithoutSession(t *testing.T) {
	d := newDispatcher(t, testutil.NewFakeBackend(), credentials.NewMemStore())

	code, _, errOut := run(t, d, "list")
	if code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
	if errOut != "error: not logged in (run: taskdeck login)\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestDispatchRevokedTokenIsAuthError(t *testing.T) {
	fake := testutil.NewFakeBackend()
	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: "revoked"}); err != nil {
		t.Fatal(err)
	}
	d := newDispatcher(t, fake, creds)

	code, _, errOut := run(t, d, "list")
	if code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
	if errOut != "error: not logged in (run: taskdeck login)\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
	// The invalid credential was discarded along the way.
	if tok, _ := creds.Token(); tok != nil {
		t.Errorf("expected credential cleared, got %+v", tok)
	}
}

func TestDispatchListHappyPath(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.AddTask("task-a", "buy milk", api.StatusPending)
	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}
	d := newDispatcher(t, fake, creds)

	code, out, errOut := run(t, d, "list")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	if out != "   1  [ ] buy milk\n" {
		t.Errorf("unexpected stdout %q", out)
	}
}

func TestDispatchNoArgsListsTasks(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.AddTask("task-a", "buy milk", api.StatusPending)
	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}
	d := newDispatcher(t, fake, creds)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), nil, &out, &errOut)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut.String())
	}
	if out.String() != "   1  [ ] buy milk\n" {
		t.Errorf("unexpected stdout %q", out.String())
	}
}

func TestDispatchAliases(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.AddTask("task-a", "buy milk", api.StatusPending)
	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}
	d := newDispatcher(t, fake, creds)

	code, out, errOut := run(t, d, "ls")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	if out != "   1  [ ] buy milk\n" {
		t.Errorf("unexpected stdout %q", out)
	}
}

func TestDispatchQuietSuppressesChatter(t *testing.T) {
	fake := testutil.NewFakeBackend()
	fake.AddTask("task-a", "buy milk", api.StatusPending)
	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}
	d := newDispatcher(t, fake, creds)

	code, out, errOut := run(t, d, "done", "--quiet", "task-a")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	if out != "" {
		t.Errorf("expected no stdout with --quiet, got %q", out)
	}
}

func TestDispatchAddWithFlags(t *testing.T) {
	fake := testutil.NewFakeBackend()
	creds := credentials.NewMemStore()
	if err := creds.SetToken(&oauth2.Token{AccessToken: fake.IssueToken()}); err != nil {
		t.Fatal(err)
	}
	d := newDispatcher(t, fake, creds)

	code, out, errOut := run(t, d, "add", "--priority", "high", "buy", "milk")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, errOut)
	}
	if out == "" {
		t.Fatal("expected created id on stdout")
	}

	tasks := fake.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "buy milk" || tasks[0].Priority != api.PriorityHigh {
		t.Errorf("unexpected backend state %+v", tasks)
	}
}
