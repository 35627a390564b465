// Package session establishes and maintains the authenticated session:
// resolving it from the stored credential, running login/register/
// logout, and exposing the state machine every protected surface reads.
package session

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"taskdeck/internal/api"
	"taskdeck/internal/credentials"
	"taskdeck/internal/logger"
)

// API is the slice of the backend the session layer needs.
// *api.Client satisfies it.
type API interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, email, password, name string) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*api.SessionPayload, error)
}

// Session is the authenticated identity materialized client-side after
// a successful login or session check.
type Session struct {
	User      api.User
	Token     string
	ExpiresAt time.Time // zero when the server omitted it
}

// Resolver turns the stored credential into a Session by asking the
// server. Failure is not an error: absence of a session is itself the
// result, and an invalid credential is cleared as a side effect.
type Resolver struct {
	api   API
	creds credentials.Store
	log   *logger.Logger
}

// NewResolver creates a Resolver.
func NewResolver(a API, creds credentials.Store, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{api: a, creds: creds, log: log}
}

// Resolve checks the stored credential against the server. With no
// stored credential it returns nil immediately, without a network call.
// On any failure it clears the credential store and returns nil.
func (r *Resolver) Resolve(ctx context.Context) *Session {
	tok, err := r.creds.Token()
	if err != nil {
		r.log.Error("failed to read stored credential", "error", err)
		return nil
	}
	if tok == nil {
		return nil
	}

	payload, err := r.api.Session(ctx)
	if err != nil {
		if !api.IsStatus(err, 401) {
			r.log.Error("session check failed", "error", err)
		}
		if cerr := r.creds.Clear(); cerr != nil {
			r.log.Error("failed to clear credential", "error", cerr)
		}
		return nil
	}
	if payload == nil || payload.User == nil {
		if cerr := r.creds.Clear(); cerr != nil {
			r.log.Error("failed to clear credential", "error", cerr)
		}
		return nil
	}

	s := &Session{User: *payload.User, Token: payload.Token}
	if s.Token == "" {
		s.Token = tok.AccessToken
	}
	if payload.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(payload.ExpiresAt, 0)
	}
	return s
}

// tokenFromAuth builds the persisted credential from an auth response.
func tokenFromAuth(resp *api.AuthResponse) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: resp.Token}
	if resp.ExpiresAt > 0 {
		tok.Expiry = time.Unix(resp.ExpiresAt, 0)
	}
	return tok
}
