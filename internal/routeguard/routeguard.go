// Package routeguard gates navigation based on auth state. The same
// path predicates feed two layers: the edge middleware, which only sees
// the token cookie, and the in-process gate, which reads the resolved
// session state. The edge can be stale; the in-process layer is
// authoritative because it sits behind the real session round-trip.
package routeguard

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	// CookieName is the cookie the edge layer inspects.
	CookieName = "token"

	// LoginPath is where unauthenticated protected-path requests land.
	LoginPath = "/login"

	// TasksPath is where authenticated auth-path requests land.
	TasksPath = "/tasks"

	// LandingPath is the public landing page.
	LandingPath = "/"

	// CallbackParam carries the originally requested path through the
	// login redirect.
	CallbackParam = "callbackUrl"
)

var protectedPrefixes = []string{"/dashboard", "/tasks", "/profile", "/calendar", "/categories"}

var authPrefixes = []string{"/login", "/register"}

// IsProtectedPath reports whether the path requires a session.
func IsProtectedPath(path string) bool {
	return hasAnyPrefix(path, protectedPrefixes)
}

// IsAuthPath reports whether the path is auth-only (login/register).
func IsAuthPath(path string) bool {
	return hasAnyPrefix(path, authPrefixes)
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Decision is the outcome of a guard evaluation.
type Decision int

const (
	// Allow passes the request through unmodified.
	Allow Decision = iota

	// Block renders nothing; used by the in-process gate while the
	// session is still resolving, so protected content never flashes.
	Block

	// RedirectLogin sends the request to the login page, carrying the
	// original path as callbackUrl.
	RedirectLogin

	// RedirectTasks sends an already-authenticated request away from
	// auth-only pages.
	RedirectTasks
)

// Decide is the edge-layer evaluation: cookie presence against path
// category. All paths outside the two categories pass through.
func Decide(hasToken bool, path string) Decision {
	if !hasToken && IsProtectedPath(path) {
		return RedirectLogin
	}
	if hasToken && IsAuthPath(path) {
		return RedirectTasks
	}
	return Allow
}

// Gate is the in-process evaluation over resolved session state.
// While resolving it blocks rather than flashing protected content.
func Gate(resolving, authenticated bool, path string) Decision {
	if !IsProtectedPath(path) {
		return Allow
	}
	if resolving {
		return Block
	}
	if !authenticated {
		return RedirectLogin
	}
	return Allow
}

// LoginRedirectURL builds the login redirect for the given original
// path.
func LoginRedirectURL(path string) string {
	q := url.Values{}
	q.Set(CallbackParam, path)
	return LoginPath + "?" + q.Encode()
}

// Middleware is the edge guard. It inspects the request cookie only;
// it performs no session validation.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasToken := false
		if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
			hasToken = true
		}

		switch Decide(hasToken, r.URL.Path) {
		case RedirectLogin:
			http.Redirect(w, r, LoginRedirectURL(r.URL.Path), http.StatusTemporaryRedirect)
		case RedirectTasks:
			http.Redirect(w, r, TasksPath, http.StatusTemporaryRedirect)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
