// Package gateway is the edge in front of the web app: it serves the
// shell, proxies the API, and enforces the cookie half of the route
// guard. It mirrors the bearer token from auth responses into a cookie
// so the guard can make a fast allow/deny decision before any page
// loads; real session validation stays with the client.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskdeck/internal/logger"
	"taskdeck/internal/routeguard"
)

// CookieMaxAge is the lifetime of the mirrored token cookie.
const CookieMaxAge = 86400 // 24h

// New builds the gateway handler: the API proxy (unguarded) and the
// guarded page routes serving the shell.
func New(backend *url.URL, shell http.Handler, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	if shell == nil {
		shell = DefaultShell()
	}

	proxy := httputil.NewSingleHostReverseProxy(backend)
	proxy.ModifyResponse = mirrorCookie
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("backend unreachable", "path", r.URL.Path, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"detail":"backend unavailable"}`)
	}

	r := chi.NewRouter()
	r.Handle("/api/v1/*", proxy)
	r.Group(func(r chi.Router) {
		r.Use(routeguard.Middleware)
		r.NotFound(shell.ServeHTTP)
	})
	return r
}

// mirrorCookie keeps the token cookie in sync with auth responses
// passing through the proxy: set on successful login/register, cleared
// on logout and on a rejected session check.
func mirrorCookie(resp *http.Response) error {
	path := ""
	if resp.Request != nil {
		path = resp.Request.URL.Path
	}

	switch {
	case strings.HasSuffix(path, "/auth/login"), strings.HasSuffix(path, "/auth/register"):
		if resp.StatusCode != http.StatusOK {
			return nil
		}
		token, err := tokenFromBody(resp)
		if err != nil {
			return err
		}
		if token != "" {
			setCookie(resp, &http.Cookie{
				Name:     routeguard.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   CookieMaxAge,
				SameSite: http.SameSiteLaxMode,
			})
		}
	case strings.HasSuffix(path, "/auth/logout"):
		clearCookie(resp)
	case strings.HasSuffix(path, "/auth/session"):
		if resp.StatusCode == http.StatusUnauthorized {
			clearCookie(resp)
		}
	}
	return nil
}

// tokenFromBody reads the token field out of the response body and
// puts the body back.
func tokenFromBody(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	var body struct {
		Token string `json:"token"`
	}
	// A body we can't parse just doesn't get mirrored.
	if err := json.Unmarshal(data, &body); err != nil {
		return "", nil
	}
	return body.Token, nil
}

func clearCookie(resp *http.Response) {
	setCookie(resp, &http.Cookie{
		Name:     routeguard.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}

func setCookie(resp *http.Response, c *http.Cookie) {
	resp.Header.Add("Set-Cookie", c.String())
}

// DefaultShell serves a minimal app shell for every page route.
func DefaultShell() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><title>taskdeck</title><div id=\"app\" data-path=%q></div>\n", r.URL.Path)
	})
}
