// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package authz

import (
	"errors"
	"net/http"

	"github.com/tomtom215/flyfitness/internal/auth"
	"github.com/tomtom215/flyfitness/internal/logging"
)

var (
	// ErrNoAuthContext is reported when the request was not authenticated first.
	ErrNoAuthContext = errors.New("no authentication context")

	// ErrInsufficientPermissions is reported when the role lacks the permission.
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// Middleware enforces authorization on authenticated requests.
type Middleware struct {
	enforcer *Enforcer
	onError  auth.ErrorFunc
}

// NewMiddleware creates authorization middleware. onError may be nil.
func NewMiddleware(enforcer *Enforcer, onError auth.ErrorFunc) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}
	return &Middleware{enforcer: enforcer, onError: onError}
}

// Authorize enforces a fixed object and action.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.check(w, r, next, object, action)
		})
	}
}

// AuthorizeRequest derives the action from the HTTP method and uses the
// request path as the object.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.check(w, r, next, r.URL.Path, methodToAction(r.Method))
	})
}

func (m *Middleware) check(w http.ResponseWriter, r *http.Request, next http.Handler, object, action string) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		m.onError(w, r, http.StatusForbidden, ErrNoAuthContext)
		return
	}

	allowed, err := m.enforcer.Enforce(string(claims.Role), object, action)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
		m.onError(w, r, http.StatusInternalServerError, errors.New("authorization failed"))
		return
	}
	if !allowed {
		logging.Ctx(r.Context()).Warn().
			Str("role", string(claims.Role)).
			Str("object", object).
			Str("action", action).
			Msg("Access denied")
		m.onError(w, r, http.StatusForbidden, ErrInsufficientPermissions)
		return
	}

	next.ServeHTTP(w, r)
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
