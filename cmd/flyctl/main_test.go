// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/flyfitness/internal/client/session"
	"github.com/tomtom215/flyfitness/internal/models"
)

// fakeServer answers the endpoints flyctl uses with envelopes shaped
// like the real API's.
type fakeServer struct {
	t     *testing.T
	token string

	mu      sync.Mutex
	liked   bool
	readAll bool
}

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("flyctl-test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	fs := &fakeServer{t: t, token: token}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeServer) write(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/v1")

	authed := r.Header.Get("Authorization") == "Bearer "+f.token
	now := time.Now().UTC()

	switch route {
	case "POST /auth/login":
		f.write(w, http.StatusOK, map[string]any{
			"token":     f.token,
			"expiresAt": now.Add(time.Hour),
			"user":      models.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: models.RoleUser},
		})
	case "GET /capabilities":
		f.write(w, http.StatusOK, models.Capabilities{Features: map[string]bool{models.FeatureFeed: true}})
	case "GET /feed/posts":
		likes := []string{}
		if f.liked {
			likes = append(likes, "u1")
		}
		f.write(w, http.StatusOK, []models.Post{{
			ID:        "p1",
			Author:    models.UserRef{ID: "u2", Name: "Bob"},
			Content:   "Deadlift PR today",
			CreatedAt: now.Add(-time.Hour),
			ExpiresAt: now.Add(23 * time.Hour),
			Likes:     likes,
			Comments:  []models.Comment{},
		}})
	case "POST /feed/posts/p1/like":
		if !authed {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.liked = !f.liked
		count := 0
		if f.liked {
			count = 1
		}
		f.write(w, http.StatusOK, map[string]any{"liked": f.liked, "likes": count})
	case "GET /notifications":
		if !authed {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.write(w, http.StatusOK, []models.Notification{
			{ID: "n1", UserID: "u1", Type: models.NotificationLike, Content: "Bob liked your post", Read: f.readAll, CreatedAt: now},
			{ID: "n2", UserID: "u1", Type: models.NotificationComment, Content: "Bob commented", Read: true, CreatedAt: now.Add(-time.Minute)},
		})
	case "PUT /notifications/read-all":
		f.readAll = true
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestRun_MemberSession(t *testing.T) {
	srv := newFakeServer(t)
	sessionFile := filepath.Join(t.TempDir(), "flyfitness", "session.json")
	ctx := context.Background()

	flyctl := func(args ...string) (string, error) {
		var out, errOut bytes.Buffer
		full := append([]string{"-server", srv.URL, "-session", sessionFile}, args...)
		err := run(ctx, full, &out, &errOut)
		return out.String(), err
	}
	mustRun := func(want string, args ...string) {
		t.Helper()
		out, err := flyctl(args...)
		if err != nil {
			t.Fatalf("flyctl %v error = %v", args, err)
		}
		if !strings.Contains(out, want) {
			t.Errorf("flyctl %v output = %q, want it to contain %q", args, out, want)
		}
	}

	mustRun("Not signed in", "whoami")
	mustRun("Deadlift PR today", "feed")
	if _, err := flyctl("like", "p1"); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("like before login error = %v, want ErrNotAuthenticated", err)
	}

	mustRun("Signed in as Ana", "login", "ana@example.com", "hunter22")
	// Each invocation reopens the session file.
	mustRun("Ana <ana@example.com>", "whoami")
	mustRun("Liked p1 (1 likes)", "like", "p1")
	mustRun("1*", "feed")
	mustRun("1 unread", "notifications")
	mustRun("0 unread", "read", "all")

	mustRun("Signed out", "logout")
	mustRun("Not signed in", "whoami")
}

func TestRun_Usage(t *testing.T) {
	srv := newFakeServer(t)
	sessionFile := filepath.Join(t.TempDir(), "session.json")

	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"dance"}},
		{"login missing password", []string{"login", "ana@example.com"}},
		{"like missing id", []string{"like"}},
		{"read missing id", []string{"read"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			args := append([]string{"-server", srv.URL, "-session", sessionFile}, tt.args...)
			if err := run(context.Background(), args, &out, &errOut); !errors.Is(err, ErrUsage) {
				t.Errorf("run(%v) error = %v, want ErrUsage", tt.args, err)
			}
		})
	}
}

func TestOneLine(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"line one\nline  two", 40, "line one line two"},
		{"abcdefghij", 5, "abcd…"},
	}
	for _, tt := range tests {
		if got := oneLine(tt.in, tt.max); got != tt.want {
			t.Errorf("oneLine(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
