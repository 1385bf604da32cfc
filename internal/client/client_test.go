// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/flyfitness/internal/models"
)

// writeData writes a success envelope the way the server does.
func writeData(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"success":  true,
		"data":     data,
		"metadata": map[string]any{"request_id": "req-1"},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": msg, "request_id": "req-err"},
	})
}

func TestClient_DecodesEnvelopeAndSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/notifications/unread-count" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		writeData(t, w, http.StatusOK, map[string]int{"count": 3})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("tok-1"))
	n, err := c.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if n != 3 {
		t.Errorf("UnreadCount() = %d, want 3", n)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized},
		{"not found", http.StatusNotFound, "NOT_FOUND", ErrNotFound},
		{"internal", http.StatusInternalServerError, "INTERNAL_ERROR", ErrServer},
		{"unavailable", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, tt.status, tt.code, "nope")
			}))
			defer srv.Close()

			var logouts atomic.Int32
			c := New(srv.URL, WithUnauthorizedHandler(func() { logouts.Add(1) }))
			_, err := c.Profile(context.Background())
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Profile() error = %v, want %v", err, tt.sentinel)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %T is not *APIError", err)
			}
			if apiErr.Code != tt.code || apiErr.RequestID != "req-err" {
				t.Errorf("APIError = %+v", apiErr)
			}
			wantLogouts := int32(0)
			if tt.status == http.StatusUnauthorized {
				wantLogouts = 1
			}
			if logouts.Load() != wantLogouts {
				t.Errorf("unauthorized handler calls = %d, want %d", logouts.Load(), wantLogouts)
			}
		})
	}
}

func TestClient_ErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).DeletePost(context.Background(), "p1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("DeletePost() error = %v", err)
	}
	if apiErr.Message != "Bad Gateway" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_CreatePostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm() error = %v", err)
		}
		if got := r.FormValue("content"); got != "Leg day done!" {
			t.Errorf("content = %q", got)
		}
		file, header, err := r.FormFile("media")
		if err != nil {
			t.Fatalf("FormFile() error = %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "PNGDATA" || header.Header.Get("Content-Type") != "image/png" {
			t.Errorf("media = %q (%s)", data, header.Header.Get("Content-Type"))
		}
		writeData(t, w, http.StatusCreated, models.Post{
			ID:      "p1",
			Content: r.FormValue("content"),
			Media:   &models.Media{ID: "m1", Kind: models.MediaImage, URL: "/api/v1/media/m1"},
		})
	}))
	defer srv.Close()

	post, err := New(srv.URL).CreatePost(context.Background(), "Leg day done!", &MediaFile{
		Filename:    "squat.png",
		ContentType: "image/png",
		Reader:      strings.NewReader("PNGDATA"),
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if post.ID != "p1" || post.Media == nil || post.Media.ID != "m1" {
		t.Errorf("CreatePost() = %+v", post)
	}
}

func TestClient_Endpoints(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: strings.TrimPrefix(r.URL.Path, "/api/v1")}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&c.body)
		}
		calls = append(calls, c)

		switch {
		case c.path == "/feed/posts/p1/like":
			writeData(t, w, http.StatusOK, map[string]any{"liked": true, "likes": 4})
		case c.path == "/feed/posts/p1/comments":
			writeData(t, w, http.StatusCreated, models.Comment{ID: "c1", Text: "nice"})
		case c.path == "/push/vapid-public-key":
			writeData(t, w, http.StatusOK, map[string]string{"publicKey": "BKey"})
		case c.path == "/auth/login":
			writeData(t, w, http.StatusOK, map[string]any{
				"token": "tok",
				"user":  models.User{ID: "u1", Name: "Ana"},
			})
		case r.Method == http.MethodDelete || c.path == "/push/unsubscribe":
			w.WriteHeader(http.StatusNoContent)
		default:
			writeData(t, w, http.StatusOK, map[string]any{"updated": true})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := New(srv.URL, WithToken("tok"))

	liked, likes, err := c.ToggleLike(ctx, "p1")
	if err != nil || !liked || likes != 4 {
		t.Errorf("ToggleLike() = %v, %d, %v", liked, likes, err)
	}
	comment, err := c.AddComment(ctx, "p1", "nice")
	if err != nil || comment.ID != "c1" {
		t.Errorf("AddComment() = %+v, %v", comment, err)
	}
	key, err := c.VAPIDPublicKey(ctx)
	if err != nil || key != "BKey" {
		t.Errorf("VAPIDPublicKey() = %q, %v", key, err)
	}
	sess, err := c.Login(ctx, "ana@example.com", "secret123")
	if err != nil || sess.Token != "tok" || sess.User == nil || sess.User.ID != "u1" {
		t.Errorf("Login() = %+v, %v", sess, err)
	}
	if err := c.MarkNotificationRead(ctx, "n1"); err != nil {
		t.Errorf("MarkNotificationRead() error = %v", err)
	}
	if err := c.DeleteComment(ctx, "p1", "c1"); err != nil {
		t.Errorf("DeleteComment() error = %v", err)
	}
	sub := models.PushSubscription{Endpoint: "https://push.example.com/e1", Keys: models.PushKeys{P256dh: "pk", Auth: "ak"}}
	if err := c.SubscribePush(ctx, sub); err != nil {
		t.Errorf("SubscribePush() error = %v", err)
	}
	if err := c.UnsubscribePush(ctx, sub.Endpoint); err != nil {
		t.Errorf("UnsubscribePush() error = %v", err)
	}

	want := []struct{ method, path string }{
		{http.MethodPost, "/feed/posts/p1/like"},
		{http.MethodPost, "/feed/posts/p1/comments"},
		{http.MethodGet, "/push/vapid-public-key"},
		{http.MethodPost, "/auth/login"},
		{http.MethodPut, "/notifications/n1/read"},
		{http.MethodDelete, "/feed/posts/p1/comments/c1"},
		{http.MethodPost, "/push/subscribe"},
		{http.MethodPost, "/push/unsubscribe"},
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i, w := range want {
		if calls[i].method != w.method || calls[i].path != w.path {
			t.Errorf("call %d = %s %s, want %s %s", i, calls[i].method, calls[i].path, w.method, w.path)
		}
	}
	if calls[1].body["text"] != "nice" {
		t.Errorf("comment body = %v", calls[1].body)
	}
	keys, _ := calls[6].body["keys"].(map[string]any)
	if calls[6].body["endpoint"] != sub.Endpoint || keys["p256dh"] != "pk" || keys["auth"] != "ak" {
		t.Errorf("subscribe body = %v", calls[6].body)
	}
}
