// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/auth"
	"github.com/tomtom215/flyfitness/internal/authz"
	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/content"
	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/mail"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/notify"
	"github.com/tomtom215/flyfitness/internal/push"
	"github.com/tomtom215/flyfitness/internal/store/badgerstore"
)

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

// recordingMailer captures outgoing mail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	match := otpPattern.FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	if match == nil {
		t.Fatal("no code in mail body")
	}
	return match[1]
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

type testEnv struct {
	t         *testing.T
	db        *badgerstore.Store
	tokens    *auth.JWTManager
	handler   *Handler
	server    http.Handler
	mailer    *recordingMailer
	publisher *recordingPublisher
	feed      *feed.Service
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := badgerstore.Open(badgerstore.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverBadger},
		Feed:     config.FeedConfig{Enabled: true},
		Push:     config.PushConfig{Enabled: true},
		Media:    config.MediaConfig{MaxUploadBytes: 1 << 20},
		Security: config.SecurityConfig{
			JWTSecret:         "api-test-secret-0123456789abcdef0123456789",
			RateLimitDisabled: true,
		},
	}

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	env := &testEnv{
		t:         t,
		db:        db,
		tokens:    tokens,
		mailer:    &recordingMailer{},
		publisher: &recordingPublisher{},
		now:       time.Now().UTC(),
	}
	clock := func() time.Time { return env.now }

	feedSvc := feed.NewService(db, env.publisher, feed.Config{MaxUploadBytes: cfg.Media.MaxUploadBytes})
	feedSvc.SetTimeFunc(clock)
	env.feed = feedSvc

	authSvc := auth.NewService(db, tokens, env.mailer, auth.Options{})
	notifySvc := notify.NewService(db, nil)

	env.handler = NewHandler(Dependencies{
		Config:         cfg,
		Store:          db,
		Tokens:         tokens,
		Auth:           authSvc,
		Feed:           feedSvc,
		Notify:         notifySvc,
		Registry:       push.NewRegistry(db),
		Content:        content.NewService(db),
		Enforcer:       enforcer,
		VAPIDPublicKey: "BPublicKeyForTests",
		Publisher:      env.publisher,
	})
	env.handler.SetTimeFunc(clock)
	env.server = env.handler.Routes()
	return env
}

// user creates a user directly in the store and returns it with a token.
func (env *testEnv) user(name string, role models.Role) (*models.User, string) {
	env.t.Helper()
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     uuid.NewString()[:8] + "@flyfitness.test",
		Role:      role,
		CreatedAt: env.now,
		UpdatedAt: env.now,
	}
	if err := env.db.CreateUser(context.Background(), u); err != nil {
		env.t.Fatalf("CreateUser() error = %v", err)
	}
	token, _, err := env.tokens.GenerateToken(u)
	if err != nil {
		env.t.Fatalf("GenerateToken() error = %v", err)
	}
	return u, token
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	env.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			env.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return env.send(req)
}

func (env *testEnv) send(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

// envelope decodes a response, asserting its status, and unmarshals data into out.
func envelope(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, out any) *Response {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, wantStatus, rec.Body.String())
	}
	if rec.Code == http.StatusNoContent {
		return nil
	}
	var resp struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v; body = %s", err, rec.Body.String())
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return &resp.Response
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) string {
	t.Helper()
	resp := envelope(t, rec, wantStatus, nil)
	if resp.Success || resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return resp.Error.Code
}
