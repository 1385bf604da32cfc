// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/flyfitness/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: models.RoleUser}
}

func TestContext_LoginLogout(t *testing.T) {
	storage := NewMemoryStorage()
	var hooks atomic.Int32
	sess, err := New(storage, WithAutoSubscribe(func(context.Context) { hooks.Add(1) }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sess.IsAuthenticated() {
		t.Fatal("fresh context should be logged out")
	}

	var states []State
	cancel := sess.Subscribe(func(s State) { states = append(states, s) })
	defer cancel()

	if err := sess.Login(context.Background(), "tok-1", testUser()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !sess.IsAuthenticated() || sess.Token() != "tok-1" || sess.UserID() != "u1" {
		t.Errorf("after login: token=%q user=%q", sess.Token(), sess.UserID())
	}
	if hooks.Load() != 1 {
		t.Errorf("auto-subscribe calls = %d, want 1", hooks.Load())
	}
	if v, ok, _ := storage.Get(KeyToken); !ok || v != "tok-1" {
		t.Errorf("stored token = %q, %v", v, ok)
	}
	if _, ok, _ := storage.Get(KeyUser); !ok {
		t.Error("user not persisted")
	}

	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if sess.IsAuthenticated() || sess.User() != nil {
		t.Error("still authenticated after logout")
	}
	if _, ok, _ := storage.Get(KeyToken); ok {
		t.Error("token left in storage after logout")
	}

	if len(states) != 2 || !states[0].Authenticated || states[1].Authenticated {
		t.Errorf("states = %+v", states)
	}
}

func TestContext_LoginValidation(t *testing.T) {
	sess, _ := New(NewMemoryStorage())
	if err := sess.Login(context.Background(), "", testUser()); !errors.Is(err, ErrMissingToken) {
		t.Errorf("Login(empty token) error = %v", err)
	}
	if err := sess.Login(context.Background(), "tok", nil); err == nil {
		t.Error("Login(nil user) should fail")
	}
}

func TestContext_UpdateUserData(t *testing.T) {
	sess, _ := New(NewMemoryStorage())
	name := "Ana Maria"
	if err := sess.UpdateUserData(UserUpdate{Name: &name}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("UpdateUserData() while logged out error = %v", err)
	}

	_ = sess.Login(context.Background(), "tok", testUser())
	img := "/api/v1/media/avatar"
	if err := sess.UpdateUserData(UserUpdate{Name: &name, ProfileImage: &img}); err != nil {
		t.Fatalf("UpdateUserData() error = %v", err)
	}
	u := sess.User()
	if u.Name != name || u.ProfileImage != img || u.Email != "ana@example.com" {
		t.Errorf("User() = %+v", u)
	}

	// User returns a copy.
	u.Name = "mutated"
	if sess.User().Name != name {
		t.Error("User() leaked internal state")
	}
}

func TestContext_RestoreFromStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	first, err := New(NewFileStorage(path))
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Login(context.Background(), "tok-2", testUser()); err != nil {
		t.Fatal(err)
	}

	var hooks atomic.Int32
	second, err := New(NewFileStorage(path), WithAutoSubscribe(func(context.Context) { hooks.Add(1) }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if second.Token() != "tok-2" || second.UserID() != "u1" {
		t.Errorf("restored token=%q user=%q", second.Token(), second.UserID())
	}
	if !second.Restore(context.Background()) || hooks.Load() != 1 {
		t.Errorf("Restore() did not run the hook (calls=%d)", hooks.Load())
	}
}

func TestContext_CorruptUserIsLoggedOut(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set(KeyToken, "tok")
	_ = storage.Set(KeyUser, "{not json")
	sess, err := New(storage)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sess.IsAuthenticated() {
		t.Error("corrupt user record should not authenticate")
	}
}

func TestContext_ReloadNotifiesOnExternalChange(t *testing.T) {
	storage := NewMemoryStorage()
	sess, _ := New(storage)
	_ = sess.Login(context.Background(), "tok", testUser())

	var got []State
	sess.Subscribe(func(s State) { got = append(got, s) })

	// Unchanged storage: no signal.
	if err := sess.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("Reload() without change emitted %d states", len(got))
	}

	// Another writer logs out.
	_ = storage.Delete(KeyToken)
	_ = storage.Delete(KeyUser)
	if err := sess.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Authenticated {
		t.Errorf("states = %+v", got)
	}
}

func TestContext_ReloadRunsHookOnExternalLogin(t *testing.T) {
	storage := NewMemoryStorage()
	var hooks atomic.Int32
	sess, _ := New(storage, WithAutoSubscribe(func(context.Context) { hooks.Add(1) }))

	// Another process logs in through the shared storage.
	writer, _ := New(storage)
	if err := writer.Login(context.Background(), "tok", testUser()); err != nil {
		t.Fatal(err)
	}
	if err := sess.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !sess.IsAuthenticated() || hooks.Load() != 1 {
		t.Fatalf("authenticated = %v, hook calls = %d, want 1", sess.IsAuthenticated(), hooks.Load())
	}

	// Profile edits while logged in do not re-run the hook.
	name := "Ana B"
	if err := writer.UpdateUserData(UserUpdate{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if err := sess.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sess.User().Name != name || hooks.Load() != 1 {
		t.Errorf("name = %q, hook calls = %d", sess.User().Name, hooks.Load())
	}
}

// failingStorage rejects writes to one key.
type failingStorage struct {
	*MemoryStorage
	failKey string
}

var errDiskFull = errors.New("disk full")

func (s *failingStorage) Set(key, value string) error {
	if key == s.failKey {
		return errDiskFull
	}
	return s.MemoryStorage.Set(key, value)
}

func TestContext_LoginRollsBackTokenOnUserWriteFailure(t *testing.T) {
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(), failKey: KeyUser}
	var hooks atomic.Int32
	sess, _ := New(storage, WithAutoSubscribe(func(context.Context) { hooks.Add(1) }))

	if err := sess.Login(context.Background(), "tok", testUser()); !errors.Is(err, errDiskFull) {
		t.Fatalf("Login() error = %v, want disk full", err)
	}
	if _, ok, _ := storage.Get(KeyToken); ok {
		t.Error("token left in storage after failed login")
	}
	if sess.IsAuthenticated() || hooks.Load() != 0 {
		t.Errorf("authenticated = %v, hook calls = %d", sess.IsAuthenticated(), hooks.Load())
	}

	restored, err := New(storage)
	if err != nil {
		t.Fatal(err)
	}
	if restored.IsAuthenticated() {
		t.Error("failed login visible to a new context")
	}
}

func TestContext_SubscribeCancel(t *testing.T) {
	sess, _ := New(NewMemoryStorage())
	var calls int
	cancel := sess.Subscribe(func(State) { calls++ })
	cancel()
	cancel()
	_ = sess.Login(context.Background(), "tok", testUser())
	if calls != 0 {
		t.Errorf("cancelled subscriber called %d times", calls)
	}
}

func TestContext_TokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", sign(jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), false},
		{"past exp", sign(jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), true},
		{"no exp", sign(jwt.MapClaims{"sub": "u1"}), false},
		{"garbage", "not-a-jwt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, _ := New(NewMemoryStorage())
			_ = sess.Login(context.Background(), tt.token, testUser())
			if got := sess.TokenExpired(now); got != tt.want {
				t.Errorf("TokenExpired() = %v, want %v", got, tt.want)
			}
		})
	}

	sess, _ := New(NewMemoryStorage())
	if !sess.TokenExpired(now) {
		t.Error("no token should count as expired")
	}
}
