// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/flyfitness/internal/models"
)

// Storage keys. Both are written on login and removed on logout.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

var (
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrMissingToken is returned by Login when the token is empty.
	ErrMissingToken = errors.New("token is required")
)

// State is a snapshot delivered to subscribers.
type State struct {
	Authenticated bool
	Token         string
	User          *models.User
}

// UserUpdate is a partial profile change. Nil fields are left alone.
type UserUpdate struct {
	Name         *string
	Email        *string
	ProfileImage *string
	Phone        *string
}

// Option configures a Context.
type Option func(*Context)

// WithAutoSubscribe registers a hook run after Login, after Restore finds a
// stored session, and after Reload picks up a login made elsewhere. Errors inside fn are the caller's concern; the
// hook has no way to fail authentication.
func WithAutoSubscribe(fn func(ctx context.Context)) Option {
	return func(c *Context) { c.autoSubscribe = fn }
}

// Context holds the logged-in token and cached profile. All reads go
// through its accessors, and every change is persisted to Storage and
// announced to subscribers.
type Context struct {
	storage       Storage
	autoSubscribe func(ctx context.Context)

	mu    sync.RWMutex
	token string
	user  *models.User

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// New creates a Context and loads any session already in storage.
func New(storage Storage, opts ...Option) (*Context, error) {
	c := &Context{
		storage: storage,
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	token, user, err := c.read()
	if err != nil {
		return nil, err
	}
	c.token, c.user = token, user
	return c, nil
}

// read loads the stored session. A token without a parsable user, or a
// user without a token, counts as logged out.
func (c *Context) read() (string, *models.User, error) {
	token, ok, err := c.storage.Get(KeyToken)
	if err != nil {
		return "", nil, fmt.Errorf("read token: %w", err)
	}
	if !ok || token == "" {
		return "", nil, nil
	}
	raw, ok, err := c.storage.Get(KeyUser)
	if err != nil {
		return "", nil, fmt.Errorf("read user: %w", err)
	}
	if !ok {
		return "", nil, nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", nil, nil
	}
	return token, &user, nil
}

func (c *Context) writeUser(user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := c.storage.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// Login stores the session and notifies subscribers.
func (c *Context) Login(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return ErrMissingToken
	}
	if user == nil {
		return fmt.Errorf("login: user is required")
	}
	cp := *user

	c.mu.Lock()
	if err := c.storage.Set(KeyToken, token); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("store token: %w", err)
	}
	if err := c.writeUser(&cp); err != nil {
		if derr := c.storage.Delete(KeyToken); derr != nil {
			err = errors.Join(err, fmt.Errorf("roll back token: %w", derr))
		}
		c.mu.Unlock()
		return err
	}
	c.token, c.user = token, &cp
	state := c.stateLocked()
	c.mu.Unlock()

	c.emit(state)
	if c.autoSubscribe != nil {
		c.autoSubscribe(ctx)
	}
	return nil
}

// Logout clears the session from memory and storage.
func (c *Context) Logout() error {
	c.mu.Lock()
	c.token, c.user = "", nil
	errToken := c.storage.Delete(KeyToken)
	errUser := c.storage.Delete(KeyUser)
	state := c.stateLocked()
	c.mu.Unlock()

	c.emit(state)
	if err := errors.Join(errToken, errUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// UpdateUserData merges a partial profile into the cached user.
func (c *Context) UpdateUserData(update UserUpdate) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	next := *c.user
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.Email != nil {
		next.Email = *update.Email
	}
	if update.ProfileImage != nil {
		next.ProfileImage = *update.ProfileImage
	}
	if update.Phone != nil {
		next.Phone = *update.Phone
	}
	if err := c.writeUser(&next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.user = &next
	state := c.stateLocked()
	c.mu.Unlock()

	c.emit(state)
	return nil
}

// Token returns the bearer credential, or "" when logged out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User returns a copy of the cached profile, or nil when logged out.
func (c *Context) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	cp := *c.user
	return &cp
}

// UserID returns the logged-in user's id, or "".
func (c *Context) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

// IsAuthenticated reports whether a session is held.
func (c *Context) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != "" && c.user != nil
}

// State returns the current snapshot.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

func (c *Context) stateLocked() State {
	s := State{Token: c.token, Authenticated: c.token != "" && c.user != nil}
	if c.user != nil {
		cp := *c.user
		s.User = &cp
	}
	return s
}

// Subscribe registers fn for state changes and returns a cancel func.
// fn runs on the goroutine that made the change, outside any lock.
func (c *Context) Subscribe(fn func(State)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Context) emit(s State) {
	c.subMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Reload re-reads storage and notifies subscribers if the session
// changed underneath us. A change from logged out to logged in runs the
// auto-subscribe hook, as Login does.
func (c *Context) Reload(ctx context.Context) error {
	token, user, err := c.read()
	if err != nil {
		return err
	}

	c.mu.Lock()
	wasAuthenticated := c.token != "" && c.user != nil
	changed := token != c.token || !sameUser(user, c.user)
	c.token, c.user = token, user
	state := c.stateLocked()
	c.mu.Unlock()

	if !changed {
		return nil
	}
	c.emit(state)
	if state.Authenticated && !wasAuthenticated && c.autoSubscribe != nil {
		c.autoSubscribe(ctx)
	}
	return nil
}

func sameUser(a, b *models.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Name == b.Name && a.Email == b.Email &&
		a.ProfileImage == b.ProfileImage && a.Phone == b.Phone && a.Role == b.Role
}

// Watch follows writes from other processes when the storage supports
// it. It blocks until ctx is cancelled and returns nil immediately for
// storages that cannot be watched.
func (c *Context) Watch(ctx context.Context) error {
	w, ok := c.storage.(Watcher)
	if !ok {
		return nil
	}
	return w.Watch(ctx, func() {
		_ = c.Reload(ctx)
	})
}

// Restore runs the auto-subscribe hook when a stored session exists.
// Call once at startup.
func (c *Context) Restore(ctx context.Context) bool {
	if !c.IsAuthenticated() {
		return false
	}
	if c.autoSubscribe != nil {
		c.autoSubscribe(ctx)
	}
	return true
}

// TokenExpired decodes the token's exp claim without verifying the
// signature. A missing token or an undecodable one counts as expired;
// a token with no exp claim does not.
func (c *Context) TokenExpired(now time.Time) bool {
	token := c.Token()
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
