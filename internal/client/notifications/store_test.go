// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/flyfitness/internal/client/schedule"
	"github.com/tomtom215/flyfitness/internal/client/session"
	"github.com/tomtom215/flyfitness/internal/models"
)

var errOffline = errors.New("offline")

// fakeAPI is an in-memory notification server.
type fakeAPI struct {
	mu        sync.Mutex
	list      []models.Notification
	fail      bool
	listCalls int
}

func (f *fakeAPI) add(id string, read bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append([]models.Notification{{
		ID:        id,
		UserID:    "u1",
		Type:      models.NotificationLike,
		Content:   "someone liked your post",
		Read:      read,
		CreatedAt: time.Now(),
	}}, f.list...)
}

func (f *fakeAPI) Notifications(context.Context) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.fail {
		return nil, errOffline
	}
	out := make([]models.Notification, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeAPI) UnreadCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errOffline
	}
	return models.UnreadCount(f.list), nil
}

func (f *fakeAPI) MarkNotificationRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errOffline
	}
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].Read = true
		}
	}
	return nil
}

func (f *fakeAPI) MarkAllNotificationsRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errOffline
	}
	for i := range f.list {
		f.list[i].Read = true
	}
	return nil
}

func (f *fakeAPI) DeleteNotification(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errOffline
	}
	for i := range f.list {
		if f.list[i].ID == id {
			f.list = append(f.list[:i], f.list[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func TestStore_RefreshAndMarkAll(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", false)
	api.add("n2", true)
	api.add("n3", false)

	s := NewStore(api)
	if err := s.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if s.UnreadCount() != 2 || len(s.Items()) != 3 {
		t.Fatalf("after refresh: unread=%d items=%d", s.UnreadCount(), len(s.Items()))
	}

	if err := s.MarkAllAsRead(ctx); err != nil {
		t.Fatalf("MarkAllAsRead() error = %v", err)
	}
	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if s.UnreadCount() != 0 {
		t.Errorf("UnreadCount() = %d, want 0", s.UnreadCount())
	}
	for _, n := range s.Items() {
		if !n.Read {
			t.Errorf("notification %s still unread", n.ID)
		}
	}
}

func TestStore_PollRefreshesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", false)

	s := NewStore(api)
	if err := s.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	before := api.calls()

	// Same count: no list fetch.
	if err := s.PollUnreadCount(ctx); err != nil {
		t.Fatal(err)
	}
	if api.calls() != before {
		t.Errorf("poll with equal count fetched the list")
	}

	// Server now reports 3 against a local 1: full refresh.
	api.add("n2", false)
	api.add("n3", false)
	if err := s.PollUnreadCount(ctx); err != nil {
		t.Fatal(err)
	}
	if api.calls() != before+1 {
		t.Errorf("list fetches = %d, want %d", api.calls(), before+1)
	}
	if s.UnreadCount() != 3 || len(s.Items()) != 3 {
		t.Errorf("after poll: unread=%d items=%d", s.UnreadCount(), len(s.Items()))
	}
}

func TestStore_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", false)
	api.add("n2", true)
	s := NewStore(api)
	_ = s.Refresh(ctx)

	if err := s.MarkAsRead(ctx, "n1"); err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	if s.UnreadCount() != 0 {
		t.Errorf("UnreadCount() = %d, want 0", s.UnreadCount())
	}
	// Already-read items do not change the count.
	if err := s.MarkAsRead(ctx, "n2"); err != nil {
		t.Fatal(err)
	}
	if s.UnreadCount() != 0 {
		t.Errorf("UnreadCount() = %d after re-read", s.UnreadCount())
	}
	if err := s.MarkAsRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkAsRead(missing) error = %v", err)
	}
}

func TestStore_RollbackOnServerFailure(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", false)
	api.add("n2", false)
	s := NewStore(api)
	_ = s.Refresh(ctx)
	api.setFail(true)

	if err := s.MarkAsRead(ctx, "n1"); !errors.Is(err, errOffline) {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	if s.UnreadCount() != 2 {
		t.Errorf("after failed mark: unread = %d, want 2", s.UnreadCount())
	}

	if err := s.MarkAllAsRead(ctx); !errors.Is(err, errOffline) {
		t.Fatalf("MarkAllAsRead() error = %v", err)
	}
	if s.UnreadCount() != 2 {
		t.Errorf("after failed mark all: unread = %d, want 2", s.UnreadCount())
	}

	if err := s.Delete(ctx, "n1"); !errors.Is(err, errOffline) {
		t.Fatalf("Delete() error = %v", err)
	}
	items := s.Items()
	if len(items) != 2 || items[1].ID != "n1" || s.UnreadCount() != 2 {
		t.Errorf("after failed delete: items=%+v unread=%d", items, s.UnreadCount())
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", true)
	api.add("n2", false)
	s := NewStore(api)
	_ = s.Refresh(ctx)

	if err := s.Delete(ctx, "n2"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "n1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.UnreadCount() != 0 || len(s.Items()) != 0 {
		t.Errorf("unread=%d items=%d", s.UnreadCount(), len(s.Items()))
	}
}

func TestStore_PollingWithManualTicker(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", false)

	ticker := schedule.NewManualTicker(time.Now())
	s := NewStore(api, WithTicker(ticker.Factory()))
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if ticker.Interval() != PollInterval {
		t.Errorf("poll interval = %v, want %v", ticker.Interval(), PollInterval)
	}
	if s.UnreadCount() != 1 {
		t.Fatalf("initial unread = %d", s.UnreadCount())
	}

	api.add("n2", false)
	if !ticker.Advance() {
		t.Fatal("ticker stopped unexpectedly")
	}
	if s.UnreadCount() != 2 {
		t.Errorf("unread after tick = %d, want 2", s.UnreadCount())
	}

	// A failing poll keeps the last known state.
	api.setFail(true)
	ticker.Advance()
	if s.UnreadCount() != 2 {
		t.Errorf("unread after failed tick = %d", s.UnreadCount())
	}
}

func TestStore_BindFollowsSession(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	api.add("n1", false)

	sess, err := session.New(session.NewMemoryStorage())
	if err != nil {
		t.Fatal(err)
	}
	ticker := schedule.NewManualTicker(time.Now())
	s := NewStore(api, WithTicker(ticker.Factory()))
	unbind := s.Bind(ctx, sess)
	defer unbind()

	if s.Active() {
		t.Fatal("store active without a session")
	}

	if err := sess.Login(ctx, "tok", &models.User{ID: "u1", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}
	if !s.Active() || s.UnreadCount() != 1 {
		t.Errorf("after login: active=%v unread=%d", s.Active(), s.UnreadCount())
	}

	if err := sess.Logout(); err != nil {
		t.Fatal(err)
	}
	if s.Active() || s.UnreadCount() != 0 || len(s.Items()) != 0 {
		t.Errorf("after logout: active=%v unread=%d items=%d", s.Active(), s.UnreadCount(), len(s.Items()))
	}
}
