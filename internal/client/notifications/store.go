// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package notifications keeps the signed-in user's inbox in sync with the
// server. A cheap unread-count poll runs every PollInterval; the full list
// is fetched only when that count disagrees with the local one.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flyfitness/internal/client/schedule"
	"github.com/tomtom215/flyfitness/internal/client/session"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/models"
)

// PollInterval is the default unread-count poll period.
const PollInterval = 30 * time.Second

// ErrNotFound is returned for ids not in the local list.
var ErrNotFound = errors.New("notification not found")

// API is the subset of *client.Client the store needs.
type API interface {
	Notifications(ctx context.Context) ([]models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// SessionSource is the subset of *session.Context used by Bind.
type SessionSource interface {
	IsAuthenticated() bool
	Subscribe(fn func(session.State)) func()
}

// Option configures a Store.
type Option func(*Store)

// WithPollInterval changes the poll period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTicker replaces the poll ticker factory.
func WithTicker(fn schedule.TickerFunc) Option {
	return func(s *Store) { s.tickerFn = fn }
}

// Store is the local notification list.
type Store struct {
	api      API
	interval time.Duration
	tickerFn schedule.TickerFunc
	logger   zerolog.Logger

	mu     sync.RWMutex
	items  []models.Notification
	unread int

	pollMu sync.Mutex
	poll   *schedule.Task
}

// NewStore creates an empty, inactive store.
func NewStore(api API, opts ...Option) *Store {
	s := &Store{
		api:      api,
		interval: PollInterval,
		logger:   logging.WithComponent("notifications"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns a copy of the local list, newest first.
func (s *Store) Items() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// UnreadCount returns the local unread count.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Refresh replaces the local list with the server's.
func (s *Store) Refresh(ctx context.Context) error {
	list, err := s.api.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("refresh notifications: %w", err)
	}
	s.mu.Lock()
	s.items = list
	s.unread = models.UnreadCount(list)
	s.mu.Unlock()
	return nil
}

// PollUnreadCount fetches the server's unread count and refreshes the
// full list only when it differs from the local count.
func (s *Store) PollUnreadCount(ctx context.Context) error {
	n, err := s.api.UnreadCount(ctx)
	if err != nil {
		return fmt.Errorf("poll unread count: %w", err)
	}
	if n == s.UnreadCount() {
		return nil
	}
	return s.Refresh(ctx)
}

// MarkAsRead marks one notification read locally, then on the server.
// The local change is undone if the server call fails.
func (s *Store) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	wasUnread := !s.items[i].Read
	if wasUnread {
		s.items[i].Read = true
		s.unread = max(0, s.unread-1)
	}
	s.mu.Unlock()

	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		if wasUnread {
			s.mu.Lock()
			if j := s.indexLocked(id); j >= 0 && s.items[j].Read {
				s.items[j].Read = false
				s.unread++
			}
			s.mu.Unlock()
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every notification read locally, then on the server.
func (s *Store) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	var flipped []string
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			flipped = append(flipped, s.items[i].ID)
		}
	}
	s.unread = max(0, s.unread-len(flipped))
	s.mu.Unlock()

	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		s.mu.Lock()
		for _, id := range flipped {
			if j := s.indexLocked(id); j >= 0 && s.items[j].Read {
				s.items[j].Read = false
				s.unread++
			}
		}
		s.mu.Unlock()
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes a notification locally, then on the server. It is
// reinserted at its old position if the server call fails.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	if !removed.Read {
		s.unread = max(0, s.unread-1)
	}
	s.mu.Unlock()

	if err := s.api.DeleteNotification(ctx, id); err != nil {
		s.mu.Lock()
		if s.indexLocked(id) < 0 {
			pos := min(i, len(s.items))
			s.items = slices.Insert(s.items, pos, removed)
			if !removed.Read {
				s.unread++
			}
		}
		s.mu.Unlock()
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(n models.Notification) bool { return n.ID == id })
}

// Start refreshes once and begins polling. Starting an active store is a
// no-op.
func (s *Store) Start(ctx context.Context) error {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.poll != nil && s.poll.Running() {
		return nil
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Initial notification refresh failed")
	}

	var opts []schedule.Option
	if s.tickerFn != nil {
		opts = append(opts, schedule.WithTicker(s.tickerFn))
	}
	s.poll = schedule.NewTask("notification-poll", s.interval, func(ctx context.Context) {
		if err := s.PollUnreadCount(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("Unread count poll failed")
		}
	}, opts...)
	return s.poll.Start(ctx)
}

// Stop ends polling and clears local state.
func (s *Store) Stop() {
	task := s.detach()
	s.clear()
	if task != nil {
		task.Stop()
	}
}

func (s *Store) detach() *schedule.Task {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	task := s.poll
	s.poll = nil
	return task
}

func (s *Store) clear() {
	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.mu.Unlock()
}

// Active reports whether polling is running.
func (s *Store) Active() bool {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	return s.poll != nil && s.poll.Running()
}

// Bind gates the store on the session: it starts now if a session is
// held, starts on login and stops on logout. The returned func unbinds
// and stops the store.
func (s *Store) Bind(ctx context.Context, src SessionSource) func() {
	if src.IsAuthenticated() {
		if err := s.Start(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to start notification polling")
		}
	}
	cancel := src.Subscribe(func(st session.State) {
		if st.Authenticated {
			if err := s.Start(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to start notification polling")
			}
			return
		}
		// A 401 inside a poll tick can trigger the logout, so the task
		// is not waited for here.
		task := s.detach()
		s.clear()
		if task != nil {
			go task.Stop()
		}
	})
	return func() {
		cancel()
		s.Stop()
	}
}
