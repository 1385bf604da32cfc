// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flyfitness/internal/client"
	feedsvc "github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/models"
)

// Errors shared with the server so errors.Is works across both.
var (
	ErrEmptyPost        = feedsvc.ErrEmptyPost
	ErrEmptyComment     = feedsvc.ErrEmptyComment
	ErrForbidden        = feedsvc.ErrForbidden
	ErrPostNotFound     = feedsvc.ErrPostNotFound
	ErrPostExpired      = feedsvc.ErrPostExpired
	ErrUnsupportedMedia = feedsvc.ErrUnsupportedMedia
)

var (
	// ErrNotAuthenticated is returned for mutations without a viewer.
	ErrNotAuthenticated = errors.New("sign in to interact with the feed")

	// ErrSampleFeed is returned for mutations while sample posts are shown.
	ErrSampleFeed = errors.New("the feed is unavailable on this server")
)

// API is the subset of *client.Client the store needs.
type API interface {
	Capabilities(ctx context.Context) (*models.Capabilities, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, content string, media *client.MediaFile) (*models.Post, error)
	ToggleLike(ctx context.Context, postID string) (bool, int, error)
	AddComment(ctx context.Context, postID, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
	DeletePost(ctx context.Context, postID string) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the client-side feed. Mutations are applied locally first and
// rolled back if the server refuses them. Mutations on the same post are
// serialized.
type Store struct {
	api    API
	viewer func() string
	now    func() time.Time
	logger zerolog.Logger

	mu      sync.RWMutex
	posts   []models.Post
	caps    *models.Capabilities
	samples bool

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	ledger *ledger
}

// NewStore creates an empty store. viewer returns the signed-in user's
// id, or "" when nobody is signed in; (*session.Context).UserID fits.
func NewStore(api API, viewer func() string, opts ...Option) *Store {
	s := &Store{
		api:    api,
		viewer: viewer,
		now:    time.Now,
		logger: logging.WithComponent("feed-client"),
		locks:  make(map[string]*sync.Mutex),
		ledger: newLedger(maxLedgerEntries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchPosts loads the feed. Server capabilities are fetched on the first
// call; a server without the feed feature yields the built-in sample
// posts. Any other failure is returned as is.
func (s *Store) FetchPosts(ctx context.Context) ([]models.Post, error) {
	samples, err := s.sampleMode(ctx)
	if err != nil {
		return nil, err
	}
	if samples {
		posts := SamplePosts(s.now())
		s.mu.Lock()
		s.posts = posts
		s.mu.Unlock()
		return clonePosts(posts), nil
	}

	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	for i := range posts {
		posts[i].Normalize()
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return clonePosts(posts), nil
}

func (s *Store) sampleMode(ctx context.Context) (bool, error) {
	s.mu.RLock()
	caps := s.caps
	s.mu.RUnlock()
	if caps == nil {
		fetched, err := s.api.Capabilities(ctx)
		if err != nil {
			return false, fmt.Errorf("fetch capabilities: %w", err)
		}
		samples := !fetched.Has(models.FeatureFeed)
		s.mu.Lock()
		s.caps = fetched
		s.samples = samples
		s.mu.Unlock()
		if samples {
			s.logger.Info().Msg("Server has no feed, showing sample posts")
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples, nil
}

// ShowingSamples reports whether the store holds sample posts.
func (s *Store) ShowingSamples() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.samples
}

// Posts returns a copy of the local list, most recent first.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

// Post returns a copy of one post.
func (s *Store) Post(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.posts[i].Clone(), true
	}
	return models.Post{}, false
}

// Mutations returns the optimistic update ledger, oldest first.
func (s *Store) Mutations() []Mutation {
	return s.ledger.snapshot()
}

// CreatePost validates locally, uploads, and prepends the stored post.
// Invalid input never reaches the network.
func (s *Store) CreatePost(ctx context.Context, content string, media *client.MediaFile) (*models.Post, error) {
	if strings.TrimSpace(content) == "" && media == nil {
		return nil, ErrEmptyPost
	}
	if media != nil && media.ContentType != "" && models.MediaKindFromContentType(media.ContentType) == "" {
		return nil, ErrUnsupportedMedia
	}
	if s.viewer() == "" {
		return nil, ErrNotAuthenticated
	}
	if s.ShowingSamples() {
		return nil, ErrSampleFeed
	}

	m := s.ledger.begin(KindCreatePost, "")
	post, err := s.api.CreatePost(ctx, content, media)
	if err != nil {
		s.ledger.finish(m, StateRolledBack, err)
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Normalize()
	s.ledger.setPost(m, post.ID)
	s.ledger.finish(m, StateCommitted, nil)

	s.mu.Lock()
	s.posts = slices.Insert(s.posts, 0, post.Clone())
	s.mu.Unlock()
	cp := post.Clone()
	return &cp, nil
}

// ToggleLike flips the viewer's like locally, then on the server. It
// returns the resulting state and like count. Concurrent toggles on one
// post run one after another, so two back-to-back calls cancel out.
func (s *Store) ToggleLike(ctx context.Context, postID string) (bool, int, error) {
	viewer := s.viewer()
	if viewer == "" {
		return false, 0, ErrNotAuthenticated
	}
	if s.ShowingSamples() {
		return false, 0, ErrSampleFeed
	}

	unlock := s.lockPost(postID)
	defer unlock()

	s.mu.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mu.Unlock()
		return false, 0, ErrPostNotFound
	}
	if s.posts[i].Expired(s.now()) {
		s.mu.Unlock()
		return false, 0, ErrPostExpired
	}
	prevLikes := slices.Clone(s.posts[i].Likes)
	liked := s.posts[i].ToggleLike(viewer)
	s.mu.Unlock()

	m := s.ledger.begin(KindToggleLike, postID)
	serverLiked, count, err := s.api.ToggleLike(ctx, postID)
	if err != nil {
		s.mu.Lock()
		if j := s.indexLocked(postID); j >= 0 {
			s.posts[j].Likes = prevLikes
		}
		s.mu.Unlock()
		s.ledger.finish(m, StateRolledBack, err)
		return !liked, len(prevLikes), fmt.Errorf("toggle like: %w", err)
	}

	s.mu.Lock()
	if j := s.indexLocked(postID); j >= 0 {
		if serverLiked != s.posts[j].LikedBy(viewer) {
			s.posts[j].ToggleLike(viewer)
		}
	}
	s.mu.Unlock()
	s.ledger.finish(m, StateCommitted, nil)
	return serverLiked, count, nil
}

// AddComment appends a placeholder comment, then replaces it with the
// server's copy. The placeholder is removed if the server refuses.
func (s *Store) AddComment(ctx context.Context, postID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	viewer := s.viewer()
	if viewer == "" {
		return nil, ErrNotAuthenticated
	}
	if s.ShowingSamples() {
		return nil, ErrSampleFeed
	}

	unlock := s.lockPost(postID)
	defer unlock()

	m := s.ledger.begin(KindAddComment, postID)
	placeholder := models.Comment{
		ID:        "pending-" + m.RequestID,
		Author:    models.UserRef{ID: viewer},
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mu.Unlock()
		s.ledger.finish(m, StateRolledBack, ErrPostNotFound)
		return nil, ErrPostNotFound
	}
	if s.posts[i].Expired(s.now()) {
		s.mu.Unlock()
		s.ledger.finish(m, StateRolledBack, ErrPostExpired)
		return nil, ErrPostExpired
	}
	s.posts[i].Comments = append(s.posts[i].Comments, placeholder)
	s.mu.Unlock()

	comment, err := s.api.AddComment(ctx, postID, text)

	s.mu.Lock()
	if j := s.indexLocked(postID); j >= 0 {
		p := &s.posts[j]
		if err != nil {
			p.RemoveComment(placeholder.ID)
		} else if k := slices.IndexFunc(p.Comments, func(c models.Comment) bool { return c.ID == placeholder.ID }); k >= 0 {
			p.Comments[k] = *comment
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.ledger.finish(m, StateRolledBack, err)
		return nil, fmt.Errorf("add comment: %w", err)
	}
	s.ledger.finish(m, StateCommitted, nil)
	cp := *comment
	return &cp, nil
}

// DeleteComment hides a comment, then deletes it on the server. Only the
// comment's author or the post's author may; anyone else is refused
// without a network call.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	viewer := s.viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if s.ShowingSamples() {
		return ErrSampleFeed
	}

	unlock := s.lockPost(postID)
	defer unlock()

	s.mu.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mu.Unlock()
		return ErrPostNotFound
	}
	p := &s.posts[i]
	if !p.CanDeleteComment(commentID, viewer) {
		s.mu.Unlock()
		return ErrForbidden
	}
	pos := slices.IndexFunc(p.Comments, func(c models.Comment) bool { return c.ID == commentID })
	removed := p.Comments[pos]
	p.Comments = slices.Delete(p.Comments, pos, pos+1)
	s.mu.Unlock()

	m := s.ledger.begin(KindDeleteComment, postID)
	if err := s.api.DeleteComment(ctx, postID, commentID); err != nil {
		s.mu.Lock()
		if j := s.indexLocked(postID); j >= 0 {
			p := &s.posts[j]
			if _, ok := p.Comment(commentID); !ok {
				p.Comments = slices.Insert(p.Comments, min(pos, len(p.Comments)), removed)
			}
		}
		s.mu.Unlock()
		s.ledger.finish(m, StateRolledBack, err)
		return fmt.Errorf("delete comment: %w", err)
	}
	s.ledger.finish(m, StateCommitted, nil)
	return nil
}

// DeletePost hides a post, then deletes it on the server. Only the
// author may.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	viewer := s.viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if s.ShowingSamples() {
		return ErrSampleFeed
	}

	unlock := s.lockPost(postID)
	defer unlock()

	s.mu.Lock()
	i := s.indexLocked(postID)
	if i < 0 {
		s.mu.Unlock()
		return ErrPostNotFound
	}
	if !s.posts[i].CanDelete(viewer) {
		s.mu.Unlock()
		return ErrForbidden
	}
	removed := s.posts[i]
	s.posts = slices.Delete(s.posts, i, i+1)
	s.mu.Unlock()

	m := s.ledger.begin(KindDeletePost, postID)
	err := s.api.DeletePost(ctx, postID)
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		s.mu.Lock()
		if s.indexLocked(postID) < 0 {
			s.posts = slices.Insert(s.posts, min(i, len(s.posts)), removed)
		}
		s.mu.Unlock()
		s.ledger.finish(m, StateRolledBack, err)
		return fmt.Errorf("delete post: %w", err)
	}
	s.ledger.finish(m, StateCommitted, nil)
	return nil
}

// Views renders the live posts for the current viewer, dropping any
// that expired since the last fetch.
func (s *Store) Views() []PostView {
	now := s.now()
	viewer := s.viewer()

	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]PostView, 0, len(s.posts))
	for i := range s.posts {
		p := &s.posts[i]
		if p.Expired(now) {
			continue
		}
		views = append(views, PostView{
			Post:          p.Clone(),
			TimeRemaining: feedsvc.TimeRemaining(p.CreatedAt, now),
			LikeCount:     len(p.Likes),
			LikedByViewer: p.LikedBy(viewer),
			CanDelete:     p.CanDelete(viewer),
		})
	}
	return views
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.posts, func(p models.Post) bool { return p.ID == id })
}

// lockPost serializes mutations on one post and returns the unlock func.
func (s *Store) lockPost(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.locksMu.Unlock()
	l.Lock()
	return l.Unlock
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i := range posts {
		out[i] = posts[i].Clone()
	}
	return out
}
