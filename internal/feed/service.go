// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/metrics"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// Store is the persistence the feed needs.
type Store interface {
	store.PostStore
	store.MediaStore
}

// Publisher delivers feed events. *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e *events.Event) error
}

// Config configures a Service.
type Config struct {
	// MediaBaseURL prefixes media URLs, e.g. "https://gym.example.com".
	// Empty yields relative URLs.
	MediaBaseURL string

	// MaxUploadBytes caps a single attachment. Zero disables the check.
	MaxUploadBytes int64
}

// MediaUpload is an attachment supplied with a new post.
type MediaUpload struct {
	Reader      io.Reader
	ContentType string
}

// Service implements the feed operations.
type Service struct {
	store     Store
	publisher Publisher
	cfg       Config

	// timeFunc allows injecting a custom time source for testing
	timeFunc func() time.Time
}

// NewService creates a feed service. publisher may be nil.
func NewService(s Store, publisher Publisher, cfg Config) *Service {
	return &Service{
		store:     s,
		publisher: publisher,
		cfg:       cfg,
		timeFunc:  time.Now,
	}
}

// SetTimeFunc replaces the clock. Intended for tests.
func (s *Service) SetTimeFunc(fn func() time.Time) {
	s.timeFunc = fn
}

func (s *Service) now() time.Time {
	return s.timeFunc().UTC()
}

// MediaURL returns the public URL for a stored attachment.
func (s *Service) MediaURL(mediaID string) string {
	return strings.TrimRight(s.cfg.MediaBaseURL, "/") + "/api/v1/media/" + mediaID
}

// ListPosts returns live posts, newest first.
func (s *Service) ListPosts(ctx context.Context) ([]models.Post, error) {
	start := time.Now()
	posts, err := s.store.ListPosts(ctx, s.now())
	metrics.RecordStoreOperation("list_posts", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a live post.
func (s *Service) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post.Expired(s.now()) {
		return nil, ErrPostExpired
	}
	return post, nil
}

// CreatePost stores a new post. At least one of content (after trimming) and
// media is required; the check runs before anything is written.
func (s *Service) CreatePost(ctx context.Context, author models.UserRef, content string, upload *MediaUpload) (*models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && upload == nil {
		return nil, ErrEmptyPost
	}

	now := s.now()
	post := &models.Post{
		ID:        uuid.New().String(),
		Author:    author,
		Content:   content,
		CreatedAt: now,
		ExpiresAt: models.ExpiresAtFor(now),
	}

	if upload != nil {
		media, err := s.saveMedia(ctx, upload)
		if err != nil {
			return nil, err
		}
		post.Media = media
	}
	post.Normalize()

	start := time.Now()
	err := s.store.CreatePost(ctx, post)
	metrics.RecordStoreOperation("create_post", time.Since(start), err)
	if err != nil {
		if post.Media != nil {
			_ = s.store.DeleteMedia(ctx, post.Media.ID)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	kind := ""
	if post.Media != nil {
		kind = string(post.Media.Kind)
	}
	metrics.RecordPostCreated(kind)

	e := events.New(events.TopicPostCreated, now)
	e.ActorID = author.ID
	e.ActorName = author.Name
	e.PostID = post.ID
	s.publish(ctx, e)

	return post, nil
}

func (s *Service) saveMedia(ctx context.Context, upload *MediaUpload) (*models.Media, error) {
	kind := models.MediaKindFromContentType(upload.ContentType)
	if !kind.Valid() {
		return nil, ErrUnsupportedMedia
	}

	id := uuid.New().String()
	r := upload.Reader
	if s.cfg.MaxUploadBytes > 0 {
		r = io.LimitReader(r, s.cfg.MaxUploadBytes+1)
	}

	size, err := s.store.SaveMedia(ctx, id, upload.ContentType, r)
	if errors.Is(err, store.ErrTooLarge) {
		return nil, ErrMediaTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("save media: %w", err)
	}
	if s.cfg.MaxUploadBytes > 0 && size > s.cfg.MaxUploadBytes {
		_ = s.store.DeleteMedia(ctx, id)
		return nil, ErrMediaTooLarge
	}

	return &models.Media{
		ID:          id,
		URL:         s.MediaURL(id),
		Kind:        kind,
		ContentType: upload.ContentType,
		Size:        size,
	}, nil
}

// ToggleLike flips the user's like on a live post and returns the new state.
func (s *Service) ToggleLike(ctx context.Context, postID string, user models.UserRef) (bool, int, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return false, 0, err
	}

	start := time.Now()
	liked, count, err := s.store.ToggleLike(ctx, postID, user.ID)
	metrics.RecordStoreOperation("toggle_like", time.Since(start), err)
	if errors.Is(err, store.ErrNotFound) {
		return false, 0, ErrPostNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	metrics.RecordLikeToggle(liked)

	if liked && post.Author.ID != user.ID {
		e := events.New(events.TopicPostLiked, s.now())
		e.ActorID = user.ID
		e.ActorName = user.Name
		e.RecipientID = post.Author.ID
		e.PostID = postID
		e.Liked = true
		e.Count = count
		s.publish(ctx, e)
	}
	return liked, count, nil
}

// AddComment appends a comment to a live post.
func (s *Service) AddComment(ctx context.Context, postID string, author models.UserRef, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.New().String(),
		Author:    author,
		Text:      text,
		CreatedAt: s.now(),
	}

	start := time.Now()
	err = s.store.AddComment(ctx, postID, comment)
	metrics.RecordStoreOperation("add_comment", time.Since(start), err)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	metrics.RecordComment("add")

	if post.Author.ID != author.ID {
		e := events.New(events.TopicPostCommented, comment.CreatedAt)
		e.ActorID = author.ID
		e.ActorName = author.Name
		e.RecipientID = post.Author.ID
		e.PostID = postID
		e.CommentID = comment.ID
		e.Text = text
		s.publish(ctx, e)
	}
	return &comment, nil
}

// DeleteComment removes a comment. The comment author and the post author may
// delete it.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, userID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if _, ok := post.Comment(commentID); !ok {
		return ErrCommentNotFound
	}
	if !post.CanDeleteComment(commentID, userID) {
		return ErrForbidden
	}

	err = s.store.DeleteComment(ctx, postID, commentID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	metrics.RecordComment("delete")
	return nil
}

// DeletePost removes a post and its media. Only the author may delete it.
// Expired posts can still be deleted by their author.
func (s *Service) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := s.store.GetPost(ctx, postID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}
	if !post.CanDelete(userID) {
		return ErrForbidden
	}

	if err := s.store.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	s.releaseMedia(ctx, post)
	metrics.FeedPostsDeleted.Inc()

	e := events.New(events.TopicPostDeleted, s.now())
	e.ActorID = userID
	e.PostID = postID
	s.publish(ctx, e)
	return nil
}

// OpenMedia opens a stored attachment.
func (s *Service) OpenMedia(ctx context.Context, mediaID string) (io.ReadCloser, string, error) {
	rc, contentType, err := s.store.OpenMedia(ctx, mediaID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrMediaNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("open media: %w", err)
	}
	return rc, contentType, nil
}

// SweepExpired deletes every expired post and its media, returning how many
// posts were removed.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	start := time.Now()
	now := s.now()

	expired, err := s.store.DeleteExpiredPosts(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired posts: %w", err)
	}
	for i := range expired {
		s.releaseMedia(ctx, &expired[i])
	}
	metrics.RecordSweep(time.Since(start), len(expired))

	if len(expired) > 0 {
		e := events.New(events.TopicPostsExpired, now)
		e.Count = len(expired)
		s.publish(ctx, e)
	}
	return len(expired), nil
}

func (s *Service) releaseMedia(ctx context.Context, post *models.Post) {
	if post.Media == nil {
		return
	}
	if err := s.store.DeleteMedia(ctx, post.Media.ID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("post_id", post.ID).
			Str("media_id", post.Media.ID).
			Msg("Failed to delete post media")
	}
}

// publish sends e, logging failures. Notifications are best-effort and never
// fail the user's request.
func (s *Service) publish(ctx context.Context, e *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("topic", e.Topic).
			Str("post_id", e.PostID).
			Msg("Failed to publish feed event")
	}
}
