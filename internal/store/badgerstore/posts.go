// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package badgerstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// CreatePost stores a new post.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	post.Normalize()
	return s.update(ctx, func(txn *badger.Txn) error {
		key := postKeyPrefix + post.ID
		if _, err := txn.Get([]byte(key)); err == nil {
			return store.ErrConflict
		}
		return setJSON(txn, key, post, s.postTTL(post))
	})
}

// GetPost retrieves a post by ID.
func (s *Store) GetPost(_ context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, postKeyPrefix+id, &post)
	})
	if err != nil {
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

// ListPosts returns live posts, newest first.
func (s *Store) ListPosts(_ context.Context, now time.Time) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, postKeyPrefix, func(p models.Post) error {
			if !p.Expired(now) {
				p.Normalize()
				posts = append(posts, p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// mutatePost applies fn to a post inside a conflict-checked transaction.
func (s *Store) mutatePost(ctx context.Context, id string, fn func(p *models.Post) error) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var post models.Post
		if err := getJSON(txn, postKeyPrefix+id, &post); err != nil {
			return err
		}
		if err := fn(&post); err != nil {
			return err
		}
		return setJSON(txn, postKeyPrefix+id, &post, s.postTTL(&post))
	})
}

// ToggleLike flips the user's like atomically.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	var liked bool
	var count int
	err := s.mutatePost(ctx, postID, func(p *models.Post) error {
		liked = p.ToggleLike(userID)
		count = len(p.Likes)
		return nil
	})
	return liked, count, err
}

// AddComment appends a comment to the post's thread.
func (s *Store) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	return s.mutatePost(ctx, postID, func(p *models.Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
}

// DeleteComment removes a comment from the post's thread.
func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	return s.mutatePost(ctx, postID, func(p *models.Post) error {
		if !p.RemoveComment(commentID) {
			return store.ErrNotFound
		}
		return nil
	})
}

// DeletePost removes a post.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, postKeyPrefix+id)
	})
}

// DeleteExpiredPosts removes expired posts and returns them.
func (s *Store) DeleteExpiredPosts(ctx context.Context, now time.Time) ([]models.Post, error) {
	var expired []models.Post
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, postKeyPrefix, func(p models.Post) error {
			if p.Expired(now) {
				expired = append(expired, p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("scan expired posts: %w", err)
	}
	if len(expired) == 0 {
		return nil, nil
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		for i := range expired {
			if err := txn.Delete([]byte(postKeyPrefix + expired[i].ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete expired posts: %w", err)
	}
	return expired, nil
}

// SaveMedia stores an attachment with the post lifetime as TTL.
func (s *Store) SaveMedia(ctx context.Context, id, contentType string, r io.Reader) (int64, error) {
	limit := s.MaxMediaBytes()
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read media: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return 0, fmt.Errorf("save media: over %d bytes: %w", limit, store.ErrTooLarge)
	}
	ttl := models.PostLifetime + ttlGrace
	err = s.update(ctx, func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry([]byte(mediaKeyPrefix+id), data).WithTTL(ttl)); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(mediaMetaKeyPrefix+id), []byte(contentType)).WithTTL(ttl))
	})
	if err != nil {
		return 0, fmt.Errorf("save media: %w", err)
	}
	return int64(len(data)), nil
}

// OpenMedia returns a reader over a stored attachment and its content type.
func (s *Store) OpenMedia(_ context.Context, id string) (io.ReadCloser, string, error) {
	var data []byte
	var contentType string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(mediaKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}
		meta, err := txn.Get([]byte(mediaMetaKeyPrefix + id))
		if err == nil {
			ct, err := meta.ValueCopy(nil)
			if err != nil {
				return err
			}
			contentType = string(ct)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return io.NopCloser(bytes.NewReader(data)), contentType, nil
}

// DeleteMedia removes an attachment. Missing media is not an error.
func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(mediaKeyPrefix + id)); err != nil {
			return err
		}
		return txn.Delete([]byte(mediaMetaKeyPrefix + id))
	})
}
